package connection

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/zalando/go-keyring"
)

const keyringService = "lazyreports"

// ResolvePassword fills the password from the OS keyring when the
// configuration asks for it and carries none. A missing keyring entry
// leaves the password empty.
func ResolvePassword(config models.ConnectionConfig) (models.ConnectionConfig, error) {
	if config.Password != "" || !config.UseKeyring {
		return config, nil
	}

	password, err := keyring.Get(keyringService, config.KeyringUser())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read password from keyring: %w", err)
	}

	config.Password = password
	return config, nil
}

// StorePassword saves the password of config in the OS keyring
func StorePassword(config models.ConnectionConfig, password string) error {
	if err := keyring.Set(keyringService, config.KeyringUser(), password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

// DeletePassword removes the password of config from the OS keyring
func DeletePassword(config models.ConnectionConfig) error {
	err := keyring.Delete(keyringService, config.KeyringUser())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
