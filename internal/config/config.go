package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/spf13/viper"
)

// AppName names the config directory and the environment prefix
const AppName = "lazyreports"

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	UI        UIConfig        `mapstructure:"ui"`
	History   HistoryConfig   `mapstructure:"history"`
	Bookmarks BookmarksConfig `mapstructure:"bookmarks"`
	Log       LogConfig       `mapstructure:"log"`
}

type DatabaseConfig struct {
	models.ConnectionConfig `mapstructure:",squash"`
	// Fixture is a YAML file of lookup tables served instead of the database
	Fixture      string `mapstructure:"fixture"`
	QueryTimeout int    `mapstructure:"query_timeout"`
}

// Timeout returns the query timeout as a duration
func (c DatabaseConfig) Timeout() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Millisecond
}

type SessionConfig struct {
	ActiveEntity int64  `mapstructure:"active_entity"`
	Language     string `mapstructure:"language"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type BookmarksConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			ConnectionConfig: models.ConnectionConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "glpi",
				User:     "glpi",
				SSLMode:  "prefer",
			},
			QueryTimeout: 30000,
		},
		Session: SessionConfig{
			ActiveEntity: 0,
			Language:     "en_GB",
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.use_keyring", false)
	v.SetDefault("database.fixture", "")
	v.SetDefault("database.query_timeout", d.Database.QueryTimeout)
	v.SetDefault("session.active_entity", d.Session.ActiveEntity)
	v.SetDefault("session.language", d.Session.Language)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", "")
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("bookmarks.path", "")
	v.SetDefault("log.level", d.Log.Level)
}

// Load loads configuration from the standard locations
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from file, or from the standard locations
// when file is empty. Environment variables such as
// LAZYREPORTS_DATABASE_HOST override both.
func LoadFrom(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLibpqEnv(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config (a missing file is fine, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// libpqEnv maps database keys to the variables libpq clients honour
var libpqEnv = map[string]string{
	"database.host":     "PGHOST",
	"database.port":     "PGPORT",
	"database.database": "PGDATABASE",
	"database.user":     "PGUSER",
	"database.password": "PGPASSWORD",
	"database.ssl_mode": "PGSSLMODE",
}

// bindLibpqEnv lets PGHOST and friends fill the database section. The
// LAZYREPORTS_ variable wins when both are set.
func bindLibpqEnv(v *viper.Viper) error {
	replacer := strings.NewReplacer(".", "_")
	for key, pg := range libpqEnv {
		own := strings.ToUpper(AppName + "_" + replacer.Replace(key))
		if err := v.BindEnv(key, own, pg); err != nil {
			return fmt.Errorf("failed to bind %s: %w", pg, err)
		}
	}
	return nil
}

// resolvePaths puts the data files in the config directory unless set
func (c *Config) resolvePaths() error {
	if c.History.Path != "" && c.Bookmarks.Path != "" {
		return nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
	if c.Bookmarks.Path == "" {
		c.Bookmarks.Path = filepath.Join(dir, "bookmarks.yaml")
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
