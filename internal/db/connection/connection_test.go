package connection

import (
	"testing"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testConfig() models.ConnectionConfig {
	return models.ConnectionConfig{
		Host:       "db.local",
		Port:       5432,
		Database:   "glpi",
		User:       "report",
		UseKeyring: true,
	}
}

func TestBuildConnectionString(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "host=db.local port=5432 user=report database=glpi sslmode=prefer", buildConnectionString(cfg))

	cfg.SSLMode = "disable"
	cfg.Password = "secret"
	assert.Equal(t, "host=db.local port=5432 user=report database=glpi sslmode=disable password=secret", buildConnectionString(cfg))
}

func TestResolvePassword_FromKeyring(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig()

	resolved, err := ResolvePassword(cfg)
	require.NoError(t, err)
	assert.Empty(t, resolved.Password, "missing entry leaves the password empty")

	require.NoError(t, StorePassword(cfg, "s3cret"))
	resolved, err = ResolvePassword(cfg)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", resolved.Password)

	require.NoError(t, DeletePassword(cfg))
	require.NoError(t, DeletePassword(cfg), "deleting twice is not an error")
	resolved, err = ResolvePassword(cfg)
	require.NoError(t, err)
	assert.Empty(t, resolved.Password)
}

func TestResolvePassword_ExplicitPasswordWins(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig()
	require.NoError(t, StorePassword(cfg, "from-keyring"))

	cfg.Password = "inline"
	resolved, err := ResolvePassword(cfg)
	require.NoError(t, err)
	assert.Equal(t, "inline", resolved.Password)

	cfg.Password = ""
	cfg.UseKeyring = false
	resolved, err = ResolvePassword(cfg)
	require.NoError(t, err)
	assert.Empty(t, resolved.Password)
}
