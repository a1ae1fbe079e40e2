package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearLibpqEnv hides PG* variables of the calling shell
func clearLibpqEnv(t *testing.T) {
	t.Helper()
	for _, name := range libpqEnv {
		t.Setenv(name, "")
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearLibpqEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeConfig(t, "ui:\n  theme: default\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	d := GetDefaults()
	assert.Equal(t, d.Database.ConnectionConfig, cfg.Database.ConnectionConfig)
	assert.Equal(t, d.Session, cfg.Session)
	assert.Equal(t, 30*time.Second, cfg.Database.Timeout())
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "history.db", filepath.Base(cfg.History.Path))
	assert.Equal(t, "bookmarks.yaml", filepath.Base(cfg.Bookmarks.Path))
}

func TestLoadFrom_File(t *testing.T) {
	clearLibpqEnv(t)
	path := writeConfig(t, `
database:
  host: db.example.org
  port: 5433
  use_keyring: true
  fixture: ./groups.yaml
session:
  active_entity: 3
  language: de_DE
history:
  enabled: false
  path: /tmp/h.db
bookmarks:
  path: /tmp/b.yaml
log:
  level: debug
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "db.example.org", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "glpi", cfg.Database.Database)
	assert.True(t, cfg.Database.UseKeyring)
	assert.Equal(t, "./groups.yaml", cfg.Database.Fixture)
	assert.Equal(t, int64(3), cfg.Session.ActiveEntity)
	assert.Equal(t, "de_DE", cfg.Session.Language)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/h.db", cfg.History.Path)
	assert.Equal(t, "/tmp/b.yaml", cfg.Bookmarks.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFrom_Env(t *testing.T) {
	clearLibpqEnv(t)
	t.Setenv("LAZYREPORTS_DATABASE_HOST", "env-host")
	t.Setenv("LAZYREPORTS_SESSION_ACTIVE_ENTITY", "7")
	path := writeConfig(t, "database:\n  host: file-host\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, int64(7), cfg.Session.ActiveEntity)
}

func TestLoadFrom_LibpqEnv(t *testing.T) {
	clearLibpqEnv(t)
	t.Setenv("PGHOST", "pg-host")
	t.Setenv("PGPORT", "6432")
	t.Setenv("PGUSER", "reporter")
	t.Setenv("LAZYREPORTS_DATABASE_USER", "")
	t.Setenv("LAZYREPORTS_DATABASE_HOST", "")
	path := writeConfig(t, "database:\n  host: file-host\n  database: assets\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "pg-host", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "reporter", cfg.Database.User)
	assert.Equal(t, "assets", cfg.Database.Database)

	t.Setenv("LAZYREPORTS_DATABASE_HOST", "own-host")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "own-host", cfg.Database.Host)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
