package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigUsesXDGDataHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg := DefaultConfig()
	require.Equal(t, filepath.Join(dir, "refurb", "refurb.db"), cfg.Database.Path)
	require.Equal(t, filepath.Join(dir, "refurb", "refurb.log"), cfg.Log.File)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 10, cfg.Log.MaxSizeMB)
	require.Equal(t, 3, cfg.Log.MaxFiles)
	require.Empty(t, cfg.UI.Month)
}

func TestLoadFromPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "refurb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/garage.db
log:
  level: debug
ui:
  month: "2024-03"
`), 0644))

	cfg, used, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, "/tmp/garage.db", cfg.Database.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "2024-03", cfg.UI.Month)
	require.Equal(t, 10, cfg.Log.MaxSizeMB, "unset fields take defaults")
}

func TestLoadFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database: [unclosed"), 0644))
	_, _, err = LoadFromPath(bad)
	require.ErrorContains(t, err, "parse config")
}

func TestLoadPrefersEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))
	t.Setenv("REFURB_CONFIG", path)

	cfg, used, err := Load()
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFallsBackToXDGConfigHome(t *testing.T) {
	t.Setenv("REFURB_CONFIG", "")
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	cfg, used, err := Load()
	require.NoError(t, err)
	require.Empty(t, used)
	require.NotNil(t, cfg)

	path := filepath.Join(home, "refurb", "config.yaml")
	require.NoError(t, (&Config{Log: LogConfig{Level: "error"}}).Save(path))

	cfg, used, err = Load()
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, "error", cfg.Log.Level)
}
