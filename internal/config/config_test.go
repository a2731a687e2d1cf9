package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "slide2pdf", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, "soffice", cfg.Convert.SofficePath)
	assert.Equal(t, 50, cfg.Convert.MaxFiles)
	assert.Equal(t, "memory", cfg.Registry.Backend)
	assert.Equal(t, 10*time.Minute, cfg.ArtifactTTL())
	assert.Equal(t, 2*time.Minute, cfg.ConvertTimeout())
	assert.Equal(t, int64(50<<20), cfg.MaxFileSize())
	assert.False(t, cfg.History.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
port = 9090

[convert]
soffice_path = "/opt/libreoffice/program/soffice"
timeout_seconds = 30

[artifacts]
ttl_seconds = 120

[registry]
backend = "redis"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "/opt/libreoffice/program/soffice", cfg.Convert.SofficePath)
	assert.Equal(t, 30*time.Second, cfg.ConvertTimeout())
	assert.Equal(t, 2*time.Minute, cfg.ArtifactTTL())
	assert.Equal(t, "redis", cfg.Registry.Backend)
	// untouched sections keep defaults
	assert.Equal(t, "slide2pdf", cfg.App.Name)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[convert]\nsoffice_path = \"from-file\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SOFFICE_PATH", "/usr/bin/soffice")
	t.Setenv("APP_PORT", "7070")
	t.Setenv("HISTORY_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/soffice", cfg.Convert.SofficePath)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.True(t, cfg.History.Enabled)
}

func TestBadEnvIntFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
}
