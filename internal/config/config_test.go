package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/dokuwiki-md-converter/converter"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "images", cfg.ImageDir)
	assert.Equal(t, "api.silverstripe.org", cfg.APIHost)
	assert.Equal(t, 4, cfg.TabWidth)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "best_effort", cfg.ResolutionMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Force)
}

func TestLoadExplicitFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
image_root: /srv/wiki/media
workers: 8
log:
  level: debug
  format: json
`), 0o644))

	t.Setenv("DOKUMD_WORKERS", "2")
	t.Setenv("DOKUMD_LOG_FORMAT", "pretty")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/wiki/media", cfg.ImageRoot)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pretty", cfg.Log.Format)
}

func TestLoadDiscoversConfigInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dokumd.yaml"), []byte("api_host: api.example.org\n"), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "api.example.org", cfg.APIHost)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestConverterConfig(t *testing.T) {
	cfg := Config{
		ImageRoot:      "media",
		ImageDir:       "img",
		APIHost:        "api.example.org",
		TabWidth:       2,
		ResolutionMode: "strict",
	}

	assert.Equal(t, converter.Config{
		TabWidth:       2,
		APIHost:        "api.example.org",
		ImageRoot:      "media",
		ImageDir:       "img",
		ResolutionMode: converter.ResolutionStrict,
	}, cfg.ConverterConfig())
}
