package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idrisgemas/gemlookup/internal/media"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvSheetURL, EnvMediaBase, EnvHTTPTimeout, EnvListenAddr, EnvModel,
		EnvMediaBucket, EnvMediaPrefix, EnvOriginSecret, EnvSSMAPIKey,
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, sheet.DefaultSheetURL, cfg.SheetURL)
	assert.Equal(t, media.DefaultBase, cfg.MediaBase)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, sheet.DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultSSMAPIKey, cfg.SSMAPIKeyParam)
	assert.Empty(t, cfg.MediaBucket)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSheetURL, " https://example.com/sheet.csv ")
	t.Setenv(EnvMediaBase, "https://cdn.example.com/gems")
	t.Setenv(EnvHTTPTimeout, "3s")
	t.Setenv(EnvMediaBucket, "gem-media")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sheet.csv", cfg.SheetURL)
	assert.Equal(t, "https://cdn.example.com/gems", cfg.MediaBase)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "gem-media", cfg.MediaBucket)
}

func TestLoadInvalidTimeout(t *testing.T) {
	clearEnv(t)

	t.Setenv(EnvHTTPTimeout, "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv(EnvHTTPTimeout, "-1s")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMLOOKUP_MEDIA_BASE=/from-file\n"), 0o600))

	// Blank values count as set for godotenv, so unset first.
	require.NoError(t, os.Unsetenv(EnvMediaBase))
	t.Cleanup(func() { os.Unsetenv(EnvMediaBase) })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "/from-file", os.Getenv(EnvMediaBase))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
