package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, int64(15*1024*1024), cfg.Image.MaxBytes)
	assert.Equal(t, 85, cfg.Image.Quality)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Providers.GenerateTimeout)

	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SCRAPER_TIMEOUT", "90s")
	t.Setenv("IMAGE_JPEG_QUALITY", "70")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 70, cfg.Image.Quality)
	assert.False(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Image.Quality = 0
	assert.Error(t, cfg.Validate())

	cfg.Image.Quality = 85
	cfg.Image.MaxBytes = 10
	assert.Error(t, cfg.Validate())

	cfg.Image.MaxBytes = 1 << 20
	cfg.Scraper.Timeout = 0
	assert.Error(t, cfg.Validate())
}
