package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sponza.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadApplicationConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
name = "Sponza bench"
log_level = "debug"
start_width = 1920
asset_path = "/data/sponza"
compression = "astc"

[mipmap]
anisotropic_filtering = 8
low_quality = true
cache_path = "/tmp/sponza-cache"
`)
	config, err := LoadApplicationConfig(path, DefaultApplicationConfig())
	require.NoError(t, err)

	assert.Equal(t, "Sponza bench", config.Name)
	assert.Equal(t, core.DebugLevel, config.LogLevel)
	assert.Equal(t, uint32(1920), config.StartWidth)
	assert.Equal(t, uint32(720), config.StartHeight, "unset keys keep their default")
	assert.Equal(t, "/data/sponza", config.AssetPath)
	assert.Equal(t, uint8(8), config.Mipmap.AnisotropicFiltering)
	assert.True(t, config.Mipmap.LowQuality)
	assert.Equal(t, "/tmp/sponza-cache", config.Mipmap.CachePath)
	require.NotNil(t, config.Mipmap.Compression)
	assert.Equal(t, scene.CodecASTC, *config.Mipmap.Compression)
}

func TestLoadApplicationConfigErrors(t *testing.T) {
	base := DefaultApplicationConfig()

	_, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml"), base)
	assert.Error(t, err)

	config, err := LoadApplicationConfig(writeConfig(t, `compression = "jpeg"`), base)
	assert.Error(t, err)
	assert.Equal(t, base, config)

	_, err = LoadApplicationConfig(writeConfig(t, `log_level = "loud"`), base)
	assert.Error(t, err)

	_, err = LoadApplicationConfig(writeConfig(t, `start_width = "wide"`), base)
	assert.Error(t, err)
}

func TestEnableCompression(t *testing.T) {
	config := DefaultApplicationConfig()
	assert.Nil(t, config.Mipmap.Compression)

	config.EnableCompression()
	require.NotNil(t, config.Mipmap.Compression)
	assert.Equal(t, scene.CodecBC7, *config.Mipmap.Compression)
}
