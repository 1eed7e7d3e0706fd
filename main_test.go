package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/sponza/engine"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsBooleans(t *testing.T) {
	o, err := parseFlags([]string{"--cache", "--minimal"})
	require.NoError(t, err)
	assert.True(t, o.cache)
	assert.True(t, o.minimal, "--cache does not swallow the next flag")

	o, err = parseFlags([]string{"--cache"})
	require.NoError(t, err)
	assert.True(t, o.cache)

	o, err = parseFlags([]string{"--convert", "--no-frustum-culling", "--compress", "--low-quality-compression"})
	require.NoError(t, err)
	assert.Equal(t, options{convert: true, noFrustumCulling: true, compress: true, lowQuality: true}, o)

	o, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, options{}, o)
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	_, err := parseFlags([]string{"--fullscreen"})
	assert.Error(t, err)
}

func TestApplyOptions(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	options{cache: true, compress: true, lowQuality: true, noFrustumCulling: true}.apply(&config)

	assert.Equal(t, filepath.Join("assets", defaultCacheDir), config.Mipmap.CachePath)
	assert.True(t, config.Mipmap.LowQuality)
	assert.True(t, config.DisableFrustumCulling)
	require.NotNil(t, config.Mipmap.Compression)
	assert.Equal(t, scene.CodecBC7, *config.Mipmap.Compression)

	untouched := engine.DefaultApplicationConfig()
	options{}.apply(&untouched)
	assert.Equal(t, engine.DefaultApplicationConfig(), untouched)
}

func TestCacheDirectoryFromConfigWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sponza.toml")
	require.NoError(t, os.WriteFile(path, []byte("[mipmap]\ncache_path = \"/var/cache/sponza\"\n"), 0o644))

	o, err := parseFlags([]string{"--config", path, "--cache"})
	require.NoError(t, err)
	config, err := loadConfig(o)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/sponza", config.Mipmap.CachePath)
}
