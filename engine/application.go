package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`

	// AssetPath is the directory scene assets are loaded from.
	AssetPath string `toml:"asset_path"`
	// HotReload re-imports assets changed on disk.
	HotReload bool `toml:"hot_reload"`
	// NumWorkers sizes the job system, 0 means one per CPU.
	NumWorkers int `toml:"num_workers"`

	DisableFrustumCulling bool `toml:"disable_frustum_culling"`
	// Compression selects the texture codec: "", "bc7" or "astc".
	Compression string                 `toml:"compression"`
	Mipmap      systems.MipmapSettings `toml:"mipmap"`
}

// DefaultApplicationConfig returns the settings used when no file overrides
// them.
func DefaultApplicationConfig() ApplicationConfig {
	return ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Sponza",
		LogLevel:    core.InfoLevel,
		AssetPath:   "assets",
		Mipmap: systems.MipmapSettings{
			AnisotropicFiltering: 16,
		},
	}
}

// LoadApplicationConfig overlays the TOML file at path on top of base.
func LoadApplicationConfig(path string, base ApplicationConfig) (ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	config := base
	if err := toml.Unmarshal(data, &config); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.resolveCompression(); err != nil {
		return base, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) resolveCompression() error {
	switch c.Compression {
	case "":
		c.Mipmap.Compression = nil
	case "bc7":
		codec := scene.CodecBC7
		c.Mipmap.Compression = &codec
	case "astc":
		codec := scene.CodecASTC
		c.Mipmap.Compression = &codec
	default:
		return fmt.Errorf("unknown compression %q", c.Compression)
	}
	return nil
}

// EnableCompression turns texture compression on with the desktop codec.
func (c *ApplicationConfig) EnableCompression() {
	if c.Compression == "" {
		c.Compression = "bc7"
	}
	if err := c.resolveCompression(); err != nil {
		core.LogWarn("%s, falling back to bc7", err)
		c.Compression = "bc7"
		_ = c.resolveCompression()
	}
}
