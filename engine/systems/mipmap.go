package systems

import (
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
)

/** @brief Configuration of the texture sampling and compression pass. */
type MipmapSettings struct {
	/** @brief Anisotropic filtering level applied to every texture. */
	AnisotropicFiltering uint8 `toml:"anisotropic_filtering"`
	/** @brief Optional GPU compression codec, nil leaves textures uncompressed. */
	Compression *scene.Codec `toml:"-"`
	/** @brief Directory caching compressed textures between runs. Empty disables caching. */
	CachePath string `toml:"cache_path"`
	/** @brief Faster, lower quality compression. */
	LowQuality bool `toml:"low_quality"`
}

/**
 * @brief Per-frame pass over all materials. Materials that were not configured
 * yet receive the texture settings; the mip chain itself is produced by the
 * renderer.
 */
type MipmapSystem struct {
	world    *scene.World
	settings scene.TextureSettings
}

func NewMipmapSystem(world *scene.World, settings MipmapSettings) *MipmapSystem {
	ts := scene.TextureSettings{
		Anisotropy: settings.AnisotropicFiltering,
		Codec:      scene.CodecNone,
		LowQuality: settings.LowQuality,
		CachePath:  settings.CachePath,
	}
	if settings.Compression != nil {
		ts.Codec = *settings.Compression
	}
	return &MipmapSystem{world: world, settings: ts}
}

// Update configures every pending material and returns how many were
// handled.
func (ms *MipmapSystem) Update() int {
	configured := 0
	for _, h := range ms.world.Materials.Handles() {
		m, ok := ms.world.Materials.Get(h)
		if !ok || m.Textures.Configured {
			continue
		}
		m.Configure(ms.settings)
		configured++
	}
	if configured > 0 {
		core.LogDebug("configured textures of %d materials", configured)
	}
	return configured
}
