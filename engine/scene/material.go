package scene

import (
	"sort"

	"github.com/spaghettifunk/sponza/engine/math"
)

// MaterialHandle references a Material in a MaterialTable. Many entities may
// hold the same handle.
type MaterialHandle uint32

// InvalidMaterial is the zero handle; no material is ever stored under it.
const InvalidMaterial MaterialHandle = 0

/** @brief Compression codecs the texture pipeline can target. */
type Codec uint8

const (
	CodecNone Codec = iota
	CodecBC7
	CodecASTC
)

/**
 * @brief Sampler and compression parameters applied to a material's
 * textures by the mipmap pass.
 */
type TextureSettings struct {
	/** @brief Anisotropic filtering level, 1 means disabled. */
	Anisotropy uint8
	/** @brief Target GPU compression codec. */
	Codec Codec
	/** @brief Trades compression quality for encoding speed. */
	LowQuality bool
	/** @brief Directory holding compressed texture data between runs. */
	CachePath string
	/** @brief Set once the mipmap pass handled this material. */
	Configured bool
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour,
 * bumpiness, shininess and more.
 */
type Material struct {
	/** @brief The material name. */
	Name string
	/** @brief The base colour. */
	BaseColour [4]float32
	/** @brief The base colour texture uri, if any. */
	BaseColourMap string
	/** @brief The normal texture uri, if any. */
	NormalMap string
	/**
	 * @brief Flips the green channel of the normal map. Assets authored with a
	 * Y-down normal convention need this set to render correctly.
	 */
	FlipNormalMapY bool
	/** @brief Incremented every time the material is changed. */
	Generation uint32
	Textures   TextureSettings
}

// MaterialTable is the shared store of materials. Mutations through Get are
// visible to every entity holding the handle.
type MaterialTable struct {
	next      MaterialHandle
	materials map[MaterialHandle]*Material
}

func NewMaterialTable() *MaterialTable {
	return &MaterialTable{
		next:      InvalidMaterial + 1,
		materials: make(map[MaterialHandle]*Material),
	}
}

func (t *MaterialTable) Add(m Material) MaterialHandle {
	h := t.next
	t.next++
	t.materials[h] = &m
	return h
}

func (t *MaterialTable) Get(h MaterialHandle) (*Material, bool) {
	m, ok := t.materials[h]
	return m, ok
}

func (t *MaterialTable) Remove(h MaterialHandle) {
	delete(t.materials, h)
}

func (t *MaterialTable) Len() int {
	return len(t.materials)
}

// Handles returns every stored handle in ascending order.
func (t *MaterialTable) Handles() []MaterialHandle {
	out := make([]MaterialHandle, 0, len(t.materials))
	for h := range t.materials {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FlipNormalMapY sets the normal map Y flip on h. It reports whether the
// material changed.
func (t *MaterialTable) FlipNormalMapY(h MaterialHandle) bool {
	m, ok := t.materials[h]
	if !ok || m.FlipNormalMapY {
		return false
	}
	m.FlipNormalMapY = true
	m.Generation++
	return true
}

// DefaultBaseColour is opaque white.
func DefaultBaseColour() [4]float32 {
	return [4]float32{1, 1, 1, 1}
}

// clampAnisotropy bounds the filtering level to what GPUs accept.
func clampAnisotropy(level uint8) uint8 {
	return math.Clamp(level, 1, 16)
}

// Configure applies texture settings to the material once.
func (m *Material) Configure(s TextureSettings) {
	s.Anisotropy = clampAnisotropy(s.Anisotropy)
	s.Configured = true
	m.Textures = s
	m.Generation++
}
