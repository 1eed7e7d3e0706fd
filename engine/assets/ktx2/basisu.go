package ktx2

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// BasisuExtension is the glTF texture extension pointing at a KTX2 image.
const BasisuExtension = "KHR_texture_basisu"

// TextureBasisu is the KHR_texture_basisu payload of a texture.
type TextureBasisu struct {
	Source int `json:"source"`
}

func unmarshalBasisu(data []byte) (any, error) {
	b := new(TextureBasisu)
	err := json.Unmarshal(data, b)
	return b, err
}

func init() {
	gltf.RegisterExtension(BasisuExtension, unmarshalBasisu)
}

// BasisuSource returns the KTX2 image a texture references through
// KHR_texture_basisu.
func BasisuSource(tex *gltf.Texture) (int, bool) {
	switch b := tex.Extensions[BasisuExtension].(type) {
	case *TextureBasisu:
		return b.Source, true
	case TextureBasisu:
		return b.Source, true
	}
	return 0, false
}
