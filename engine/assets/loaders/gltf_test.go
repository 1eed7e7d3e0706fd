package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScene = `{
  "asset": {"version": "2.0"},
  "extensionsUsed": ["KHR_lights_punctual"],
  "extensions": {
    "KHR_lights_punctual": {
      "lights": [
        {"type": "spot", "intensity": 40, "range": 12, "spot": {"innerConeAngle": 0.2, "outerConeAngle": 0.6}},
        {"type": "directional", "color": [1.0, 0.5, 0.25]}
      ]
    }
  },
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "Sponza", "children": [1, 2, 3, 4]},
    {"name": "Columns", "mesh": 0, "translation": [1, 2, 3]},
    {"name": "Arches", "mesh": 1},
    {"name": "Lamp", "extensions": {"KHR_lights_punctual": {"light": 0}}, "children": [5]},
    {"name": "Camera", "camera": 0},
    {"name": "Sun", "extensions": {"KHR_lights_punctual": {"light": 1}}}
  ],
  "meshes": [
    {"name": "columns", "primitives": [{"attributes": {}, "material": 0}]},
    {"name": "arches", "primitives": [{"attributes": {}, "material": 0}, {"attributes": {}, "material": 1}]}
  ],
  "materials": [
    {"name": "stone", "normalTexture": {"index": 0}, "pbrMetallicRoughness": {"baseColorFactor": [0.5, 0.5, 0.5, 1]}},
    {"name": "fabric"}
  ],
  "textures": [{"source": 0}],
  "images": [{"uri": "textures/stone_normal.png"}],
  "cameras": [{"type": "perspective", "perspective": {"yfov": 0.8, "znear": 0.1, "zfar": 100}}]
}`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.gltf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func findNode(st *SceneTemplate, name string) (NodeTemplate, bool) {
	for _, n := range st.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeTemplate{}, false
}

func TestGLTFLoaderDecodesHierarchy(t *testing.T) {
	path := writeScene(t, sampleScene)

	st, err := (&GLTFLoader{}).Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, st.Path)
	require.Len(t, st.Roots, 1)
	root := st.Nodes[st.Roots[0]]
	assert.Equal(t, "Sponza", root.Name)
	assert.Len(t, root.Children, 4)
	// 6 nodes plus one child per primitive of the two-primitive mesh.
	assert.Equal(t, 8, st.Len())

	columns, ok := findNode(st, "Columns")
	require.True(t, ok)
	assert.True(t, columns.Mesh)
	assert.Equal(t, 0, columns.Material)
	assert.Equal(t, float32(2), columns.Transform.Position.Y)

	arches, ok := findNode(st, "Arches")
	require.True(t, ok)
	assert.False(t, arches.Mesh)
	require.Len(t, arches.Children, 2)
	assert.Equal(t, 0, st.Nodes[arches.Children[0]].Material)
	assert.Equal(t, 1, st.Nodes[arches.Children[1]].Material)
}

func TestGLTFLoaderMaterials(t *testing.T) {
	st, err := (&GLTFLoader{}).Load(writeScene(t, sampleScene))
	require.NoError(t, err)

	require.Len(t, st.Materials, 2)
	stone := st.Materials[0]
	assert.Equal(t, "stone", stone.Name)
	assert.Equal(t, "textures/stone_normal.png", stone.NormalMap)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, stone.BaseColour)
	assert.False(t, stone.FlipNormalMapY)
	assert.Equal(t, scene.DefaultBaseColour(), st.Materials[1].BaseColour)
}

func TestGLTFLoaderLightsAndCameras(t *testing.T) {
	st, err := (&GLTFLoader{}).Load(writeScene(t, sampleScene))
	require.NoError(t, err)

	lamp, ok := findNode(st, "Lamp")
	require.True(t, ok)
	require.NotNil(t, lamp.Light)
	assert.Equal(t, scene.LightSpot, lamp.Light.Kind)
	assert.Equal(t, float32(40), lamp.Light.Intensity)
	assert.Equal(t, float32(12), lamp.Light.Range)
	assert.InDelta(t, 0.6, lamp.Light.OuterAngle, 1e-6)

	sun, ok := findNode(st, "Sun")
	require.True(t, ok)
	require.NotNil(t, sun.Light)
	assert.Equal(t, scene.LightDirectional, sun.Light.Kind)
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, sun.Light.Colour)
	assert.Equal(t, float32(1), sun.Light.Intensity)
	assert.Zero(t, sun.Light.Range)

	camera, ok := findNode(st, "Camera")
	require.True(t, ok)
	require.NotNil(t, camera.Camera)
	assert.InDelta(t, 0.8, camera.Camera.FovY, 1e-6)
	assert.Equal(t, float32(100), camera.Camera.Far)
}

func TestGLTFLoaderBasisuTextures(t *testing.T) {
	doc := `{
	  "asset": {"version": "2.0"},
	  "extensionsUsed": ["KHR_texture_basisu"],
	  "extensionsRequired": ["KHR_texture_basisu"],
	  "materials": [{"name": "stone", "normalTexture": {"index": 0}, "pbrMetallicRoughness": {"baseColorTexture": {"index": 1}}}],
	  "textures": [
	    {"extensions": {"KHR_texture_basisu": {"source": 1}}},
	    {"source": 0}
	  ],
	  "images": [{"uri": "textures/stone_albedo.png"}, {"uri": "textures/stone_normal.ktx2", "mimeType": "image/ktx2"}],
	  "scenes": [{"nodes": [0]}],
	  "nodes": [{"name": "Wall"}]
	}`
	st, err := (&GLTFLoader{}).Load(writeScene(t, doc))
	require.NoError(t, err)

	require.Len(t, st.Materials, 1)
	assert.Equal(t, "textures/stone_normal.ktx2", st.Materials[0].NormalMap)
	assert.Equal(t, "textures/stone_albedo.png", st.Materials[0].BaseColourMap)
}

func TestGLTFLoaderLightDefaults(t *testing.T) {
	doc := `{
	  "asset": {"version": "2.0"},
	  "extensionsUsed": ["KHR_lights_punctual"],
	  "extensions": {"KHR_lights_punctual": {"lights": [{"type": "point"}, {"type": "spot"}]}},
	  "scenes": [{"nodes": [0]}],
	  "nodes": [
	    {"name": "Hall", "children": [1, 2]},
	    {"name": "Bulb", "extensions": {"KHR_lights_punctual": {"light": 0}}},
	    {"name": "Torch", "extensions": {"KHR_lights_punctual": {"light": 1}}}
	  ]
	}`
	st, err := (&GLTFLoader{}).Load(writeScene(t, doc))
	require.NoError(t, err)

	bulb, ok := findNode(st, "Bulb")
	require.True(t, ok)
	require.NotNil(t, bulb.Light)
	assert.Equal(t, scene.LightPoint, bulb.Light.Kind)
	assert.Equal(t, [3]float32{1, 1, 1}, bulb.Light.Colour)
	assert.Equal(t, float32(1), bulb.Light.Intensity)
	assert.Zero(t, bulb.Light.Range, "no range means unbounded")

	torch, ok := findNode(st, "Torch")
	require.True(t, ok)
	require.NotNil(t, torch.Light)
	assert.Equal(t, scene.LightSpot, torch.Light.Kind)
	assert.Zero(t, torch.Light.InnerAngle)
	assert.InDelta(t, 0.785398, torch.Light.OuterAngle, 1e-5)
	assert.Zero(t, torch.Light.Range)
}

func TestGLTFLoaderRejectsSharedNodes(t *testing.T) {
	doc := `{
	  "asset": {"version": "2.0"},
	  "scenes": [{"nodes": [0, 1]}],
	  "nodes": [{"name": "a", "children": [1]}, {"name": "b"}]
	}`
	_, err := (&GLTFLoader{}).Load(writeScene(t, doc))
	assert.ErrorIs(t, err, core.ErrMalformedHierarchy)
}

func TestGLTFLoaderMissingFile(t *testing.T) {
	_, err := (&GLTFLoader{}).Load(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.Error(t, err)
}
