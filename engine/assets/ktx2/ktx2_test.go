package ktx2

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

type call struct {
	name string
	args []string
}

// fakeToktx records invocations and writes the output file like toktx would.
func fakeToktx(calls *[]call) RunFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name: name, args: args})
		dst := args[len(args)-2]
		src := args[len(args)-1]
		if _, err := os.Stat(src); err != nil {
			return nil, err
		}
		return nil, os.WriteFile(dst, []byte("KTX 20"), 0o644)
	}
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage(w, h)))
}

func writeBMP(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bmp.Encode(f, testImage(w, h)))
}

func TestConvertTextures(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "textures", "stone_albedo.png"), 4, 4)
	writePNG(t, filepath.Join(root, "textures", "stone_normal.png"), 3, 5)
	writeBMP(t, filepath.Join(root, "textures", "legacy.bmp"), 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hi"), 0o644))

	var calls []call
	c := NewConverterWithRunner(fakeToktx(&calls))

	n, err := c.ConvertTextures(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, calls, 3)

	for _, cl := range calls {
		assert.Equal(t, "toktx", cl.name)
		assert.Contains(t, cl.args, "--genmipmap")
		assert.True(t, strings.HasSuffix(cl.args[len(cl.args)-2], Extension))
		input := cl.args[len(cl.args)-1]
		if strings.Contains(cl.args[len(cl.args)-2], "legacy") {
			assert.Equal(t, ".png", filepath.Ext(input), "bmp is re-encoded")
			_, err := os.Stat(input)
			assert.True(t, os.IsNotExist(err), "temporary input is removed")
		}
		if strings.Contains(input, "normal") {
			assert.Contains(t, cl.args, "--normal_mode")
		}
	}
	assert.FileExists(t, filepath.Join(root, "textures", "stone_albedo.ktx2"))

	// Everything is up to date now.
	n, err = c.ConvertTextures(context.Background(), root)
	require.NoError(t, err)
	assert.Zero(t, n)

	c.Force = true
	n, err = c.ConvertTextures(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestConvertTexturesCancelled(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 2, 2)

	var calls []call
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewConverterWithRunner(fakeToktx(&calls)).ConvertTextures(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestConvertTexturesRejectsBrokenImage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not a png"), 0o644))

	var calls []call
	_, err := NewConverterWithRunner(fakeToktx(&calls)).ConvertTextures(context.Background(), root)
	assert.Error(t, err)
	assert.Empty(t, calls)
}

const texturedScene = `{
  "asset": {"version": "2.0"},
  "textures": [{"source": 0, "sampler": 0}, {"source": 1}],
  "samplers": [{}],
  "images": [
    {"uri": "textures/stone_albedo.png"},
    {"uri": "textures/missing.png"}
  ]
}`

func TestRewriteReferences(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "scene.gltf")
	require.NoError(t, os.WriteFile(doc, []byte(texturedScene), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "textures", "stone_albedo.ktx2"), []byte("KTX 20"), 0o644))

	n, err := RewriteReferencesCount(root)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rewritten, err := gltf.Open(doc)
	require.NoError(t, err)
	require.Len(t, rewritten.Images, 2)
	assert.Equal(t, "textures/stone_albedo.ktx2", rewritten.Images[0].URI)
	assert.Equal(t, MimeType, rewritten.Images[0].MimeType)
	assert.Equal(t, "textures/missing.png", rewritten.Images[1].URI)

	require.Len(t, rewritten.Textures, 2)
	converted := rewritten.Textures[0]
	assert.Nil(t, converted.Source, "a KTX2 image is only referenced through the extension")
	src, ok := BasisuSource(converted)
	require.True(t, ok)
	assert.Equal(t, 0, src)
	require.NotNil(t, converted.Sampler)
	assert.Equal(t, 0, *converted.Sampler)

	untouched := rewritten.Textures[1]
	require.NotNil(t, untouched.Source)
	assert.Equal(t, 1, *untouched.Source)
	_, ok = BasisuSource(untouched)
	assert.False(t, ok)

	assert.Equal(t, []string{BasisuExtension}, rewritten.ExtensionsUsed)
	assert.Equal(t, []string{BasisuExtension}, rewritten.ExtensionsRequired)

	// Running again changes nothing.
	info, err := os.Stat(doc)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, RewriteReferences(root))
	again, err := os.Stat(doc)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
}

func TestRewriteDeclaresBasisuForConvertedImages(t *testing.T) {
	// Images pointed at KTX2 files by an earlier run without the extension.
	root := t.TempDir()
	doc := filepath.Join(root, "scene.gltf")
	content := `{
  "asset": {"version": "2.0"},
  "extensionsUsed": ["KHR_lights_punctual"],
  "textures": [{"source": 0}],
  "images": [{"uri": "textures/stone_albedo.ktx2", "mimeType": "image/ktx2"}]
}`
	require.NoError(t, os.WriteFile(doc, []byte(content), 0o644))

	n, err := RewriteReferencesCount(root)
	require.NoError(t, err)
	assert.Zero(t, n, "no image reference changed")

	rewritten, err := gltf.Open(doc)
	require.NoError(t, err)
	src, ok := BasisuSource(rewritten.Textures[0])
	require.True(t, ok)
	assert.Equal(t, 0, src)
	assert.Nil(t, rewritten.Textures[0].Source)
	assert.Equal(t, []string{"KHR_lights_punctual", BasisuExtension}, rewritten.ExtensionsUsed)
	assert.Equal(t, []string{BasisuExtension}, rewritten.ExtensionsRequired)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a/b/c.ktx2", KTX2Path("a/b/c.png"))
	assert.True(t, IsNormalMap("Stone_Normal.jpg"))
	assert.False(t, IsNormalMap("stone_albedo.jpg"))
	assert.True(t, isPowerOfTwo(1024))
	assert.False(t, isPowerOfTwo(1000))
	assert.False(t, isPowerOfTwo(0))
}
