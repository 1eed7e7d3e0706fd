// Package ktx2 batch converts the source textures of an asset tree to KTX2
// and points the glTF documents at the converted files.
package ktx2

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/sponza/engine/core"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extension of converted textures.
const Extension = ".ktx2"

// sourceExtensions lists the texture formats the converter picks up.
var sourceExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// nativeExtensions can be handed to toktx as they are; everything else is
// re-encoded to PNG first.
var nativeExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// RunFunc executes an external tool.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type Converter struct {
	// Tool is the toktx binary.
	Tool string
	// Force converts textures even when an up to date KTX2 file exists.
	Force bool
	run   RunFunc
}

func NewConverter() *Converter {
	return &Converter{Tool: "toktx", run: executeCmd}
}

// NewConverterWithRunner replaces the tool execution, mostly for tests.
func NewConverterWithRunner(run RunFunc) *Converter {
	return &Converter{Tool: "toktx", run: run}
}

func executeCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	core.LogDebug("executing: %s %s", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	var b bytes.Buffer
	cmd.Stdout = &b
	cmd.Stderr = &b
	if err := cmd.Run(); err != nil {
		return b.Bytes(), fmt.Errorf("error executing %s: %w: %s", name, err, b.String())
	}
	return b.Bytes(), nil
}

// ConvertTextures converts every texture under root with the default
// converter.
func ConvertTextures(ctx context.Context, root string) error {
	_, err := NewConverter().ConvertTextures(ctx, root)
	return err
}

/**
 * @brief Converts every source texture under root into a mipmapped KTX2
 * file placed next to it. Blocks until all textures are done.
 * @return The number of textures converted.
 */
func (c *Converter) ConvertTextures(ctx context.Context, root string) (int, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", root, err)
	}

	converted := 0
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		dst := KTX2Path(src)
		if !c.Force && upToDate(src, dst) {
			continue
		}
		core.LogInfo("[%d/%d] converting %s", i+1, len(sources), src)
		if err := c.convert(ctx, src, dst); err != nil {
			return converted, fmt.Errorf("convert %s: %w", src, err)
		}
		converted++
	}
	core.LogInfo("converted %d of %d textures under %s", converted, len(sources), root)
	return converted, nil
}

func (c *Converter) convert(ctx context.Context, src, dst string) error {
	cfg, input, cleanup, err := prepareInput(src)
	if err != nil {
		return err
	}
	defer cleanup()

	if !isPowerOfTwo(cfg.Width) || !isPowerOfTwo(cfg.Height) {
		core.LogWarn("%s is %dx%d, not a power of two", src, cfg.Width, cfg.Height)
	}

	args := []string{"--t2", "--genmipmap", "--encode", "uastc"}
	if IsNormalMap(src) {
		args = append(args, "--assign_oetf", "linear", "--normal_mode")
	}
	args = append(args, dst, input)
	_, err = c.run(ctx, c.Tool, args...)
	return err
}

// prepareInput inspects src and, for formats toktx cannot read, re-encodes it
// into a temporary PNG.
func prepareInput(src string) (image.Config, string, func(), error) {
	noop := func() {}
	f, err := os.Open(src)
	if err != nil {
		return image.Config{}, "", noop, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", noop, fmt.Errorf("decode header: %w", err)
	}
	if nativeExtensions[strings.ToLower(filepath.Ext(src))] {
		return cfg, src, noop, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return cfg, "", noop, err
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return cfg, "", noop, fmt.Errorf("decode: %w", err)
	}
	tmp, err := os.CreateTemp("", "ktx2-*.png")
	if err != nil {
		return cfg, "", noop, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		cleanup()
		return cfg, "", noop, fmt.Errorf("re-encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return cfg, "", noop, err
	}
	return cfg, tmp.Name(), cleanup, nil
}

// KTX2Path returns the path of the converted texture for src.
func KTX2Path(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + Extension
}

// IsNormalMap guesses from the file name whether src holds normals.
func IsNormalMap(src string) bool {
	name := strings.ToLower(filepath.Base(src))
	return strings.Contains(name, "normal") || strings.Contains(name, "_nrm")
}

func upToDate(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !di.ModTime().Before(si.ModTime())
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
