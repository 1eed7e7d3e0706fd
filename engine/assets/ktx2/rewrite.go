package ktx2

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sponza/engine/core"
	"golang.org/x/exp/slices"
)

// MimeType of KTX2 images in glTF documents.
const MimeType = "image/ktx2"

// RewriteReferences points the images of every .gltf document under root at
// their converted KTX2 files and declares KHR_texture_basisu on the textures
// using them. Images without a converted file are left alone.
func RewriteReferences(root string) error {
	_, err := RewriteReferencesCount(root)
	return err
}

/**
 * @brief Same as RewriteReferences.
 * @return The number of image references rewritten.
 */
func RewriteReferencesCount(root string) (int, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".gltf") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", root, err)
	}

	total := 0
	for _, path := range docs {
		n, err := rewriteDocument(path)
		if err != nil {
			return total, fmt.Errorf("rewrite %s: %w", path, err)
		}
		if n > 0 {
			core.LogInfo("%s: %d image references now point at KTX2 files", path, n)
		}
		total += n
	}
	return total, nil
}

func rewriteDocument(path string) (int, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)

	changed := 0
	for _, img := range doc.Images {
		if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
			continue
		}
		if strings.EqualFold(filepath.Ext(img.URI), Extension) {
			continue
		}
		uri := KTX2Path(img.URI)
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(uri))); err != nil {
			continue
		}
		img.URI = uri
		img.MimeType = MimeType
		changed++
	}
	if !moveToBasisu(doc) && changed == 0 {
		return 0, nil
	}
	if err := gltf.Save(doc, path); err != nil {
		return 0, err
	}
	return changed, nil
}

/**
 * @brief Moves the source of every texture sampling a KTX2 image into its
 * KHR_texture_basisu extension, which glTF requires for KTX2 images.
 * @return True if the document changed.
 */
func moveToBasisu(doc *gltf.Document) bool {
	changed := false
	for _, tex := range doc.Textures {
		if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*tex.Source]
		if img.MimeType != MimeType && !strings.EqualFold(filepath.Ext(img.URI), Extension) {
			continue
		}
		if tex.Extensions == nil {
			tex.Extensions = gltf.Extensions{}
		}
		tex.Extensions[BasisuExtension] = &TextureBasisu{Source: *tex.Source}
		tex.Source = nil
		changed = true
	}
	used := changed
	if !used {
		for _, tex := range doc.Textures {
			if _, ok := BasisuSource(tex); ok {
				used = true
				break
			}
		}
	}
	if used {
		if !slices.Contains(doc.ExtensionsUsed, BasisuExtension) {
			doc.ExtensionsUsed = append(doc.ExtensionsUsed, BasisuExtension)
			changed = true
		}
		if !slices.Contains(doc.ExtensionsRequired, BasisuExtension) {
			doc.ExtensionsRequired = append(doc.ExtensionsRequired, BasisuExtension)
			changed = true
		}
	}
	return changed
}
