package loaders

import (
	"github.com/spaghettifunk/sponza/engine/math"
	"github.com/spaghettifunk/sponza/engine/scene"
)

// NoMaterial marks a node template without a material.
const NoMaterial = -1

/** @brief A decoded node, not yet part of any hierarchy. */
type NodeTemplate struct {
	Name      string
	Transform math.Transform
	/** @brief Index into SceneTemplate.Materials, NoMaterial if none. */
	Material int
	Mesh     bool
	Light    *scene.LightDescriptor
	Camera   *scene.CameraDescriptor
	/** @brief Indices into SceneTemplate.Nodes. */
	Children []int
}

/**
 * @brief The result of decoding a scene file. Materials are listed once and
 * shared by every node referencing them.
 */
type SceneTemplate struct {
	Path      string
	Materials []scene.Material
	Nodes     []NodeTemplate
	/** @brief Indices of the top level nodes. */
	Roots []int
}

// Len returns the number of nodes in the template.
func (st *SceneTemplate) Len() int {
	return len(st.Nodes)
}

// Loader decodes a scene file into a template. Implementations must be safe
// to call from several goroutines.
type Loader interface {
	Load(path string) (*SceneTemplate, error)
	Extensions() []string
}
