package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/sponza/engine/assets/loaders"
	"github.com/spaghettifunk/sponza/engine/containers"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
)

// Register loaders for each file extension
func (am *AssetManager) registerLoader(loader loaders.Loader) {
	for _, ext := range loader.Extensions() {
		am.loaders[strings.ToLower(ext)] = loader
	}
}

func (am *AssetManager) loaderFor(path string) (loaders.Loader, error) {
	loader, ok := am.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, core.ErrNoLoader)
	}
	return loader, nil
}

type pendingNode struct {
	node   int
	parent scene.Entity
}

/**
 * @brief Instantiates a template under root, breadth first. Every glTF
 * material becomes one table entry shared by all nodes using it.
 * @return The created material handles and the number of entities spawned.
 */
func instantiate(world *scene.World, root scene.Entity, st *loaders.SceneTemplate) ([]scene.MaterialHandle, int, error) {
	handles := make([]scene.MaterialHandle, len(st.Materials))
	for i, m := range st.Materials {
		handles[i] = world.Materials.Add(m)
	}

	queue := containers.NewRingQueue[pendingNode](max(st.Len(), 1))
	for _, r := range st.Roots {
		if err := queue.Enqueue(pendingNode{node: r, parent: root}); err != nil {
			return handles, 0, err
		}
	}

	h := world.Hierarchy
	spawned := 0
	for !queue.IsEmpty() {
		p, err := queue.Dequeue()
		if err != nil {
			return handles, spawned, err
		}
		nt := st.Nodes[p.node]
		e, err := h.SpawnChild(p.parent, nt.Name)
		if err != nil {
			return handles, spawned, err
		}
		spawned++

		h.SetTransform(e, nt.Transform)
		h.SetMesh(e, nt.Mesh)
		if nt.Material != loaders.NoMaterial {
			h.SetMaterial(e, handles[nt.Material])
		}
		if nt.Light != nil {
			h.SetLight(e, *nt.Light)
		}
		if nt.Camera != nil {
			h.SetCamera(e, *nt.Camera)
		}
		for _, c := range nt.Children {
			if err := queue.Enqueue(pendingNode{node: c, parent: e}); err != nil {
				return handles, spawned, fmt.Errorf("node %s: %w", nt.Name, err)
			}
		}
	}
	return handles, spawned, nil
}
