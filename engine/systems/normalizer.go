package systems

import (
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
)

// NormalizeReport summarizes one normalizer pass.
type NormalizeReport struct {
	// Roots counts the roots normalized in this pass.
	Roots int
	// Deferred counts the roots still waiting for their children.
	Deferred         int
	MaterialsFlipped int
	LightsRemoved    int
	CamerasRemoved   int
}

/**
 * @brief Sanitizes freshly loaded asset subtrees. Every frame it visits the
 * roots tagged PendingNormalization, flips the normal map convention of the
 * materials they reference, removes the lights and cameras embedded in the
 * asset and clears the tag once the whole subtree was processed.
 */
type SceneNormalizer struct {
	world *scene.World
	// DisableFrustumCulling tags every mesh node with TagNoFrustumCulling.
	DisableFrustumCulling bool
}

func NewSceneNormalizer(world *scene.World, disableFrustumCulling bool) *SceneNormalizer {
	return &SceneNormalizer{
		world:                 world,
		DisableFrustumCulling: disableFrustumCulling,
	}
}

/**
 * @brief Runs one normalization pass over all pending roots.
 * Roots whose children have not been attached yet keep their tag and are
 * retried on a later frame. Panics with core.ErrMalformedHierarchy when a
 * subtree contains a cycle.
 */
func (sn *SceneNormalizer) Update() NormalizeReport {
	var report NormalizeReport
	h := sn.world.Hierarchy
	for _, root := range h.Tagged(scene.TagPendingNormalization) {
		if !h.Contains(root) {
			// Despawned by a root normalized earlier in this pass.
			continue
		}
		if _, ok := h.Children(root); !ok {
			report.Deferred++
			continue
		}
		r := sn.normalize(root)
		h.RemoveTag(root, scene.TagPendingNormalization)

		core.LogInfo("normalized %s (%s): %d materials flipped, %d lights and %d cameras removed",
			h.Name(root), root, r.MaterialsFlipped, r.LightsRemoved, r.CamerasRemoved)

		report.Roots++
		report.MaterialsFlipped += r.MaterialsFlipped
		report.LightsRemoved += r.LightsRemoved
		report.CamerasRemoved += r.CamerasRemoved
	}
	return report
}

type visit struct {
	entity   scene.Entity
	expanded bool
}

// normalize walks the descendants of root children first so that a node is
// only despawned after its subtree has been handled.
func (sn *SceneNormalizer) normalize(root scene.Entity) NormalizeReport {
	var report NormalizeReport
	h := sn.world.Hierarchy

	seen := map[scene.Entity]struct{}{root: {}}
	children, _ := h.Children(root)
	stack := make([]visit, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, visit{entity: children[i]})
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			if _, ok := seen[top.entity]; ok {
				core.LogError("entity %s reached twice below %s", top.entity, root)
				panic(core.ErrMalformedHierarchy)
			}
			seen[top.entity] = struct{}{}
			top.expanded = true
			e := top.entity
			if kids, ok := h.Children(e); ok {
				for i := len(kids) - 1; i >= 0; i-- {
					stack = append(stack, visit{entity: kids[i]})
				}
			}
			continue
		}

		e := top.entity
		stack = stack[:len(stack)-1]
		if !h.Contains(e) {
			continue
		}
		sn.visit(e, &report)
	}
	return report
}

func (sn *SceneNormalizer) visit(e scene.Entity, report *NormalizeReport) {
	h := sn.world.Hierarchy

	if m, ok := h.Material(e); ok && sn.world.Materials.FlipNormalMapY(m) {
		report.MaterialsFlipped++
	}
	if sn.DisableFrustumCulling && h.IsMesh(e) {
		h.AddTag(e, scene.TagNoFrustumCulling)
	}
	if h.HasTag(e, scene.TagHostOwned) {
		return
	}

	_, isLight := h.Light(e)
	_, isCamera := h.Camera(e)
	if !isLight && !isCamera {
		return
	}
	sn.rescueHostOwned(e)
	h.Despawn(e)
	if isLight {
		report.LightsRemoved++
	} else {
		report.CamerasRemoved++
	}
}

// rescueHostOwned moves HostOwned descendants of e to e's parent so they
// outlive the despawn of e.
func (sn *SceneNormalizer) rescueHostOwned(e scene.Entity) {
	h := sn.world.Hierarchy
	parent := h.Parent(e)
	kids, ok := h.Children(e)
	if !ok {
		return
	}
	stack := kids
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h.HasTag(cur, scene.TagHostOwned) {
			var err error
			if parent == scene.Nil {
				err = h.Detach(cur)
			} else {
				err = h.AddChild(parent, cur)
			}
			if err != nil {
				core.LogWarn("could not keep host entity %s: %s", cur, err)
			}
			continue
		}
		if more, ok := h.Children(cur); ok {
			stack = append(stack, more...)
		}
	}
}
