package systems

import (
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/math"
	"github.com/spaghettifunk/sponza/engine/scene"
)

/**
 * @brief Resolves the host camera, the single entity carrying a camera
 * descriptor together with the HostOwned tag. Its pose is the entity's
 * transform.
 */
type CameraSystem struct {
	world *scene.World
}

func NewCameraSystem(world *scene.World) *CameraSystem {
	return &CameraSystem{world: world}
}

/**
 * @brief Looks up the host camera.
 * @return The camera entity and true when exactly one host camera exists.
 * Zero or several matches are not an error, the caller is expected to skip
 * its work for this frame.
 */
func (cs *CameraSystem) HostCamera() (scene.Entity, bool) {
	found := scene.Nil
	for _, e := range cs.world.Hierarchy.Cameras() {
		if !cs.world.Hierarchy.HasTag(e, scene.TagHostOwned) {
			continue
		}
		if found != scene.Nil {
			core.LogDebug("more than one host camera, skipping")
			return scene.Nil, false
		}
		found = e
	}
	if found == scene.Nil {
		core.LogDebug("no host camera yet, skipping")
		return scene.Nil, false
	}
	return found, true
}

// Pose returns the host camera transform.
func (cs *CameraSystem) Pose() (math.Transform, bool) {
	e, ok := cs.HostCamera()
	if !ok {
		return math.Transform{}, false
	}
	return cs.world.Hierarchy.Transform(e)
}

// SetPose moves the host camera. It reports false when there is no unique
// host camera.
func (cs *CameraSystem) SetPose(t math.Transform) bool {
	e, ok := cs.HostCamera()
	if !ok {
		return false
	}
	cs.world.Hierarchy.SetTransform(e, t)
	return true
}

// Teleport moves the host camera to a preset.
func (cs *CameraSystem) Teleport(p CameraPreset) bool {
	return cs.SetPose(p.Pose())
}
