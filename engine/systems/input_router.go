package systems

import (
	"fmt"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/math"
)

// Key bindings of the interactive camera controls.
const (
	KeyLogPose   = core.KEY_I
	KeyPreset1   = core.KEY_1
	KeyPreset2   = core.KEY_2
	KeyPreset3   = core.KEY_3
	KeyBenchmark = core.KEY_B
)

// InputRouter turns key presses into camera actions. It keeps no state of
// its own; edge detection is done by core.Input.
type InputRouter struct {
	camera *CameraSystem
}

func NewInputRouter(camera *CameraSystem) *InputRouter {
	return &InputRouter{camera: camera}
}

func (ir *InputRouter) Update(in *core.Input) {
	if in.KeyPressed(KeyLogPose) {
		if pose, ok := ir.camera.Pose(); ok {
			core.LogInfo("camera pose: %s", formatPose(pose))
		}
	}
	for i, key := range [...]core.KeyCode{KeyPreset1, KeyPreset2, KeyPreset3} {
		if in.KeyPressed(key) && ir.camera.Teleport(Preset(i+1)) {
			core.LogDebug("camera moved to preset %d", i+1)
		}
	}
}

func formatPose(t math.Transform) string {
	return fmt.Sprintf("pos=(%.3f, %.3f, %.3f) rot=(%.4f, %.4f, %.4f, %.4f)",
		t.Position.X, t.Position.Y, t.Position.Z,
		t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W)
}
