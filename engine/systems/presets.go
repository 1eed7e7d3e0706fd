package systems

import (
	"fmt"

	"github.com/spaghettifunk/sponza/engine/math"
)

// CameraPreset is a fixed camera viewpoint.
type CameraPreset struct {
	Position math.Vec3
	Target   math.Vec3
}

// Pose returns the camera transform for the preset.
func (p CameraPreset) Pose() math.Transform {
	return math.TransformFromPosition(p.Position).LookingAt(p.Target, math.NewVec3Up())
}

func (p CameraPreset) String() string {
	return fmt.Sprintf("pos=(%.2f, %.2f, %.2f) target=(%.2f, %.2f, %.2f)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Target.X, p.Target.Y, p.Target.Z)
}

var presets = [3]CameraPreset{
	// Start pose, looking down the atrium.
	{Position: math.NewVec3(-10.5, 1.7, -1.0), Target: math.NewVec3(0.0, 3.5, 0.0)},
	// Upper gallery, facing the opposite end.
	{Position: math.NewVec3(9.0, 6.2, 3.4), Target: math.NewVec3(-6.0, 4.5, -0.5)},
	// Ground floor, looking up through the curtains.
	{Position: math.NewVec3(2.0, 0.8, -3.8), Target: math.NewVec3(-1.0, 7.5, 1.5)},
}

// Preset returns preset n, 1-based. Out of range values clamp to the
// nearest preset.
func Preset(n int) CameraPreset {
	return presets[math.Clamp(n, 1, len(presets))-1]
}

// PresetCount is the number of camera presets.
func PresetCount() int {
	return len(presets)
}
