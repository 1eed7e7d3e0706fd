package sponza

import (
	"github.com/spaghettifunk/sponza/engine/math"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

// hostLight is one light of the rig together with its pose.
type hostLight struct {
	name       string
	descriptor scene.LightDescriptor
	transform  math.Transform
}

var (
	sunColour = [3]float32{1.0, 0.97, 0.85}
	skyColour = [3]float32{0.8, 0.9, 0.97}
)

// spot builds an unshadowed spot light at position aimed at target. Angles
// are fractions of pi.
func spot(position, target math.Vec3, colour [3]float32, rangeM, intensity, inner, outer float32) (math.Transform, scene.LightDescriptor) {
	return math.TransformFromPosition(position).LookingAt(target, math.NewVec3Right()), scene.LightDescriptor{
		Kind:       scene.LightSpot,
		Colour:     colour,
		Intensity:  intensity,
		Range:      rangeM,
		InnerAngle: math.K_PI * inner,
		OuterAngle: math.K_PI * outer,
	}
}

/**
 * @brief Builds the light rig lighting the atrium. The sun is the only
 * directional light, every other light fills a part of the building the
 * sun does not reach.
 */
func lightRig() []hostLight {
	sun := hostLight{
		name: "sun",
		descriptor: scene.LightDescriptor{
			Kind:             scene.LightDirectional,
			Colour:           [3]float32{1.0, 1.0, 0.99},
			Intensity:        400000,
			ShadowsEnabled:   true,
			ShadowDepthBias:  0.3,
			ShadowNormalBias: 0.7,
			ShadowHalfSize:   20,
		},
		transform: math.TransformFromRotation(math.NewQuatFromEulerXYZ(math.K_PI*-0.43, math.K_PI*-0.08, 0)),
	}

	rig := []hostLight{sun}

	add := func(name string, t math.Transform, d scene.LightDescriptor) {
		rig = append(rig, hostLight{name: name, descriptor: d, transform: t})
	}

	// Bounce light the sun throws off the floor and the upper floors.
	t, d := spot(math.NewVec3(2, 0, -2), math.NewVec3(0, 999, 0), sunColour, 15, 1000, 0.4, 0.5)
	add("sun_reflection", t, d)

	t, d = spot(math.NewVec3(2, 5.5, -2), math.NewVec3(0, -999, 0), sunColour, 13, 800, 0.3, 0.4)
	add("sun_reflection_bounce", t, d)

	add("sky", math.TransformFromPosition(math.NewVec3(0, 30, 0)), scene.LightDescriptor{
		Kind:      scene.LightPoint,
		Colour:    skyColour,
		Intensity: 100000,
		Range:     24,
		Radius:    3,
	})

	t, d = spot(math.NewVec3(0, -2, 0), math.NewVec3(0, 999, 0), skyColour, 11, 300, 0.46, 0.49)
	add("sky_reflection", t, d)

	t, d = spot(math.NewVec3(3, 2, 0), math.NewVec3(0, -999, 0), [3]float32{0.8, 0.9, 0.95}, 12, 1800, 0.34, 0.5)
	add("sky_low", t, d)

	return rig
}

// hostCamera describes the camera the benchmark flies.
func hostCamera() scene.CameraDescriptor {
	return scene.CameraDescriptor{
		HDR:  true,
		FovY: math.K_PI / 3,
		Near: 0.1,
		Far:  1000,
		Bloom: &scene.BloomSettings{
			Threshold: 0,
			Knee:      0.1,
			Scale:     1,
			Intensity: 0.01,
		},
		FXAA: true,
	}
}

// SpawnHostScene adds the light rig and the camera to world, all tagged as
// host owned so that asset normalization leaves them alone.
func SpawnHostScene(world *scene.World) (scene.Entity, []scene.Entity) {
	h := world.Hierarchy

	lights := make([]scene.Entity, 0, 6)
	for _, l := range lightRig() {
		e := h.Spawn(l.name)
		h.SetTransform(e, l.transform)
		h.SetLight(e, l.descriptor)
		h.AddTag(e, scene.TagHostOwned)
		lights = append(lights, e)
	}

	camera := h.Spawn("camera")
	h.SetCamera(camera, hostCamera())
	h.SetTransform(camera, systems.Preset(1).Pose())
	h.AddTag(camera, scene.TagHostOwned)

	return camera, lights
}
