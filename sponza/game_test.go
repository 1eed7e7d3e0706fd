package sponza

import (
	"testing"
	"time"

	"github.com/spaghettifunk/sponza/engine"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/math"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnHostScene(t *testing.T) {
	world := scene.NewWorld()
	camera, lights := SpawnHostScene(world)
	h := world.Hierarchy

	require.Len(t, lights, 6)
	assert.Equal(t, 7, h.Len())
	assert.Len(t, h.Tagged(scene.TagHostOwned), 7)

	kinds := map[scene.LightKind]int{}
	for _, l := range lights {
		d, ok := h.Light(l)
		require.True(t, ok)
		kinds[d.Kind]++
		assert.Equal(t, scene.Nil, h.Parent(l))
	}
	assert.Equal(t, 1, kinds[scene.LightDirectional])
	assert.Equal(t, 1, kinds[scene.LightPoint])
	assert.Equal(t, 4, kinds[scene.LightSpot])

	sun, _ := h.Light(lights[0])
	assert.Equal(t, float32(400000), sun.Intensity)
	assert.True(t, sun.ShadowsEnabled)
	assert.Equal(t, float32(20), sun.ShadowHalfSize)

	desc, ok := h.Camera(camera)
	require.True(t, ok)
	assert.True(t, desc.HDR)
	assert.True(t, desc.FXAA)
	require.NotNil(t, desc.Bloom)
	assert.InDelta(t, math.K_PI/3, desc.FovY, 1e-6)

	pose, ok := h.Transform(camera)
	require.True(t, ok)
	assert.True(t, pose.Compare(systems.Preset(1).Pose(), 1e-5))

	cs := systems.NewCameraSystem(world)
	host, ok := cs.HostCamera()
	require.True(t, ok)
	assert.Equal(t, camera, host)
}

func TestSpotLightsPointAtTheirTargets(t *testing.T) {
	for _, l := range lightRig() {
		if l.descriptor.Kind != scene.LightSpot {
			continue
		}
		forward := l.transform.Forward()
		assert.InDelta(t, 1, forward.Length(), 1e-4, l.name)
		assert.InDelta(t, 1, kabs(forward.Y), 1e-3, "%s aims straight up or down", l.name)
		assert.Less(t, l.descriptor.InnerAngle, l.descriptor.OuterAngle, l.name)
	}
}

func kabs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestHostSceneSurvivesNormalization(t *testing.T) {
	world := scene.NewWorld()
	camera, lights := SpawnHostScene(world)
	h := world.Hierarchy

	root := h.Spawn("asset")
	h.AddTag(root, scene.TagPendingNormalization)
	baked, err := h.SpawnChild(root, "baked_light")
	require.NoError(t, err)
	h.SetLight(baked, scene.LightDescriptor{Kind: scene.LightPoint})

	report := systems.NewSceneNormalizer(world, false).Update()
	assert.Equal(t, 1, report.Roots)
	assert.Equal(t, 1, report.LightsRemoved)

	assert.True(t, h.Contains(camera))
	for _, l := range lights {
		assert.True(t, h.Contains(l))
	}
	assert.False(t, h.Contains(baked))
}

func TestScenes(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	assert.Equal(t, []string{MainScene, CurtainsScene}, NewSponzaGame(&config, false).Scenes())
	assert.Equal(t, []string{MainScene}, NewSponzaGame(&config, true).Scenes())
}

func TestBenchmarkResultsAreRecorded(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	g := NewSponzaGame(&config, true)

	handled := g.onBenchmarkCompleted(core.EventContext{
		Type: core.EVENT_CODE_BENCHMARK_COMPLETED,
		Data: systems.BenchmarkResult{Frames: 91, FramesPerStep: 30, Elapsed: time.Second, AvgFrameMs: 11},
	})
	assert.False(t, handled, "other listeners still see the result")
	require.Len(t, g.Results(), 1)
	assert.Equal(t, uint64(91), g.Results()[0].Frames)

	g.onBenchmarkCompleted(core.EventContext{Type: core.EVENT_CODE_BENCHMARK_COMPLETED, Data: "garbage"})
	assert.Len(t, g.Results(), 1)
}
