package systems

import (
	"testing"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputRouterTeleports(t *testing.T) {
	w, cam := newHostCameraWorld(t)
	in := core.NewInput(nil)
	router := NewInputRouter(NewCameraSystem(w))

	in.ProcessKey(core.KEY_2, true)
	router.Update(in)
	assert.True(t, cameraAt(t, w, cam, Preset(2)))
	in.Update()

	in.ProcessKey(core.KEY_3, true)
	router.Update(in)
	assert.True(t, cameraAt(t, w, cam, Preset(3)))
	in.Update()

	// Holding a key does not fire again.
	w.Hierarchy.SetTransform(cam, Preset(1).Pose())
	router.Update(in)
	assert.True(t, cameraAt(t, w, cam, Preset(1)))

	in.ProcessKey(core.KEY_I, true)
	router.Update(in)
	assert.True(t, cameraAt(t, w, cam, Preset(1)), "logging leaves the pose alone")
}

func TestInputRouterWithoutCamera(t *testing.T) {
	w := scene.NewWorld()
	in := core.NewInput(nil)
	router := NewInputRouter(NewCameraSystem(w))

	in.ProcessKey(core.KEY_1, true)
	in.ProcessKey(core.KEY_I, true)
	assert.NotPanics(t, func() { router.Update(in) })
}

func TestPresetClamp(t *testing.T) {
	assert.Equal(t, 3, PresetCount())
	assert.Equal(t, Preset(1), Preset(0))
	assert.Equal(t, Preset(3), Preset(7))
	assert.NotEqual(t, Preset(1), Preset(2))
}

func TestPresetOnePose(t *testing.T) {
	pose := Preset(1).Pose()
	forward := pose.Forward()
	// Looking from the start position towards the atrium centre.
	assert.Greater(t, forward.X, float32(0))
	assert.Greater(t, forward.Y, float32(0))
}

func TestSystemManagerBenchmarkWinsOverRouter(t *testing.T) {
	w, cam := newHostCameraWorld(t)
	sm, err := NewSystemManager(SystemManagerConfig{NumWorkers: 1}, w, core.NewEvents())
	require.NoError(t, err)
	defer sm.Shutdown()

	in := core.NewInput(nil)
	in.ProcessKey(KeyBenchmark, true)
	sm.Update(1.0/60.0, in)
	in.Update()
	require.Equal(t, BenchmarkRunning, sm.Benchmark().Phase())
	assert.True(t, cameraAt(t, w, cam, Preset(1)))

	// A preset key in the same frame as a benchmark step boundary loses.
	for i := 1; i < 120; i++ {
		sm.Update(1.0/60.0, in)
		in.Update()
	}
	in.ProcessKey(KeyPreset3, true)
	sm.Update(1.0/60.0, in)
	in.Update()
	assert.True(t, cameraAt(t, w, cam, Preset(2)))
}

func TestSystemManagerNormalizesAndConfiguresMaterials(t *testing.T) {
	f := newAssetFixture(t)
	codec := scene.CodecBC7
	sm, err := NewSystemManager(SystemManagerConfig{
		NumWorkers: 1,
		Mipmap: MipmapSettings{
			AnisotropicFiltering: 16,
			Compression:          &codec,
		},
	}, f.world, nil)
	require.NoError(t, err)
	defer sm.Shutdown()

	assert.False(t, sm.Normalizer().DisableFrustumCulling)
	sm.Update(1.0/60.0, core.NewInput(nil))

	assert.False(t, f.world.Hierarchy.HasTag(f.root, scene.TagPendingNormalization))
	for _, h := range f.world.Materials.Handles() {
		m, _ := f.world.Materials.Get(h)
		assert.True(t, m.FlipNormalMapY)
		assert.True(t, m.Textures.Configured)
		assert.Equal(t, uint8(16), m.Textures.Anisotropy)
		assert.Equal(t, scene.CodecBC7, m.Textures.Codec)
	}
}
