package systems

import (
	"runtime"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
)

// AssetStreamer attaches resolved assets to the world. It runs first in every
// frame so the normalizer sees the newest state of the hierarchy.
type AssetStreamer interface {
	Update() int
	Shutdown() error
}

type SystemManagerConfig struct {
	NumWorkers            int
	JobQueueSize          int
	DisableFrustumCulling bool
	Mipmap                MipmapSettings
}

/**
 * @brief Owns the per-frame systems and runs them in a fixed order: asset
 * streaming, normalization, texture configuration, input routing and
 * finally the benchmark. Both the router and the benchmark write the host
 * camera; the benchmark runs last and wins.
 */
type SystemManager struct {
	world  *scene.World
	events *core.Events

	jobSystem    *JobSystem
	cameraSystem *CameraSystem
	normalizer   *SceneNormalizer
	mipmapSystem *MipmapSystem
	inputRouter  *InputRouter
	benchmark    *BenchmarkController
	assets       AssetStreamer
}

func NewSystemManager(config SystemManagerConfig, world *scene.World, events *core.Events) (*SystemManager, error) {
	if config.NumWorkers == 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	js, err := NewJobSystem(config.NumWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs := NewCameraSystem(world)
	return &SystemManager{
		world:        world,
		events:       events,
		jobSystem:    js,
		cameraSystem: cs,
		normalizer:   NewSceneNormalizer(world, config.DisableFrustumCulling),
		mipmapSystem: NewMipmapSystem(world, config.Mipmap),
		inputRouter:  NewInputRouter(cs),
		benchmark:    NewBenchmarkController(cs, events),
	}, nil
}

// SetAssetStreamer registers the asset system. It is shut down with the
// manager.
func (sm *SystemManager) SetAssetStreamer(a AssetStreamer) {
	sm.assets = a
}

func (sm *SystemManager) Events() *core.Events {
	return sm.events
}

func (sm *SystemManager) Jobs() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Camera() *CameraSystem {
	return sm.cameraSystem
}

func (sm *SystemManager) Benchmark() *BenchmarkController {
	return sm.benchmark
}

func (sm *SystemManager) Normalizer() *SceneNormalizer {
	return sm.normalizer
}

/**
 * @brief Runs all systems for one frame.
 * @param delta The duration of the previous frame in seconds.
 * @param in The input state of this frame.
 */
func (sm *SystemManager) Update(delta float64, in *core.Input) {
	if sm.assets != nil {
		sm.assets.Update()
	}
	sm.normalizer.Update()
	sm.mipmapSystem.Update()
	sm.inputRouter.Update(in)
	if in.KeyPressed(KeyBenchmark) {
		sm.benchmark.Trigger(delta)
	}
	sm.benchmark.Update()
}

func (sm *SystemManager) Shutdown() error {
	if sm.assets != nil {
		if err := sm.assets.Shutdown(); err != nil {
			return err
		}
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
