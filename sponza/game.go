package sponza

import (
	"fmt"

	"github.com/spaghettifunk/sponza/engine"
	"github.com/spaghettifunk/sponza/engine/assets"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

const (
	MainScene     = "main_sponza/NewSponza_Main_glTF_002.gltf"
	CurtainsScene = "PKG_A_Curtains/NewSponza_Curtains_glTF.gltf"
)

type SponzaGame struct {
	*engine.Game
}

type gameState struct {
	// Minimal skips the curtains package.
	minimal bool

	camera scene.Entity
	lights []scene.Entity
	scenes []sceneRoot

	results []systems.BenchmarkResult
}

type sceneRoot struct {
	handle assets.AssetHandle
	entity scene.Entity
}

func NewSponzaGame(config *engine.ApplicationConfig, minimal bool) *SponzaGame {
	sg := &SponzaGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				minimal: minimal,
			},
		},
	}

	sg.FnInitialize = sg.Initialize
	sg.FnUpdate = sg.Update
	sg.FnOnResize = sg.OnResize
	sg.FnShutdown = sg.Shutdown

	return sg
}

// Scenes lists the glTF files the game streams in.
func (g *SponzaGame) Scenes() []string {
	state := g.State.(*gameState)
	if state.minimal {
		return []string{MainScene}
	}
	return []string{MainScene, CurtainsScene}
}

func (g *SponzaGame) Initialize() error {
	core.LogDebug("SponzaGame Initialize fn....")

	if g.World == nil || g.Assets == nil || g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with the world and the system managers")
	}

	state := g.State.(*gameState)
	state.camera, state.lights = SpawnHostScene(g.World)

	for _, path := range g.Scenes() {
		handle, err := g.Assets.Load(path)
		if err != nil {
			core.LogError("failed to load scene %s: %s", path, err)
			return err
		}
		root, err := g.Assets.Spawn(handle, path, scene.TagPendingNormalization)
		if err != nil {
			return err
		}
		state.scenes = append(state.scenes, sceneRoot{handle: handle, entity: root})
	}

	g.SystemManager.Events().Register(core.EVENT_CODE_BENCHMARK_COMPLETED, g, g.onBenchmarkCompleted)
	g.SystemManager.Events().Register(core.EVENT_CODE_ASSET_RESOLVED, g, g.onAssetResolved)

	core.LogInfo("press B to run the benchmark, 1-3 to jump between viewpoints, I to print the camera pose")
	return nil
}

func (g *SponzaGame) Update(deltaTime float64) error {
	return nil
}

func (g *SponzaGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("SponzaGame resized to %dx%d", width, height)
	return nil
}

func (g *SponzaGame) Shutdown() error {
	state := g.State.(*gameState)
	if n := len(state.results); n > 0 {
		core.LogInfo("%d benchmark run(s), last average %.3fms per frame", n, state.results[n-1].AvgFrameMs)
	}
	return nil
}

// Results returns the completed benchmark runs, oldest first.
func (g *SponzaGame) Results() []systems.BenchmarkResult {
	return g.State.(*gameState).results
}

func (g *SponzaGame) onBenchmarkCompleted(context core.EventContext) bool {
	result, ok := context.Data.(systems.BenchmarkResult)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	state := g.State.(*gameState)
	state.results = append(state.results, result)
	core.LogInfo("benchmark: %d frames (%d per viewpoint) in %s, %.3fms per frame",
		result.Frames, result.FramesPerStep, result.Elapsed, result.AvgFrameMs)
	return false
}

func (g *SponzaGame) onAssetResolved(context core.EventContext) bool {
	path, ok := context.Data.(string)
	if !ok {
		return false
	}
	core.LogInfo("scene %s streamed in, %d entities, %d materials", path, g.World.Hierarchy.Len(), g.World.Materials.Len())
	return false
}
