package engine

import (
	"sync/atomic"

	"github.com/spaghettifunk/sponza/engine/assets"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/platform"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Frame metrics are logged every this many seconds.
const metricsLogInterval = 5.0

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	events        *core.Events
	input         *core.Input
	world         *scene.World
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
}

func New(g *Game) (*Engine, error) {
	config := g.ApplicationConfig
	core.SetLogLevel(config.LogLevel)

	events := core.NewEvents()
	input := core.NewInput(events)
	world := scene.NewWorld()

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		NumWorkers:            config.NumWorkers,
		JobQueueSize:          16,
		DisableFrustumCulling: config.DisableFrustumCulling,
		Mipmap:                config.Mipmap,
	}, world, events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager(assets.AssetManagerConfig{
		BasePath:  config.AssetPath,
		HotReload: config.HotReload,
	}, world, events, sm.Jobs())
	if err != nil {
		core.LogError(err.Error())
		sm.Shutdown()
		return nil, err
	}
	sm.SetAssetStreamer(am)

	g.World = world
	g.Assets = am
	g.SystemManager = sm

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		platform:      platform.New(events, input),
		events:        events,
		input:         input,
		world:         world,
		assetManager:  am,
		systemManager: sm,
		width:         config.StartWidth,
		height:        config.StartHeight,
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	config := e.gameInstance.ApplicationConfig
	if err := e.platform.Startup(config.Name,
		config.StartPosX,
		config.StartPosY,
		config.StartWidth,
		config.StartHeight); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()

	var sinceLog float64
	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
		}

		if !e.isSuspended {
			e.clock.Update()

			var currentTime float64 = e.clock.Elapsed()
			var delta float64 = (currentTime - e.lastTime)
			var frameStartTime float64 = e.platform.GetAbsoluteTime()

			e.systemManager.Update(delta, e.input)

			if e.gameInstance.FnUpdate != nil {
				if err := e.gameInstance.FnUpdate(delta); err != nil {
					core.LogError("Game update failed, shutting down: %s", err)
					e.isRunning.Store(false)
					break
				}
			}

			var frameEndTime float64 = e.platform.GetAbsoluteTime()
			e.metrics.Update(frameEndTime - frameStartTime)

			sinceLog += delta
			if sinceLog >= metricsLogInterval {
				fps, ms := e.metrics.Frame()
				core.LogDebug("%.1f fps, %.3fms cpu per frame, %d entities", fps, ms, e.world.Hierarchy.Len())
				sinceLog = 0
			}

			e.input.Update()

			e.lastTime = currentTime
		} else {
			// Nothing to do while minimized.
			e.platform.Sleep(10)
			e.clock.Update()
			e.lastTime = e.clock.Elapsed()
		}
	}

	return e.shutdown()
}

// Shutdown asks the main loop to stop. Safe to call from any goroutine; the
// loop releases every subsystem on its way out.
func (e *Engine) Shutdown() error {
	e.isRunning.Store(false)
	return nil
}

func (e *Engine) shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	e.events.Shutdown()
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		e.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	re, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := re.Width
	height := re.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
