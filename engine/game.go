package engine

import (
	"github.com/spaghettifunk/sponza/engine/assets"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

/**
 * @brief The game the engine runs. The engine fills World, Assets and
 * SystemManager before FnInitialize is called.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	World             *scene.World
	Assets            *assets.AssetManager
	SystemManager     *systems.SystemManager
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
