/*
Sponza streams the Intel Sponza scene into the engine and flies a camera
through a fixed set of viewpoints to benchmark the frame time.
*/
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spaghettifunk/sponza/engine"
	"github.com/spaghettifunk/sponza/engine/assets/ktx2"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/sponza"
	flag "github.com/spf13/pflag"
)

// defaultCacheDir is created under the asset path when --cache is given and
// the config file does not name a cache directory.
const defaultCacheDir = ".texture_cache"

type options struct {
	convert          bool
	minimal          bool
	noFrustumCulling bool
	compress         bool
	lowQuality       bool
	cache            bool
	configPath       string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("sponza", flag.ContinueOnError)
	fs.BoolVar(&o.convert, "convert", false, "convert the scene textures to KTX2 before starting")
	fs.BoolVar(&o.minimal, "minimal", false, "load only the main building, without the curtains")
	fs.BoolVar(&o.noFrustumCulling, "no-frustum-culling", false, "draw every mesh regardless of visibility")
	fs.BoolVar(&o.compress, "compress", false, "compress textures on the GPU")
	fs.BoolVar(&o.lowQuality, "low-quality-compression", false, "trade compression quality for speed")
	fs.BoolVar(&o.cache, "cache", false, "cache compressed textures between runs")
	fs.StringVarP(&o.configPath, "config", "c", "", "TOML file overriding the default settings")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// apply overlays the command line switches on config.
func (o options) apply(config *engine.ApplicationConfig) {
	if o.noFrustumCulling {
		config.DisableFrustumCulling = true
	}
	if o.compress {
		config.EnableCompression()
	}
	if o.lowQuality {
		config.Mipmap.LowQuality = true
	}
	if o.cache && config.Mipmap.CachePath == "" {
		config.Mipmap.CachePath = filepath.Join(config.AssetPath, defaultCacheDir)
	}
}

func loadConfig(o options) (engine.ApplicationConfig, error) {
	config := engine.DefaultApplicationConfig()
	if o.configPath != "" {
		loaded, err := engine.LoadApplicationConfig(o.configPath, config)
		if err != nil {
			return config, err
		}
		config = loaded
	}
	o.apply(&config)
	return config, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	config, err := loadConfig(opts)
	if err != nil {
		panic(err)
	}
	core.SetLogLevel(config.LogLevel)

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	if opts.convert {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		err := ktx2.ConvertTextures(ctx, config.AssetPath)
		if err == nil {
			err = ktx2.RewriteReferences(config.AssetPath)
		}
		cancel()
		if err != nil {
			core.LogFatal("texture conversion failed: %s", err)
			os.Exit(1)
		}
	}

	game := sponza.NewSponzaGame(&config, opts.minimal)

	engine, err := engine.New(game.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = engine.Shutdown()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		panic(err)
	}
}
