package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spaghettifunk/sponza/engine/assets/loaders"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/scene"
	"github.com/spaghettifunk/sponza/engine/systems"
)

// AssetHandle identifies a loaded asset.
type AssetHandle uuid.UUID

// InvalidHandle is never returned by Load.
var InvalidHandle = AssetHandle(uuid.Nil)

func (h AssetHandle) String() string {
	return uuid.UUID(h).String()
}

type AssetInfo struct {
	Handle AssetHandle
	Path   string
	// Root is the entity the asset resolves under, scene.Nil until spawned.
	Root       scene.Entity
	Tags       scene.Tag
	LastLoaded time.Time

	template  *loaders.SceneTemplate
	materials []scene.MaterialHandle
	loading   bool
	// stale is set when the file changed while a decode was running.
	stale bool
	// attached is set once the template was instantiated under Root.
	attached bool
}

type resolvedAsset struct {
	handle   AssetHandle
	template *loaders.SceneTemplate
	err      error
}

type AssetManagerConfig struct {
	// BasePath is prepended to relative asset paths.
	BasePath string
	// HotReload re-decodes assets whose file changes on disk.
	HotReload bool
}

/**
 * @brief Loads scene assets off the main goroutine. Decoding runs on the job
 * system; the decoded hierarchy is attached to the world only from Update,
 * so the world is never touched concurrently.
 */
type AssetManager struct {
	config AssetManagerConfig
	world  *scene.World
	events *core.Events
	jobs   *systems.JobSystem

	loaders map[string]loaders.Loader

	mutex  sync.RWMutex
	assets map[AssetHandle]*AssetInfo
	byPath map[string]AssetHandle

	resolved chan resolvedAsset

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	wg       sync.WaitGroup
}

func NewAssetManager(config AssetManagerConfig, world *scene.World, events *core.Events, jobs *systems.JobSystem) (*AssetManager, error) {
	am := &AssetManager{
		config:   config,
		world:    world,
		events:   events,
		jobs:     jobs,
		loaders:  make(map[string]loaders.Loader),
		assets:   make(map[AssetHandle]*AssetInfo),
		byPath:   make(map[string]AssetHandle),
		resolved: make(chan resolvedAsset, 64),
		done:     make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(&loaders.GLTFLoader{})

	if config.HotReload {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
		am.wg.Add(1)
		go am.start()
	}
	return am, nil
}

func (am *AssetManager) resolvePath(path string) string {
	if filepath.IsAbs(path) || am.config.BasePath == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(am.config.BasePath, path)
}

/**
 * @brief Starts loading the asset at path. Loading the same path twice
 * returns the same handle. The asset resolves at a later frame.
 */
func (am *AssetManager) Load(path string) (AssetHandle, error) {
	full := am.resolvePath(path)
	if _, err := am.loaderFor(full); err != nil {
		return InvalidHandle, err
	}
	if _, err := os.Stat(full); err != nil {
		return InvalidHandle, fmt.Errorf("%s: %w", full, core.ErrAssetNotFound)
	}

	am.mutex.Lock()
	if h, ok := am.byPath[full]; ok {
		am.mutex.Unlock()
		return h, nil
	}
	h := AssetHandle(uuid.New())
	info := &AssetInfo{Handle: h, Path: full, Root: scene.Nil}
	am.assets[h] = info
	am.byPath[full] = h
	am.mutex.Unlock()

	if am.fsnotify != nil {
		if err := am.add(filepath.Dir(full)); err != nil {
			core.LogWarn("cannot watch %s: %s", full, err)
		}
	}
	am.decode(info)
	return h, nil
}

// decode queues a decode job for info unless one is already running.
func (am *AssetManager) decode(info *AssetInfo) {
	am.mutex.Lock()
	if info.loading {
		info.stale = true
		am.mutex.Unlock()
		return
	}
	info.loading = true
	handle, path := info.Handle, info.Path
	am.mutex.Unlock()

	loader, err := am.loaderFor(path)
	if err != nil {
		am.deliver(resolvedAsset{handle: handle, err: err})
		return
	}
	var st *loaders.SceneTemplate
	am.jobs.AddWorkNonBlocking(systems.JobTask{
		Name: path,
		Run: func() error {
			var err error
			st, err = loader.Load(path)
			return err
		},
		OnComplete: func() {
			am.deliver(resolvedAsset{handle: handle, template: st})
		},
		OnFailure: func(err error) {
			am.deliver(resolvedAsset{handle: handle, err: err})
		},
	})
}

func (am *AssetManager) deliver(r resolvedAsset) {
	select {
	case am.resolved <- r:
	case <-am.done:
	}
}

/**
 * @brief Spawns the root entity of an asset and tags it. The decoded
 * subtree is attached under it by a later Update.
 */
func (am *AssetManager) Spawn(handle AssetHandle, name string, tags scene.Tag) (scene.Entity, error) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, ok := am.assets[handle]
	if !ok {
		return scene.Nil, fmt.Errorf("spawn %s: %w", handle, core.ErrAssetNotFound)
	}
	if am.world.Hierarchy.Contains(info.Root) {
		return info.Root, nil
	}
	info.Root = am.world.Hierarchy.Spawn(name)
	info.Tags = tags
	info.attached = false
	am.world.Hierarchy.AddTag(info.Root, tags)
	return info.Root, nil
}

// Info returns a copy of the bookkeeping of handle.
func (am *AssetManager) Info(handle AssetHandle) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[handle]
	if !ok {
		return AssetInfo{}, false
	}
	return *info, true
}

// IsResolved reports whether the asset was decoded at least once.
func (am *AssetManager) IsResolved(handle AssetHandle) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[handle]
	return ok && info.template != nil
}

/**
 * @brief Attaches every asset decoded since the last call. Must run on the
 * goroutine owning the world.
 * @return The number of entities spawned.
 */
func (am *AssetManager) Update() int {
	spawned := 0
	for {
		select {
		case r := <-am.resolved:
			am.resolve(r)
		default:
			spawned += am.attachPending()
			return spawned
		}
	}
}

func (am *AssetManager) resolve(r resolvedAsset) {
	am.mutex.Lock()
	info, ok := am.assets[r.handle]
	if !ok {
		am.mutex.Unlock()
		return
	}
	info.loading = false
	if info.stale {
		// A newer version is on disk, decode that one instead.
		info.stale = false
		am.mutex.Unlock()
		am.decode(info)
		return
	}
	if r.err != nil {
		am.mutex.Unlock()
		core.LogError("failed to load %s: %s", info.Path, r.err)
		return
	}
	reload := info.template != nil
	info.template = r.template
	info.LastLoaded = time.Now()
	if reload {
		// Drop the old instance; attachPending builds the new one.
		am.world.Hierarchy.DespawnChildren(info.Root)
		for _, m := range info.materials {
			am.world.Materials.Remove(m)
		}
		info.materials = nil
		info.attached = false
		am.world.Hierarchy.AddTag(info.Root, info.Tags)
	}
	path := info.Path
	am.mutex.Unlock()

	if reload {
		core.LogInfo("reloaded %s", path)
	} else {
		core.LogInfo("resolved %s", path)
	}
	if am.events != nil {
		am.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_ASSET_RESOLVED,
			Data: path,
		})
	}
}

// attachPending instantiates decoded templates under their spawned roots.
func (am *AssetManager) attachPending() int {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	spawned := 0
	for _, info := range am.assets {
		if info.attached || info.template == nil || !am.world.Hierarchy.Contains(info.Root) {
			continue
		}
		handles, n, err := instantiate(am.world, info.Root, info.template)
		info.materials = handles
		info.attached = true
		spawned += n
		if err != nil {
			core.LogError("failed to attach %s: %s", info.Path, err)
			continue
		}
		core.LogDebug("attached %d entities of %s", n, info.Path)
	}
	return spawned
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	return nil
}

// Add starts watching the named directory (non-recursively).
func (am *AssetManager) add(name string) error {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.fsnotify.Add(name)
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// Handle the creation or modification of a watched asset file
func (am *AssetManager) handleFileEvent(path string) {
	am.mutex.RLock()
	h, ok := am.byPath[filepath.Clean(path)]
	var info *AssetInfo
	if ok {
		info = am.assets[h]
	}
	am.mutex.RUnlock()
	if info == nil {
		return
	}
	core.LogDebug("%s changed on disk", path)
	am.decode(info)
}
