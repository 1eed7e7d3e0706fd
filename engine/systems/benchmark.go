package systems

import (
	gomath "math"
	"time"

	"github.com/spaghettifunk/sponza/engine/core"
)

// MinFramesPerStep is the lowest number of frames the benchmark holds each
// preset, so very high frame rates still produce a stable sample.
const MinFramesPerStep = 30

// stepSeconds is the approximate time spent at each preset.
const stepSeconds = 2.0

type BenchmarkPhase uint8

const (
	BenchmarkIdle BenchmarkPhase = iota
	BenchmarkRunning
)

func (p BenchmarkPhase) String() string {
	if p == BenchmarkRunning {
		return "running"
	}
	return "idle"
}

// BenchmarkResult is the outcome of one completed run.
type BenchmarkResult struct {
	Frames        uint64
	FramesPerStep uint64
	Elapsed       time.Duration
	// AvgFrameMs is the average cost of a frame in milliseconds.
	AvgFrameMs float64
}

/**
 * @brief Drives the host camera through the three presets and measures the
 * average frame cost along the way. Trigger starts a run while idle; runs
 * cannot be aborted and last 3 * FramesPerStep frames.
 */
type BenchmarkController struct {
	camera *CameraSystem
	events *core.Events
	now    func() time.Time

	phase     BenchmarkPhase
	startedAt time.Time
	// pausedAt is set while frames are skipped for lack of a host camera.
	pausedAt      time.Time
	currentFrame  uint64
	framesPerStep uint64

	last *BenchmarkResult
}

func NewBenchmarkController(camera *CameraSystem, events *core.Events) *BenchmarkController {
	return NewBenchmarkControllerWithClock(camera, events, time.Now)
}

// NewBenchmarkControllerWithClock uses now as the wall clock.
func NewBenchmarkControllerWithClock(camera *CameraSystem, events *core.Events, now func() time.Time) *BenchmarkController {
	return &BenchmarkController{
		camera: camera,
		events: events,
		now:    now,
	}
}

// FramesPerStep returns how many frames span roughly two seconds at the
// given frame delta, never less than MinFramesPerStep.
func FramesPerStep(deltaSeconds float64) uint64 {
	if deltaSeconds <= 0 || gomath.IsNaN(deltaSeconds) {
		return MinFramesPerStep
	}
	frames := gomath.Round(stepSeconds / deltaSeconds)
	if frames < MinFramesPerStep {
		return MinFramesPerStep
	}
	return uint64(gomath.Min(frames, gomath.MaxUint32))
}

/**
 * @brief Starts a run using the current frame delta to size each step.
 * Ignored while a run is in progress.
 * @return True if a new run was started.
 */
func (bc *BenchmarkController) Trigger(deltaSeconds float64) bool {
	if bc.phase == BenchmarkRunning {
		core.LogDebug("benchmark already running, trigger ignored")
		return false
	}
	bc.phase = BenchmarkRunning
	bc.startedAt = bc.now()
	bc.pausedAt = time.Time{}
	bc.currentFrame = 0
	bc.framesPerStep = FramesPerStep(deltaSeconds)
	core.LogInfo("benchmark started: %d frames per preset", bc.framesPerStep)
	return true
}

/**
 * @brief Advances a running benchmark by one frame. Boundary actions are
 * evaluated before the frame counter is incremented. Frames without a
 * unique host camera are skipped entirely, their wall time included.
 */
func (bc *BenchmarkController) Update() {
	if bc.phase != BenchmarkRunning {
		return
	}
	if _, ok := bc.camera.HostCamera(); !ok {
		if bc.pausedAt.IsZero() {
			bc.pausedAt = bc.now()
		}
		return
	}
	if !bc.pausedAt.IsZero() {
		// Skipped frames do not count toward the elapsed time.
		bc.startedAt = bc.startedAt.Add(bc.now().Sub(bc.pausedAt))
		bc.pausedAt = time.Time{}
	}
	switch bc.currentFrame {
	case 0:
		bc.camera.Teleport(Preset(1))
	case bc.framesPerStep:
		bc.camera.Teleport(Preset(2))
	case 2 * bc.framesPerStep:
		bc.camera.Teleport(Preset(3))
	case 3 * bc.framesPerStep:
		bc.finish()
		return
	}
	bc.currentFrame++
}

func (bc *BenchmarkController) finish() {
	elapsed := bc.now().Sub(bc.startedAt)
	result := BenchmarkResult{
		Frames:        bc.currentFrame,
		FramesPerStep: bc.framesPerStep,
		Elapsed:       elapsed,
		AvgFrameMs:    elapsed.Seconds() / float64(bc.currentFrame) * 1000,
	}
	bc.last = &result
	bc.camera.Teleport(Preset(1))
	bc.phase = BenchmarkIdle

	core.LogInfo("benchmark finished: avg %.3fms per frame over %d frames (%s)",
		result.AvgFrameMs, result.Frames, result.Elapsed)

	if bc.events != nil {
		bc.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_BENCHMARK_COMPLETED,
			Data: result,
		})
	}
}

func (bc *BenchmarkController) Phase() BenchmarkPhase {
	return bc.phase
}

// CurrentFrame returns the frame counter of the current or last run.
func (bc *BenchmarkController) CurrentFrame() uint64 {
	return bc.currentFrame
}

func (bc *BenchmarkController) FramesPerStepCount() uint64 {
	return bc.framesPerStep
}

func (bc *BenchmarkController) StartedAt() time.Time {
	return bc.startedAt
}

// LastResult returns the result of the last completed run, if any.
func (bc *BenchmarkController) LastResult() (BenchmarkResult, bool) {
	if bc.last == nil {
		return BenchmarkResult{}, false
	}
	return *bc.last, true
}
