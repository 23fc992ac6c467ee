// Package engine owns the grid, the fixed-timestep scheduler, the
// compositor, and the telemetry accounting for one falling-sand
// simulation instance. It never imports a windowing or UI package;
// cmd/sandbox and cmd/calibrate drive it through the methods here.
package engine

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/grains/compositor"
	"github.com/pthm-cable/grains/config"
	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
	"github.com/pthm-cable/grains/telemetry"
)

// maxSubsteps caps the physics catch-up loop per frame tick. On cap,
// the accumulator is dropped rather than left to spiral.
const maxSubsteps = 60

// Engine is one simulation instance: a grid, a compositor, and the
// scheduler state that drives them. Every call site builds its own
// Engine (and its own *rand.Rand) rather than reaching for a package
// singleton, so cmd/calibrate can run many seeded instances side by side.
type Engine struct {
	grid       *grid.Grid
	registry   *elements.Registry
	comp       *compositor.Compositor
	settings   config.Settings
	rng        *rand.Rand
	perf       *telemetry.PerfCollector
	accum      *telemetry.Accumulator

	running        bool
	lastFrameTime  time.Time
	accumulator    time.Duration
	tickCount      int32
	clearTick      int

	selectedElement uint16
	brushSize       int

	pendingEvents []PointerEvent
	wheelDelta    float64

	cursorX, cursorY int
	cursorOnCanvas   bool
	painting         bool
	paintButton      Button

	// renderDirty accumulates every index touched by any substep run
	// within the current frame, so a frame with several catch-up
	// substeps redraws all of them, not just the last substep's moves.
	renderDirty map[int]struct{}
}

// New builds an Engine from a loaded Bundle. seed drives every random
// choice the engine makes (tier shuffles, bump_x, gas direction picks,
// color sampling) so a run is fully reproducible from (seed, settings,
// elements, input trace).
func New(bundle *config.Bundle, seed int64) *Engine {
	rng := rand.New(rand.NewSource(seed))
	w := bundle.Settings.Engine.Width
	h := bundle.Settings.Engine.Height

	e := &Engine{
		grid:      grid.New(w, h, bundle.Registry, rng),
		registry:  bundle.Registry,
		comp:      compositor.New(w, h),
		settings:  bundle.Settings,
		rng:       rng,
		perf:      telemetry.NewPerfCollector(60),
		accum:       telemetry.NewAccumulator(0),
		brushSize:   bundle.Settings.Input.BrushSize,
		renderDirty: make(map[int]struct{}),
	}
	e.markWholeGridDirty()
	return e
}

// markWholeGridDirty seeds the dirty set with every cell once at
// construction so the first render paints the full canvas (EMPTY's own
// color) instead of leaving the frame buffer's zeroed bytes on screen.
func (e *Engine) markWholeGridDirty() {
	for i := 0; i < e.grid.Len(); i++ {
		e.grid.MarkDirty(e.grid.GetIndex(i), false)
		e.renderDirty[i] = struct{}{}
	}
}

// Start sets the running flag. While stopped, Tick neither applies
// input nor advances physics; it only re-renders the current frame.
func (e *Engine) Start() { e.running = true }

// Stop clears the running flag.
func (e *Engine) Stop() { e.running = false }

// IsRunning reports whether the engine is accepting ticks.
func (e *Engine) IsRunning() bool { return e.running }

// SetSelectedElement sets the element id the next paint stroke uses.
func (e *Engine) SetSelectedElement(id uint16) { e.selectedElement = id }

// SetBrushSize sets the brush radius directly, clamped to
// [0, brush_max_size].
func (e *Engine) SetBrushSize(n int) {
	e.brushSize = clampInt(n, 0, e.settings.Input.BrushMaxSize)
}

// PaintCircle stamps elementID onto a disc of radius r at (x,y)
// immediately, bypassing the input queue (used by scenes/tests that
// want deterministic placement rather than pointer-driven painting).
func (e *Engine) PaintCircle(x, y, r int, elementID uint16) {
	e.grid.FillCircle(x, y, r, elementID)
}

// EraseCircle clears a disc of radius r at (x,y) back to EMPTY.
func (e *Engine) EraseCircle(x, y, r int) {
	e.grid.FillCircle(x, y, r, elements.EmptyID)
}

// Width, Height, TickCount, FPS, TPS report engine state for the
// renderer/driver.
func (e *Engine) Width() int       { return e.grid.W }
func (e *Engine) Height() int      { return e.grid.H }
func (e *Engine) TickCount() int32 { return e.tickCount }

func (e *Engine) FPS() float64 {
	return e.perf.Stats().FPS
}

func (e *Engine) TPS() float64 {
	return e.perf.Stats().TicksPerSecond
}

// PerfStats reports the rolling tick-phase performance breakdown.
func (e *Engine) PerfStats() telemetry.PerfStats {
	return e.perf.Stats()
}

// FlushStats drains the accumulator into a TickStats snapshot and
// resets it for the next window, the way the teacher's
// collector.Flush works for its own windowed stats.
func (e *Engine) FlushStats() telemetry.TickStats {
	return e.accum.Flush(e.tickCount, e.TPS(), e.grid.DirtyLen(), e.nonEmptyCount())
}

// nonEmptyCount scans the grid for the mass-conservation telemetry
// field. It is only called at a flush cadence (seconds, not ticks), so
// an O(W*H) scan here does not compete with the hot per-tick path.
func (e *Engine) nonEmptyCount() int {
	n := 0
	for i := 0; i < e.grid.Len(); i++ {
		if e.grid.GetIndex(i).Element.ID != elements.EmptyID {
			n++
		}
	}
	return n
}

// Registry exposes the loaded element table, mainly so a driver can
// build a palette UI from it.
func (e *Engine) Registry() *elements.Registry { return e.registry }

// ElementIDAt reports the element id occupying (x,y), or EmptyID if
// out of bounds. Used by calibration/analysis drivers that need to
// read grid state without a direct grid.Grid reference.
func (e *Engine) ElementIDAt(x, y int) uint16 {
	p := e.grid.Get(x, y)
	if p == nil {
		return elements.EmptyID
	}
	return p.Element.ID
}

// DirtyLen reports the scheduler's current dirty-set size, used by
// calibration drivers to detect when a scene has settled (zero
// activity between substeps).
func (e *Engine) DirtyLen() int {
	return e.grid.DirtyLen()
}

// PhysicsInterval reports the configured fixed timestep, so a headless
// driver can synthesize exactly-one-substep-per-call timestamps
// without reaching into config itself.
func (e *Engine) PhysicsInterval() time.Duration {
	return e.settings.Engine.PhysicsInterval
}

// Tick runs one frame-tick: applies queued input, advances physics
// substeps to catch up to now, and returns the freshly composited
// frame buffer. now is a monotonic clock reading; the engine only
// uses the delta against the previous call.
func (e *Engine) Tick(now time.Time) []uint8 {
	if !e.running {
		return e.comp.Render(e.cursorX, e.cursorY, e.brushSize, e.cursorOnCanvas)
	}

	if e.lastFrameTime.IsZero() {
		e.lastFrameTime = now
	}
	dt := now.Sub(e.lastFrameTime)
	e.lastFrameTime = now

	e.applyInput()

	e.accumulator += dt
	substeps := 0
	for e.accumulator >= e.settings.Engine.PhysicsInterval {
		e.step()
		e.accumulator -= e.settings.Engine.PhysicsInterval
		e.tickCount++
		substeps++
		if substeps >= maxSubsteps {
			e.accumulator = 0
			break
		}
	}

	e.comp.QueueParticles(e.drainRenderDirty(), nil)
	frame := e.comp.Render(e.cursorX, e.cursorY, e.brushSize, e.cursorOnCanvas)
	e.perf.RecordFrame()

	return frame
}

// TakeFrame re-renders with whatever is currently queued, without
// advancing time or draining the render-dirty set again — for drivers
// that need an extra frame (e.g. a resize) between Tick calls.
func (e *Engine) TakeFrame() []uint8 {
	return e.comp.Render(e.cursorX, e.cursorY, e.brushSize, e.cursorOnCanvas)
}

// drainRenderDirty resolves and clears the frame-spanning redraw set
// into particle pointers for the compositor's QueueParticles. Drawing
// only touched cells (rather than the whole grid) keeps render cost
// proportional to activity, matching the scheduler's own
// dirty-set-driven selection — just accumulated across a frame's
// substeps instead of a single step's.
func (e *Engine) drainRenderDirty() []*grid.Particle {
	out := make([]*grid.Particle, 0, len(e.renderDirty))
	for idx := range e.renderDirty {
		out = append(out, e.grid.GetIndex(idx))
		delete(e.renderDirty, idx)
	}
	return out
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
