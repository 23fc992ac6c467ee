package engine

import (
	"math/rand"
	"sort"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
	"github.com/pthm-cable/grains/handlers"
	"github.com/pthm-cable/grains/grouper"
	"github.com/pthm-cable/grains/telemetry"
)

// dispatch maps a category to the handler it runs through try_move.
// Solid, Electronic, and Technical have no entry and are skipped.
var dispatch = map[elements.Category]handlers.Func{
	elements.Liquid: handlers.Liquid,
	elements.Gas:    handlers.Gas,
	elements.Sand:   handlers.Sand,
}

// step runs one physics substep: select this tick's dirty particles,
// shuffle and sort them, dispatch each once, then run the liquid
// grouping/equalisation pass.
func (e *Engine) step() {
	e.perf.StartTick()

	e.perf.StartPhase(telemetry.PhaseSelect)
	indices := append([]int(nil), e.grid.DirtyIndices()...)
	e.clearTick++
	if e.settings.Engine.DirtyClearInterval <= 1 || e.clearTick%e.settings.Engine.DirtyClearInterval == 0 {
		e.grid.ClearDirty()
	}

	shuffle(indices, e.rng)
	particles := make([]*grid.Particle, len(indices))
	for i, idx := range indices {
		assertInvariant(idx >= 0 && idx < e.grid.Len(), "dirty index %d out of range [0,%d)", idx, e.grid.Len())
		particles[i] = e.grid.GetIndex(idx)
	}
	sort.SliceStable(particles, func(i, j int) bool { return particles[i].Y < particles[j].Y })

	e.perf.StartPhase(telemetry.PhaseDispatch)
	processed := make(map[int]bool, len(particles))
	swaps := 0
	for _, p := range particles {
		if processed[p.Index] {
			continue
		}
		fn, ok := dispatch[p.Element.Category]
		if !ok {
			continue
		}
		target := fn(e.grid, p, e.rng)
		if target == nil {
			continue
		}
		processed[p.Index] = true
		processed[target.Index] = true
		swaps++
	}
	e.accum.RecordDispatchSwaps(swaps)

	e.perf.StartPhase(telemetry.PhaseGroup)
	result := grouper.Pass(e.grid, elements.Liquid, processed)
	e.accum.RecordGroupPass(result.Groups, result.Considered, result.Swaps)

	// Cells marked dirty by this step's moves (both endpoints of every
	// swap) are still sitting in the grid's dirty set at this point,
	// not yet cleared by the next step's cadence check. Fold them into
	// the frame-spanning redraw set so a substep's vacated cell still
	// gets repainted even if a later substep in the same frame clears
	// the scheduler's own dirty set first.
	for _, idx := range e.grid.DirtyIndices() {
		e.renderDirty[idx] = struct{}{}
	}

	e.perf.EndTick()
}

// shuffle performs a Fisher-Yates shuffle of indices in place.
func shuffle(indices []int, rng *rand.Rand) {
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
}
