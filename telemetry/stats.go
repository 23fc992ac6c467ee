package telemetry

// TickStats holds aggregated engine statistics for a reporting window,
// exported to telemetry.csv alongside the perf breakdown in perf.csv.
type TickStats struct {
	WindowEndTick int32 `csv:"window_end"`

	TicksPerSecond float64 `csv:"tps"`

	DirtyCount int `csv:"dirty_count"`

	SwapCount      int `csv:"swap_count"`
	LiquidGroups   int `csv:"liquid_groups"`
	Equalised      int `csv:"equalised_groups"`
	EqualiseSwaps  int `csv:"equalise_swaps"`

	// Mass conservation: total non-empty cell count, for detecting a
	// particle-accounting bug before it becomes a visible artifact.
	NonEmptyCells int `csv:"non_empty_cells"`
}

// Accumulator collects per-tick counts over a window and flushes them
// into a TickStats at window end.
type Accumulator struct {
	startTick int32

	swapCount     int
	equaliseSwaps int
	liquidGroups  int
	equalised     int
}

// NewAccumulator starts a fresh window at startTick.
func NewAccumulator(startTick int32) *Accumulator {
	return &Accumulator{startTick: startTick}
}

// RecordDispatchSwaps adds to the swap count from the per-particle
// dispatch phase of a tick.
func (a *Accumulator) RecordDispatchSwaps(n int) {
	a.swapCount += n
}

// RecordGroupPass folds in one grouper.Result for the window.
func (a *Accumulator) RecordGroupPass(groups, considered, swaps int) {
	a.liquidGroups += groups
	a.equalised += considered
	a.equaliseSwaps += swaps
}

// Flush produces a TickStats for the window ending at endTick and
// resets the accumulator for the next window.
func (a *Accumulator) Flush(endTick int32, tps float64, dirtyCount, nonEmptyCells int) TickStats {
	stats := TickStats{
		WindowEndTick: endTick,
		TicksPerSecond: tps,
		DirtyCount:     dirtyCount,
		SwapCount:      a.swapCount,
		LiquidGroups:   a.liquidGroups,
		Equalised:      a.equalised,
		EqualiseSwaps:  a.equaliseSwaps,
		NonEmptyCells:  nonEmptyCells,
	}
	a.startTick = endTick
	a.swapCount = 0
	a.liquidGroups = 0
	a.equalised = 0
	a.equaliseSwaps = 0
	return stats
}
