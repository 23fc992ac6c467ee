// Command calibrate is a headless batch driver: it runs the same
// scene across several seeds and reports mean/stddev of pile-symmetry
// and settle-time metrics, the way the teacher's cmd/optimize sweeps
// seeded evaluations of a fitness function.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/grains/config"
	"github.com/pthm-cable/grains/engine"
	"github.com/pthm-cable/grains/telemetry"
)

var (
	elementsPath = flag.String("elements", "", "Path to the elements.data file")
	settingsPath = flag.String("settings", "", "Path to the settings.data file")
	ticks        = flag.Int("ticks", 2000, "Physics ticks to run per seed")
	seeds        = flag.Int("seeds", 5, "Number of seeds to evaluate")
	sandID       = flag.Uint("sand-id", 10, "Element id to drop as the test pile")
	outputDir    = flag.String("output", "", "Optional directory to write per-seed telemetry.csv/perf.csv into")
)

func main() {
	flag.Parse()

	if *elementsPath == "" || *settingsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: calibrate --elements PATH --settings PATH [--ticks N] [--seeds N]")
		os.Exit(1)
	}

	bundle, err := config.Init(*elementsPath, *settingsPath)
	if err != nil {
		log.Fatalf("load failure: %v", err)
	}

	symmetry := make([]float64, *seeds)
	settleTicks := make([]float64, *seeds)

	for s := 0; s < *seeds; s++ {
		seed := int64(s*1000 + 1)
		e := engine.New(bundle, seed)
		e.Start()
		dropPile(e)

		settle := runUntilSettled(e, *ticks)
		symmetry[s] = pileSymmetry(e, uint16(*sandID))
		settleTicks[s] = float64(settle)

		if err := writeSeedOutput(e, seed); err != nil {
			log.Printf("seed %d: writing output: %v", seed, err)
		}
	}

	symMean, symStd := stat.MeanStdDev(symmetry, nil)
	settleMean, settleStd := stat.MeanStdDev(settleTicks, nil)

	fmt.Printf("seeds=%d ticks=%d\n", *seeds, *ticks)
	fmt.Printf("pile_symmetry  mean=%.4f stddev=%.4f\n", symMean, symStd)
	fmt.Printf("settle_tick    mean=%.1f stddev=%.1f\n", settleMean, settleStd)
}

// writeSeedOutput flushes this seed's telemetry/perf stats to
// <output>/seed-<seed>/telemetry.csv and perf.csv, the way the
// teacher's game loop drains its OutputManager at the end of a run. A
// no-op when --output isn't set.
func writeSeedOutput(e *engine.Engine, seed int64) error {
	if *outputDir == "" {
		return nil
	}

	om, err := telemetry.NewOutputManager(filepath.Join(*outputDir, fmt.Sprintf("seed-%d", seed)))
	if err != nil {
		return err
	}
	defer om.Close()

	if err := om.WriteTelemetry(e.FlushStats()); err != nil {
		return err
	}
	return om.WritePerf(e.PerfStats(), e.TickCount())
}

// dropPile stamps a 10-wide, 1-tall row of the test element near the
// top of the grid, centered horizontally, matching the sand-pile
// testable property's setup.
func dropPile(e *engine.Engine) {
	w := e.Width()
	h := e.Height()
	cx := w / 2
	y := h - 5
	for x := cx - 5; x < cx+5; x++ {
		e.PaintCircle(x, y, 0, uint16(*sandID))
	}
}

// runUntilSettled advances physics substeps one at a time via
// synthetic, monotonically-increasing timestamps (one physics
// interval apart, so each Tick call advances exactly one substep) and
// returns the tick at which the dirty set first reaches zero, or
// maxTicks if it never settles within the budget.
func runUntilSettled(e *engine.Engine, maxTicks int) int {
	start := time.Unix(0, 0)
	interval := e.PhysicsInterval()
	e.Tick(start) // the first Tick only records the baseline time
	for i := 1; i <= maxTicks; i++ {
		e.Tick(start.Add(time.Duration(i) * interval))
		if e.DirtyLen() == 0 {
			return i
		}
	}
	return maxTicks
}

// pileSymmetry measures how evenly the settled pile's mass is
// distributed left vs right of center: 0 is perfectly symmetric, 1 is
// maximally lopsided.
func pileSymmetry(e *engine.Engine, sandID uint16) float64 {
	w := e.Width()
	h := e.Height()
	cx := w / 2

	var left, right float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if e.ElementIDAt(x, y) != sandID {
				continue
			}
			if x < cx {
				left++
			} else if x > cx {
				right++
			}
		}
	}
	total := left + right
	if total == 0 {
		return 0
	}
	return math.Abs(left-right) / total
}
