package grouper

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
)

const testElements = `
[11]
name: Water
category: liquids
phase: liquid
base_color: #1E4E8C
blend_color: #1E4E8C
highlight_color: #4E8CC2
is_movable: true
density: 1.0
cohesion: 0
repose_angle: 45
`

func newTestGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	reg, warnings := elements.Load(strings.NewReader(testElements))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return grid.New(w, h, reg, rand.New(rand.NewSource(7)))
}

// fillRect paints a w x h rectangle of elementID with its bottom-left
// corner at (x0,y0).
func fillRect(g *grid.Grid, x0, y0, w, h int, elementID uint16) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			g.CreateAt(x, y, elementID, false, false)
		}
	}
}

func TestRun_SmallPuddleSkipsEqualisation(t *testing.T) {
	g := newTestGrid(t, 20, 20)
	fillRect(g, 0, 10, 10, 3, 11) // 30 water cells
	fillRect(g, 0, 5, 10, 3, elements.EmptyID)

	res := Pass(g, elements.Liquid, make(map[int]bool))
	if res.Considered != 0 {
		t.Fatalf("expected a 30-cell puddle to be skipped, got Considered=%d Groups=%d", res.Considered, res.Groups)
	}
}

func TestRun_LargePuddleRunsEqualisation(t *testing.T) {
	g := newTestGrid(t, 20, 20)
	fillRect(g, 0, 10, 11, 3, 11) // 33 water cells, above threshold

	res := Pass(g, elements.Liquid, make(map[int]bool))
	if res.Considered != 1 {
		t.Fatalf("expected exactly one puddle above threshold to be considered, got %d (groups=%d)", res.Considered, res.Groups)
	}
}

func TestRun_NoLiquidIsNoop(t *testing.T) {
	g := newTestGrid(t, 10, 10)
	res := Pass(g, elements.Liquid, make(map[int]bool))
	if res.Groups != 0 || res.Swaps != 0 {
		t.Fatalf("expected no groups or swaps over an all-empty grid, got %+v", res)
	}
}

func TestRun_MergesLeftAndUpGroups(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	// an L-shape of water: a vertical run and horizontal run sharing a corner
	fillRect(g, 0, 0, 1, 3, 11)
	fillRect(g, 0, 2, 3, 1, 11)

	res := Pass(g, elements.Liquid, make(map[int]bool))
	if res.Groups != 1 {
		t.Fatalf("expected the L-shape to merge into a single group, got %d groups", res.Groups)
	}
}
