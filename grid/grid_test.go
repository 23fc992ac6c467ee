package grid

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pthm-cable/grains/elements"
)

const testElements = `
[10]
name: Sand
category: sands
phase: solid
base_color: #C2B280
blend_color: #A89968
highlight_color: #D8CBA0
is_movable: true
density: 2.0
cohesion: 10
repose_angle: 45

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

[12]
name: Stone
category: solids
phase: solid
base_color: #808080
blend_color: #808080
highlight_color: #909090
is_movable: false
density: 5.0
cohesion: 50
repose_angle: 45
`

func newTestGrid(t *testing.T, w, h int) (*Grid, *elements.Registry) {
	t.Helper()
	reg, warnings := elements.Load(strings.NewReader(testElements))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings loading test elements: %v", warnings)
	}
	rng := rand.New(rand.NewSource(1))
	return New(w, h, reg, rng), reg
}

func TestNew_AllEmpty(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	for i := 0; i < g.Len(); i++ {
		p := g.GetIndex(i)
		if p.Element.ID != elements.EmptyID {
			t.Fatalf("index %d not empty: %+v", i, p)
		}
		if p.Index != i || p.X != i%4 || p.Y != i/4 {
			t.Fatalf("index coherence violated at %d: %+v", i, p)
		}
	}
}

func TestInBounds(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true}, {3, 3, true}, {-1, 0, false}, {4, 0, false}, {0, 4, false},
	}
	for _, c := range cases {
		if got := g.InBounds(c.x, c.y); got != c.want {
			t.Errorf("InBounds(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestCreateAt_RejectsOutOfBounds(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	if g.CreateAt(10, 10, 10, false, false) {
		t.Fatal("expected CreateAt to reject out-of-bounds coordinates")
	}
}

func TestCreateAt_MarksDirty(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(1, 1, 10, true, false)
	indices := g.DirtyIndices()
	if len(indices) != 1 || indices[0] != g.indexOf(1, 1) {
		t.Fatalf("expected only (1,1) dirty, got %v", indices)
	}
}

func TestCreateAt_MarksNeighborsWhenRequested(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(1, 1, 10, true, true)
	if g.DirtyLen() != 9 {
		t.Fatalf("expected 9 dirty cells (self + 8 neighbors), got %d", g.DirtyLen())
	}
}

func TestClearDirty(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(1, 1, 10, true, false)
	g.ClearDirty()
	if g.DirtyLen() != 0 {
		t.Fatalf("expected dirty set empty after clear, got %d", g.DirtyLen())
	}
}

func TestSwap_PreservesIndexCoherence(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(0, 0, 10, false, false)
	a := g.Get(0, 0)
	b := g.Get(1, 0)
	aElementBefore := a.Element
	g.Swap(a, b, false, false)

	if a.X != 0 || a.Y != 0 || a.Index != g.indexOf(0, 0) {
		t.Fatalf("slot a lost its own coordinates after swap: %+v", a)
	}
	if b.X != 1 || b.Y != 0 || b.Index != g.indexOf(1, 0) {
		t.Fatalf("slot b lost its own coordinates after swap: %+v", b)
	}
	if b.Element != aElementBefore {
		t.Fatalf("expected b to now hold a's original element, got %+v", b.Element)
	}
}

func TestFillCircle_PaintsOnlyEmptyCells(t *testing.T) {
	g, _ := newTestGrid(t, 8, 8)
	g.CreateAt(4, 4, 12, false, false) // stone, not empty
	g.FillCircle(4, 4, 2, 10)          // sand brush over the same area
	if g.Get(4, 4).Element.ID != 12 {
		t.Fatal("expected brush to not overwrite the existing stone cell")
	}
	if g.Get(4, 5).Element.ID != 10 {
		t.Fatal("expected brush to paint sand onto an empty neighboring cell")
	}
}

func TestFillCircle_EraseOverwritesAnyOccupant(t *testing.T) {
	g, _ := newTestGrid(t, 8, 8)
	g.CreateAt(4, 4, 12, false, false)
	g.FillCircle(4, 4, 0, elements.EmptyID)
	if g.Get(4, 4).Element.ID != elements.EmptyID {
		t.Fatal("expected erase to overwrite the occupied cell")
	}
}

func TestTryMove_DenserParticleDisplacesLessDenseTarget(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(1, 1, 10, false, false) // sand, density 2
	p := g.Get(1, 1)
	groups := [][]elements.Offset{{{0, -1}}}
	moved := g.TryMove(p, groups, false, false, false)
	if moved == nil {
		t.Fatal("expected sand to displace empty space below it")
	}
	if g.Get(1, 0).Element.ID != 10 {
		t.Fatal("expected sand to have moved into (1,0)")
	}
}

func TestTryMove_FailsAgainstImmovableTarget(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(1, 1, 10, false, false) // sand
	g.CreateAt(1, 0, 12, false, false) // stone below it, immovable
	p := g.Get(1, 1)
	groups := [][]elements.Offset{{{0, -1}}}
	moved := g.TryMove(p, groups, false, false, false)
	if moved != nil {
		t.Fatal("expected try_move to fail against an immovable denser-or-equal target")
	}
}

func TestTryMove_ReturnsNoneAtGridEdge(t *testing.T) {
	g, _ := newTestGrid(t, 4, 4)
	g.CreateAt(0, 0, 10, false, false)
	p := g.Get(0, 0)
	groups := [][]elements.Offset{{{-1, 0}}}
	if moved := g.TryMove(p, groups, false, false, false); moved != nil {
		t.Fatal("expected try_move to return none when every candidate is out of bounds")
	}
}
