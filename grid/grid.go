package grid

import (
	"math/rand"

	"github.com/pthm-cable/grains/elements"
)

// dirtySet is a sparse set over flat indices: a membership map plus a
// parallel insertion-order slice. Occupancy in typical scenes is far
// below W*H, so this costs less than a W*H bitmap would.
type dirtySet struct {
	present map[int]struct{}
	indices []int
}

func newDirtySet(n int) *dirtySet {
	return &dirtySet{present: make(map[int]struct{}, n/4)}
}

func (d *dirtySet) add(i int) {
	if _, ok := d.present[i]; ok {
		return
	}
	d.present[i] = struct{}{}
	d.indices = append(d.indices, i)
}

func (d *dirtySet) clear() {
	for k := range d.present {
		delete(d.present, k)
	}
	d.indices = d.indices[:0]
}

// snapshot returns the current dirty indices. Callers must not retain the
// slice past the next clear.
func (d *dirtySet) snapshot() []int {
	return d.indices
}

func (d *dirtySet) len() int {
	return len(d.indices)
}

// Grid is the dense W*H particle array plus the dirty set that drives
// scheduler tick selection (§4.2).
type Grid struct {
	W, H  int
	cells []Particle
	dirty *dirtySet

	registry *elements.Registry
	rng      *rand.Rand
}

// New builds a grid of w*h EMPTY particles. rng drives color sampling,
// try_move's bump_x coin flip and tier shuffles, and fill_circle paints.
func New(w, h int, registry *elements.Registry, rng *rand.Rand) *Grid {
	g := &Grid{
		W:        w,
		H:        h,
		cells:    make([]Particle, w*h),
		dirty:    newDirtySet(w * h),
		registry: registry,
		rng:      rng,
	}
	empty := registry.Empty()
	for i := range g.cells {
		g.cells[i] = Particle{
			Element:     empty,
			X:           i % w,
			Y:           i / w,
			Index:       i,
			Color:       empty.BaseColor,
			Temperature: defaultTemperature,
		}
	}
	return g
}

func (g *Grid) indexOf(x, y int) int { return y*g.W + x }

// InBounds reports whether (x,y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Get returns the particle at (x,y), or nil if out of bounds.
func (g *Grid) Get(x, y int) *Particle {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.cells[g.indexOf(x, y)]
}

// GetIndex returns the particle at a flat index, which must be in range.
func (g *Grid) GetIndex(i int) *Particle {
	return &g.cells[i]
}

// Len returns W*H.
func (g *Grid) Len() int { return len(g.cells) }

// Neighbor returns the particle offset by d from p, or nil if out of bounds.
func (g *Grid) Neighbor(p *Particle, d elements.Offset) *Particle {
	return g.Get(p.X+d.DX, p.Y+d.DY)
}

// Neighbors maps offsets to in-bounds particles, dropping any that fall
// outside the grid, then applies an AND filter over category and element
// id when either is non-nil.
func (g *Grid) Neighbors(p *Particle, offsets []elements.Offset, filterCategory *elements.Category, filterID *uint16) []*Particle {
	out := make([]*Particle, 0, len(offsets))
	for _, d := range offsets {
		n := g.Neighbor(p, d)
		if n == nil {
			continue
		}
		if filterCategory != nil && n.Element.Category != *filterCategory {
			continue
		}
		if filterID != nil && n.Element.ID != *filterID {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MarkDirty adds p's index to the dirty set, and its 8-neighborhood too
// when includeNeighbors is set.
func (g *Grid) MarkDirty(p *Particle, includeNeighbors bool) {
	g.dirty.add(p.Index)
	if !includeNeighbors {
		return
	}
	for _, d := range elements.Neighborhood8 {
		if n := g.Neighbor(p, d); n != nil {
			g.dirty.add(n.Index)
		}
	}
}

// DirtyIndices returns the flat indices currently in the dirty set.
func (g *Grid) DirtyIndices() []int {
	return g.dirty.snapshot()
}

// DirtyLen returns the number of dirty cells.
func (g *Grid) DirtyLen() int {
	return g.dirty.len()
}

// ClearDirty empties the dirty set. The scheduler calls this at the
// configured clear cadence, not necessarily every tick.
func (g *Grid) ClearDirty() {
	g.dirty.clear()
}

// CreateAt rebuilds the cell at (x,y) as a fresh particle of elementID,
// in place (no allocation). Returns false only when out of bounds.
func (g *Grid) CreateAt(x, y int, elementID uint16, markDirty, includeNeighbors bool) bool {
	if !g.InBounds(x, y) {
		return false
	}
	el, ok := g.registry.Get(elementID)
	if !ok {
		el = g.registry.Empty()
	}
	i := g.indexOf(x, y)
	g.cells[i] = Particle{
		Element:     el,
		X:           x,
		Y:           y,
		Index:       i,
		Color:       sampleColor(el, g.rng),
		Temperature: defaultTemperature,
	}
	if markDirty {
		g.MarkDirty(&g.cells[i], includeNeighbors)
	}
	return true
}

// FillCircle paints or erases a disc of radius r centered at (cx,cy).
// Erase (elementID 0) overwrites any occupant; a non-zero brush only
// paints onto cells that are currently EMPTY, so strokes stack without
// destroying what is already there.
func (g *Grid) FillCircle(cx, cy, r int, elementID uint16) {
	r2 := r * r
	for j := -r; j <= r; j++ {
		for i := -r; i <= r; i++ {
			if i*i+j*j > r2 {
				continue
			}
			px, py := cx+i, cy+j
			if !g.InBounds(px, py) {
				continue
			}
			cur := g.Get(px, py)
			if elementID == elements.EmptyID || cur.Element.ID == elements.EmptyID {
				g.CreateAt(px, py, elementID, true, true)
			}
		}
	}
}

// Swap exchanges the two particles' contents, then restores each
// resulting slot's position/index to that slot's own fixed coordinates
// so that the identity that moved is the particle content, never the
// slot. Both endpoints are marked dirty when requested.
func (g *Grid) Swap(a, b *Particle, markDirty, includeNeighbors bool) {
	ax, ay, ai := a.X, a.Y, a.Index
	bx, by, bi := b.X, b.Y, b.Index

	*a, *b = *b, *a

	a.X, a.Y, a.Index = ax, ay, ai
	b.X, b.Y, b.Index = bx, by, bi

	if markDirty {
		g.MarkDirty(a, includeNeighbors)
		g.MarkDirty(b, includeNeighbors)
	}
}
