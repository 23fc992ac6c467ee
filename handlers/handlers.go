// Package handlers implements the per-category movement rules the
// scheduler dispatches each dirty particle to: liquid flow, gas drift,
// and sand repose. Solid, Electronic, and Technical are no-ops and are
// not represented here.
package handlers

import (
	"math/rand"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
)

// Func is the shape every category handler implements, so the
// scheduler can dispatch through a single table instead of a
// category-keyed switch of mismatched signatures. It returns the
// particle p ended up swapped with, or nil if p did not move.
type Func func(g *grid.Grid, p *grid.Particle, rng *rand.Rand) *grid.Particle

// liquidGroups: straight down, then diagonal down, then sideways.
var liquidGroups = [][]elements.Offset{
	{{DX: 0, DY: -1}},
	{{DX: -1, DY: -1}, {DX: 1, DY: -1}},
	{{DX: -1, DY: 0}, {DX: 1, DY: 0}},
}

// Liquid runs one try_move attempt for a liquid particle. rng is
// unused: the grid's own rng drives try_move's tier shuffle.
func Liquid(g *grid.Grid, p *grid.Particle, rng *rand.Rand) *grid.Particle {
	return g.TryMove(p, liquidGroups, false, true, true)
}

// Gas picks one of the 8 neighboring directions uniformly and attempts
// a single try_move against it. Net upward or downward drift emerges
// statistically from the density comparison, not from a biased pick.
func Gas(g *grid.Grid, p *grid.Particle, rng *rand.Rand) *grid.Particle {
	d := elements.Neighborhood8[rng.Intn(len(elements.Neighborhood8))]
	return g.TryMove(p, [][]elements.Offset{{d}}, false, true, true)
}

// Sand runs try_move against the element's precomputed repose
// direction groups, with lateral bump_x jitter enabled. rng is unused
// for the same reason as Liquid.
func Sand(g *grid.Grid, p *grid.Particle, rng *rand.Rand) *grid.Particle {
	return g.TryMove(p, p.Element.ReposeDirections, true, true, true)
}
