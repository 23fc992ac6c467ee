package grid

import "github.com/pthm-cable/grains/elements"

// shuffleOffsets Fisher-Yates shuffles a copy of tier in place and returns it.
func (g *Grid) shuffleOffsets(tier []elements.Offset) []elements.Offset {
	out := make([]elements.Offset, len(tier))
	copy(out, tier)
	for i := len(out) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// TryMove attempts to move p along the given tiered direction groups.
// Tiers are tried in order (priority); within a tier, candidates are
// tried in a freshly shuffled order. bump_x, when true, gives each
// candidate's dx a 50/50 chance of being negated before it is tried.
// A move succeeds against the first candidate whose target is movable
// and strictly less dense than p; that is the only mover-selection
// rule. Returns the particle p ended up swapped with, or nil.
func (g *Grid) TryMove(p *Particle, directionGroups [][]elements.Offset, bumpX, markDirty, includeNeighbors bool) *Particle {
	for _, tier := range directionGroups {
		for _, d := range g.shuffleOffsets(tier) {
			if bumpX && g.rng.Intn(2) == 0 {
				d.DX = -d.DX
			}
			target := g.Get(p.X+d.DX, p.Y+d.DY)
			if target == nil {
				continue
			}
			if target.Element.IsMovable && p.Element.Density > target.Element.Density {
				g.Swap(p, target, markDirty, includeNeighbors)
				return target
			}
		}
	}
	return nil
}
