// Package grouper implements the liquid grouping and equalisation pass
// that runs once per tick after all per-cell moves: a single raster
// scan unions same-element liquid runs into puddles (the "Katorithm"),
// then redistributes liquid from each puddle's high cells to its low
// empty cells.
package grouper

import (
	"sort"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
)

// equalisationThreshold is the puddle size (in liquid member count) a
// group must exceed to be considered for equalisation; a group of
// exactly this many members is skipped.
const equalisationThreshold = 30

type eqGroup struct {
	liquids []*grid.Particle
	empties []*grid.Particle
}

// Result reports what one Pass did, for telemetry and tests.
type Result struct {
	Groups     int
	Considered int
	Swaps      int
}

// Pass scans the grid for same-element puddles within category,
// equalises the ones above the size threshold, and marks every index
// that moved in processed so the scheduler's per-tick double-move
// guard sees the grouper's swaps too.
func Pass(g *grid.Grid, category elements.Category, processed map[int]bool) Result {
	groupOf := make(map[int]int, g.Len()/4)
	var groups []eqGroup

	up := elements.Offset{DX: 0, DY: 1}
	left := elements.Offset{DX: -1, DY: 0}

	for y := g.H - 1; y >= 0; y-- {
		for x := 0; x < g.W; x++ {
			p := g.Get(x, y)
			if p.Element.Category != category {
				continue
			}

			upP := g.Neighbor(p, up)
			leftP := g.Neighbor(p, left)
			hasUp := upP != nil && upP.Element.ID == p.Element.ID
			hasLeft := leftP != nil && leftP.Element.ID == p.Element.ID
			isUpEmpty := upP != nil && upP.Element.ID == elements.EmptyID

			switch {
			case !hasLeft && !hasUp:
				gid := len(groups)
				groups = append(groups, eqGroup{})
				groups[gid].liquids = append(groups[gid].liquids, p)
				if isUpEmpty {
					groups[gid].empties = append(groups[gid].empties, upP)
				}
				groupOf[p.Index] = gid

			case hasLeft && !hasUp:
				gid := groupOf[leftP.Index]
				groups[gid].liquids = append(groups[gid].liquids, p)
				if isUpEmpty {
					groups[gid].empties = append(groups[gid].empties, upP)
				}
				groupOf[p.Index] = gid

			case !hasLeft && hasUp:
				gid := groupOf[upP.Index]
				groups[gid].liquids = append(groups[gid].liquids, p)
				if isUpEmpty {
					groups[gid].empties = append(groups[gid].empties, upP)
				}
				groupOf[p.Index] = gid

			default: // hasLeft && hasUp
				upGid := groupOf[upP.Index]
				leftGid := groupOf[leftP.Index]
				groups[upGid].liquids = append(groups[upGid].liquids, p)
				if isUpEmpty {
					groups[upGid].empties = append(groups[upGid].empties, upP)
				}
				groupOf[p.Index] = upGid

				if leftGid != upGid {
					for idx, gid := range groupOf {
						if gid == leftGid {
							groupOf[idx] = upGid
						}
					}
					groups[upGid].liquids = append(groups[upGid].liquids, groups[leftGid].liquids...)
					groups[upGid].empties = append(groups[upGid].empties, groups[leftGid].empties...)
					groups[leftGid].liquids = nil
					groups[leftGid].empties = nil
				}
			}
		}
	}

	res := Result{Groups: len(groups)}

	for _, eg := range groups {
		if len(eg.liquids) <= equalisationThreshold {
			continue
		}
		res.Considered++

		liquids := append([]*grid.Particle(nil), eg.liquids...)
		empties := append([]*grid.Particle(nil), eg.empties...)
		sort.Slice(liquids, func(i, j int) bool { return liquids[i].Y > liquids[j].Y })
		sort.Slice(empties, func(i, j int) bool { return empties[i].Y < empties[j].Y })

		l := len(liquids)
		if len(empties) < l {
			l = len(empties)
		}
		swapCap := l / 4
		swaps := 0
		for i := 0; i < l && swaps < swapCap; i++ {
			if liquids[i].Y <= empties[i].Y {
				continue
			}
			g.Swap(liquids[i], empties[i], true, true)
			processed[liquids[i].Index] = true
			processed[empties[i].Index] = true
			swaps++
		}
		res.Swaps += swaps
	}

	return res
}
