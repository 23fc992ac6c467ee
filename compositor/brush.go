package compositor

import "github.com/pthm-cable/grains/elements"

// brushColor is the constant brush-outline tint (§4.7).
var brushColor = elements.Color{R: 227, G: 227, B: 227, A: 180}

// BrushOutline generates the midpoint-circle outline for a brush of
// radius r centered at (cx,cy) in sim-space, clipped to a w*h grid and
// converted to image-space pixel indices. Radius 0 is a single pixel.
func BrushOutline(w, h, cx, cy, r int) []Pixel {
	if r <= 0 {
		if cx < 0 || cx >= w || cy < 0 || cy >= h {
			return nil
		}
		return []Pixel{{Index: imageIndexFor(w, h, cx, cy), Color: brushColor}}
	}

	seen := make(map[int]bool)
	var out []Pixel

	emit := func(x, y int) {
		for _, s := range [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
			px, py := cx+s[0]*x, cy+s[1]*y
			if px < 0 || px >= w || py < 0 || py >= h {
				continue
			}
			idx := imageIndexFor(w, h, px, py)
			if seen[idx] {
				continue
			}
			seen[idx] = true
			out = append(out, Pixel{Index: idx, Color: brushColor})
		}
	}

	// Each octant point is mirrored across ±1 in each axis too, so the
	// outline is a thickened two-pixel-wide ring (up to 16 pixels per
	// step) rather than a thin one-pixel ring.
	plot := func(x, y int) {
		emit(x, y)
		emit(y, x)
		emit(x+1, y+1)
		emit(y+1, x+1)
	}

	x, y := r, 0
	p := 0
	plot(x, y)
	for y < x {
		y++
		if p < 0 {
			p += 2*y + 1
		} else {
			x--
			p += 2*(y-x) + 1
		}
		plot(x, y)
	}

	return out
}

func imageIndexFor(w, h, x, y int) int {
	return (h-1-y)*w + x
}
