// Package grid holds the dense particle array, the dirty set, and the
// movement primitive (try_move) that every category handler drives.
package grid

import (
	"math/rand"

	"github.com/pthm-cable/grains/elements"
)

// Vec2 is a reserved velocity field; nothing in the core writes it yet.
type Vec2 struct {
	X, Y float32
}

// Particle is one mutable grid cell. Position and Index always describe
// the slot the particle currently occupies; a swap updates both on both
// endpoints.
type Particle struct {
	Element *elements.Element
	X, Y    int
	Index   int
	Color   elements.Color
	Velocity    Vec2
	Mass        float32
	Temperature float32
}

// colorSteps are the t values a new particle's color is sampled from,
// per spec: 0, 1/5, ..., 5/5.
var colorSteps = []float32{0, 0.2, 0.4, 0.6, 0.8, 1.0}

func sampleColor(el *elements.Element, rng *rand.Rand) elements.Color {
	t := colorSteps[rng.Intn(len(colorSteps))]
	return el.BaseColor.Lerp(el.HighlightColor, t)
}

const defaultTemperature = 21.0
