package compositor

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
)

const testElements = `
[10]
name: Sand
category: sands
phase: solid
base_color: #0A1428
blend_color: #0A1428
highlight_color: #0A1428
is_movable: true
density: 2.0
cohesion: 0
repose_angle: 45
`

func TestRender_WritesParticlesYFlipped(t *testing.T) {
	reg, warnings := elements.Load(strings.NewReader(testElements))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	g := grid.New(4, 4, reg, rand.New(rand.NewSource(1)))
	g.CreateAt(1, 0, 10, false, false)
	p := g.Get(1, 0)

	c := New(4, 4)
	c.QueueParticles([]*grid.Particle{p}, nil)
	c.Render(0, 0, 0, false)

	want := imageIndexFor(4, 4, 1, 0) * 4
	if c.frame[want] != p.Color.R || c.frame[want+1] != p.Color.G || c.frame[want+2] != p.Color.B {
		t.Fatalf("expected frame buffer at flipped index %d to hold the particle's color", want)
	}
}

func TestBrushOutline_RadiusZeroIsSinglePixel(t *testing.T) {
	px := BrushOutline(10, 10, 5, 5, 0)
	if len(px) != 1 {
		t.Fatalf("expected exactly one pixel for radius 0, got %d", len(px))
	}
	want := imageIndexFor(10, 10, 5, 5)
	if px[0].Index != want {
		t.Errorf("expected index %d, got %d", want, px[0].Index)
	}
}

func TestBrushOutline_ClipsToGrid(t *testing.T) {
	px := BrushOutline(10, 10, 0, 0, 5)
	for _, p := range px {
		if p.Index < 0 || p.Index >= 100 {
			t.Fatalf("pixel index %d out of bounds for 10x10 grid", p.Index)
		}
	}
}

func TestBrushOutline_RadiusZeroOutOfBounds(t *testing.T) {
	px := BrushOutline(10, 10, -5, -5, 0)
	if px != nil {
		t.Fatalf("expected no pixels for an out-of-bounds radius-0 brush, got %v", px)
	}
}

func TestBlendOne_SourceOverMath(t *testing.T) {
	buf := make([]uint8, 4)
	buf[0], buf[1], buf[2], buf[3] = 0x0E, 0x0E, 0x11, 0xFF
	blendOne(buf, 0, elements.Color{R: 227, G: 227, B: 227, A: 180})
	// out.rgb = src*(a/255) + dst*(1-a/255); a=180/255≈0.706
	if buf[0] < 160 || buf[0] > 166 {
		t.Errorf("blended R out of expected range: got %d", buf[0])
	}
	if buf[3] != 180 {
		t.Errorf("expected blended alpha = min(255,180) = 180, got %d", buf[3])
	}
}

func TestBlendUniform_MatchesScalarBlend(t *testing.T) {
	scalarBuf := make([]uint8, 16)
	vectorBuf := make([]uint8, 16)
	for i := range scalarBuf {
		scalarBuf[i] = 0x40
		vectorBuf[i] = 0x40
	}
	col := elements.Color{R: 227, G: 227, B: 227, A: 180}
	pixels := []Pixel{{Index: 0, Color: col}, {Index: 1, Color: col}, {Index: 2, Color: col}, {Index: 3, Color: col}}

	for _, px := range pixels {
		blendOne(scalarBuf, px.Index, px.Color)
	}
	blendUniform(vectorBuf, pixels, col)

	for i := range scalarBuf {
		diff := int(scalarBuf[i]) - int(vectorBuf[i])
		if diff < -1 || diff > 1 {
			t.Fatalf("byte %d diverged: scalar=%d vector=%d", i, scalarBuf[i], vectorBuf[i])
		}
	}
}

func TestRender_ClearsParticleAndOverlayQueues(t *testing.T) {
	c := New(4, 4)
	c.overlayQueue = append(c.overlayQueue, Pixel{Index: 0, Color: elements.Color{R: 1, G: 1, B: 1, A: 1}})
	c.Render(0, 0, 0, false)
	if len(c.overlayQueue) != 0 {
		t.Fatalf("expected overlay queue cleared after render, got %d entries", len(c.overlayQueue))
	}
	if len(c.particleQueue) != 0 {
		t.Fatalf("expected particle queue cleared after render, got %d entries", len(c.particleQueue))
	}
}
