// Package compositor owns the RGBA8 frame buffer the engine hands to
// its consumer each frame. It accepts queued particle writes plus
// overlay/UI pixel overlays and blends them source-over into a
// top-left-origin image.
package compositor

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/grains/elements"
	"github.com/pthm-cable/grains/grid"
)

// Pixel is a single write: a flat framebuffer index (already in
// image-space) and the RGBA8 color to blend there.
type Pixel struct {
	Index int
	Color elements.Color
}

// Compositor holds the frame buffer and the three pixel queues the
// engine fills once per frame: particles, overlay (accumulates until
// the next Render drains it), and UI (rebuilt fresh every frame).
type Compositor struct {
	w, h int

	frame []uint8 // W*H*4, written by particle queue
	temp  []uint8 // frame blended with overlay+UI, handed to the consumer

	particleQueue []Pixel
	overlayQueue  []Pixel
	uiQueue       []Pixel
}

// New allocates a compositor for a w*h simulation grid.
func New(w, h int) *Compositor {
	return &Compositor{
		w:     w,
		h:     h,
		frame: make([]uint8, w*h*4),
		temp:  make([]uint8, w*h*4),
	}
}

// imageIndex maps a simulation cell (x,y), y-up, to the flat
// image-space index, y-down, the only Y-flip in the whole system.
func (c *Compositor) imageIndex(x, y int) int {
	return imageIndexFor(c.w, c.h, x, y)
}

// QueueParticles schedules the given particles' cells for writing into
// the frame buffer, reading color from the particle's own sampled
// color. When debugColor is non-nil, the same pixels are also pushed
// onto the overlay queue in that color.
func (c *Compositor) QueueParticles(ps []*grid.Particle, debugColor *elements.Color) {
	for _, p := range ps {
		idx := c.imageIndex(p.X, p.Y)
		c.particleQueue = append(c.particleQueue, Pixel{Index: idx, Color: p.Color})
		if debugColor != nil {
			c.overlayQueue = append(c.overlayQueue, Pixel{Index: idx, Color: *debugColor})
		}
	}
}

// QueueOverlayPixels appends to the overlay queue. The queue
// accumulates across calls until the next Render, which blends it and
// then clears it along with the particle queue.
func (c *Compositor) QueueOverlayPixels(pixels []Pixel) {
	c.overlayQueue = append(c.overlayQueue, pixels...)
}

// QueueUIPixels appends to the UI queue. Render empties the UI queue
// before blending and refills it with the brush outline only, so
// pixels queued here are discarded rather than drawn.
func (c *Compositor) QueueUIPixels(pixels []Pixel) {
	c.uiQueue = append(c.uiQueue, pixels...)
}

// Render writes the particle queue into the frame buffer, replaces the
// UI queue with the brush outline (when cursorOnCanvas), blends
// overlay then UI source-over into a temp buffer, and returns it. The
// particle and overlay queues are cleared; the UI queue is cleared at
// the start of the next Render.
func (c *Compositor) Render(cursorX, cursorY, brushRadius int, cursorOnCanvas bool) []uint8 {
	c.uiQueue = c.uiQueue[:0]
	if cursorOnCanvas {
		c.uiQueue = BrushOutline(c.w, c.h, cursorX, cursorY, brushRadius)
	}

	for _, px := range c.particleQueue {
		writeRGBA(c.frame, px.Index, px.Color)
	}

	copy(c.temp, c.frame)
	blendQueue(c.temp, c.overlayQueue)
	blendQueue(c.temp, c.uiQueue)

	c.particleQueue = c.particleQueue[:0]
	c.overlayQueue = c.overlayQueue[:0]

	return c.temp
}

func writeRGBA(buf []uint8, idx int, col elements.Color) {
	o := idx * 4
	if o < 0 || o+4 > len(buf) {
		return
	}
	buf[o], buf[o+1], buf[o+2], buf[o+3] = col.R, col.G, col.B, col.A
}

// blendQueue source-over blends every pixel in pixels into buf. The
// brush outline and most debug tints push one color for the whole
// queue; that case is vectorized across all affected pixels at once
// via blas32 instead of branching per pixel. A queue that mixes colors
// falls back to the scalar per-pixel blend.
func blendQueue(buf []uint8, pixels []Pixel) {
	if len(pixels) == 0 {
		return
	}
	if uniform, col := sameColor(pixels); uniform {
		blendUniform(buf, pixels, col)
		return
	}
	for _, px := range pixels {
		blendOne(buf, px.Index, px.Color)
	}
}

func sameColor(pixels []Pixel) (bool, elements.Color) {
	first := pixels[0].Color
	for _, px := range pixels[1:] {
		if px.Color != first {
			return false, elements.Color{}
		}
	}
	return true, first
}

// blendUniform blends a uniform-color pixel set by building one dst
// vector per channel, scaling it by (1-a) with blas32.Scal, then adding
// the constant src*a per element, which gives `dst = dst*(1-a) + src*a`
// across every affected pixel.
func blendUniform(buf []uint8, pixels []Pixel, col elements.Color) {
	n := len(pixels)
	srcA := float32(col.A) / 255.0
	dstA := 1 - srcA

	dstR := blas32.Vector{N: n, Inc: 1, Data: make([]float32, n)}
	dstG := blas32.Vector{N: n, Inc: 1, Data: make([]float32, n)}
	dstB := blas32.Vector{N: n, Inc: 1, Data: make([]float32, n)}

	for i, px := range pixels {
		o := px.Index * 4
		if o < 0 || o+4 > len(buf) {
			continue
		}
		dstR.Data[i] = float32(buf[o])
		dstG.Data[i] = float32(buf[o+1])
		dstB.Data[i] = float32(buf[o+2])
	}

	blas32.Scal(dstA, dstR)
	blas32.Scal(dstA, dstG)
	blas32.Scal(dstA, dstB)

	addChannel(dstR, float32(col.R)*srcA)
	addChannel(dstG, float32(col.G)*srcA)
	addChannel(dstB, float32(col.B)*srcA)

	for i, px := range pixels {
		o := px.Index * 4
		if o < 0 || o+4 > len(buf) {
			continue
		}
		buf[o] = clampByte(dstR.Data[i])
		buf[o+1] = clampByte(dstG.Data[i])
		buf[o+2] = clampByte(dstB.Data[i])
		dstA := buf[o+3]
		if col.A < dstA {
			buf[o+3] = col.A
		}
	}
}

// addChannel adds a constant to every element of v in place. blas32
// has no axpy-by-scalar-broadcast primitive, so this is the plain
// per-element add that the vectorized Scal above feeds into.
func addChannel(v blas32.Vector, c float32) {
	for i := range v.Data {
		v.Data[i] += c
	}
}

func blendOne(buf []uint8, idx int, src elements.Color) {
	o := idx * 4
	if o < 0 || o+4 > len(buf) {
		return
	}
	a := float32(src.A) / 255.0
	inv := 1 - a
	buf[o] = clampByte(float32(src.R)*a + float32(buf[o])*inv)
	buf[o+1] = clampByte(float32(src.G)*a + float32(buf[o+1])*inv)
	buf[o+2] = clampByte(float32(src.B)*a + float32(buf[o+2])*inv)
	if src.A < buf[o+3] {
		buf[o+3] = src.A
	}
}

func clampByte(v float32) uint8 {
	r := v + 0.5 // round to nearest
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// Width and Height report the compositor's frame buffer dimensions.
func (c *Compositor) Width() int  { return c.w }
func (c *Compositor) Height() int { return c.h }
