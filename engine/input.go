package engine

// Button identifies which pointer button an event concerns.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// PointerKind is the normalized pointer action the input producer
// contract (§6) pushes.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerUp
	PointerMove
)

// PointerEvent is one normalized input event in sim-space. The caller
// (cmd/sandbox) is responsible for scaling from display coordinates to
// sim coordinates before pushing it.
type PointerEvent struct {
	Kind   PointerKind
	Button Button
	X, Y   int
	OnCanvas bool
}

// PushPointerEvent queues a pointer event for the next Tick to apply.
func (e *Engine) PushPointerEvent(ev PointerEvent) {
	e.pendingEvents = append(e.pendingEvents, ev)
}

// PushWheelDelta queues a wheel delta for the next Tick to apply as a
// brush-size change: delta * brush_sensitivity, clamped to
// [0, brush_max_size].
func (e *Engine) PushWheelDelta(delta float64) {
	e.wheelDelta += delta
}

// applyInput drains the pending event queue, updates cursor/paint
// state, and performs any paint/erase strokes via fill_circle before
// the physics substeps run for this frame.
func (e *Engine) applyInput() {
	for _, ev := range e.pendingEvents {
		e.cursorX, e.cursorY = ev.X, ev.Y
		e.cursorOnCanvas = ev.OnCanvas

		switch ev.Kind {
		case PointerDown:
			e.painting = true
			e.paintButton = ev.Button
		case PointerUp:
			e.painting = false
		case PointerMove:
			// cursor position already updated above
		}

		if e.painting && ev.OnCanvas {
			e.strokeAt(ev.X, ev.Y)
		}
	}
	e.pendingEvents = e.pendingEvents[:0]

	if e.wheelDelta != 0 {
		delta := int(e.wheelDelta * e.settings.Input.BrushSensitivity)
		e.SetBrushSize(e.brushSize + delta)
		e.wheelDelta = 0
	}
}

// strokeAt applies one paint/erase stamp at the current cursor
// position, according to which button started the stroke.
func (e *Engine) strokeAt(x, y int) {
	if e.paintButton == ButtonSecondary {
		e.EraseCircle(x, y, e.brushSize)
		return
	}
	e.PaintCircle(x, y, e.brushSize, e.selectedElement)
}
