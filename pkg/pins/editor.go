package pins

import "github.com/false0brian/hometypemap/pkg/geo"

// Editor is the operator drag-to-place state machine:
//
//	Idle -> Dragging{pinID} -> Idle
//
// It is a pure value type driven by pointer events; persistence happens
// outside, on the DragEnd result. Coordinates move optimistically during
// the drag and are intentionally NOT rolled back when a later persist
// fails; the operator retries by dragging again.
type Editor struct {
	dragging bool
	pinID    int64
	x, y     float64
	moved    bool
}

// DragResult is the outcome of a completed drag.
type DragResult struct {
	PinID int64
	X     float64
	Y     float64
	// Moved is false for a press-release without motion; callers skip
	// the persist call in that case.
	Moved bool
}

// Dragging reports whether a drag is in progress and for which pin.
func (e Editor) Dragging() (int64, bool) {
	return e.pinID, e.dragging
}

// Position returns the current optimistic position of the dragged pin.
func (e Editor) Position() (x, y float64, ok bool) {
	return e.x, e.y, e.dragging
}

// DragStart enters the dragging state for a pin at its current position.
// No network call happens here.
func (e *Editor) DragStart(pinID int64, x, y float64) {
	e.dragging = true
	e.pinID = pinID
	e.x = geo.Clamp(x, 0, 100)
	e.y = geo.Clamp(y, 0, 100)
	e.moved = false
}

// DragMove updates the optimistic position from a pointer position
// relative to the floor plan's rendered rect. A move while idle is
// ignored.
func (e *Editor) DragMove(px, py float64, r geo.Rect) {
	if !e.dragging {
		return
	}
	e.x, e.y = geo.ScreenToNormalized(px, py, r)
	e.moved = true
}

// DragEnd leaves the dragging state and returns the final coordinates
// for persistence. ok is false when no drag was in progress.
func (e *Editor) DragEnd() (DragResult, bool) {
	if !e.dragging {
		return DragResult{}, false
	}
	res := DragResult{PinID: e.pinID, X: e.x, Y: e.y, Moved: e.moved}
	e.dragging = false
	e.moved = false
	return res, true
}

// Cancel abandons a drag without producing a result (teardown).
func (e *Editor) Cancel() {
	e.dragging = false
	e.moved = false
}

// ClickToCreate maps a click on empty floor-plan canvas to pre-filled
// creation coordinates. It does not create a pin; the form submission
// does. Returns ok=false while a drag is in progress so the drag's
// release is never misread as a create click.
func (e Editor) ClickToCreate(px, py float64, r geo.Rect) (x, y float64, ok bool) {
	if e.dragging {
		return 0, 0, false
	}
	x, y = geo.ScreenToNormalized(px, py, r)
	return x, y, true
}
