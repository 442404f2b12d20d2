package gesture

import (
	"time"

	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/gogpu/stitch/geom"
)

// MouseContact is the contact id used for mouse input.
const MouseContact int64 = -1

// FromTouch converts a touch event. Touch screens report no pressure, so
// full pressure is assumed.
func FromTouch(e touch.Event, t time.Time) Event {
	ev := Event{
		Contact:  int64(e.Sequence),
		Pos:      geom.V(float64(e.X), float64(e.Y)),
		Time:     t,
		Pressure: 1,
	}
	switch e.Type {
	case touch.TypeBegin:
		ev.Phase = Down
	case touch.TypeEnd:
		ev.Phase = Up
	default:
		ev.Phase = Move
	}
	return ev
}

// FromMouse converts a left-button mouse event. ok is false for events
// that carry no contact: other buttons, wheel steps and hover moves.
// A move is treated as a drag when it reports the left button.
func FromMouse(e mouse.Event, t time.Time) (ev Event, ok bool) {
	ev = Event{
		Contact:  MouseContact,
		Pos:      geom.V(float64(e.X), float64(e.Y)),
		Time:     t,
		Pressure: 1,
	}
	switch e.Direction {
	case mouse.DirPress:
		ev.Phase = Down
	case mouse.DirRelease:
		ev.Phase = Up
	case mouse.DirNone:
		ev.Phase = Move
	default:
		return ev, false
	}
	return ev, e.Button == mouse.ButtonLeft
}

// MouseTracker converts mouse events for drivers that report moves with
// no button. It remembers whether the left button is held.
type MouseTracker struct {
	down bool
}

// Convert is FromMouse with drag tracking.
func (m *MouseTracker) Convert(e mouse.Event, t time.Time) (Event, bool) {
	ev, ok := FromMouse(e, t)
	switch {
	case ev.Phase == Move && e.Direction == mouse.DirNone:
		return ev, m.down
	case !ok:
		return ev, false
	case ev.Phase == Down:
		m.down = true
	case ev.Phase == Up:
		m.down = false
	}
	return ev, true
}
