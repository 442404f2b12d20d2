package brush

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/stitch/geom"
	"github.com/gogpu/stitch/internal/logging"
)

var (
	// ErrStrokeInProgress is returned by StartStroke while already stroking.
	ErrStrokeInProgress = errors.New("brush: stroke already in progress")

	// ErrNoActiveStroke is returned by AddPoint and EndStroke while idle.
	ErrNoActiveStroke = errors.New("brush: no active stroke")
)

// State is the engine's stroke state.
type State uint8

const (
	Idle State = iota
	Stroking
)

func (s State) String() string {
	if s == Stroking {
		return "stroking"
	}
	return "idle"
}

// Sample is one captured pointer position. Samples are immutable.
type Sample struct {
	Pos      geom.Vec2
	Pressure float64
	Time     time.Time
}

// Stroke is the record of a single pen-down to pen-up gesture. While live
// it is owned by the Engine; after EndStroke it no longer changes.
type Stroke struct {
	ID       uuid.UUID
	Samples  []Sample
	Settings Settings
}

// Stamp is one dab of the brush.
type Stamp struct {
	Pos      geom.Vec2
	Size     float64 // diameter
	Opacity  float64 // coverage cap
	Flow     float64
	Hardness float64
}

// Engine is the brush state machine: Idle -> Stroking -> Idle.
//
// Engine is not safe for concurrent use.
type Engine struct {
	settings Settings
	state    State
	stroke   *Stroke

	cursor   geom.Vec2 // smoothed position
	pressure float64   // pressure at cursor
	carry    float64   // distance travelled since the last stamp
	pending  []Stamp
	emitted  int
}

// NewEngine creates an idle engine.
func NewEngine(s Settings) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Engine{settings: s}, nil
}

// Settings returns the working settings applied to the next stroke.
func (e *Engine) Settings() Settings { return e.settings }

// SetSettings replaces the working settings. A stroke in progress keeps
// the settings it started with.
func (e *Engine) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.settings = s
	return nil
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Stroke returns the live stroke, or nil while idle.
func (e *Engine) Stroke() *Stroke { return e.stroke }

// Pending returns the number of stamps waiting for Render.
func (e *Engine) Pending() int { return len(e.pending) }

// StartStroke opens a live stroke at pos and emits its first stamp.
func (e *Engine) StartStroke(pos geom.Vec2, pressure float64, t time.Time) (*Stroke, error) {
	if e.state == Stroking {
		return nil, ErrStrokeInProgress
	}
	pressure = clamp01(pressure)
	e.stroke = &Stroke{
		ID:       uuid.New(),
		Samples:  []Sample{{Pos: pos, Pressure: pressure, Time: t}},
		Settings: e.settings,
	}
	e.state = Stroking
	e.cursor = pos
	e.pressure = pressure
	e.carry = 0
	e.pending = e.pending[:0]
	e.emitted = 0
	e.emit(pos, pressure)
	return e.stroke, nil
}

// AddPoint appends a raw sample, advances the smoothed cursor toward it
// and emits the stamps that fall on the way.
func (e *Engine) AddPoint(pos geom.Vec2, pressure float64, t time.Time) error {
	if e.state != Stroking {
		return ErrNoActiveStroke
	}
	pressure = clamp01(pressure)
	e.stroke.Samples = append(e.stroke.Samples, Sample{Pos: pos, Pressure: pressure, Time: t})

	// exponential smoothing: smoothing 0 follows input, 1 lags the most
	k := 1 - e.stroke.Settings.Smoothing*0.9
	to := e.cursor.Lerp(pos, k)
	toP := e.pressure + (pressure-e.pressure)*k
	e.advance(to, toP)
	return nil
}

// EndStroke catches the cursor up to the last raw sample, finalizes the
// stroke and returns to Idle. Stamps emitted by the catch-up are still
// pending; call Render afterwards.
func (e *Engine) EndStroke() (*Stroke, error) {
	if e.state != Stroking {
		return nil, ErrNoActiveStroke
	}
	last := e.stroke.Samples[len(e.stroke.Samples)-1]
	e.advance(last.Pos, last.Pressure)

	st := e.stroke
	logging.Logger().Debug("brush: stroke ended",
		"id", st.ID, "samples", len(st.Samples), "stamps", e.emitted)
	e.stroke = nil
	e.state = Idle
	return st, nil
}

// CancelStroke discards the live stroke and any unrendered stamps. It
// reports whether a stroke was active.
func (e *Engine) CancelStroke() bool {
	if e.state != Stroking {
		return false
	}
	logging.Logger().Debug("brush: stroke cancelled", "id", e.stroke.ID)
	e.stroke = nil
	e.state = Idle
	e.pending = e.pending[:0]
	return true
}

// Render draws all stamps emitted since the previous Render into ov and
// returns how many were drawn.
func (e *Engine) Render(ov *Overlay) int {
	n := len(e.pending)
	for _, st := range e.pending {
		ov.Stamp(st)
	}
	e.pending = e.pending[:0]
	return n
}

func (e *Engine) activeSettings() Settings {
	if e.stroke != nil {
		return e.stroke.Settings
	}
	return e.settings
}

// advance walks the cursor to (to, toP), emitting a stamp every
// StampSpacing along the segment. Pressure is interpolated linearly.
func (e *Engine) advance(to geom.Vec2, toP float64) {
	from, fromP := e.cursor, e.pressure
	length := from.Dist(to)
	e.cursor, e.pressure = to, toP
	if length == 0 || math.IsNaN(length) {
		return
	}
	s := e.activeSettings()
	d := 0.0
	for {
		p := fromP + (toP-fromP)*(d/length)
		// carry may exceed the spacing when pressure falls
		need := max(0, s.StampSpacing(p)-e.carry)
		if d+need > length {
			e.carry += length - d
			return
		}
		d += need
		t := d / length
		e.emit(from.Lerp(to, t), fromP+(toP-fromP)*t)
		e.carry = 0
	}
}

func (e *Engine) emit(pos geom.Vec2, pressure float64) {
	s := e.activeSettings()
	e.pending = append(e.pending, Stamp{
		Pos:      pos,
		Size:     s.EffectiveSize(pressure),
		Opacity:  s.EffectiveOpacity(pressure),
		Flow:     s.Flow,
		Hardness: s.Hardness,
	})
	e.emitted++
}

// String describes the engine state for logs.
func (e *Engine) String() string {
	if e.stroke == nil {
		return "brush.Engine{idle}"
	}
	return fmt.Sprintf("brush.Engine{stroking %s, %d samples}", e.stroke.ID, len(e.stroke.Samples))
}
