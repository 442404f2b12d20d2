package gesture

import (
	"math"
	"time"

	"github.com/gogpu/stitch/geom"
)

type mode uint8

const (
	modeIdle   mode = iota
	modeDraw        // single contact owned by a drawing tool
	modeSingle      // single contact with a non-drawing tool
	modeMulti       // two or more contacts
	modeDone        // gesture decided; absorb until every contact lifts
)

type contact struct {
	start geom.Vec2
	pos   geom.Vec2
}

// Recognizer turns contact events into Outputs. The zero value is not
// usable; create one with NewRecognizer.
//
// Recognizer is not safe for concurrent use.
type Recognizer struct {
	cfg  Config
	tool Tool

	mode     mode
	contacts map[int64]*contact
	ignored  map[int64]bool

	// modeDraw
	drawID    int64
	drawStart time.Time

	// modeSingle
	singleStart time.Time
	edge        bool
	panning     bool

	// modeMulti
	sessionStart time.Time
	maxCount     int
	moved        bool // some contact left the tap slop
	drifted      bool // some contact left the hold slop
	broken       bool // contact count changed after a transform started
	transforming bool
	frameA       int64 // contacts defining the transform start frame
	frameB       int64
	frameStartA  geom.Vec2
	frameStartB  geom.Vec2
	lastDelta    geom.Delta
	holdStart    time.Time
	holdArmed    bool
}

// NewRecognizer creates an idle recognizer for the given tool.
func NewRecognizer(cfg Config, tool Tool) *Recognizer {
	return &Recognizer{
		cfg:      cfg,
		tool:     tool,
		contacts: make(map[int64]*contact),
		ignored:  make(map[int64]bool),
	}
}

// Config returns the active thresholds.
func (r *Recognizer) Config() Config { return r.cfg }

// SetScreenSize updates the bounds used for edge swipes.
func (r *Recognizer) SetScreenSize(w, h float64) {
	r.cfg.ScreenWidth, r.cfg.ScreenHeight = w, h
}

// Tool returns the active tool.
func (r *Recognizer) Tool() Tool { return r.tool }

// SetTool changes the active tool. A stroke already in progress is unaffected.
func (r *Recognizer) SetTool(t Tool) { r.tool = t }

// Active reports whether any contact is down.
func (r *Recognizer) Active() bool { return len(r.contacts) > 0 || len(r.ignored) > 0 }

// Reset drops all contacts without emitting anything.
func (r *Recognizer) Reset() {
	clear(r.contacts)
	clear(r.ignored)
	r.mode = modeIdle
	r.transforming = false
}

// Handle consumes one event and returns what it completes, in order.
func (r *Recognizer) Handle(ev Event) []Output {
	out := r.Tick(ev.Time)

	if r.ignored[ev.Contact] {
		if ev.Phase == Up || ev.Phase == Cancel {
			delete(r.ignored, ev.Contact)
			r.settle()
		}
		return out
	}

	switch ev.Phase {
	case Down:
		out = append(out, r.down(ev)...)
	case Move:
		c, ok := r.contacts[ev.Contact]
		if !ok {
			return out
		}
		c.pos = ev.Pos
		out = append(out, r.move(ev)...)
	case Up, Cancel:
		if _, ok := r.contacts[ev.Contact]; !ok {
			return out
		}
		out = append(out, r.up(ev)...)
	}
	return out
}

// Tick advances timers to now. It recognizes holds without new input.
func (r *Recognizer) Tick(now time.Time) []Output {
	if r.mode != modeMulti || !r.holdArmed || r.transforming || r.broken {
		return nil
	}
	if now.Sub(r.holdStart) < r.cfg.HoldDuration {
		return nil
	}
	r.holdArmed = false
	r.mode = modeDone
	return []Output{{Kind: KindCommand, Command: CommandClearLayer, Time: now}}
}

func (r *Recognizer) down(ev Event) []Output {
	switch r.mode {
	case modeIdle:
		r.contacts[ev.Contact] = &contact{start: ev.Pos, pos: ev.Pos}
		if r.tool.Drawing() {
			r.mode = modeDraw
			r.drawID = ev.Contact
			r.drawStart = ev.Time
			return []Output{drawOutput(Began, ev)}
		}
		r.mode = modeSingle
		r.singleStart = ev.Time
		r.edge = r.atEdge(ev.Pos)
		r.panning = false
		return nil

	case modeDraw:
		if ev.Time.Sub(r.drawStart) > r.cfg.DrawGrace {
			r.ignored[ev.Contact] = true
			return nil
		}
		r.contacts[ev.Contact] = &contact{start: ev.Pos, pos: ev.Pos}
		first := r.contacts[r.drawID]
		cancel := Output{Kind: KindDraw, Stage: Cancelled, Pos: first.pos, Time: ev.Time}
		r.beginMulti(r.drawStart)
		return []Output{cancel}

	case modeSingle:
		r.contacts[ev.Contact] = &contact{start: ev.Pos, pos: ev.Pos}
		var out []Output
		if r.panning {
			out = append(out, Output{Kind: KindTransform, Stage: Cancelled, Time: ev.Time})
		}
		r.beginMulti(r.singleStart)
		return out

	case modeMulti:
		r.contacts[ev.Contact] = &contact{start: ev.Pos, pos: ev.Pos}
		var out []Output
		if r.transforming {
			r.transforming = false
			r.broken = true
			out = append(out, Output{Kind: KindTransform, Stage: Cancelled, Time: ev.Time})
		}
		r.maxCount = max(r.maxCount, len(r.contacts))
		if len(r.contacts) >= 3 && !r.drifted && !r.broken && !r.holdArmed {
			r.holdArmed = true
			r.holdStart = ev.Time
		}
		return out

	default: // modeDone
		r.ignored[ev.Contact] = true
		return nil
	}
}

func (r *Recognizer) beginMulti(start time.Time) {
	r.mode = modeMulti
	r.sessionStart = start
	r.maxCount = len(r.contacts)
	r.moved = false
	r.drifted = false
	r.broken = false
	r.transforming = false
	r.holdArmed = false
	r.edge, r.panning = false, false
	for _, c := range r.contacts {
		c.start = c.pos
	}
	r.setFrame()
}

// setFrame records the two contacts and positions a transform is
// measured against.
func (r *Recognizer) setFrame() {
	var ids []int64
	for id := range r.contacts {
		ids = append(ids, id)
	}
	if len(ids) != 2 {
		return
	}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	r.frameA, r.frameB = ids[0], ids[1]
	r.frameStartA = r.contacts[ids[0]].pos
	r.frameStartB = r.contacts[ids[1]].pos
}

func (r *Recognizer) move(ev Event) []Output {
	switch r.mode {
	case modeDraw:
		if ev.Contact == r.drawID {
			return []Output{drawOutput(Changed, ev)}
		}
	case modeSingle:
		return r.moveSingle(ev)
	case modeMulti:
		return r.moveMulti(ev)
	}
	return nil
}

func (r *Recognizer) moveSingle(ev Event) []Output {
	c := r.contacts[ev.Contact]
	d := c.pos.Sub(c.start)
	if r.edge {
		if ev.Time.Sub(r.singleStart) > r.cfg.SwipeMaxDuration {
			r.edge = false
		} else if r.isSwipe(c.start, d) {
			r.mode = modeDone
			return []Output{{Kind: KindCommand, Command: CommandToggleUI, Time: ev.Time}}
		} else {
			return nil
		}
	}
	if r.tool != ToolHand {
		return nil
	}
	delta := geom.Delta{Scale: 1, Origin: c.start, Pan: d}
	if !r.panning {
		if d.Len() < r.cfg.PanThreshold {
			return nil
		}
		r.panning = true
		return []Output{{Kind: KindTransform, Stage: Began, Delta: delta, Time: ev.Time}}
	}
	return []Output{{Kind: KindTransform, Stage: Changed, Delta: delta, Time: ev.Time}}
}

func (r *Recognizer) moveMulti(ev Event) []Output {
	c := r.contacts[ev.Contact]
	dist := c.pos.Dist(c.start)
	if dist > r.cfg.TapSlop {
		r.moved = true
	}
	if dist > r.cfg.HoldSlop {
		r.drifted = true
		r.holdArmed = false
	}
	if r.broken || len(r.contacts) != 2 {
		return nil
	}
	a, okA := r.contacts[r.frameA]
	b, okB := r.contacts[r.frameB]
	if !okA || !okB {
		return nil
	}
	d := frameDelta(r.frameStartA, r.frameStartB, a.pos, b.pos)
	if !r.transforming {
		if math.Abs(d.Scale-1) < r.cfg.ScaleThreshold &&
			d.Pan.Len() < r.cfg.PanThreshold &&
			math.Abs(d.Rotation) < r.cfg.RotateThreshold {
			return nil
		}
		r.transforming = true
		r.holdArmed = false
		r.lastDelta = d
		return []Output{{Kind: KindTransform, Stage: Began, Delta: d, Time: ev.Time}}
	}
	r.lastDelta = d
	return []Output{{Kind: KindTransform, Stage: Changed, Delta: d, Time: ev.Time}}
}

// frameDelta measures the transform taking segment (a0, b0) to (a1, b1).
func frameDelta(a0, b0, a1, b1 geom.Vec2) geom.Delta {
	v0, v1 := b0.Sub(a0), b1.Sub(a1)
	scale := 1.0
	if l0 := v0.Len(); l0 > 0 {
		scale = v1.Len() / l0
	}
	return geom.Delta{
		Scale:    scale,
		Origin:   a0.Mid(b0),
		Pan:      a1.Mid(b1).Sub(a0.Mid(b0)),
		Rotation: geom.NormalizeAngle(v1.Angle() - v0.Angle()),
	}
}

func (r *Recognizer) up(ev Event) []Output {
	cancelled := ev.Phase == Cancel
	var out []Output
	switch r.mode {
	case modeDraw:
		if ev.Contact == r.drawID {
			stage := Ended
			if cancelled {
				stage = Cancelled
			}
			out = append(out, drawOutput(stage, ev))
		}
	case modeSingle:
		if r.panning {
			stage := Ended
			if cancelled {
				stage = Cancelled
			}
			c := r.contacts[ev.Contact]
			out = append(out, Output{Kind: KindTransform, Stage: stage, Time: ev.Time,
				Delta: geom.Delta{Scale: 1, Origin: c.start, Pan: c.pos.Sub(c.start)}})
		}
	case modeMulti:
		switch {
		case r.transforming:
			stage := Ended
			if cancelled {
				stage = Cancelled
			}
			out = append(out, Output{Kind: KindTransform, Stage: stage, Delta: r.lastDelta, Time: ev.Time})
			r.transforming = false
		case !cancelled && !r.moved && !r.broken && ev.Time.Sub(r.sessionStart) <= r.cfg.TapMaxDuration:
			switch r.maxCount {
			case 2:
				out = append(out, Output{Kind: KindCommand, Command: CommandUndo, Time: ev.Time})
			case 3:
				out = append(out, Output{Kind: KindCommand, Command: CommandRedo, Time: ev.Time})
			}
		}
		r.mode = modeDone
	}
	delete(r.contacts, ev.Contact)
	if r.mode == modeDraw || r.mode == modeSingle {
		r.mode = modeDone
	}
	r.settle()
	return out
}

// settle returns to idle once every contact has lifted.
func (r *Recognizer) settle() {
	if len(r.contacts) == 0 && len(r.ignored) == 0 {
		r.mode = modeIdle
		r.transforming = false
		r.holdArmed = false
	}
}

func (r *Recognizer) atEdge(p geom.Vec2) bool {
	w := r.cfg.EdgeWidth
	if w <= 0 {
		return false
	}
	if p.X <= w || p.Y <= w {
		return true
	}
	return (r.cfg.ScreenWidth > 0 && p.X >= r.cfg.ScreenWidth-w) ||
		(r.cfg.ScreenHeight > 0 && p.Y >= r.cfg.ScreenHeight-w)
}

// isSwipe reports whether displacement d from start is an inward swipe
// from the edge start lies on.
func (r *Recognizer) isSwipe(start, d geom.Vec2) bool {
	w, dist := r.cfg.EdgeWidth, r.cfg.SwipeMinDistance
	switch {
	case start.X <= w && d.X >= dist && math.Abs(d.Y) < d.X/2:
		return true
	case start.Y <= w && d.Y >= dist && math.Abs(d.X) < d.Y/2:
		return true
	case r.cfg.ScreenWidth > 0 && start.X >= r.cfg.ScreenWidth-w && -d.X >= dist && math.Abs(d.Y) < -d.X/2:
		return true
	case r.cfg.ScreenHeight > 0 && start.Y >= r.cfg.ScreenHeight-w && -d.Y >= dist && math.Abs(d.X) < -d.Y/2:
		return true
	}
	return false
}

func drawOutput(stage Stage, ev Event) Output {
	return Output{Kind: KindDraw, Stage: stage, Pos: ev.Pos, Pressure: ev.Pressure, Time: ev.Time}
}
