// Package gesture classifies raw pointer and touch contacts into drawing
// input, discrete commands and continuous view transforms.
//
// The Recognizer is a pure state machine: it consumes Events and returns
// Outputs, with Tick driving time-based recognition. It holds no reference
// to any window system, so it is tested with synthetic event sequences.
// FromTouch and FromMouse convert golang.org/x/mobile events.
//
// Arbitration rules:
//
//   - With a drawing tool, a single contact is always drawing input.
//   - A second contact within Config.DrawGrace of a stroke's start cancels
//     the stroke and starts a multi-touch gesture; later contacts are
//     ignored until the stroke ends.
//   - Two- and three-finger taps are undo and redo. Holding three or more
//     fingers still for Config.HoldDuration clears the active layer.
//   - Two fingers pinch, pan and twist the view, reported relative to the
//     frame where the gesture began. Any change in contact count cancels
//     a transform in progress.
//   - With a non-drawing tool, a single-finger swipe in from a screen edge
//     toggles the UI chrome and the hand tool pans with one finger.
package gesture

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gogpu/stitch/geom"
)

// Phase is the lifecycle stage of one contact.
type Phase uint8

const (
	Down Phase = iota
	Move
	Up
	Cancel // contact lost without a normal release
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Event is one raw contact update in screen coordinates.
type Event struct {
	Contact  int64
	Pos      geom.Vec2
	Phase    Phase
	Time     time.Time
	Pressure float64
}

// Tool is the active tool as far as arbitration is concerned.
type Tool uint8

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolHand
	ToolNone
)

// Drawing reports whether single contacts belong to the tool.
func (t Tool) Drawing() bool {
	return t == ToolBrush || t == ToolEraser
}

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	case ToolHand:
		return "hand"
	case ToolNone:
		return "none"
	}
	return fmt.Sprintf("Tool(%d)", uint8(t))
}

// Kind discriminates Output.
type Kind uint8

const (
	KindDraw Kind = iota
	KindCommand
	KindTransform
)

// Stage is the lifecycle stage of a continuous output.
type Stage uint8

const (
	Began Stage = iota
	Changed
	Ended
	Cancelled
)

func (s Stage) String() string {
	switch s {
	case Began:
		return "began"
	case Changed:
		return "changed"
	case Ended:
		return "ended"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Command is a discrete recognized gesture.
type Command uint8

const (
	CommandUndo Command = iota
	CommandRedo
	CommandClearLayer
	CommandToggleUI
)

func (c Command) String() string {
	switch c {
	case CommandUndo:
		return "undo"
	case CommandRedo:
		return "redo"
	case CommandClearLayer:
		return "clear-layer"
	case CommandToggleUI:
		return "toggle-ui"
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// Output is one recognized result.
//
// KindDraw carries Stage, Pos, Pressure and Time of the drawing contact.
// KindCommand carries Command. KindTransform carries Stage and Delta,
// measured from the frame where the transform began.
type Output struct {
	Kind     Kind
	Stage    Stage
	Command  Command
	Pos      geom.Vec2
	Pressure float64
	Time     time.Time
	Delta    geom.Delta
}

// Config holds recognition thresholds. Distances are in screen pixels.
type Config struct {
	TapMaxDuration time.Duration
	TapSlop        float64
	HoldDuration   time.Duration
	HoldSlop       float64
	DrawGrace      time.Duration

	EdgeWidth        float64
	SwipeMinDistance float64
	SwipeMaxDuration time.Duration

	ScaleThreshold  float64 // relative, e.g. 0.05 for 5%
	PanThreshold    float64
	RotateThreshold float64 // radians

	ScreenWidth, ScreenHeight float64
}

// DefaultConfig returns thresholds tuned for tablets.
func DefaultConfig() Config {
	return Config{
		TapMaxDuration:   250 * time.Millisecond,
		TapSlop:          12,
		HoldDuration:     800 * time.Millisecond,
		HoldSlop:         24,
		DrawGrace:        150 * time.Millisecond,
		EdgeWidth:        24,
		SwipeMinDistance: 80,
		SwipeMaxDuration: 500 * time.Millisecond,
		ScaleThreshold:   0.05,
		PanThreshold:     10,
		RotateThreshold:  0.1,
	}
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TapMaxDuration, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.TapSlop, validation.Required, validation.Min(0.0)),
		validation.Field(&c.HoldDuration, validation.Required, validation.Min(c.TapMaxDuration)),
		validation.Field(&c.HoldSlop, validation.Required, validation.Min(0.0)),
		validation.Field(&c.DrawGrace, validation.Min(time.Duration(0))),
		validation.Field(&c.EdgeWidth, validation.Min(0.0)),
		validation.Field(&c.SwipeMinDistance, validation.Required, validation.Min(0.0)),
		validation.Field(&c.SwipeMaxDuration, validation.Required),
		validation.Field(&c.ScaleThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.PanThreshold, validation.Min(0.0)),
		validation.Field(&c.RotateThreshold, validation.Min(0.0)),
		validation.Field(&c.ScreenWidth, validation.Min(0.0)),
		validation.Field(&c.ScreenHeight, validation.Min(0.0)),
	)
}
