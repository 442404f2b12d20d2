package stitch

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/stitch/geom"
	"github.com/gogpu/stitch/gesture"
)

// HandleEvent feeds one screen-space input event through the gesture
// recognizer and applies what it recognizes. Errors from drawing (such as
// a locked active layer) are returned; the event stream stays usable.
func (d *Document) HandleEvent(ev gesture.Event) error {
	return d.apply(d.recog.Handle(ev))
}

// Tick advances gesture timers. Call it periodically while contacts are
// down so holds fire without further input.
func (d *Document) Tick(now time.Time) error {
	return d.apply(d.recog.Tick(now))
}

func (d *Document) apply(outs []gesture.Output) error {
	var errs []error
	for _, o := range outs {
		var err error
		switch o.Kind {
		case gesture.KindDraw:
			err = d.applyDraw(o)
		case gesture.KindTransform:
			d.applyTransform(o)
		case gesture.KindCommand:
			err = d.applyCommand(o.Command)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Document) applyDraw(o gesture.Output) error {
	pos := d.view.ScreenToCanvas(o.Pos)
	switch o.Stage {
	case gesture.Began:
		return d.StartStroke(pos, o.Pressure, o.Time)
	case gesture.Changed:
		if d.Stroking() {
			return d.AddPoint(pos, o.Pressure, o.Time)
		}
	case gesture.Ended:
		if d.Stroking() {
			if err := d.AddPoint(pos, o.Pressure, o.Time); err != nil {
				return err
			}
			return d.EndStroke()
		}
	case gesture.Cancelled:
		d.CancelStroke()
	}
	return nil
}

func (d *Document) applyTransform(o gesture.Output) {
	switch o.Stage {
	case gesture.Began:
		d.view.Begin()
		d.view.Apply(o.Delta)
	case gesture.Changed:
		d.view.Apply(o.Delta)
	case gesture.Ended:
		d.view.Apply(o.Delta)
		d.view.End()
	case gesture.Cancelled:
		d.view.Cancel()
	}
	d.notify(ChangeView)
}

func (d *Document) applyCommand(c gesture.Command) error {
	Logger().Debug("gesture command", slog.String("command", c.String()))
	switch c {
	case gesture.CommandUndo:
		d.Undo()
	case gesture.CommandRedo:
		d.Redo()
	case gesture.CommandClearLayer:
		return d.ClearActiveLayer()
	case gesture.CommandToggleUI:
		d.uiVisible = !d.uiVisible
		d.notify(ChangeUI)
	}
	return nil
}

// Tool returns the active tool.
func (d *Document) Tool() gesture.Tool { return d.recog.Tool() }

// SetTool changes the active tool. A live stroke is unaffected.
func (d *Document) SetTool(t gesture.Tool) {
	d.recog.SetTool(t)
	d.notify(ChangeUI)
}

// UIVisible reports whether the editor chrome should be shown. Edge
// swipes toggle it.
func (d *Document) UIVisible() bool { return d.uiVisible }

// SetUIVisible shows or hides the editor chrome.
func (d *Document) SetUIVisible(v bool) {
	d.uiVisible = v
	d.notify(ChangeUI)
}

// Viewport returns the screen transform. Callers may pan and zoom it
// directly; gestures update it through HandleEvent.
func (d *Document) Viewport() *geom.Viewport { return d.view }

// SetScreenSize records the display size for edge gestures and fits the
// canvas into it.
func (d *Document) SetScreenSize(w, h float64) {
	d.recog.SetScreenSize(w, h)
	d.view.Fit(float64(d.Width()), float64(d.Height()), w, h)
	d.notify(ChangeView)
}

// PrintArea returns the printable region in canvas pixels.
func (d *Document) PrintArea() image.Rectangle { return d.printArea }

// SafeArea returns the region artwork should stay inside, in canvas pixels.
func (d *Document) SafeArea() image.Rectangle { return d.safeArea }

// PrintAreaOverlay returns the corners of the print area in screen
// coordinates, clockwise from the top-left, for drawing the guide.
func (d *Document) PrintAreaOverlay() [4]geom.Vec2 { return d.screenQuad(d.printArea) }

// SafeAreaOverlay is PrintAreaOverlay for the safe area.
func (d *Document) SafeAreaOverlay() [4]geom.Vec2 { return d.screenQuad(d.safeArea) }

func (d *Document) screenQuad(r image.Rectangle) [4]geom.Vec2 {
	corners := [4]geom.Vec2{
		geom.V(float64(r.Min.X), float64(r.Min.Y)),
		geom.V(float64(r.Max.X), float64(r.Min.Y)),
		geom.V(float64(r.Max.X), float64(r.Max.Y)),
		geom.V(float64(r.Min.X), float64(r.Max.Y)),
	}
	for i, c := range corners {
		corners[i] = d.view.CanvasToScreen(c)
	}
	return corners
}
