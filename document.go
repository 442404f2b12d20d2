package stitch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/export"
	"github.com/gogpu/stitch/geom"
	"github.com/gogpu/stitch/gesture"
	"github.com/gogpu/stitch/history"
	"github.com/gogpu/stitch/layer"
	"github.com/gogpu/stitch/surface"
)

// DefaultHistoryLimit is the undo depth used when no option overrides it.
const DefaultHistoryLimit = 100

// Change flags what a document mutation touched.
type Change uint8

const (
	ChangePixels Change = 1 << iota
	ChangeLayers
	ChangeHistory
	ChangeView
	ChangeUI
)

// Document is one design session on one garment canvas.
//
// Document is not safe for concurrent use.
type Document struct {
	stack   *layer.Stack
	engine  *brush.Engine
	overlay *brush.Overlay
	history *history.Manager[*layer.Snapshot]
	recog   *gesture.Recognizer
	view    *geom.Viewport

	brush       brush.Settings
	strokeLayer string
	uiVisible   bool
	printArea   image.Rectangle
	safeArea    image.Rectangle
	template    Template
	listener    func(Change)
}

// New creates a document with one empty layer.
func New(w, h int, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.brush.Validate(); err != nil {
		return nil, err
	}
	if err := o.gesture.Validate(); err != nil {
		return nil, fmt.Errorf("stitch: gesture config: %w", err)
	}

	var lopts []layer.Option
	if o.thumbW > 0 && o.thumbH > 0 {
		lopts = append(lopts, layer.WithThumbnailSize(o.thumbW, o.thumbH))
	}
	stack, err := layer.New(w, h, lopts...)
	if err != nil {
		return nil, err
	}
	ov, err := brush.NewOverlay(w, h)
	if err != nil {
		return nil, err
	}
	eng, err := brush.NewEngine(o.brush)
	if err != nil {
		return nil, err
	}
	d := &Document{
		stack:     stack,
		engine:    eng,
		overlay:   ov,
		history:   history.New(stack.Snapshot(), history.WithLimit(o.historyLimit)),
		recog:     gesture.NewRecognizer(o.gesture, o.tool),
		view:      geom.NewViewport(),
		brush:     o.brush,
		uiVisible: true,
		printArea: image.Rect(0, 0, w, h),
		safeArea:  image.Rect(0, 0, w, h),
		listener:  o.listener,
	}
	return d, nil
}

func (d *Document) notify(c Change) {
	if d.listener != nil {
		d.listener(c)
	}
}

// Width returns the canvas width in pixels.
func (d *Document) Width() int { return d.stack.Width() }

// Height returns the canvas height in pixels.
func (d *Document) Height() int { return d.stack.Height() }

// Template returns the template the document was created from, if any.
func (d *Document) Template() Template { return d.template }

// commit refreshes the thumbnails of the given layers and records the
// current stack as one history step.
func (d *Document) commit(op string, thumbs ...string) {
	for _, id := range thumbs {
		if err := d.stack.RefreshThumbnail(id); err != nil {
			Logger().Warn("thumbnail refresh failed", slog.String("layer", id), slog.String("error", err.Error()))
		}
	}
	d.history.Commit(d.stack.Snapshot())
	Logger().Debug("history commit", slog.String("op", op), slog.Int("steps", d.history.Len()))
}

// Brush returns the working brush settings.
func (d *Document) Brush() brush.Settings { return d.brush }

// SetBrush replaces the working brush. A live stroke keeps the settings
// it started with.
func (d *Document) SetBrush(s brush.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.brush = s
	return nil
}

// UseBrushPreset loads a named preset into the working brush.
func (d *Document) UseBrushPreset(name string) error {
	p, ok := brush.LookupPreset(name)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", brush.ErrInvalidSettings, name)
	}
	return d.SetBrush(p.Settings)
}

// strokeSettings applies the active tool to the working brush.
func (d *Document) strokeSettings() brush.Settings {
	s := d.brush
	if d.recog.Tool() == gesture.ToolEraser {
		s.IsEraser = true
	}
	return s
}

// Stroking reports whether a stroke is live.
func (d *Document) Stroking() bool { return d.engine.State() == brush.Stroking }

// StartStroke begins a stroke on the active layer at pos in canvas
// coordinates.
func (d *Document) StartStroke(pos geom.Vec2, pressure float64, t time.Time) error {
	if d.Stroking() {
		return brush.ErrStrokeInProgress
	}
	target := d.stack.Active()
	if target.Locked() {
		return fmt.Errorf("%w: %s", layer.ErrLayerLocked, target.Name())
	}
	if err := d.engine.SetSettings(d.strokeSettings()); err != nil {
		return err
	}
	if _, err := d.engine.StartStroke(pos, pressure, t); err != nil {
		return err
	}
	d.strokeLayer = target.ID()
	d.overlay.Begin(d.engine.Settings())
	d.engine.Render(d.overlay)
	d.notify(ChangePixels)
	return nil
}

// AddPoint extends the live stroke. It never touches layer pixels or
// history.
func (d *Document) AddPoint(pos geom.Vec2, pressure float64, t time.Time) error {
	if err := d.engine.AddPoint(pos, pressure, t); err != nil {
		return err
	}
	if d.engine.Render(d.overlay) > 0 {
		d.notify(ChangePixels)
	}
	return nil
}

// EndStroke bakes the live stroke into its layer and commits one history
// step.
func (d *Document) EndStroke() error {
	if _, err := d.engine.EndStroke(); err != nil {
		return err
	}
	d.engine.Render(d.overlay)
	id := d.strokeLayer
	d.strokeLayer = ""
	err := d.stack.ApplyOverlay(id, d.overlay)
	d.overlay.Clear()
	if err != nil {
		return err
	}
	d.commit("stroke", id)
	d.notify(ChangePixels | ChangeHistory)
	return nil
}

// CancelStroke discards the live stroke. Layer pixels and history are
// left exactly as they were. It reports whether a stroke was live.
func (d *Document) CancelStroke() bool {
	if !d.engine.CancelStroke() {
		return false
	}
	d.overlay.Clear()
	d.strokeLayer = ""
	d.notify(ChangePixels)
	return true
}

// Layers returns the metadata of every layer, bottom to top.
func (d *Document) Layers() []layer.Info { return d.stack.Info() }

// ActiveLayer returns the id of the layer that receives strokes.
func (d *Document) ActiveLayer() string { return d.stack.Active().ID() }

// CreateLayer adds an empty layer at the top and makes it active.
func (d *Document) CreateLayer(name string) layer.Info {
	l := d.stack.Create(name)
	d.commit("create layer", l.ID())
	d.notify(ChangeLayers | ChangeHistory)
	return d.info(l.ID())
}

// DeleteLayer removes a layer. Deleting the last layer leaves a fresh
// empty one in its place. A live stroke is cancelled first.
func (d *Document) DeleteLayer(id string) error {
	d.CancelStroke()
	if err := d.stack.Delete(id); err != nil {
		return err
	}
	d.commit("delete layer", d.stack.Active().ID())
	d.notify(ChangeLayers | ChangePixels | ChangeHistory)
	return nil
}

// DuplicateLayer copies a layer directly above itself.
func (d *Document) DuplicateLayer(id string) (layer.Info, error) {
	l, err := d.stack.Duplicate(id)
	if err != nil {
		return layer.Info{}, err
	}
	d.commit("duplicate layer", l.ID())
	d.notify(ChangeLayers | ChangePixels | ChangeHistory)
	return d.info(l.ID()), nil
}

// ReorderLayer moves the layer at index from to index to. A live stroke
// is cancelled first.
func (d *Document) ReorderLayer(from, to int) error {
	d.CancelStroke()
	if err := d.stack.Reorder(from, to); err != nil {
		return err
	}
	d.commit("reorder layer")
	d.notify(ChangeLayers | ChangePixels | ChangeHistory)
	return nil
}

// SetLayerProperty changes one property of a layer. See layer.Property
// for the accepted value types. A live stroke is cancelled first.
func (d *Document) SetLayerProperty(id string, p layer.Property, v any) error {
	d.CancelStroke()
	if err := d.stack.SetProperty(id, p, v); err != nil {
		return err
	}
	d.commit("set " + p.String())
	d.notify(ChangeLayers | ChangePixels | ChangeHistory)
	return nil
}

// SetActiveLayer selects the layer that receives strokes. Selection is
// not an undoable step.
func (d *Document) SetActiveLayer(id string) error {
	if err := d.stack.SetActive(id); err != nil {
		return err
	}
	d.notify(ChangeLayers)
	return nil
}

// ClearActiveLayer makes the active layer transparent. A live stroke is
// cancelled first.
func (d *Document) ClearActiveLayer() error {
	d.CancelStroke()
	id := d.stack.Active().ID()
	if err := d.stack.Clear(id); err != nil {
		return err
	}
	d.commit("clear layer", id)
	d.notify(ChangePixels | ChangeHistory)
	return nil
}

// GroupLayers groups adjacent layers under name.
func (d *Document) GroupLayers(name string, ids ...string) (layer.Group, error) {
	g, err := d.stack.CreateGroup(name, ids...)
	if err != nil {
		return layer.Group{}, err
	}
	d.commit("group layers")
	d.notify(ChangeLayers | ChangeHistory)
	return g, nil
}

// Ungroup dissolves a group, keeping its layers.
func (d *Document) Ungroup(id string) error {
	if err := d.stack.Ungroup(id); err != nil {
		return err
	}
	d.commit("ungroup")
	d.notify(ChangeLayers | ChangeHistory)
	return nil
}

// Groups lists the layer groups.
func (d *Document) Groups() []layer.Group { return d.stack.Groups() }

// Thumbnail returns the thumbnail of a layer as of its last commit.
func (d *Document) Thumbnail(id string) (*surface.Surface, error) {
	return d.stack.Thumbnail(id)
}

func (d *Document) info(id string) layer.Info {
	for _, in := range d.stack.Info() {
		if in.ID == id {
			return in
		}
	}
	return layer.Info{}
}

// Undo restores the state before the last committed operation. A live
// stroke is cancelled first.
func (d *Document) Undo() bool {
	d.CancelStroke()
	snap, ok := d.history.Undo()
	if !ok {
		return false
	}
	d.restore(snap)
	return true
}

// Redo reapplies the next undone operation.
func (d *Document) Redo() bool {
	d.CancelStroke()
	snap, ok := d.history.Redo()
	if !ok {
		return false
	}
	d.restore(snap)
	return true
}

func (d *Document) restore(snap *layer.Snapshot) {
	// snapshots always match the stack size; thumbnails travel with them
	_ = d.stack.Restore(snap)
	d.notify(ChangeLayers | ChangePixels | ChangeHistory)
}

// CanUndo reports whether Undo would change the document.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// HistoryLen returns the number of committed operations in history.
func (d *Document) HistoryLen() int { return d.history.Len() }

// Composite renders the document for preview, including a live stroke.
func (d *Document) Composite() (*surface.Surface, error) {
	if d.Stroking() {
		return d.stack.CompositeWithLive(d.strokeLayer, d.overlay)
	}
	return d.stack.Composite(), nil
}

// Snapshot freezes the committed document state. Live strokes are not
// included.
func (d *Document) Snapshot() *layer.Snapshot { return d.stack.Snapshot() }

// Export starts a print-ready export of the committed state. Edits made
// while the job runs do not affect it.
func (d *Document) Export(ctx context.Context, preset export.Preset, opts export.PrintOptions, sink export.Sink) *export.Job {
	return export.Start(ctx, d.stack.Snapshot(), preset, opts, sink)
}

// ExportPrintReady is the synchronous form of Export without a sink.
func (d *Document) ExportPrintReady(ctx context.Context, preset export.Preset, opts export.PrintOptions) (*export.PrintResult, error) {
	return export.ExportPrintReady(ctx, d.stack.Snapshot(), preset, opts)
}

// ExportRaster encodes the committed composite at the requested size.
func (d *Document) ExportRaster(ctx context.Context, req export.Request) (*export.Result, error) {
	return export.ExportRaster(ctx, d.stack.Composite(), req)
}
