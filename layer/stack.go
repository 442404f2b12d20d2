package layer

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/internal/logging"
	"github.com/gogpu/stitch/surface"
)

// Default thumbnail bounds.
const (
	DefaultThumbWidth  = 96
	DefaultThumbHeight = 96
)

// Option configures a Stack during creation.
type Option func(*Stack)

// WithThumbnailSize sets the bounding box of layer thumbnails.
func WithThumbnailSize(w, h int) Option {
	return func(s *Stack) {
		if w > 0 && h > 0 {
			s.thumbW, s.thumbH = w, h
		}
	}
}

// Stack is the ordered set of layers of one document, bottom to top.
// A stack always holds at least one layer.
type Stack struct {
	w, h           int
	layers         []*Layer
	groups         []Group
	active         string
	thumbW, thumbH int
	seq            int
}

// New creates a stack of the given canvas size holding one empty layer.
func New(w, h int, opts ...Option) (*Stack, error) {
	if err := surface.CheckSize(w, h); err != nil {
		return nil, err
	}
	s := &Stack{w: w, h: h, thumbW: DefaultThumbWidth, thumbH: DefaultThumbHeight}
	for _, opt := range opts {
		opt(s)
	}
	s.Create("")
	return s, nil
}

// Width returns the canvas width.
func (s *Stack) Width() int { return s.w }

// Height returns the canvas height.
func (s *Stack) Height() int { return s.h }

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns the layers bottom to top. The slice is a copy.
func (s *Stack) Layers() []*Layer {
	return append([]*Layer(nil), s.layers...)
}

// At returns the layer at index i.
func (s *Stack) At(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return s.layers[i], nil
}

// Index returns the position of the layer id, or -1.
func (s *Stack) Index(id string) int {
	for i, l := range s.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}

// Get returns the layer with the given id.
func (s *Stack) Get(id string) (*Layer, error) {
	if i := s.Index(id); i >= 0 {
		return s.layers[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
}

// Active returns the layer that receives strokes.
func (s *Stack) Active() *Layer {
	if l, err := s.Get(s.active); err == nil {
		return l
	}
	return s.layers[len(s.layers)-1]
}

// SetActive selects the layer that receives strokes.
func (s *Stack) SetActive(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.active = id
	return nil
}

// Info returns the metadata of every layer, bottom to top.
func (s *Stack) Info() []Info {
	out := make([]Info, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.info(i, s.groupOf(l.id))
	}
	return out
}

func (s *Stack) newLayer(name string) *Layer {
	s.seq++
	if name == "" {
		name = fmt.Sprintf("Layer %d", s.seq)
	}
	// dimensions were validated by New
	surf, _ := surface.New(s.w, s.h)
	return &Layer{
		props: props{
			id:      uuid.NewString(),
			name:    name,
			opacity: 1,
			mode:    blend.Normal,
			visible: true,
		},
		surf: surf,
	}
}

// Create appends an empty layer at the top and makes it active. An empty
// name gets a numbered default.
func (s *Stack) Create(name string) *Layer {
	l := s.newLayer(name)
	s.layers = append(s.layers, l)
	s.active = l.id
	logging.Logger().Debug("layer: created", "id", l.id, "name", l.name)
	return l
}

// Delete removes a layer. Deleting the only layer replaces it with a
// fresh empty one, so the stack is never empty. The layer below the
// deleted one becomes active when the active layer is removed.
func (s *Stack) Delete(id string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if len(s.layers) == 1 {
		l := s.newLayer("")
		s.layers[0] = l
		s.active = l.id
		s.groups = nil
		logging.Logger().Debug("layer: replaced last layer", "deleted", id, "id", l.id)
		return nil
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	if s.active == id {
		s.active = s.layers[max(0, i-1)].id
	}
	s.normalizeGroups()
	logging.Logger().Debug("layer: deleted", "id", id)
	return nil
}

// Duplicate copies a layer, pixels included, directly above the source
// and makes the copy active. The copy joins the source's group.
func (s *Stack) Duplicate(id string) (*Layer, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	src := s.layers[i]
	dup := &Layer{props: src.props, surf: src.surf.Clone(), thumb: src.thumb}
	dup.id = uuid.NewString()
	dup.name = src.name + " copy"

	s.layers = append(s.layers, nil)
	copy(s.layers[i+2:], s.layers[i+1:])
	s.layers[i+1] = dup
	s.active = dup.id

	for gi := range s.groups {
		g := &s.groups[gi]
		for mi, m := range g.Members {
			if m == id {
				g.Members = append(g.Members[:mi+1], append([]string{dup.id}, g.Members[mi+1:]...)...)
				break
			}
		}
	}
	s.normalizeGroups()
	return dup, nil
}

// Reorder moves the layer at index from to index to.
func (s *Stack) Reorder(from, to int) error {
	n := len(s.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d (len %d)", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	l := s.layers[from]
	if from < to {
		copy(s.layers[from:to], s.layers[from+1:to+1])
	} else {
		copy(s.layers[to+1:from+1], s.layers[to:from])
	}
	s.layers[to] = l
	s.normalizeGroups()
	return nil
}

// SetProperty sets one attribute of a layer. The value must have the
// property's type: float64 for opacity, blend.Mode or its name for the
// blend mode, bool for visible and locked, string for name.
func (s *Stack) SetProperty(id string, p Property, v any) error {
	switch p {
	case PropOpacity:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: opacity %v", ErrInvalidValue, v)
		}
		return s.SetOpacity(id, f)
	case PropBlendMode:
		switch m := v.(type) {
		case blend.Mode:
			return s.SetBlendMode(id, m)
		case string:
			mode, err := blend.Parse(m)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			return s.SetBlendMode(id, mode)
		}
		return fmt.Errorf("%w: blend mode %v", ErrInvalidValue, v)
	case PropVisible, PropLocked:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %v %v", ErrInvalidValue, p, v)
		}
		if p == PropVisible {
			return s.SetVisible(id, b)
		}
		return s.SetLocked(id, b)
	case PropName:
		name, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: name %v", ErrInvalidValue, v)
		}
		return s.Rename(id, name)
	}
	return fmt.Errorf("%w: %v", ErrUnknownProperty, p)
}

// SetOpacity sets a layer's opacity. Values outside [0, 1] are rejected.
func (s *Stack) SetOpacity(id string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: opacity %v", ErrInvalidValue, v)
	}
	return s.update(id, func(l *Layer) { l.opacity = v })
}

// SetBlendMode sets a layer's blend mode.
func (s *Stack) SetBlendMode(id string, m blend.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidValue, blend.ErrUnknownMode)
	}
	if !m.PrintSafe() {
		logging.Logger().Warn("layer: blend mode is not print-safe", "id", id, "mode", m)
	}
	return s.update(id, func(l *Layer) { l.mode = m })
}

// SetVisible shows or hides a layer.
func (s *Stack) SetVisible(id string, v bool) error {
	return s.update(id, func(l *Layer) { l.visible = v })
}

// SetLocked locks or unlocks a layer against pixel edits.
func (s *Stack) SetLocked(id string, v bool) error {
	return s.update(id, func(l *Layer) { l.locked = v })
}

// Rename changes a layer's display name.
func (s *Stack) Rename(id, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidValue)
	}
	return s.update(id, func(l *Layer) { l.name = name })
}

func (s *Stack) update(id string, fn func(*Layer)) error {
	l, err := s.Get(id)
	if err != nil {
		return err
	}
	fn(l)
	return nil
}

func (s *Stack) editable(id string) (*Layer, error) {
	l, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if l.locked {
		return nil, fmt.Errorf("%w: %s", ErrLayerLocked, l.name)
	}
	return l, nil
}

// ApplyOverlay blits a finished live stroke into a layer. This is the
// only path by which strokes reach layer pixels.
func (s *Stack) ApplyOverlay(id string, ov *brush.Overlay) error {
	l, err := s.editable(id)
	if err != nil {
		return err
	}
	if ov.IsEmpty() {
		return nil
	}
	return ov.ApplyTo(l.writable())
}

// Clear makes every pixel of a layer transparent.
func (s *Stack) Clear(id string) error {
	l, err := s.editable(id)
	if err != nil {
		return err
	}
	if l.shared {
		l.surf, _ = surface.New(s.w, s.h)
		l.shared = false
		return nil
	}
	l.surf.Clear()
	return nil
}

// Replace overwrites a layer's pixels with src, which must match the
// canvas size.
func (s *Stack) Replace(id string, src *surface.Surface) error {
	l, err := s.editable(id)
	if err != nil {
		return err
	}
	if src.Bounds() != l.surf.Bounds() {
		return fmt.Errorf("%w: %v vs canvas %dx%d", surface.ErrSizeMismatch, src.Bounds(), s.w, s.h)
	}
	l.surf = src.Clone()
	l.shared = false
	return nil
}

// RefreshThumbnail regenerates one layer's thumbnail. Callers refresh
// after a commit, not per input sample.
func (s *Stack) RefreshThumbnail(id string) error {
	l, err := s.Get(id)
	if err != nil {
		return err
	}
	t, err := l.surf.Thumbnail(s.thumbW, s.thumbH)
	if err != nil {
		return err
	}
	l.thumb = t
	return nil
}

// RefreshThumbnails regenerates every layer's thumbnail.
func (s *Stack) RefreshThumbnails() error {
	for _, l := range s.layers {
		if err := s.RefreshThumbnail(l.id); err != nil {
			return err
		}
	}
	return nil
}

// Thumbnail returns a layer's thumbnail, generating it on first use.
func (s *Stack) Thumbnail(id string) (*surface.Surface, error) {
	l, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if l.thumb == nil {
		if err := s.RefreshThumbnail(id); err != nil {
			return nil, err
		}
	}
	return l.thumb, nil
}

func (s *Stack) entries() []entry {
	out := make([]entry, len(s.layers))
	for i, l := range s.layers {
		out[i] = entry{props: l.props, surf: l.surf}
	}
	return out
}

// Composite renders the visible layers bottom to top. Each layer's
// pixels are scaled by its opacity and blended with its mode onto a
// transparent accumulator.
func (s *Stack) Composite() *surface.Surface {
	return composite(s.w, s.h, s.entries())
}

// CompositeWithLive renders the composite as if ov had been applied to
// the layer id, without touching that layer. It is the preview path while
// a stroke is live.
func (s *Stack) CompositeWithLive(id string, ov *brush.Overlay) (*surface.Surface, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	es := s.entries()
	if ov != nil && !ov.IsEmpty() && !es[i].locked {
		live := es[i].surf.Clone()
		if err := ov.ApplyTo(live); err != nil {
			return nil, err
		}
		es[i].surf = live
	}
	return composite(s.w, s.h, es), nil
}
