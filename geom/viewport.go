package geom

import "math"

// Default zoom limits used when a Viewport is created with NewViewport.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 32
)

// Delta is a continuous view transform measured against the frame at
// which its gesture began. Scale 1 and zero Pan and Rotation is the
// identity.
type Delta struct {
	Scale    float64
	Origin   Vec2 // screen-space pivot for Scale and Rotation
	Pan      Vec2
	Rotation float64
}

// IsIdentity reports whether d leaves the view unchanged.
func (d Delta) IsIdentity() bool {
	return d.Scale == 1 && d.Pan == (Vec2{}) && d.Rotation == 0
}

type viewState struct {
	zoom     float64
	offset   Vec2
	rotation float64
}

// Viewport maps canvas pixels to screen pixels:
//
//	screen = Translate(offset) * Rotate(rotation) * Scale(zoom) * canvas
//
// Gesture consumers call Begin when a transform starts, Apply with each
// update relative to that start, and End or Cancel when it finishes.
type Viewport struct {
	viewState
	minZoom, maxZoom float64
	start            *viewState
}

// NewViewport returns an identity viewport with default zoom limits.
func NewViewport() *Viewport {
	return &Viewport{
		viewState: viewState{zoom: 1},
		minZoom:   DefaultMinZoom,
		maxZoom:   DefaultMaxZoom,
	}
}

// Zoom returns the current scale factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Offset returns the screen position of the canvas origin.
func (v *Viewport) Offset() Vec2 { return v.offset }

// Rotation returns the view rotation in radians.
func (v *Viewport) Rotation() float64 { return v.rotation }

// SetZoomLimits changes the zoom clamp range and re-clamps the current zoom
// around the screen origin.
func (v *Viewport) SetZoomLimits(lo, hi float64) {
	if lo <= 0 || hi < lo {
		return
	}
	v.minZoom, v.maxZoom = lo, hi
	v.ApplyPinch(1, Vec2{})
}

// Reset restores the identity view.
func (v *Viewport) Reset() {
	v.viewState = viewState{zoom: 1}
	v.start = nil
}

// Fit centers a canvas of size (cw, ch) in a screen of size (sw, sh),
// scaled to fit entirely, with no rotation.
func (v *Viewport) Fit(cw, ch, sw, sh float64) {
	if cw <= 0 || ch <= 0 || sw <= 0 || sh <= 0 {
		return
	}
	z := v.clamp(math.Min(sw/cw, sh/ch))
	v.viewState = viewState{
		zoom:   z,
		offset: Vec2{(sw - cw*z) / 2, (sh - ch*z) / 2},
	}
}

// Matrix returns the canvas-to-screen transform.
func (v *Viewport) Matrix() Matrix {
	return Translate(v.offset.X, v.offset.Y).
		Mul(Rotate(v.rotation)).
		Mul(Scale(v.zoom, v.zoom))
}

// CanvasToScreen maps a canvas point to screen space.
func (v *Viewport) CanvasToScreen(p Vec2) Vec2 {
	return v.Matrix().Apply(p)
}

// ScreenToCanvas maps a screen point to canvas space.
func (v *Viewport) ScreenToCanvas(p Vec2) Vec2 {
	inv, _ := v.Matrix().Invert()
	return inv.Apply(p)
}

func (v *Viewport) clamp(z float64) float64 {
	return math.Max(v.minZoom, math.Min(v.maxZoom, z))
}

// ApplyPinch multiplies the zoom by scale while keeping the screen point
// origin fixed. The resulting zoom is clamped to the viewport limits.
func (v *Viewport) ApplyPinch(scale float64, origin Vec2) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return
	}
	nz := v.clamp(v.zoom * scale)
	k := nz / v.zoom
	v.offset = origin.Sub(origin.Sub(v.offset).Mul(k))
	v.zoom = nz
}

// ApplyRotation rotates the view by angle radians around the screen point origin.
func (v *Viewport) ApplyRotation(angle float64, origin Vec2) {
	v.offset = origin.Add(v.offset.Sub(origin).Rotate(angle))
	v.rotation = NormalizeAngle(v.rotation + angle)
}

// ApplyPan moves the view by a screen-space displacement.
func (v *Viewport) ApplyPan(d Vec2) {
	v.offset = v.offset.Add(d)
}

// Begin records the current view as the start frame for Apply.
func (v *Viewport) Begin() {
	s := v.viewState
	v.start = &s
}

// Apply sets the view to the start frame transformed by d. Apply without
// a preceding Begin starts a new frame implicitly.
func (v *Viewport) Apply(d Delta) {
	if v.start == nil {
		v.Begin()
	}
	v.viewState = *v.start
	scale := d.Scale
	if scale == 0 {
		scale = 1
	}
	v.ApplyPinch(scale, d.Origin)
	v.ApplyRotation(d.Rotation, d.Origin)
	v.ApplyPan(d.Pan)
}

// End keeps the current view and drops the start frame.
func (v *Viewport) End() {
	v.start = nil
}

// Cancel restores the start frame recorded by Begin.
func (v *Viewport) Cancel() {
	if v.start != nil {
		v.viewState = *v.start
		v.start = nil
	}
}

// Active reports whether a transform started by Begin is in progress.
func (v *Viewport) Active() bool {
	return v.start != nil
}
