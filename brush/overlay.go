package brush

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/surface"
)

// Overlay is the scratch surface of a live stroke. It stores coverage
// per pixel rather than color, so overlapping stamps within one stroke
// never exceed the stroke's opacity, and the paint (color, blend mode,
// eraser) is applied once when the overlay is blitted.
type Overlay struct {
	w, h   int
	cov    []float32
	dirty  image.Rectangle
	color  color.NRGBA
	mode   blend.Mode
	eraser bool
}

// NewOverlay allocates a cleared overlay of the given size.
func NewOverlay(w, h int) (*Overlay, error) {
	if err := surface.CheckSize(w, h); err != nil {
		return nil, fmt.Errorf("brush: overlay: %w", err)
	}
	return &Overlay{w: w, h: h, cov: make([]float32, w*h), color: color.NRGBA{A: 255}}, nil
}

// Begin clears the overlay and takes the paint of s for the next stroke.
func (o *Overlay) Begin(s Settings) {
	o.Clear()
	o.color = s.Color
	o.mode = s.BlendMode
	o.eraser = s.IsEraser
}

// Bounds returns the overlay size.
func (o *Overlay) Bounds() image.Rectangle { return image.Rect(0, 0, o.w, o.h) }

// Dirty returns the rectangle touched since the last Clear.
func (o *Overlay) Dirty() image.Rectangle { return o.dirty }

// IsEmpty reports whether no stamp has touched the overlay.
func (o *Overlay) IsEmpty() bool { return o.dirty.Empty() }

// Eraser reports whether the overlay removes paint when applied.
func (o *Overlay) Eraser() bool { return o.eraser }

// Coverage returns the accumulated coverage at (x, y) in [0, 1].
func (o *Overlay) Coverage(x, y int) float64 {
	if x < 0 || y < 0 || x >= o.w || y >= o.h {
		return 0
	}
	return float64(o.cov[y*o.w+x])
}

// Clear resets coverage to zero.
func (o *Overlay) Clear() {
	if o.dirty.Empty() {
		return
	}
	for y := o.dirty.Min.Y; y < o.dirty.Max.Y; y++ {
		clear(o.cov[y*o.w+o.dirty.Min.X : y*o.w+o.dirty.Max.X])
	}
	o.dirty = image.Rectangle{}
}

// Stamp accumulates one dab. Coverage rises toward the stamp's opacity by
// flow times the radial falloff, and never passes it.
func (o *Overlay) Stamp(st Stamp) {
	r := st.Size / 2
	box := image.Rect(
		int(math.Floor(st.Pos.X-r-1)), int(math.Floor(st.Pos.Y-r-1)),
		int(math.Ceil(st.Pos.X+r+1)), int(math.Ceil(st.Pos.Y+r+1)),
	).Intersect(o.Bounds())
	if box.Empty() || st.Opacity <= 0 || st.Flow <= 0 {
		return
	}
	capv := float32(st.Opacity)
	inner := r * clamp01(st.Hardness)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := float64(y) + 0.5 - st.Pos.Y
		row := o.cov[y*o.w : (y+1)*o.w]
		for x := box.Min.X; x < box.Max.X; x++ {
			dx := float64(x) + 0.5 - st.Pos.X
			f := falloff(math.Hypot(dx, dy), r, inner)
			if f <= 0 {
				continue
			}
			if c := row[x]; capv > c {
				row[x] = c + (capv-c)*float32(st.Flow*f)
			}
		}
	}
	o.dirty = o.dirty.Union(box)
}

// falloff is the dab profile at distance d: 1 inside the hard core, a
// smoothstep ramp out to the radius, times a one pixel antialiased edge.
func falloff(d, r, inner float64) float64 {
	edge := clamp01(r + 0.5 - d)
	if edge == 0 {
		return 0
	}
	if d <= inner || r <= inner {
		return edge
	}
	t := (d - inner) / (r - inner)
	if t >= 1 {
		return 0
	}
	return edge * (1 - t*t*(3-2*t))
}

// ApplyTo blits the overlay onto dst: a color dab composited with the
// stroke's blend mode, or destination-out for erasers.
func (o *Overlay) ApplyTo(dst *surface.Surface) error {
	if dst.Bounds() != o.Bounds() {
		return fmt.Errorf("%w: overlay %v, target %v", surface.ErrSizeMismatch, o.Bounds(), dst.Bounds())
	}
	if o.dirty.Empty() {
		return nil
	}
	img := dst.Image()
	fn := o.mode.Func()
	ca := float32(o.color.A)
	for y := o.dirty.Min.Y; y < o.dirty.Max.Y; y++ {
		for x := o.dirty.Min.X; x < o.dirty.Max.X; x++ {
			c := o.cov[y*o.w+x]
			if c <= 0 {
				continue
			}
			a := uint8(c*ca + 0.5)
			if a == 0 {
				continue
			}
			i := y*img.Stride + x*4
			p := img.Pix[i : i+4 : i+4]
			if o.eraser {
				p[0], p[1], p[2], p[3] = blend.DestinationOut(a, p[0], p[1], p[2], p[3])
				continue
			}
			p[0], p[1], p[2], p[3] = fn(
				blend.Mul255(o.color.R, a), blend.Mul255(o.color.G, a), blend.Mul255(o.color.B, a), a,
				p[0], p[1], p[2], p[3])
		}
	}
	return nil
}
