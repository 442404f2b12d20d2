// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/stitch/blend"
)

// MaxPixels bounds the area of a single surface. Larger requests fail
// with ErrTooLarge instead of attempting the allocation.
const MaxPixels = 1 << 27

var (
	// ErrInvalidDimensions is returned for non-positive width or height.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrTooLarge is returned when width*height exceeds MaxPixels.
	ErrTooLarge = errors.New("surface: dimensions exceed pixel budget")

	// ErrSizeMismatch is returned when two surfaces must share dimensions.
	ErrSizeMismatch = errors.New("surface: size mismatch")
)

// Surface is a premultiplied RGBA raster.
//
// Surface is not safe for concurrent mutation.
type Surface struct {
	img *image.RGBA
}

// CheckSize validates dimensions without allocating.
func CheckSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return nil
}

// New allocates a transparent surface.
func New(w, h int) (*Surface, error) {
	if err := CheckSize(w, h); err != nil {
		return nil, err
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// FromImage copies img into a new surface whose origin is (0, 0).
func FromImage(img image.Image) (*Surface, error) {
	b := img.Bounds()
	s, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	xdraw.Draw(s.img, s.img.Bounds(), img, b.Min, xdraw.Src)
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the pixel rectangle, always anchored at (0, 0).
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Image exposes the backing image. Writes through it mutate the surface.
func (s *Surface) Image() *image.RGBA { return s.img }

// At returns the premultiplied pixel at (x, y), or transparent outside bounds.
func (s *Surface) At(x, y int) color.RGBA {
	return s.img.RGBAAt(x, y)
}

// Set stores a premultiplied pixel.
func (s *Surface) Set(x, y int, c color.RGBA) {
	s.img.SetRGBA(x, y, c)
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	img := &image.RGBA{
		Pix:    make([]uint8, len(s.img.Pix)),
		Stride: s.img.Stride,
		Rect:   s.img.Rect,
	}
	copy(img.Pix, s.img.Pix)
	return &Surface{img: img}
}

// CopyFrom overwrites s with the pixels of src.
func (s *Surface) CopyFrom(src *Surface) error {
	if s.Bounds() != src.Bounds() {
		return fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, s.Bounds(), src.Bounds())
	}
	copy(s.img.Pix, src.img.Pix)
	return nil
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c color.Color) {
	p := color.RGBAModel.Convert(c).(color.RGBA)
	pix := s.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = p.R, p.G, p.B, p.A
	for n := 4; n < len(pix); n *= 2 {
		copy(pix[n:], pix[:n])
	}
}

// Equal reports whether both surfaces have identical size and pixels.
func (s *Surface) Equal(o *Surface) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || s.Bounds() != o.Bounds() {
		return false
	}
	return bytes.Equal(s.img.Pix, o.img.Pix)
}

// IsEmpty reports whether every pixel is fully transparent.
func (s *Surface) IsEmpty() bool {
	for i := 3; i < len(s.img.Pix); i += 4 {
		if s.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Composite blends src*opacity onto s with the given mode. Surfaces must
// share dimensions; src is read-only.
func (s *Surface) Composite(src *Surface, opacity float64, mode blend.Mode) error {
	if s.Bounds() != src.Bounds() {
		return fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, s.Bounds(), src.Bounds())
	}
	op := opacityByte(opacity)
	if op == 0 {
		return nil
	}
	fn := mode.Func()
	sp, dp := src.img.Pix, s.img.Pix
	for i := 0; i+3 < len(dp); i += 4 {
		sr, sg, sb, sa := sp[i], sp[i+1], sp[i+2], sp[i+3]
		if sa == 0 {
			continue
		}
		if op != 255 {
			sr, sg, sb, sa = blend.Mul255(sr, op), blend.Mul255(sg, op), blend.Mul255(sb, op), blend.Mul255(sa, op)
		}
		dp[i], dp[i+1], dp[i+2], dp[i+3] = fn(sr, sg, sb, sa, dp[i], dp[i+1], dp[i+2], dp[i+3])
	}
	return nil
}

func opacityByte(o float64) uint8 {
	switch {
	case !(o > 0):
		return 0
	case o >= 1:
		return 255
	}
	return uint8(o*255 + 0.5)
}
