// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Quality selects the resampling kernel used by Scale.
type Quality uint8

const (
	// QualityNearest is nearest-neighbor sampling.
	QualityNearest Quality = iota
	// QualityBilinear is fast approximate bilinear sampling, used for previews.
	QualityBilinear
	// QualityCatmullRom is bicubic Catmull-Rom sampling, used for export.
	QualityCatmullRom
)

func (q Quality) scaler() xdraw.Scaler {
	switch q {
	case QualityNearest:
		return xdraw.NearestNeighbor
	case QualityBilinear:
		return xdraw.ApproxBiLinear
	default:
		return xdraw.CatmullRom
	}
}

// Scale returns a resampled copy of s at w x h. When the size is unchanged
// the pixels are copied exactly.
func (s *Surface) Scale(w, h int, q Quality) (*Surface, error) {
	out, err := New(w, h)
	if err != nil {
		return nil, err
	}
	s.ScaleInto(out, out.Bounds(), q)
	return out, nil
}

// ScaleInto draws s resampled into the rectangle r of dst, compositing
// over what dst already holds.
func (s *Surface) ScaleInto(dst *Surface, r image.Rectangle, q Quality) {
	if r.Dx() == s.Width() && r.Dy() == s.Height() {
		xdraw.Draw(dst.img, r, s.img, image.Point{}, xdraw.Over)
		return
	}
	q.scaler().Scale(dst.img, r, s.img, s.img.Rect, xdraw.Over, nil)
}

// Thumbnail returns a copy of s that fits within maxW x maxH while
// preserving aspect ratio. Each side is at least one pixel.
func (s *Surface) Thumbnail(maxW, maxH int) (*Surface, error) {
	w, h := FitSize(s.Width(), s.Height(), maxW, maxH)
	return s.Scale(w, h, QualityBilinear)
}

// FitSize scales (w, h) to fit within (maxW, maxH), keeping aspect ratio.
// Sizes already inside the bounds are returned unchanged.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	fw := float64(maxW) / float64(w)
	fh := float64(maxH) / float64(h)
	f := min(fw, fh)
	return max(1, int(float64(w)*f+0.5)), max(1, int(float64(h)*f+0.5))
}

// ExtendEdges returns a copy of s padded by pad pixels on every side.
// Padding pixels repeat the nearest edge pixel, which is how print bleed
// is filled.
func (s *Surface) ExtendEdges(pad int) (*Surface, error) {
	if pad <= 0 {
		return s.Clone(), nil
	}
	w, h := s.Width(), s.Height()
	out, err := New(w+2*pad, h+2*pad)
	if err != nil {
		return nil, err
	}
	src, dst := s.img, out.img
	for y := 0; y < dst.Rect.Dy(); y++ {
		sy := min(max(y-pad, 0), h-1)
		srow := src.Pix[sy*src.Stride : sy*src.Stride+w*4]
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+dst.Rect.Dx()*4]
		for x := 0; x < pad; x++ {
			copy(drow[x*4:x*4+4], srow[:4])
		}
		copy(drow[pad*4:], srow)
		last := srow[(w-1)*4:]
		for x := pad + w; x < w+2*pad; x++ {
			copy(drow[x*4:x*4+4], last)
		}
	}
	return out, nil
}
