// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder colors.
var (
	PlaceholderBackground = color.RGBA{0xf2, 0xf2, 0xf2, 0xff}
	PlaceholderHatch      = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	PlaceholderMark       = color.RGBA{0xd0, 0x10, 0x2e, 0xff}
)

const hatchSpacing = 16

// Placeholder returns a visibly marked stand-in image: a hatched grey
// field, a red frame and diagonal cross, and the label drawn in the
// center. It is used when the real raster cannot be produced.
//
// Dimensions beyond the pixel budget are reduced to fit it while keeping
// the aspect ratio, so Placeholder only fails for non-positive sizes.
func Placeholder(w, h int, label string) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, CheckSize(w, h)
	}
	for int64(w)*int64(h) > MaxPixels {
		w, h = max(1, w/2), max(1, h/2)
	}
	s, err := New(w, h)
	if err != nil {
		return nil, err
	}
	img := s.img
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := PlaceholderBackground
			if (x+y)%hatchSpacing == 0 {
				c = PlaceholderHatch
			}
			img.SetRGBA(x, y, c)
		}
	}

	border := max(2, min(w, h)/100)
	interior := image.Rect(border, border, w-border, h-border)
	if label != "" {
		drawLabel(img, interior, label)
	}

	// The frame and diagonals go on top so the label never hides them.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !image.Pt(x, y).In(interior) {
				img.SetRGBA(x, y, PlaceholderMark)
			}
		}
	}
	// diagonals, one pixel thick per step of the longer side
	n := max(w, h)
	for i := 0; i < n; i++ {
		x := i * (w - 1) / max(1, n-1)
		y := i * (h - 1) / max(1, n-1)
		img.SetRGBA(x, y, PlaceholderMark)
		img.SetRGBA(w-1-x, y, PlaceholderMark)
	}
	return s, nil
}

// drawLabel centers label on a white plate inside r. Labels that do not
// fit are left out.
func drawLabel(img *image.RGBA, r image.Rectangle, label string) {
	const pad = 4
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(PlaceholderMark), Face: face}
	tw := d.MeasureString(label).Ceil()
	th := face.Ascent + face.Descent
	if tw+2*pad > r.Dx() || th+2*pad > r.Dy() {
		return
	}
	x := r.Min.X + (r.Dx()-tw)/2
	y := r.Min.Y + (r.Dy()-th)/2 + face.Ascent
	bg := image.Rect(x-pad, y-face.Ascent-pad, x+tw+pad, y+face.Descent+pad).Intersect(r)
	for py := bg.Min.Y; py < bg.Max.Y; py++ {
		for px := bg.Min.X; px < bg.Max.X; px++ {
			img.SetRGBA(px, py, color.RGBA{0xff, 0xff, 0xff, 0xff})
		}
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(label)
}
