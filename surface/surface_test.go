// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/stitch/blend"
)

func mustNew(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := New(w, h)
	if err != nil {
		t.Fatalf("New(%d, %d) error: %v", w, h, err)
	}
	return s
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want error
	}{
		{"zero width", 0, 10, ErrInvalidDimensions},
		{"negative height", 10, -1, ErrInvalidDimensions},
		{"too large", 1 << 16, 1 << 16, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.w, tt.h); !errors.Is(err, tt.want) {
				t.Errorf("New(%d, %d) error = %v, want %v", tt.w, tt.h, err, tt.want)
			}
		})
	}
}

func TestFillCloneEqual(t *testing.T) {
	s := mustNew(t, 7, 5)
	if !s.IsEmpty() {
		t.Fatal("new surface not empty")
	}
	s.Fill(color.RGBA{10, 20, 30, 255})
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			if got := s.At(x, y); got != (color.RGBA{10, 20, 30, 255}) {
				t.Fatalf("At(%d, %d) = %v after Fill", x, y, got)
			}
		}
	}
	c := s.Clone()
	if !c.Equal(s) {
		t.Fatal("Clone() not equal to source")
	}
	c.Set(0, 0, color.RGBA{})
	if c.Equal(s) {
		t.Error("mutating clone changed source")
	}
	s.Clear()
	if !s.IsEmpty() {
		t.Error("Clear() left pixels")
	}
}

func TestComposite(t *testing.T) {
	dst := mustNew(t, 2, 1)
	dst.Fill(color.White)
	src := mustNew(t, 2, 1)
	src.Set(0, 0, color.RGBA{255, 0, 0, 255})

	if err := dst.Composite(src, 1, blend.Normal); err != nil {
		t.Fatal(err)
	}
	if got := dst.At(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("At(0,0) = %v, want red", got)
	}
	if got := dst.At(1, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("At(1,0) = %v, want untouched white", got)
	}

	half := mustNew(t, 2, 1)
	half.Fill(color.White)
	if err := half.Composite(src, 0.5, blend.Multiply); err != nil {
		t.Fatal(err)
	}
	if got := half.At(0, 0); got != (color.RGBA{255, 127, 127, 255}) {
		t.Errorf("half multiply = %v, want {255 127 127 255}", got)
	}

	before := dst.Clone()
	if err := dst.Composite(src, 0, blend.Normal); err != nil || !dst.Equal(before) {
		t.Errorf("zero opacity changed the surface (err %v)", err)
	}
	if err := dst.Composite(mustNew(t, 3, 1), 1, blend.Normal); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Composite() size mismatch error = %v", err)
	}
}

func TestScale(t *testing.T) {
	s := mustNew(t, 4, 4)
	s.Fill(color.RGBA{0, 0, 255, 255})
	same, err := s.Scale(4, 4, QualityCatmullRom)
	if err != nil || !same.Equal(s) {
		t.Fatalf("Scale() to same size not exact (err %v)", err)
	}
	big, err := s.Scale(8, 12, QualityCatmullRom)
	if err != nil {
		t.Fatal(err)
	}
	if big.Width() != 8 || big.Height() != 12 {
		t.Fatalf("Scale() size = %dx%d", big.Width(), big.Height())
	}
	if got := big.At(4, 6); got.A != 255 || got.B < 250 {
		t.Errorf("scaled center = %v, want opaque blue", got)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, mw, mh int
		ww, wh       int
	}{
		{100, 50, 200, 200, 100, 50},
		{1200, 1800, 128, 128, 85, 128},
		{1800, 1200, 128, 128, 128, 85},
		{10000, 1, 100, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := FitSize(tt.w, tt.h, tt.mw, tt.mh)
		if w != tt.ww || h != tt.wh {
			t.Errorf("FitSize(%d, %d, %d, %d) = %d, %d, want %d, %d",
				tt.w, tt.h, tt.mw, tt.mh, w, h, tt.ww, tt.wh)
		}
	}
}

func TestExtendEdges(t *testing.T) {
	s := mustNew(t, 2, 2)
	s.Set(0, 0, color.RGBA{255, 0, 0, 255})
	s.Set(1, 0, color.RGBA{0, 255, 0, 255})
	s.Set(0, 1, color.RGBA{0, 0, 255, 255})
	s.Set(1, 1, color.RGBA{255, 255, 255, 255})

	out, err := s.ExtendEdges(3)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 8 || out.Height() != 8 {
		t.Fatalf("ExtendEdges(3) size = %dx%d, want 8x8", out.Width(), out.Height())
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{7, 0, color.RGBA{0, 255, 0, 255}},
		{0, 7, color.RGBA{0, 0, 255, 255}},
		{7, 7, color.RGBA{255, 255, 255, 255}},
		{3, 3, color.RGBA{255, 0, 0, 255}},
		{4, 0, color.RGBA{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		if got := out.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	s := mustNew(t, 3, 2)
	s.Fill(color.RGBA{0, 128, 0, 128})
	for _, f := range []Format{PNG, TIFF, BMP, JPEG} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := s.Encode(&buf, f, 0); err != nil {
				t.Fatal(err)
			}
			got, err := Decode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if got.Bounds() != s.Bounds() {
				t.Fatalf("decoded bounds = %v", got.Bounds())
			}
			if f == PNG && !got.Equal(s) {
				t.Errorf("PNG round trip changed pixels: %v", got.At(0, 0))
			}
			if f == JPEG && got.At(1, 1).A != 255 {
				t.Errorf("JPEG pixel alpha = %d, want 255", got.At(1, 1).A)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"PNG": PNG, ".jpg": JPEG, "tif": TIFF, "bmp": BMP} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(gif) error = %v", err)
	}
}

func TestPlaceholder(t *testing.T) {
	p, err := Placeholder(200, 100, "EXPORT FAILED")
	if err != nil {
		t.Fatal(err)
	}
	if p.At(0, 0) != PlaceholderMark {
		t.Errorf("corner = %v, want mark color", p.At(0, 0))
	}
	var marked, opaque int
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := p.At(x, y)
			if c.A == 255 {
				opaque++
			}
			if c == PlaceholderMark {
				marked++
			}
		}
	}
	if opaque != 200*100 {
		t.Errorf("placeholder has %d transparent pixels", 200*100-opaque)
	}
	if marked < 600 {
		t.Errorf("only %d marked pixels", marked)
	}

	if _, err := Placeholder(0, 10, "x"); err == nil {
		t.Error("Placeholder(0, 10) succeeded")
	}
}

func TestPlaceholderFrameSurvivesLabel(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		label string
	}{
		{"label wider than canvas", 40, 20, "TEMPLATE IMAGE UNAVAILABLE"},
		{"label fits", 300, 120, "EXPORT FAILED"},
		{"tiny", 5, 5, "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Placeholder(tt.w, tt.h, tt.label)
			if err != nil {
				t.Fatal(err)
			}
			for x := 0; x < tt.w; x++ {
				if p.At(x, 0) != PlaceholderMark || p.At(x, tt.h-1) != PlaceholderMark {
					t.Fatalf("frame broken at column %d", x)
				}
			}
			for y := 0; y < tt.h; y++ {
				if p.At(0, y) != PlaceholderMark || p.At(tt.w-1, y) != PlaceholderMark {
					t.Fatalf("frame broken at row %d", y)
				}
			}
		})
	}

	p, err := Placeholder(300, 120, "EXPORT FAILED")
	if err != nil {
		t.Fatal(err)
	}
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	if c := p.At(150, 55); c != white && c != PlaceholderMark {
		t.Errorf("label plate pixel = %v, want the white plate or text", c)
	}
}
