// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // template images may be WebP
)

// ErrUnsupportedFormat is returned for unknown codec names.
var ErrUnsupportedFormat = errors.New("surface: unsupported format")

// Format is a raster file format.
type Format uint8

const (
	PNG Format = iota
	JPEG
	TIFF
	BMP
)

var formatNames = [...]string{PNG: "png", JPEG: "jpeg", TIFF: "tiff", BMP: "bmp"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// SupportsAlpha reports whether the format preserves transparency.
func (f Format) SupportsAlpha() bool {
	return f != JPEG
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return PNG, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Encode writes img in the given format. quality applies to JPEG only and
// defaults to 90 when out of range. Formats without alpha are flattened
// onto white.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		if quality < 1 || quality > 100 {
			quality = 90
		}
		err = jpeg.Encode(w, flatten(img, color.White), &jpeg.Options{Quality: quality})
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("surface: encode %v: %w", f, err)
	}
	return nil
}

// Encode writes s in the given format.
func (s *Surface) Encode(w io.Writer, f Format, quality int) error {
	return Encode(w, s.img, f, quality)
}

// Decode reads a PNG, JPEG, TIFF, BMP or WebP image into a new surface.
func Decode(r io.Reader) (*Surface, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("surface: decode: %w", err)
	}
	return FromImage(img)
}

func flatten(img image.Image, bg color.Color) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, image.NewUniform(bg), image.Point{}, xdraw.Src)
	xdraw.Draw(out, b, img, b.Min, xdraw.Over)
	return out
}
