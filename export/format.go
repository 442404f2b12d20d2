package export

import (
	"fmt"
	"strings"

	"github.com/gogpu/stitch/surface"
)

// Format is an export file format.
type Format uint8

const (
	PNG Format = iota
	JPEG
	TIFF
	BMP
	PDF
	numFormats
)

var formatNames = [...]string{PNG: "png", JPEG: "jpeg", TIFF: "tiff", BMP: "bmp", PDF: "pdf"}

var formatExts = [...]string{PNG: ".png", JPEG: ".jpg", TIFF: ".tif", BMP: ".bmp", PDF: ".pdf"}

// Valid reports whether f is a known format.
func (f Format) Valid() bool { return f < numFormats }

func (f Format) String() string {
	if f.Valid() {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	if f.Valid() {
		return formatExts[f]
	}
	return ""
}

// SupportsAlpha reports whether transparency survives encoding.
func (f Format) SupportsAlpha() bool {
	return f.Valid() && f != JPEG
}

// raster maps f onto the surface codec. PDF embeds a PNG.
func (f Format) raster() surface.Format {
	switch f {
	case JPEG:
		return surface.JPEG
	case TIFF:
		return surface.TIFF
	case BMP:
		return surface.BMP
	default:
		return surface.PNG
	}
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	if strings.EqualFold(strings.TrimPrefix(s, "."), "pdf") {
		return PDF, nil
	}
	sf, err := surface.ParseFormat(s)
	if err != nil {
		return PNG, err
	}
	switch sf {
	case surface.JPEG:
		return JPEG, nil
	case surface.TIFF:
		return TIFF, nil
	case surface.BMP:
		return BMP, nil
	}
	return PNG, nil
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", surface.ErrUnsupportedFormat, f)
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
