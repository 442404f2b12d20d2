// Package dpi converts between physical print units and pixels.
//
// All conversion functions are pure. They are total for positive finite
// inputs; negative or non-finite values are a caller error and can be
// screened with CheckLength before converting.
package dpi

import (
	"errors"
	"fmt"
	"math"
)

// MillimetersPerInch is the fixed ratio used by the metric conversions.
const MillimetersPerInch = 25.4

// Supported resolution range for print output, inclusive.
const (
	MinDPI = 72
	MaxDPI = 600
)

var (
	// ErrDPIOutOfRange is returned when a resolution falls outside [MinDPI, MaxDPI].
	ErrDPIOutOfRange = errors.New("dpi: resolution out of range")

	// ErrInvalidLength is returned for negative or non-finite physical lengths.
	ErrInvalidLength = errors.New("dpi: invalid length")
)

// Dims is a pixel size.
type Dims struct {
	W int `json:"wPx"`
	H int `json:"hPx"`
}

// Inflate grows both dimensions by px on every side.
func (d Dims) Inflate(px int) Dims {
	return Dims{W: d.W + 2*px, H: d.H + 2*px}
}

// Pixels returns the total pixel count.
func (d Dims) Pixels() int64 {
	return int64(d.W) * int64(d.H)
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%d", d.W, d.H)
}

// InToPx converts inches to whole pixels at the given resolution.
func InToPx(inches, dpi float64) int {
	return int(math.Round(inches * dpi))
}

// PxToIn converts pixels back to inches at the given resolution.
func PxToIn(px int, dpi float64) float64 {
	return float64(px) / dpi
}

// MmToPx converts millimeters to whole pixels at the given resolution.
func MmToPx(mm, dpi float64) int {
	return InToPx(mm/MillimetersPerInch, dpi)
}

// PxToMm converts pixels to millimeters at the given resolution.
func PxToMm(px int, dpi float64) float64 {
	return PxToIn(px, dpi) * MillimetersPerInch
}

// MakePixelDims returns the pixel size of a physical area.
func MakePixelDims(widthIn, heightIn, dpi float64) Dims {
	return Dims{W: InToPx(widthIn, dpi), H: InToPx(heightIn, dpi)}
}

// BleedPx returns the bleed margin in pixels.
func BleedPx(bleedIn, dpi float64) int {
	return InToPx(bleedIn, dpi)
}

// ValidateDPI rejects resolutions outside the supported print range.
// Out-of-range values are a configuration error and are never clamped.
func ValidateDPI(dpi float64) error {
	if math.IsNaN(dpi) || dpi < MinDPI || dpi > MaxDPI {
		return fmt.Errorf("%w: %v not in [%d, %d]", ErrDPIOutOfRange, dpi, MinDPI, MaxDPI)
	}
	return nil
}

// CheckLength reports whether v is usable as a physical length.
func CheckLength(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidLength, v)
	}
	return nil
}
