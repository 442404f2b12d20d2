// Package printcolor provides sRGB helpers and print color-safety checks.
//
// The gamut test here is a heuristic proxy for colors print processes
// commonly clip. It is not an ICC gamut test.
package printcolor

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedHex is returned when a string is not a 6-digit hex color.
var ErrMalformedHex = errors.New("printcolor: malformed hex color")

// RGB is an 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// HexToRGB parses "#rrggbb" or "rrggbb", case-insensitively.
func HexToRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrMalformedHex, s)
	}
	var v [3]uint8
	for i := range v {
		hi, ok1 := hexNibble(h[2*i])
		lo, ok2 := hexNibble(h[2*i+1])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("%w: %q", ErrMalformedHex, s)
		}
		v[i] = hi<<4 | lo
	}
	return RGB{R: v[0], G: v[1], B: v[2]}, nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// RGBToHex formats c as lowercase "#rrggbb".
func RGBToHex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Hex is shorthand for RGBToHex(c).
func (c RGB) Hex() string { return RGBToHex(c) }

// Clamp converts floating point channels in [0, 255] to RGB, clamping
// out-of-range values and rounding to the nearest integer.
func Clamp(r, g, b float64) RGB {
	return RGB{R: clamp8(r), G: clamp8(g), B: clamp8(b)}
}

func clamp8(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

func maxMin(c RGB) (hi, lo uint8) {
	hi, lo = c.R, c.R
	for _, v := range [2]uint8{c.G, c.B} {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return hi, lo
}

// Saturation returns the HSV saturation of c in [0, 1].
func Saturation(c RGB) float64 {
	hi, lo := maxMin(c)
	if hi == 0 {
		return 0
	}
	return float64(hi-lo) / float64(hi)
}

// IsOutOfGamut flags colors that are highly saturated and either very
// bright or very dark.
func IsOutOfGamut(c RGB) bool {
	sat := Saturation(c)
	hi, _ := maxMin(c)
	if sat > 0.9 && hi > 200 {
		return true
	}
	return sat > 0.8 && hi < 50
}
