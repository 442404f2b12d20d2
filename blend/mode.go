// Package blend defines the closed set of layer blend modes and their
// per-pixel compositing functions.
//
// All functions operate on premultiplied 8-bit RGBA, the layout of
// image.RGBA. Separable modes follow the W3C Compositing and Blending
// Level 1 formula
//
//	result = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Cs, Cb)
//
// where B is evaluated on unpremultiplied channel values.
package blend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when parsing an unrecognized mode name.
var ErrUnknownMode = errors.New("blend: unknown mode")

// Mode is a layer blend mode. The zero value is Normal.
type Mode uint8

const (
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	SoftLight
	HardLight
	ColorDodge
	ColorBurn
	Darken
	Lighten
	Difference
	Exclusion

	numModes
)

var modeNames = [numModes]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	SoftLight:  "soft-light",
	HardLight:  "hard-light",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	Darken:     "darken",
	Lighten:    "lighten",
	Difference: "difference",
	Exclusion:  "exclusion",
}

// Modes returns every supported mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, numModes)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m < numModes
}

// String returns the CSS-style name of the mode, e.g. "soft-light".
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// PrintSafe reports whether common print processes reproduce the mode.
// Only normal, multiply and screen are considered safe.
func (m Mode) PrintSafe() bool {
	switch m {
	case Normal, Multiply, Screen:
		return true
	default:
		return false
	}
}

// Parse returns the mode with the given name. Matching ignores case and
// accepts underscores or no separator in place of hyphens.
func Parse(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	for i, n := range modeNames {
		if key == n || key == strings.ReplaceAll(n, "-", "") {
			return Mode(i), nil
		}
	}
	return Normal, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
