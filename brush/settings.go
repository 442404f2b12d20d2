package brush

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gogpu/stitch/blend"
)

// MinStampSize is the smallest stamp diameter in pixels. Pressure can
// never shrink a stamp below it.
const MinStampSize = 0.5

// PressureCurve shapes raw pen pressure before it modulates size and opacity.
// Every curve maps [0, 1] onto [0, 1] monotonically.
type PressureCurve uint8

const (
	// CurveLinear passes pressure through.
	CurveLinear PressureCurve = iota
	// CurveSoft (square root) reaches full effect with a light touch.
	CurveSoft
	// CurveFirm (square) needs more force for the same effect.
	CurveFirm
)

var curveNames = [...]string{CurveLinear: "linear", CurveSoft: "soft", CurveFirm: "firm"}

func (c PressureCurve) String() string {
	if int(c) < len(curveNames) {
		return curveNames[c]
	}
	return fmt.Sprintf("PressureCurve(%d)", uint8(c))
}

// Apply maps a raw pressure in [0, 1] through the curve. Input outside
// the range is clamped first.
func (c PressureCurve) Apply(p float64) float64 {
	p = clamp01(p)
	switch c {
	case CurveSoft:
		return math.Sqrt(p)
	case CurveFirm:
		return p * p
	default:
		return p
	}
}

// ParseCurve returns the curve with the given name.
func ParseCurve(s string) (PressureCurve, error) {
	for i, n := range curveNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return PressureCurve(i), nil
		}
	}
	return CurveLinear, fmt.Errorf("brush: unknown pressure curve %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c PressureCurve) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *PressureCurve) UnmarshalText(b []byte) error {
	v, err := ParseCurve(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ErrInvalidSettings wraps validation failures of Settings.
var ErrInvalidSettings = errors.New("brush: invalid settings")

// Settings describes how samples turn into stamps. It is a value type;
// a stroke keeps its own copy taken when the stroke starts.
type Settings struct {
	Size     float64 // stamp diameter in canvas pixels at full pressure
	Opacity  float64 // per-stroke coverage cap in [0, 1]
	Flow     float64 // per-stamp strength in [0, 1]
	Hardness float64 // 1 is a crisp disc, 0 fades from the center
	// Smoothing in [0, 1] damps jitter; 0 follows raw input.
	Smoothing float64
	// Spacing between stamps as a fraction of the effective size.
	Spacing float64

	PressureSizeMultiplier    float64
	PressureOpacityMultiplier float64
	PressureCurve             PressureCurve

	BlendMode blend.Mode
	Color     color.NRGBA
	IsEraser  bool
}

// DefaultSettings returns a round black ink brush.
func DefaultSettings() Settings {
	return Settings{
		Size:                   12,
		Opacity:                1,
		Flow:                   1,
		Hardness:               0.8,
		Smoothing:              0.3,
		Spacing:                0.15,
		PressureSizeMultiplier: 1,
		Color:                  color.NRGBA{A: 255},
	}
}

// Validate checks every field range.
func (s Settings) Validate() error {
	unit := []validation.Rule{validation.Min(0.0), validation.Max(1.0)}
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Size, validation.Required, validation.Min(MinStampSize), validation.Max(2000.0)),
		validation.Field(&s.Opacity, unit...),
		validation.Field(&s.Flow, unit...),
		validation.Field(&s.Hardness, unit...),
		validation.Field(&s.Smoothing, unit...),
		validation.Field(&s.Spacing, validation.Required, validation.Min(0.01), validation.Max(10.0)),
		validation.Field(&s.PressureSizeMultiplier, unit...),
		validation.Field(&s.PressureOpacityMultiplier, unit...),
		validation.Field(&s.PressureCurve, validation.Max(CurveFirm)),
		validation.Field(&s.BlendMode, validation.By(func(v any) error {
			if m, _ := v.(blend.Mode); !m.Valid() {
				return blend.ErrUnknownMode
			}
			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// EffectiveSize is the stamp diameter at raw pressure p:
//
//	Size * (1 + (curve(p) - 1) * PressureSizeMultiplier)
//
// clamped to at least MinStampSize.
func (s Settings) EffectiveSize(p float64) float64 {
	v := s.Size * (1 + (s.PressureCurve.Apply(p)-1)*s.PressureSizeMultiplier)
	return math.Max(MinStampSize, v)
}

// EffectiveOpacity is the coverage cap at raw pressure p, computed like
// EffectiveSize and clamped to [0, 1].
func (s Settings) EffectiveOpacity(p float64) float64 {
	return clamp01(s.Opacity * (1 + (s.PressureCurve.Apply(p)-1)*s.PressureOpacityMultiplier))
}

// StampSpacing is the distance between stamps at raw pressure p.
func (s Settings) StampSpacing(p float64) float64 {
	return math.Max(MinStampSize, s.Spacing*s.EffectiveSize(p))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Preset is an immutable named brush configuration.
type Preset struct {
	Name     string
	Settings Settings
}

var presets = []Preset{
	{"pencil", Settings{
		Size: 3, Opacity: 0.85, Flow: 0.6, Hardness: 0.9, Smoothing: 0.1, Spacing: 0.1,
		PressureSizeMultiplier: 0.4, PressureOpacityMultiplier: 0.8, PressureCurve: CurveFirm,
		Color: color.NRGBA{0x33, 0x33, 0x33, 0xff},
	}},
	{"ink", Settings{
		Size: 8, Opacity: 1, Flow: 1, Hardness: 1, Smoothing: 0.5, Spacing: 0.08,
		PressureSizeMultiplier: 1, PressureCurve: CurveLinear,
		Color: color.NRGBA{A: 0xff},
	}},
	{"marker", Settings{
		Size: 24, Opacity: 0.7, Flow: 0.5, Hardness: 0.6, Smoothing: 0.3, Spacing: 0.12,
		BlendMode: blend.Multiply, Color: color.NRGBA{0x00, 0x77, 0xc8, 0xff},
	}},
	{"airbrush", Settings{
		Size: 60, Opacity: 0.5, Flow: 0.08, Hardness: 0, Smoothing: 0.2, Spacing: 0.05,
		PressureOpacityMultiplier: 1, PressureCurve: CurveSoft,
		Color: color.NRGBA{A: 0xff},
	}},
	{"soft-eraser", Settings{
		Size: 40, Opacity: 1, Flow: 0.4, Hardness: 0.2, Smoothing: 0.2, Spacing: 0.1,
		PressureSizeMultiplier: 0.5, PressureCurve: CurveSoft,
		Color: color.NRGBA{A: 0xff}, IsEraser: true,
	}},
}

// Presets returns the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a built-in preset by name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
