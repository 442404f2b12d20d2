package export

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gogpu/stitch/dpi"
)

// Preset is a physical print area.
type Preset struct {
	Name     string  `json:"name" yaml:"name"`
	WidthIn  float64 `json:"widthIn" yaml:"width_in"`
	HeightIn float64 `json:"heightIn" yaml:"height_in"`
	DPI      float64 `json:"dpi" yaml:"dpi"`
	BleedIn  float64 `json:"bleedIn" yaml:"bleed_in"`
}

// Validate rejects presets that cannot be rendered. Resolutions outside
// the supported range are errors, never clamped.
func (p Preset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.WidthIn, validation.Required, validation.Min(0.0).Exclusive(), validation.By(lengthRule)),
		validation.Field(&p.HeightIn, validation.Required, validation.Min(0.0).Exclusive(), validation.By(lengthRule)),
		validation.Field(&p.DPI, validation.Required, validation.By(dpiRule)),
		validation.Field(&p.BleedIn, validation.By(lengthRule)),
	)
}

func lengthRule(v any) error {
	f, _ := v.(float64)
	return dpi.CheckLength(f)
}

func dpiRule(v any) error {
	f, _ := v.(float64)
	return dpi.ValidateDPI(f)
}

// PixelDims returns the trim size in pixels.
func (p Preset) PixelDims() dpi.Dims {
	return dpi.MakePixelDims(p.WidthIn, p.HeightIn, p.DPI)
}

// BleedPx returns the bleed margin in pixels.
func (p Preset) BleedPx() int {
	return dpi.BleedPx(p.BleedIn, p.DPI)
}

// OutputDims returns the trim size grown by bleed on every side.
func (p Preset) OutputDims() dpi.Dims {
	return p.PixelDims().Inflate(p.BleedPx())
}

func (p Preset) String() string {
	return fmt.Sprintf("%s (%gx%g in @ %g dpi, bleed %g in)", p.Name, p.WidthIn, p.HeightIn, p.DPI, p.BleedIn)
}

var builtinPresets = []Preset{
	{Name: "tee-front", WidthIn: 12, HeightIn: 16, DPI: 300, BleedIn: 0.125},
	{Name: "tee-back", WidthIn: 14, HeightIn: 18, DPI: 300, BleedIn: 0.125},
	{Name: "tee-pocket", WidthIn: 4, HeightIn: 4, DPI: 300, BleedIn: 0.125},
	{Name: "hoodie-front", WidthIn: 13, HeightIn: 13, DPI: 300, BleedIn: 0.25},
	{Name: "tote", WidthIn: 14, HeightIn: 14, DPI: 200, BleedIn: 0.125},
	{Name: "proof-4x6", WidthIn: 4, HeightIn: 6, DPI: 300, BleedIn: 0.125},
}

// Presets returns a copy of the built-in presets.
func Presets() []Preset {
	out := make([]Preset, len(builtinPresets))
	copy(out, builtinPresets)
	return out
}

// LookupPreset finds a built-in preset by name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range builtinPresets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
