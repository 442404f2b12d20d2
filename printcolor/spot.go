package printcolor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Spot is a reference spot color with its sRGB approximation.
type Spot struct {
	Name string
	RGB  RGB
}

// Hex returns the spot color's sRGB approximation as "#rrggbb".
func (s Spot) Hex() string { return RGBToHex(s.RGB) }

// spotTable is ordered; MapToPantone breaks distance ties by this order.
var spotTable = []Spot{
	{"PANTONE Process Black C", RGB{0x2d, 0x29, 0x26}},
	{"PANTONE Cool Gray 7 C", RGB{0x97, 0x99, 0x9b}},
	{"PANTONE 7527 C", RGB{0xd6, 0xd2, 0xc4}},
	{"PANTONE 186 C", RGB{0xc8, 0x10, 0x2e}},
	{"PANTONE 485 C", RGB{0xda, 0x29, 0x1c}},
	{"PANTONE 021 C", RGB{0xfe, 0x50, 0x00}},
	{"PANTONE 109 C", RGB{0xff, 0xd1, 0x00}},
	{"PANTONE 116 C", RGB{0xff, 0xcd, 0x00}},
	{"PANTONE 355 C", RGB{0x00, 0x96, 0x39}},
	{"PANTONE 347 C", RGB{0x00, 0x9a, 0x44}},
	{"PANTONE 320 C", RGB{0x00, 0x9c, 0xa6}},
	{"PANTONE 3005 C", RGB{0x00, 0x77, 0xc8}},
	{"PANTONE 286 C", RGB{0x00, 0x33, 0xa0}},
	{"PANTONE 072 C", RGB{0x10, 0x06, 0x9f}},
	{"PANTONE 7547 C", RGB{0x13, 0x1e, 0x29}},
	{"PANTONE 2685 C", RGB{0x33, 0x00, 0x72}},
	{"PANTONE 219 C", RGB{0xda, 0x18, 0x84}},
	{"PANTONE Rhodamine Red C", RGB{0xe1, 0x00, 0x98}},
	{"PANTONE 4625 C", RGB{0x4f, 0x2c, 0x1d}},
	{"PANTONE 7421 C", RGB{0x65, 0x1d, 0x32}},
}

// SpotTable returns a copy of the reference table in lookup order.
func SpotTable() []Spot {
	out := make([]Spot, len(spotTable))
	copy(out, spotTable)
	return out
}

func vec(c RGB) []float64 {
	return []float64{float64(c.R), float64(c.G), float64(c.B)}
}

// NearestSpot returns the reference color closest to c by Euclidean RGB distance.
func NearestSpot(c RGB) Spot {
	target := vec(c)
	best := spotTable[0]
	bestDist := floats.Distance(target, vec(best.RGB), 2)
	for _, s := range spotTable[1:] {
		// strict comparison keeps the earliest entry on ties
		if d := floats.Distance(target, vec(s.RGB), 2); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

// MapToPantone finds the nearest reference spot color for a hex string.
func MapToPantone(hex string) (Spot, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return Spot{}, err
	}
	return NearestSpot(c), nil
}

// Info summarizes the print behavior of a color.
type Info struct {
	Hex        string  `json:"hex"`
	RGB        RGB     `json:"rgb"`
	Saturation float64 `json:"saturation"`
	OutOfGamut bool    `json:"outOfGamut"`
	Nearest    Spot    `json:"nearest"`
}

// GetColorInfo parses hex and reports its gamut status and nearest spot color.
func GetColorInfo(hex string) (Info, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Hex:        RGBToHex(c),
		RGB:        c,
		Saturation: Saturation(c),
		OutOfGamut: IsOutOfGamut(c),
		Nearest:    NearestSpot(c),
	}, nil
}

// Warning returns the advisory for an out-of-gamut color, or false.
func (i Info) Warning() (string, bool) {
	if !i.OutOfGamut {
		return "", false
	}
	return fmt.Sprintf("%s may not reproduce accurately in print; consider %s (%s)",
		i.Hex, i.Nearest.Name, i.Nearest.Hex()), true
}

// GenerateColorWarning returns a user-facing advisory when hex is out of
// gamut. Malformed input yields no warning.
func GenerateColorWarning(hex string) (string, bool) {
	info, err := GetColorInfo(hex)
	if err != nil {
		return "", false
	}
	return info.Warning()
}
