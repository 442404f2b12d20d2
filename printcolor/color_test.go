package printcolor

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#ff0000", RGB{255, 0, 0}},
		{"00FF00", RGB{0, 255, 0}},
		{"#0000fF", RGB{0, 0, 255}},
		{"#1a2B3c", RGB{0x1a, 0x2b, 0x3c}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := HexToRGB(tt.in)
			if err != nil {
				t.Fatalf("HexToRGB(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("HexToRGB(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexToRGBMalformed(t *testing.T) {
	for _, in := range []string{"", "#", "#fff", "#ff00001", "zzzzzz", "#12345g", "##123456"} {
		if _, err := HexToRGB(in); !errors.Is(err, ErrMalformedHex) {
			t.Errorf("HexToRGB(%q) error = %v, want ErrMalformedHex", in, err)
		}
	}
}

// TestHexRoundTrip checks every value of each channel survives formatting.
func TestHexRoundTrip(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := RGB{uint8(v), uint8(255 - v), uint8(v * 7)}
		s := RGBToHex(c)
		if s != strings.ToLower(s) || len(s) != 7 {
			t.Fatalf("RGBToHex(%v) = %q, want lowercase #rrggbb", c, s)
		}
		got, err := HexToRGB(s)
		if err != nil || got != c {
			t.Fatalf("HexToRGB(RGBToHex(%v)) = %v, %v", c, got, err)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-10, 127.6, 300); got != (RGB{0, 128, 255}) {
		t.Errorf("Clamp() = %v, want {0 128 255}", got)
	}
}

func TestIsOutOfGamut(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want bool
	}{
		{"pure red", RGB{255, 0, 0}, true},
		{"neon green", RGB{10, 250, 5}, true},
		{"deep blue", RGB{0, 0, 40}, true},
		{"dark grey", RGB{30, 30, 30}, false},
		{"muted red", RGB{200, 60, 60}, false},
		{"pastel pink", RGB{255, 200, 210}, false},
		{"white", RGB{255, 255, 255}, false},
		{"black", RGB{0, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOutOfGamut(tt.c); got != tt.want {
				t.Errorf("IsOutOfGamut(%v) = %v, want %v (sat %.2f)", tt.c, got, tt.want, Saturation(tt.c))
			}
		})
	}
}

func TestMapToPantone(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#c8102e", "PANTONE 186 C"},
		{"#c9112f", "PANTONE 186 C"},
		{"#2e2a27", "PANTONE Process Black C"},
		{"#000000", "PANTONE 7547 C"},
		{"#0033a1", "PANTONE 286 C"},
		{"#ffffff", "PANTONE 7527 C"},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := MapToPantone(tt.hex)
			if err != nil {
				t.Fatal(err)
			}
			if got.Name != tt.want {
				t.Errorf("MapToPantone(%q) = %s, want %s", tt.hex, got.Name, tt.want)
			}
		})
	}
	if _, err := MapToPantone("nope"); !errors.Is(err, ErrMalformedHex) {
		t.Errorf("MapToPantone(nope) error = %v", err)
	}
}

// TestNearestSpotTie checks equidistant colors resolve to the earlier entry.
func TestNearestSpotTie(t *testing.T) {
	a, b := spotTable[6].RGB, spotTable[7].RGB // 109 C and 116 C
	mid := RGB{R: 0xff, G: uint8((int(a.G) + int(b.G)) / 2), B: 0}
	if got := NearestSpot(mid); got.Name != spotTable[6].Name {
		t.Errorf("NearestSpot(%v) = %s, want %s", mid, got.Name, spotTable[6].Name)
	}
}

func TestGenerateColorWarning(t *testing.T) {
	msg, ok := GenerateColorWarning("#ff0000")
	if !ok {
		t.Fatal("GenerateColorWarning(#ff0000) = false, want warning")
	}
	if !strings.Contains(msg, "PANTONE") || !strings.Contains(msg, "#ff0000") {
		t.Errorf("warning %q should name the color and a substitute", msg)
	}
	if _, ok := GenerateColorWarning("#808080"); ok {
		t.Error("GenerateColorWarning(#808080) = true, want false")
	}
	if _, ok := GenerateColorWarning("bad"); ok {
		t.Error("GenerateColorWarning(bad) = true, want false")
	}
}

func TestAudit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			switch {
			case x < 6:
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			case x < 8:
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			case x < 9:
				img.Set(x, y, color.RGBA{128, 128, 128, 255})
			}
		}
	}

	got := Audit(img, 0)
	if len(got) != 2 {
		t.Fatalf("Audit() returned %d findings, want 2: %+v", len(got), got)
	}
	if got[0].Pixels != 60 || got[1].Pixels != 20 {
		t.Errorf("Audit() pixel counts = %d, %d, want 60, 20", got[0].Pixels, got[1].Pixels)
	}
	if got[0].Nearest == "" {
		t.Error("Audit() finding has no nearest spot color")
	}

	if got := Audit(img, 1); len(got) != 1 {
		t.Errorf("Audit(limit 1) returned %d findings", len(got))
	}
}

// TestAuditJudgesPixels mixes a dark saturated red with a duller color
// from the same quantization bucket.
func TestAuditJudgesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 1))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.RGBA{9, 0, 0, 255})
	}
	for x := 3; x < 5; x++ {
		img.Set(x, 0, color.RGBA{12, 4, 4, 255})
	}
	if !IsOutOfGamut(RGB{9, 0, 0}) || IsOutOfGamut(RGB{12, 4, 4}) {
		t.Fatal("fixture colors no longer straddle the gamut check")
	}

	got := Audit(img, 0)
	if len(got) != 1 {
		t.Fatalf("Audit() returned %d findings, want 1: %+v", len(got), got)
	}
	if got[0].Color != (RGB{9, 0, 0}) || got[0].Pixels != 3 {
		t.Errorf("Audit() = %+v, want 3 pixels of #090000", got[0])
	}
	if got[0].Hex != "#090000" {
		t.Errorf("Hex = %q", got[0].Hex)
	}
}
