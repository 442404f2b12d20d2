package blend

import (
	"errors"
	"testing"
)

type px struct{ r, g, b, a uint8 }

func opaque(v uint8) px { return px{v, v, v, 255} }

func apply(f Func, s, d px) px {
	r, g, b, a := f(s.r, s.g, s.b, s.a, d.r, d.g, d.b, d.a)
	return px{r, g, b, a}
}

func TestModeFuncs(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		src  px
		dst  px
		want px
	}{
		{"normal opaque", Normal, px{255, 0, 0, 255}, opaque(10), px{255, 0, 0, 255}},
		{"normal half red over white", Normal, px{128, 0, 0, 128}, opaque(255), px{255, 127, 127, 255}},
		{"multiply white white", Multiply, opaque(255), opaque(255), opaque(255)},
		{"multiply black white", Multiply, opaque(0), opaque(255), opaque(0)},
		{"multiply gray gray", Multiply, opaque(128), opaque(128), opaque(64)},
		{"multiply half red over white", Multiply, px{128, 0, 0, 128}, opaque(255), px{255, 127, 127, 255}},
		{"screen gray gray", Screen, opaque(128), opaque(128), opaque(192)},
		{"overlay dark backdrop", Overlay, opaque(200), opaque(64), opaque(100)},
		{"overlay black backdrop", Overlay, opaque(200), opaque(0), opaque(0)},
		{"overlay white backdrop", Overlay, opaque(10), opaque(255), opaque(255)},
		{"soft-light black source", SoftLight, opaque(0), opaque(128), opaque(64)},
		{"soft-light mid source", SoftLight, opaque(128), opaque(128), opaque(128)},
		{"hard-light white source", HardLight, opaque(255), opaque(100), opaque(255)},
		{"hard-light black source", HardLight, opaque(0), opaque(100), opaque(0)},
		{"color-dodge", ColorDodge, opaque(128), opaque(64), opaque(128)},
		{"color-dodge black backdrop", ColorDodge, opaque(255), opaque(0), opaque(0)},
		{"color-burn", ColorBurn, opaque(128), opaque(192), opaque(130)},
		{"color-burn white backdrop", ColorBurn, opaque(0), opaque(255), opaque(255)},
		{"darken", Darken, opaque(100), opaque(200), opaque(100)},
		{"lighten", Lighten, opaque(100), opaque(200), opaque(200)},
		{"difference", Difference, opaque(200), opaque(50), opaque(150)},
		{"exclusion white white", Exclusion, opaque(255), opaque(255), opaque(0)},
		{"exclusion black gray", Exclusion, opaque(0), opaque(90), opaque(90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.mode.Func(), tt.src, tt.dst)
			if got != tt.want {
				t.Errorf("%v.Func()(%v, %v) = %v, want %v", tt.mode, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

// TestTransparentOperands checks every mode passes the other operand
// through when one side is fully transparent.
func TestTransparentOperands(t *testing.T) {
	s := px{40, 80, 120, 160}
	for _, m := range Modes() {
		f := m.Func()
		if got := apply(f, px{}, s); got != s {
			t.Errorf("%v: transparent source over %v = %v", m, s, got)
		}
		if got := apply(f, s, px{}); got != s {
			t.Errorf("%v: %v over transparent = %v", m, s, got)
		}
	}
}

// TestPremultipliedResult checks color never exceeds alpha in results.
func TestPremultipliedResult(t *testing.T) {
	vals := []int{0, 51, 102, 153, 204, 255}
	for _, m := range Modes() {
		f := m.Func()
		for _, sa := range vals {
			for _, da := range vals {
				for _, sc := range vals {
					for _, dc := range vals {
						if sc > sa || dc > da {
							continue
						}
						r, g, b, a := f(uint8(sc), uint8(sc/2), 0, uint8(sa), uint8(dc), 0, uint8(dc/3), uint8(da))
						if r > a || g > a || b > a {
							t.Fatalf("%v: (%d,%d) over (%d,%d) = (%d,%d,%d,%d) not premultiplied",
								m, sc, sa, dc, da, r, g, b, a)
						}
					}
				}
			}
		}
	}
}

func TestDestinationOut(t *testing.T) {
	tests := []struct {
		sa   uint8
		want px
	}{
		{0, opaque(255)},
		{255, px{}},
		{128, px{127, 127, 127, 127}},
	}
	for _, tt := range tests {
		r, g, b, a := DestinationOut(tt.sa, 255, 255, 255, 255)
		if got := (px{r, g, b, a}); got != tt.want {
			t.Errorf("DestinationOut(%d) = %v, want %v", tt.sa, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"normal", Normal},
		{"Soft_Light", SoftLight},
		{"softlight", SoftLight},
		{" COLOR-DODGE ", ColorDodge},
		{"exclusion", Exclusion},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := Parse("dissolve"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Parse(dissolve) error = %v, want ErrUnknownMode", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Mode
		if err := got.UnmarshalText(text); err != nil || got != m {
			t.Errorf("UnmarshalText(%s) = %v, %v", text, got, err)
		}
	}
	if _, err := Mode(99).MarshalText(); err == nil {
		t.Error("MarshalText() of invalid mode succeeded")
	}
}

func TestPrintSafe(t *testing.T) {
	safe := map[Mode]bool{Normal: true, Multiply: true, Screen: true}
	if len(Modes()) != 12 {
		t.Fatalf("Modes() = %d modes, want 12", len(Modes()))
	}
	for _, m := range Modes() {
		if m.PrintSafe() != safe[m] {
			t.Errorf("%v.PrintSafe() = %v", m, m.PrintSafe())
		}
	}
}
