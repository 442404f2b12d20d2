package blend

import "math"

// Func composites a premultiplied source pixel onto a premultiplied
// destination pixel and returns the premultiplied result.
type Func func(sr, sg, sb, sa, dr, dg, db, da uint8) (r, g, b, a uint8)

// Func returns the compositing function for m. Unknown modes fall back
// to source-over.
func (m Mode) Func() Func {
	if !m.Valid() {
		return SourceOver
	}
	return funcs[m]
}

var funcs = [numModes]Func{
	Normal:     SourceOver,
	Multiply:   separable(multiply),
	Screen:     separable(screen),
	Overlay:    separable(overlay),
	SoftLight:  separable(softLight),
	HardLight:  separable(hardLight),
	ColorDodge: separable(colorDodge),
	ColorBurn:  separable(colorBurn),
	Darken:     separable(darken),
	Lighten:    separable(lighten),
	Difference: separable(difference),
	Exclusion:  separable(exclusion),
}

// SourceOver is the Porter-Duff source-over operator: S + D*(1 - Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da uint8) (r, g, b, a uint8) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}
	inv := 255 - int(sa)
	return uint8(clamp255(int(sr) + mul255(int(dr), inv))),
		uint8(clamp255(int(sg) + mul255(int(dg), inv))),
		uint8(clamp255(int(sb) + mul255(int(db), inv))),
		uint8(int(sa) + mul255(int(da), inv))
}

// DestinationOut removes destination coverage where the source is opaque:
// D*(1 - Sa). Source color is ignored.
func DestinationOut(sa, dr, dg, db, da uint8) (r, g, b, a uint8) {
	inv := 255 - int(sa)
	return uint8(mul255(int(dr), inv)),
		uint8(mul255(int(dg), inv)),
		uint8(mul255(int(db), inv)),
		uint8(mul255(int(da), inv))
}

// channelFunc is a separable blend B(cs, cb) on straight values in [0, 255].
type channelFunc func(cs, cb int) int

func separable(fn channelFunc) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		s, d := int(sa), int(da)
		ch := func(sc, dc uint8) uint8 {
			b := fn(unpremul(int(sc), s), unpremul(int(dc), d))
			num := int(dc)*(255-s)*255 + int(sc)*(255-d)*255 + s*d*b
			v := (num + 65025/2) / 65025
			if v > 255 {
				v = 255
			}
			return uint8(v)
		}
		return ch(sr, dr), ch(sg, dg), ch(sb, db), uint8(s + d - mul255(s, d))
	}
}

func multiply(cs, cb int) int { return mul255(cs, cb) }

func screen(cs, cb int) int { return cs + cb - mul255(cs, cb) }

func hardLight(cs, cb int) int {
	if cs <= 127 {
		return mul255(2*cs, cb)
	}
	return 255 - mul255(2*(255-cs), 255-cb)
}

func overlay(cs, cb int) int { return hardLight(cb, cs) }

func softLight(cs, cb int) int {
	s := float64(cs) / 255
	b := float64(cb) / 255
	var r float64
	if s <= 0.5 {
		r = b - (1-2*s)*b*(1-b)
	} else {
		var d float64
		if b <= 0.25 {
			d = ((16*b-12)*b + 4) * b
		} else {
			d = math.Sqrt(b)
		}
		r = b + (2*s-1)*(d-b)
	}
	return clamp255(int(math.Round(r * 255)))
}

func colorDodge(cs, cb int) int {
	switch {
	case cb == 0:
		return 0
	case cs == 255:
		return 255
	}
	return min(255, cb*255/(255-cs))
}

func colorBurn(cs, cb int) int {
	switch {
	case cb == 255:
		return 255
	case cs == 0:
		return 0
	}
	return 255 - min(255, (255-cb)*255/cs)
}

func darken(cs, cb int) int { return min(cs, cb) }

func lighten(cs, cb int) int { return max(cs, cb) }

func difference(cs, cb int) int {
	if cs > cb {
		return cs - cb
	}
	return cb - cs
}

func exclusion(cs, cb int) int { return clamp255(cs + cb - 2*mul255(cs, cb)) }
