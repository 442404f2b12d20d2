package blend

// mul255 returns round(a*b/255) for a, b in [0, 255].
func mul255(a, b int) int {
	t := a*b + 128
	return (t + t>>8) >> 8
}

// Mul255 is the exact byte product a*b/255, rounded.
func Mul255(a, b uint8) uint8 {
	return uint8(mul255(int(a), int(b)))
}

// unpremul recovers the straight channel value of c at alpha a.
func unpremul(c, a int) int {
	if a == 0 {
		return 0
	}
	v := (c*255 + a/2) / a
	if v > 255 {
		return 255
	}
	return v
}

func clamp255(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}
