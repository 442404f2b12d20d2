package printcolor

import (
	"image"
	"image/color"
	"sort"
)

// Finding is one bucket of similar out-of-gamut colors found in a raster.
// Color is the first flagged pixel seen in the bucket.
type Finding struct {
	Color   RGB    `json:"color"`
	Hex     string `json:"hex"`
	Pixels  int    `json:"pixels"`
	Nearest string `json:"nearest"`
}

// auditShift quantizes channels to 5 bits so near-identical colors share a bucket.
const auditShift = 3

// Audit scans img and returns up to limit out-of-gamut color buckets,
// most frequent first. Fully transparent pixels are ignored and
// semi-transparent pixels are judged on their unpremultiplied color.
// A limit <= 0 returns every bucket.
func Audit(img image.Image, limit int) []Finding {
	if img == nil {
		return nil
	}
	type tally struct {
		first RGB
		n     int
	}
	buckets := make(map[RGB]*tally)
	var order []RGB
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			// judge the pixel itself; bucket centers can change the verdict
			px := RGB{R: c.R, G: c.G, B: c.B}
			if !IsOutOfGamut(px) {
				continue
			}
			key := RGB{R: bucket(c.R), G: bucket(c.G), B: bucket(c.B)}
			t, ok := buckets[key]
			if !ok {
				t = &tally{first: px}
				buckets[key] = t
				order = append(order, key)
			}
			t.n++
		}
	}

	out := make([]Finding, 0, len(order))
	for _, key := range order {
		t := buckets[key]
		out = append(out, Finding{
			Color:   t.first,
			Hex:     RGBToHex(t.first),
			Pixels:  t.n,
			Nearest: NearestSpot(t.first).Name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pixels != out[j].Pixels {
			return out[i].Pixels > out[j].Pixels
		}
		return out[i].Hex < out[j].Hex
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// bucket maps v to the center of its quantization bucket. Bucket centers
// only group pixels; they are never judged themselves.
func bucket(v uint8) uint8 {
	return v>>auditShift<<auditShift | 1<<(auditShift-1)
}
