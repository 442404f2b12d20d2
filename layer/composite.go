package layer

import (
	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/surface"
)

// entry is what compositing needs from a layer.
type entry struct {
	props
	surf *surface.Surface
}

// composite blends visible entries bottom to top onto a transparent
// accumulator. Locked layers render; hidden layers are skipped.
func composite(w, h int, entries []entry) *surface.Surface {
	// dimensions were validated when the stack was created
	acc, _ := surface.New(w, h)
	for _, e := range entries {
		if !e.visible || e.opacity <= 0 {
			continue
		}
		_ = acc.Composite(e.surf, e.opacity, e.mode)
	}
	return acc
}

// bake rewrites entries so that only print-safe modes remain. Each
// visible layer with an unsafe mode is flattened together with the
// composite below it into one normal layer. The composite of the result
// equals the composite of the input.
func bake(w, h int, entries []entry, newID func() string) []entry {
	var out []entry
	for _, e := range entries {
		if e.mode.PrintSafe() {
			out = append(out, e)
			continue
		}
		if !e.visible || e.opacity <= 0 {
			e.mode = blend.Normal
			out = append(out, e)
			continue
		}
		flat := composite(w, h, append(out[:len(out):len(out)], e))
		var kept []entry
		for _, o := range out {
			if !o.visible || o.opacity <= 0 {
				kept = append(kept, o)
			}
		}
		kept = append(kept, entry{
			props: props{
				id:      newID(),
				name:    "Baked " + e.name,
				opacity: 1,
				mode:    blend.Normal,
				visible: true,
			},
			surf: flat,
		})
		out = kept
	}
	return out
}
