package layer

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gogpu/stitch/surface"
)

// Snapshot is an immutable capture of a stack: layer order, attributes,
// pixels, groups and the active layer. Pixels are shared with the stack
// until either side writes.
type Snapshot struct {
	w, h    int
	entries []entry
	thumbs  []*surface.Surface
	groups  []Group
	active  string
	seq     int
}

// Snapshot captures the current state.
func (s *Stack) Snapshot() *Snapshot {
	snap := &Snapshot{
		w:       s.w,
		h:       s.h,
		entries: s.entries(),
		thumbs:  make([]*surface.Surface, len(s.layers)),
		groups:  s.Groups(),
		active:  s.active,
		seq:     s.seq,
	}
	for i, l := range s.layers {
		l.shared = true
		snap.thumbs[i] = l.thumb
	}
	return snap
}

// Restore replaces the stack state with snap. The snapshot stays valid
// and can be restored again.
func (s *Stack) Restore(snap *Snapshot) error {
	if snap.w != s.w || snap.h != s.h {
		return fmt.Errorf("%w: snapshot %dx%d, stack %dx%d", surface.ErrSizeMismatch, snap.w, snap.h, s.w, s.h)
	}
	layers := make([]*Layer, len(snap.entries))
	for i, e := range snap.entries {
		layers[i] = &Layer{props: e.props, surf: e.surf, shared: true, thumb: snap.thumbs[i]}
	}
	s.layers = layers
	s.groups = make([]Group, len(snap.groups))
	for i, g := range snap.groups {
		s.groups[i] = g.clone()
	}
	s.active = snap.active
	s.seq = max(s.seq, snap.seq)
	return nil
}

// Width returns the canvas width.
func (snap *Snapshot) Width() int { return snap.w }

// Height returns the canvas height.
func (snap *Snapshot) Height() int { return snap.h }

// Len returns the number of layers.
func (snap *Snapshot) Len() int { return len(snap.entries) }

// Active returns the id of the layer that was active.
func (snap *Snapshot) Active() string { return snap.active }

// Layers returns the layer metadata, bottom to top.
func (snap *Snapshot) Layers() []Info {
	out := make([]Info, len(snap.entries))
	for i, e := range snap.entries {
		var group string
		for _, g := range snap.groups {
			for _, m := range g.Members {
				if m == e.id {
					group = g.ID
				}
			}
		}
		out[i] = e.info(i, group)
	}
	return out
}

// Groups returns copies of the captured groups.
func (snap *Snapshot) Groups() []Group {
	out := make([]Group, len(snap.groups))
	for i, g := range snap.groups {
		out[i] = g.clone()
	}
	return out
}

// Surface returns the pixels of layer i. Callers must not modify them.
func (snap *Snapshot) Surface(i int) (*surface.Surface, error) {
	if i < 0 || i >= len(snap.entries) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return snap.entries[i].surf, nil
}

// Composite renders the captured layers exactly as Stack.Composite would.
func (snap *Snapshot) Composite() *surface.Surface {
	return composite(snap.w, snap.h, snap.entries)
}

// UnsafeLayers lists visible layers whose blend mode is not print-safe.
func (snap *Snapshot) UnsafeLayers() []Info {
	var out []Info
	for _, info := range snap.Layers() {
		if info.Visible && info.Opacity > 0 && !info.BlendMode.PrintSafe() {
			out = append(out, info)
		}
	}
	return out
}

// Bake returns a snapshot in which every layer uses a print-safe mode.
// Unsafe layers are flattened into the composite below them; the
// composite itself is unchanged. Groups are not carried over.
func (snap *Snapshot) Bake() *Snapshot {
	allSafe := true
	for _, e := range snap.entries {
		if !e.mode.PrintSafe() {
			allSafe = false
			break
		}
	}
	if allSafe {
		return snap
	}
	entries := bake(snap.w, snap.h, snap.entries, uuid.NewString)
	out := &Snapshot{
		w:       snap.w,
		h:       snap.h,
		entries: entries,
		thumbs:  make([]*surface.Surface, len(entries)),
		active:  snap.active,
		seq:     snap.seq,
	}
	if !slices.ContainsFunc(entries, func(e entry) bool { return e.id == snap.active }) && len(entries) > 0 {
		out.active = entries[len(entries)-1].id
	}
	return out
}
