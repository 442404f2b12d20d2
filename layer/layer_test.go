package layer

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/geom"
	"github.com/gogpu/stitch/surface"
)

func newStack(t *testing.T, w, h int, opts ...Option) *Stack {
	t.Helper()
	s, err := New(w, h, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func solid(t *testing.T, s *Stack, c color.Color) *surface.Surface {
	t.Helper()
	surf, err := surface.New(s.Width(), s.Height())
	if err != nil {
		t.Fatal(err)
	}
	surf.Fill(c)
	return surf
}

func paint(t *testing.T, s *Stack, id string, c color.Color) {
	t.Helper()
	if err := s.Replace(id, solid(t, s, c)); err != nil {
		t.Fatalf("Replace(%s) error: %v", id, err)
	}
}

func ids(s *Stack) []string {
	var out []string
	for _, l := range s.Layers() {
		out = append(out, l.ID())
	}
	return out
}

func TestCreateAndActive(t *testing.T) {
	s := newStack(t, 8, 8)
	if s.Len() != 1 {
		t.Fatalf("New() has %d layers, want 1", s.Len())
	}
	first := s.Active()
	top := s.Create("ink")
	if s.Len() != 2 || s.Index(top.ID()) != 1 {
		t.Fatalf("Create() index = %d", s.Index(top.ID()))
	}
	if s.Active() != top {
		t.Error("Create() did not activate the new layer")
	}
	if err := s.SetActive(first.ID()); err != nil || s.Active() != first {
		t.Errorf("SetActive() = %v", err)
	}
	if err := s.SetActive("missing"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("SetActive(missing) = %v", err)
	}
	if top.Name() != "ink" || first.Name() != "Layer 1" {
		t.Errorf("names = %q, %q", first.Name(), top.Name())
	}
}

// TestDeleteLastLayer checks the stack never becomes empty.
func TestDeleteLastLayer(t *testing.T) {
	s := newStack(t, 8, 8)
	only := s.Active().ID()
	paint(t, s, only, color.White)
	if err := s.Delete(only); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after deleting last = %d, want 1", s.Len())
	}
	if s.Active().ID() == only || !s.Active().Surface().IsEmpty() {
		t.Error("replacement layer is not a fresh empty layer")
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestDeleteActivatesBelow(t *testing.T) {
	s := newStack(t, 4, 4)
	a := s.Active()
	b := s.Create("b")
	s.Create("c")
	if err := s.SetActive(b.ID()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(b.ID()); err != nil {
		t.Fatal(err)
	}
	if s.Active() != a {
		t.Errorf("Active() = %s, want %s", s.Active().Name(), a.Name())
	}
}

func TestDuplicate(t *testing.T) {
	s := newStack(t, 4, 4)
	base := s.Active()
	s.Create("top")
	paint(t, s, base.ID(), color.RGBA{0, 0, 255, 255})

	dup, err := s.Duplicate(base.ID())
	if err != nil {
		t.Fatal(err)
	}
	if s.Index(dup.ID()) != 1 {
		t.Errorf("duplicate index = %d, want 1", s.Index(dup.ID()))
	}
	if !dup.Surface().Equal(base.Surface()) {
		t.Error("duplicate pixels differ")
	}
	paint(t, s, base.ID(), color.White)
	if dup.Surface().Equal(base.Surface()) {
		t.Error("duplicate shares pixels with the source")
	}
}

func TestReorder(t *testing.T) {
	s := newStack(t, 4, 4)
	s.Create("b")
	s.Create("c")
	before := ids(s)
	if err := s.Reorder(0, 2); err != nil {
		t.Fatal(err)
	}
	got := ids(s)
	want := []string{before[1], before[2], before[0]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Reorder(0, 2) = %v, want %v", got, want)
		}
	}
	if err := s.Reorder(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Reorder(0, 3) = %v", err)
	}
	if err := s.Reorder(2, 0); err != nil {
		t.Fatal(err)
	}
	if got := ids(s); got[0] != before[0] {
		t.Errorf("Reorder(2, 0) = %v", got)
	}
}

func TestSetProperty(t *testing.T) {
	s := newStack(t, 4, 4)
	id := s.Active().ID()
	tests := []struct {
		name string
		prop Property
		val  any
		want error
	}{
		{"opacity", PropOpacity, 0.4, nil},
		{"opacity too high", PropOpacity, 1.5, ErrInvalidValue},
		{"opacity wrong type", PropOpacity, "half", ErrInvalidValue},
		{"mode", PropBlendMode, blend.Overlay, nil},
		{"mode by name", PropBlendMode, "multiply", nil},
		{"mode unknown", PropBlendMode, "dissolve", ErrInvalidValue},
		{"visible", PropVisible, false, nil},
		{"locked", PropLocked, true, nil},
		{"name", PropName, "Sleeve", nil},
		{"empty name", PropName, "", ErrInvalidValue},
		{"unknown property", Property(42), 1, ErrUnknownProperty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetProperty(id, tt.prop, tt.val)
			if tt.want == nil && err != nil {
				t.Fatalf("SetProperty() = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("SetProperty() = %v, want %v", err, tt.want)
			}
		})
	}
	l := s.Active()
	if l.Opacity() != 0.4 || l.BlendMode() != blend.Multiply || l.Visible() || !l.Locked() || l.Name() != "Sleeve" {
		t.Errorf("layer props = %+v", l.props)
	}
	if p, err := ParseProperty("blendMode"); err != nil || p != PropBlendMode {
		t.Errorf("ParseProperty(blendMode) = %v, %v", p, err)
	}
}

func TestCompositeRules(t *testing.T) {
	s := newStack(t, 2, 2)
	base := s.Active()
	paint(t, s, base.ID(), color.White)
	top := s.Create("red")
	paint(t, s, top.ID(), color.RGBA{255, 0, 0, 255})

	a := s.Composite()
	b := s.Composite()
	if !a.Equal(b) {
		t.Fatal("Composite() is not idempotent")
	}
	if got := a.At(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("composite = %v, want red", got)
	}

	if err := s.SetOpacity(top.ID(), 0.5); err != nil {
		t.Fatal(err)
	}
	if got := s.Composite().At(0, 0); got != (color.RGBA{255, 127, 127, 255}) {
		t.Errorf("half red over white = %v", got)
	}

	if err := s.SetLocked(top.ID(), true); err != nil {
		t.Fatal(err)
	}
	if got := s.Composite().At(0, 0); got.G != 127 {
		t.Errorf("locked layer did not render: %v", got)
	}

	if err := s.SetVisible(top.ID(), false); err != nil {
		t.Fatal(err)
	}
	if got := s.Composite().At(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hidden layer rendered: %v", got)
	}
}

func redOverlay(t *testing.T, w, h int) *brush.Overlay {
	t.Helper()
	ov, err := brush.NewOverlay(w, h)
	if err != nil {
		t.Fatal(err)
	}
	st := brush.DefaultSettings()
	st.Color = color.NRGBA{255, 0, 0, 255}
	ov.Begin(st)
	ov.Stamp(brush.Stamp{Pos: geom.V(float64(w)/2, float64(h)/2), Size: 4, Opacity: 1, Flow: 1, Hardness: 1})
	return ov
}

func TestApplyOverlayAndLive(t *testing.T) {
	s := newStack(t, 16, 16)
	id := s.Active().ID()
	ov := redOverlay(t, 16, 16)

	before := s.Active().Surface().Clone()
	live, err := s.CompositeWithLive(id, ov)
	if err != nil {
		t.Fatal(err)
	}
	if live.At(8, 8).A == 0 {
		t.Error("live preview does not show the overlay")
	}
	if !s.Active().Surface().Equal(before) {
		t.Fatal("CompositeWithLive() mutated the layer")
	}

	if err := s.ApplyOverlay(id, ov); err != nil {
		t.Fatal(err)
	}
	if !s.Composite().Equal(live) {
		t.Error("committed composite differs from live preview")
	}

	if err := s.SetLocked(id, true); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyOverlay(id, ov); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("ApplyOverlay() on locked layer = %v", err)
	}
	if err := s.Clear(id); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("Clear() on locked layer = %v", err)
	}
}

// TestSnapshotCopyOnWrite checks edits after a snapshot never leak into it.
func TestSnapshotCopyOnWrite(t *testing.T) {
	s := newStack(t, 16, 16)
	id := s.Active().ID()
	paint(t, s, id, color.White)

	snap := s.Snapshot()
	want := snap.Composite()

	if err := s.ApplyOverlay(id, redOverlay(t, 16, 16)); err != nil {
		t.Fatal(err)
	}
	s.Create("extra")
	if err := s.SetOpacity(id, 0.2); err != nil {
		t.Fatal(err)
	}
	if !snap.Composite().Equal(want) {
		t.Fatal("snapshot changed after stack edits")
	}
	if snap.Len() != 1 {
		t.Errorf("snapshot Len() = %d, want 1", snap.Len())
	}

	if err := s.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || !s.Composite().Equal(want) {
		t.Fatal("Restore() did not bring back the captured composite")
	}
	if err := s.Clear(id); err != nil {
		t.Fatal(err)
	}
	if !snap.Composite().Equal(want) {
		t.Error("Clear() after Restore() mutated the snapshot")
	}
}

func TestGroups(t *testing.T) {
	s := newStack(t, 4, 4)
	a := s.Active()
	b := s.Create("b")
	c := s.Create("c")
	d := s.Create("d")

	if _, err := s.CreateGroup("bad", a.ID(), c.ID()); !errors.Is(err, ErrNotContiguous) {
		t.Fatalf("CreateGroup(a, c) = %v", err)
	}
	g, err := s.CreateGroup("front", c.ID(), a.ID(), b.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Members) != 3 || g.Members[0] != a.ID() || g.Members[2] != c.ID() {
		t.Fatalf("members = %v", g.Members)
	}
	if _, err := s.CreateGroup("again", b.ID()); !errors.Is(err, ErrAlreadyGrouped) {
		t.Errorf("CreateGroup() of grouped layer = %v", err)
	}

	// moving b to the top leaves a and c adjacent: [a c d b]
	if err := s.Reorder(1, 3); err != nil {
		t.Fatal(err)
	}
	g = s.Groups()[0]
	if len(g.Members) != 2 || g.Members[0] != a.ID() || g.Members[1] != c.ID() {
		t.Errorf("after reorder members = %v, want [a c]", g.Members)
	}
	if s.Info()[s.Index(b.ID())].Group != "" {
		t.Error("b still reports a group")
	}

	// [a c d b] -> [c a d b] -> [a d b c]: a and c are split, equal runs keep the lower one
	if err := s.Reorder(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(0, 3); err != nil {
		t.Fatal(err)
	}
	if got := s.Groups()[0].Members; len(got) != 1 || got[0] != a.ID() {
		t.Errorf("split group members = %v, want [a]", got)
	}

	if err := s.Delete(a.ID()); err != nil {
		t.Fatal(err)
	}
	if len(s.Groups()) != 0 {
		t.Errorf("group with no members survived: %v", s.Groups())
	}

	g2, err := s.CreateGroup("", d.ID())
	if err != nil {
		t.Fatal(err)
	}
	dup, err := s.Duplicate(d.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Groups()[0].Members; len(got) != 2 || got[1] != dup.ID() {
		t.Errorf("duplicate did not join group: %v", got)
	}
	if err := s.Ungroup(g2.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Ungroup(g2.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("second Ungroup() = %v", err)
	}
}

// TestBake checks baking preserves the composite and removes unsafe modes.
func TestBake(t *testing.T) {
	s := newStack(t, 8, 8)
	paint(t, s, s.Active().ID(), color.RGBA{0x40, 0x80, 0xc0, 0xff})
	mid := s.Create("overlay")
	paint(t, s, mid.ID(), color.RGBA{0xc0, 0x60, 0x20, 0xff})
	if err := s.SetBlendMode(mid.ID(), blend.Overlay); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOpacity(mid.ID(), 0.6); err != nil {
		t.Fatal(err)
	}
	top := s.Create("multiply")
	paint(t, s, top.ID(), color.RGBA{0x80, 0x80, 0x80, 0x80})
	if err := s.SetBlendMode(top.ID(), blend.Multiply); err != nil {
		t.Fatal(err)
	}
	hidden := s.Create("hidden")
	if err := s.SetBlendMode(hidden.ID(), blend.Difference); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVisible(hidden.ID(), false); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if got := len(snap.UnsafeLayers()); got != 1 {
		t.Fatalf("UnsafeLayers() = %d, want 1", got)
	}
	baked := snap.Bake()
	for _, info := range baked.Layers() {
		if !info.BlendMode.PrintSafe() {
			t.Errorf("baked layer %q still uses %v", info.Name, info.BlendMode)
		}
	}
	if baked.Len() != 3 {
		t.Errorf("baked Len() = %d, want 3", baked.Len())
	}
	if !baked.Composite().Equal(snap.Composite()) {
		t.Error("Bake() changed the composite")
	}
	if snap.Bake() == snap {
		t.Error("Bake() returned the unsafe snapshot itself")
	}
	if baked.Bake() != baked {
		t.Error("Bake() of a safe snapshot should return it unchanged")
	}
}

func TestThumbnail(t *testing.T) {
	s := newStack(t, 120, 180, WithThumbnailSize(32, 32))
	id := s.Active().ID()
	if s.Active().Thumbnail() != nil {
		t.Fatal("thumbnail generated before first use")
	}
	th, err := s.Thumbnail(id)
	if err != nil {
		t.Fatal(err)
	}
	if th.Width() != 21 || th.Height() != 32 {
		t.Errorf("thumbnail = %dx%d, want 21x32", th.Width(), th.Height())
	}
	paint(t, s, id, color.White)
	if again, _ := s.Thumbnail(id); again != th {
		t.Error("Thumbnail() regenerated without a refresh")
	}
	if err := s.RefreshThumbnails(); err != nil {
		t.Fatal(err)
	}
	if s.Active().Thumbnail().At(10, 10).A != 255 {
		t.Error("refreshed thumbnail does not show new pixels")
	}
}
