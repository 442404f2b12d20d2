// Package layer implements the ordered stack of editable raster layers.
//
// Stack order (index 0 at the bottom) is the only z-order. The composite is
// never stored; Composite recomputes it bottom to top. Snapshots share
// surfaces with the stack copy-on-write, so taking one is cheap and a
// snapshot never changes after it is taken.
//
// Stack is not safe for concurrent use. Snapshots are immutable and may be
// read from any goroutine.
package layer

import (
	"errors"
	"fmt"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/surface"
)

var (
	ErrLayerNotFound    = errors.New("layer: not found")
	ErrIndexOutOfRange  = errors.New("layer: index out of range")
	ErrLayerLocked      = errors.New("layer: locked")
	ErrInvalidValue     = errors.New("layer: invalid property value")
	ErrGroupNotFound    = errors.New("layer: group not found")
	ErrNotContiguous    = errors.New("layer: group members are not contiguous")
	ErrAlreadyGrouped   = errors.New("layer: layer already belongs to a group")
	ErrUnknownProperty  = errors.New("layer: unknown property")
	errEmptyGroupMember = errors.New("layer: group needs at least one member")
)

// Property names a mutable layer attribute for SetProperty.
type Property uint8

const (
	PropOpacity Property = iota
	PropBlendMode
	PropVisible
	PropLocked
	PropName
)

var propNames = [...]string{
	PropOpacity:   "opacity",
	PropBlendMode: "blendMode",
	PropVisible:   "visible",
	PropLocked:    "locked",
	PropName:      "name",
}

func (p Property) String() string {
	if int(p) < len(propNames) {
		return propNames[p]
	}
	return fmt.Sprintf("Property(%d)", uint8(p))
}

// ParseProperty returns the property with the given name.
func ParseProperty(s string) (Property, error) {
	for i, n := range propNames {
		if s == n {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, s)
}

// props are the layer attributes other than pixels.
type props struct {
	id      string
	name    string
	opacity float64
	mode    blend.Mode
	visible bool
	locked  bool
}

// Layer is one raster surface in a Stack. Layers are created and mutated
// through their Stack.
type Layer struct {
	props
	surf   *surface.Surface
	shared bool // surf is referenced by a snapshot
	thumb  *surface.Surface
}

func (l *Layer) ID() string            { return l.id }
func (l *Layer) Name() string          { return l.name }
func (l *Layer) Opacity() float64      { return l.opacity }
func (l *Layer) BlendMode() blend.Mode { return l.mode }
func (l *Layer) Visible() bool         { return l.visible }
func (l *Layer) Locked() bool          { return l.locked }

// Surface returns the layer pixels. Callers must not modify the result.
func (l *Layer) Surface() *surface.Surface { return l.surf }

// Thumbnail returns the thumbnail from the last refresh, or nil.
func (l *Layer) Thumbnail() *surface.Surface { return l.thumb }

// writable returns a surface that is safe to mutate, detaching it from
// any snapshot first.
func (l *Layer) writable() *surface.Surface {
	if l.shared {
		l.surf = l.surf.Clone()
		l.shared = false
	}
	return l.surf
}

// Info is the display metadata of a layer.
type Info struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Index     int        `json:"index"`
	Opacity   float64    `json:"opacity"`
	BlendMode blend.Mode `json:"blendMode"`
	Visible   bool       `json:"visible"`
	Locked    bool       `json:"locked"`
	Group     string     `json:"group,omitempty"`
}

func (p props) info(index int, group string) Info {
	return Info{
		ID:        p.id,
		Name:      p.name,
		Index:     index,
		Opacity:   p.opacity,
		BlendMode: p.mode,
		Visible:   p.visible,
		Locked:    p.locked,
		Group:     group,
	}
}

// Group is an organizational container over a contiguous run of layers.
// It has no effect on compositing.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"` // bottom to top
}

func (g Group) clone() Group {
	g.Members = append([]string(nil), g.Members...)
	return g
}
