package stitch

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gogpu/stitch/dpi"
	"github.com/gogpu/stitch/export"
	"github.com/gogpu/stitch/printcolor"
	"github.com/gogpu/stitch/surface"
)

// ErrInvalidTemplate is returned for templates that cannot back a canvas.
var ErrInvalidTemplate = errors.New("stitch: invalid template")

// GarmentLayerName names the locked bottom layer holding the garment image.
const GarmentLayerName = "Garment"

// Template describes the garment a document is drawn on. It is read-only
// configuration supplied by the template provider; the core never fetches
// ImageURL itself, the caller passes the image bytes to NewFromTemplate.
type Template struct {
	GarmentID string
	View      string // front, back, sleeve...
	Color     string // garment color as #rrggbb, informational
	ImageURL  string

	Width, Height int
	// DPI is the resolution the template was authored at. Zero means unknown.
	DPI float64
	// PrintArea is the printable region in canvas pixels. Empty means the
	// whole canvas.
	PrintArea image.Rectangle
	// SafeArea is the region artwork should stay inside. It must lie within
	// the print area; empty means the print area itself.
	SafeArea image.Rectangle
	// Preset is the default print preset for exports of this garment.
	Preset export.Preset
}

// Name identifies the template in logs and file names.
func (t Template) Name() string {
	switch {
	case t.GarmentID == "":
		return "untitled"
	case t.View == "":
		return t.GarmentID
	}
	return t.GarmentID + "-" + t.View
}

func (t Template) printArea() image.Rectangle {
	if t.PrintArea.Empty() {
		return image.Rect(0, 0, t.Width, t.Height)
	}
	return t.PrintArea
}

func (t Template) safeArea() image.Rectangle {
	if t.SafeArea.Empty() {
		return t.printArea()
	}
	return t.SafeArea
}

// Validate checks the canvas size, resolution, color and areas.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Width, validation.Required, validation.Min(1)),
		validation.Field(&t.Height, validation.Required, validation.Min(1)),
		validation.Field(&t.DPI, validation.By(func(v any) error {
			if f, _ := v.(float64); f != 0 {
				return dpi.ValidateDPI(f)
			}
			return nil
		})),
		validation.Field(&t.Color, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" {
				_, err := printcolor.HexToRGB(s)
				return err
			}
			return nil
		})),
		validation.Field(&t.PrintArea, validation.By(func(v any) error {
			r, _ := v.(image.Rectangle)
			if r.Empty() {
				return nil
			}
			if !r.In(image.Rect(0, 0, t.Width, t.Height)) {
				return fmt.Errorf("print area %v outside %dx%d canvas", r, t.Width, t.Height)
			}
			return nil
		})),
		validation.Field(&t.SafeArea, validation.By(func(v any) error {
			r, _ := v.(image.Rectangle)
			if r.Empty() {
				return nil
			}
			if pa := t.printArea(); !r.In(pa) {
				return fmt.Errorf("safe area %v outside print area %v", r, pa)
			}
			return nil
		})),
	)
}

// NewFromTemplate creates a document sized to t with the garment image
// read from r as a locked bottom layer, and an empty drawing layer above
// it. A nil reader skips the garment layer.
//
// An image that fails to decode is replaced by a visibly marked
// placeholder; the document is still usable and the failure is logged.
func NewFromTemplate(t Template, r io.Reader, opts ...Option) (*Document, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	d, err := New(t.Width, t.Height, opts...)
	if err != nil {
		return nil, err
	}
	d.template = t
	d.printArea = t.printArea()
	d.safeArea = t.safeArea()
	if r == nil {
		return d, nil
	}

	garment, err := loadGarment(r, t)
	if err != nil {
		return nil, err
	}
	base := d.stack.Active()
	if err := d.stack.Replace(base.ID(), garment); err != nil {
		return nil, err
	}
	if err := d.stack.Rename(base.ID(), GarmentLayerName); err != nil {
		return nil, err
	}
	if err := d.stack.SetLocked(base.ID(), true); err != nil {
		return nil, err
	}
	d.stack.Create("Layer 1")
	if err := d.stack.RefreshThumbnails(); err != nil {
		return nil, err
	}
	d.history.Reset(d.stack.Snapshot())
	Logger().Info("document opened from template",
		slog.String("template", t.Name()), slog.Int("width", t.Width), slog.Int("height", t.Height))
	return d, nil
}

func loadGarment(r io.Reader, t Template) (*surface.Surface, error) {
	img, err := surface.Decode(r)
	if err != nil {
		Logger().Warn("template image unreadable, using placeholder",
			slog.String("template", t.Name()), slog.String("error", err.Error()))
		return surface.Placeholder(t.Width, t.Height, "TEMPLATE IMAGE UNAVAILABLE")
	}
	if img.Width() == t.Width && img.Height() == t.Height {
		return img, nil
	}
	return img.Scale(t.Width, t.Height, surface.QualityCatmullRom)
}
