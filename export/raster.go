package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jung-kurt/gofpdf"

	"github.com/gogpu/stitch/dpi"
	"github.com/gogpu/stitch/internal/logging"
	"github.com/gogpu/stitch/surface"
)

// ErrInvalidRequest is returned for malformed export parameters.
var ErrInvalidRequest = errors.New("export: invalid request")

// placeholderMax bounds each side of a placeholder raster.
const placeholderMax = 2048

// Request describes a single raster export.
type Request struct {
	Width, Height int
	DPI           float64
	Format        Format
	Transparent   bool
	Background    color.Color // nil means white; ignored when Transparent
	ColorProfile  string
	Quality       int // JPEG only
}

// Validate checks the request against the supported ranges.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Width, validation.Required, validation.Min(1)),
		validation.Field(&r.Height, validation.Required, validation.Min(1)),
		validation.Field(&r.DPI, validation.Required, validation.By(dpiRule)),
		validation.Field(&r.Format, validation.By(formatRule)),
		validation.Field(&r.Quality, validation.Min(0), validation.Max(100)),
	)
}

func formatRule(v any) error {
	if f, ok := v.(Format); ok && !f.Valid() {
		return fmt.Errorf("unknown format %v", f)
	}
	return nil
}

// Result is an encoded export.
type Result struct {
	Data        []byte
	Format      Format
	Width       int
	Height      int
	DPI         float64
	Placeholder bool
	Warnings    []string
}

// ExportRaster resamples composite to the requested size and encodes it.
// The background is filled only when the request is opaque. A size over
// the pixel budget yields a placeholder instead of an error.
func ExportRaster(ctx context.Context, composite *surface.Surface, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if composite == nil {
		return nil, fmt.Errorf("%w: nil composite", ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Format: req.Format, DPI: req.DPI}
	res.Warnings = formatWarnings(req.Format, req.Transparent)

	var out *surface.Surface
	if surface.CheckSize(req.Width, req.Height) != nil {
		p, err := placeholder(req.Width, req.Height)
		if err != nil {
			return nil, err
		}
		out = p
		res.Placeholder = true
		res.Warnings = append(res.Warnings, placeholderWarning(req.Width, req.Height))
	} else {
		r, err := render(ctx, composite, req.Width, req.Height, req.Transparent, req.Background)
		if err != nil {
			return nil, err
		}
		out = r
	}

	data, err := encode(out, req.Format, req.DPI, req.Quality)
	if err != nil {
		return nil, err
	}
	res.Data = data
	res.Width, res.Height = out.Width(), out.Height()
	return res, nil
}

// render draws composite scaled to w x h onto a fresh surface.
func render(ctx context.Context, composite *surface.Surface, w, h int, transparent bool, bg color.Color) (*surface.Surface, error) {
	out, err := surface.New(w, h)
	if err != nil {
		return nil, err
	}
	if !transparent {
		if bg == nil {
			bg = color.White
		}
		out.Fill(bg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	composite.ScaleInto(out, out.Bounds(), surface.QualityCatmullRom)
	return out, ctx.Err()
}

func placeholder(w, h int) (*surface.Surface, error) {
	logging.Logger().Warn("export over pixel budget, using placeholder",
		slog.Int("width", w), slog.Int("height", h))
	pw, ph := surface.FitSize(w, h, placeholderMax, placeholderMax)
	return surface.Placeholder(pw, ph, fmt.Sprintf("PLACEHOLDER %dx%d px NOT RENDERED", w, h))
}

func placeholderWarning(w, h int) string {
	return fmt.Sprintf("%dx%d px exceeds the render budget; a placeholder was exported instead", w, h)
}

func formatWarnings(f Format, transparent bool) []string {
	if transparent && !f.SupportsAlpha() {
		return []string{fmt.Sprintf("%v does not store transparency; the background was flattened to white", f)}
	}
	return nil
}

func encode(s *surface.Surface, f Format, res float64, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if f == PDF {
		if err := encodePDF(&buf, s, res); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := s.Encode(&buf, f.raster(), quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodePDF places s on a single page sized to its physical dimensions.
func encodePDF(w *bytes.Buffer, s *surface.Surface, res float64) error {
	var img bytes.Buffer
	if err := s.Encode(&img, surface.PNG, 0); err != nil {
		return err
	}
	wIn, hIn := dpi.PxToIn(s.Width(), res), dpi.PxToIn(s.Height(), res)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           gofpdf.SizeType{Wd: wIn, Ht: hIn},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("artwork", opts, &img)
	pdf.ImageOptions("artwork", 0, 0, wIn, hIn, false, opts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return nil
}
