package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/internal/logging"
	"github.com/gogpu/stitch/layer"
	"github.com/gogpu/stitch/printcolor"
	"github.com/gogpu/stitch/surface"
)

// DefaultColorProfile is recorded when PrintOptions leaves it empty.
const DefaultColorProfile = "sRGB IEC61966-2.1"

// DefaultAuditLimit caps the color findings listed in a spec.
const DefaultAuditLimit = 8

// PrintOptions controls ExportPrintReady.
type PrintOptions struct {
	Format       Format
	Transparent  bool
	Background   color.Color
	ColorProfile string
	Quality      int
	// Bake flattens layers with non print-safe blend modes before export.
	Bake bool
	// AuditLimit caps color findings; zero means DefaultAuditLimit and a
	// negative value disables the audit.
	AuditLimit int
}

func (o PrintOptions) withDefaults() PrintOptions {
	if o.ColorProfile == "" {
		o.ColorProfile = DefaultColorProfile
	}
	if o.AuditLimit == 0 {
		o.AuditLimit = DefaultAuditLimit
	}
	return o
}

// PrintResult holds everything produced by one print-ready export.
type PrintResult struct {
	Raster   *Result
	Spec     *Spec
	SpecJSON []byte
	SpecPDF  []byte
	// Files lists the names handed to the sink by a Job.
	Files []string
}

// BlendModeWarning explains why a blend mode is risky in print. Print-safe
// modes return false.
func BlendModeWarning(m blend.Mode) (string, bool) {
	if m.PrintSafe() {
		return "", false
	}
	return fmt.Sprintf("blend mode %q may not reproduce in print; bake the layer or switch to a print-safe mode", m), true
}

// ExportPrintReady renders snap at the preset's physical size with bleed
// and builds its production spec. Raster and spec are derived from the
// same snapshot.
func ExportPrintReady(ctx context.Context, snap *layer.Snapshot, preset Preset, opts PrintOptions) (*PrintResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidRequest)
	}
	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %v", ErrInvalidRequest, opts.Format)
	}
	opts = opts.withDefaults()
	start := time.Now()

	unsafe := snap.UnsafeLayers()
	src := snap
	baked := 0
	if opts.Bake && len(unsafe) > 0 {
		src = snap.Bake()
		baked = len(unsafe)
	}
	composite := src.Composite()

	trim, bleed := preset.PixelDims(), preset.BleedPx()
	out := trim.Inflate(bleed)
	oversize := surface.CheckSize(out.W, out.H) != nil

	spec := &Spec{
		ID:           uuid.NewString(),
		CreatedAt:    start,
		Preset:       preset.Name,
		WidthIn:      preset.WidthIn,
		HeightIn:     preset.HeightIn,
		BleedIn:      preset.BleedIn,
		DPI:          preset.DPI,
		Trim:         trim,
		Output:       out,
		BleedPx:      bleed,
		ColorProfile: opts.ColorProfile,
		Format:       opts.Format,
		Transparent:  opts.Transparent,
		Baked:        baked > 0,
		Placeholder:  oversize,
	}
	for _, info := range src.Layers() {
		spec.Layers = append(spec.Layers, LayerEntry{
			Name:      info.Name,
			BlendMode: info.BlendMode,
			Opacity:   info.Opacity,
			Visible:   info.Visible,
			PrintSafe: info.BlendMode.PrintSafe(),
		})
	}
	for _, info := range unsafe {
		msg, _ := BlendModeWarning(info.BlendMode)
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("layer %q: %s", info.Name, msg))
	}
	spec.Warnings = append(spec.Warnings, formatWarnings(opts.Format, opts.Transparent)...)
	if oversize {
		spec.Warnings = append(spec.Warnings, placeholderWarning(out.W, out.H))
	}

	res := &PrintResult{Spec: spec}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := renderPrint(gctx, composite, preset, opts, oversize)
		if err != nil {
			return err
		}
		res.Raster = r
		return nil
	})
	g.Go(func() error {
		if opts.AuditLimit > 0 {
			spec.Colors = printcolor.Audit(composite.Image(), opts.AuditLimit)
			for _, f := range spec.Colors {
				if msg, ok := printcolor.GenerateColorWarning(f.Hex); ok {
					spec.Warnings = append(spec.Warnings, msg)
				}
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		spec.Notes = productionNotes(spec, baked)

		js, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return fmt.Errorf("export: spec json: %w", err)
		}
		res.SpecJSON = js

		preview, err := composite.Thumbnail(250, 250)
		if err != nil {
			return err
		}
		var sheet bytes.Buffer
		if err := spec.WriteSheet(&sheet, preview); err != nil {
			return err
		}
		res.SpecPDF = sheet.Bytes()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Raster.Warnings = spec.Warnings

	logging.Logger().Info("print export finished",
		slog.String("id", spec.ID),
		slog.String("preset", preset.Name),
		slog.String("output", out.String()),
		slog.Bool("placeholder", oversize),
		slog.Int("warnings", len(spec.Warnings)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

// renderPrint produces the encoded raster: the composite scaled to the
// trim size, then grown by edge-extended bleed.
func renderPrint(ctx context.Context, composite *surface.Surface, preset Preset, opts PrintOptions, oversize bool) (*Result, error) {
	trim, bleed := preset.PixelDims(), preset.BleedPx()
	out := trim.Inflate(bleed)

	var final *surface.Surface
	if oversize {
		p, err := placeholder(out.W, out.H)
		if err != nil {
			return nil, err
		}
		final = p
	} else {
		r, err := render(ctx, composite, trim.W, trim.H, opts.Transparent, opts.Background)
		if err != nil {
			return nil, err
		}
		if final, err = r.ExtendEdges(bleed); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := encode(final, opts.Format, preset.DPI, opts.Quality)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:        data,
		Format:      opts.Format,
		Width:       final.Width(),
		Height:      final.Height(),
		DPI:         preset.DPI,
		Placeholder: oversize,
	}, nil
}
