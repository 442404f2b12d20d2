package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/dpi"
	"github.com/gogpu/stitch/printcolor"
	"github.com/gogpu/stitch/surface"
)

// Spec is the production specification shipped with a print-ready raster.
type Spec struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"createdAt"`
	Preset       string               `json:"preset"`
	WidthIn      float64              `json:"widthIn"`
	HeightIn     float64              `json:"heightIn"`
	BleedIn      float64              `json:"bleedIn"`
	DPI          float64              `json:"dpi"`
	Trim         dpi.Dims             `json:"trim"`
	Output       dpi.Dims             `json:"output"`
	BleedPx      int                  `json:"bleedPx"`
	ColorProfile string               `json:"colorProfile"`
	Format       Format               `json:"format"`
	Transparent  bool                 `json:"transparent"`
	Baked        bool                 `json:"baked"`
	Placeholder  bool                 `json:"placeholder"`
	Layers       []LayerEntry         `json:"layers"`
	Colors       []printcolor.Finding `json:"colorFindings,omitempty"`
	Warnings     []string             `json:"warnings"`
	Notes        []string             `json:"productionNotes"`
}

// LayerEntry describes one layer of the exported document.
type LayerEntry struct {
	Name      string     `json:"name"`
	BlendMode blend.Mode `json:"blendMode"`
	Opacity   float64    `json:"opacity"`
	Visible   bool       `json:"visible"`
	PrintSafe bool       `json:"printSafe"`
}

// productionNotes renders the human-readable notes for printers.
func productionNotes(s *Spec, bakedLayers int) []string {
	p := message.NewPrinter(language.English)
	notes := []string{
		p.Sprintf("Print area %.2f x %.2f in at %d DPI.", s.WidthIn, s.HeightIn, int(s.DPI)),
		p.Sprintf("Output %d x %d px (%d px bleed on each side).", s.Output.W, s.Output.H, s.BleedPx),
	}
	if s.BleedPx > 0 {
		notes = append(notes, p.Sprintf("Trim %.3f in from every edge. Keep critical artwork at least %.3f in inside the trim line.", s.BleedIn, s.BleedIn))
	}
	if s.Transparent {
		notes = append(notes, "Transparent background: print directly onto the garment color.")
	} else {
		notes = append(notes, "Opaque background: the full print area carries ink.")
	}
	notes = append(notes, p.Sprintf("Color profile: %s.", s.ColorProfile))
	if bakedLayers > 0 {
		notes = append(notes, p.Sprintf("%d layer(s) with non print-safe blend modes were flattened before export.", bakedLayers))
	}
	if n := len(s.Colors); n > 0 {
		notes = append(notes, p.Sprintf("%d color region(s) may clip in print; see warnings for spot color substitutes.", n))
	}
	if s.Placeholder {
		notes = append(notes, "PLACEHOLDER RASTER: do not print. Re-export at a lower resolution.")
	}
	return notes
}

// WriteSheet renders s as a one-page PDF with an optional preview image.
func (s *Spec) WriteSheet(w io.Writer, preview *surface.Surface) error {
	pdf := gofpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(0.75, 0.75, 0.75)
	pdf.SetTitle("Print specification "+s.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 0.4, "Print specification", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 0.25, fmt.Sprintf("%s  %s", s.ID, s.CreatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	pdf.Ln(0.1)

	if preview != nil {
		var img bytes.Buffer
		if err := preview.Encode(&img, surface.PNG, 0); err != nil {
			return err
		}
		pw, ph := surface.FitSize(preview.Width(), preview.Height(), 250, 250)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("preview", opts, &img)
		pdf.ImageOptions("preview", 5.25, 0.75, float64(pw)/100, float64(ph)/100, false, opts, 0, "")
	}

	field := func(k, v string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(1.5, 0.25, k, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 0.25, v, "", 1, "L", false, 0, "")
	}
	field("Preset", s.Preset)
	field("Print size", fmt.Sprintf("%.3f x %.3f in", s.WidthIn, s.HeightIn))
	field("Resolution", fmt.Sprintf("%g DPI", s.DPI))
	field("Bleed", fmt.Sprintf("%.3f in (%d px)", s.BleedIn, s.BleedPx))
	field("Trim pixels", s.Trim.String())
	field("Output pixels", s.Output.String())
	field("Format", s.Format.String())
	field("Color profile", s.ColorProfile)
	field("Transparent", fmt.Sprint(s.Transparent))
	field("Baked", fmt.Sprint(s.Baked))
	pdf.Ln(0.2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 0.3, "Layers", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range []struct {
		w float64
		s string
	}{{3, "Name"}, {1.2, "Blend"}, {0.9, "Opacity"}, {0.9, "Visible"}, {0.9, "Print-safe"}} {
		pdf.CellFormat(h.w, 0.25, h.s, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range s.Layers {
		pdf.CellFormat(3, 0.22, l.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(1.2, 0.22, l.BlendMode.String(), "", 0, "L", false, 0, "")
		pdf.CellFormat(0.9, 0.22, fmt.Sprintf("%.0f%%", l.Opacity*100), "", 0, "L", false, 0, "")
		pdf.CellFormat(0.9, 0.22, yesNo(l.Visible), "", 0, "L", false, 0, "")
		pdf.CellFormat(0.9, 0.22, yesNo(l.PrintSafe), "", 1, "L", false, 0, "")
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		pdf.Ln(0.2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 0.3, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, line := range lines {
			pdf.MultiCell(0, 0.2, "- "+line, "", "L", false)
		}
	}
	section("Warnings", s.Warnings)
	section("Production notes", s.Notes)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: spec sheet: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
