package main

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/stitch"
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/export"
	"github.com/gogpu/stitch/geom"
	"github.com/gogpu/stitch/internal/config"
	"github.com/gogpu/stitch/layer"
	"github.com/gogpu/stitch/printcolor"
)

// script is a recorded drawing session. Layers are referenced by name.
type script struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Garment   string     `json:"garment"`
	View      string     `json:"view"`
	PrintArea [4]int     `json:"printArea"`
	SafeArea  [4]int     `json:"safeArea"`
	Ops       []scriptOp `json:"ops"`
}

type scriptOp struct {
	Op       string       `json:"op"`
	Name     string       `json:"name,omitempty"`
	Layer    string       `json:"layer,omitempty"`
	Layers   []string     `json:"layers,omitempty"`
	Property string       `json:"property,omitempty"`
	Value    any          `json:"value,omitempty"`
	Preset   string       `json:"preset,omitempty"`
	Color    string       `json:"color,omitempty"`
	Size     float64      `json:"size,omitempty"`
	From     int          `json:"from,omitempty"`
	To       int          `json:"to,omitempty"`
	Points   [][3]float64 `json:"points,omitempty"`
}

func readScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	return &sc, nil
}

func documentOptions(cfg *config.Config) []stitch.Option {
	n := cfg.Canvas.ThumbnailSize
	return []stitch.Option{
		stitch.WithHistoryLimit(cfg.Canvas.HistoryLimit),
		stitch.WithThumbnailSize(n, n),
		stitch.WithGestureConfig(cfg.Gesture.Recognizer()),
	}
}

// Document creates the canvas the script draws on.
func (sc *script) Document(cfg *config.Config, preset export.Preset) (*stitch.Document, error) {
	w, h := sc.Width, sc.Height
	if w == 0 || h == 0 {
		w, h = cfg.Canvas.Width, cfg.Canvas.Height
	}
	if sc.Garment == "" {
		return stitch.New(w, h, documentOptions(cfg)...)
	}
	f, err := os.Open(sc.Garment)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a, s := sc.PrintArea, sc.SafeArea
	return stitch.NewFromTemplate(stitch.Template{
		GarmentID: strings.TrimSuffix(filepath.Base(sc.Garment), filepath.Ext(sc.Garment)),
		View:      sc.View,
		Width:     w,
		Height:    h,
		PrintArea: image.Rect(a[0], a[1], a[2], a[3]),
		SafeArea:  image.Rect(s[0], s[1], s[2], s[3]),
		Preset:    preset,
	}, f, documentOptions(cfg)...)
}

// Replay applies every operation in order and stops at the first failure.
func (sc *script) Replay(doc *stitch.Document, cfg *config.Config) error {
	brushes, err := cfg.BrushPresets()
	if err != nil {
		return err
	}
	t := time.Now()
	for i, op := range sc.Ops {
		if err := replayOp(doc, op, brushes, &t); err != nil {
			return fmt.Errorf("ops[%d] %s: %w", i, op.Op, err)
		}
	}
	return nil
}

func replayOp(doc *stitch.Document, op scriptOp, brushes []brush.Preset, t *time.Time) error {
	switch op.Op {
	case "layer":
		doc.CreateLayer(op.Name)
		return nil
	case "select":
		id, err := layerID(doc, op.Layer)
		if err != nil {
			return err
		}
		return doc.SetActiveLayer(id)
	case "delete":
		id, err := layerID(doc, op.Layer)
		if err != nil {
			return err
		}
		return doc.DeleteLayer(id)
	case "duplicate":
		id, err := layerID(doc, op.Layer)
		if err != nil {
			return err
		}
		_, err = doc.DuplicateLayer(id)
		return err
	case "reorder":
		return doc.ReorderLayer(op.From, op.To)
	case "set":
		id, err := layerID(doc, op.Layer)
		if err != nil {
			return err
		}
		p, err := layer.ParseProperty(op.Property)
		if err != nil {
			return err
		}
		return doc.SetLayerProperty(id, p, op.Value)
	case "group":
		ids := make([]string, 0, len(op.Layers))
		for _, name := range op.Layers {
			id, err := layerID(doc, name)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		_, err := doc.GroupLayers(op.Name, ids...)
		return err
	case "brush":
		return applyBrush(doc, op, brushes)
	case "stroke":
		return stroke(doc, op.Points, t)
	case "clear":
		return doc.ClearActiveLayer()
	case "undo":
		doc.Undo()
		return nil
	case "redo":
		doc.Redo()
		return nil
	}
	return fmt.Errorf("unknown op %q", op.Op)
}

func layerID(doc *stitch.Document, name string) (string, error) {
	for _, l := range doc.Layers() {
		if l.Name == name {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", layer.ErrLayerNotFound, name)
}

func applyBrush(doc *stitch.Document, op scriptOp, brushes []brush.Preset) error {
	s := doc.Brush()
	if op.Preset != "" {
		found := false
		for _, b := range brushes {
			if b.Name == op.Preset {
				s, found = b.Settings, true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown brush preset %q", op.Preset)
		}
	}
	if op.Color != "" {
		c, err := printcolor.HexToRGB(op.Color)
		if err != nil {
			return err
		}
		s.Color.R, s.Color.G, s.Color.B = c.R, c.G, c.B
	}
	if op.Size > 0 {
		s.Size = op.Size
	}
	return doc.SetBrush(s)
}

// stroke draws one stroke through points of x, y and pressure, spaced
// 8ms apart.
func stroke(doc *stitch.Document, pts [][3]float64, t *time.Time) error {
	if len(pts) == 0 {
		return fmt.Errorf("stroke without points")
	}
	const step = 8 * time.Millisecond
	if err := doc.StartStroke(geom.V(pts[0][0], pts[0][1]), pts[0][2], *t); err != nil {
		return err
	}
	for _, p := range pts[1:] {
		*t = t.Add(step)
		if err := doc.AddPoint(geom.V(p[0], p[1]), p[2], *t); err != nil {
			doc.CancelStroke()
			return err
		}
	}
	*t = t.Add(step)
	return doc.EndStroke()
}
