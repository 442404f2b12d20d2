package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/export"
	"github.com/gogpu/stitch/gesture"
	"github.com/gogpu/stitch/printcolor"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the stitch configuration.
type Config struct {
	App     AppConfig       `yaml:"app"`
	Canvas  CanvasConfig    `yaml:"canvas"`
	Gesture GestureConfig   `yaml:"gesture"`
	Export  ExportConfig    `yaml:"export"`
	Presets []export.Preset `yaml:"presets"`
	Brushes []BrushPreset   `yaml:"brushes"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Canvas.Validate(); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	if err := c.Gesture.Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	seen := make(map[string]bool)
	for i, p := range c.Presets {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("presets[%d]: %w", i, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("presets[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
	}
	if c.Export.DefaultPreset != "" {
		if _, ok := c.Preset(c.Export.DefaultPreset); !ok {
			return fmt.Errorf("export: default preset %q not defined", c.Export.DefaultPreset)
		}
	}
	for i, b := range c.Brushes {
		if _, err := b.Settings(); err != nil {
			return fmt.Errorf("brushes[%d] %s: %w", i, b.Name, err)
		}
	}
	return nil
}

// Preset finds a print preset by name.
func (c *Config) Preset(name string) (export.Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return export.Preset{}, false
}

// BrushPresets converts the configured brushes.
func (c *Config) BrushPresets() ([]brush.Preset, error) {
	out := make([]brush.Preset, 0, len(c.Brushes))
	for _, b := range c.Brushes {
		s, err := b.Settings()
		if err != nil {
			return nil, fmt.Errorf("brush %s: %w", b.Name, err)
		}
		out = append(out, brush.Preset{Name: b.Name, Settings: s})
	}
	return out, nil
}

// AppConfig holds process-level configuration.
type AppConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// CanvasConfig holds document defaults.
type CanvasConfig struct {
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	HistoryLimit  int `yaml:"history_limit"`
	ThumbnailSize int `yaml:"thumbnail_size"`
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1)),
		validation.Field(&c.Height, validation.Required, validation.Min(1)),
		validation.Field(&c.HistoryLimit, validation.Min(0)),
		validation.Field(&c.ThumbnailSize, validation.Min(8), validation.Max(1024)),
	)
}

// GestureConfig overrides gesture timings. Zero values keep the defaults.
type GestureConfig struct {
	TapMax    time.Duration `yaml:"tap_max"`
	Hold      time.Duration `yaml:"hold"`
	DrawGrace time.Duration `yaml:"draw_grace"`
	EdgeWidth float64       `yaml:"edge_width"`
}

// Validate validates the gesture configuration.
func (c *GestureConfig) Validate() error {
	return c.Recognizer().Validate()
}

// Recognizer returns the gesture thresholds with the overrides applied.
func (c *GestureConfig) Recognizer() gesture.Config {
	g := gesture.DefaultConfig()
	if c.TapMax > 0 {
		g.TapMaxDuration = c.TapMax
	}
	if c.Hold > 0 {
		g.HoldDuration = c.Hold
	}
	if c.DrawGrace > 0 {
		g.DrawGrace = c.DrawGrace
	}
	if c.EdgeWidth > 0 {
		g.EdgeWidth = c.EdgeWidth
	}
	return g
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir           string `yaml:"dir"`
	Format        string `yaml:"format"`
	ColorProfile  string `yaml:"color_profile"`
	Bake          bool   `yaml:"bake"`
	Transparent   bool   `yaml:"transparent"`
	Quality       int    `yaml:"quality"`
	DefaultPreset string `yaml:"default_preset"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.By(func(v any) error {
			_, err := export.ParseFormat(v.(string))
			return err
		})),
		validation.Field(&c.Quality, validation.Min(0), validation.Max(100)),
	)
}

// PrintOptions converts the defaults into export options.
func (c *ExportConfig) PrintOptions() (export.PrintOptions, error) {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.PrintOptions{}, err
	}
	return export.PrintOptions{
		Format:       f,
		Transparent:  c.Transparent,
		ColorProfile: c.ColorProfile,
		Quality:      c.Quality,
		Bake:         c.Bake,
	}, nil
}

// BrushPreset is a brush as written in a config file.
type BrushPreset struct {
	Name      string  `yaml:"name"`
	Size      float64 `yaml:"size"`
	Opacity   float64 `yaml:"opacity"`
	Flow      float64 `yaml:"flow"`
	Hardness  float64 `yaml:"hardness"`
	Smoothing float64 `yaml:"smoothing"`
	Spacing   float64 `yaml:"spacing"`

	PressureSize    float64 `yaml:"pressure_size"`
	PressureOpacity float64 `yaml:"pressure_opacity"`
	Curve           string  `yaml:"curve"`

	Color     string `yaml:"color"`
	BlendMode string `yaml:"blend_mode"`
	Eraser    bool   `yaml:"eraser"`
}

// Settings parses and validates the preset.
func (b BrushPreset) Settings() (brush.Settings, error) {
	if strings.TrimSpace(b.Name) == "" {
		return brush.Settings{}, fmt.Errorf("%w: missing name", brush.ErrInvalidSettings)
	}
	s := brush.Settings{
		Size:                      b.Size,
		Opacity:                   b.Opacity,
		Flow:                      b.Flow,
		Hardness:                  b.Hardness,
		Smoothing:                 b.Smoothing,
		Spacing:                   b.Spacing,
		PressureSizeMultiplier:    b.PressureSize,
		PressureOpacityMultiplier: b.PressureOpacity,
		IsEraser:                  b.Eraser,
		Color:                     color.NRGBA{A: 0xff},
	}
	if b.Curve != "" {
		c, err := brush.ParseCurve(b.Curve)
		if err != nil {
			return brush.Settings{}, err
		}
		s.PressureCurve = c
	}
	if b.BlendMode != "" {
		m, err := blend.Parse(b.BlendMode)
		if err != nil {
			return brush.Settings{}, err
		}
		s.BlendMode = m
	}
	if b.Color != "" {
		rgb, err := printcolor.HexToRGB(b.Color)
		if err != nil {
			return brush.Settings{}, err
		}
		s.Color = color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}
	}
	return s, s.Validate()
}

// FromBrush converts a brush preset into its config form. Color alpha is
// not represented.
func FromBrush(p brush.Preset) BrushPreset {
	s := p.Settings
	return BrushPreset{
		Name:            p.Name,
		Size:            s.Size,
		Opacity:         s.Opacity,
		Flow:            s.Flow,
		Hardness:        s.Hardness,
		Smoothing:       s.Smoothing,
		Spacing:         s.Spacing,
		PressureSize:    s.PressureSizeMultiplier,
		PressureOpacity: s.PressureOpacityMultiplier,
		Curve:           s.PressureCurve.String(),
		Color:           printcolor.RGBToHex(printcolor.RGB{R: s.Color.R, G: s.Color.G, B: s.Color.B}),
		BlendMode:       s.BlendMode.String(),
		Eraser:          s.IsEraser,
	}
}

// NewDefault returns a new Config with sensible default values.
func NewDefault() *Config {
	var brushes []BrushPreset
	for _, p := range brush.Presets() {
		brushes = append(brushes, FromBrush(p))
	}
	return &Config{
		App: AppConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Canvas: CanvasConfig{
			Width:         2400,
			Height:        3200,
			HistoryLimit:  100,
			ThumbnailSize: 96,
		},
		Export: ExportConfig{
			Dir:           "./exports",
			Format:        "png",
			ColorProfile:  export.DefaultColorProfile,
			Transparent:   true,
			DefaultPreset: "tee-front",
		},
		Presets: export.Presets(),
		Brushes: brushes,
	}
}
