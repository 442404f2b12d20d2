package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/stitch/blend"
	"github.com/gogpu/stitch/brush"
	"github.com/gogpu/stitch/export"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefault()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Presets) == 0 || len(cfg.Brushes) != len(brush.Presets()) {
		t.Errorf("presets=%d brushes=%d", len(cfg.Presets), len(cfg.Brushes))
	}
}

func TestBrushRoundTrip(t *testing.T) {
	for _, p := range brush.Presets() {
		got, err := FromBrush(p).Settings()
		if err != nil {
			t.Errorf("%s: %v", p.Name, err)
			continue
		}
		if got != p.Settings {
			t.Errorf("%s: settings = %+v, want %+v", p.Name, got, p.Settings)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("STITCH_TEST_OUT", "/tmp/stitch-out")
	dir := t.TempDir()
	path := writeFile(t, dir, "stitch.yaml", `
app:
  log_level: debug
  log_format: json
canvas:
  width: 1200
  height: 1800
export:
  dir: ${STITCH_TEST_OUT}
  format: tiff
  bake: true
  default_preset: poster
gesture:
  hold: 1s
presets:
  - name: poster
    width_in: 18
    height_in: 24
    dpi: 150
    bleed_in: 0.25
brushes:
  - name: chalk
    size: 20
    opacity: 0.6
    flow: 0.3
    hardness: 0.4
    spacing: 0.2
    color: "#F5F5DC"
    blend_mode: screen
    curve: soft
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Canvas.Width != 1200 || cfg.Canvas.HistoryLimit != 100 {
		t.Errorf("canvas = %+v (history limit should keep its default)", cfg.Canvas)
	}
	if cfg.Export.Dir != "/tmp/stitch-out" {
		t.Errorf("export dir = %q, want env expansion", cfg.Export.Dir)
	}
	if g := cfg.Gesture.Recognizer(); g.HoldDuration != time.Second || g.TapMaxDuration != 250*time.Millisecond {
		t.Errorf("gesture = %+v", g)
	}
	p, ok := cfg.Preset("poster")
	if !ok || p.OutputDims().W != 18*150+2*38 {
		t.Errorf("poster preset = %+v", p)
	}
	if len(cfg.Presets) != 1 {
		t.Errorf("presets list should replace the defaults, got %d", len(cfg.Presets))
	}

	opts, err := cfg.Export.PrintOptions()
	if err != nil || opts.Format != export.TIFF || !opts.Bake {
		t.Errorf("PrintOptions() = %+v, %v", opts, err)
	}

	brushes, err := cfg.BrushPresets()
	if err != nil {
		t.Fatal(err)
	}
	chalk := brushes[0].Settings
	if chalk.BlendMode != blend.Screen || chalk.PressureCurve != brush.CurveSoft || chalk.Color.R != 0xf5 || chalk.Color.B != 0xdc {
		t.Errorf("chalk = %+v", chalk)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"dpi out of range", "presets:\n  - {name: big, width_in: 10, height_in: 10, dpi: 1200}\nexport: {default_preset: ''}\n", "presets[0]"},
		{"duplicate preset", "presets:\n  - {name: a, width_in: 1, height_in: 1, dpi: 300}\n  - {name: a, width_in: 2, height_in: 2, dpi: 300}\nexport: {default_preset: a}\n", "duplicate"},
		{"missing default preset", "export: {default_preset: nope}\n", "nope"},
		{"bad format", "export: {format: gif}\n", "export"},
		{"bad brush color", "brushes:\n  - {name: x, size: 5, spacing: 0.1, color: '#12'}\n", "brushes[0]"},
		{"bad log format", "app: {log_format: xml}\n", "app"},
		{"zero canvas", "canvas: {width: 0}\n", "canvas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", tt.body)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("LoadFile() succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Width != NewDefault().Canvas.Width {
		t.Error("missing file did not yield defaults")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "canvas: [1, 2\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("LoadFile() error = %v", err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stitch.yaml", "canvas: {width: 100, height: 100}\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config, err error) {
			if err != nil {
				return
			}
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Writes may race with watcher start-up; keep writing until a reload lands.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Canvas.Width != 640 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() error: %v", err)
			}
			return
		case <-tick.C:
			writeFile(t, dir, "stitch.yaml", "canvas: {width: 640, height: 480}\n")
		case <-deadline:
			t.Fatal("no reload within 10s")
		}
	}
}
