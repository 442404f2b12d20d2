package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/gogpu/stitch"
	"github.com/gogpu/stitch/export"
	"github.com/gogpu/stitch/internal/config"
	"github.com/gogpu/stitch/printcolor"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Replay a drawing script and write print-ready files",
		ArgsUsage: "SCRIPT",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "Print preset name (default from config)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory (default from config)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "png, jpeg, tiff, bmp or pdf"},
			&cli.BoolFlag{Name: "bake", Usage: "Flatten non print-safe blend modes before export"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Export again whenever the config file changes"},
		},
		Action: runExport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("export: expected exactly one SCRIPT argument")
	}
	scriptPath := cmd.Args().First()
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := exportOnce(ctx, cmd, cfg, scriptPath); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}

	logger := stitch.Logger()
	return config.Watch(ctx, cmd.String("config"), func(c *config.Config, err error) {
		if err != nil {
			return
		}
		if err := exportOnce(ctx, cmd, c, scriptPath); err != nil {
			logger.Error("export failed", slog.String("error", err.Error()))
		}
	})
}

func exportOnce(ctx context.Context, cmd *cli.Command, cfg *config.Config, scriptPath string) error {
	sc, err := readScript(scriptPath)
	if err != nil {
		return err
	}

	presetName := cmd.String("preset")
	if presetName == "" {
		presetName = cfg.Export.DefaultPreset
	}
	preset, ok := cfg.Preset(presetName)
	if !ok {
		return fmt.Errorf("unknown preset %q", presetName)
	}

	opts, err := cfg.Export.PrintOptions()
	if err != nil {
		return err
	}
	if f := cmd.String("format"); f != "" {
		if opts.Format, err = export.ParseFormat(f); err != nil {
			return err
		}
	}
	if cmd.Bool("bake") {
		opts.Bake = true
	}
	dir := cfg.Export.Dir
	if o := cmd.String("out"); o != "" {
		dir = o
	}

	doc, err := sc.Document(cfg, preset)
	if err != nil {
		return err
	}
	if err := sc.Replay(doc, cfg); err != nil {
		return err
	}

	res, err := doc.Export(ctx, preset, opts, export.FileSink{Dir: dir}).Wait(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, f := range res.Files {
		fmt.Fprintln(stdout(cmd), f)
	}
	for _, w := range res.Spec.Warnings {
		fmt.Fprintln(stderr(cmd), "warning:", w)
	}
	return nil
}

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "List print and brush presets",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			brushes, err := cfg.BrushPresets()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRESET\tTRIM\tDPI\tOUTPUT")
			for _, p := range cfg.Presets {
				def := ""
				if p.Name == cfg.Export.DefaultPreset {
					def = " *"
				}
				fmt.Fprintf(tw, "%s%s\t%gx%g in\t%g\t%s\n", p.Name, def, p.WidthIn, p.HeightIn, p.DPI, p.OutputDims())
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "BRUSH\tSIZE\tBLEND\tCOLOR")
			for _, b := range brushes {
				s := b.Settings
				fmt.Fprintf(tw, "%s\t%g\t%s\t%s\n", b.Name, s.Size, s.BlendMode,
					printcolor.RGBToHex(printcolor.RGB{R: s.Color.R, G: s.Color.G, B: s.Color.B}))
			}
			return tw.Flush()
		},
	}
}

func colorCommand() *cli.Command {
	return &cli.Command{
		Name:      "color",
		Usage:     "Check colors against the print gamut",
		ArgsUsage: "HEX...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("color: expected at least one HEX argument")
			}
			out := stdout(cmd)
			var errs []error
			for _, hex := range cmd.Args().Slice() {
				info, err := printcolor.GetColorInfo(hex)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "%s  saturation %.2f  nearest %s (%s)\n",
					info.Hex, info.Saturation, info.Nearest.Name, info.Nearest.Hex())
				if msg, ok := info.Warning(); ok {
					fmt.Fprintf(out, "  warning: %s\n", msg)
				}
			}
			return errors.Join(errs...)
		},
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
