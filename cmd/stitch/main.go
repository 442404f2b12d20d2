// Command stitch renders drawing scripts into print-ready garment files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/gogpu/stitch"
	"github.com/gogpu/stitch/internal/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
		Value:   "stitch.yaml",
		Sources: cli.EnvVars("STITCH_CONFIG_FILE"),
	}
}

// setup loads the config named by the command's flags and installs the
// logger it describes.
func setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadOptional(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	stitch.SetLogger(newLogger(cfg.App))
	return cfg, nil
}

func newLogger(c config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	cmd := &cli.Command{
		Name:  "stitch",
		Usage: "Garment drawing and print-ready export",
		Commands: []*cli.Command{
			exportCommand(),
			presetsCommand(),
			colorCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("stitch error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
