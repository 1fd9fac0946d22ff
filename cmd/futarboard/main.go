package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/homebkk/futarboard"
	"github.com/homebkk/futarboard/internal/button"
	"github.com/homebkk/futarboard/internal/supervisor"
	"github.com/spf13/pflag"
)

var (
	config     = "futarboard.toml"
	verbose    = false
	buttonMode = false
	childMode  = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVarP(&buttonMode, "button", "b", buttonMode,
		"stand by and drive the display from the configured button")
	pflag.BoolVar(&childMode, "display-child", childMode,
		"run as the spawned display process")
	pflag.CommandLine.MarkHidden("display-child")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if buttonMode && !childMode {
		return runStandby(ctx, cfg, logger)
	}
	return runDisplay(ctx, cfg, logger)
}

// runDisplay owns the matrix until the process dies. This is both the
// plain always-on mode and the child half of button operation.
func runDisplay(ctx context.Context, cfg *futarboard.Config, logger *slog.Logger) error {
	d, err := futarboard.NewDaemon(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}

// runStandby watches the button and spawns this same binary with
// --display-child for as long as the display should be on.
func runStandby(ctx context.Context, cfg *futarboard.Config, logger *slog.Logger) error {
	if cfg.Button.Pin == "" {
		return errors.New("button mode requires button.pin in the configuration")
	}

	presses, err := button.Watch(ctx, cfg.Button.Pin, logger)
	if err != nil {
		return fmt.Errorf("failed to watch button: %w", err)
	}

	childArgs := []string{"--display-child", "--config", config}
	if verbose {
		childArgs = append(childArgs, "--verbose")
	}
	spawn := supervisor.ChildSpawner(childArgs, logger)

	standby := futarboard.NewStandby(cfg, spawn, logger)
	if err := standby.Run(ctx, presses); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("standby failed: %w", err)
	}
	return nil
}

func readConfig() (*futarboard.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return futarboard.ParseConfig(f)
}
