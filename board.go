// Package futarboard implements a live transit departure board for an RGB
// LED matrix, fed by the BKK Futár API.
package futarboard

import (
	"context"
	"image/color"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/homebkk/futarboard/internal/display"
	"github.com/homebkk/futarboard/internal/glow"
	"github.com/homebkk/futarboard/internal/layout"
	"github.com/homebkk/futarboard/internal/transit"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Daemon is the display process: it fetches departures on one cadence,
// renders the board on a faster one, and owns the matrix for its whole
// lifetime.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger

	// source and display are built from cfg unless already set; tests
	// inject fakes here.
	source  transit.Source
	display display.Display
}

// NewDaemon creates a new daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Run starts the daemon and blocks until the given context is canceled or
// the hardware fails. The matrix is cleared on the way out regardless of
// the cause.
func (d *Daemon) Run(ctx context.Context) error {
	if d.source == nil {
		client, err := transit.NewClient(transit.ClientConfig{
			BaseURL:   d.cfg.API.BaseURL,
			APIKey:    d.cfg.API.Key,
			StopIDs:   d.cfg.StopIDs(),
			TagByStop: d.cfg.TagByStop(),
		}, &http.Client{Timeout: time.Duration(d.cfg.Timing.FetchTimeout)})
		if err != nil {
			return errors.Wrap(err, "invalid configuration")
		}
		d.source = client
	}

	if d.display == nil {
		if d.cfg.Matrix.Device == "" {
			d.logger.Info("no matrix device configured, drawing to the console")
			d.display = display.NewConsole(os.Stdout, d.cfg.Matrix.Cols, d.cfg.Matrix.Rows)
		} else {
			disp, err := display.OpenSerial(
				d.cfg.Matrix.Device, d.cfg.Matrix.Baud,
				d.cfg.Matrix.Cols, d.cfg.Matrix.Rows, d.logger)
			if err != nil {
				return errors.Wrap(err, "failed to open display")
			}
			d.display = disp
		}
	}

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		<-ctx.Done()
		// The controller keeps refreshing whatever it last saw, so
		// blank it before letting go of the port. Closing also releases
		// the watcher's blocked read.
		if err := d.display.Clear(); err != nil {
			d.logger.Warn("failed to clear display on exit", "error", err)
		}
		if err := d.display.Close(); err != nil {
			d.logger.Warn("failed to close display", "error", err)
		}
		return ctx.Err()
	})

	errg.Go(func() error {
		return d.loop(ctx)
	})

	if w, ok := d.display.(display.Watcher); ok {
		errg.Go(func() error {
			return w.Watch(ctx)
		})
	}

	return errg.Wait()
}

// staleness tracks how old the displayed data is. The failure counter goes
// up by one per failed fetch and only ever resets to zero.
type staleness struct {
	lastSuccess time.Time
	failures    int
}

func (s *staleness) succeed(now time.Time) {
	s.lastSuccess = now
	s.failures = 0
}

func (s *staleness) fail() {
	s.failures++
}

// age returns the time since the last successful fetch. Before any success
// it reports an age long enough to saturate the staleness indicator.
func (s *staleness) age(now time.Time) time.Duration {
	if s.lastSuccess.IsZero() {
		return 24 * time.Hour
	}
	return now.Sub(s.lastSuccess)
}

func (d *Daemon) loop(ctx context.Context) error {
	lines, chars := d.cfg.GridShape()
	formatter, err := layout.New(lines, chars)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	renderer := display.NewRenderer(d.cfg.Matrix.Cols, d.cfg.Matrix.Rows)
	glowCfg := d.glowConfig()

	var info *transit.DisplayInfo
	var stale staleness

	fetch := func() {
		fctx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.Timing.FetchTimeout))
		defer cancel()

		fresh, err := d.source.Fetch(fctx)
		if err != nil {
			// Recoverable: keep showing the cached snapshot and let
			// the staleness bar do the talking.
			stale.fail()
			d.logger.Warn("fetch failed",
				"error", err,
				"consecutive_failures", stale.failures)
			return
		}

		info = fresh
		stale.succeed(time.Now())
		d.logger.Debug("fetched departures", "count", len(fresh.Departures))
	}

	render := func() error {
		now := time.Now()

		var departures []transit.Departure
		if info != nil {
			departures = info.Departures
		}

		rows := formatter.Format(departures, now)
		rows[0] = formatter.EncodeStaleness(rows[0], stale.age(now))

		r, g, b := glow.ColorAt(now, glowCfg)
		frame := renderer.Render(rows, color.RGBA{R: r, G: g, B: b, A: 255})

		if err := d.display.Blit(frame); err != nil {
			return errors.Wrap(err, "hardware failure")
		}
		return nil
	}

	d.logger.Info("starting display loop",
		"lines", lines,
		"chars", chars,
		"fetch_interval", time.Duration(d.cfg.Timing.FetchInterval).String(),
		"render_interval", time.Duration(d.cfg.Timing.RenderInterval).String())

	fetch()
	if err := render(); err != nil {
		return err
	}

	fetchTicker := time.NewTicker(time.Duration(d.cfg.Timing.FetchInterval))
	defer fetchTicker.Stop()
	renderTicker := time.NewTicker(time.Duration(d.cfg.Timing.RenderInterval))
	defer renderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("display loop stopping")
			return ctx.Err()

		case <-fetchTicker.C:
			fetch()

		case <-renderTicker.C:
			if err := render(); err != nil {
				return err
			}
		}
	}
}

// glowConfig builds the color signal configuration. The jitter interval
// matches the render cadence so the color never flickers between frames.
func (d *Daemon) glowConfig() glow.Config {
	cfg := glow.DefaultConfig()
	cfg.JitterInterval = time.Duration(d.cfg.Timing.RenderInterval)

	if d.cfg.Night.Start != "" || d.cfg.Night.End != "" {
		// Validate already checked these parse.
		cfg.NightStart, _ = parseClock(d.cfg.Night.Start)
		cfg.NightEnd, _ = parseClock(d.cfg.Night.End)
		cfg.MinBrightness = d.cfg.Night.MinBrightness
	}

	return cfg
}
