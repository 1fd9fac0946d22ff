package futarboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/homebkk/futarboard/internal/button"
	"github.com/homebkk/futarboard/internal/supervisor"
)

// Standby is the parent process in button-actuated operation. It owns the
// debouncer and the supervisor; the display loop runs in a child process
// because the matrix cannot be released in-process once initialized.
type Standby struct {
	cfg    *Config
	logger *slog.Logger
	sup    *supervisor.Supervisor
	deb    *button.Debouncer
}

// NewStandby creates a Standby using the given spawner for the display
// process.
func NewStandby(cfg *Config, spawn supervisor.SpawnFunc, logger *slog.Logger) *Standby {
	return &Standby{
		cfg:    cfg,
		logger: logger,
		sup:    supervisor.New(spawn, time.Duration(cfg.Button.Grace), logger),
		deb:    button.NewDebouncer(time.Duration(cfg.Button.Window)),
	}
}

// Run consumes press timestamps until the context is canceled. On the way
// out it deactivates the display so no child process outlives the parent.
func (s *Standby) Run(ctx context.Context, presses <-chan time.Time) error {
	defer s.sup.Deactivate()

	ticker := time.NewTicker(time.Duration(s.cfg.Button.SampleInterval))
	defer ticker.Stop()

	hold := time.Duration(s.cfg.Button.Hold)
	var enabledUntil time.Time

	s.logger.Info("standing by for button presses", "hold", hold.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case at, ok := <-presses:
			if !ok {
				presses = nil
				continue
			}

			switch s.deb.Sample(true, at) {
			case button.EdgeActivate:
				s.logger.Info("button activate")
				if err := s.sup.Activate(ctx); err != nil {
					s.logger.Error("failed to activate display", "error", err)
					s.deb.Reset()
					continue
				}
				enabledUntil = at.Add(hold)

			case button.EdgeDeactivate:
				s.logger.Info("button deactivate")
				s.sup.Deactivate()
			}

		case now := <-ticker.C:
			if !s.sup.Running() {
				// Either never started, turned off, or the child
				// died on its own; make the debouncer agree.
				if s.deb.Active(now) {
					s.deb.Reset()
				}
				continue
			}
			if hold > 0 && now.After(enabledUntil) {
				s.logger.Info("inactivity timeout, turning display off")
				s.sup.Deactivate()
				s.deb.Reset()
			}
		}
	}
}
