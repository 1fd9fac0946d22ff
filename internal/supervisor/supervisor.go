// Package supervisor owns the child process that runs the display loop.
//
// The matrix hardware cannot be released once initialized, so the display
// runs in a child process whose whole lifetime is the hardware's lifetime.
// The supervisor is the only owner of that process: it spawns on activate,
// terminates on deactivate, and never holds more than one child at a time.
package supervisor

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// Process is a running child. Done is closed when the process has exited
// and been reaped.
type Process interface {
	Signal(sig os.Signal) error
	Kill() error
	Done() <-chan struct{}
}

// SpawnFunc starts a new child process.
type SpawnFunc func(ctx context.Context) (Process, error)

// Supervisor manages at most one child process running the display loop.
type Supervisor struct {
	spawn  SpawnFunc
	grace  time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	child Process
}

// New creates a Supervisor. grace bounds how long Deactivate waits between
// the graceful termination signal and the force kill.
func New(spawn SpawnFunc, grace time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		spawn:  spawn,
		grace:  grace,
		logger: logger,
	}
}

// Activate spawns the display process. It is a no-op when a child is
// already running.
func (s *Supervisor) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running() {
		s.logger.Debug("activate ignored, display already running")
		return nil
	}

	child, err := s.spawn(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to spawn display process")
	}

	s.logger.Info("display process started")
	s.child = child
	return nil
}

// Deactivate terminates the display process: SIGTERM first, SIGKILL when
// the grace period runs out. It is a no-op when no child is running.
func (s *Supervisor) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running() {
		s.logger.Debug("deactivate ignored, no display running")
		return
	}

	child := s.child
	s.child = nil

	if err := child.Signal(syscall.SIGTERM); err != nil {
		s.logger.Warn("failed to signal display process", "error", err)
	}

	select {
	case <-child.Done():
		s.logger.Info("display process exited")
	case <-time.After(s.grace):
		s.logger.Warn("display process ignored SIGTERM, killing")
		if err := child.Kill(); err != nil {
			s.logger.Warn("failed to kill display process", "error", err)
		}
		<-child.Done()
	}
}

// Running reports whether a child is alive, clearing the handle of a child
// that exited on its own.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running()
}

// running must be called with mu held. A child that exited unexpectedly is
// reaped here by dropping its handle.
func (s *Supervisor) running() bool {
	if s.child == nil {
		return false
	}
	select {
	case <-s.child.Done():
		s.logger.Warn("display process exited unexpectedly")
		s.child = nil
		return false
	default:
		return true
	}
}
