package supervisor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type fakeProcess struct {
	done     chan struct{}
	signals  []os.Signal
	killed   bool
	termExit bool // exit when SIGTERM arrives
}

func newFakeProcess(termExit bool) *fakeProcess {
	return &fakeProcess{done: make(chan struct{}), termExit: termExit}
}

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.signals = append(p.signals, sig)
	if p.termExit && sig == syscall.SIGTERM {
		p.exit()
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed = true
	p.exit()
	return nil
}

func (p *fakeProcess) exit() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupervisor_ActivateIdempotent(t *testing.T) {
	var spawns atomic.Int32
	var proc *fakeProcess

	sup := New(func(context.Context) (Process, error) {
		spawns.Add(1)
		proc = newFakeProcess(true)
		return proc, nil
	}, time.Second, discard())

	ctx := context.Background()
	if err := sup.Activate(ctx); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := sup.Activate(ctx); err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if n := spawns.Load(); n != 1 {
		t.Fatalf("spawned %d children, want 1", n)
	}
	if !sup.Running() {
		t.Fatal("not running after Activate")
	}
}

func TestSupervisor_DeactivateIdempotent(t *testing.T) {
	var proc *fakeProcess
	sup := New(func(context.Context) (Process, error) {
		proc = newFakeProcess(true)
		return proc, nil
	}, time.Second, discard())

	// Deactivate while idle: no spawn has happened, nothing to signal.
	sup.Deactivate()
	if proc != nil {
		t.Fatal("deactivate while idle touched a process")
	}

	if err := sup.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	sup.Deactivate()
	if len(proc.signals) != 1 || proc.signals[0] != syscall.SIGTERM {
		t.Fatalf("signals = %v, want one SIGTERM", proc.signals)
	}
	if proc.killed {
		t.Fatal("graceful exit still got killed")
	}

	// Second deactivate finds no child.
	sup.Deactivate()
	if len(proc.signals) != 1 {
		t.Fatalf("deactivate while idle sent extra signals: %v", proc.signals)
	}
}

func TestSupervisor_EscalatesToKill(t *testing.T) {
	var proc *fakeProcess
	sup := New(func(context.Context) (Process, error) {
		proc = newFakeProcess(false) // ignores SIGTERM
		return proc, nil
	}, 10*time.Millisecond, discard())

	if err := sup.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	sup.Deactivate()

	if !proc.killed {
		t.Fatal("stubborn child was not killed after the grace period")
	}
	if sup.Running() {
		t.Fatal("still running after escalated deactivate")
	}
}

func TestSupervisor_ReapsUnexpectedExit(t *testing.T) {
	var spawns atomic.Int32
	sup := New(func(context.Context) (Process, error) {
		spawns.Add(1)
		p := newFakeProcess(true)
		p.exit() // dies immediately
		return p, nil
	}, time.Second, discard())

	if err := sup.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if sup.Running() {
		t.Fatal("running reports true for a dead child")
	}

	// The cleared handle allows a fresh spawn.
	if err := sup.Activate(context.Background()); err != nil {
		t.Fatalf("re-Activate: %v", err)
	}
	if n := spawns.Load(); n != 2 {
		t.Fatalf("spawned %d children, want 2", n)
	}
}
