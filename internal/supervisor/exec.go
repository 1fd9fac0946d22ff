package supervisor

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// ChildSpawner returns a SpawnFunc that re-executes this binary with the
// given arguments, inheriting stderr so the child's logs land in the same
// place as the parent's.
func ChildSpawner(args []string, logger *slog.Logger) SpawnFunc {
	return func(ctx context.Context) (Process, error) {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve own executable")
		}

		cmd := exec.Command(exe, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Start(); err != nil {
			return nil, errors.Wrap(err, "failed to start child")
		}

		p := &execProcess{cmd: cmd, done: make(chan struct{})}
		go func() {
			defer close(p.done)
			if err := cmd.Wait(); err != nil {
				logger.Debug("child exited", "error", err)
			}
		}()

		logger.Debug("spawned child", "pid", cmd.Process.Pid, "args", args)
		return p, nil
	}
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}
