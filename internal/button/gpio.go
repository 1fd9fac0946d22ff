//go:build pi

package button

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Watch configures the pin for rising-edge detection and streams press
// timestamps until the context is canceled. Presses arriving faster than
// the consumer drains them are dropped; the debouncer only cares about
// pairs anyway.
func Watch(ctx context.Context, pin string, logger *slog.Logger) (<-chan time.Time, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host")
	}

	p := gpioreg.ByName(pin)
	if p == nil {
		return nil, errors.Errorf("no such pin: %s", pin)
	}

	if err := p.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, errors.Wrapf(err, "failed to configure pin %s", pin)
	}

	presses := make(chan time.Time, 5)
	go func() {
		defer close(presses)

		for ctx.Err() == nil {
			if !p.WaitForEdge(time.Second) {
				continue
			}
			if p.Read() != gpio.High {
				continue
			}

			logger.Debug("button press", "pin", pin)
			select {
			case presses <- time.Now():
			default:
			}
		}
	}()

	return presses, nil
}
