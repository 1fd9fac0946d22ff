//go:build !pi

package button

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Watch is only available in builds with the pi tag; there is no GPIO to
// sample anywhere else.
func Watch(ctx context.Context, pin string, logger *slog.Logger) (<-chan time.Time, error) {
	return nil, errors.New("button input requires a build with the pi tag")
}
