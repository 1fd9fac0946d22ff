// Package display drives the LED matrix.
//
// The matrix controller runs its own hardware refresh once initialized and
// has no shutdown primitive short of dropping the process that opened it,
// so a Display is expected to live exactly as long as its owning process.
package display

import (
	"context"
	"image"
)

// Display is a pixel sink for composed frames. Blit and Clear failures are
// hardware faults; callers should treat them as fatal and tear down.
type Display interface {
	// Blit pushes one full frame to the matrix.
	Blit(frame *image.RGBA) error
	// Clear blanks the matrix.
	Clear() error
	// Close releases the underlying device.
	Close() error
}

// Watcher is implemented by displays whose controller talks back. Watch
// blocks consuming controller traffic and returns when the controller
// reports a fault or the context is canceled.
type Watcher interface {
	Watch(ctx context.Context) error
}
