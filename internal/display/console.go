package display

import (
	"fmt"
	"image"
	"io"
	"strings"
)

// Console is a development stand-in for the matrix. It draws frames as
// ASCII art, one character per lit pixel block, so the board can be run on
// a workstation without hardware.
type Console struct {
	w    io.Writer
	cols int
	rows int
}

var _ Display = (*Console)(nil)

// NewConsole creates a console display of cols×rows pixels writing to w.
func NewConsole(w io.Writer, cols, rows int) *Console {
	return &Console{w: w, cols: cols, rows: rows}
}

// Blit prints the frame, sampling every second pixel to keep the output
// roughly matrix-shaped in a terminal.
func (c *Console) Blit(frame *image.RGBA) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("-", c.cols/2+2) + "\n")

	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.WriteByte('|')
		for x := b.Min.X; x < b.Max.X; x += 2 {
			i := frame.PixOffset(x, y)
			if frame.Pix[i] > 0 || frame.Pix[i+1] > 0 || frame.Pix[i+2] > 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}

	sb.WriteString(strings.Repeat("-", c.cols/2+2) + "\n")
	_, err := io.WriteString(c.w, sb.String())
	return err
}

// Clear prints an empty frame marker.
func (c *Console) Clear() error {
	_, err := fmt.Fprintln(c.w, "(display cleared)")
	return err
}

// Close is a no-op for the console.
func (c *Console) Close() error { return nil }
