package display

import (
	"context"
	"image"
	"io"
	"log/slog"

	"github.com/homebkk/futarboard/matrixserial"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Serial drives a matrix controller over a serial port speaking the
// matrixserial protocol.
type Serial struct {
	port   serial.Port
	logger *slog.Logger
	cols   int
	rows   int
}

var (
	_ Display = (*Serial)(nil)
	_ Watcher = (*Serial)(nil)
)

// OpenSerial opens the device and sends the initialize packet. The device
// is usually /dev/ttyUSB0 or /dev/ttyACM0.
func OpenSerial(device string, baud, cols, rows int, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	s := &Serial{
		port:   port,
		logger: logger,
		cols:   cols,
		rows:   rows,
	}

	if err := matrixserial.WriteHostPacket(port, matrixserial.InitializePacket{
		Cols: uint16(cols),
		Rows: uint16(rows),
	}); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to initialize matrix")
	}

	return s, nil
}

// Blit sends one frame. The frame must match the matrix dimensions.
func (s *Serial) Blit(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != s.cols || b.Dy() != s.rows {
		return errors.Errorf("frame is %dx%d, matrix is %dx%d", b.Dx(), b.Dy(), s.cols, s.rows)
	}

	err := matrixserial.WriteHostPacket(s.port, matrixserial.FramePacket{
		Pix: packPixels(frame),
	})
	return errors.Wrap(err, "failed to write frame")
}

// Clear blanks the matrix.
func (s *Serial) Clear() error {
	err := matrixserial.WriteHostPacket(s.port, matrixserial.ClearPacket{})
	return errors.Wrap(err, "failed to clear matrix")
}

// Watch reads controller packets until the context is canceled or the
// controller reports a fault. Acks and log messages go to the logger;
// an error packet is fatal. The blocked read is released by Close.
func (s *Serial) Watch(ctx context.Context) error {
	if err := s.port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	for {
		p, err := matrixserial.ReadControllerPacket(s.port)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A short read indicates a timeout, try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read controller packet")
		}

		switch p := p.(type) {
		case matrixserial.AckPacket:
			s.logger.Debug("controller acked", "packet", p.AckedFor)
		case matrixserial.ErrorPacket:
			return errors.Errorf("controller reported error: %s", p.Message)
		case matrixserial.LogPacket:
			s.logger.Info("controller log", "message", p.Message)
		default:
			return errors.Errorf("unexpected controller packet: %s", p.Type())
		}
	}
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.logger.Debug("closing serial port")
	return s.port.Close()
}

// packPixels flattens a frame into the row-major RGB bytes the controller
// expects, dropping the alpha channel.
func packPixels(frame *image.RGBA) []uint8 {
	b := frame.Bounds()
	pix := make([]uint8, 0, 3*b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := frame.PixOffset(x, y)
			pix = append(pix, frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2])
		}
	}
	return pix
}
