// Package matrixserial implements the serial protocol between the board
// daemon and the LED matrix controller.
//
// Every packet is a one-byte type tag, a type-specific body, and a CRC32
// (IEEE) trailer over tag and body. Host packets travel from the daemon to
// the controller; controller packets travel back.
package matrixserial

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Endianness defines the byte order of the protocol.
var Endianness = binary.LittleEndian

// HostPacketType is a type of packet sent by the host.
type HostPacketType uint8

const (
	TypeInitializePacket HostPacketType = iota
	TypeClearPacket
	TypeFramePacket
)

// String returns a string representation of the packet type.
func (t HostPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeFramePacket:
		return "frame"
	default:
		return fmt.Sprintf("HostPacketType(%d)", t)
	}
}

// HostPacket is a packet sent from the daemon to the controller.
type HostPacket interface {
	// Type returns the type of packet.
	Type() HostPacketType
}

// InitializePacket announces the matrix dimensions. It must be the first
// packet after opening the port.
type InitializePacket struct {
	Cols uint16
	Rows uint16
}

// ClearPacket blanks the whole matrix.
type ClearPacket struct{}

// FramePacket carries one full frame as row-major RGB bytes, 3*Cols*Rows
// in total.
type FramePacket struct {
	Pix []uint8
}

func (p InitializePacket) Type() HostPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() HostPacketType      { return TypeClearPacket }
func (p FramePacket) Type() HostPacketType      { return TypeFramePacket }

// ControllerPacketType is a type of packet sent by the controller.
type ControllerPacketType uint8

const (
	TypeAckPacket ControllerPacketType = iota
	TypeErrorPacket
	TypeLogPacket
)

// String returns a string representation of the packet type.
func (t ControllerPacketType) String() string {
	switch t {
	case TypeAckPacket:
		return "ack"
	case TypeErrorPacket:
		return "error"
	case TypeLogPacket:
		return "log"
	default:
		return fmt.Sprintf("ControllerPacketType(%d)", t)
	}
}

// ControllerPacket is a packet sent from the controller to the daemon.
type ControllerPacket interface {
	// Type returns the type of packet.
	Type() ControllerPacketType
}

// AckPacket acknowledges a host packet.
type AckPacket struct {
	AckedFor HostPacketType
}

// ErrorPacket indicates the controller rejected a packet or hit a fault.
type ErrorPacket struct {
	Message string
}

// LogPacket carries a free-form log message from the controller.
type LogPacket struct {
	Message string
}

func (p AckPacket) Type() ControllerPacketType   { return TypeAckPacket }
func (p ErrorPacket) Type() ControllerPacketType { return TypeErrorPacket }
func (p LogPacket) Type() ControllerPacketType   { return TypeLogPacket }

// ReadContext carries the matrix state a reader needs to size variable
// length packets.
type ReadContext struct {
	Cols uint16
	Rows uint16
}

// FrameLen returns the byte length of one frame's pixel data.
func (c ReadContext) FrameLen() int {
	return 3 * int(c.Cols) * int(c.Rows)
}

// ReadHostPacket reads a host packet from the given reader. The controller
// firmware is the primary consumer.
func ReadHostPacket(r io.Reader, context ReadContext) (HostPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var packet HostPacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read host packet type: %w", err)
	}

	switch ptype := HostPacketType(ptypeBuf[0]); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read matrix dimensions: %w", err)
		}
		packet = p

	case TypeClearPacket:
		packet = ClearPacket{}

	case TypeFramePacket:
		var p FramePacket
		p.Pix = make([]uint8, context.FrameLen())
		if _, err := io.ReadFull(r, p.Pix); err != nil {
			return nil, fmt.Errorf("failed to read pixel data: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := verifyChecksum(r, hash); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteHostPacket writes a host packet to the given writer.
func WriteHostPacket(w io.Writer, p HostPacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := binary.Write(w, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	switch p := p.(type) {
	case InitializePacket:
		if err := binary.Write(w, Endianness, p); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	case ClearPacket:
		// type tag only
	case FramePacket:
		if _, err := w.Write(p.Pix); err != nil {
			return fmt.Errorf("failed to write pixel data: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

// ReadControllerPacket reads a controller packet from the given reader.
func ReadControllerPacket(r io.Reader) (ControllerPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var packet ControllerPacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read controller packet type: %w", err)
	}

	switch ptype := ControllerPacketType(ptypeBuf[0]); ptype {
	case TypeAckPacket:
		var p AckPacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read ack: %w", err)
		}
		packet = p

	case TypeErrorPacket:
		msg, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read error message: %w", err)
		}
		packet = ErrorPacket{Message: msg}

	case TypeLogPacket:
		msg, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read log message: %w", err)
		}
		packet = LogPacket{Message: msg}

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := verifyChecksum(r, hash); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteControllerPacket writes a controller packet to the given writer.
func WriteControllerPacket(w io.Writer, p ControllerPacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := binary.Write(w, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	switch p := p.(type) {
	case AckPacket:
		if err := binary.Write(w, Endianness, p); err != nil {
			return fmt.Errorf("failed to write ack: %w", err)
		}
	case ErrorPacket:
		if err := writeString(w, p.Message); err != nil {
			return fmt.Errorf("failed to write error message: %w", err)
		}
	case LogPacket:
		if err := writeString(w, p.Message); err != nil {
			return fmt.Errorf("failed to write log message: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

func readString(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, Endianness, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, Endianness, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func verifyChecksum(r io.Reader, hash interface{ Sum32() uint32 }) error {
	want := hash.Sum32()

	var got uint32
	if err := binary.Read(r, Endianness, &got); err != nil {
		return fmt.Errorf("failed to read packet checksum: %w", err)
	}
	if got != want {
		return fmt.Errorf("packet checksum mismatch")
	}
	return nil
}
