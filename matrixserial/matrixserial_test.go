package matrixserial

import (
	"bytes"
	"testing"
)

func TestHostPacketRoundtrip(t *testing.T) {
	ctx := ReadContext{Cols: 4, Rows: 2}

	pix := make([]uint8, ctx.FrameLen())
	for i := range pix {
		pix[i] = uint8(i)
	}

	tests := []struct {
		name   string
		packet HostPacket
	}{
		{"initialize", InitializePacket{Cols: 4, Rows: 2}},
		{"clear", ClearPacket{}},
		{"frame", FramePacket{Pix: pix}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteHostPacket(&buf, tt.packet); err != nil {
				t.Fatalf("WriteHostPacket: %v", err)
			}

			got, err := ReadHostPacket(&buf, ctx)
			if err != nil {
				t.Fatalf("ReadHostPacket: %v", err)
			}
			if got.Type() != tt.packet.Type() {
				t.Errorf("type = %s, want %s", got.Type(), tt.packet.Type())
			}

			if want, ok := tt.packet.(FramePacket); ok {
				frame := got.(FramePacket)
				if !bytes.Equal(frame.Pix, want.Pix) {
					t.Errorf("frame pixels did not survive the roundtrip")
				}
			}
		})
	}
}

func TestControllerPacketRoundtrip(t *testing.T) {
	tests := []struct {
		name   string
		packet ControllerPacket
	}{
		{"ack", AckPacket{AckedFor: TypeFramePacket}},
		{"error", ErrorPacket{Message: "frame out of bounds"}},
		{"log", LogPacket{Message: "booted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteControllerPacket(&buf, tt.packet); err != nil {
				t.Fatalf("WriteControllerPacket: %v", err)
			}

			got, err := ReadControllerPacket(&buf)
			if err != nil {
				t.Fatalf("ReadControllerPacket: %v", err)
			}
			if got.Type() != tt.packet.Type() {
				t.Fatalf("type = %s, want %s", got.Type(), tt.packet.Type())
			}

			switch want := tt.packet.(type) {
			case AckPacket:
				if got.(AckPacket).AckedFor != want.AckedFor {
					t.Errorf("ack for %s, want %s", got.(AckPacket).AckedFor, want.AckedFor)
				}
			case ErrorPacket:
				if got.(ErrorPacket).Message != want.Message {
					t.Errorf("message = %q, want %q", got.(ErrorPacket).Message, want.Message)
				}
			case LogPacket:
				if got.(LogPacket).Message != want.Message {
					t.Errorf("message = %q, want %q", got.(LogPacket).Message, want.Message)
				}
			}
		})
	}
}

func TestReadHostPacket_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHostPacket(&buf, InitializePacket{Cols: 96, Rows: 48}); err != nil {
		t.Fatalf("WriteHostPacket: %v", err)
	}

	raw := buf.Bytes()
	raw[1] ^= 0xff // corrupt the body, keep the trailer

	if _, err := ReadHostPacket(bytes.NewReader(raw), ReadContext{}); err == nil {
		t.Fatal("corrupted packet passed the checksum")
	}
}
