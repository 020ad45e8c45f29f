package messaging

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pixil98/go-realm/internal/wire"
)

// Frames published on the bus carry a one-byte envelope marker so the
// connection writer knows whether to inflate before transmitting.
const (
	envelopeRaw      = 0x00
	envelopeDeflated = 0x01
)

// compressThreshold is the frame size above which payloads are deflated.
// Roster updates and full stat snapshots for large raids are the usual
// offenders.
const compressThreshold = 512

// Bus is the publish side of the packet bus.
type Bus interface {
	Publish(subject string, data []byte) error
}

// PacketPublisher delivers packets to per-player subjects. It satisfies
// the coordinator's send interface: a publish hands the frame to the bus
// and returns without waiting on any recipient.
type PacketPublisher struct {
	bus Bus
}

func NewPacketPublisher(bus Bus) *PacketPublisher {
	return &PacketPublisher{bus: bus}
}

// PlayerSubject names the bus subject for one player's session.
func PlayerSubject(playerID uint64) string {
	return fmt.Sprintf("player.%d", playerID)
}

// SendTo publishes one packet to a player's subject.
func (p *PacketPublisher) SendTo(playerID uint64, pkt *wire.Packet) error {
	data, err := Envelope(pkt.Frame())
	if err != nil {
		return fmt.Errorf("enveloping frame: %w", err)
	}
	return p.bus.Publish(PlayerSubject(playerID), data)
}

// Envelope wraps a wire frame for the bus, deflating oversized frames.
func Envelope(frame []byte) ([]byte, error) {
	if len(frame) <= compressThreshold {
		return append([]byte{envelopeRaw}, frame...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(envelopeDeflated)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(frame); err != nil {
		return nil, fmt.Errorf("deflating frame: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing deflater: %w", err)
	}
	return buf.Bytes(), nil
}

// Unwrap reverses Envelope, returning the original wire frame.
func Unwrap(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("empty bus message")
	}
	switch data[0] {
	case envelopeRaw:
		return data[1:], nil
	case envelopeDeflated:
		zr, err := zlib.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return nil, fmt.Errorf("opening inflater: %w", err)
		}
		defer zr.Close()
		frame, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("inflating frame: %w", err)
		}
		return frame, nil
	default:
		return nil, fmt.Errorf("unknown envelope marker %#x", data[0])
	}
}
