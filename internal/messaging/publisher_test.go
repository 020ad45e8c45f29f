package messaging

import (
	"bytes"
	"testing"

	"github.com/pixil98/go-realm/internal/wire"
	"github.com/pixil98/go-testutil"
)

type fakeBus struct {
	subjects []string
	payloads [][]byte
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	b.subjects = append(b.subjects, subject)
	b.payloads = append(b.payloads, data)
	return nil
}

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := map[string]struct {
		frame       []byte
		expDeflated bool
	}{
		"small frame stays raw": {
			frame:       []byte{0x01, 0x02, 0x03},
			expDeflated: false,
		},
		"threshold frame stays raw": {
			frame:       bytes.Repeat([]byte{0xAB}, compressThreshold),
			expDeflated: false,
		},
		"oversized frame deflates": {
			frame:       bytes.Repeat([]byte{0xAB}, compressThreshold+1),
			expDeflated: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := Envelope(tt.frame)
			if err != nil {
				t.Fatalf("enveloping: %s", err)
			}

			expMarker := byte(envelopeRaw)
			if tt.expDeflated {
				expMarker = envelopeDeflated
			}
			testutil.AssertEqual(t, "marker", data[0], expMarker)
			if tt.expDeflated && len(data) >= len(tt.frame) {
				t.Fatalf("deflated envelope is %d bytes for a %d byte frame", len(data), len(tt.frame))
			}

			frame, err := Unwrap(data)
			if err != nil {
				t.Fatalf("unwrapping: %s", err)
			}
			testutil.AssertEqual(t, "frame", frame, tt.frame)
		})
	}
}

func TestUnwrapRejectsGarbage(t *testing.T) {
	tests := map[string][]byte{
		"empty message":    {},
		"unknown marker":   {0x7F, 0x01},
		"truncated deflate": {envelopeDeflated, 0x00},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Unwrap(data); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestPlayerSubject(t *testing.T) {
	testutil.AssertEqual(t, "subject", PlayerSubject(42), "player.42")
}

func TestSendTo(t *testing.T) {
	bus := &fakeBus{}
	pub := NewPacketPublisher(bus)

	pkt := wire.NewPacket(wire.OpGroupDestroyed)
	if err := pub.SendTo(7, pkt); err != nil {
		t.Fatalf("sending: %s", err)
	}

	testutil.AssertEqual(t, "subject", bus.subjects, []string{"player.7"})
	frame, err := Unwrap(bus.payloads[0])
	if err != nil {
		t.Fatalf("unwrapping: %s", err)
	}
	testutil.AssertEqual(t, "frame", frame, pkt.Frame())
}
