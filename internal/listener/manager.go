package listener

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/messaging"
	"github.com/pixil98/go-realm/internal/player"
	"github.com/pixil98/go-realm/internal/session"
	"github.com/pixil98/go-realm/internal/wire"
)

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second

	// sendQueueSize bounds per-connection outbound buffering. A session
	// that falls this far behind is dropped rather than waited on.
	sendQueueSize = 64
)

// Subscriber is the receive side of the packet bus.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

type ConnectionManager struct {
	pm      *player.Manager
	gateway *session.Gateway
	bus     Subscriber
}

func NewConnectionManager(pm *player.Manager, gw *session.Gateway, bus Subscriber) *ConnectionManager {
	return &ConnectionManager{
		pm:      pm,
		gateway: gw,
		bus:     bus,
	}
}

// AcceptConnection runs one connection to completion: handshake, bind to a
// character, then pump frames both ways until the peer or the context goes
// away.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn) {
	p, err := m.handshake(ctx, conn)
	if err != nil {
		slog.WarnContext(ctx, "connection handshake", "error", err)
		closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		return
	}
	defer m.pm.Disconnect(ctx, p)

	s := session.New(p)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan []byte, sendQueueSize)
	unsubscribe, err := m.bus.Subscribe(messaging.PlayerSubject(p.ID), func(data []byte) {
		frame, err := messaging.Unwrap(data)
		if err != nil {
			slog.Warn("unwrapping bus message", "session", s.ID, "error", err)
			return
		}
		select {
		case out <- frame:
		default:
			// Session can't keep up with its own traffic.
			cancel()
		}
	})
	if err != nil {
		slog.WarnContext(ctx, "subscribing session", "session", s.ID, "error", err)
		return
	}
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-connCtx.Done():
				return
			case frame := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		if connCtx.Err() != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		pkt, err := wire.Decode(msg)
		if err != nil {
			slog.Debug("dropping malformed frame", "session", s.ID, "error", err)
			continue
		}
		m.gateway.Handle(connCtx, s, pkt)
	}
}

// handshake reads the login message and binds the connection to its
// character. The first frame carries the character name.
func (m *ConnectionManager) handshake(ctx context.Context, conn *websocket.Conn) (*game.PlayerState, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	return m.pm.Connect(ctx, string(msg))
}
