package driver

import (
	"context"
	"time"

	"github.com/pixil98/go-realm/internal/game"
)

const (
	DefaultRollTimeout       = time.Minute
	DefaultReadyCheckTimeout = 35 * time.Second
)

// SessionJanitor expires stale loot rolls and ready checks on each tick.
type SessionJanitor struct {
	coord *game.Coordinator

	rollTimeout       time.Duration
	readyCheckTimeout time.Duration
}

func NewSessionJanitor(coord *game.Coordinator, rollTimeout, readyCheckTimeout time.Duration) *SessionJanitor {
	if rollTimeout <= 0 {
		rollTimeout = DefaultRollTimeout
	}
	if readyCheckTimeout <= 0 {
		readyCheckTimeout = DefaultReadyCheckTimeout
	}
	return &SessionJanitor{
		coord:             coord,
		rollTimeout:       rollTimeout,
		readyCheckTimeout: readyCheckTimeout,
	}
}

func (j *SessionJanitor) Tick(ctx context.Context) error {
	j.coord.ExpireSessions(ctx, j.rollTimeout, j.readyCheckTimeout)
	return nil
}
