package game

import "time"

// ReadyState is one member's answer to a ready check.
type ReadyState uint8

const (
	ReadyNo ReadyState = iota
	ReadyYes
	// ReadyNoResponse is the implicit default until a member answers.
	ReadyNoResponse
)

// ReadyCheckSession is a transient per-group poll. The broadcast set is a
// snapshot of members at initiation; members joining afterwards are not
// counted.
type ReadyCheckSession struct {
	InitiatorID uint64
	Started     time.Time

	responses map[uint64]ReadyState
}

func newReadyCheckSession(initiatorID uint64, members []*Member) *ReadyCheckSession {
	s := &ReadyCheckSession{
		InitiatorID: initiatorID,
		Started:     time.Now(),
		responses:   make(map[uint64]ReadyState, len(members)),
	}
	for _, m := range members {
		s.responses[m.ID] = ReadyNoResponse
	}
	return s
}

// respond records a member's answer. Returns false for actors outside the
// snapshot.
func (s *ReadyCheckSession) respond(actorID uint64, state ReadyState) bool {
	if _, ok := s.responses[actorID]; !ok {
		return false
	}
	s.responses[actorID] = state
	return true
}

// StartReadyCheck opens a new ready check, replacing any active one, and
// returns the ids of snapshotted members currently offline so they can be
// flagged not-ready immediately.
func (g *Group) StartReadyCheck(initiatorID uint64) []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.readyCheck = newReadyCheckSession(initiatorID, g.roster.Members())

	var offline []uint64
	for _, m := range g.roster.Members() {
		if !m.Online {
			g.readyCheck.responses[m.ID] = ReadyNo
			offline = append(offline, m.ID)
		}
	}
	return offline
}

// RespondReadyCheck records an answer in the active session. No-ops when
// no check is running or the actor is outside the snapshot.
func (g *Group) RespondReadyCheck(actorID uint64, state ReadyState) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.readyCheck == nil {
		return false
	}
	return g.readyCheck.respond(actorID, state)
}

// ReadyCheckResponses returns a snapshot of the active session's answers,
// or nil when none is running.
func (g *Group) ReadyCheckResponses() map[uint64]ReadyState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.readyCheck == nil {
		return nil
	}
	out := make(map[uint64]ReadyState, len(g.readyCheck.responses))
	for id, st := range g.readyCheck.responses {
		out[id] = st
	}
	return out
}

// DiscardReadyCheck drops the active session. Hook for the external
// scheduler; this core owns no timers.
func (g *Group) DiscardReadyCheck() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.readyCheck == nil {
		return false
	}
	g.readyCheck = nil
	return true
}

// ReadyCheckStarted returns the start time of the active session.
func (g *Group) ReadyCheckStarted() (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.readyCheck == nil {
		return time.Time{}, false
	}
	return g.readyCheck.Started, true
}
