package game

import (
	"math/rand/v2"
	"time"
)

// RollVote is a loot roll vote kind. The numeric values are the wire
// encoding; resolution precedence is need over greed over pass.
type RollVote uint8

const (
	RollPass RollVote = iota
	RollNeed
	RollGreed
)

// rollPrecedence ranks vote kinds for resolution. A need vote beats any
// greed vote regardless of the wire enumerants.
func rollPrecedence(v RollVote) int {
	switch v {
	case RollNeed:
		return 2
	case RollGreed:
		return 1
	default:
		return 0
	}
}

// Tiebreak rolls are drawn uniformly in [1, rollTiebreakMax].
const rollTiebreakMax = 100

// randIntN is swapped out by tests for deterministic resolution.
var randIntN = rand.IntN

// RollSession is one transient per-item voting round. Eligibility is
// snapshotted when the session starts; later joiners cannot vote.
type RollSession struct {
	ItemRef  uint64
	Eligible int
	Started  time.Time

	eligibleIDs map[uint64]bool
	votes       map[uint64]RollVote
}

func newRollSession(itemRef uint64, eligible int, members []*Member) *RollSession {
	s := &RollSession{
		ItemRef:     itemRef,
		Eligible:    eligible,
		Started:     time.Now(),
		eligibleIDs: make(map[uint64]bool, len(members)),
		votes:       make(map[uint64]RollVote),
	}
	for _, m := range members {
		s.eligibleIDs[m.ID] = true
	}
	return s
}

// vote records one voter's choice. Re-votes overwrite. Returns false for
// actors outside the eligibility snapshot.
func (s *RollSession) vote(actorID uint64, v RollVote) bool {
	if !s.eligibleIDs[actorID] {
		return false
	}
	s.votes[actorID] = v
	return true
}

func (s *RollSession) complete() bool {
	return len(s.votes) >= s.Eligible
}

// RollResolution is the outcome of a resolved roll session.
type RollResolution struct {
	ItemRef   uint64
	WinnerID  uint64
	Vote      RollVote
	Tiebreak  int32
	AllPassed bool
}

// resolve picks the winner: needers are considered before greeders; ties
// within the winning kind are broken by an independent uniform draw,
// highest value winning. A session where everyone passed (or nobody
// voted) resolves with AllPassed set.
func (s *RollSession) resolve() *RollResolution {
	res := &RollResolution{ItemRef: s.ItemRef}

	best := RollPass
	for _, v := range s.votes {
		if rollPrecedence(v) > rollPrecedence(best) {
			best = v
		}
	}
	if best == RollPass {
		res.AllPassed = true
		return res
	}

	for id, v := range s.votes {
		if v != best {
			continue
		}
		draw := int32(randIntN(rollTiebreakMax) + 1)
		if draw > res.Tiebreak {
			res.Tiebreak = draw
			res.WinnerID = id
		}
	}
	res.Vote = best
	return res
}

// CountRollVote records a vote in the active roll session for itemRef,
// creating the session on first vote with a snapshot of the current
// members. When every eligible voter has voted the session resolves, is
// destroyed, and the resolution is returned.
func (g *Group) CountRollVote(actorID, itemRef uint64, numEligible uint32, v RollVote) (*RollResolution, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.rolls[itemRef]
	if !ok {
		eligible := int(numEligible)
		if eligible <= 0 || eligible > g.roster.Count() {
			eligible = g.roster.Count()
		}
		s = newRollSession(itemRef, eligible, g.roster.Members())
		g.rolls[itemRef] = s
	}

	if !s.vote(actorID, v) {
		return nil, false
	}
	if !s.complete() {
		return nil, true
	}

	delete(g.rolls, itemRef)
	return s.resolve(), true
}

// HasRoll reports whether a roll session is active for the item.
func (g *Group) HasRoll(itemRef uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rolls[itemRef]
	return ok
}

// ForceResolveRoll resolves a session with whatever votes exist. Hook for
// the external scheduler driving abandonment; this core owns no timers.
func (g *Group) ForceResolveRoll(itemRef uint64) *RollResolution {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.rolls[itemRef]
	if !ok {
		return nil
	}
	delete(g.rolls, itemRef)
	return s.resolve()
}

// StaleRolls returns the item refs of sessions started before the cutoff.
func (g *Group) StaleRolls(cutoff time.Time) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var refs []uint64
	for ref, s := range g.rolls {
		if s.Started.Before(cutoff) {
			refs = append(refs, ref)
		}
	}
	return refs
}
