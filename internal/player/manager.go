package player

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
)

// Manager is the live session registry. It owns the PlayerState for every
// character that has logged in this process lifetime; a state outlives its
// connection so group bindings survive a disconnect.
type Manager struct {
	mu     sync.RWMutex
	byID   map[uint64]*game.PlayerState
	byName map[string]uint64

	chars storage.Storer[*Character]
	coord *game.Coordinator
}

func NewManager(cs storage.Storer[*Character]) *Manager {
	return &Manager{
		byID:   map[uint64]*game.PlayerState{},
		byName: map[string]uint64{},
		chars:  cs,
	}
}

// SetCoordinator wires the group coordinator after construction. The
// coordinator needs the manager as its directory, so the two are tied
// together in a second step.
func (m *Manager) SetCoordinator(c *game.Coordinator) {
	m.coord = c
}

func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Tick flushes any accumulated stat changes for online players.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.RLock()
	states := make([]*game.PlayerState, 0, len(m.byID))
	for _, p := range m.byID {
		if p.Online {
			states = append(states, p)
		}
	}
	m.mu.RUnlock()

	for _, p := range states {
		m.coord.PublishMemberStats(p)
	}

	return nil
}

// Connect binds a session to the named character, creating or reviving its
// live state.
func (m *Manager) Connect(ctx context.Context, name string) (*game.PlayerState, error) {
	norm, ok := game.NormalizeName(name)
	if !ok {
		return nil, fmt.Errorf("invalid character name %q", name)
	}

	char := m.chars.Get(strings.ToLower(norm))
	if char == nil {
		return nil, fmt.Errorf("unknown character %q", norm)
	}

	m.mu.Lock()
	p, ok := m.byID[char.ID]
	if !ok {
		p = &game.PlayerState{
			ID:         char.ID,
			Name:       norm,
			Team:       game.Team(char.Faction),
			GameMaster: char.GameMaster,
			Ignored:    map[uint64]bool{},
		}
		for _, id := range char.Ignored {
			p.Ignored[id] = true
		}
		p.Stats.Level = char.Level
		p.Stats.Zone = char.Zone
		m.byID[char.ID] = p
		m.byName[norm] = char.ID
	} else if p.Online {
		m.mu.Unlock()
		return nil, fmt.Errorf("character %q is already connected", norm)
	}
	p.Online = true
	p.MapID = char.MapID
	p.InstanceID = char.InstanceID
	p.DungeonDifficulty = char.DungeonDifficulty
	m.mu.Unlock()

	m.coord.HandleReconnect(ctx, p)

	slog.Info("character connected", "character", norm, "id", char.ID)
	return p, nil
}

// Disconnect marks the session offline. The state stays registered so a
// group the player belongs to keeps them on its roster.
func (m *Manager) Disconnect(ctx context.Context, p *game.PlayerState) {
	m.mu.Lock()
	p.Online = false
	m.mu.Unlock()

	m.coord.HandleDisconnect(ctx, p)

	slog.Info("character disconnected", "character", p.Name, "id", p.ID)
}

func (m *Manager) Find(id uint64) *game.PlayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

func (m *Manager) FindByName(name string) *game.PlayerState {
	norm, ok := game.NormalizeName(name)
	if !ok {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[norm]
	if !ok {
		return nil
	}
	return m.byID[id]
}

func (m *Manager) IsOnline(id uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	return ok && p.Online
}

// CharacterID resolves a name against the durable character store, covering
// targets that have never logged in this process lifetime.
func (m *Manager) CharacterID(name string) (uint64, bool) {
	norm, ok := game.NormalizeName(name)
	if !ok {
		return 0, false
	}

	char := m.chars.Get(strings.ToLower(norm))
	if char == nil {
		return 0, false
	}
	return char.ID, true
}
