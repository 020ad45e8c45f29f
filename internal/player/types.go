package player

import (
	"fmt"

	"github.com/pixil98/go-realm/internal/game"
)

// Faction is the stored faction of a character record.
type Faction game.Team

func (f *Faction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "neutral":
		*f = Faction(game.TeamNeutral)
	case "alliance":
		*f = Faction(game.TeamAlliance)
	case "horde":
		*f = Faction(game.TeamHorde)
	default:
		return fmt.Errorf("unknown faction: %s", text)
	}
	return nil
}

func (f Faction) MarshalText() ([]byte, error) {
	switch game.Team(f) {
	case game.TeamAlliance:
		return []byte("alliance"), nil
	case game.TeamHorde:
		return []byte("horde"), nil
	default:
		return []byte("neutral"), nil
	}
}

// Character is the durable record a session binds to at login. It doubles
// as the name directory for targets that are offline.
type Character struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Faction    Faction `json:"faction"`
	GameMaster bool    `json:"game_master,omitempty"`
	Level      uint16  `json:"level"`
	Zone       uint16  `json:"zone,omitempty"`

	MapID             uint32 `json:"map_id,omitempty"`
	InstanceID        uint32 `json:"instance_id,omitempty"`
	DungeonDifficulty uint8  `json:"dungeon_difficulty,omitempty"`

	Ignored []uint64 `json:"ignored,omitempty"`
}

func (c *Character) Validate() error {
	if c.ID == 0 {
		return fmt.Errorf("character id is required")
	}
	if _, ok := game.NormalizeName(c.Name); !ok {
		return fmt.Errorf("invalid character name %q", c.Name)
	}
	return nil
}
