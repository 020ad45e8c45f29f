package game

import (
	"strings"

	"github.com/pixil98/go-realm/internal/wire"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Team is a player's faction.
type Team uint8

const (
	TeamNeutral Team = iota
	TeamAlliance
	TeamHorde
)

// Combat role bits carried by the set-roles message.
const (
	RoleNone   uint32 = 0x00
	RoleLeader uint32 = 0x02
	RoleTank   uint32 = 0x10
	RoleHealer uint32 = 0x20
	RoleDamage uint32 = 0x40
)

// Aura is one visible aura slot referenced by member-state updates. The
// coordinator never computes auras; it only replicates what it is handed.
type Aura struct {
	ID      uint32
	Flags   uint16
	Amounts [MaxAuraEffects]int32
}

// Stats is the observable member state replicated to group mates.
type Stats struct {
	Status      uint16
	CurHealth   uint32
	MaxHealth   uint32
	PowerType   uint8
	CurPower    uint16
	MaxPower    uint16
	Level       uint16
	Zone        uint16
	PosX        uint16
	PosY        uint16
	VehicleSeat uint32
	Auras       [MaxAuraSlots]*Aura
}

// Pet mirrors Stats for a member's pet.
type Pet struct {
	GUID      uint64
	Name      string
	ModelID   uint16
	CurHealth uint32
	MaxHealth uint32
	PowerType uint8
	CurPower  uint16
	MaxPower  uint16
	Auras     [MaxAuraSlots]*Aura
}

// PlayerState is the live session-side state of one connected (or recently
// connected) character. The group fields are owned by the Coordinator: no
// other component writes them.
type PlayerState struct {
	ID         uint64
	Name       string
	Team       Team
	GameMaster bool
	Online     bool

	// Instance binding used to gate invites.
	MapID             uint32
	InstanceID        uint32
	DungeonDifficulty uint8

	Ignored map[uint64]bool

	Roles      uint32
	PassOnLoot bool

	Stats      Stats
	Pet        *Pet
	UpdateMask uint32

	// Group binding. Group is the slot holding the player's group; while a
	// restricted-activity group is substituted in it, OriginalGroup holds
	// the one to return to. GroupInvite is the single outstanding invite.
	Group         *Group
	OriginalGroup *Group
	GroupInvite   *Group
}

// CurrentGroup resolves the two-slot group binding: a substituted
// restricted-activity group defers to the original one for all party
// operations.
func (p *PlayerState) CurrentGroup() *Group {
	if p.Group != nil && p.Group.Kind() == GroupKindActivity {
		return p.OriginalGroup
	}
	return p.Group
}

// HasIgnored reports whether the player has id on their ignore list.
func (p *PlayerState) HasIgnored(id uint64) bool {
	return p.Ignored[id]
}

// Directory resolves actors by name or identity. Lookups cover live
// sessions only; durable offline lookups go through CharacterLookup.
type Directory interface {
	Find(id uint64) *PlayerState
	FindByName(name string) *PlayerState
	IsOnline(id uint64) bool
}

// CharacterLookup is the durable name -> identity lookup used when a target
// is offline.
type CharacterLookup interface {
	CharacterID(name string) (uint64, bool)
}

// PacketSender delivers a packet to one player's session. Delivery must not
// block the caller; a slow or disconnected recipient is dropped, not waited
// on.
type PacketSender interface {
	SendTo(playerID uint64, pkt *wire.Packet) error
}

// ActivityGuard answers restricted-activity questions the coordinator
// surfaces verbatim. The default guard permits everything.
type ActivityGuard interface {
	// InRestrictedActivity reports whether the player is inside a locked
	// activity (e.g. a ranked match) in which group mutation is refused.
	InRestrictedActivity(p *PlayerState) bool
	// CanUninvite returns ResultOk or the result code blocking an uninvite
	// (e.g. an external matchmaking boot throttle).
	CanUninvite(p *PlayerState) PartyResult
	// RoleCheckGroup mirrors a member's role change into an external
	// matchmaking role-check flow bound to the group, if any.
	RoleCheckGroup(groupID uint64, playerID uint64, roles uint32)
}

// NopGuard is the ActivityGuard used when no activity subsystem is wired.
type NopGuard struct{}

func (NopGuard) InRestrictedActivity(*PlayerState) bool { return false }
func (NopGuard) CanUninvite(*PlayerState) PartyResult   { return ResultOk }
func (NopGuard) RoleCheckGroup(uint64, uint64, uint32)  {}

var nameCaser = cases.Title(language.Und)

// NormalizeName canonicalizes a player name the way it is stored: leading
// capital, rest lowercase. Returns false for names that cannot be valid.
func NormalizeName(name string) (string, bool) {
	if name == "" || len(name) > 48 {
		return "", false
	}
	return nameCaser.String(strings.ToLower(name)), true
}
