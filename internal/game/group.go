package game

import (
	"log/slog"
	"sync"

	"github.com/pixil98/go-realm/internal/wire"
)

// GroupKind distinguishes a normal party/raid from a group substituted in
// during a restricted activity.
type GroupKind uint8

const (
	GroupKindNormal GroupKind = iota
	GroupKindActivity
)

// LootMethod selects how loot is distributed within a group.
type LootMethod uint8

const (
	LootFreeForAll LootMethod = iota
	LootRoundRobin
	LootMasterLoot
	LootGroupLoot
	LootNeedBeforeGreed
)

// ItemQuality is the loot threshold scale.
type ItemQuality uint8

const (
	QualityPoor ItemQuality = iota
	QualityCommon
	QualityUncommon
	QualityRare
	QualityEpic
)

// MaxTargetIcons is the number of raid target icon slots.
const MaxTargetIcons = 8

// TargetIconRequest is the reserved slot value that asks for the full icon
// list instead of updating a slot.
const TargetIconRequest = 0xFF

// Group is the shared party/raid entity coordinating a bounded set of
// actors. Methods take the group's own lock: at most one mutating
// operation progresses per group, while unrelated groups stay independent.
// Cross-group invariants (a player belongs to at most one group) are the
// Coordinator's job, not this type's.
type Group struct {
	mu sync.RWMutex

	id         uint64
	kind       GroupKind
	leaderID   uint64
	leaderName string
	raid       bool
	created    bool

	roster *Roster

	lootMethod    LootMethod
	looterID      uint64
	lootThreshold ItemQuality

	targetIcons [MaxTargetIcons]uint64

	rolls      map[uint64]*RollSession
	readyCheck *ReadyCheckSession
}

// NewGroup creates a pending (not yet registered) group led by the given
// player. The group holds only the leader invite until the first accept.
func NewGroup(leader *PlayerState) *Group {
	g := &Group{
		kind:          GroupKindNormal,
		leaderID:      leader.ID,
		leaderName:    leader.Name,
		roster:        NewRoster(),
		lootMethod:    LootGroupLoot,
		lootThreshold: QualityUncommon,
		rolls:         make(map[uint64]*RollSession),
	}
	g.roster.AddInvite(leader.ID, leader.Name)
	return g
}

func (g *Group) ID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *Group) Kind() GroupKind {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.kind
}

func (g *Group) IsCreated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.created
}

func (g *Group) IsRaid() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.raid
}

func (g *Group) LeaderID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.leaderID
}

func (g *Group) LeaderName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.leaderName
}

func (g *Group) IsLeader(id uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.leaderID == id
}

func (g *Group) IsAssistant(id uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.HasFlag(id, MemberFlagAssistant)
}

func (g *Group) IsMember(id uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.IsMember(id)
}

func (g *Group) IsInvited(id uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.IsInvited(id)
}

func (g *Group) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.Count()
}

// Members returns a read-only snapshot of the roster slots.
func (g *Group) Members() []*Member {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.Members()
}

// MemberIDByName resolves a member id from a normalized name.
func (g *Group) MemberIDByName(name string) uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if m := g.roster.FindByName(name); m != nil {
		return m.ID
	}
	return 0
}

func (g *Group) capLocked() int {
	if g.raid {
		return MaxRaidSize
	}
	return MaxPartySize
}

// IsFull reports whether the group is at member capacity.
func (g *Group) IsFull() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.Count() >= g.capLocked()
}

/* invites */

func (g *Group) AddInvite(p *PlayerState) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.AddInvite(p.ID, p.Name)
}

func (g *Group) RemoveInvite(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.RemoveInvite(id)
}

// Invitees returns a snapshot of outstanding invite ids.
func (g *Group) Invitees() []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.Invitees()
}

func (g *Group) ClearInvites() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roster.ClearInvites()
}

/* lifecycle */

// Create promotes a pending group: assigns its identity and seats the
// leader as the first member. Called exactly once, on first accept.
func (g *Group) Create(id uint64, leader *PlayerState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.created {
		slog.Warn("create called on already created group", "group", g.id)
		return
	}
	g.id = id
	g.created = true
	g.roster.RemoveInvite(leader.ID)
	g.roster.Add(&Member{
		ID:     leader.ID,
		Name:   leader.Name,
		Roles:  leader.Roles,
		Online: leader.Online,
	}, g.capLocked())
}

// AddMember seats a player into the roster. Raid members land in the first
// open subgroup. Returns false when the group is full.
func (g *Group) AddMember(p *PlayerState) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := &Member{
		ID:     p.ID,
		Name:   p.Name,
		Roles:  p.Roles,
		Online: p.Online,
	}
	if g.raid {
		m.Subgroup = g.roster.firstOpenSubgroup()
	}
	return g.roster.Add(m, g.capLocked())
}

// RemoveMember drops a member. Returns the remaining member count and
// whether the member was present. Leadership passes to the first remaining
// member when the leader leaves.
func (g *Group) RemoveMember(id uint64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := g.roster.Remove(id)
	if ok && g.leaderID == id {
		if members := g.roster.Members(); len(members) > 0 {
			g.leaderID = members[0].ID
			g.leaderName = members[0].Name
		}
	}
	return g.roster.Count(), ok
}

// ChangeLeader reassigns leadership to an existing member.
func (g *Group) ChangeLeader(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.roster.Find(id)
	if m == nil {
		return false
	}
	g.leaderID = m.ID
	g.leaderName = m.Name
	return true
}

// ConvertToRaid widens the cap and enables subgroup placement.
func (g *Group) ConvertToRaid() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raid = true
}

// ConvertToParty shrinks a raid back to a party. Refused when membership
// exceeds the party cap: the narrower cap invariant must never be violated
// retroactively. Raid-only flags are cleared and members collapse into the
// single implicit subgroup.
func (g *Group) ConvertToParty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roster.Count() > MaxPartySize {
		return false
	}
	g.raid = false
	for _, m := range g.roster.Members() {
		m.Subgroup = 0
		m.Flags = 0
	}
	return true
}

/* loot configuration */

func (g *Group) SetLootMethod(m LootMethod) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lootMethod = m
}

func (g *Group) SetLooter(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.looterID = id
}

func (g *Group) SetLootThreshold(q ItemQuality) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lootThreshold = q
}

func (g *Group) LootConfig() (LootMethod, uint64, ItemQuality) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lootMethod, g.looterID, g.lootThreshold
}

/* member attributes */

// SetMemberFlag applies or clears a role flag on one member.
func (g *Group) SetMemberFlag(id uint64, flag MemberFlags, apply bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.SetFlag(id, flag, apply)
}

// ClearUniqueFlag strips a flag from every member so it can be re-applied
// to exactly one.
func (g *Group) ClearUniqueFlag(flag MemberFlags) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roster.ClearFlagAll(flag)
}

// HasMemberFlag reports whether the member carries the flag.
func (g *Group) HasMemberFlag(id uint64, flag MemberFlags) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.HasFlag(id, flag)
}

// HasFreeSlotSubgroup reports whether the subgroup can seat another member.
func (g *Group) HasFreeSlotSubgroup(subgroup uint8) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roster.HasFreeSlot(subgroup)
}

// ChangeMemberSubgroup moves a member between raid subgroups.
func (g *Group) ChangeMemberSubgroup(id uint64, subgroup uint8) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.MoveToSubgroup(id, subgroup)
}

// SetMemberRoles updates a member's combat-role bitmask.
func (g *Group) SetMemberRoles(id uint64, roles uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.roster.Find(id)
	if m == nil {
		return false
	}
	m.Roles = roles
	return true
}

// SetMemberOnline records a member's online snapshot.
func (g *Group) SetMemberOnline(id uint64, online bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.roster.Find(id); m != nil {
		m.Online = online
	}
}

/* target icons */

// SetTargetIcon binds an icon slot to a target, clearing the icon from any
// previous target first so a target carries at most one icon.
func (g *Group) SetTargetIcon(slot uint8, target uint64) bool {
	if slot >= MaxTargetIcons {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if target != 0 {
		for i, t := range g.targetIcons {
			if t == target {
				g.targetIcons[i] = 0
			}
		}
	}
	g.targetIcons[slot] = target
	return true
}

// TargetIcons returns the current slot assignments.
func (g *Group) TargetIcons() [MaxTargetIcons]uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.targetIcons
}

/* broadcast */

// Broadcast delivers a packet to every member except those listed. Sends
// are handed to the PacketSender and never block on a recipient.
func (g *Group) Broadcast(sender PacketSender, pkt *wire.Packet, exclude ...uint64) {
	skip := make(map[uint64]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for _, m := range g.Members() {
		if skip[m.ID] {
			continue
		}
		if err := sender.SendTo(m.ID, pkt); err != nil {
			slog.Warn("group broadcast send", "group", g.ID(), "member", m.ID, "error", err)
		}
	}
}
