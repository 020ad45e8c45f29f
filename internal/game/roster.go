package game

// Capacity constants for parties and raids.
const (
	MaxPartySize     = 5
	MaxRaidSize      = 40
	MaxRaidSubgroups = 8
	MaxSubgroupSize  = 5
)

// MemberFlags are raid-only role markers on a roster slot.
type MemberFlags uint8

const (
	MemberFlagAssistant  MemberFlags = 0x01
	MemberFlagMainTank   MemberFlags = 0x02
	MemberFlagMainAssist MemberFlags = 0x04
)

// Member is one roster slot.
type Member struct {
	ID       uint64
	Name     string
	Subgroup uint8
	Flags    MemberFlags
	Roles    uint32
	Online   bool
}

// Roster holds a group's membership and outstanding invites. It is pure
// data; callers are responsible for locking. Mutators preserve the roster
// invariants (capacity, subgroup occupancy, flag uniqueness) and report
// violations instead of applying them.
type Roster struct {
	members  []*Member
	invitees map[uint64]string
}

func NewRoster() *Roster {
	return &Roster{invitees: make(map[uint64]string)}
}

func (r *Roster) Count() int {
	return len(r.members)
}

// Members returns a snapshot slice of the current slots. The slice is a
// copy; the records are shared and must be treated as read-only.
func (r *Roster) Members() []*Member {
	out := make([]*Member, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Roster) Find(id uint64) *Member {
	for _, m := range r.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *Roster) FindByName(name string) *Member {
	for _, m := range r.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (r *Roster) IsMember(id uint64) bool {
	return r.Find(id) != nil
}

// SubgroupCount returns the number of occupants of one raid subgroup.
func (r *Roster) SubgroupCount(subgroup uint8) int {
	n := 0
	for _, m := range r.members {
		if m.Subgroup == subgroup {
			n++
		}
	}
	return n
}

// HasFreeSlot reports whether the subgroup can take one more member.
func (r *Roster) HasFreeSlot(subgroup uint8) bool {
	return r.SubgroupCount(subgroup) < MaxSubgroupSize
}

// firstOpenSubgroup picks the lowest-index subgroup with room, used when a
// member joins a raid without explicit placement.
func (r *Roster) firstOpenSubgroup() uint8 {
	for sg := uint8(0); sg < MaxRaidSubgroups; sg++ {
		if r.HasFreeSlot(sg) {
			return sg
		}
	}
	return 0
}

// Add appends a member into the given subgroup. It refuses additions that
// would exceed the cap or overfill the subgroup.
func (r *Roster) Add(m *Member, limit int) bool {
	if len(r.members) >= limit {
		return false
	}
	if !r.HasFreeSlot(m.Subgroup) {
		return false
	}
	if r.IsMember(m.ID) {
		return false
	}
	r.members = append(r.members, m)
	return true
}

// Remove drops the member with the given id. Returns true if present.
func (r *Roster) Remove(id uint64) bool {
	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

// MoveToSubgroup reassigns a member's subgroup, refusing moves into a full
// subgroup.
func (r *Roster) MoveToSubgroup(id uint64, subgroup uint8) bool {
	m := r.Find(id)
	if m == nil || m.Subgroup == subgroup {
		return false
	}
	if !r.HasFreeSlot(subgroup) {
		return false
	}
	m.Subgroup = subgroup
	return true
}

// SetFlag applies or clears a role flag on one member.
func (r *Roster) SetFlag(id uint64, flag MemberFlags, apply bool) bool {
	m := r.Find(id)
	if m == nil {
		return false
	}
	if apply {
		m.Flags |= flag
	} else {
		m.Flags &^= flag
	}
	return true
}

// ClearFlagAll removes a flag from every member. Used before applying the
// unique flags (main tank, main assist) so at most one member carries each.
func (r *Roster) ClearFlagAll(flag MemberFlags) {
	for _, m := range r.members {
		m.Flags &^= flag
	}
}

// HasFlag reports whether the member carries the flag.
func (r *Roster) HasFlag(id uint64, flag MemberFlags) bool {
	m := r.Find(id)
	return m != nil && m.Flags&flag != 0
}

/* invites */

func (r *Roster) AddInvite(id uint64, name string) bool {
	if _, ok := r.invitees[id]; ok {
		return false
	}
	r.invitees[id] = name
	return true
}

func (r *Roster) RemoveInvite(id uint64) bool {
	if _, ok := r.invitees[id]; !ok {
		return false
	}
	delete(r.invitees, id)
	return true
}

func (r *Roster) IsInvited(id uint64) bool {
	_, ok := r.invitees[id]
	return ok
}

// Invitees returns a snapshot of outstanding invite ids.
func (r *Roster) Invitees() []uint64 {
	out := make([]uint64, 0, len(r.invitees))
	for id := range r.invitees {
		out = append(out, id)
	}
	return out
}

func (r *Roster) ClearInvites() {
	r.invitees = make(map[uint64]string)
}
