package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRosterAdd(t *testing.T) {
	tests := map[string]struct {
		seed    []*Member
		add     *Member
		limit   int
		expOk   bool
		expSize int
	}{
		"first member": {
			add:     &Member{ID: 1, Name: "Alleria"},
			limit:   MaxPartySize,
			expOk:   true,
			expSize: 1,
		},
		"at capacity": {
			seed: []*Member{
				{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5},
			},
			add:     &Member{ID: 6},
			limit:   MaxPartySize,
			expOk:   false,
			expSize: 5,
		},
		"duplicate id": {
			seed:    []*Member{{ID: 1}},
			add:     &Member{ID: 1},
			limit:   MaxPartySize,
			expOk:   false,
			expSize: 1,
		},
		"subgroup full": {
			seed: []*Member{
				{ID: 1, Subgroup: 2}, {ID: 2, Subgroup: 2}, {ID: 3, Subgroup: 2},
				{ID: 4, Subgroup: 2}, {ID: 5, Subgroup: 2},
			},
			add:     &Member{ID: 6, Subgroup: 2},
			limit:   MaxRaidSize,
			expOk:   false,
			expSize: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRoster()
			for _, m := range tt.seed {
				if !r.Add(m, MaxRaidSize) {
					t.Fatalf("seeding member %d", m.ID)
				}
			}

			testutil.AssertEqual(t, "add result", r.Add(tt.add, tt.limit), tt.expOk)
			testutil.AssertEqual(t, "count", r.Count(), tt.expSize)
		})
	}
}

func TestRosterRemove(t *testing.T) {
	r := NewRoster()
	r.Add(&Member{ID: 1}, MaxPartySize)
	r.Add(&Member{ID: 2}, MaxPartySize)

	testutil.AssertEqual(t, "remove present", r.Remove(1), true)
	testutil.AssertEqual(t, "remove absent", r.Remove(1), false)
	testutil.AssertEqual(t, "count", r.Count(), 1)
	testutil.AssertEqual(t, "remaining member", r.IsMember(2), true)
}

func TestRosterMoveToSubgroup(t *testing.T) {
	tests := map[string]struct {
		seed     []*Member
		id       uint64
		subgroup uint8
		expOk    bool
	}{
		"move to open subgroup": {
			seed:     []*Member{{ID: 1, Subgroup: 0}},
			id:       1,
			subgroup: 3,
			expOk:    true,
		},
		"same subgroup": {
			seed:     []*Member{{ID: 1, Subgroup: 1}},
			id:       1,
			subgroup: 1,
			expOk:    false,
		},
		"unknown member": {
			id:       9,
			subgroup: 1,
			expOk:    false,
		},
		"full subgroup": {
			seed: []*Member{
				{ID: 1, Subgroup: 0},
				{ID: 2, Subgroup: 1}, {ID: 3, Subgroup: 1}, {ID: 4, Subgroup: 1},
				{ID: 5, Subgroup: 1}, {ID: 6, Subgroup: 1},
			},
			id:       1,
			subgroup: 1,
			expOk:    false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRoster()
			for _, m := range tt.seed {
				r.Add(m, MaxRaidSize)
			}

			testutil.AssertEqual(t, "move result", r.MoveToSubgroup(tt.id, tt.subgroup), tt.expOk)
			if tt.expOk {
				testutil.AssertEqual(t, "subgroup", r.Find(tt.id).Subgroup, tt.subgroup)
			}
		})
	}
}

func TestRosterFlags(t *testing.T) {
	r := NewRoster()
	r.Add(&Member{ID: 1}, MaxRaidSize)
	r.Add(&Member{ID: 2}, MaxRaidSize)

	testutil.AssertEqual(t, "set on member", r.SetFlag(1, MemberFlagMainTank, true), true)
	testutil.AssertEqual(t, "set on stranger", r.SetFlag(9, MemberFlagMainTank, true), false)
	testutil.AssertEqual(t, "has flag", r.HasFlag(1, MemberFlagMainTank), true)

	r.SetFlag(2, MemberFlagMainTank, true)
	r.ClearFlagAll(MemberFlagMainTank)
	testutil.AssertEqual(t, "cleared 1", r.HasFlag(1, MemberFlagMainTank), false)
	testutil.AssertEqual(t, "cleared 2", r.HasFlag(2, MemberFlagMainTank), false)

	r.SetFlag(1, MemberFlagAssistant|MemberFlagMainAssist, true)
	r.SetFlag(1, MemberFlagMainAssist, false)
	testutil.AssertEqual(t, "assistant kept", r.HasFlag(1, MemberFlagAssistant), true)
	testutil.AssertEqual(t, "main assist dropped", r.HasFlag(1, MemberFlagMainAssist), false)
}

func TestRosterInvites(t *testing.T) {
	r := NewRoster()

	testutil.AssertEqual(t, "add", r.AddInvite(7, "Velen"), true)
	testutil.AssertEqual(t, "add duplicate", r.AddInvite(7, "Velen"), false)
	testutil.AssertEqual(t, "is invited", r.IsInvited(7), true)
	testutil.AssertEqual(t, "remove", r.RemoveInvite(7), true)
	testutil.AssertEqual(t, "remove absent", r.RemoveInvite(7), false)

	r.AddInvite(1, "A")
	r.AddInvite(2, "B")
	testutil.AssertEqual(t, "invitees", len(r.Invitees()), 2)
	r.ClearInvites()
	testutil.AssertEqual(t, "cleared", len(r.Invitees()), 0)
}

func TestRosterFirstOpenSubgroup(t *testing.T) {
	r := NewRoster()
	for i := uint64(1); i <= MaxSubgroupSize; i++ {
		r.Add(&Member{ID: i, Subgroup: 0}, MaxRaidSize)
	}

	testutil.AssertEqual(t, "skips full group", r.firstOpenSubgroup(), uint8(1))
}
