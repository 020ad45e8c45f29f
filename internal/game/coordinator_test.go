package game

import (
	"context"
	"testing"

	"github.com/pixil98/go-realm/internal/wire"
	"github.com/pixil98/go-testutil"
)

// fakeSender records every packet by recipient.
type fakeSender struct {
	sent map[uint64][]*wire.Packet
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[uint64][]*wire.Packet{}}
}

func (s *fakeSender) SendTo(playerID uint64, pkt *wire.Packet) error {
	s.sent[playerID] = append(s.sent[playerID], pkt)
	return nil
}

func (s *fakeSender) packetsTo(id uint64, op wire.Opcode) []*wire.Packet {
	var out []*wire.Packet
	for _, pkt := range s.sent[id] {
		if pkt.Opcode == op {
			out = append(out, pkt)
		}
	}
	return out
}

func (s *fakeSender) reset() {
	s.sent = map[uint64][]*wire.Packet{}
}

// fakeDirectory is an in-memory live-session lookup.
type fakeDirectory struct {
	players map[uint64]*PlayerState
}

func newFakeDirectory(players ...*PlayerState) *fakeDirectory {
	d := &fakeDirectory{players: map[uint64]*PlayerState{}}
	for _, p := range players {
		d.players[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) Find(id uint64) *PlayerState {
	return d.players[id]
}

func (d *fakeDirectory) FindByName(name string) *PlayerState {
	for _, p := range d.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (d *fakeDirectory) IsOnline(id uint64) bool {
	p, ok := d.players[id]
	return ok && p.Online
}

// lastResult decodes the newest party result sent to a player.
func lastResult(t *testing.T, s *fakeSender, id uint64) (PartyOperation, string, PartyResult) {
	t.Helper()
	results := s.packetsTo(id, wire.OpPartyCommandResult)
	if len(results) == 0 {
		t.Fatal("no party result sent")
	}
	pkt, err := wire.Decode(results[len(results)-1].Frame())
	if err != nil {
		t.Fatalf("decoding result: %s", err)
	}
	op, _ := pkt.ReadUint32()
	member, _ := pkt.ReadString()
	res, _ := pkt.ReadUint32()
	return PartyOperation(op), member, PartyResult(res)
}

func newTestCoordinator(t *testing.T, players ...*PlayerState) (*Coordinator, *fakeSender, *fakeDirectory) {
	t.Helper()
	sender := newFakeSender()
	directory := newFakeDirectory(players...)
	coord, err := NewCoordinator(directory, sender)
	if err != nil {
		t.Fatalf("creating coordinator: %s", err)
	}
	return coord, sender, directory
}

// formGroup runs the invite/accept handshake for each member after the
// leader.
func formGroup(t *testing.T, c *Coordinator, leader *PlayerState, members ...*PlayerState) *Group {
	t.Helper()
	ctx := context.Background()
	for _, m := range members {
		c.Invite(ctx, leader, m.Name)
		c.Accept(ctx, m)
	}
	g := c.groupOf(leader)
	if g == nil || !g.IsCreated() {
		t.Fatal("group not formed")
	}
	return g
}

func TestInviteSuccess(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	target := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, target)

	coord.Invite(context.Background(), leader, "jaina")

	op, member, res := lastResult(t, sender, 1)
	testutil.AssertEqual(t, "op", op, PartyOpInvite)
	testutil.AssertEqual(t, "member", member, "Jaina")
	testutil.AssertEqual(t, "result", res, ResultOk)

	notices := sender.packetsTo(2, wire.OpGroupInviteNotice)
	testutil.AssertEqual(t, "notice count", len(notices), 1)
	pkt, _ := wire.Decode(notices[0].Frame())
	canAccept, _ := pkt.ReadBool()
	inviter, _ := pkt.ReadString()
	testutil.AssertEqual(t, "can accept", canAccept, true)
	testutil.AssertEqual(t, "inviter", inviter, "Uther")

	if target.GroupInvite == nil {
		t.Fatal("target invite slot not bound")
	}
	if leader.Group != nil {
		t.Fatal("group bound before first accept")
	}
}

func TestInviteSecondTargetSharesPendingGroup(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	first := newTestPlayer(2, "Jaina")
	second := newTestPlayer(3, "Thrall")
	coord, sender, _ := newTestCoordinator(t, leader, first, second)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	coord.Invite(ctx, leader, "Thrall")

	op, member, res := lastResult(t, sender, 1)
	testutil.AssertEqual(t, "op", op, PartyOpInvite)
	testutil.AssertEqual(t, "member", member, "Thrall")
	testutil.AssertEqual(t, "result", res, ResultOk)

	if leader.GroupInvite == nil {
		t.Fatal("leader lost the pending group binding")
	}
	testutil.AssertEqual(t, "shared pending group", first.GroupInvite == leader.GroupInvite, true)
	testutil.AssertEqual(t, "shared pending group", second.GroupInvite == leader.GroupInvite, true)

	coord.Accept(ctx, first)
	coord.Accept(ctx, second)

	g := coord.groupOf(leader)
	if g == nil {
		t.Fatal("group not formed")
	}
	testutil.AssertEqual(t, "member count", g.MemberCount(), 3)
}

func TestInviteWhileInvitedKeepsBinding(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	invited := newTestPlayer(2, "Jaina")
	bystander := newTestPlayer(3, "Thrall")
	coord, _, _ := newTestCoordinator(t, leader, invited, bystander)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	pending := invited.GroupInvite
	if pending == nil {
		t.Fatal("invite not bound")
	}

	// An invitee cannot open a pending group of their own; the invite they
	// already hold stays intact.
	coord.Invite(ctx, invited, "Thrall")

	testutil.AssertEqual(t, "invite binding kept", invited.GroupInvite == pending, true)
	if bystander.GroupInvite != nil {
		t.Fatal("bystander bound to a discarded group")
	}
	testutil.AssertEqual(t, "invitee count", len(pending.Invitees()), 2)

	coord.Accept(ctx, invited)
	g := coord.groupOf(leader)
	if g == nil {
		t.Fatal("original invite no longer acceptable")
	}
	testutil.AssertEqual(t, "member count", g.MemberCount(), 2)
}

func TestInvitePreconditions(t *testing.T) {
	tests := map[string]struct {
		setup     func(coord *Coordinator, actor, target *PlayerState)
		target    string
		expMember string
		expResult PartyResult
	}{
		"unknown target": {
			target:    "Nobody",
			expMember: "Nobody",
			expResult: ResultBadPlayerName,
		},
		"unpronounceable name": {
			target:    "",
			expMember: "",
			expResult: ResultBadPlayerName,
		},
		"game master target": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				target.GameMaster = true
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultBadPlayerName,
		},
		"wrong faction": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				target.Team = TeamHorde
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultWrongFaction,
		},
		"different instance of same map": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				actor.MapID, actor.InstanceID = 30, 7
				target.MapID, target.InstanceID = 30, 8
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultTargetNotInInstance,
		},
		"difficulty mismatch": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				target.InstanceID = 8
				target.DungeonDifficulty = 1
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultIgnoringYou,
		},
		"ignored by target": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				target.Ignored = map[uint64]bool{actor.ID: true}
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultIgnoringYou,
		},
		"target already invited elsewhere": {
			setup: func(coord *Coordinator, actor, target *PlayerState) {
				target.GroupInvite = NewGroup(newTestPlayer(9, "Other"))
			},
			target:    "Jaina",
			expMember: "Jaina",
			expResult: ResultAlreadyInGroup,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			actor := newTestPlayer(1, "Uther")
			target := newTestPlayer(2, "Jaina")
			coord, sender, _ := newTestCoordinator(t, actor, target)
			if tt.setup != nil {
				tt.setup(coord, actor, target)
			}

			coord.Invite(context.Background(), actor, tt.target)

			_, member, res := lastResult(t, sender, 1)
			testutil.AssertEqual(t, "member", member, tt.expMember)
			testutil.AssertEqual(t, "result", res, tt.expResult)
			if actor.GroupInvite != nil {
				t.Fatal("failed invite left a dangling pending group")
			}
		})
	}
}

func TestInviteGroupedTargetGetsFailedNotice(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	outsider := newTestPlayer(3, "Illidan")
	coord, sender, _ := newTestCoordinator(t, leader, member, outsider)
	formGroup(t, coord, leader, member)
	sender.reset()

	coord.Invite(context.Background(), outsider, "Jaina")

	_, _, res := lastResult(t, sender, 3)
	testutil.AssertEqual(t, "result", res, ResultAlreadyInGroup)

	notices := sender.packetsTo(2, wire.OpGroupInviteNotice)
	testutil.AssertEqual(t, "notice count", len(notices), 1)
	pkt, _ := wire.Decode(notices[0].Frame())
	canAccept, _ := pkt.ReadBool()
	testutil.AssertEqual(t, "cannot accept", canAccept, false)
}

func TestInviteRequiresPrivilege(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	outsider := newTestPlayer(3, "Illidan")
	coord, sender, _ := newTestCoordinator(t, leader, member, outsider)
	group := formGroup(t, coord, leader, member)
	sender.reset()

	coord.Invite(context.Background(), member, "Illidan")
	_, _, res := lastResult(t, sender, 2)
	testutil.AssertEqual(t, "plain member refused", res, ResultNotLeader)

	group.SetMemberFlag(2, MemberFlagAssistant, true)
	coord.Invite(context.Background(), member, "Illidan")
	_, _, res = lastResult(t, sender, 2)
	testutil.AssertEqual(t, "assistant allowed", res, ResultOk)
}

func TestAcceptRoundTrip(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	coord.Accept(ctx, member)

	g := coord.groupOf(leader)
	if g == nil {
		t.Fatal("leader unbound")
	}
	testutil.AssertEqual(t, "same group", coord.groupOf(member) == g, true)
	testutil.AssertEqual(t, "created", g.IsCreated(), true)
	testutil.AssertEqual(t, "members", g.MemberCount(), 2)
	testutil.AssertEqual(t, "leader", g.LeaderID(), uint64(1))
	testutil.AssertEqual(t, "indexed", coord.Group(g.ID()) == g, true)
	if leader.GroupInvite != nil || member.GroupInvite != nil {
		t.Fatal("invite slots not cleared")
	}

	// Both members got the roster update.
	testutil.AssertEqual(t, "leader update", len(sender.packetsTo(1, wire.OpGroupList)), 1)
	testutil.AssertEqual(t, "member update", len(sender.packetsTo(2, wire.OpGroupList)), 1)

	// Disband from the leader side destroys the pair group entirely. The
	// leaver gets a leave acknowledgment; the survivor learns the group is
	// gone.
	coord.Disband(ctx, leader)
	testutil.AssertEqual(t, "leader freed", coord.groupOf(leader) == nil, true)
	testutil.AssertEqual(t, "member freed", coord.groupOf(member) == nil, true)
	testutil.AssertEqual(t, "dropped from index", coord.Group(g.ID()) == nil, true)
	op, member2, res := lastResult(t, sender, 1)
	testutil.AssertEqual(t, "leave op", op, PartyOpLeave)
	testutil.AssertEqual(t, "leave member", member2, "Uther")
	testutil.AssertEqual(t, "leave result", res, ResultOk)
	testutil.AssertEqual(t, "member told", len(sender.packetsTo(2, wire.OpGroupDestroyed)), 1)
}

func TestAcceptWithoutInvite(t *testing.T) {
	actor := newTestPlayer(1, "Uther")
	coord, sender, _ := newTestCoordinator(t, actor)

	coord.Accept(context.Background(), actor)

	testutil.AssertEqual(t, "nothing sent", len(sender.sent), 0)
	testutil.AssertEqual(t, "still free", coord.groupOf(actor) == nil, true)
}

func TestAcceptIntoFullGroup(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	players := []*PlayerState{leader}
	for i := uint64(2); i <= 7; i++ {
		players = append(players, newTestPlayer(i, "Member"+string(rune('a'+i))))
	}
	coord, sender, _ := newTestCoordinator(t, players...)
	ctx := context.Background()

	// Invite the straggler while a seat is still open.
	formGroup(t, coord, leader, players[1], players[2], players[3])
	coord.Invite(ctx, leader, players[6].Name)
	coord.Invite(ctx, leader, players[4].Name)
	coord.Accept(ctx, players[4])
	coord.Invite(ctx, leader, players[5].Name)
	coord.Accept(ctx, players[5])

	g := coord.groupOf(leader)
	testutil.AssertEqual(t, "full", g.IsFull(), true)
	sender.reset()

	coord.Accept(ctx, players[6])

	_, _, res := lastResult(t, sender, players[6].ID)
	testutil.AssertEqual(t, "result", res, ResultGroupFull)
	testutil.AssertEqual(t, "not seated", g.IsMember(players[6].ID), false)
	if players[6].GroupInvite != nil {
		t.Fatal("invite not consumed")
	}
}

func TestDeclineDissolvesPendingGroup(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	target := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, target)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	coord.Decline(ctx, target)

	if leader.GroupInvite != nil || target.GroupInvite != nil {
		t.Fatal("invite slots survived decline")
	}
	notices := sender.packetsTo(1, wire.OpGroupDeclineNotice)
	testutil.AssertEqual(t, "decline notice", len(notices), 1)
	pkt, _ := wire.Decode(notices[0].Frame())
	name, _ := pkt.ReadString()
	testutil.AssertEqual(t, "decliner", name, "Jaina")

	// A second decline is a no-op.
	coord.Decline(ctx, target)
	testutil.AssertEqual(t, "still one notice", len(sender.packetsTo(1, wire.OpGroupDeclineNotice)), 1)
}

func TestDeclineNoticeRequiresReachableLeader(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	target := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, target)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	leader.Online = false
	coord.Decline(ctx, target)

	testutil.AssertEqual(t, "no notice", len(sender.packetsTo(1, wire.OpGroupDeclineNotice)), 0)
}

func TestUninviteKick(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	a := newTestPlayer(2, "Jaina")
	b := newTestPlayer(3, "Kel")
	coord, sender, _ := newTestCoordinator(t, leader, a, b)
	g := formGroup(t, coord, leader, a, b)
	sender.reset()

	coord.UninviteByID(context.Background(), leader, 2, "afk")

	testutil.AssertEqual(t, "removed", g.IsMember(2), false)
	testutil.AssertEqual(t, "target freed", coord.groupOf(a) == nil, true)
	testutil.AssertEqual(t, "kick notice", len(sender.packetsTo(2, wire.OpGroupUninviteNotice)), 1)
	testutil.AssertEqual(t, "group survives", g.MemberCount(), 2)
}

func TestUninvitePreconditions(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	formGroup(t, coord, leader, member)
	sender.reset()

	ctx := context.Background()

	// Kicking the leader is refused.
	coord.UninviteByID(ctx, member, 1, "")
	_, _, res := lastResult(t, sender, 2)
	testutil.AssertEqual(t, "leader protected", res, ResultNotLeader)

	// A stranger id is not in the group.
	coord.UninviteByID(ctx, leader, 99, "")
	_, _, res = lastResult(t, sender, 1)
	testutil.AssertEqual(t, "stranger", res, ResultTargetNotInGroup)

	// Self-targeting is dropped silently.
	coord.UninviteByID(ctx, leader, 1, "")
	testutil.AssertEqual(t, "self kick dropped", len(sender.packetsTo(1, wire.OpGroupUninviteNotice)), 0)
}

func TestUninviteByNameRevokesInvite(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	invitee := newTestPlayer(3, "Kel")
	coord, _, _ := newTestCoordinator(t, leader, member, invitee)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Kel")
	testutil.AssertEqual(t, "invited", g.IsInvited(3), true)

	coord.UninviteByName(ctx, leader, "kel")
	testutil.AssertEqual(t, "revoked", g.IsInvited(3), false)
	if invitee.GroupInvite != nil {
		t.Fatal("invite slot not released")
	}
}

func TestSetLeader(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	outsider := newTestPlayer(3, "Illidan")
	coord, _, _ := newTestCoordinator(t, leader, member, outsider)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	// Only the leader may hand off, and only to a member.
	coord.SetLeader(ctx, member, 2)
	testutil.AssertEqual(t, "non-leader refused", g.LeaderID(), uint64(1))
	coord.SetLeader(ctx, leader, 3)
	testutil.AssertEqual(t, "outsider refused", g.LeaderID(), uint64(1))

	coord.SetLeader(ctx, leader, 2)
	testutil.AssertEqual(t, "reassigned", g.LeaderID(), uint64(2))
}

func TestLeaderLeaveSuccession(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	a := newTestPlayer(2, "Jaina")
	b := newTestPlayer(3, "Kel")
	coord, _, _ := newTestCoordinator(t, leader, a, b)
	g := formGroup(t, coord, leader, a, b)

	coord.Disband(context.Background(), leader)

	testutil.AssertEqual(t, "group survives", g.MemberCount(), 2)
	testutil.AssertEqual(t, "leadership passed", g.LeaderID() != uint64(1), true)
	testutil.AssertEqual(t, "leader freed", coord.groupOf(leader) == nil, true)
}

func TestConvertRaidAndBack(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, directory := newTestCoordinator(t, leader, member)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	coord.ConvertRaid(ctx, member, true)
	testutil.AssertEqual(t, "non-leader refused", g.IsRaid(), false)

	coord.ConvertRaid(ctx, leader, true)
	testutil.AssertEqual(t, "raid", g.IsRaid(), true)

	// Grow past the party cap, then try to shrink back.
	for i := uint64(3); i <= 6; i++ {
		p := newTestPlayer(i, "Extra"+string(rune('a'+i)))
		directory.players[i] = p
		coord.Invite(ctx, leader, p.Name)
		coord.Accept(ctx, p)
	}
	sender.reset()

	coord.ConvertRaid(ctx, leader, false)
	_, _, res := lastResult(t, sender, 1)
	testutil.AssertEqual(t, "oversized refused", res, ResultGroupFull)
	testutil.AssertEqual(t, "still raid", g.IsRaid(), true)
}

func TestMainTankExclusivity(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	a := newTestPlayer(2, "Jaina")
	b := newTestPlayer(3, "Kel")
	coord, _, _ := newTestCoordinator(t, leader, a, b)
	g := formGroup(t, coord, leader, a, b)
	ctx := context.Background()

	coord.PartyAssignment(ctx, leader, AssignMainTank, true, 2)
	coord.PartyAssignment(ctx, leader, AssignMainTank, true, 3)

	testutil.AssertEqual(t, "old holder cleared", g.HasMemberFlag(2, MemberFlagMainTank), false)
	testutil.AssertEqual(t, "new holder set", g.HasMemberFlag(3, MemberFlagMainTank), true)

	// Non-leaders cannot assign.
	coord.PartyAssignment(ctx, a, AssignMainAssist, true, 2)
	testutil.AssertEqual(t, "non-leader refused", g.HasMemberFlag(2, MemberFlagMainAssist), false)
}

func TestRandomRollBounds(t *testing.T) {
	actor := newTestPlayer(1, "Uther")
	coord, sender, _ := newTestCoordinator(t, actor)
	ctx := context.Background()

	coord.RandomRoll(ctx, actor, 5, 3)
	coord.RandomRoll(ctx, actor, 0, RandomRollCeiling+1)
	testutil.AssertEqual(t, "rejected rolls", len(sender.packetsTo(1, wire.OpRandomRoll)), 0)

	coord.RandomRoll(ctx, actor, 0, RandomRollCeiling)
	rolls := sender.packetsTo(1, wire.OpRandomRoll)
	testutil.AssertEqual(t, "solo reply", len(rolls), 1)

	pkt, _ := wire.Decode(rolls[0].Frame())
	minRoll, _ := pkt.ReadUint32()
	maxRoll, _ := pkt.ReadUint32()
	result, _ := pkt.ReadUint32()
	testutil.AssertEqual(t, "min", minRoll, uint32(0))
	testutil.AssertEqual(t, "max", maxRoll, uint32(RandomRollCeiling))
	if result > RandomRollCeiling {
		t.Fatalf("roll %d out of range", result)
	}
}

func TestLootRollBroadcasts(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	formGroup(t, coord, leader, member)
	sender.reset()

	ctx := context.Background()
	coord.LootRoll(ctx, leader, 7000, 2, RollNeed)

	// The first vote opens the session for everyone.
	testutil.AssertEqual(t, "start broadcast", len(sender.packetsTo(2, wire.OpLootStartRoll)), 1)
	testutil.AssertEqual(t, "not resolved yet", len(sender.packetsTo(1, wire.OpLootRollWon)), 0)

	coord.LootRoll(ctx, member, 7000, 2, RollPass)

	won := sender.packetsTo(2, wire.OpLootRollWon)
	testutil.AssertEqual(t, "resolution broadcast", len(won), 1)
	pkt, _ := wire.Decode(won[0].Frame())
	itemRef, _ := pkt.ReadUint64()
	winner, _ := pkt.ReadUint64()
	testutil.AssertEqual(t, "item", itemRef, uint64(7000))
	testutil.AssertEqual(t, "winner", winner, uint64(1))
}

func TestMinimapPingExcludesActor(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	formGroup(t, coord, leader, member)
	sender.reset()

	coord.MinimapPing(context.Background(), leader, 1.0, 2.0)

	testutil.AssertEqual(t, "actor skipped", len(sender.packetsTo(1, wire.OpMinimapPing)), 0)
	testutil.AssertEqual(t, "member pinged", len(sender.packetsTo(2, wire.OpMinimapPing)), 1)
}

func TestTargetIconPrivileges(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	// Anyone may mark in a party.
	coord.SetTargetIcon(ctx, member, 0, 500)
	testutil.AssertEqual(t, "party member marked", g.TargetIcons()[0], uint64(500))

	// In a raid marking needs privilege; the list does not.
	coord.ConvertRaid(ctx, leader, true)
	coord.SetTargetIcon(ctx, member, 1, 600)
	testutil.AssertEqual(t, "raid member refused", g.TargetIcons()[1], uint64(0))

	sender.reset()
	coord.TargetIconList(ctx, member)
	testutil.AssertEqual(t, "list replied", len(sender.packetsTo(2, wire.OpRaidTargetUpdate)), 1)
}

func TestReadyCheckFlow(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	a := newTestPlayer(2, "Jaina")
	b := newTestPlayer(3, "Kel")
	coord, sender, _ := newTestCoordinator(t, leader, a, b)
	g := formGroup(t, coord, leader, a, b)

	b.Online = false
	g.SetMemberOnline(3, false)
	sender.reset()

	ctx := context.Background()
	coord.StartReadyCheck(ctx, leader)

	testutil.AssertEqual(t, "started broadcast", len(sender.packetsTo(2, wire.OpReadyCheckStarted)), 1)
	// The offline member is reported not ready right away.
	confirms := sender.packetsTo(2, wire.OpReadyCheckConfirm)
	testutil.AssertEqual(t, "offline confirm", len(confirms), 1)
	pkt, _ := wire.Decode(confirms[0].Frame())
	who, _ := pkt.ReadUint64()
	state, _ := pkt.ReadUint8()
	testutil.AssertEqual(t, "offline member", who, uint64(3))
	testutil.AssertEqual(t, "not ready", state, uint8(ReadyNo))

	coord.RespondReadyCheck(ctx, a, ReadyYes)
	testutil.AssertEqual(t, "answer rebroadcast", len(sender.packetsTo(1, wire.OpReadyCheckConfirm)), 2)

	// Plain members cannot start a check.
	sender.reset()
	coord.StartReadyCheck(ctx, a)
	testutil.AssertEqual(t, "member refused", len(sender.packetsTo(1, wire.OpReadyCheckStarted)), 0)
}

func TestRequestMemberStats(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	subject := statsPlayer()
	coord, sender, _ := newTestCoordinator(t, leader, subject)
	ctx := context.Background()

	coord.RequestMemberStats(ctx, leader, subject.ID)
	full := sender.packetsTo(1, wire.OpMemberStatsFull)
	testutil.AssertEqual(t, "full snapshot", len(full), 1)

	subject.Online = false
	coord.RequestMemberStats(ctx, leader, subject.ID)
	coord.RequestMemberStats(ctx, leader, 99)
	full = sender.packetsTo(1, wire.OpMemberStatsFull)
	testutil.AssertEqual(t, "offline forms", len(full), 3)
}

func TestPublishMemberStats(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	formGroup(t, coord, leader, member)
	sender.reset()

	leader.Stats.CurHealth = 10
	leader.UpdateMask = UpdateFlagCurHealth
	coord.PublishMemberStats(leader)

	testutil.AssertEqual(t, "mask cleared", leader.UpdateMask, uint32(0))
	testutil.AssertEqual(t, "actor skipped", len(sender.packetsTo(1, wire.OpMemberStats)), 0)
	testutil.AssertEqual(t, "member updated", len(sender.packetsTo(2, wire.OpMemberStats)), 1)

	// Nothing pending, nothing sent.
	coord.PublishMemberStats(leader)
	testutil.AssertEqual(t, "no empty update", len(sender.packetsTo(2, wire.OpMemberStats)), 1)
}

func TestSetRoles(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	outsider := newTestPlayer(3, "Illidan")
	coord, _, _ := newTestCoordinator(t, leader, member, outsider)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	coord.SetRoles(ctx, leader, RoleHealer, 2)
	testutil.AssertEqual(t, "roles set", member.Roles, RoleHealer)
	for _, m := range g.Members() {
		if m.ID == 2 {
			testutil.AssertEqual(t, "roster mirrored", m.Roles, RoleHealer)
		}
	}

	// Cross-group role setting is refused.
	coord.SetRoles(ctx, outsider, RoleTank, 2)
	testutil.AssertEqual(t, "outsider refused", member.Roles, RoleHealer)
}

func TestDisconnectReconnect(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()

	member.Online = false
	coord.HandleDisconnect(ctx, member)
	testutil.AssertEqual(t, "still a member", g.IsMember(2), true)
	for _, m := range g.Members() {
		if m.ID == 2 {
			testutil.AssertEqual(t, "marked offline", m.Online, false)
		}
	}

	sender.reset()
	member.Online = true
	coord.HandleReconnect(ctx, member)
	for _, m := range g.Members() {
		if m.ID == 2 {
			testutil.AssertEqual(t, "marked online", m.Online, true)
		}
	}
	testutil.AssertEqual(t, "roster rebroadcast", len(sender.packetsTo(1, wire.OpGroupList)), 1)
}

func TestDisconnectFeedsStatusDelta(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, sender, _ := newTestCoordinator(t, leader, member)
	formGroup(t, coord, leader, member)
	ctx := context.Background()

	member.Online = false
	coord.HandleDisconnect(ctx, member)
	testutil.AssertEqual(t, "status staged", member.UpdateMask&UpdateFlagStatus, UpdateFlagStatus)
	testutil.AssertEqual(t, "status value", member.Stats.Status, StatusOffline)

	sender.reset()
	coord.PublishMemberStats(member)
	deltas := sender.packetsTo(1, wire.OpMemberStats)
	testutil.AssertEqual(t, "delta count", len(deltas), 1)
	pkt, _ := wire.Decode(deltas[0].Frame())
	guid, _ := pkt.ReadPackedGUID()
	testutil.AssertEqual(t, "guid", guid, uint64(2))
	mask, _ := pkt.ReadUint32()
	testutil.AssertEqual(t, "mask has status", mask&UpdateFlagStatus, UpdateFlagStatus)
	status, _ := pkt.ReadUint16()
	testutil.AssertEqual(t, "offline on the wire", status, StatusOffline)
	testutil.AssertEqual(t, "mask cleared", member.UpdateMask, uint32(0))

	member.Online = true
	coord.HandleReconnect(ctx, member)
	sender.reset()
	coord.PublishMemberStats(member)
	deltas = sender.packetsTo(1, wire.OpMemberStats)
	testutil.AssertEqual(t, "reconnect delta count", len(deltas), 1)
	pkt, _ = wire.Decode(deltas[0].Frame())
	pkt.ReadPackedGUID()
	pkt.ReadUint32()
	status, _ = pkt.ReadUint16()
	testutil.AssertEqual(t, "online on the wire", status, StatusOnline)
}

func TestDisconnectWithdrawsInvite(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	target := newTestPlayer(2, "Jaina")
	coord, _, _ := newTestCoordinator(t, leader, target)
	ctx := context.Background()

	coord.Invite(ctx, leader, "Jaina")
	target.Online = false
	coord.HandleDisconnect(ctx, target)

	if target.GroupInvite != nil || leader.GroupInvite != nil {
		t.Fatal("pending group survived invitee disconnect")
	}
}

func TestChangeSubGroup(t *testing.T) {
	leader := newTestPlayer(1, "Uther")
	member := newTestPlayer(2, "Jaina")
	coord, _, _ := newTestCoordinator(t, leader, member)
	g := formGroup(t, coord, leader, member)
	ctx := context.Background()
	coord.ConvertRaid(ctx, leader, true)

	coord.ChangeSubGroup(ctx, leader, "jaina", 2)
	for _, m := range g.Members() {
		if m.ID == 2 {
			testutil.AssertEqual(t, "moved", m.Subgroup, uint8(2))
		}
	}

	// Out-of-range index and non-privileged actors change nothing.
	coord.ChangeSubGroup(ctx, leader, "Jaina", MaxRaidSubgroups)
	coord.ChangeSubGroup(ctx, member, "Jaina", 3)
	for _, m := range g.Members() {
		if m.ID == 2 {
			testutil.AssertEqual(t, "unchanged", m.Subgroup, uint8(2))
		}
	}
}
