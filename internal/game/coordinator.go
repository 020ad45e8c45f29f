package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RandomRollCeiling bounds the max side of a random roll.
const RandomRollCeiling = 10000

// Assignment kinds carried by the party-assignment message.
const (
	AssignMainTank   uint8 = 0
	AssignMainAssist uint8 = 1
)

// GroupRecord is the durable shape of a registered group.
type GroupRecord struct {
	ID       uint64
	LeaderID uint64
	Raid     bool
}

// GroupRegistry persists group registration. Registering is a scoped
// resource acquisition performed once per group lifetime: on failure the
// group creation rolls back.
type GroupRegistry interface {
	Register(ctx context.Context, rec GroupRecord) error
	Unregister(ctx context.Context, id uint64) error
}

// NopRegistry is used when no durable registry is wired.
type NopRegistry struct{}

func (NopRegistry) Register(context.Context, GroupRecord) error { return nil }
func (NopRegistry) Unregister(context.Context, uint64) error    { return nil }

// Coordinator orchestrates group lifecycle transitions. It is the sole
// mutator of group membership and of every player's group-binding slots;
// its own lock guards those bindings and the group index, while each Group
// serializes its internal state independently.
type Coordinator struct {
	mu     sync.Mutex
	groups map[uint64]*Group

	directory Directory
	sender    PacketSender
	chars     CharacterLookup
	guard     ActivityGuard
	registry  GroupRegistry
	node      *snowflake.Node

	allowMixedFactions bool
	allowGMGroups      bool
}

func NewCoordinator(directory Directory, sender PacketSender, opts ...CoordinatorOpt) (*Coordinator, error) {
	node, err := snowflake.NewNode(0)
	if err != nil {
		return nil, fmt.Errorf("creating id node: %w", err)
	}

	c := &Coordinator{
		groups:    map[uint64]*Group{},
		directory: directory,
		sender:    sender,
		guard:     NopGuard{},
		registry:  NopRegistry{},
		node:      node,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Group returns the registered group with the given id, if any.
func (c *Coordinator) Group(id uint64) *Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups[id]
}

func (c *Coordinator) sendResult(p *PlayerState, op PartyOperation, member string, res PartyResult) {
	if err := c.sender.SendTo(p.ID, BuildPartyResult(op, member, res, 0)); err != nil {
		slog.Warn("sending party result", "player", p.ID, "error", err)
	}
}

func (c *Coordinator) broadcastUpdate(g *Group) {
	g.Broadcast(c.sender, BuildGroupList(g))
}

/* binding helpers: every read/write of a player's group slots happens
   under c.mu so the cross-group invariants hold atomically. */

// bindInvite records target's single outstanding invite. Refused when the
// target already has a current group or a pending invite.
func (c *Coordinator) bindInvite(target *PlayerState, g *Group) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target.CurrentGroup() != nil || target.GroupInvite != nil {
		return false
	}
	target.GroupInvite = g
	return true
}

func (c *Coordinator) clearInvite(p *PlayerState) *Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := p.GroupInvite
	p.GroupInvite = nil
	return g
}

func (c *Coordinator) inviteOf(p *PlayerState) *Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.GroupInvite
}

func (c *Coordinator) groupOf(p *PlayerState) *Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.CurrentGroup()
}

func (c *Coordinator) bindMember(p *PlayerState, g *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.Group = g
}

func (c *Coordinator) unbindMember(p *PlayerState, g *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.Group == g {
		p.Group = nil
	}
	if p.OriginalGroup == g {
		p.OriginalGroup = nil
	}
}

func (c *Coordinator) indexGroup(g *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[g.ID()] = g
}

func (c *Coordinator) dropGroup(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, id)
}

/* operations */

// Invite creates an invite for the named target. Preconditions are checked
// in order; the first failure wins and is acknowledged to the actor.
func (c *Coordinator) Invite(ctx context.Context, actor *PlayerState, targetName string) {
	name, ok := NormalizeName(targetName)
	if !ok {
		c.sendResult(actor, PartyOpInvite, targetName, ResultBadPlayerName)
		return
	}

	target := c.directory.FindByName(name)
	if target == nil {
		c.sendResult(actor, PartyOpInvite, name, ResultBadPlayerName)
		return
	}

	// Elevated targets are invisible to ordinary inviters.
	if !c.allowGMGroups && !actor.GameMaster && target.GameMaster {
		c.sendResult(actor, PartyOpInvite, name, ResultBadPlayerName)
		return
	}

	if !actor.GameMaster && !c.allowMixedFactions && actor.Team != target.Team {
		c.sendResult(actor, PartyOpInvite, name, ResultWrongFaction)
		return
	}

	// Both bound to different live instances of the same map.
	if actor.InstanceID != 0 && target.InstanceID != 0 &&
		actor.InstanceID != target.InstanceID && actor.MapID == target.MapID {
		c.sendResult(actor, PartyOpInvite, name, ResultTargetNotInInstance)
		return
	}

	if target.InstanceID != 0 && target.DungeonDifficulty != actor.DungeonDifficulty {
		c.sendResult(actor, PartyOpInvite, name, ResultIgnoringYou)
		return
	}

	if target.HasIgnored(actor.ID) {
		c.sendResult(actor, PartyOpInvite, name, ResultIgnoringYou)
		return
	}

	group := c.groupOf(actor)
	targetGroup := c.groupOf(target)

	if targetGroup != nil || c.inviteOf(target) != nil {
		c.sendResult(actor, PartyOpInvite, name, ResultAlreadyInGroup)
		if targetGroup != nil {
			// Tell the target an invite was attempted but failed for them.
			if err := c.sender.SendTo(target.ID, BuildInviteNotice(actor.Name, false)); err != nil {
				slog.Warn("sending failed-invite notice", "player", target.ID, "error", err)
			}
		}
		return
	}

	if group != nil {
		if !group.IsLeader(actor.ID) && !group.IsAssistant(actor.ID) {
			c.sendResult(actor, PartyOpInvite, "", ResultNotLeader)
			return
		}
		if group.IsFull() {
			c.sendResult(actor, PartyOpInvite, "", ResultGroupFull)
			return
		}
	}

	if group == nil {
		// A leader who already has a pending group keeps inviting into it
		// until the first accept lands.
		if pending := c.inviteOf(actor); pending != nil && pending.LeaderID() == actor.ID {
			group = pending
		}
	}

	if group == nil {
		// A new pending group: nothing is registered until the first
		// accept, so a failed second step just discards it whole.
		group = NewGroup(actor)
		if !c.bindInvite(actor, group) {
			// The actor already holds an invite to another group; that
			// binding stays untouched.
			return
		}
		if !group.AddInvite(target) || !c.bindInvite(target, group) {
			c.clearInvite(actor)
			return
		}
	} else {
		if !group.AddInvite(target) || !c.bindInvite(target, group) {
			group.RemoveInvite(target.ID)
			return
		}
	}

	if err := c.sender.SendTo(target.ID, BuildInviteNotice(actor.Name, true)); err != nil {
		slog.Warn("sending invite notice", "player", target.ID, "error", err)
	}
	c.sendResult(actor, PartyOpInvite, name, ResultOk)
}

// Accept joins the accepting actor to the group that invited them. This is
// the single operation that binds a player's current group.
func (c *Coordinator) Accept(ctx context.Context, actor *PlayerState) {
	group := c.inviteOf(actor)
	if group == nil {
		return
	}

	if group.LeaderID() == actor.ID {
		// Never legitimately reachable: a leader cannot accept into their
		// own pending group.
		slog.Error("player tried to accept an invite to their own group", "player", actor.ID, "name", actor.Name)
		return
	}

	// The invite is consumed no matter what follows.
	group.RemoveInvite(actor.ID)
	c.clearInvite(actor)

	if group.IsFull() {
		c.sendResult(actor, PartyOpInvite, "", ResultGroupFull)
		return
	}

	leader := c.directory.Find(group.LeaderID())

	if !group.IsCreated() {
		// A group cannot be created without a reachable leader; discard
		// every pending invite and abort.
		if leader == nil || !leader.Online {
			c.discardInvites(group)
			return
		}

		id := uint64(c.node.Generate().Int64())
		if err := c.registry.Register(ctx, GroupRecord{ID: id, LeaderID: leader.ID}); err != nil {
			slog.Error("registering group", "leader", leader.ID, "error", err)
			c.discardInvites(group)
			return
		}

		group.Create(id, leader)
		c.clearInvite(leader)
		c.bindMember(leader, group)
		c.indexGroup(group)
	}

	if !group.AddMember(actor) {
		return
	}
	c.bindMember(actor, group)

	c.broadcastUpdate(group)
}

// discardInvites clears every pending invite on a group, releasing each
// invitee's invite slot.
func (c *Coordinator) discardInvites(g *Group) {
	for _, id := range g.Invitees() {
		if p := c.directory.Find(id); p != nil {
			c.clearInvite(p)
		}
	}
	g.ClearInvites()
}

// Decline withdraws the actor's outstanding invite, if any, and notifies a
// reachable leader. Silently a no-op otherwise.
func (c *Coordinator) Decline(ctx context.Context, actor *PlayerState) {
	group := c.clearInvite(actor)
	if group == nil {
		return
	}
	group.RemoveInvite(actor.ID)
	c.maybeDissolvePending(group)

	leader := c.directory.Find(group.LeaderID())
	if leader == nil || !leader.Online {
		return
	}
	if err := c.sender.SendTo(leader.ID, BuildDeclineNotice(actor.Name)); err != nil {
		slog.Warn("sending decline notice", "player", leader.ID, "error", err)
	}
}

// maybeDissolvePending discards a never-created group once its last
// non-leader invite is gone.
func (c *Coordinator) maybeDissolvePending(g *Group) {
	if g.IsCreated() {
		return
	}
	invitees := g.Invitees()
	if len(invitees) == 1 && invitees[0] == g.LeaderID() {
		if leader := c.directory.Find(g.LeaderID()); leader != nil {
			c.clearInvite(leader)
		}
		g.ClearInvites()
	}
}

// UninviteByID kicks a member or revokes an invite, by identity.
func (c *Coordinator) UninviteByID(ctx context.Context, actor *PlayerState, targetID uint64, reason string) {
	if targetID == actor.ID {
		slog.Error("player tried to uninvite themselves", "player", actor.ID, "name", actor.Name)
		return
	}

	if res := c.guard.CanUninvite(actor); res != ResultOk {
		c.sendResult(actor, PartyOpUninvite, "", res)
		return
	}

	group := c.groupOf(actor)
	if group == nil {
		return
	}

	if group.IsLeader(targetID) {
		c.sendResult(actor, PartyOpUninvite, "", ResultNotLeader)
		return
	}

	if group.IsMember(targetID) {
		c.removeFromGroup(ctx, group, targetID, removeKick, actor.ID, reason)
		return
	}

	if group.IsInvited(targetID) {
		if p := c.directory.Find(targetID); p != nil {
			c.clearInvite(p)
		}
		group.RemoveInvite(targetID)
		return
	}

	c.sendResult(actor, PartyOpUninvite, "", ResultTargetNotInGroup)
}

// UninviteByName is UninviteByID with a durable-name lookup inside the
// actor's own group.
func (c *Coordinator) UninviteByName(ctx context.Context, actor *PlayerState, targetName string) {
	name, ok := NormalizeName(targetName)
	if !ok {
		return
	}
	if name == actor.Name {
		slog.Error("player tried to uninvite themselves", "player", actor.ID, "name", actor.Name)
		return
	}

	if res := c.guard.CanUninvite(actor); res != ResultOk {
		c.sendResult(actor, PartyOpUninvite, "", res)
		return
	}

	group := c.groupOf(actor)
	if group == nil {
		return
	}

	if id := group.MemberIDByName(name); id != 0 {
		if group.IsLeader(id) {
			c.sendResult(actor, PartyOpUninvite, "", ResultNotLeader)
			return
		}
		c.removeFromGroup(ctx, group, id, removeKick, actor.ID, "")
		return
	}

	if target := c.directory.FindByName(name); target != nil && group.IsInvited(target.ID) {
		c.clearInvite(target)
		group.RemoveInvite(target.ID)
		return
	}

	c.sendResult(actor, PartyOpUninvite, name, ResultTargetNotInGroup)
}

// removal reasons
type removeReason uint8

const (
	removeLeave removeReason = iota
	removeKick
)

// removeFromGroup drops one member, notifies the parties involved, and
// dissolves the group once fewer than two members remain.
func (c *Coordinator) removeFromGroup(ctx context.Context, g *Group, targetID uint64, reason removeReason, kickerID uint64, kickReason string) {
	remaining, ok := g.RemoveMember(targetID)
	if !ok {
		return
	}

	target := c.directory.Find(targetID)
	if target != nil {
		c.unbindMember(target, g)
	}

	if reason == removeKick {
		slog.Info("member kicked from group", "group", g.ID(), "member", targetID, "by", kickerID, "reason", kickReason)
		if err := c.sender.SendTo(targetID, BuildUninviteNotice()); err != nil {
			slog.Warn("sending uninvite notice", "player", targetID, "error", err)
		}
	}

	if remaining < 2 {
		c.disbandGroup(ctx, g)
		return
	}
	c.broadcastUpdate(g)
}

// disbandGroup destroys a group entirely: every member is unbound and told
// the group is gone, outstanding invites are discarded, and the registry
// slot is released.
func (c *Coordinator) disbandGroup(ctx context.Context, g *Group) {
	for _, m := range g.Members() {
		g.RemoveMember(m.ID)
		if p := c.directory.Find(m.ID); p != nil {
			c.unbindMember(p, g)
		}
		if err := c.sender.SendTo(m.ID, BuildGroupDestroyed()); err != nil {
			slog.Warn("sending group destroyed", "player", m.ID, "error", err)
		}
	}
	c.discardInvites(g)

	if g.IsCreated() {
		if err := c.registry.Unregister(ctx, g.ID()); err != nil {
			slog.Warn("unregistering group", "group", g.ID(), "error", err)
		}
		c.dropGroup(g.ID())
	}
}

// SetLeader reassigns leadership. No-op unless the actor leads the group
// and the target is a member of that same group.
func (c *Coordinator) SetLeader(ctx context.Context, actor *PlayerState, targetID uint64) {
	target := c.directory.Find(targetID)
	group := c.groupOf(actor)
	if group == nil || target == nil {
		return
	}
	if !group.IsLeader(actor.ID) || c.groupOf(target) != group {
		return
	}

	group.ChangeLeader(targetID)
	c.broadcastUpdate(group)
}

// Disband removes the acting actor from their group, dissolving the group
// when fewer than two members remain.
func (c *Coordinator) Disband(ctx context.Context, actor *PlayerState) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}

	if c.guard.InRestrictedActivity(actor) {
		c.sendResult(actor, PartyOpInvite, "", ResultInviteRestricted)
		return
	}

	c.sendResult(actor, PartyOpLeave, actor.Name, ResultOk)
	c.removeFromGroup(ctx, group, actor.ID, removeLeave, 0, "")
}

// SetLootMethod updates the group's loot configuration. Leader-only.
func (c *Coordinator) SetLootMethod(ctx context.Context, actor *PlayerState, method LootMethod, looterID uint64, threshold ItemQuality) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if !group.IsLeader(actor.ID) {
		return
	}

	group.SetLootMethod(method)
	group.SetLooter(looterID)
	group.SetLootThreshold(threshold)
	c.broadcastUpdate(group)
}

// LootRoll counts the actor's vote; a completed session broadcasts its
// resolution to the group.
func (c *Coordinator) LootRoll(ctx context.Context, actor *PlayerState, itemRef uint64, numEligible uint32, vote RollVote) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}

	opened := !group.HasRoll(itemRef)
	res, counted := group.CountRollVote(actor.ID, itemRef, numEligible, vote)
	if !counted {
		slog.Debug("roll vote from ineligible actor", "group", group.ID(), "player", actor.ID, "item", itemRef)
		return
	}
	if opened && res == nil {
		group.Broadcast(c.sender, BuildLootStartRoll(itemRef, numEligible))
	}
	if res != nil {
		group.Broadcast(c.sender, BuildRollWon(res))
	}
}

// MinimapPing relays a ping to every other member. No state change.
func (c *Coordinator) MinimapPing(ctx context.Context, actor *PlayerState, x, y float32) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	group.Broadcast(c.sender, BuildMinimapPing(actor.ID, x, y), actor.ID)
}

// RandomRoll draws a uniform integer in [minRoll, maxRoll] and announces
// it to the actor's group, or just the actor when ungrouped.
func (c *Coordinator) RandomRoll(ctx context.Context, actor *PlayerState, minRoll, maxRoll uint32) {
	if minRoll > maxRoll || maxRoll > RandomRollCeiling {
		return
	}

	roll := minRoll + uint32(rand.IntN(int(maxRoll-minRoll+1)))
	pkt := BuildRandomRoll(minRoll, maxRoll, roll, actor.ID)

	if group := c.groupOf(actor); group != nil {
		group.Broadcast(c.sender, pkt)
		return
	}
	if err := c.sender.SendTo(actor.ID, pkt); err != nil {
		slog.Warn("sending random roll", "player", actor.ID, "error", err)
	}
}

// TargetIconList replies with the full icon list. No privilege required.
func (c *Coordinator) TargetIconList(ctx context.Context, actor *PlayerState) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if err := c.sender.SendTo(actor.ID, BuildTargetIconList(group.TargetIcons())); err != nil {
		slog.Warn("sending target icon list", "player", actor.ID, "error", err)
	}
}

// SetTargetIcon binds an icon slot to a target. In a raid this requires
// leader or assistant privilege.
func (c *Coordinator) SetTargetIcon(ctx context.Context, actor *PlayerState, slot uint8, targetID uint64) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if group.IsRaid() && !group.IsLeader(actor.ID) && !group.IsAssistant(actor.ID) {
		return
	}
	if !group.SetTargetIcon(slot, targetID) {
		return
	}
	group.Broadcast(c.sender, BuildTargetIconUpdate(slot, targetID))
}

// ConvertRaid switches between party and raid shape. Requires the leader,
// at least two members, and no restricted activity. Raid to party is
// refused while membership exceeds the party cap.
func (c *Coordinator) ConvertRaid(ctx context.Context, actor *PlayerState, toRaid bool) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if c.guard.InRestrictedActivity(actor) {
		return
	}
	if !group.IsLeader(actor.ID) || group.MemberCount() < 2 {
		return
	}

	if toRaid {
		group.ConvertToRaid()
	} else if !group.ConvertToParty() {
		c.sendResult(actor, PartyOpInvite, "", ResultGroupFull)
		return
	}

	c.sendResult(actor, PartyOpInvite, "", ResultOk)
	c.broadcastUpdate(group)
}

// ChangeSubGroup moves a named member into another raid subgroup. The
// target may be offline; a durable lookup resolves them then.
func (c *Coordinator) ChangeSubGroup(ctx context.Context, actor *PlayerState, targetName string, subgroup uint8) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if subgroup >= MaxRaidSubgroups {
		return
	}
	if !group.IsLeader(actor.ID) && !group.IsAssistant(actor.ID) {
		return
	}
	if !group.HasFreeSlotSubgroup(subgroup) {
		return
	}

	name, ok := NormalizeName(targetName)
	if !ok {
		return
	}

	var targetID uint64
	if target := c.directory.FindByName(name); target != nil {
		targetID = target.ID
	} else if c.chars != nil {
		if id, found := c.chars.CharacterID(name); found {
			targetID = id
		}
	}
	if targetID == 0 {
		return
	}

	if group.ChangeMemberSubgroup(targetID, subgroup) {
		c.broadcastUpdate(group)
	}
}

// SetAssistant toggles the assistant flag on a member. Leader-only.
func (c *Coordinator) SetAssistant(ctx context.Context, actor *PlayerState, targetID uint64, apply bool) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if !group.IsLeader(actor.ID) {
		return
	}

	if group.SetMemberFlag(targetID, MemberFlagAssistant, apply) {
		c.broadcastUpdate(group)
	}
}

// PartyAssignment applies a unique role marker (main tank or main assist).
// Leader-only; applying to one member clears the flag from all others
// first.
func (c *Coordinator) PartyAssignment(ctx context.Context, actor *PlayerState, assignment uint8, apply bool, targetID uint64) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if !group.IsLeader(actor.ID) {
		return
	}

	var flag MemberFlags
	switch assignment {
	case AssignMainTank:
		flag = MemberFlagMainTank
	case AssignMainAssist:
		flag = MemberFlagMainAssist
	default:
		return
	}

	group.ClearUniqueFlag(flag)
	group.SetMemberFlag(targetID, flag, apply)
	c.broadcastUpdate(group)
}

// StartReadyCheck opens a ready check and broadcasts the request. Offline
// members are flagged not-ready immediately.
func (c *Coordinator) StartReadyCheck(ctx context.Context, actor *PlayerState) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if !group.IsLeader(actor.ID) && !group.IsAssistant(actor.ID) {
		return
	}

	offline := group.StartReadyCheck(actor.ID)
	group.Broadcast(c.sender, BuildReadyCheckStarted(actor.ID))
	for _, id := range offline {
		group.Broadcast(c.sender, BuildReadyCheckConfirm(id, ReadyNo))
	}
}

// RespondReadyCheck records an answer and rebroadcasts it to the whole
// group so every client can render live progress.
func (c *Coordinator) RespondReadyCheck(ctx context.Context, actor *PlayerState, state ReadyState) {
	group := c.groupOf(actor)
	if group == nil {
		return
	}
	if !group.RespondReadyCheck(actor.ID, state) {
		return
	}
	group.Broadcast(c.sender, BuildReadyCheckConfirm(actor.ID, state))
}

// RequestMemberStats replies with a full snapshot of the subject, or the
// minimal offline form when the subject is unreachable.
func (c *Coordinator) RequestMemberStats(ctx context.Context, actor *PlayerState, subjectID uint64) {
	subject := c.directory.Find(subjectID)
	if subject == nil || !subject.Online {
		if err := c.sender.SendTo(actor.ID, BuildMemberStatsOffline(subjectID)); err != nil {
			slog.Warn("sending offline member stats", "player", actor.ID, "error", err)
		}
		return
	}
	if err := c.sender.SendTo(actor.ID, BuildMemberStatsFull(subject)); err != nil {
		slog.Warn("sending member stats", "player", actor.ID, "error", err)
	}
}

// PublishMemberStats broadcasts the subject's pending delta update to
// their group and clears the change mask.
func (c *Coordinator) PublishMemberStats(p *PlayerState) {
	pkt := BuildMemberStats(p)
	p.UpdateMask = 0
	if pkt == nil {
		return
	}
	group := c.groupOf(p)
	if group == nil {
		return
	}
	group.Broadcast(c.sender, pkt, p.ID)
}

// SetRoles sets a member's combat-role bitmask on behalf of the actor. The
// target must share the actor's group; role-check flows bound to the group
// are mirrored through the activity guard.
func (c *Coordinator) SetRoles(ctx context.Context, actor *PlayerState, roles uint32, targetID uint64) {
	target := c.directory.Find(targetID)
	if target == nil {
		slog.Debug("set roles: player not found", "target", targetID)
		return
	}
	group := c.groupOf(target)
	if group == nil {
		slog.Debug("set roles: target not in group", "target", targetID)
		return
	}
	if group != c.groupOf(actor) {
		slog.Debug("set roles: actors not in same group", "actor", actor.ID, "target", targetID)
		return
	}

	target.Roles = roles
	group.SetMemberRoles(targetID, roles)
	c.guard.RoleCheckGroup(group.ID(), targetID, roles)
}

// OptOutOfLoot toggles the actor's pass-on-loot preference.
func (c *Coordinator) OptOutOfLoot(actor *PlayerState, passOnLoot bool) {
	actor.PassOnLoot = passOnLoot
}

// HandleDisconnect marks the player offline within their group and lets
// the roster reflect it. Pending invites are withdrawn.
func (c *Coordinator) HandleDisconnect(ctx context.Context, p *PlayerState) {
	if invite := c.clearInvite(p); invite != nil {
		invite.RemoveInvite(p.ID)
		c.maybeDissolvePending(invite)
	}
	group := c.groupOf(p)
	if group == nil {
		return
	}
	p.Stats.Status = StatusOffline
	p.UpdateMask |= UpdateFlagStatus
	group.SetMemberOnline(p.ID, false)
	c.broadcastUpdate(group)
}

// HandleReconnect marks a returning member online again.
func (c *Coordinator) HandleReconnect(ctx context.Context, p *PlayerState) {
	group := c.groupOf(p)
	if group == nil {
		return
	}
	p.Stats.Status = StatusOnline
	p.UpdateMask |= UpdateFlagStatus
	group.SetMemberOnline(p.ID, true)
	c.broadcastUpdate(group)
}

// ExpireSessions force-resolves loot rolls and discards ready checks older
// than the given timeouts. This is the scheduler hook; neither session
// type owns a timer.
func (c *Coordinator) ExpireSessions(ctx context.Context, rollTimeout, readyCheckTimeout time.Duration) {
	c.mu.Lock()
	groups := make([]*Group, 0, len(c.groups))
	for _, g := range c.groups {
		groups = append(groups, g)
	}
	c.mu.Unlock()

	now := time.Now()
	for _, g := range groups {
		for _, ref := range g.StaleRolls(now.Add(-rollTimeout)) {
			if res := g.ForceResolveRoll(ref); res != nil {
				g.Broadcast(c.sender, BuildRollWon(res))
			}
		}
		if started, ok := g.ReadyCheckStarted(); ok && now.Sub(started) > readyCheckTimeout {
			g.DiscardReadyCheck()
		}
	}
}
