package game

import "github.com/pixil98/go-realm/internal/wire"

// Outbound packet builders. Field order is part of the wire contract with
// existing clients of this protocol family; do not reorder writes.

// BuildPartyResult is the result acknowledgment for a party operation.
func BuildPartyResult(op PartyOperation, member string, res PartyResult, val uint32) *wire.Packet {
	pkt := wire.NewPacket(wire.OpPartyCommandResult)
	pkt.WriteUint32(uint32(op))
	pkt.WriteString(member)
	pkt.WriteUint32(uint32(res))
	pkt.WriteUint32(val)
	pkt.WriteUint64(0) // player who caused the error, when applicable
	return pkt
}

// BuildInviteNotice is sent to an invite target. The flag is 1 for a live
// invite and 0 to tell an already-grouped target an invite failed for them.
func BuildInviteNotice(inviterName string, canAccept bool) *wire.Packet {
	pkt := wire.NewPacket(wire.OpGroupInviteNotice)
	pkt.WriteBool(canAccept)
	pkt.WriteString(inviterName)
	pkt.WriteUint32(0) // realm hint
	pkt.WriteUint8(0)  // count
	pkt.WriteUint32(0) // unused
	return pkt
}

// BuildDeclineNotice tells the inviting leader the target declined.
func BuildDeclineNotice(name string) *wire.Packet {
	pkt := wire.NewPacket(wire.OpGroupDeclineNotice)
	pkt.WriteString(name)
	return pkt
}

// BuildGroupList is the full roster update broadcast to every member after
// any membership, leadership, or loot-configuration change.
func BuildGroupList(g *Group) *wire.Packet {
	pkt := wire.NewPacket(wire.OpGroupList)
	members := g.Members()
	groupType := uint8(0)
	if g.IsRaid() {
		groupType = 1
	}
	pkt.WriteUint8(groupType)
	pkt.WriteUint64(g.ID())
	pkt.WriteUint32(uint32(len(members)))
	for _, m := range members {
		pkt.WriteString(m.Name)
		pkt.WriteUint64(m.ID)
		pkt.WriteBool(m.Online)
		pkt.WriteUint8(m.Subgroup)
		pkt.WriteUint8(uint8(m.Flags))
		pkt.WriteUint32(m.Roles)
	}
	pkt.WriteUint64(g.LeaderID())
	method, looter, threshold := g.LootConfig()
	pkt.WriteUint8(uint8(method))
	pkt.WriteUint64(looter)
	pkt.WriteUint8(uint8(threshold))
	return pkt
}

func BuildGroupDestroyed() *wire.Packet {
	return wire.NewPacket(wire.OpGroupDestroyed)
}

func BuildUninviteNotice() *wire.Packet {
	return wire.NewPacket(wire.OpGroupUninviteNotice)
}

// BuildMinimapPing echoes a ping to the rest of the group.
func BuildMinimapPing(actorID uint64, x, y float32) *wire.Packet {
	pkt := wire.NewPacket(wire.OpMinimapPing)
	pkt.WriteUint64(actorID)
	pkt.WriteFloat32(x)
	pkt.WriteFloat32(y)
	return pkt
}

// BuildRandomRoll carries a resolved random roll.
func BuildRandomRoll(minRoll, maxRoll, result uint32, actorID uint64) *wire.Packet {
	pkt := wire.NewPacket(wire.OpRandomRoll)
	pkt.WriteUint32(minRoll)
	pkt.WriteUint32(maxRoll)
	pkt.WriteUint32(result)
	pkt.WriteUint64(actorID)
	return pkt
}

// BuildTargetIconUpdate announces a single icon slot change.
func BuildTargetIconUpdate(slot uint8, target uint64) *wire.Packet {
	pkt := wire.NewPacket(wire.OpRaidTargetUpdate)
	pkt.WriteUint8(0) // single update marker
	pkt.WriteUint8(slot)
	pkt.WriteUint64(target)
	return pkt
}

// BuildTargetIconList is the full icon list reply for the request sentinel.
func BuildTargetIconList(icons [MaxTargetIcons]uint64) *wire.Packet {
	pkt := wire.NewPacket(wire.OpRaidTargetUpdate)
	pkt.WriteUint8(1) // list marker
	for slot, target := range icons {
		if target == 0 {
			continue
		}
		pkt.WriteUint8(uint8(slot))
		pkt.WriteUint64(target)
	}
	return pkt
}

func BuildReadyCheckStarted(initiatorID uint64) *wire.Packet {
	pkt := wire.NewPacket(wire.OpReadyCheckStarted)
	pkt.WriteUint64(initiatorID)
	return pkt
}

// BuildReadyCheckConfirm rebroadcasts one member's response so every
// client can render live progress.
func BuildReadyCheckConfirm(actorID uint64, state ReadyState) *wire.Packet {
	pkt := wire.NewPacket(wire.OpReadyCheckConfirm)
	pkt.WriteUint64(actorID)
	pkt.WriteUint8(uint8(state))
	return pkt
}

// BuildLootStartRoll opens a roll session on every client: the first vote
// on an item starts the round for the whole group.
func BuildLootStartRoll(itemRef uint64, numEligible uint32) *wire.Packet {
	pkt := wire.NewPacket(wire.OpLootStartRoll)
	pkt.WriteUint64(itemRef)
	pkt.WriteUint32(numEligible)
	return pkt
}

// BuildRollWon announces a resolved loot roll. A zero winner with the
// all-passed flag set means every eligible voter passed.
func BuildRollWon(res *RollResolution) *wire.Packet {
	pkt := wire.NewPacket(wire.OpLootRollWon)
	pkt.WriteUint64(res.ItemRef)
	pkt.WriteUint64(res.WinnerID)
	pkt.WriteUint8(uint8(res.Vote))
	pkt.WriteInt32(res.Tiebreak)
	pkt.WriteBool(res.AllPassed)
	return pkt
}
