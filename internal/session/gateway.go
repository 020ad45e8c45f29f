// Package session decodes inbound frames into typed requests and invokes
// the group coordinator. Outbound packets travel the other way, through
// the packet publisher; this package never writes to a connection itself.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/wire"
)

// Session is one authenticated connection bound to a character.
type Session struct {
	ID     uuid.UUID
	Player *game.PlayerState
}

func New(p *game.PlayerState) *Session {
	return &Session{
		ID:     uuid.New(),
		Player: p,
	}
}

// handlerFunc decodes one opcode's payload and invokes the coordinator.
type handlerFunc func(ctx context.Context, s *Session, pkt *wire.Packet) error

// Gateway routes inbound packets to their handlers.
type Gateway struct {
	coord    *game.Coordinator
	handlers map[wire.Opcode]handlerFunc
}

func NewGateway(coord *game.Coordinator) *Gateway {
	g := &Gateway{coord: coord}
	g.handlers = map[wire.Opcode]handlerFunc{
		wire.OpGroupInvite:            g.handleInvite,
		wire.OpGroupAccept:            g.handleAccept,
		wire.OpGroupDecline:           g.handleDecline,
		wire.OpGroupUninviteID:        g.handleUninviteID,
		wire.OpGroupUninviteName:      g.handleUninviteName,
		wire.OpGroupSetLeader:         g.handleSetLeader,
		wire.OpGroupDisband:           g.handleDisband,
		wire.OpLootMethod:             g.handleLootMethod,
		wire.OpLootRoll:               g.handleLootRoll,
		wire.OpMinimapPing:            g.handleMinimapPing,
		wire.OpRandomRoll:             g.handleRandomRoll,
		wire.OpRaidTargetUpdate:       g.handleRaidTargetUpdate,
		wire.OpRaidConvert:            g.handleRaidConvert,
		wire.OpChangeSubGroup:         g.handleChangeSubGroup,
		wire.OpAssistantLeader:        g.handleAssistantLeader,
		wire.OpPartyAssignment:        g.handlePartyAssignment,
		wire.OpRaidReadyCheck:         g.handleReadyCheck,
		wire.OpRaidReadyCheckFinished: g.handleReadyCheckFinished,
		wire.OpRequestMemberStats:     g.handleRequestMemberStats,
		wire.OpOptOutOfLoot:           g.handleOptOutOfLoot,
		wire.OpSetRoles:               g.handleSetRoles,
	}
	return g
}

// Handle dispatches one inbound packet. Unknown opcodes and malformed
// payloads are logged and dropped; they never reach the coordinator.
func (g *Gateway) Handle(ctx context.Context, s *Session, pkt *wire.Packet) {
	h, ok := g.handlers[pkt.Opcode]
	if !ok {
		slog.Debug("unhandled opcode", "session", s.ID, "opcode", pkt.Opcode)
		return
	}
	if err := h(ctx, s, pkt); err != nil {
		slog.Warn("handling packet", "session", s.ID, "opcode", pkt.Opcode, "error", err)
	}
}

func (g *Gateway) handleInvite(ctx context.Context, s *Session, pkt *wire.Packet) error {
	name, err := pkt.ReadString()
	if err != nil {
		return fmt.Errorf("reading member name: %w", err)
	}
	if _, err := pkt.ReadUint32(); err != nil { // unused trailing field
		return err
	}
	g.coord.Invite(ctx, s.Player, name)
	return nil
}

func (g *Gateway) handleAccept(ctx context.Context, s *Session, pkt *wire.Packet) error {
	if _, err := pkt.ReadUint32(); err != nil { // unused trailing field
		return err
	}
	g.coord.Accept(ctx, s.Player)
	return nil
}

func (g *Gateway) handleDecline(ctx context.Context, s *Session, pkt *wire.Packet) error {
	g.coord.Decline(ctx, s.Player)
	return nil
}

func (g *Gateway) handleUninviteID(ctx context.Context, s *Session, pkt *wire.Packet) error {
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	reason, err := pkt.ReadString()
	if err != nil {
		return err
	}
	g.coord.UninviteByID(ctx, s.Player, targetID, reason)
	return nil
}

func (g *Gateway) handleUninviteName(ctx context.Context, s *Session, pkt *wire.Packet) error {
	name, err := pkt.ReadString()
	if err != nil {
		return err
	}
	g.coord.UninviteByName(ctx, s.Player, name)
	return nil
}

func (g *Gateway) handleSetLeader(ctx context.Context, s *Session, pkt *wire.Packet) error {
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	g.coord.SetLeader(ctx, s.Player, targetID)
	return nil
}

func (g *Gateway) handleDisband(ctx context.Context, s *Session, pkt *wire.Packet) error {
	g.coord.Disband(ctx, s.Player)
	return nil
}

func (g *Gateway) handleLootMethod(ctx context.Context, s *Session, pkt *wire.Packet) error {
	method, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	looterID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	threshold, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	g.coord.SetLootMethod(ctx, s.Player, game.LootMethod(method), looterID, game.ItemQuality(threshold))
	return nil
}

func (g *Gateway) handleLootRoll(ctx context.Context, s *Session, pkt *wire.Packet) error {
	itemRef, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	numEligible, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	vote, err := pkt.ReadUint8()
	if err != nil {
		return err
	}
	if vote > uint8(game.RollGreed) {
		return fmt.Errorf("invalid roll vote %d", vote)
	}
	g.coord.LootRoll(ctx, s.Player, itemRef, numEligible, game.RollVote(vote))
	return nil
}

func (g *Gateway) handleMinimapPing(ctx context.Context, s *Session, pkt *wire.Packet) error {
	x, err := pkt.ReadFloat32()
	if err != nil {
		return err
	}
	y, err := pkt.ReadFloat32()
	if err != nil {
		return err
	}
	g.coord.MinimapPing(ctx, s.Player, x, y)
	return nil
}

func (g *Gateway) handleRandomRoll(ctx context.Context, s *Session, pkt *wire.Packet) error {
	minRoll, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	maxRoll, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	g.coord.RandomRoll(ctx, s.Player, minRoll, maxRoll)
	return nil
}

func (g *Gateway) handleRaidTargetUpdate(ctx context.Context, s *Session, pkt *wire.Packet) error {
	slot, err := pkt.ReadUint8()
	if err != nil {
		return err
	}
	if slot == game.TargetIconRequest {
		g.coord.TargetIconList(ctx, s.Player)
		return nil
	}
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	g.coord.SetTargetIcon(ctx, s.Player, slot, targetID)
	return nil
}

func (g *Gateway) handleRaidConvert(ctx context.Context, s *Session, pkt *wire.Packet) error {
	toRaid, err := pkt.ReadBool()
	if err != nil {
		return err
	}
	g.coord.ConvertRaid(ctx, s.Player, toRaid)
	return nil
}

func (g *Gateway) handleChangeSubGroup(ctx context.Context, s *Session, pkt *wire.Packet) error {
	name, err := pkt.ReadString()
	if err != nil {
		return err
	}
	subgroup, err := pkt.ReadUint8()
	if err != nil {
		return err
	}
	g.coord.ChangeSubGroup(ctx, s.Player, name, subgroup)
	return nil
}

func (g *Gateway) handleAssistantLeader(ctx context.Context, s *Session, pkt *wire.Packet) error {
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	apply, err := pkt.ReadBool()
	if err != nil {
		return err
	}
	g.coord.SetAssistant(ctx, s.Player, targetID, apply)
	return nil
}

func (g *Gateway) handlePartyAssignment(ctx context.Context, s *Session, pkt *wire.Packet) error {
	assignment, err := pkt.ReadUint8()
	if err != nil {
		return err
	}
	apply, err := pkt.ReadBool()
	if err != nil {
		return err
	}
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	g.coord.PartyAssignment(ctx, s.Player, assignment, apply, targetID)
	return nil
}

// handleReadyCheck serves both shapes of the ready-check message: an empty
// payload starts a check, a one-byte payload answers it.
func (g *Gateway) handleReadyCheck(ctx context.Context, s *Session, pkt *wire.Packet) error {
	if pkt.Empty() {
		g.coord.StartReadyCheck(ctx, s.Player)
		return nil
	}
	state, err := pkt.ReadUint8()
	if err != nil {
		return err
	}
	readyState := game.ReadyNo
	if state != 0 {
		readyState = game.ReadyYes
	}
	g.coord.RespondReadyCheck(ctx, s.Player, readyState)
	return nil
}

func (g *Gateway) handleReadyCheckFinished(ctx context.Context, s *Session, pkt *wire.Packet) error {
	// Accepted for protocol compatibility; no reaction is needed.
	return nil
}

func (g *Gateway) handleRequestMemberStats(ctx context.Context, s *Session, pkt *wire.Packet) error {
	subjectID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	g.coord.RequestMemberStats(ctx, s.Player, subjectID)
	return nil
}

func (g *Gateway) handleOptOutOfLoot(ctx context.Context, s *Session, pkt *wire.Packet) error {
	passOnLoot, err := pkt.ReadBool()
	if err != nil {
		return err
	}
	g.coord.OptOutOfLoot(s.Player, passOnLoot)
	return nil
}

func (g *Gateway) handleSetRoles(ctx context.Context, s *Session, pkt *wire.Packet) error {
	roles, err := pkt.ReadUint32()
	if err != nil {
		return err
	}
	targetID, err := pkt.ReadUint64()
	if err != nil {
		return err
	}
	g.coord.SetRoles(ctx, s.Player, roles, targetID)
	return nil
}
