package wire

// Opcode identifies a message within the group protocol family.
// Values are part of the wire format and must not be reordered.
type Opcode uint16

const (
	OpNone Opcode = iota

	// Client -> server.
	OpGroupInvite
	OpGroupAccept
	OpGroupDecline
	OpGroupUninviteID
	OpGroupUninviteName
	OpGroupSetLeader
	OpGroupDisband
	OpLootMethod
	OpLootRoll
	OpMinimapPing
	OpRandomRoll
	OpRaidTargetUpdate
	OpRaidConvert
	OpChangeSubGroup
	OpAssistantLeader
	OpPartyAssignment
	OpRaidReadyCheck
	OpRaidReadyCheckFinished
	OpRequestMemberStats
	OpOptOutOfLoot
	OpSetRoles

	// Server -> client.
	OpPartyCommandResult
	OpGroupInviteNotice
	OpGroupDeclineNotice
	OpGroupList
	OpGroupDestroyed
	OpGroupUninviteNotice
	OpMemberStats
	OpMemberStatsFull
	OpReadyCheckStarted
	OpReadyCheckConfirm
	OpLootRollWon
	OpLootStartRoll
)

var opcodeNames = map[Opcode]string{
	OpGroupInvite:            "GroupInvite",
	OpGroupAccept:            "GroupAccept",
	OpGroupDecline:           "GroupDecline",
	OpGroupUninviteID:        "GroupUninviteID",
	OpGroupUninviteName:      "GroupUninviteName",
	OpGroupSetLeader:         "GroupSetLeader",
	OpGroupDisband:           "GroupDisband",
	OpLootMethod:             "LootMethod",
	OpLootRoll:               "LootRoll",
	OpMinimapPing:            "MinimapPing",
	OpRandomRoll:             "RandomRoll",
	OpRaidTargetUpdate:       "RaidTargetUpdate",
	OpRaidConvert:            "RaidConvert",
	OpChangeSubGroup:         "ChangeSubGroup",
	OpAssistantLeader:        "AssistantLeader",
	OpPartyAssignment:        "PartyAssignment",
	OpRaidReadyCheck:         "RaidReadyCheck",
	OpRaidReadyCheckFinished: "RaidReadyCheckFinished",
	OpRequestMemberStats:     "RequestMemberStats",
	OpOptOutOfLoot:           "OptOutOfLoot",
	OpSetRoles:               "SetRoles",
	OpPartyCommandResult:     "PartyCommandResult",
	OpGroupInviteNotice:      "GroupInviteNotice",
	OpGroupDeclineNotice:     "GroupDeclineNotice",
	OpGroupList:              "GroupList",
	OpGroupDestroyed:         "GroupDestroyed",
	OpGroupUninviteNotice:    "GroupUninviteNotice",
	OpMemberStats:            "MemberStats",
	OpMemberStatsFull:        "MemberStatsFull",
	OpReadyCheckStarted:      "ReadyCheckStarted",
	OpReadyCheckConfirm:      "ReadyCheckConfirm",
	OpLootRollWon:            "LootRollWon",
	OpLootStartRoll:          "LootStartRoll",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "Unknown"
}
