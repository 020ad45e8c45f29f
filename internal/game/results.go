package game

// PartyOperation tags a result acknowledgment with the operation it answers.
type PartyOperation uint32

const (
	PartyOpInvite   PartyOperation = 0
	PartyOpUninvite PartyOperation = 1
	PartyOpLeave    PartyOperation = 2
	PartyOpSwap     PartyOperation = 4
)

// PartyResult is the numeric result code carried in a result acknowledgment.
// All of these are local, recoverable, user-facing failures: the coordinator
// leaves group state untouched when returning anything but ResultOk.
type PartyResult uint32

const (
	ResultOk                  PartyResult = 0
	ResultBadPlayerName       PartyResult = 1
	ResultTargetNotInGroup    PartyResult = 2
	ResultTargetNotInInstance PartyResult = 3
	ResultGroupFull           PartyResult = 4
	ResultAlreadyInGroup      PartyResult = 5
	ResultNotInGroup          PartyResult = 6
	ResultNotLeader           PartyResult = 7
	ResultWrongFaction        PartyResult = 8
	ResultIgnoringYou         PartyResult = 9
	ResultInviteRestricted    PartyResult = 13
)

var resultNames = map[PartyResult]string{
	ResultOk:                  "ok",
	ResultBadPlayerName:       "bad player name",
	ResultTargetNotInGroup:    "target not in group",
	ResultTargetNotInInstance: "target not in instance",
	ResultGroupFull:           "group full",
	ResultAlreadyInGroup:      "already in group",
	ResultNotInGroup:          "not in group",
	ResultNotLeader:           "not leader",
	ResultWrongFaction:        "wrong faction",
	ResultIgnoringYou:         "ignoring you",
	ResultInviteRestricted:    "invite restricted",
}

func (r PartyResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}
