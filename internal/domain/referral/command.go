package referral

import "github.com/englishbooster/affiliate/internal/domain/shared"

type commandKind int

const (
	commandUnknown commandKind = iota
	commandConfirm
	commandMarkPaid
)

// Wire names of ledger commands
const (
	ActionConfirm  = "confirm"
	ActionMarkPaid = "mark_paid"
)

// Command is the closed set of admin transitions on a referral
type Command struct {
	kind commandKind
}

func Confirm() Command { return Command{kind: commandConfirm} }

func MarkPaid() Command { return Command{kind: commandMarkPaid} }

// ParseCommand maps a wire action to a Command.
// Unknown actions fail with ErrInvalidAction.
func ParseCommand(action string) (Command, error) {
	switch action {
	case ActionConfirm:
		return Confirm(), nil
	case ActionMarkPaid:
		return MarkPaid(), nil
	}
	return Command{}, shared.ErrInvalidAction
}

// Action returns the wire name
func (c Command) Action() string {
	switch c.kind {
	case commandConfirm:
		return ActionConfirm
	case commandMarkPaid:
		return ActionMarkPaid
	}
	return ""
}

// transitions is the complete lifecycle: pending -> confirmed -> paid
var transitions = map[Status]map[commandKind]Status{
	StatusPending:   {commandConfirm: StatusConfirmed},
	StatusConfirmed: {commandMarkPaid: StatusPaid},
	StatusPaid:      {},
}

func nextStatus(from Status, cmd Command) (Status, bool) {
	next, ok := transitions[from][cmd.kind]
	return next, ok
}

// CanApply reports whether cmd is allowed from status s
func (s Status) CanApply(cmd Command) bool {
	_, ok := nextStatus(s, cmd)
	return ok
}
