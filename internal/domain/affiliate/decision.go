package affiliate

import "github.com/englishbooster/affiliate/internal/domain/shared"

type decisionKind int

const (
	decisionUnknown decisionKind = iota
	decisionApprove
	decisionReject
)

// Wire names of admin decisions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Decision is the closed set of admin decisions on an application.
// Build one with Approve, Reject or ParseDecision.
type Decision struct {
	kind   decisionKind
	reason string
}

// Approve returns the approve decision
func Approve() Decision {
	return Decision{kind: decisionApprove}
}

// Reject returns a reject decision carrying the reason shown to the applicant
func Reject(reason string) Decision {
	return Decision{kind: decisionReject, reason: reason}
}

// ParseDecision maps a wire action to a Decision.
// Unknown actions fail with ErrInvalidAction.
func ParseDecision(action, reason string) (Decision, error) {
	switch action {
	case ActionApprove:
		return Approve(), nil
	case ActionReject:
		return Reject(reason), nil
	default:
		return Decision{}, shared.ErrInvalidAction
	}
}

func (d Decision) IsApprove() bool { return d.kind == decisionApprove }

func (d Decision) IsReject() bool { return d.kind == decisionReject }

func (d Decision) Reason() string { return d.reason }

// Action returns the wire name of the decision
func (d Decision) Action() string {
	switch d.kind {
	case decisionApprove:
		return ActionApprove
	case decisionReject:
		return ActionReject
	}
	return ""
}
