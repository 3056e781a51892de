package deposit

import "github.com/superquinquin/consigne-desk/pkg/session"

// State is the workflow position derived from a session.
type State int

const (
	NoSession State = iota
	IdentitiesChosen
	DepositOpen
	DepositClosed
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no-session"
	case IdentitiesChosen:
		return "identities-chosen"
	case DepositOpen:
		return "deposit-open"
	case DepositClosed:
		return "deposit-closed"
	default:
		return "unknown"
	}
}

// StateOf derives the workflow state of s. A session with only one of the
// two people chosen is still NoSession.
func StateOf(s session.Session) State {
	switch {
	case s.HasDeposit() && s.Closed:
		return DepositClosed
	case s.HasDeposit():
		return DepositOpen
	case s.HasIdentities():
		return IdentitiesChosen
	default:
		return NoSession
	}
}
