package session

import "github.com/superquinquin/consigne-desk/pkg/identity"

// Session is the counter's local view of who the current deposit is for.
// It is persisted as one JSON object under a well-known key.
type Session struct {
	Provider  *identity.Person `json:"provider,omitempty"`
	Receiver  *identity.Person `json:"receiver,omitempty"`
	DepositID *int             `json:"depositId,omitempty"`
	// Closed is set once the deposit was closed on the backend. The deposit
	// id is kept so the ticket can still be printed.
	Closed bool `json:"closed,omitempty"`
}

// Equal compares two sessions field by field.
func (s Session) Equal(o Session) bool {
	return equalPtr(s.Provider, o.Provider) &&
		equalPtr(s.Receiver, o.Receiver) &&
		equalPtr(s.DepositID, o.DepositID) &&
		s.Closed == o.Closed
}

func (s Session) IsEmpty() bool {
	return s.Equal(Session{})
}

// HasIdentities reports whether both the provider and the receiver are chosen.
func (s Session) HasIdentities() bool {
	return s.Provider != nil && s.Receiver != nil
}

func (s Session) HasDeposit() bool {
	return s.DepositID != nil
}

// WithProvider returns a copy of s holding p as provider.
func (s Session) WithProvider(p identity.Person) Session {
	s.Provider = &p
	return s
}

// WithReceiver returns a copy of s holding p as receiver.
func (s Session) WithReceiver(p identity.Person) Session {
	s.Receiver = &p
	return s
}

// WithDeposit returns a copy of s bound to an open deposit.
func (s Session) WithDeposit(depositID int) Session {
	s.DepositID = &depositID
	s.Closed = false
	return s
}

// Clone returns a copy of s that shares no pointers with it.
func (s Session) Clone() Session {
	s.Provider = clonePtr(s.Provider)
	s.Receiver = clonePtr(s.Receiver)
	s.DepositID = clonePtr(s.DepositID)

	return s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
