package deposit

import (
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
)

// Party is one side of a deposit, named the way the counter names it.
type Party struct {
	UserID int             `json:"userId" yaml:"userId"`
	Person identity.Person `json:"person" yaml:"person"`
}

// Snapshot is a deposit as shown at the counter. Provider is the member
// bringing returnables back; on the wire that person is the receiver.
type Snapshot struct {
	DepositID int                          `json:"depositId" yaml:"depositId"`
	Closed    bool                         `json:"closed" yaml:"closed"`
	Datetime  string                       `json:"datetime" yaml:"datetime"`
	Barcode   string                       `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Provider  Party                        `json:"provider" yaml:"provider"`
	Receiver  Party                        `json:"receiver" yaml:"receiver"`
	Lines     []consigne.DepositLineRecord `json:"lines" yaml:"lines"`
}

func newSnapshot(s consigne.DepositSnapshot) Snapshot {
	snap := Snapshot{
		DepositID: s.Deposit.DepositID,
		Closed:    s.Deposit.IsClosed(),
		Datetime:  s.Deposit.Datetime,
		Provider:  newParty(s.Receiver),
		Receiver:  newParty(s.Provider),
		Lines:     s.Lines,
	}

	if s.Deposit.Barcode != nil {
		snap.Barcode = *s.Deposit.Barcode
	}

	return snap
}

func newParty(u consigne.UserRecord) Party {
	return Party{
		UserID: u.UserID,
		Person: identity.Normalize(u.PartnerID, u.Code, u.Name),
	}
}

// Total sums the value of the lines that were taken back and not canceled.
func (s Snapshot) Total() float64 {
	var total float64
	for _, line := range s.Lines {
		if line.Canceled || line.Returnable == nil || !*line.Returnable || line.ReturnValue == nil {
			continue
		}

		total += *line.ReturnValue
	}

	return total
}

// ActiveLines returns the lines that were not canceled.
func (s Snapshot) ActiveLines() []consigne.DepositLineRecord {
	lines := make([]consigne.DepositLineRecord, 0, len(s.Lines))
	for _, line := range s.Lines {
		if !line.Canceled {
			lines = append(lines, line)
		}
	}

	return lines
}
