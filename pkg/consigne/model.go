package consigne

import (
	"encoding/json"
	"fmt"
)

// UserTuple is the compact person representation used by the search and
// shift endpoints: [partnerId, coopNumber, displayString].
type UserTuple struct {
	PartnerID  int
	CoopNumber int
	Display    string
}

func (u *UserTuple) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding user tuple: %w", err)
	}

	if len(raw) != 3 {
		return fmt.Errorf("user tuple has %d elements, want 3", len(raw))
	}

	if err := json.Unmarshal(raw[0], &u.PartnerID); err != nil {
		return fmt.Errorf("decoding partner id: %w", err)
	}

	if err := json.Unmarshal(raw[1], &u.CoopNumber); err != nil {
		return fmt.Errorf("decoding coop number: %w", err)
	}

	if err := json.Unmarshal(raw[2], &u.Display); err != nil {
		return fmt.Errorf("decoding display name: %w", err)
	}

	return nil
}

func (u UserTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{u.PartnerID, u.CoopNumber, u.Display})
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResult struct {
	Auth bool           `json:"auth"`
	User *Authenticated `json:"user,omitempty"`
}

type Authenticated struct {
	Name string `json:"user_name"`
	Code string `json:"user_code"`
	// MaxAge is the distance to the end of the current shift, when known.
	MaxAge *float64 `json:"max_age,omitempty"`
}

func (a AuthResult) validate() error {
	if a.Auth && a.User == nil {
		return missingField("user")
	}

	return nil
}

type SearchUserRequest struct {
	Input string `json:"input"`
}

type SearchUserResponse struct {
	Matches []UserTuple `json:"matches"`
}

func (r SearchUserResponse) validate() error {
	if r.Matches == nil {
		return missingField("matches")
	}

	return nil
}

type ShiftsUsersResponse struct {
	Users []UserTuple `json:"users"`
}

func (r ShiftsUsersResponse) validate() error {
	if r.Users == nil {
		return missingField("users")
	}

	return nil
}

// CreateDepositRequest uses the backend naming of the two parties.
type CreateDepositRequest struct {
	ReceiverPartnerID int `json:"receiver_partner_id"`
	ProviderPartnerID int `json:"provider_partner_id"`
}

type CreateDepositResponse struct {
	DepositID int `json:"deposit_id"`
}

func (r CreateDepositResponse) validate() error {
	if r.DepositID == 0 {
		return missingField("deposit_id")
	}

	return nil
}

type DepositRecord struct {
	DepositID  int     `json:"deposit_id"`
	ReceiverID int     `json:"receiver_id"`
	ProviderID int     `json:"provider_id"`
	Datetime   string  `json:"deposit_datetime"`
	Closed     *bool   `json:"closed"`
	Barcode    *string `json:"deposit_barcode,omitempty"`
	Redeemed   *int    `json:"redeemed,omitempty"`
}

func (r DepositRecord) validate() error {
	if r.DepositID == 0 {
		return missingField("deposit.deposit_id")
	}

	if r.Closed == nil {
		return missingField("deposit.closed")
	}

	return nil
}

// IsClosed reports the backend closing flag.
func (r DepositRecord) IsClosed() bool {
	return r.Closed != nil && *r.Closed
}

type UserRecord struct {
	UserID               int     `json:"user_id"`
	PartnerID            int     `json:"user_partner_id"`
	Code                 int     `json:"user_code"`
	Name                 string  `json:"user_name"`
	LastProviderActivity *string `json:"last_provider_activity,omitempty"`
	LastReceiverActivity *string `json:"last_receiver_activity,omitempty"`
}

func (r UserRecord) validate(role string) error {
	if r.PartnerID == 0 {
		return missingField(role + ".user_partner_id")
	}

	if r.Name == "" {
		return missingField(role + ".user_name")
	}

	return nil
}

type DepositLineRecord struct {
	LineID      int      `json:"deposit_line_id"`
	DepositID   int      `json:"deposit_id"`
	ProductID   int      `json:"product_id"`
	Datetime    string   `json:"deposit_line_datetime"`
	Canceled    bool     `json:"canceled"`
	Name        *string  `json:"name,omitempty"`
	Returnable  *bool    `json:"returnable,omitempty"`
	ReturnValue *float64 `json:"return_value,omitempty"`
}

func (r DepositLineRecord) validate() error {
	if r.LineID == 0 {
		return missingField("deposit_line_id")
	}

	if r.ProductID == 0 {
		return missingField("product_id")
	}

	return nil
}

// DepositSnapshot is the full state of a deposit. Provider and Receiver keep
// the backend naming.
type DepositSnapshot struct {
	Deposit  DepositRecord       `json:"deposit"`
	Receiver UserRecord          `json:"receiver"`
	Provider UserRecord          `json:"provider"`
	Lines    []DepositLineRecord `json:"deposit_lines"`
}

func (s DepositSnapshot) validate() error {
	if err := s.Deposit.validate(); err != nil {
		return err
	}

	if err := s.Receiver.validate("receiver"); err != nil {
		return err
	}

	if err := s.Provider.validate("provider"); err != nil {
		return err
	}

	if s.Lines == nil {
		return missingField("deposit_lines")
	}

	for i, line := range s.Lines {
		if err := line.validate(); err != nil {
			return fmt.Errorf("deposit_lines[%d]: %w", i, err)
		}
	}

	return nil
}

type depositLineResponse struct {
	Line *DepositLineRecord `json:"deposit_lines"`
}

func (r depositLineResponse) validate() error {
	if r.Line == nil {
		return missingField("deposit_lines")
	}

	return r.Line.validate()
}

// ReturnedProduct is the line created by scanning a product. A product the
// backend does not take back comes with Returnable false.
type ReturnedProduct struct {
	LineID        int      `json:"deposit_line_id"`
	Name          string   `json:"name"`
	OdooProductID int      `json:"odoo_product_id"`
	ProductID     int      `json:"product_id"`
	Returnable    bool     `json:"returnable"`
	ReturnValue   *float64 `json:"return_value,omitempty"`
}

func (r ReturnedProduct) validate() error {
	if r.LineID == 0 {
		return missingField("deposit_line_id")
	}

	if r.ProductID == 0 {
		return missingField("product_id")
	}

	return nil
}

// Value returns the amount handed back for the line, zero when unknown.
func (r ReturnedProduct) Value() float64 {
	if r.ReturnValue == nil || !r.Returnable {
		return 0
	}

	return *r.ReturnValue
}
