package render

import (
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
)

type operatorView struct {
	Name   string  `yaml:"name"`
	Code   string  `yaml:"code"`
	MaxAge float64 `yaml:"maxAge,omitempty"`
}

type personView struct {
	PartnerID  int    `yaml:"partnerId"`
	CoopNumber int    `yaml:"coopNumber"`
	FullName   string `yaml:"fullName"`
	FirstName  string `yaml:"firstName,omitempty"`
	LastName   string `yaml:"lastName,omitempty"`
}

func newPersonView(p identity.Person) personView {
	return personView{
		PartnerID:  p.PartnerID,
		CoopNumber: p.CoopNumber,
		FullName:   p.FullName,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
	}
}

type sessionView struct {
	State     string      `yaml:"state"`
	Provider  *personView `yaml:"provider,omitempty"`
	Receiver  *personView `yaml:"receiver,omitempty"`
	DepositID *int        `yaml:"depositId,omitempty"`
	Closed    bool        `yaml:"closed"`
}

type partyView struct {
	UserID int        `yaml:"userId"`
	Person personView `yaml:"person"`
}

func newPartyView(p deposit.Party) partyView {
	return partyView{UserID: p.UserID, Person: newPersonView(p.Person)}
}

type lineView struct {
	LineID      int      `yaml:"lineId"`
	ProductID   int      `yaml:"productId"`
	Name        string   `yaml:"name,omitempty"`
	Datetime    string   `yaml:"datetime"`
	Canceled    bool     `yaml:"canceled"`
	Returnable  *bool    `yaml:"returnable,omitempty"`
	ReturnValue *float64 `yaml:"returnValue,omitempty"`
}

func newLineView(l consigne.DepositLineRecord) lineView {
	v := lineView{
		LineID:      l.LineID,
		ProductID:   l.ProductID,
		Datetime:    l.Datetime,
		Canceled:    l.Canceled,
		Returnable:  l.Returnable,
		ReturnValue: l.ReturnValue,
	}
	if l.Name != nil {
		v.Name = *l.Name
	}

	return v
}

type snapshotView struct {
	DepositID int        `yaml:"depositId"`
	Closed    bool       `yaml:"closed"`
	Datetime  string     `yaml:"datetime"`
	Barcode   string     `yaml:"barcode,omitempty"`
	Provider  partyView  `yaml:"provider"`
	Receiver  partyView  `yaml:"receiver"`
	Lines     []lineView `yaml:"lines"`
	Total     float64    `yaml:"total"`
}

type returnedView struct {
	LineID     int     `yaml:"lineId"`
	ProductID  int     `yaml:"productId"`
	Name       string  `yaml:"name"`
	Returnable bool    `yaml:"returnable"`
	Value      float64 `yaml:"value"`
}
