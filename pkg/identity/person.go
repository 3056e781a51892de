// Package identity turns the compact person tuples returned by the consigne
// API into structured records.
package identity

import "strings"

const coopPrefixSeparator = " - "

// Person is a provider or a receiver of a deposit. FirstName and LastName are
// empty unless the display name could be split into exactly two parts.
type Person struct {
	PartnerID  int    `json:"partnerId"`
	CoopNumber int    `json:"coopNumber"`
	FullName   string `json:"fullName"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
}

// HasNames reports whether first and last name were decomposed.
func (p Person) HasNames() bool {
	return p.FirstName != "" || p.LastName != ""
}

// Normalize builds a Person from the membership registry display string,
// formatted as "<coopNumber> - <LAST>, <First>". Strings that do not follow
// this convention only populate FullName.
func Normalize(partnerID, coopNumber int, display string) Person {
	p := Person{
		PartnerID:  partnerID,
		CoopNumber: coopNumber,
		FullName:   display,
	}

	_, name, found := strings.Cut(display, coopPrefixSeparator)
	if !found {
		return p
	}
	p.FullName = name

	parts := strings.Split(strings.TrimSpace(name), ",")
	if len(parts) != 2 {
		return p
	}

	p.LastName = strings.TrimSpace(parts[0])
	p.FirstName = strings.TrimSpace(parts[1])

	return p
}
