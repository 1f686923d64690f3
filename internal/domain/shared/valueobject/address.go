package valueobject

import (
	"errors"
	"strings"
)

// Address is a postal shipping address. Fields are exported so the struct
// can be embedded into persistence models.
type Address struct {
	Line1      string `json:"line1" gorm:"column:line1;size:200"`
	Line2      string `json:"line2,omitempty" gorm:"column:line2;size:200"`
	City       string `json:"city" gorm:"column:city;size:100"`
	State      string `json:"state,omitempty" gorm:"column:state;size:100"`
	PostalCode string `json:"postal_code" gorm:"column:postal_code;size:20"`
	Country    string `json:"country" gorm:"column:country;size:2"`
}

// NewAddress trims and validates the parts of a shipping address.
// Country must be an ISO 3166-1 alpha-2 code.
func NewAddress(line1, line2, city, state, postalCode, country string) (Address, error) {
	a := Address{
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate checks required fields and lengths
func (a Address) Validate() error {
	if a.Line1 == "" {
		return errors.New("address line1 is required")
	}
	if len(a.Line1) > 200 || len(a.Line2) > 200 {
		return errors.New("address line cannot exceed 200 characters")
	}
	if a.City == "" {
		return errors.New("city is required")
	}
	if a.PostalCode == "" {
		return errors.New("postal code is required")
	}
	if len(a.PostalCode) > 20 {
		return errors.New("postal code cannot exceed 20 characters")
	}
	if len(a.Country) != 2 {
		return errors.New("country must be a 2-letter ISO code")
	}
	return nil
}

// IsEmpty reports whether no part of the address is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// String renders the address on a single line
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
