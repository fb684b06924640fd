package types

import "strings"

// ShippingAddress captures the structured postal fields plus the delivery
// coordinate used for fee calculation. Stored as jsonb on the order row.
type ShippingAddress struct {
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Line1    string  `json:"line1"`
	Ward     string  `json:"ward,omitempty"`
	District string  `json:"district,omitempty"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// HasCoordinate reports whether a delivery coordinate was supplied.
// (0,0) is open ocean, treated as absent.
func (a ShippingAddress) HasCoordinate() bool {
	return a.Lat != 0 || a.Lng != 0
}

// Validate reports the missing postal fields, if any.
func (a ShippingAddress) Validate() []string {
	var missing []string
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	return missing
}
