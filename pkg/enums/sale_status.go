package enums

import "fmt"

// SaleStatus tracks the lifecycle of a table sale.
type SaleStatus string

const (
	SaleStatusOpen      SaleStatus = "open"
	SaleStatusClosed    SaleStatus = "closed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusOpen,
	SaleStatusClosed,
	SaleStatusCancelled,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusClosed || s == SaleStatusCancelled
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
