package enums

import "fmt"

// CashRegisterStatus tracks whether a register session accepts entries.
type CashRegisterStatus string

const (
	CashRegisterStatusOpen   CashRegisterStatus = "open"
	CashRegisterStatusClosed CashRegisterStatus = "closed"
)

var validCashRegisterStatuses = []CashRegisterStatus{
	CashRegisterStatusOpen,
	CashRegisterStatusClosed,
}

// String implements fmt.Stringer.
func (c CashRegisterStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CashRegisterStatus.
func (c CashRegisterStatus) IsValid() bool {
	for _, candidate := range validCashRegisterStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCashRegisterStatus converts raw input into a CashRegisterStatus.
func ParseCashRegisterStatus(value string) (CashRegisterStatus, error) {
	for _, candidate := range validCashRegisterStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cash register status %q", value)
}
