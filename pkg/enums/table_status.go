package enums

import "fmt"

// TableStatus tracks the occupancy of a physical table.
type TableStatus string

const (
	TableStatusFree         TableStatus = "free"
	TableStatusOccupied     TableStatus = "occupied"
	TableStatusAwaitingBill TableStatus = "awaiting_bill"
	TableStatusCleaning     TableStatus = "cleaning"
)

var validTableStatuses = []TableStatus{
	TableStatusFree,
	TableStatusOccupied,
	TableStatusAwaitingBill,
	TableStatusCleaning,
}

// String implements fmt.Stringer.
func (t TableStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TableStatus.
func (t TableStatus) IsValid() bool {
	for _, candidate := range validTableStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// Releasable reports whether a table in this status can be handed back as
// free without closing a sale.
func (t TableStatus) Releasable() bool {
	return t == TableStatusAwaitingBill || t == TableStatusCleaning
}

// ParseTableStatus converts raw input into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	for _, candidate := range validTableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table status %q", value)
}
