package enums

import (
	"fmt"
	"strconv"
	"strings"
)

// StoreID selects one of the store-scoped table sets.
type StoreID int

const (
	StoreOne StoreID = 1
	StoreTwo StoreID = 2
)

var validStoreIDs = []StoreID{StoreOne, StoreTwo}

// StoreIDs returns every known store.
func StoreIDs() []StoreID {
	out := make([]StoreID, len(validStoreIDs))
	copy(out, validStoreIDs)
	return out
}

// String implements fmt.Stringer.
func (s StoreID) String() string {
	return strconv.Itoa(int(s))
}

// IsValid reports whether the value is a known StoreID.
func (s StoreID) IsValid() bool {
	for _, candidate := range validStoreIDs {
		if candidate == s {
			return true
		}
	}
	return false
}

// TablePrefix returns the prefix of the store's table set, e.g. "store1_".
func (s StoreID) TablePrefix() string {
	return fmt.Sprintf("store%d_", int(s))
}

// ParseStoreID converts raw input into a StoreID.
func ParseStoreID(value string) (StoreID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid store id %q", value)
	}
	id := StoreID(n)
	if !id.IsValid() {
		return 0, fmt.Errorf("invalid store id %q", value)
	}
	return id, nil
}
