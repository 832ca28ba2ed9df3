package enums

import "fmt"

// CashEntryType classifies a movement recorded against a cash register.
type CashEntryType string

const (
	CashEntryTypeIncome     CashEntryType = "income"
	CashEntryTypeExpense    CashEntryType = "expense"
	CashEntryTypeWithdrawal CashEntryType = "withdrawal"
	CashEntryTypeDeposit    CashEntryType = "deposit"
)

var validCashEntryTypes = []CashEntryType{
	CashEntryTypeIncome,
	CashEntryTypeExpense,
	CashEntryTypeWithdrawal,
	CashEntryTypeDeposit,
}

// String implements fmt.Stringer.
func (c CashEntryType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CashEntryType.
func (c CashEntryType) IsValid() bool {
	for _, candidate := range validCashEntryTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// Inflow reports whether the entry adds money to the drawer.
func (c CashEntryType) Inflow() bool {
	return c == CashEntryTypeIncome || c == CashEntryTypeDeposit
}

// ParseCashEntryType converts raw input into a CashEntryType.
func ParseCashEntryType(value string) (CashEntryType, error) {
	for _, candidate := range validCashEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cash entry type %q", value)
}
