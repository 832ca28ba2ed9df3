package cashregister

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// RegisterDTO is the register session of a store with its entries. Open is
// false and the remaining fields are empty when no session is open.
type RegisterDTO struct {
	ID            *uuid.UUID               `json:"id,omitempty"`
	StoreID       enums.StoreID            `json:"store_id"`
	Open          bool                     `json:"open"`
	Status        enums.CashRegisterStatus `json:"status,omitempty"`
	OperatorName  string                   `json:"operator_name,omitempty"`
	OpeningAmount string                   `json:"opening_amount,omitempty"`
	ClosingAmount *string                  `json:"closing_amount,omitempty"`
	Balance       string                   `json:"balance,omitempty"`
	OpenedAt      *time.Time               `json:"opened_at,omitempty"`
	ClosedAt      *time.Time               `json:"closed_at,omitempty"`
	Entries       []EntryDTO               `json:"entries"`
}

// EntryDTO is one register movement.
type EntryDTO struct {
	ID            uuid.UUID           `json:"id"`
	Type          enums.CashEntryType `json:"type"`
	Amount        string              `json:"amount"`
	Description   string              `json:"description"`
	PaymentMethod *enums.PaymentType  `json:"payment_method,omitempty"`
	SaleID        *uuid.UUID          `json:"sale_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Balance returns the opening amount plus inflows minus outflows.
func Balance(opening decimal.Decimal, entries []models.CashEntry) decimal.Decimal {
	balance := opening
	for _, entry := range entries {
		if entry.Type.Inflow() {
			balance = balance.Add(entry.Amount)
		} else {
			balance = balance.Sub(entry.Amount)
		}
	}
	return balance
}

func newRegisterDTO(register models.CashRegister, entries []models.CashEntry) RegisterDTO {
	id := register.ID
	openedAt := register.OpenedAt
	dto := RegisterDTO{
		ID:            &id,
		StoreID:       register.StoreID,
		Open:          register.Status == enums.CashRegisterStatusOpen,
		Status:        register.Status,
		OperatorName:  register.OperatorName,
		OpeningAmount: register.OpeningAmount.StringFixed(2),
		Balance:       Balance(register.OpeningAmount, entries).StringFixed(2),
		OpenedAt:      &openedAt,
		ClosedAt:      register.ClosedAt,
		Entries:       make([]EntryDTO, 0, len(entries)),
	}
	if register.ClosingAmount.Valid {
		closing := register.ClosingAmount.Decimal.StringFixed(2)
		dto.ClosingAmount = &closing
	}
	for _, entry := range entries {
		dto.Entries = append(dto.Entries, newEntryDTO(entry))
	}
	return dto
}

func newEntryDTO(entry models.CashEntry) EntryDTO {
	return EntryDTO{
		ID:            entry.ID,
		Type:          entry.Type,
		Amount:        entry.Amount.StringFixed(2),
		Description:   entry.Description,
		PaymentMethod: entry.PaymentMethod,
		SaleID:        entry.SaleID,
		CreatedAt:     entry.CreatedAt,
	}
}
