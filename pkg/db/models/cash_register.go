package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// CashRegister is one opening-to-closing session of a store's drawer.
type CashRegister struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       enums.StoreID            `gorm:"column:store_id;not null"`
	OperatorName  string                   `gorm:"column:operator_name;not null"`
	OpeningAmount decimal.Decimal          `gorm:"column:opening_amount;type:numeric(12,2);not null"`
	ClosingAmount decimal.NullDecimal      `gorm:"column:closing_amount;type:numeric(12,2)"`
	Status        enums.CashRegisterStatus `gorm:"column:status;type:text;not null;default:'open'"`
	OpenedAt      time.Time                `gorm:"column:opened_at;not null"`
	ClosedAt      *time.Time               `gorm:"column:closed_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
