package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// CashEntry records money moving through an open register.
type CashEntry struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RegisterID    uuid.UUID           `gorm:"column:register_id;type:uuid;not null"`
	StoreID       enums.StoreID       `gorm:"column:store_id;not null"`
	Type          enums.CashEntryType `gorm:"column:type;type:text;not null"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Description   string              `gorm:"column:description;not null"`
	PaymentMethod *enums.PaymentType  `gorm:"column:payment_method;type:text"`
	SaleID        *uuid.UUID          `gorm:"column:sale_id;type:uuid"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
