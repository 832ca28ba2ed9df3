package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// TableSale is one seating's transaction, stored in "store{N}_table_sales".
type TableSale struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	TableID        uuid.UUID          `gorm:"column:table_id;type:uuid;not null"`
	SaleNumber     int64              `gorm:"column:sale_number;not null"`
	OperatorName   string             `gorm:"column:operator_name;not null"`
	CustomerName   string             `gorm:"column:customer_name;not null;default:''"`
	CustomerCount  int                `gorm:"column:customer_count;not null;default:1"`
	Subtotal       decimal.Decimal    `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal    `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal    `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status         enums.SaleStatus   `gorm:"column:status;type:text;not null;default:'open'"`
	OpenedAt       time.Time          `gorm:"column:opened_at;not null"`
	ClosedAt       *time.Time         `gorm:"column:closed_at"`
	PaymentType    *enums.PaymentType `gorm:"column:payment_type;type:text"`
	ChangeAmount   decimal.Decimal    `gorm:"column:change_amount;type:numeric(12,2);not null"`
	Notes          *string            `gorm:"column:notes"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
