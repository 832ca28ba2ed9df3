package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// Order is a counter or delivery order managed by the orders screen. This
// service only reads it to count pending work.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID      enums.StoreID     `gorm:"column:store_id;not null"`
	OrderNumber  int64             `gorm:"column:order_number;not null"`
	CustomerName string            `gorm:"column:customer_name;not null;default:''"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
