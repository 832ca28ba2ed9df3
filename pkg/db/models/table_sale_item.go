package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TableSaleItem is a persisted line of a sale, stored in
// "store{N}_table_sale_items". The whole set is replaced on every save.
type TableSaleItem struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleID         uuid.UUID           `gorm:"column:sale_id;type:uuid;not null"`
	Position       int                 `gorm:"column:position;not null"`
	ProductCode    string              `gorm:"column:product_code;not null"`
	ProductName    string              `gorm:"column:product_name;not null"`
	Quantity       int                 `gorm:"column:quantity;not null"`
	WeightKg       decimal.NullDecimal `gorm:"column:weight_kg;type:numeric(10,3)"`
	UnitPrice      decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	PricePerGram   decimal.NullDecimal `gorm:"column:price_per_gram;type:numeric(12,4)"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Notes          *string             `gorm:"column:notes"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}
