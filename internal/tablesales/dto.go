package tablesales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// TableDTO is the table as shown on the table grid.
type TableDTO struct {
	ID            uuid.UUID         `json:"id"`
	StoreID       enums.StoreID     `json:"store_id"`
	Number        int               `json:"number"`
	Name          string            `json:"name"`
	Capacity      int               `json:"capacity"`
	Location      *string           `json:"location,omitempty"`
	Status        enums.TableStatus `json:"status"`
	CurrentSaleID *uuid.UUID        `json:"current_sale_id,omitempty"`
	CurrentSale   *SaleDTO          `json:"current_sale,omitempty"`
}

// SaleDTO exposes a table sale with money formatted to two places.
type SaleDTO struct {
	ID             uuid.UUID          `json:"id"`
	TableID        uuid.UUID          `json:"table_id"`
	SaleNumber     int64              `json:"sale_number"`
	OperatorName   string             `json:"operator_name"`
	CustomerName   string             `json:"customer_name"`
	CustomerCount  int                `json:"customer_count"`
	Subtotal       string             `json:"subtotal"`
	DiscountAmount string             `json:"discount_amount"`
	TotalAmount    string             `json:"total_amount"`
	Status         enums.SaleStatus   `json:"status"`
	OpenedAt       time.Time          `json:"opened_at"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty"`
	PaymentType    *enums.PaymentType `json:"payment_type,omitempty"`
	ChangeAmount   string             `json:"change_amount"`
}

// SaleItemDTO is a persisted sale line.
type SaleItemDTO struct {
	ID             uuid.UUID `json:"id"`
	Position       int       `json:"position"`
	ProductCode    string    `json:"product_code"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	WeightKg       *string   `json:"weight_kg,omitempty"`
	UnitPrice      string    `json:"unit_price"`
	PricePerGram   *string   `json:"price_per_gram,omitempty"`
	DiscountAmount string    `json:"discount_amount"`
	Subtotal       string    `json:"subtotal"`
	Notes          *string   `json:"notes,omitempty"`
}

// CartItemDTO is a working cart line addressed by its index.
type CartItemDTO struct {
	Index        int     `json:"index"`
	ProductCode  string  `json:"product_code"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	WeightKg     *string `json:"weight_kg,omitempty"`
	UnitPrice    string  `json:"unit_price"`
	PricePerGram *string `json:"price_per_gram,omitempty"`
	Subtotal     string  `json:"subtotal"`
	Notes        string  `json:"notes,omitempty"`
}

// SessionDTO is the state of one table being attended.
type SessionDTO struct {
	Table     TableDTO      `json:"table"`
	Sale      SaleDTO       `json:"sale"`
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  string        `json:"subtotal"`
	Total     string        `json:"total"`
}

// FinalizeResultDTO reports the closed sale and whether the cash entry landed.
type FinalizeResultDTO struct {
	Sale            SaleDTO `json:"sale"`
	CashEntryPosted bool    `json:"cash_entry_posted"`
}

// SaleDetailDTO is a sale with its persisted items.
type SaleDetailDTO struct {
	Sale  SaleDTO       `json:"sale"`
	Items []SaleItemDTO `json:"items"`
}

func money(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func optionalFixed(value *decimal.Decimal, places int32) *string {
	if value == nil {
		return nil
	}
	out := value.StringFixed(places)
	return &out
}

func optionalNullFixed(value decimal.NullDecimal, places int32) *string {
	if !value.Valid {
		return nil
	}
	out := value.Decimal.StringFixed(places)
	return &out
}

func newTableDTO(store enums.StoreID, view TableView) TableDTO {
	dto := TableDTO{
		ID:            view.Table.ID,
		StoreID:       store,
		Number:        view.Table.Number,
		Name:          view.Table.Name,
		Capacity:      view.Table.Capacity,
		Location:      view.Table.Location,
		Status:        view.Table.Status,
		CurrentSaleID: view.Table.CurrentSaleID,
	}
	if view.CurrentSale != nil {
		sale := newSaleDTO(*view.CurrentSale)
		dto.CurrentSale = &sale
	}
	return dto
}

func newSaleDTO(sale models.TableSale) SaleDTO {
	return SaleDTO{
		ID:             sale.ID,
		TableID:        sale.TableID,
		SaleNumber:     sale.SaleNumber,
		OperatorName:   sale.OperatorName,
		CustomerName:   sale.CustomerName,
		CustomerCount:  sale.CustomerCount,
		Subtotal:       money(sale.Subtotal),
		DiscountAmount: money(sale.DiscountAmount),
		TotalAmount:    money(sale.TotalAmount),
		Status:         sale.Status,
		OpenedAt:       sale.OpenedAt,
		ClosedAt:       sale.ClosedAt,
		PaymentType:    sale.PaymentType,
		ChangeAmount:   money(sale.ChangeAmount),
	}
}

func newSaleItemDTO(item models.TableSaleItem) SaleItemDTO {
	return SaleItemDTO{
		ID:             item.ID,
		Position:       item.Position,
		ProductCode:    item.ProductCode,
		ProductName:    item.ProductName,
		Quantity:       item.Quantity,
		WeightKg:       optionalNullFixed(item.WeightKg, 3),
		UnitPrice:      money(item.UnitPrice),
		PricePerGram:   optionalNullFixed(item.PricePerGram, 4),
		DiscountAmount: money(item.DiscountAmount),
		Subtotal:       money(item.Subtotal),
		Notes:          item.Notes,
	}
}

func newSessionDTO(store enums.StoreID, view TableView, sale models.TableSale, cart Cart) SessionDTO {
	items := make([]CartItemDTO, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemDTO{
			Index:        i,
			ProductCode:  item.ProductCode,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			WeightKg:     optionalFixed(item.WeightKg, 3),
			UnitPrice:    money(item.UnitPrice),
			PricePerGram: optionalFixed(item.PricePerGram, 4),
			Subtotal:     money(item.Subtotal),
			Notes:        item.Notes,
		}
	}
	view.CurrentSale = &sale
	return SessionDTO{
		Table:     newTableDTO(store, view),
		Sale:      newSaleDTO(sale),
		Items:     items,
		ItemCount: len(items),
		Subtotal:  money(cart.Subtotal()),
		Total:     money(cart.Total()),
	}
}
