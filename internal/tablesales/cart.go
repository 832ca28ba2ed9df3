package tablesales

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

// ItemRules controls which zero-valued fields are accepted when adding items.
// The zero value rejects a quantity or unit price of exactly zero.
type ItemRules struct {
	AllowZeroQuantity bool
	AllowZeroPrice    bool
}

// ItemInput is the add-item form as submitted by the terminal.
type ItemInput struct {
	ProductCode  string
	ProductName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	WeightKg     *decimal.Decimal
	PricePerGram *decimal.Decimal
	Notes        string
}

// CartItem is an unsaved line of the working cart.
type CartItem struct {
	ProductCode  string           `json:"product_code"`
	ProductName  string           `json:"product_name"`
	Quantity     int              `json:"quantity"`
	WeightKg     *decimal.Decimal `json:"weight_kg,omitempty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	PricePerGram *decimal.Decimal `json:"price_per_gram,omitempty"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Notes        string           `json:"notes,omitempty"`
}

// Weighted reports whether the item is priced by weight.
func (i CartItem) Weighted() bool {
	return i.WeightKg != nil && i.WeightKg.IsPositive() &&
		i.PricePerGram != nil && i.PricePerGram.IsPositive()
}

func (i CartItem) computeSubtotal() decimal.Decimal {
	if i.Weighted() {
		return i.WeightKg.Mul(gramsPerKilogram).Mul(*i.PricePerGram).Round(2)
	}
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Cart is the working set of items of one open sale.
type Cart struct {
	Items []CartItem `json:"items"`
}

// NewCartItem validates the input against the rules and computes the subtotal.
func NewCartItem(input ItemInput, rules ItemRules) (CartItem, error) {
	details := map[string]string{}

	code := strings.TrimSpace(input.ProductCode)
	name := strings.TrimSpace(input.ProductName)
	if code == "" {
		details["product_code"] = "is required"
	}
	if name == "" {
		details["product_name"] = "is required"
	}
	switch {
	case input.Quantity < 0:
		details["quantity"] = "must not be negative"
	case input.Quantity == 0 && !rules.AllowZeroQuantity:
		details["quantity"] = "is required"
	}
	switch {
	case input.UnitPrice.IsNegative():
		details["unit_price"] = "must not be negative"
	case input.UnitPrice.IsZero() && !rules.AllowZeroPrice:
		details["unit_price"] = "is required"
	}
	if msg := checkScale(input.WeightKg, weightScale); msg != "" {
		details["weight_kg"] = msg
	}
	if msg := checkScale(input.PricePerGram, pricePerGramScale); msg != "" {
		details["price_per_gram"] = msg
	}
	if len(details) > 0 {
		return CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, "item is missing required fields").WithDetails(details)
	}

	item := CartItem{
		ProductCode:  code,
		ProductName:  name,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		WeightKg:     cloneDecimal(input.WeightKg),
		PricePerGram: cloneDecimal(input.PricePerGram),
		Notes:        strings.TrimSpace(input.Notes),
	}
	item.Subtotal = item.computeSubtotal()
	return item, nil
}

// Column scales of weight_kg and price_per_gram.
const (
	weightScale       = 3
	pricePerGramScale = 4
)

func checkScale(value *decimal.Decimal, places int32) string {
	switch {
	case value == nil:
		return ""
	case value.IsNegative():
		return "must not be negative"
	case !value.Equal(value.Round(places)):
		return fmt.Sprintf("must have at most %d decimal places", places)
	}
	return ""
}

// Add appends an already validated item.
func (c *Cart) Add(item CartItem) {
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of the item at index. A quantity of zero or
// less removes the item instead.
func (c *Cart) UpdateQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.Items) {
		return itemNotFound(index)
	}
	if quantity <= 0 {
		return c.Remove(index)
	}
	item := &c.Items[index]
	item.Quantity = quantity
	item.Subtotal = item.computeSubtotal()
	return nil
}

// Remove drops the item at index.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Items) {
		return itemNotFound(index)
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return nil
}

// Subtotal sums the item subtotals.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Total equals the subtotal; sale-level discounts are not applied.
func (c Cart) Total() decimal.Decimal {
	return c.Subtotal()
}

// Empty reports whether the cart has no items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// ToModels converts the cart into persisted rows for the sale.
func (c Cart) ToModels(saleID uuid.UUID) []models.TableSaleItem {
	rows := make([]models.TableSaleItem, 0, len(c.Items))
	for i, item := range c.Items {
		row := models.TableSaleItem{
			SaleID:         saleID,
			Position:       i,
			ProductCode:    item.ProductCode,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: decimal.Zero,
			Subtotal:       item.Subtotal,
		}
		if item.WeightKg != nil {
			row.WeightKg = decimal.NewNullDecimal(*item.WeightKg)
		}
		if item.PricePerGram != nil {
			row.PricePerGram = decimal.NewNullDecimal(*item.PricePerGram)
		}
		if item.Notes != "" {
			notes := item.Notes
			row.Notes = &notes
		}
		rows = append(rows, row)
	}
	return rows
}

// CartFromModels rebuilds a working cart from persisted rows.
func CartFromModels(rows []models.TableSaleItem) Cart {
	cart := Cart{Items: make([]CartItem, 0, len(rows))}
	for _, row := range rows {
		item := CartItem{
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Subtotal:    row.Subtotal,
		}
		if row.WeightKg.Valid {
			w := row.WeightKg.Decimal
			item.WeightKg = &w
		}
		if row.PricePerGram.Valid {
			p := row.PricePerGram.Decimal
			item.PricePerGram = &p
		}
		if row.Notes != nil {
			item.Notes = *row.Notes
		}
		cart.Items = append(cart.Items, item)
	}
	return cart
}

func itemNotFound(index int) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "cart item %d not found", index).
		WithDetails(map[string]any{"index": index})
}

func cloneDecimal(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
