package tables

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/api/validators"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

type openTableRequest struct {
	CustomerName  string `json:"customer_name" validate:"max=120"`
	CustomerCount int    `json:"customer_count" validate:"min=0,max=99"`
	OperatorName  string `json:"operator_name" validate:"max=80"`
}

type addItemRequest struct {
	ProductCode  string           `json:"product_code" validate:"required,max=64"`
	ProductName  string           `json:"product_name" validate:"required,max=200"`
	Quantity     int              `json:"quantity" validate:"min=0"`
	UnitPrice    decimal.Decimal  `json:"unit_price" validate:"money"`
	WeightKg     *decimal.Decimal `json:"weight_kg" validate:"omitempty,scale=3"`
	PricePerGram *decimal.Decimal `json:"price_per_gram" validate:"omitempty,scale=4"`
	Notes        string           `json:"notes" validate:"max=500"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type finalizeRequest struct {
	PaymentType  string          `json:"payment_type" validate:"required"`
	ChangeAmount decimal.Decimal `json:"change_amount" validate:"money"`
}

type cancelRequest struct {
	Confirm bool `json:"confirm"`
}

func (p addItemRequest) toInput() tablesales.ItemInput {
	return tablesales.ItemInput{
		ProductCode:  validators.SanitizeString(p.ProductCode, 64),
		ProductName:  validators.SanitizeString(p.ProductName, 200),
		Quantity:     p.Quantity,
		UnitPrice:    p.UnitPrice,
		WeightKg:     p.WeightKg,
		PricePerGram: p.PricePerGram,
		Notes:        validators.SanitizeString(p.Notes, 500),
	}
}

// decodeOptionalBody decodes the body into dest unless it is empty.
func decodeOptionalBody(r *http.Request, dest any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return validators.DecodeJSONBody(r, dest)
}

func indexParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "index"))
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid item index").
			WithDetails(map[string]string{"index": "must be a non-negative integer"})
	}
	return index, nil
}
