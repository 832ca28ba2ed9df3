package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/api/middleware"
	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/api/validators"
	"github.com/eliteacai/pdv-backend/internal/cashregister"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

type openRegisterRequest struct {
	OperatorName  string          `json:"operator_name" validate:"max=80"`
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"money"`
}

type closeRegisterRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" validate:"money"`
}

type cashEntryRequest struct {
	Type          string          `json:"type" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"required,max=200"`
	PaymentMethod string          `json:"payment_method"`
	SaleID        *uuid.UUID      `json:"sale_id"`
}

// CashRegisterCurrent returns the open register of the store with its entries.
func CashRegisterCurrent(svc cashregister.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := registerStore(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		register, err := svc.Current(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, register)
	}
}

func CashRegisterOpen(svc cashregister.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := registerStore(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload openRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorName := validators.SanitizeString(payload.OperatorName, 80)
		if operatorName == "" {
			operatorName = middleware.OperatorFromContext(r.Context()).DisplayName()
		}
		register, err := svc.Open(r.Context(), store, cashregister.OpenInput{
			OperatorName:  operatorName,
			OpeningAmount: payload.OpeningAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, register)
	}
}

func CashRegisterClose(svc cashregister.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := registerStore(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload closeRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		register, err := svc.Close(r.Context(), store, cashregister.CloseInput{ClosingAmount: payload.ClosingAmount})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, register)
	}
}

// CashRegisterAddEntry records a manual movement against the open register.
func CashRegisterAddEntry(svc cashregister.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := registerStore(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cashEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := cashregister.EntryInput{
			Type:        enums.CashEntryType(strings.TrimSpace(payload.Type)),
			Amount:      payload.Amount,
			Description: validators.SanitizeString(payload.Description, 200),
			SaleID:      payload.SaleID,
		}
		if method := strings.TrimSpace(payload.PaymentMethod); method != "" {
			pt := enums.PaymentType(method)
			input.PaymentMethod = &pt
		}
		entry, err := svc.AddEntry(r.Context(), store, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func registerStore(svc cashregister.Service, r *http.Request) (enums.StoreID, error) {
	if svc == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "cash register service unavailable")
	}
	return StoreFromRequest(r)
}
