package controllers

import (
	"net/http"
	"strings"

	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/api/validators"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// SalesList returns the sales history of the store, newest first.
func SalesList(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table sales service unavailable"))
			return
		}
		store, err := StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := tablesales.SaleFilter{Limit: limit}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSaleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
					WithDetails(map[string]string{"status": "must be open, closed or cancelled"}))
				return
			}
			filter.Status = &status
		}

		sales, err := svc.ListSales(r.Context(), store, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sales)
	}
}

// SaleDetail returns one sale with its persisted items.
func SaleDetail(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table sales service unavailable"))
			return
		}
		store, err := StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saleID, err := UUIDParam(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetSale(r.Context(), store, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
