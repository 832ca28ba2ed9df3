package controllers

import (
	"net/http"

	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/api/validators"
	"github.com/eliteacai/pdv-backend/internal/orders"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// OrdersRecent lists the latest delivery orders of the store for the orders tab.
func OrdersRecent(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		store, err := StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListRecent(r.Context(), store, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
