package tables

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eliteacai/pdv-backend/api/controllers"
	"github.com/eliteacai/pdv-backend/api/middleware"
	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/api/validators"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

type tableHandler func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID)

// withTable resolves the store and {tableID} before calling fn.
func withTable(svc tablesales.Service, logg *logger.Logger, fn tableHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table sales service unavailable"))
			return
		}
		store, err := controllers.StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tableID, err := controllers.UUIDParam(r, "tableID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSale(ctx, tableID.String(), "")
		}
		fn(w, r.WithContext(ctx), store, tableID)
	}
}

// List returns the active tables of the store, optionally filtered by ?search=.
func List(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table sales service unavailable"))
			return
		}
		store, err := controllers.StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		search := validators.SanitizeString(r.URL.Query().Get("search"), 80)
		tables, err := svc.ListTables(r.Context(), store, search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tables)
	}
}

// Open seats customers at a free table and starts a sale.
func Open(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		var payload openTableRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorName := validators.SanitizeString(payload.OperatorName, 80)
		if operatorName == "" {
			operatorName = middleware.OperatorFromContext(r.Context()).DisplayName()
		}
		session, err := svc.OpenTable(r.Context(), store, tableID, tablesales.OpenTableInput{
			CustomerName:  validators.SanitizeString(payload.CustomerName, 120),
			CustomerCount: payload.CustomerCount,
			OperatorName:  operatorName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	})
}

// Release frees a table waiting for the bill or for cleaning.
func Release(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		table, err := svc.ReleaseTable(r.Context(), store, tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, table)
	})
}

// Session returns the open sale of the table with its working cart.
func Session(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		session, err := svc.Session(r.Context(), store, tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	})
}

func AddItem(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.AddItem(r.Context(), store, tableID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	})
}

// UpdateItem sets the quantity of the item at {index}; zero or less removes it.
func UpdateItem(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		index, err := indexParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.UpdateItemQuantity(r.Context(), store, tableID, index, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	})
}

func RemoveItem(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		index, err := indexParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.RemoveItem(r.Context(), store, tableID, index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	})
}

// Save persists the working cart as the sale's items.
func Save(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		session, err := svc.SaveDraft(r.Context(), store, tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	})
}

// Finalize closes the sale with the chosen payment and frees the table.
func Finalize(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		var payload finalizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Finalize(r.Context(), store, tableID, tablesales.FinalizeInput{
			PaymentType:  payload.PaymentType,
			ChangeAmount: payload.ChangeAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	})
}

// Cancel voids the open sale. The body must confirm the cancellation.
func Cancel(svc tablesales.Service, logg *logger.Logger) http.HandlerFunc {
	return withTable(svc, logg, func(w http.ResponseWriter, r *http.Request, store enums.StoreID, tableID uuid.UUID) {
		var payload cancelRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Cancel(r.Context(), store, tableID, payload.Confirm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	})
}
