package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// StoreContext resolves the {storeID} path parameter into the request context.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := enums.ParseStoreID(chi.URLParam(r, "storeID"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store").
					WithDetails(map[string]string{"store_id": "must be 1 or 2"}))
				return
			}
			ctx := WithStoreID(r.Context(), store)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, store)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
