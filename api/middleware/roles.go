package middleware

import (
	"net/http"

	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// RequirePermission rejects operators lacking the permission. Admins and
// anonymous terminals pass.
func RequirePermission(permission enums.Permission, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !OperatorFromContext(r.Context()).Has(permission) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "permission %s required", permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
