package middleware

import (
	"net/http"
	"strings"

	"github.com/eliteacai/pdv-backend/api/responses"
	pkgAuth "github.com/eliteacai/pdv-backend/pkg/auth"
	"github.com/eliteacai/pdv-backend/pkg/config"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// Auth validates an operator bearer token and seeds the request context with
// the operator. When allowAnonymous is set, requests without credentials pass
// through with no operator, which the permission checks treat as admin.
func Auth(cfg config.JWTConfig, allowAnonymous bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				if allowAnonymous {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseOperatorToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if strings.TrimSpace(claims.Code) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing operator code"))
				return
			}

			operator := claims.Operator()
			ctx := WithOperator(r.Context(), operator)
			if logg != nil {
				ctx = logg.WithOperatorID(ctx, operator.ID.String())
				ctx = logg.WithField(ctx, "operator_code", operator.Code)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
