package controllers

import (
	"net/http"
	"strings"

	"github.com/eliteacai/pdv-backend/api/middleware"
	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/internal/attendance"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// Attendance resolves the attendance screen for the operator and ?tab=.
func Attendance(shell *attendance.Shell, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if shell == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attendance shell unavailable"))
			return
		}
		store, err := StoreFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tab := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tab")))
		res, err := shell.Resolve(r.Context(), middleware.OperatorFromContext(r.Context()), store, tab)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
