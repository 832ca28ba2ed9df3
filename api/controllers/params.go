package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eliteacai/pdv-backend/api/middleware"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

// StoreFromRequest returns the store resolved by middleware.StoreContext.
func StoreFromRequest(r *http.Request) (enums.StoreID, error) {
	store, ok := middleware.StoreIDFromContext(r.Context())
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "store context missing")
	}
	return store, nil
}

// UUIDParam parses a required uuid path parameter.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).
			WithDetails(map[string]string{name: "must be a uuid"})
	}
	return id, nil
}
