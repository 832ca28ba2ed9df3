package orders

import (
	"context"
	"fmt"

	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service exposes the read side of the orders queue used by the attendance screen.
type Service interface {
	PendingCount(ctx context.Context, store enums.StoreID) (int64, error)
	ListRecent(ctx context.Context, store enums.StoreID, limit int) ([]OrderSummary, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// PendingCount returns how many orders of the store await confirmation.
func (s *service) PendingCount(ctx context.Context, store enums.StoreID) (int64, error) {
	if !store.IsValid() {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown store %d", int(store))
	}
	count, err := s.repo.CountByStatus(ctx, store, enums.OrderStatusPending)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending orders")
	}
	return count, nil
}

func (s *service) ListRecent(ctx context.Context, store enums.StoreID, limit int) ([]OrderSummary, error) {
	if !store.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown store %d", int(store))
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	rows, err := s.repo.ListRecent(ctx, store, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, newOrderSummary(row))
	}
	return out, nil
}
