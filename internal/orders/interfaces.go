package orders

import (
	"context"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// Repository reads the orders queue of a store.
type Repository interface {
	CountByStatus(ctx context.Context, store enums.StoreID, status enums.OrderStatus) (int64, error)
	ListRecent(ctx context.Context, store enums.StoreID, limit int) ([]models.Order, error)
}
