package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// Base carries the GORM connection shared by the store-aware repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// ForStore narrows queries to rows owned by one store.
func (b Base) ForStore(ctx context.Context, store enums.StoreID) *gorm.DB {
	return b.DB(ctx).Where("store_id = ?", store)
}
