package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedOrder(store enums.StoreID, number int64, status enums.OrderStatus, createdAt time.Time) models.Order {
	return models.Order{
		ID:           uuid.New(),
		StoreID:      store,
		OrderNumber:  number,
		CustomerName: "Cliente",
		Status:       status,
		TotalAmount:  decimal.RequireFromString("18.90"),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestRepositoryCountsPendingPerStore(t *testing.T) {
	ctx := context.Background()
	db := setupOrdersTestDB(t)
	now := time.Now().UTC()
	rows := []models.Order{
		seedOrder(enums.StoreOne, 1, enums.OrderStatusPending, now),
		seedOrder(enums.StoreOne, 2, enums.OrderStatusPending, now.Add(time.Minute)),
		seedOrder(enums.StoreOne, 3, enums.OrderStatusReady, now.Add(2*time.Minute)),
		seedOrder(enums.StoreTwo, 1, enums.OrderStatusPending, now),
	}
	require.NoError(t, db.Create(&rows).Error)

	repo := NewRepository(db)
	count, err := repo.CountByStatus(ctx, enums.StoreOne, enums.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	recent, err := repo.ListRecent(ctx, enums.StoreOne, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].OrderNumber)
}
