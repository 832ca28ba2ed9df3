package cashregister

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cashregister_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestGormRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(newTestDB(t))

	none, err := repo.FindOpen(ctx, enums.StoreOne)
	require.NoError(t, err)
	assert.Nil(t, none)

	now := time.Now().UTC()
	register := &models.CashRegister{
		ID:            uuid.New(),
		StoreID:       enums.StoreOne,
		OperatorName:  "Operador",
		OpeningAmount: decimal.NewFromInt(50),
		Status:        enums.CashRegisterStatusOpen,
		OpenedAt:      now,
	}
	require.NoError(t, repo.Create(ctx, register))

	found, err := repo.FindOpen(ctx, enums.StoreOne)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, register.ID, found.ID)
	assert.Equal(t, "50.00", found.OpeningAmount.StringFixed(2))

	other, err := repo.FindOpen(ctx, enums.StoreTwo)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.AddEntry(ctx, &models.CashEntry{
		ID:          uuid.New(),
		RegisterID:  register.ID,
		StoreID:     enums.StoreOne,
		Type:        enums.CashEntryTypeIncome,
		Amount:      decimal.RequireFromString("30.00"),
		Description: "Venda Mesa #1 - Loja 1",
	}))
	entries, err := repo.ListEntries(ctx, register.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "30.00", entries[0].Amount.StringFixed(2))

	require.NoError(t, repo.Close(ctx, register.ID, decimal.NewFromInt(80), now))
	assert.ErrorIs(t, repo.Close(ctx, register.ID, decimal.NewFromInt(80), now), ErrNotOpen)

	after, err := repo.FindOpen(ctx, enums.StoreOne)
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestMemoryRepositoryRejectsSecondOpenRegister(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	first := &models.CashRegister{ID: uuid.New(), StoreID: enums.StoreOne, Status: enums.CashRegisterStatusOpen}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.CashRegister{ID: uuid.New(), StoreID: enums.StoreOne, Status: enums.CashRegisterStatusOpen}
	assert.ErrorIs(t, repo.Create(ctx, second), ErrAlreadyOpen)

	third := &models.CashRegister{ID: uuid.New(), StoreID: enums.StoreTwo, Status: enums.CashRegisterStatusOpen}
	assert.NoError(t, repo.Create(ctx, third))
}
