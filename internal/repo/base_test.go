package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

type scopedRow struct {
	ID      int `gorm:"primaryKey"`
	StoreID int
	Label   string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&scopedRow{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, ctx, withCtx.Statement.Context)

	require.Same(t, db, base.DB(nil))
}

func TestBaseForStore_FiltersRows(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]scopedRow{
		{ID: 1, StoreID: 1, Label: "mesa 1"},
		{ID: 2, StoreID: 2, Label: "mesa 1"},
		{ID: 3, StoreID: 1, Label: "mesa 2"},
	}).Error)

	base := NewBase(db)
	var rows []scopedRow
	require.NoError(t, base.ForStore(context.Background(), enums.StoreOne).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.Equal(t, 1, rows[0].ID)
	require.Equal(t, 3, rows[1].ID)
}
