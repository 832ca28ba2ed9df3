package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

type stubRepo struct {
	err error
}

func (s stubRepo) CountByStatus(context.Context, enums.StoreID, enums.OrderStatus) (int64, error) {
	return 0, s.err
}

func (s stubRepo) ListRecent(context.Context, enums.StoreID, int) ([]models.Order, error) {
	return nil, s.err
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestServicePendingCount(t *testing.T) {
	now := time.Now()
	repo := NewMemoryRepository(
		seedOrder(enums.StoreOne, 1, enums.OrderStatusPending, now),
		seedOrder(enums.StoreOne, 2, enums.OrderStatusDelivered, now),
		seedOrder(enums.StoreTwo, 1, enums.OrderStatusPending, now),
	)
	svc, err := NewService(repo)
	require.NoError(t, err)

	count, err := svc.PendingCount(context.Background(), enums.StoreOne)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	list, err := svc.ListRecent(context.Background(), enums.StoreOne, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "18.90", list[0].TotalAmount)

	_, err = svc.PendingCount(context.Background(), enums.StoreID(0))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServicePendingCountDependencyError(t *testing.T) {
	svc, err := NewService(stubRepo{err: errors.New("db down")})
	require.NoError(t, err)

	_, err = svc.PendingCount(context.Background(), enums.StoreOne)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
