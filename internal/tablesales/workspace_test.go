package tablesales

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

type fakeCartStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	setErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCartStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeCartStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCartStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeCartStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCartStore) DelIfEquals(_ context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[key] != value {
		return false, nil
	}
	delete(f.values, key)
	return true, nil
}

func (f *fakeCartStore) CartKey(storeID, saleID string) string {
	return "pdv:cart:" + storeID + ":" + saleID
}

func (f *fakeCartStore) LockKey(parts ...string) string {
	return "pdv:lock:" + strings.Join(parts, ":")
}

func addTestItem(code string) func(cart *Cart, exists bool) error {
	return func(cart *Cart, _ bool) error {
		cart.Add(CartItem{ProductCode: code})
		return nil
	}
}

func TestMemoryWorkspaceUpdateIsolatesSales(t *testing.T) {
	ctx := context.Background()
	ws := NewMemoryWorkspace()
	saleA, saleB := uuid.New(), uuid.New()

	var sawExists bool
	_, err := ws.Update(ctx, enums.StoreOne, saleA, func(cart *Cart, exists bool) error {
		sawExists = exists
		cart.Add(CartItem{ProductCode: "A"})
		return nil
	})
	require.NoError(t, err)
	assert.False(t, sawExists)

	_, err = ws.Update(ctx, enums.StoreOne, saleB, addTestItem("B"))
	require.NoError(t, err)

	cart, exists, err := ws.Load(ctx, enums.StoreOne, saleA)
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "A", cart.Items[0].ProductCode)

	_, exists, err = ws.Load(ctx, enums.StoreTwo, saleA)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryWorkspaceFailedUpdateLeavesCart(t *testing.T) {
	ctx := context.Background()
	ws := NewMemoryWorkspace()
	saleID := uuid.New()
	_, err := ws.Update(ctx, enums.StoreOne, saleID, addTestItem("A"))
	require.NoError(t, err)

	_, err = ws.Update(ctx, enums.StoreOne, saleID, func(cart *Cart, _ bool) error {
		cart.Add(CartItem{ProductCode: "B"})
		return errors.New("boom")
	})
	require.Error(t, err)

	cart, _, err := ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, ws.Clear(ctx, enums.StoreOne, saleID))
	_, exists, err := ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryWorkspaceConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	ws := NewMemoryWorkspace()
	saleID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ws.Update(ctx, enums.StoreOne, saleID, addTestItem("X"))
		}()
	}
	wg.Wait()

	cart, _, err := ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 20)
}

func TestNewRedisWorkspaceRequiresClient(t *testing.T) {
	_, err := NewRedisWorkspace(nil, time.Hour)
	require.Error(t, err)
}

func TestRedisWorkspaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartStore()
	ws, err := NewRedisWorkspace(fake, time.Hour)
	require.NoError(t, err)
	saleID := uuid.New()

	_, exists, err := ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.False(t, exists)

	cart, err := ws.Update(ctx, enums.StoreOne, saleID, func(cart *Cart, exists bool) error {
		assert.False(t, exists)
		cart.Add(CartItem{ProductCode: "ACAI500", Quantity: 2, UnitPrice: dec(t, "15"), Subtotal: dec(t, "30")})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	key := fake.CartKey("1", saleID.String())
	assert.Equal(t, time.Hour, fake.ttls[key])
	_, locked := fake.values[fake.LockKey("cart", "1", saleID.String())]
	assert.False(t, locked, "lock must be released after update")

	loaded, exists, err := ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "30.00", loaded.Subtotal().StringFixed(2))

	require.NoError(t, ws.Clear(ctx, enums.StoreOne, saleID))
	_, exists, err = ws.Load(ctx, enums.StoreOne, saleID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisWorkspaceBusyLock(t *testing.T) {
	fake := newFakeCartStore()
	ws, err := NewRedisWorkspace(fake, time.Hour)
	require.NoError(t, err)
	saleID := uuid.New()
	fake.values[fake.LockKey("cart", "1", saleID.String())] = "someone-else"

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = ws.Update(ctx, enums.StoreOne, saleID, addTestItem("A"))
	require.Error(t, err)
	assert.Equal(t, "someone-else", fake.values[fake.LockKey("cart", "1", saleID.String())])
}

func TestRedisWorkspaceSetFailureIsDependencyError(t *testing.T) {
	fake := newFakeCartStore()
	fake.setErr = errors.New("redis down")
	ws, err := NewRedisWorkspace(fake, 0)
	require.NoError(t, err)

	_, err = ws.Update(context.Background(), enums.StoreOne, uuid.New(), addTestItem("A"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
