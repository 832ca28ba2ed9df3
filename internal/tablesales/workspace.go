package tablesales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

const (
	defaultCartTTL   = 12 * time.Hour
	cartLockTTL      = 5 * time.Second
	cartLockAttempts = 40
	cartLockBackoff  = 25 * time.Millisecond
)

// Workspace holds the unsaved working cart of each open sale. Update runs fn
// atomically per sale; exists is false when no cart was stored yet.
type Workspace interface {
	Load(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (Cart, bool, error)
	Update(ctx context.Context, store enums.StoreID, saleID uuid.UUID, fn func(cart *Cart, exists bool) error) (Cart, error)
	Clear(ctx context.Context, store enums.StoreID, saleID uuid.UUID) error
}

type workspaceKey struct {
	store  enums.StoreID
	saleID uuid.UUID
}

// MemoryWorkspace keeps carts in process memory.
type MemoryWorkspace struct {
	mu    sync.Mutex
	carts map[workspaceKey]Cart
}

// NewMemoryWorkspace returns an empty in-process workspace.
func NewMemoryWorkspace() *MemoryWorkspace {
	return &MemoryWorkspace{carts: map[workspaceKey]Cart{}}
}

func (w *MemoryWorkspace) Load(_ context.Context, store enums.StoreID, saleID uuid.UUID) (Cart, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cart, ok := w.carts[workspaceKey{store, saleID}]
	return cloneCart(cart), ok, nil
}

func (w *MemoryWorkspace) Update(_ context.Context, store enums.StoreID, saleID uuid.UUID, fn func(cart *Cart, exists bool) error) (Cart, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := workspaceKey{store, saleID}
	current, exists := w.carts[key]
	working := cloneCart(current)
	if err := fn(&working, exists); err != nil {
		return Cart{}, err
	}
	w.carts[key] = working
	return cloneCart(working), nil
}

func (w *MemoryWorkspace) Clear(_ context.Context, store enums.StoreID, saleID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.carts, workspaceKey{store, saleID})
	return nil
}

type cartStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DelIfEquals(ctx context.Context, key, value string) (bool, error)
	CartKey(storeID, saleID string) string
	LockKey(parts ...string) string
}

// RedisWorkspace shares carts between api replicas. Updates are serialized by a
// short SET NX lock per sale.
type RedisWorkspace struct {
	client cartStore
	ttl    time.Duration
}

// NewRedisWorkspace builds a redis-backed workspace; ttl bounds how long an
// untouched cart is kept.
func NewRedisWorkspace(client cartStore, ttl time.Duration) (*RedisWorkspace, error) {
	if client == nil {
		return nil, errors.New("redis client required for workspace")
	}
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &RedisWorkspace{client: client, ttl: ttl}, nil
}

func (w *RedisWorkspace) Load(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (Cart, bool, error) {
	return w.read(ctx, w.client.CartKey(store.String(), saleID.String()))
}

func (w *RedisWorkspace) Update(ctx context.Context, store enums.StoreID, saleID uuid.UUID, fn func(cart *Cart, exists bool) error) (Cart, error) {
	lockKey := w.client.LockKey("cart", store.String(), saleID.String())
	owner, err := w.acquire(ctx, lockKey)
	if err != nil {
		return Cart{}, err
	}
	defer w.release(context.WithoutCancel(ctx), lockKey, owner)

	key := w.client.CartKey(store.String(), saleID.String())
	cart, exists, err := w.read(ctx, key)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&cart, exists); err != nil {
		return Cart{}, err
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return Cart{}, fmt.Errorf("encode cart: %w", err)
	}
	if err := w.client.Set(ctx, key, string(payload), w.ttl); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store working cart")
	}
	return cart, nil
}

func (w *RedisWorkspace) Clear(ctx context.Context, store enums.StoreID, saleID uuid.UUID) error {
	if err := w.client.Del(ctx, w.client.CartKey(store.String(), saleID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear working cart")
	}
	return nil
}

func (w *RedisWorkspace) read(ctx context.Context, key string) (Cart, bool, error) {
	raw, err := w.client.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load working cart")
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return Cart{}, false, fmt.Errorf("decode cart: %w", err)
	}
	return cart, true, nil
}

func (w *RedisWorkspace) acquire(ctx context.Context, key string) (string, error) {
	owner := uuid.NewString()
	for attempt := 0; attempt < cartLockAttempts; attempt++ {
		ok, err := w.client.SetNX(ctx, key, owner, cartLockTTL)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock working cart")
		}
		if ok {
			return owner, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(cartLockBackoff):
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "working cart is busy")
}

func (w *RedisWorkspace) release(ctx context.Context, key, owner string) {
	_, _ = w.client.DelIfEquals(ctx, key, owner)
}

func cloneCart(cart Cart) Cart {
	if cart.Items == nil {
		return Cart{}
	}
	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)
	return Cart{Items: items}
}

var (
	_ Workspace = (*MemoryWorkspace)(nil)
	_ Workspace = (*RedisWorkspace)(nil)
)
