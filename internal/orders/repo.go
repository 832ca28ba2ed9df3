package orders

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/internal/repo"
	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to the orders queue.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// AutoMigrate creates the orders table for drivers without goose migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (r *repository) CountByStatus(ctx context.Context, store enums.StoreID, status enums.OrderStatus) (int64, error) {
	var count int64
	if err := r.ForStore(ctx, store).
		Model(&models.Order{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListRecent(ctx context.Context, store enums.StoreID, limit int) ([]models.Order, error) {
	var rows []models.Order
	if err := r.ForStore(ctx, store).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MemoryRepository holds demo orders in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	orders []models.Order
}

// NewMemoryRepository returns a repository seeded with the given orders.
func NewMemoryRepository(seed ...models.Order) *MemoryRepository {
	orders := make([]models.Order, len(seed))
	copy(orders, seed)
	return &MemoryRepository{orders: orders}
}

func (m *MemoryRepository) CountByStatus(_ context.Context, store enums.StoreID, status enums.OrderStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, order := range m.orders {
		if order.StoreID == store && order.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) ListRecent(_ context.Context, store enums.StoreID, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.Order
	for _, order := range m.orders {
		if order.StoreID == store {
			rows = append(rows, order)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

var _ Repository = (*MemoryRepository)(nil)
