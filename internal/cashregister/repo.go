package cashregister

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/internal/repo"
	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

var (
	ErrAlreadyOpen = errors.New("cash register already open")
	ErrNotOpen     = errors.New("cash register is not open")
)

// Repository persists registers and their entries.
type Repository interface {
	FindOpen(ctx context.Context, store enums.StoreID) (*models.CashRegister, error)
	Create(ctx context.Context, register *models.CashRegister) error
	Close(ctx context.Context, registerID uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) error
	AddEntry(ctx context.Context, entry *models.CashEntry) error
	ListEntries(ctx context.Context, registerID uuid.UUID) ([]models.CashEntry, error)
}

// GormRepository stores registers in cash_registers / cash_entries.
type GormRepository struct {
	repo.Base
}

// NewGormRepository binds a GORM DB to register operations.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(db)}
}

// AutoMigrate creates the register tables for drivers without goose migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.CashRegister{}, &models.CashEntry{})
}

func (r *GormRepository) FindOpen(ctx context.Context, store enums.StoreID) (*models.CashRegister, error) {
	var register models.CashRegister
	err := r.ForStore(ctx, store).
		Where("status = ?", enums.CashRegisterStatusOpen).
		Order("opened_at DESC").
		First(&register).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *GormRepository) Create(ctx context.Context, register *models.CashRegister) error {
	if register == nil {
		return fmt.Errorf("register is required")
	}
	if err := r.DB(ctx).Create(register).Error; err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return ErrAlreadyOpen
		}
		return err
	}
	return nil
}

func (r *GormRepository) Close(ctx context.Context, registerID uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) error {
	res := r.DB(ctx).
		Model(&models.CashRegister{}).
		Where("id = ? AND status = ?", registerID, enums.CashRegisterStatusOpen).
		Updates(map[string]any{
			"status":         enums.CashRegisterStatusClosed,
			"closing_amount": closingAmount,
			"closed_at":      closedAt,
			"updated_at":     closedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotOpen
	}
	return nil
}

func (r *GormRepository) AddEntry(ctx context.Context, entry *models.CashEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	return r.DB(ctx).Create(entry).Error
}

func (r *GormRepository) ListEntries(ctx context.Context, registerID uuid.UUID) ([]models.CashEntry, error) {
	var entries []models.CashEntry
	if err := r.DB(ctx).
		Where("register_id = ?", registerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// MemoryRepository keeps registers in process memory for demo mode.
type MemoryRepository struct {
	mu        sync.Mutex
	registers map[uuid.UUID]*models.CashRegister
	entries   map[uuid.UUID][]models.CashEntry
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		registers: map[uuid.UUID]*models.CashRegister{},
		entries:   map[uuid.UUID][]models.CashEntry{},
	}
}

func (r *MemoryRepository) FindOpen(_ context.Context, store enums.StoreID) (*models.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, register := range r.registers {
		if register.StoreID == store && register.Status == enums.CashRegisterStatusOpen {
			out := *register
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Create(_ context.Context, register *models.CashRegister) error {
	if register == nil {
		return fmt.Errorf("register is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.registers {
		if existing.StoreID == register.StoreID && existing.Status == enums.CashRegisterStatusOpen {
			return ErrAlreadyOpen
		}
	}
	stored := *register
	r.registers[register.ID] = &stored
	return nil
}

func (r *MemoryRepository) Close(_ context.Context, registerID uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	register, ok := r.registers[registerID]
	if !ok || register.Status != enums.CashRegisterStatusOpen {
		return ErrNotOpen
	}
	register.Status = enums.CashRegisterStatusClosed
	register.ClosingAmount = decimal.NewNullDecimal(closingAmount)
	register.ClosedAt = &closedAt
	register.UpdatedAt = closedAt
	return nil
}

func (r *MemoryRepository) AddEntry(_ context.Context, entry *models.CashEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.RegisterID] = append(r.entries[entry.RegisterID], *entry)
	return nil
}

func (r *MemoryRepository) ListEntries(_ context.Context, registerID uuid.UUID) ([]models.CashEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[registerID]
	out := make([]models.CashEntry, len(entries))
	copy(out, entries)
	return out, nil
}

var (
	_ Repository = (*GormRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
