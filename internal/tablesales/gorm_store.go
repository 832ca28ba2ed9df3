package tablesales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

const (
	saleNumberAttempts  = 3
	openSaleIndexSuffix = "one_open_per_table"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormStore persists tables and sales in the store-scoped table sets.
type GormStore struct {
	db  *gorm.DB
	tx  txRunner
	now func() time.Time
}

// NewGormStore binds the workflow persistence to a gorm connection.
func NewGormStore(conn *gorm.DB, runner txRunner) (*GormStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("gorm connection required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &GormStore{db: conn, tx: runner, now: time.Now}, nil
}

// AutoMigrate creates the store-scoped tables for drivers without goose
// migrations (sqlite).
func AutoMigrate(conn *gorm.DB) error {
	for _, store := range enums.StoreIDs() {
		if err := conn.Table(tableName(store)).AutoMigrate(&models.DiningTable{}); err != nil {
			return fmt.Errorf("migrate %s: %w", tableName(store), err)
		}
		if err := conn.Table(salesTableName(store)).AutoMigrate(&models.TableSale{}); err != nil {
			return fmt.Errorf("migrate %s: %w", salesTableName(store), err)
		}
		if err := conn.Table(itemsTableName(store)).AutoMigrate(&models.TableSaleItem{}); err != nil {
			return fmt.Errorf("migrate %s: %w", itemsTableName(store), err)
		}
	}
	return nil
}

func (s *GormStore) ListTables(ctx context.Context, store enums.StoreID) ([]TableView, error) {
	var tables []models.DiningTable
	if err := s.db.WithContext(ctx).
		Table(tableName(store)).
		Where("is_active = ?", true).
		Order("number ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	saleIDs := make([]uuid.UUID, 0, len(tables))
	for _, table := range tables {
		if table.CurrentSaleID != nil {
			saleIDs = append(saleIDs, *table.CurrentSaleID)
		}
	}

	openSales := map[uuid.UUID]models.TableSale{}
	if len(saleIDs) > 0 {
		var sales []models.TableSale
		if err := s.db.WithContext(ctx).
			Table(salesTableName(store)).
			Where("id IN ? AND status = ?", saleIDs, enums.SaleStatusOpen).
			Find(&sales).Error; err != nil {
			return nil, err
		}
		for _, sale := range sales {
			openSales[sale.ID] = sale
		}
	}

	views := make([]TableView, 0, len(tables))
	for _, table := range tables {
		view := TableView{Table: table}
		if table.CurrentSaleID != nil {
			if sale, ok := openSales[*table.CurrentSaleID]; ok {
				sale := sale
				view.CurrentSale = &sale
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *GormStore) GetTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*TableView, error) {
	table, err := s.findTable(s.db.WithContext(ctx), store, tableID)
	if err != nil {
		return nil, err
	}
	view := &TableView{Table: *table}
	if table.CurrentSaleID == nil {
		return view, nil
	}
	sale, err := s.findSale(s.db.WithContext(ctx), store, *table.CurrentSaleID)
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			return view, nil
		}
		return nil, err
	}
	if sale.Status == enums.SaleStatusOpen {
		view.CurrentSale = sale
	}
	return view, nil
}

// OpenSale inserts the sale and flips the table from free to occupied in one
// transaction. A concurrent sale-number collision retries the transaction.
func (s *GormStore) OpenSale(ctx context.Context, store enums.StoreID, input OpenSaleInput) (*models.TableSale, error) {
	for attempt := 0; attempt < saleNumberAttempts; attempt++ {
		var sale *models.TableSale
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			created, err := s.openSaleTx(tx, store, input)
			if err != nil {
				return err
			}
			sale = created
			return nil
		})
		if err == nil {
			return sale, nil
		}
		if !pkgerrors.IsUniqueViolation(err) {
			return nil, err
		}
		if isOpenSaleConflict(err) {
			return nil, ErrTableNotFree
		}
	}
	return nil, errSaleNumberExhausted
}

func (s *GormStore) openSaleTx(tx *gorm.DB, store enums.StoreID, input OpenSaleInput) (*models.TableSale, error) {
	table, err := s.findTable(tx, store, input.TableID)
	if err != nil {
		return nil, err
	}
	if table.Status != enums.TableStatusFree {
		return nil, ErrTableNotFree
	}

	var last int64
	if err := tx.Table(salesTableName(store)).
		Select("COALESCE(MAX(sale_number), 0)").
		Scan(&last).Error; err != nil {
		return nil, err
	}

	openedAt := input.OpenedAt
	if openedAt.IsZero() {
		openedAt = s.now()
	}
	sale := &models.TableSale{
		ID:             uuid.New(),
		TableID:        table.ID,
		SaleNumber:     last + 1,
		OperatorName:   input.OperatorName,
		CustomerName:   input.CustomerName,
		CustomerCount:  input.CustomerCount,
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		Status:         enums.SaleStatusOpen,
		OpenedAt:       openedAt,
		ChangeAmount:   decimal.Zero,
	}
	if err := tx.Table(salesTableName(store)).Create(sale).Error; err != nil {
		return nil, err
	}

	res := tx.Table(tableName(store)).
		Where("id = ? AND status = ?", table.ID, enums.TableStatusFree).
		Updates(map[string]any{
			"status":          enums.TableStatusOccupied,
			"current_sale_id": sale.ID,
			"updated_at":      openedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTableNotFree
	}
	return sale, nil
}

func (s *GormStore) ReplaceItems(ctx context.Context, store enums.StoreID, saleID uuid.UUID, items []models.TableSaleItem, subtotal decimal.Decimal) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.replaceItemsTx(tx, store, saleID, items, subtotal, s.now())
	})
}

func (s *GormStore) replaceItemsTx(tx *gorm.DB, store enums.StoreID, saleID uuid.UUID, items []models.TableSaleItem, subtotal decimal.Decimal, now time.Time) error {
	res := tx.Table(salesTableName(store)).
		Where("id = ? AND status = ?", saleID, enums.SaleStatusOpen).
		Updates(map[string]any{
			"subtotal":     subtotal,
			"total_amount": subtotal,
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.saleStateError(tx, store, saleID)
	}

	if err := tx.Table(itemsTableName(store)).
		Where("sale_id = ?", saleID).
		Delete(&models.TableSaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := prepareItems(saleID, items, now)
	if err := tx.Table(itemsTableName(store)).Create(&rows).Error; err != nil {
		if pkgerrors.IsCheckViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sale item rejected by table constraints")
		}
		return err
	}
	return nil
}

// CloseSale moves the sale out of open and frees its table. Only the first
// caller observes the open status; later callers get ErrSaleNotOpen.
func (s *GormStore) CloseSale(ctx context.Context, store enums.StoreID, input CloseSaleInput) (*models.TableSale, error) {
	if !input.Status.IsTerminal() {
		return nil, fmt.Errorf("close sale: status %q is not terminal", input.Status)
	}
	closedAt := input.ClosedAt
	if closedAt.IsZero() {
		closedAt = s.now()
	}

	var sale *models.TableSale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.ReplaceItems {
			if err := s.replaceItemsTx(tx, store, input.SaleID, input.Items, input.Subtotal, closedAt); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"status":        input.Status,
			"closed_at":     closedAt,
			"change_amount": input.ChangeAmount,
			"updated_at":    closedAt,
		}
		if input.PaymentType != nil {
			updates["payment_type"] = *input.PaymentType
		}
		res := tx.Table(salesTableName(store)).
			Where("id = ? AND status = ?", input.SaleID, enums.SaleStatusOpen).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.saleStateError(tx, store, input.SaleID)
		}

		if err := tx.Table(tableName(store)).
			Where("id = ? AND current_sale_id = ?", input.TableID, input.SaleID).
			Updates(map[string]any{
				"status":          enums.TableStatusFree,
				"current_sale_id": nil,
				"updated_at":      closedAt,
			}).Error; err != nil {
			return err
		}

		loaded, err := s.findSale(tx, store, input.SaleID)
		if err != nil {
			return err
		}
		sale = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReleaseTable frees an awaiting-bill or cleaning table. A table whose
// current sale is still open must be finalized or cancelled first.
func (s *GormStore) ReleaseTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*models.DiningTable, error) {
	var table *models.DiningTable
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.findTable(tx, store, tableID)
		if err != nil {
			return err
		}
		if !current.Status.Releasable() {
			return ErrTableNotReleasable
		}

		query := tx.Table(tableName(store)).
			Where("id = ? AND status IN ?", tableID, []enums.TableStatus{enums.TableStatusAwaitingBill, enums.TableStatusCleaning})
		if current.CurrentSaleID != nil {
			sale, err := s.findSale(tx, store, *current.CurrentSaleID)
			switch {
			case err == nil && sale.Status == enums.SaleStatusOpen:
				return ErrTableHasOpenSale
			case err != nil && !errors.Is(err, ErrSaleNotFound):
				return err
			}
			query = query.Where("current_sale_id = ?", *current.CurrentSaleID)
		} else {
			query = query.Where("current_sale_id IS NULL")
		}

		res := query.Updates(map[string]any{
			"status":          enums.TableStatusFree,
			"current_sale_id": nil,
			"updated_at":      s.now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTableNotReleasable
		}
		loaded, err := s.findTable(tx, store, tableID)
		if err != nil {
			return err
		}
		table = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *GormStore) GetSale(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (*models.TableSale, error) {
	return s.findSale(s.db.WithContext(ctx), store, saleID)
}

func (s *GormStore) ListSaleItems(ctx context.Context, store enums.StoreID, saleID uuid.UUID) ([]models.TableSaleItem, error) {
	var items []models.TableSaleItem
	if err := s.db.WithContext(ctx).
		Table(itemsTableName(store)).
		Where("sale_id = ?", saleID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) ListSales(ctx context.Context, store enums.StoreID, filter SaleFilter) ([]models.TableSale, error) {
	query := s.db.WithContext(ctx).Table(salesTableName(store))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var sales []models.TableSale
	if err := query.
		Order("opened_at DESC").
		Order("sale_number DESC").
		Limit(filter.limit()).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FreeOrphanedTables frees occupied tables whose current sale is missing or no
// longer open and returns their ids.
func (s *GormStore) FreeOrphanedTables(ctx context.Context, store enums.StoreID) ([]uuid.UUID, error) {
	var freed []uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var occupied []models.DiningTable
		if err := tx.Table(tableName(store)).
			Where("status = ?", enums.TableStatusOccupied).
			Find(&occupied).Error; err != nil {
			return err
		}

		now := s.now()
		for _, table := range occupied {
			if table.CurrentSaleID != nil {
				sale, err := s.findSale(tx, store, *table.CurrentSaleID)
				if err != nil && !errors.Is(err, ErrSaleNotFound) {
					return err
				}
				if sale != nil && sale.Status == enums.SaleStatusOpen {
					continue
				}
			}
			res := tx.Table(tableName(store)).
				Where("id = ? AND status = ?", table.ID, enums.TableStatusOccupied).
				Updates(map[string]any{
					"status":          enums.TableStatusFree,
					"current_sale_id": nil,
					"updated_at":      now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				freed = append(freed, table.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freed, nil
}

func (s *GormStore) ListStaleOpenSales(ctx context.Context, store enums.StoreID, openedBefore time.Time) ([]models.TableSale, error) {
	var sales []models.TableSale
	if err := s.db.WithContext(ctx).
		Table(salesTableName(store)).
		Where("status = ? AND opened_at < ?", enums.SaleStatusOpen, openedBefore).
		Order("opened_at ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *GormStore) findTable(tx *gorm.DB, store enums.StoreID, tableID uuid.UUID) (*models.DiningTable, error) {
	var table models.DiningTable
	err := tx.Table(tableName(store)).
		Where("id = ? AND is_active = ?", tableID, true).
		First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *GormStore) findSale(tx *gorm.DB, store enums.StoreID, saleID uuid.UUID) (*models.TableSale, error) {
	var sale models.TableSale
	err := tx.Table(salesTableName(store)).Where("id = ?", saleID).First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// isOpenSaleConflict reports whether a unique violation came from the
// one-open-sale-per-table index rather than the sale number.
func isOpenSaleConflict(err error) bool {
	if strings.Contains(pkgerrors.Dump(err).PGConstraint, openSaleIndexSuffix) {
		return true
	}
	return strings.Contains(err.Error(), openSaleIndexSuffix)
}

func (s *GormStore) saleStateError(tx *gorm.DB, store enums.StoreID, saleID uuid.UUID) error {
	if _, err := s.findSale(tx, store, saleID); err != nil {
		return err
	}
	return ErrSaleNotOpen
}

var _ Store = (*GormStore)(nil)
