package tablesales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

var (
	ErrTableNotFound       = errors.New("table not found")
	ErrTableNotFree        = errors.New("table is not free")
	ErrTableNotReleasable  = errors.New("table is not awaiting bill or cleaning")
	ErrTableHasOpenSale    = errors.New("table still has an open sale")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleNotOpen         = errors.New("sale is not open")
	errSaleNumberExhausted = errors.New("could not allocate sale number")
)

const (
	defaultSalesLimit = 50
	maxSalesLimit     = 200
)

// TableView is a table together with its open sale, if any.
type TableView struct {
	Table       models.DiningTable
	CurrentSale *models.TableSale
}

// OpenSaleInput describes a new sale for a free table.
type OpenSaleInput struct {
	TableID       uuid.UUID
	OperatorName  string
	CustomerName  string
	CustomerCount int
	OpenedAt      time.Time
}

// CloseSaleInput moves an open sale to a terminal status. When ReplaceItems is
// set the persisted items and totals are rewritten in the same transaction.
type CloseSaleInput struct {
	SaleID       uuid.UUID
	TableID      uuid.UUID
	Status       enums.SaleStatus
	PaymentType  *enums.PaymentType
	ChangeAmount decimal.Decimal
	ClosedAt     time.Time
	ReplaceItems bool
	Items        []models.TableSaleItem
	Subtotal     decimal.Decimal
}

// SaleFilter narrows the sales history.
type SaleFilter struct {
	Status *enums.SaleStatus
	Limit  int
}

func (f SaleFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultSalesLimit
	case f.Limit > maxSalesLimit:
		return maxSalesLimit
	default:
		return f.Limit
	}
}

// Store is the persistence capability behind the table-sale workflow. The
// live implementation is GormStore; MemoryStore backs demo mode.
type Store interface {
	ListTables(ctx context.Context, store enums.StoreID) ([]TableView, error)
	GetTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*TableView, error)
	OpenSale(ctx context.Context, store enums.StoreID, input OpenSaleInput) (*models.TableSale, error)
	ReplaceItems(ctx context.Context, store enums.StoreID, saleID uuid.UUID, items []models.TableSaleItem, subtotal decimal.Decimal) error
	CloseSale(ctx context.Context, store enums.StoreID, input CloseSaleInput) (*models.TableSale, error)
	ReleaseTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*models.DiningTable, error)
	GetSale(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (*models.TableSale, error)
	ListSaleItems(ctx context.Context, store enums.StoreID, saleID uuid.UUID) ([]models.TableSaleItem, error)
	ListSales(ctx context.Context, store enums.StoreID, filter SaleFilter) ([]models.TableSale, error)
	FreeOrphanedTables(ctx context.Context, store enums.StoreID) ([]uuid.UUID, error)
	ListStaleOpenSales(ctx context.Context, store enums.StoreID, openedBefore time.Time) ([]models.TableSale, error)
}

func tableName(store enums.StoreID) string {
	return store.TablePrefix() + "tables"
}

func salesTableName(store enums.StoreID) string {
	return store.TablePrefix() + "table_sales"
}

func itemsTableName(store enums.StoreID) string {
	return store.TablePrefix() + "table_sale_items"
}

func prepareItems(saleID uuid.UUID, items []models.TableSaleItem, now time.Time) []models.TableSaleItem {
	rows := make([]models.TableSaleItem, len(items))
	for i, item := range items {
		item.ID = uuid.New()
		item.SaleID = saleID
		item.Position = i
		item.CreatedAt = now
		rows[i] = item
	}
	return rows
}
