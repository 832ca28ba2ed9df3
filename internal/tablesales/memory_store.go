package tablesales

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

const demoLocation = "Área principal"

type memoryTables struct {
	tables     map[uuid.UUID]*models.DiningTable
	sales      map[uuid.UUID]*models.TableSale
	items      map[uuid.UUID][]models.TableSaleItem
	saleNumber int64
}

// MemoryStore keeps tables and sales in process memory. It backs demo mode
// and nothing written to it survives a restart.
type MemoryStore struct {
	mu     sync.Mutex
	stores map[enums.StoreID]*memoryTables
	now    func() time.Time
}

// NewMemoryStore returns a store seeded with the demo tables of every store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		stores: map[enums.StoreID]*memoryTables{},
		now:    time.Now,
	}
	now := s.now().UTC()
	for _, store := range enums.StoreIDs() {
		data := &memoryTables{
			tables: map[uuid.UUID]*models.DiningTable{},
			sales:  map[uuid.UUID]*models.TableSale{},
			items:  map[uuid.UUID][]models.TableSaleItem{},
		}
		for _, fixture := range []struct {
			number   int
			capacity int
		}{{1, 4}, {2, 2}} {
			location := demoLocation
			table := &models.DiningTable{
				ID:        DemoTableID(store, fixture.number),
				Number:    fixture.number,
				Name:      fmt.Sprintf("Mesa %d - Loja %d", fixture.number, int(store)),
				Capacity:  fixture.capacity,
				Location:  &location,
				Status:    enums.TableStatusFree,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			data.tables[table.ID] = table
		}
		s.stores[store] = data
	}
	return s
}

// DemoTableID returns the stable id of a seeded demo table.
func DemoTableID(store enums.StoreID, number int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("pdv:%s%d", store.TablePrefix(), number)))
}

// SetTableStatus forces a table status. Demo terminals use it to mark tables
// as awaiting bill or cleaning.
func (s *MemoryStore) SetTableStatus(store enums.StoreID, tableID uuid.UUID, status enums.TableStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return err
	}
	table, ok := data.tables[tableID]
	if !ok {
		return ErrTableNotFound
	}
	table.Status = status
	table.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) ListTables(_ context.Context, store enums.StoreID) ([]TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	views := make([]TableView, 0, len(data.tables))
	for _, table := range data.tables {
		if !table.IsActive {
			continue
		}
		views = append(views, data.view(table))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Table.Number < views[j].Table.Number
	})
	return views, nil
}

func (s *MemoryStore) GetTable(_ context.Context, store enums.StoreID, tableID uuid.UUID) (*TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	table, ok := data.tables[tableID]
	if !ok || !table.IsActive {
		return nil, ErrTableNotFound
	}
	view := data.view(table)
	return &view, nil
}

func (s *MemoryStore) OpenSale(_ context.Context, store enums.StoreID, input OpenSaleInput) (*models.TableSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	table, ok := data.tables[input.TableID]
	if !ok || !table.IsActive {
		return nil, ErrTableNotFound
	}
	if table.Status != enums.TableStatusFree {
		return nil, ErrTableNotFree
	}

	openedAt := input.OpenedAt
	if openedAt.IsZero() {
		openedAt = s.now()
	}
	data.saleNumber++
	sale := &models.TableSale{
		ID:             uuid.New(),
		TableID:        table.ID,
		SaleNumber:     data.saleNumber,
		OperatorName:   input.OperatorName,
		CustomerName:   input.CustomerName,
		CustomerCount:  input.CustomerCount,
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		Status:         enums.SaleStatusOpen,
		OpenedAt:       openedAt,
		ChangeAmount:   decimal.Zero,
		CreatedAt:      openedAt,
		UpdatedAt:      openedAt,
	}
	data.sales[sale.ID] = sale

	saleID := sale.ID
	table.Status = enums.TableStatusOccupied
	table.CurrentSaleID = &saleID
	table.UpdatedAt = openedAt

	out := *sale
	return &out, nil
}

func (s *MemoryStore) ReplaceItems(_ context.Context, store enums.StoreID, saleID uuid.UUID, items []models.TableSaleItem, subtotal decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return err
	}
	return data.replaceItems(saleID, items, subtotal, s.now())
}

func (s *MemoryStore) CloseSale(_ context.Context, store enums.StoreID, input CloseSaleInput) (*models.TableSale, error) {
	if !input.Status.IsTerminal() {
		return nil, fmt.Errorf("close sale: status %q is not terminal", input.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	sale, ok := data.sales[input.SaleID]
	if !ok {
		return nil, ErrSaleNotFound
	}
	if sale.Status != enums.SaleStatusOpen {
		return nil, ErrSaleNotOpen
	}

	closedAt := input.ClosedAt
	if closedAt.IsZero() {
		closedAt = s.now()
	}
	if input.ReplaceItems {
		if err := data.replaceItems(input.SaleID, input.Items, input.Subtotal, closedAt); err != nil {
			return nil, err
		}
	}

	sale.Status = input.Status
	sale.ClosedAt = &closedAt
	sale.ChangeAmount = input.ChangeAmount
	sale.UpdatedAt = closedAt
	if input.PaymentType != nil {
		payment := *input.PaymentType
		sale.PaymentType = &payment
	}

	if table, ok := data.tables[input.TableID]; ok &&
		table.CurrentSaleID != nil && *table.CurrentSaleID == input.SaleID {
		table.Status = enums.TableStatusFree
		table.CurrentSaleID = nil
		table.UpdatedAt = closedAt
	}

	out := *sale
	return &out, nil
}

func (s *MemoryStore) ReleaseTable(_ context.Context, store enums.StoreID, tableID uuid.UUID) (*models.DiningTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	table, ok := data.tables[tableID]
	if !ok || !table.IsActive {
		return nil, ErrTableNotFound
	}
	if !table.Status.Releasable() {
		return nil, ErrTableNotReleasable
	}
	if table.CurrentSaleID != nil {
		if sale, ok := data.sales[*table.CurrentSaleID]; ok && sale.Status == enums.SaleStatusOpen {
			return nil, ErrTableHasOpenSale
		}
	}
	table.Status = enums.TableStatusFree
	table.CurrentSaleID = nil
	table.UpdatedAt = s.now()
	out := *table
	return &out, nil
}

func (s *MemoryStore) GetSale(_ context.Context, store enums.StoreID, saleID uuid.UUID) (*models.TableSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	sale, ok := data.sales[saleID]
	if !ok {
		return nil, ErrSaleNotFound
	}
	out := *sale
	return &out, nil
}

func (s *MemoryStore) ListSaleItems(_ context.Context, store enums.StoreID, saleID uuid.UUID) ([]models.TableSaleItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	items := data.items[saleID]
	out := make([]models.TableSaleItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) ListSales(_ context.Context, store enums.StoreID, filter SaleFilter) ([]models.TableSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	sales := make([]models.TableSale, 0, len(data.sales))
	for _, sale := range data.sales {
		if filter.Status != nil && sale.Status != *filter.Status {
			continue
		}
		sales = append(sales, *sale)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].OpenedAt.Equal(sales[j].OpenedAt) {
			return sales[i].OpenedAt.After(sales[j].OpenedAt)
		}
		return sales[i].SaleNumber > sales[j].SaleNumber
	})
	if limit := filter.limit(); len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *MemoryStore) FreeOrphanedTables(_ context.Context, store enums.StoreID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	var freed []uuid.UUID
	for _, table := range data.tables {
		if table.Status != enums.TableStatusOccupied {
			continue
		}
		if table.CurrentSaleID != nil {
			if sale, ok := data.sales[*table.CurrentSaleID]; ok && sale.Status == enums.SaleStatusOpen {
				continue
			}
		}
		table.Status = enums.TableStatusFree
		table.CurrentSaleID = nil
		table.UpdatedAt = s.now()
		freed = append(freed, table.ID)
	}
	return freed, nil
}

func (s *MemoryStore) ListStaleOpenSales(_ context.Context, store enums.StoreID, openedBefore time.Time) ([]models.TableSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.data(store)
	if err != nil {
		return nil, err
	}
	var sales []models.TableSale
	for _, sale := range data.sales {
		if sale.Status == enums.SaleStatusOpen && sale.OpenedAt.Before(openedBefore) {
			sales = append(sales, *sale)
		}
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].OpenedAt.Before(sales[j].OpenedAt)
	})
	return sales, nil
}

func (s *MemoryStore) data(store enums.StoreID) (*memoryTables, error) {
	data, ok := s.stores[store]
	if !ok {
		return nil, fmt.Errorf("unknown store %s", store)
	}
	return data, nil
}

func (d *memoryTables) view(table *models.DiningTable) TableView {
	view := TableView{Table: *table}
	if table.CurrentSaleID != nil {
		if sale, ok := d.sales[*table.CurrentSaleID]; ok && sale.Status == enums.SaleStatusOpen {
			out := *sale
			view.CurrentSale = &out
		}
	}
	return view
}

func (d *memoryTables) replaceItems(saleID uuid.UUID, items []models.TableSaleItem, subtotal decimal.Decimal, now time.Time) error {
	sale, ok := d.sales[saleID]
	if !ok {
		return ErrSaleNotFound
	}
	if sale.Status != enums.SaleStatusOpen {
		return ErrSaleNotOpen
	}
	sale.Subtotal = subtotal
	sale.TotalAmount = subtotal
	sale.UpdatedAt = now
	d.items[saleID] = prepareItems(saleID, items, now)
	return nil
}

var _ Store = (*MemoryStore)(nil)
