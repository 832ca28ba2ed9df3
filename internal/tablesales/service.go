package tablesales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/internal/cashregister"
	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/eliteacai/pdv-backend/pkg/metrics"
)

// DefaultOperatorName is recorded on sales opened without an operator name.
const DefaultOperatorName = "Operador"

type cashLedger interface {
	IsOpen(ctx context.Context, store enums.StoreID) (bool, error)
	AddEntry(ctx context.Context, store enums.StoreID, input cashregister.EntryInput) (*cashregister.EntryDTO, error)
}

// Service drives the lifecycle of table sales.
type Service interface {
	ListTables(ctx context.Context, store enums.StoreID, search string) ([]TableDTO, error)
	OpenTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input OpenTableInput) (*SessionDTO, error)
	ReleaseTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*TableDTO, error)
	Session(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*SessionDTO, error)
	AddItem(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input ItemInput) (*SessionDTO, error)
	UpdateItemQuantity(ctx context.Context, store enums.StoreID, tableID uuid.UUID, index, quantity int) (*SessionDTO, error)
	RemoveItem(ctx context.Context, store enums.StoreID, tableID uuid.UUID, index int) (*SessionDTO, error)
	SaveDraft(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*SessionDTO, error)
	Finalize(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input FinalizeInput) (*FinalizeResultDTO, error)
	Cancel(ctx context.Context, store enums.StoreID, tableID uuid.UUID, confirm bool) (*SaleDTO, error)
	ListSales(ctx context.Context, store enums.StoreID, filter SaleFilter) ([]SaleDTO, error)
	GetSale(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (*SaleDetailDTO, error)
}

// OpenTableInput carries the optional fields of the open-table form.
type OpenTableInput struct {
	CustomerName  string
	CustomerCount int
	OperatorName  string
}

// FinalizeInput carries the payment chosen at checkout.
type FinalizeInput struct {
	PaymentType  string
	ChangeAmount decimal.Decimal
}

// ServiceParams wires the service dependencies. Cash and Metrics are optional.
type ServiceParams struct {
	Store     Store
	Workspace Workspace
	Cash      cashLedger
	Rules     ItemRules
	Metrics   *metrics.SaleMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	store     Store
	workspace Workspace
	cash      cashLedger
	rules     ItemRules
	metrics   *metrics.SaleMetrics
	logg      *logger.Logger
	clock     func() time.Time
}

// NewService builds the table-sale workflow.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("table sales store required")
	}
	if params.Workspace == nil {
		return nil, fmt.Errorf("cart workspace required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		store:     params.Store,
		workspace: params.Workspace,
		cash:      params.Cash,
		rules:     params.Rules,
		metrics:   params.Metrics,
		logg:      params.Logger,
		clock:     clock,
	}, nil
}

func (s *service) ListTables(ctx context.Context, store enums.StoreID, search string) ([]TableDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	views, err := s.store.ListTables(ctx, store)
	if err != nil {
		return nil, s.mapError(store, "list_tables", err)
	}
	out := make([]TableDTO, 0, len(views))
	for _, view := range views {
		if !MatchesSearch(view.Table, search) {
			continue
		}
		out = append(out, newTableDTO(store, view))
	}
	return out, nil
}

func (s *service) OpenTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input OpenTableInput) (*SessionDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	count := input.CustomerCount
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer count must be at least 1").
			WithDetails(map[string]string{"customer_count": "must be at least 1"})
	}
	operator := strings.TrimSpace(input.OperatorName)
	if operator == "" {
		operator = DefaultOperatorName
	}

	sale, err := s.store.OpenSale(ctx, store, OpenSaleInput{
		TableID:       tableID,
		OperatorName:  operator,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerCount: count,
		OpenedAt:      s.clock(),
	})
	if err != nil {
		return nil, s.mapError(store, "open", err)
	}

	ctx = s.logg.WithSale(s.logg.WithStoreID(ctx, store), tableID.String(), sale.ID.String())
	cart, err := s.workspace.Update(ctx, store, sale.ID, func(cart *Cart, _ bool) error {
		cart.Items = nil
		return nil
	})
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("reset working cart: %v", err))
	}
	s.metrics.IncTransition(store.String(), "opened")
	s.logg.Info(ctx, "table opened")

	view, err := s.store.GetTable(ctx, store, tableID)
	if err != nil {
		return nil, s.mapError(store, "open", err)
	}
	session := newSessionDTO(store, *view, *sale, cart)
	return &session, nil
}

func (s *service) ReleaseTable(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*TableDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	table, err := s.store.ReleaseTable(ctx, store, tableID)
	if err != nil {
		return nil, s.mapError(store, "release", err)
	}
	s.metrics.IncTransition(store.String(), "released")
	s.logg.Info(s.logg.WithSale(s.logg.WithStoreID(ctx, store), tableID.String(), ""), "table released")
	dto := newTableDTO(store, TableView{Table: *table})
	return &dto, nil
}

func (s *service) Session(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*SessionDTO, error) {
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(*Cart) error { return nil })
	if err != nil {
		return nil, err
	}
	session := newSessionDTO(store, *view, *view.CurrentSale, cart)
	return &session, nil
}

func (s *service) AddItem(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input ItemInput) (*SessionDTO, error) {
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	item, err := NewCartItem(input, s.rules)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(cart *Cart) error {
		cart.Add(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	session := newSessionDTO(store, *view, *view.CurrentSale, cart)
	return &session, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, store enums.StoreID, tableID uuid.UUID, index, quantity int) (*SessionDTO, error) {
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(cart *Cart) error {
		return cart.UpdateQuantity(index, quantity)
	})
	if err != nil {
		return nil, err
	}
	session := newSessionDTO(store, *view, *view.CurrentSale, cart)
	return &session, nil
}

func (s *service) RemoveItem(ctx context.Context, store enums.StoreID, tableID uuid.UUID, index int) (*SessionDTO, error) {
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(cart *Cart) error {
		return cart.Remove(index)
	})
	if err != nil {
		return nil, err
	}
	session := newSessionDTO(store, *view, *view.CurrentSale, cart)
	return &session, nil
}

func (s *service) SaveDraft(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*SessionDTO, error) {
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(*Cart) error { return nil })
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	sale := view.CurrentSale
	if err := s.store.ReplaceItems(ctx, store, sale.ID, cart.ToModels(sale.ID), cart.Subtotal()); err != nil {
		return nil, s.mapError(store, "save", err)
	}
	saved, err := s.store.GetSale(ctx, store, sale.ID)
	if err != nil {
		return nil, s.mapError(store, "save", err)
	}
	s.metrics.IncTransition(store.String(), "saved")
	s.logg.Info(s.saleContext(ctx, store, view), "sale saved")

	session := newSessionDTO(store, *view, *saved, cart)
	return &session, nil
}

func (s *service) Finalize(ctx context.Context, store enums.StoreID, tableID uuid.UUID, input FinalizeInput) (*FinalizeResultDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	paymentType, err := enums.ParsePaymentType(strings.TrimSpace(input.PaymentType))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment type is required").
			WithDetails(map[string]string{"payment_type": "must be a known payment type"})
	}
	if input.ChangeAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change amount must not be negative").
			WithDetails(map[string]string{"change_amount": "must not be negative"})
	}

	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutateCart(ctx, store, view, func(*Cart) error { return nil })
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	sale := view.CurrentSale
	closed, err := s.store.CloseSale(ctx, store, CloseSaleInput{
		SaleID:       sale.ID,
		TableID:      tableID,
		Status:       enums.SaleStatusClosed,
		PaymentType:  &paymentType,
		ChangeAmount: input.ChangeAmount.Round(2),
		ClosedAt:     s.clock(),
		ReplaceItems: true,
		Items:        cart.ToModels(sale.ID),
		Subtotal:     cart.Subtotal(),
	})
	if err != nil {
		if errors.Is(err, ErrSaleNotOpen) {
			s.clearCart(ctx, store, sale.ID)
		}
		return nil, s.mapError(store, "finalize", err)
	}

	ctx = s.saleContext(ctx, store, view)
	s.clearCart(ctx, store, sale.ID)
	s.metrics.IncTransition(store.String(), "finalized")
	s.metrics.AddRevenue(store.String(), paymentType.String(), closed.TotalAmount)
	s.logg.Info(ctx, "sale finalized")

	posted := s.postSaleIncome(ctx, store, view.Table, *closed)
	return &FinalizeResultDTO{Sale: newSaleDTO(*closed), CashEntryPosted: posted}, nil
}

func (s *service) Cancel(ctx context.Context, store enums.StoreID, tableID uuid.UUID, confirm bool) (*SaleDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	if !confirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation must be confirmed").
			WithDetails(map[string]string{"confirm": "must be true"})
	}
	view, err := s.openSession(ctx, store, tableID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.store.CloseSale(ctx, store, CloseSaleInput{
		SaleID:       view.CurrentSale.ID,
		TableID:      tableID,
		Status:       enums.SaleStatusCancelled,
		ChangeAmount: decimal.Zero,
		ClosedAt:     s.clock(),
	})
	if err != nil {
		if errors.Is(err, ErrSaleNotOpen) {
			s.clearCart(ctx, store, view.CurrentSale.ID)
		}
		return nil, s.mapError(store, "cancel", err)
	}

	ctx = s.saleContext(ctx, store, view)
	s.clearCart(ctx, store, cancelled.ID)
	s.metrics.IncTransition(store.String(), "cancelled")
	s.logg.Info(ctx, "sale cancelled")

	dto := newSaleDTO(*cancelled)
	return &dto, nil
}

func (s *service) ListSales(ctx context.Context, store enums.StoreID, filter SaleFilter) ([]SaleDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	sales, err := s.store.ListSales(ctx, store, filter)
	if err != nil {
		return nil, s.mapError(store, "list_sales", err)
	}
	out := make([]SaleDTO, 0, len(sales))
	for _, sale := range sales {
		out = append(out, newSaleDTO(sale))
	}
	return out, nil
}

func (s *service) GetSale(ctx context.Context, store enums.StoreID, saleID uuid.UUID) (*SaleDetailDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	sale, err := s.store.GetSale(ctx, store, saleID)
	if err != nil {
		return nil, s.mapError(store, "get_sale", err)
	}
	items, err := s.store.ListSaleItems(ctx, store, saleID)
	if err != nil {
		return nil, s.mapError(store, "get_sale", err)
	}
	detail := &SaleDetailDTO{Sale: newSaleDTO(*sale), Items: make([]SaleItemDTO, 0, len(items))}
	for _, item := range items {
		detail.Items = append(detail.Items, newSaleItemDTO(item))
	}
	return detail, nil
}

// openSession loads the table and requires an open sale on it.
func (s *service) openSession(ctx context.Context, store enums.StoreID, tableID uuid.UUID) (*TableView, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	view, err := s.store.GetTable(ctx, store, tableID)
	if err != nil {
		return nil, s.mapError(store, "session", err)
	}
	if view.CurrentSale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "table has no open sale").
			WithDetails(map[string]any{"table_id": tableID, "status": view.Table.Status})
	}
	return view, nil
}

// mutateCart applies fn to the working cart of the open sale, hydrating it
// from the persisted items when no working cart exists yet. A missing cart may
// mean the sale was closed after openSession, so the status is checked again
// before one is created.
func (s *service) mutateCart(ctx context.Context, store enums.StoreID, view *TableView, fn func(cart *Cart) error) (Cart, error) {
	saleID := view.CurrentSale.ID
	return s.workspace.Update(ctx, store, saleID, func(cart *Cart, exists bool) error {
		if !exists {
			current, err := s.store.GetSale(ctx, store, saleID)
			if err != nil {
				return s.mapError(store, "hydrate", err)
			}
			if current.Status != enums.SaleStatusOpen {
				return s.mapError(store, "hydrate", ErrSaleNotOpen)
			}
			rows, err := s.store.ListSaleItems(ctx, store, saleID)
			if err != nil {
				return s.mapError(store, "hydrate", err)
			}
			*cart = CartFromModels(rows)
		}
		return fn(cart)
	})
}

func (s *service) clearCart(ctx context.Context, store enums.StoreID, saleID uuid.UUID) {
	if err := s.workspace.Clear(ctx, store, saleID); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("clear working cart: %v", err))
	}
}

// postSaleIncome records the finalized total on the store's cash register.
// Failures never undo the sale; they are logged and counted.
func (s *service) postSaleIncome(ctx context.Context, store enums.StoreID, table models.DiningTable, sale models.TableSale) bool {
	if s.cash == nil {
		return false
	}
	open, err := s.cash.IsOpen(ctx, store)
	if err != nil {
		s.metrics.IncCashEntryFailure(store.String())
		s.logg.Error(ctx, "check cash register", err)
		return false
	}
	if !open {
		return false
	}
	saleID := sale.ID
	_, err = s.cash.AddEntry(ctx, store, cashregister.EntryInput{
		Type:          enums.CashEntryTypeIncome,
		Amount:        sale.TotalAmount,
		Description:   fmt.Sprintf("Venda Mesa #%d - Loja %d", table.Number, int(store)),
		PaymentMethod: sale.PaymentType,
		SaleID:        &saleID,
	})
	if err != nil {
		s.metrics.IncCashEntryFailure(store.String())
		s.logg.Error(ctx, "post sale cash entry", err)
		return false
	}
	return true
}

func (s *service) saleContext(ctx context.Context, store enums.StoreID, view *TableView) context.Context {
	saleID := ""
	if view.CurrentSale != nil {
		saleID = view.CurrentSale.ID.String()
	}
	return s.logg.WithSale(s.logg.WithStoreID(ctx, store), view.Table.ID.String(), saleID)
}

func (s *service) mapError(store enums.StoreID, operation string, err error) error {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
	case errors.Is(err, ErrSaleNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	case errors.Is(err, ErrTableNotFree):
		s.metrics.IncConflict(store.String(), operation)
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table is not free")
	case errors.Is(err, ErrSaleNotOpen):
		s.metrics.IncConflict(store.String(), operation)
		return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is no longer open")
	case errors.Is(err, ErrTableNotReleasable):
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table is not awaiting bill or cleaning")
	case errors.Is(err, ErrTableHasOpenSale):
		s.metrics.IncConflict(store.String(), operation)
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table still has an open sale; finalize or cancel it first")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "table sales store unavailable")
}

// MatchesSearch reports whether the table name contains term
// (case-insensitive) or its number equals term.
func MatchesSearch(table models.DiningTable, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(table.Name), strings.ToLower(term)) {
		return true
	}
	return strconv.Itoa(table.Number) == term
}

func validateStore(store enums.StoreID) error {
	if !store.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown store %d", int(store))
	}
	return nil
}
