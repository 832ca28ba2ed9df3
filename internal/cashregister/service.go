package cashregister

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

const defaultOperatorName = "Operador"

// Service exposes the cash register of each store.
type Service interface {
	Current(ctx context.Context, store enums.StoreID) (*RegisterDTO, error)
	IsOpen(ctx context.Context, store enums.StoreID) (bool, error)
	Open(ctx context.Context, store enums.StoreID, input OpenInput) (*RegisterDTO, error)
	Close(ctx context.Context, store enums.StoreID, input CloseInput) (*RegisterDTO, error)
	AddEntry(ctx context.Context, store enums.StoreID, input EntryInput) (*EntryDTO, error)
	OpenSincePreviousDay(ctx context.Context, store enums.StoreID) (bool, error)
}

// OpenInput starts a register session.
type OpenInput struct {
	OperatorName  string
	OpeningAmount decimal.Decimal
}

// CloseInput ends the current register session.
type CloseInput struct {
	ClosingAmount decimal.Decimal
}

// EntryInput records one movement against the open register.
type EntryInput struct {
	Type          enums.CashEntryType
	Amount        decimal.Decimal
	Description   string
	PaymentMethod *enums.PaymentType
	SaleID        *uuid.UUID
}

type service struct {
	repo  Repository
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds the register service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cash register repository required")
	}
	return &service{repo: repo, logg: logg, clock: time.Now}, nil
}

func (s *service) Current(ctx context.Context, store enums.StoreID) (*RegisterDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	register, err := s.repo.FindOpen(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash register")
	}
	if register == nil {
		return &RegisterDTO{StoreID: store, Open: false, Entries: []EntryDTO{}}, nil
	}
	return s.describe(ctx, *register)
}

func (s *service) IsOpen(ctx context.Context, store enums.StoreID) (bool, error) {
	if err := validateStore(store); err != nil {
		return false, err
	}
	register, err := s.repo.FindOpen(ctx, store)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash register")
	}
	return register != nil, nil
}

func (s *service) Open(ctx context.Context, store enums.StoreID, input OpenInput) (*RegisterDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	if input.OpeningAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening amount must not be negative").
			WithDetails(map[string]string{"opening_amount": "must not be negative"})
	}
	operator := strings.TrimSpace(input.OperatorName)
	if operator == "" {
		operator = defaultOperatorName
	}

	now := s.clock()
	register := &models.CashRegister{
		ID:            uuid.New(),
		StoreID:       store,
		OperatorName:  operator,
		OpeningAmount: input.OpeningAmount.Round(2),
		Status:        enums.CashRegisterStatusOpen,
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, register); err != nil {
		if errors.Is(err, ErrAlreadyOpen) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash register is already open")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open cash register")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithStoreID(ctx, store), "cash register opened")
	}
	return s.describe(ctx, *register)
}

func (s *service) Close(ctx context.Context, store enums.StoreID, input CloseInput) (*RegisterDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	if input.ClosingAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closing amount must not be negative").
			WithDetails(map[string]string{"closing_amount": "must not be negative"})
	}
	register, err := s.openRegister(ctx, store)
	if err != nil {
		return nil, err
	}
	closedAt := s.clock()
	if err := s.repo.Close(ctx, register.ID, input.ClosingAmount.Round(2), closedAt); err != nil {
		if errors.Is(err, ErrNotOpen) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash register is not open")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close cash register")
	}
	register.Status = enums.CashRegisterStatusClosed
	register.ClosingAmount = decimal.NewNullDecimal(input.ClosingAmount.Round(2))
	register.ClosedAt = &closedAt
	if s.logg != nil {
		s.logg.Info(s.logg.WithStoreID(ctx, store), "cash register closed")
	}
	return s.describe(ctx, *register)
}

func (s *service) AddEntry(ctx context.Context, store enums.StoreID, input EntryInput) (*EntryDTO, error) {
	if err := validateStore(store); err != nil {
		return nil, err
	}
	details := map[string]string{}
	if !input.Type.IsValid() {
		details["type"] = "must be one of income, expense, withdrawal, deposit"
	}
	if !input.Amount.IsPositive() {
		details["amount"] = "must be greater than zero"
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		details["description"] = "is required"
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.IsValid() {
		details["payment_method"] = "is not a known payment type"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cash entry").WithDetails(details)
	}

	register, err := s.openRegister(ctx, store)
	if err != nil {
		return nil, err
	}
	entry := &models.CashEntry{
		ID:            uuid.New(),
		RegisterID:    register.ID,
		StoreID:       store,
		Type:          input.Type,
		Amount:        input.Amount.Round(2),
		Description:   description,
		PaymentMethod: input.PaymentMethod,
		SaleID:        input.SaleID,
		CreatedAt:     s.clock(),
	}
	if err := s.repo.AddEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cash entry")
	}
	dto := newEntryDTO(*entry)
	return &dto, nil
}

// OpenSincePreviousDay reports whether the open register was opened before
// today, meaning the previous shift never closed it.
func (s *service) OpenSincePreviousDay(ctx context.Context, store enums.StoreID) (bool, error) {
	if err := validateStore(store); err != nil {
		return false, err
	}
	register, err := s.repo.FindOpen(ctx, store)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash register")
	}
	if register == nil {
		return false, nil
	}
	now := s.clock()
	openedAt := register.OpenedAt.In(now.Location())
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return openedAt.Before(startOfToday), nil
}

func (s *service) openRegister(ctx context.Context, store enums.StoreID) (*models.CashRegister, error) {
	register, err := s.repo.FindOpen(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash register")
	}
	if register == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash register is not open")
	}
	return register, nil
}

func (s *service) describe(ctx context.Context, register models.CashRegister) (*RegisterDTO, error) {
	entries, err := s.repo.ListEntries(ctx, register.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cash entries")
	}
	dto := newRegisterDTO(register, entries)
	return &dto, nil
}

func validateStore(store enums.StoreID) error {
	if !store.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown store %d", int(store))
	}
	return nil
}
