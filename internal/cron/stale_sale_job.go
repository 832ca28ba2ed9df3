package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultStaleSaleAge = 6 * time.Hour

type staleSaleLister interface {
	ListStaleOpenSales(ctx context.Context, store enums.StoreID, openedBefore time.Time) ([]models.TableSale, error)
}

// StaleSaleJobParams configure the stale sale report.
type StaleSaleJobParams struct {
	Logger *logger.Logger
	Sales  staleSaleLister
	Stores []enums.StoreID
	MaxAge time.Duration
}

// NewStaleSaleJob builds the job that reports sales left open longer than MaxAge.
// Sales are only reported; closing them stays an operator decision.
func NewStaleSaleJob(params StaleSaleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sale store required")
	}
	stores := params.Stores
	if len(stores) == 0 {
		stores = enums.StoreIDs()
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStaleSaleAge
	}
	return &staleSaleJob{
		logg:   params.Logger,
		sales:  params.Sales,
		stores: stores,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type staleSaleJob struct {
	logg   *logger.Logger
	sales  staleSaleLister
	stores []enums.StoreID
	maxAge time.Duration
	now    func() time.Time
	// reported is the number of stale sales seen in the last run.
	reported int
}

func (j *staleSaleJob) Name() string { return "stale-sale-report" }

func (j *staleSaleJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	j.reported = 0
	var errs error
	for _, store := range j.stores {
		storeCtx := j.logg.WithStoreID(ctx, store)
		sales, err := j.sales.ListStaleOpenSales(storeCtx, store, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", store, err))
			continue
		}
		for _, sale := range sales {
			saleCtx := j.logg.WithSale(storeCtx, sale.TableID.String(), sale.ID.String())
			saleCtx = j.logg.WithFields(saleCtx, map[string]any{
				"sale_number": sale.SaleNumber,
				"opened_at":   sale.OpenedAt.UTC().Format(time.RFC3339),
				"open_for":    j.now().Sub(sale.OpenedAt).Round(time.Minute).String(),
			})
			j.logg.Warn(saleCtx, "sale open for too long")
		}
		j.reported += len(sales)
	}
	return errs
}
