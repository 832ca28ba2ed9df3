package cron

import (
	"context"
	"fmt"

	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type orphanFreer interface {
	FreeOrphanedTables(ctx context.Context, store enums.StoreID) ([]uuid.UUID, error)
}

// TableReconcileJobParams configure the table reconciliation job.
type TableReconcileJobParams struct {
	Logger *logger.Logger
	Tables orphanFreer
	Stores []enums.StoreID
}

// NewTableReconcileJob builds the job that frees tables left occupied without
// an open sale, e.g. after a crash between closing a sale and updating its table.
func NewTableReconcileJob(params TableReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("table store required")
	}
	stores := params.Stores
	if len(stores) == 0 {
		stores = enums.StoreIDs()
	}
	return &tableReconcileJob{logg: params.Logger, tables: params.Tables, stores: stores}, nil
}

type tableReconcileJob struct {
	logg   *logger.Logger
	tables orphanFreer
	stores []enums.StoreID
}

func (j *tableReconcileJob) Name() string { return "table-reconcile" }

func (j *tableReconcileJob) Run(ctx context.Context) error {
	var errs error
	for _, store := range j.stores {
		storeCtx := j.logg.WithStoreID(ctx, store)
		freed, err := j.tables.FreeOrphanedTables(storeCtx, store)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", store, err))
			continue
		}
		if len(freed) == 0 {
			continue
		}
		storeCtx = j.logg.WithField(storeCtx, "freed_tables", len(freed))
		j.logg.Warn(storeCtx, "freed orphaned tables")
	}
	return errs
}
