package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/eliteacai/pdv-backend/api/routes"
	"github.com/eliteacai/pdv-backend/internal/attendance"
	"github.com/eliteacai/pdv-backend/internal/cashregister"
	"github.com/eliteacai/pdv-backend/internal/orders"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	"github.com/eliteacai/pdv-backend/pkg/config"
	"github.com/eliteacai/pdv-backend/pkg/db"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/eliteacai/pdv-backend/pkg/metrics"
	"github.com/eliteacai/pdv-backend/pkg/migrate"
	"github.com/eliteacai/pdv-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

// backends groups the persistence collaborators chosen for the current mode.
type backends struct {
	dbClient    *db.Client
	redisClient *redis.Client
	store       tablesales.Store
	workspace   tablesales.Workspace
	cashRepo    cashregister.Repository
	ordersRepo  orders.Repository
}

func (b *backends) Close() error {
	var err error
	if b.redisClient != nil {
		err = multierr.Append(err, b.redisClient.Close())
	}
	if b.dbClient != nil {
		err = multierr.Append(err, b.dbClient.Close())
	}
	return err
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	deps, err := buildBackends(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap backends", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error(context.Background(), "error closing backends", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	saleMetrics := metrics.NewSaleMetrics(registry)

	cashService, err := cashregister.NewService(deps.cashRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cash register service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(deps.ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	tableService, err := tablesales.NewService(tablesales.ServiceParams{
		Store:     deps.store,
		Workspace: deps.workspace,
		Cash:      cashService,
		Rules: tablesales.ItemRules{
			AllowZeroQuantity: cfg.Rules.AllowZeroQuantity,
			AllowZeroPrice:    cfg.Rules.AllowZeroPrice,
		},
		Metrics: saleMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create table sale service", err)
		os.Exit(1)
	}

	shell, err := attendance.NewShell(ordersService, cashService, cfg.DemoMode(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create attendance shell", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"demo_mode": cfg.DemoMode(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			deps.dbClient,
			deps.redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			shell,
			tableService,
			cashService,
			ordersService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

// buildBackends wires in-memory collaborators in demo mode and the database
// (plus redis when configured) otherwise.
func buildBackends(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backends, error) {
	deps := &backends{}

	if cfg.DemoMode() {
		logg.Warn(ctx, "running in demo mode: data lives in memory")
		deps.store = tablesales.NewMemoryStore()
		deps.cashRepo = cashregister.NewMemoryRepository()
		deps.ordersRepo = orders.NewMemoryRepository()
	} else {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		deps.dbClient = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			_ = deps.Close()
			return nil, err
		}
		if cfg.FeatureFlags.UseSQLite && cfg.FeatureFlags.AutoMigrate {
			if err := autoMigrate(dbClient); err != nil {
				_ = deps.Close()
				return nil, err
			}
		}

		store, err := tablesales.NewGormStore(dbClient.DB(), dbClient)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.store = store
		deps.cashRepo = cashregister.NewGormRepository(dbClient.DB())
		deps.ordersRepo = orders.NewRepository(dbClient.DB())
	}

	if cfg.Redis.Configured() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.redisClient = redisClient
		workspace, err := tablesales.NewRedisWorkspace(redisClient, cfg.Workspace.CartTTL)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.workspace = workspace
	} else {
		deps.workspace = tablesales.NewMemoryWorkspace()
	}

	return deps, nil
}

func autoMigrate(client *db.Client) error {
	conn := client.DB()
	return multierr.Combine(
		tablesales.AutoMigrate(conn),
		cashregister.AutoMigrate(conn),
		orders.AutoMigrate(conn),
	)
}
