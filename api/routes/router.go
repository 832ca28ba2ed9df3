package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eliteacai/pdv-backend/api/controllers"
	tablecontrollers "github.com/eliteacai/pdv-backend/api/controllers/tables"
	"github.com/eliteacai/pdv-backend/api/middleware"
	"github.com/eliteacai/pdv-backend/internal/attendance"
	"github.com/eliteacai/pdv-backend/internal/cashregister"
	"github.com/eliteacai/pdv-backend/internal/orders"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	"github.com/eliteacai/pdv-backend/pkg/config"
	"github.com/eliteacai/pdv-backend/pkg/db"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/eliteacai/pdv-backend/pkg/redis"
)

// NewRouter wires every HTTP route. dbClient and redisClient are nil in demo
// mode and when redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	shell *attendance.Shell,
	tableService tablesales.Service,
	cashService cashregister.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	readiness := map[string]controllers.Pinger{"db": nil, "redis": nil}
	var idempotencyStore redis.IdempotencyStore
	if dbClient != nil {
		readiness["db"] = dbClient
	}
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/stores/{storeID}", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.FeatureFlags.AllowAnonymous, logg))
		r.Use(middleware.StoreContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/attendance", controllers.Attendance(shell, logg))

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(tableService, logg))
			r.Get("/{saleID}", controllers.SaleDetail(tableService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionViewSales, logg))
			r.Get("/tables", tablecontrollers.List(tableService, logg))
			r.Route("/tables/{tableID}", func(r chi.Router) {
				r.Post("/open", tablecontrollers.Open(tableService, logg))
				r.Post("/release", tablecontrollers.Release(tableService, logg))
				r.Route("/session", func(r chi.Router) {
					r.Get("/", tablecontrollers.Session(tableService, logg))
					r.Post("/items", tablecontrollers.AddItem(tableService, logg))
					r.Patch("/items/{index}", tablecontrollers.UpdateItem(tableService, logg))
					r.Delete("/items/{index}", tablecontrollers.RemoveItem(tableService, logg))
					r.Post("/save", tablecontrollers.Save(tableService, logg))
					r.Post("/finalize", tablecontrollers.Finalize(tableService, logg))
					r.Post("/cancel", tablecontrollers.Cancel(tableService, logg))
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionViewCashRegister, logg))
			r.Route("/cash-register", func(r chi.Router) {
				r.Get("/", controllers.CashRegisterCurrent(cashService, logg))
				r.Post("/open", controllers.CashRegisterOpen(cashService, logg))
				r.Post("/close", controllers.CashRegisterClose(cashService, logg))
				r.Post("/entries", controllers.CashRegisterAddEntry(cashService, logg))
			})
		})

		r.With(middleware.RequirePermission(enums.PermissionViewOrders, logg)).
			Get("/orders", controllers.OrdersRecent(ordersService, logg))
	})

	return r
}
