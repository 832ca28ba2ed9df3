package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/eliteacai/pdv-backend/api/responses"
	"github.com/eliteacai/pdv-backend/pkg/config"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/eliteacai/pdv-backend/pkg/types"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PDV-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped, so
// demo mode is ready without a database or redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PDV-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}
		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, types.HealthReport{
			Status:   "ready",
			DemoMode: cfg.DemoMode(),
			Checks:   checks,
		})
	}
}
