package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/tuanphm/teehouse-backend/api/responses"
	"github.com/tuanphm/teehouse-backend/pkg/config"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Teehouse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dependencies map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Teehouse-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var down []string
		var pingErr error
		for name, dep := range dependencies {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				down = append(down, name)
				pingErr = multierr.Append(pingErr, err)
				continue
			}
			checks[name] = "up"
		}

		if pingErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, pingErr, "readiness check failed").
				WithDetails(map[string]any{"down": down}))
			return
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
