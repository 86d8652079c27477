package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/koxixo/orders-backend/api/responses"
	"github.com/koxixo/orders-backend/pkg/config"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/koxixo/orders-backend/pkg/logger"
)

// Pinger reports whether a backing dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Koxixo-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the database and cache before reporting ready.
func HealthReady(cfg *config.Config, db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Koxixo-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
