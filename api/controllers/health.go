package controllers

import (
	"net/http"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	pkgredis "github.com/andresvelarde/skyfare-backend/pkg/redis"
)

const envHeader = "X-SkyFare-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
