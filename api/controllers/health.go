package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/halcart/api/responses"
	"github.com/angelmondragon/halcart/internal/cart"
	"github.com/angelmondragon/halcart/pkg/config"
	pkgerrors "github.com/angelmondragon/halcart/pkg/errors"
	"github.com/angelmondragon/halcart/pkg/logger"
	"github.com/angelmondragon/halcart/pkg/redis"
)

const (
	envHeader    = "X-HalCart-Env"
	readyTimeout = 2 * time.Second
)

// StoreStats reports how much the in-memory store holds.
type StoreStats interface {
	Stats() cart.Stats
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings redis when it is configured. A nil pinger means the
// service runs without it and is always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient redis.Pinger, stats StoreStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := redisClient.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").WithDetails(map[string]string{"dependency": "redis"}))
				return
			}
		}

		body := map[string]any{"status": "ready"}
		if stats != nil {
			counts := stats.Stats()
			body["carts"] = counts.Carts
			body["items"] = counts.Items
		}
		responses.WriteSuccess(w, body)
	}
}
