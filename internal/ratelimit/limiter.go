// Package ratelimit throttles WebSocket admission and inbound event volume.
// It is a pure admission/DoS safeguard: it never reads or writes registry
// state (rooms, hosts, claims, sessions), so it carries none of the
// consistency obligations the engines do.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"go.uber.org/zap"

	"github.com/nimbusrelay/signalcore/internal/logging"
	"github.com/nimbusrelay/signalcore/internal/metrics"
)

// Limiter enforces a per-IP connection-attempt limit and a per-connection
// inbound-event limit.
type Limiter struct {
	wsIP    *limiter.Limiter
	wsEvent *limiter.Limiter
	cb      *gobreaker.CircuitBreaker
	enabled bool
}

// New builds a Limiter. redisAddr/redisPassword are optional; when empty the
// limiter falls back to an in-memory store, which is sufficient for a
// single-process deployment (this core never scales horizontally, see
// spec.md §1 Non-goals).
func New(redisAddr, redisPassword, wsIPRate, wsEventRate string, enabled bool) (*Limiter, error) {
	ipRate, err := limiter.NewRateFromFormatted(wsIPRate)
	if err != nil {
		return nil, fmt.Errorf("invalid ws ip rate %q: %w", wsIPRate, err)
	}
	eventRate, err := limiter.NewRateFromFormatted(wsEventRate)
	if err != nil {
		return nil, fmt.Errorf("invalid ws event rate %q: %w", wsEventRate, err)
	}

	var store limiter.Store
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPassword})
		s, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "signalcore:ratelimit:"})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "rate limiter using redis store")
	} else {
		store = memory.NewStore()
		logging.Info(context.Background(), "rate limiter using in-memory store")
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "ratelimit-store"})

	return &Limiter{
		wsIP:    limiter.New(store, ipRate),
		wsEvent: limiter.New(store, eventRate),
		cb:      cb,
		enabled: enabled,
	}, nil
}

// AllowConnect reports whether a new WebSocket connection from ip should be
// admitted. On store failure it fails open: availability of the signaling
// core outranks a missed throttle window.
func (l *Limiter) AllowConnect(ctx context.Context, ip string) bool {
	if l == nil || !l.enabled {
		return true
	}
	return l.allow(ctx, l.wsIP, "ws_connect", ip)
}

// AllowEvent reports whether another inbound event from connID should be
// processed.
func (l *Limiter) AllowEvent(ctx context.Context, connID string) bool {
	if l == nil || !l.enabled {
		return true
	}
	return l.allow(ctx, l.wsEvent, "ws_event", connID)
}

func (l *Limiter) allow(ctx context.Context, lim *limiter.Limiter, scope, key string) bool {
	res, err := l.cb.Execute(func() (interface{}, error) {
		return lim.Get(ctx, key)
	})
	if err != nil {
		logging.Warn(ctx, "rate limiter store unavailable, failing open", zap.String("scope", scope), zap.Error(err))
		return true
	}

	lc := res.(limiter.Context)
	if lc.Reached {
		metrics.RateLimitExceeded.WithLabelValues(scope).Inc()
		return false
	}
	return true
}
