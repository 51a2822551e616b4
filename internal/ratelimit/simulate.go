package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acentera/acentera/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keySimulate = "commission:simulate:%s"

// SimulateLimiter throttles the commission simulation endpoint per client.
// Nil when rate limiting is not configured; callers treat nil as allow-all.
type SimulateLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSimulateLimiter(cfg config.Config) (*SimulateLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.SimulateRate <= 0 || limitCfg.SimulateBurst <= 0 {
		return nil, errors.New("simulate rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &SimulateLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.SimulateRate,
		burst:  limitCfg.SimulateBurst,
	}, nil
}

func (l *SimulateLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	if strings.TrimSpace(clientKey) == "" {
		clientKey = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySimulate, clientKey), l.rate, l.burst)
}
