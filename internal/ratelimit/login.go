package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyLoginAttempt = "bizledger:login:%s"

// LoginLimiter throttles login attempts per client address. A nil limiter allows everything.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewLoginLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*LoginLimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}
	if cfg.LoginRatePerMinute <= 0 || cfg.LoginBurst <= 0 {
		return nil, fmt.Errorf("login rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRatePerMinute / 60,
		burst:  cfg.LoginBurst,
		log:    log.Named("ratelimit.login"),
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow fails open when redis is unreachable.
func (l *LoginLimiter) Allow(ctx context.Context, clientIP string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginAttempt, strings.TrimSpace(clientIP)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit check failed", zap.Error(err))
		return Result{Allowed: true}, nil
	}
	return res, nil
}
