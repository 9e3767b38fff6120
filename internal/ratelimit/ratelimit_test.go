package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestParseResult(t *testing.T) {
	res := parseResult([]interface{}{int64(1), "2.5", int64(1700000000000)}, 1)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
	assert.Zero(t, res.RetryAfter)

	res = parseResult([]interface{}{int64(0), "0.5", int64(1700000000000)}, 0.5)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestLoginLimiterDisabledWithoutRedis(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	limiter, err := NewLoginLimiter(lc, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLoginLimiterRejectsBadRate(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := NewLoginLimiter(lc, config.Config{RedisAddr: "localhost:6379"}, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenBucketNotConfigured(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}
