//go:build integration

// Integration tests for the redis wrapper.  They require a live Redis
// instance reachable via the NOTICE_TEST_REDIS_ADDR environment variable.
package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/redis"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("NOTICE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NOTICE_TEST_REDIS_ADDR not set")
	}

	client, err := redis.NewClient(config.RedisConfig{Addr: addr}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type cachedAnalysis struct {
	NoticeType string `json:"noticeType"`
	RiskLevel  string `json:"riskLevel"`
}

func TestCache_RoundTrip(t *testing.T) {
	cache := redis.NewCache(testClient(t), zap.NewNop())
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	var missed cachedAnalysis
	assert.ErrorIs(t, cache.Get(ctx, key, &missed), redis.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, key, cachedAnalysis{NoticeType: "CP2000", RiskLevel: "LOW"}, time.Minute))

	var got cachedAnalysis
	require.NoError(t, cache.Get(ctx, key, &got))
	assert.Equal(t, "CP2000", got.NoticeType)

	require.NoError(t, cache.Delete(ctx, key))
	exists, err := cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_GetOrSet_LoadsOnce(t *testing.T) {
	cache := redis.NewCache(testClient(t), zap.NewNop())
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return cachedAnalysis{NoticeType: "CP504"}, nil
	}

	var first, second cachedAnalysis
	require.NoError(t, cache.GetOrSet(ctx, key, &first, time.Minute, loader))
	require.NoError(t, cache.GetOrSet(ctx, key, &second, time.Minute, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "CP504", second.NoticeType)
}

func TestLimiter_EnforcesBudget(t *testing.T) {
	client := testClient(t)
	limiter := redis.NewLimiter(client, zap.NewNop(), 3, time.Minute)
	ctx := context.Background()
	key := uuid.NewString()

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, remaining, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	require.NoError(t, limiter.Reset(ctx, key))
	ok, _, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}
