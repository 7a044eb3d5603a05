package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to the burst then denies", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

		for i := 0; i < 3; i++ {
			require.True(t, rl.Allow("client-a"), "request %d", i)
		}
		require.False(t, rl.Allow("client-a"))
	})

	t.Run("tracks sources independently", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

		require.True(t, rl.Allow("client-a"))
		require.False(t, rl.Allow("client-a"))
		require.True(t, rl.Allow("client-b"))
	})

	t.Run("refills over time", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 2})

		require.True(t, rl.Allow("client-a"))
		require.True(t, rl.Allow("client-a"))
		require.False(t, rl.Allow("client-a"))

		time.Sleep(50 * time.Millisecond)
		require.True(t, rl.Allow("client-a"))
	})
}

func TestRateLimiter_Options(t *testing.T) {
	t.Run("configured cache ttl is applied", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 1, CacheTTL: time.Minute}).(*RateLimiter)

		require.Equal(t, time.Minute, rl.cacheTTL)
	})

	t.Run("zero cache ttl gets a default", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 1}).(*RateLimiter)

		require.Equal(t, 10*time.Second, rl.cacheTTL)
	})

	t.Run("bucket state expires with the cache ttl", func(t *testing.T) {
		rl := New(Options{MaxRatePerSecond: 0, MaxBurst: 1, CacheTTL: 20 * time.Millisecond})

		require.True(t, rl.Allow("client-a"))
		require.False(t, rl.Allow("client-a"))

		// Eviction refills the bucket even with a zero rate.
		time.Sleep(30 * time.Millisecond)
		require.True(t, rl.Allow("client-a"))
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	require.Equal(t, 5, rl.Remaining("client-a"))

	require.True(t, rl.Allow("client-a"))
	require.Equal(t, 4, rl.Remaining("client-a"))
}

func TestRateLimiter_GetSourceKey(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	t.Run("prefers the configured header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		require.Equal(t, "203.0.113.9", rl.GetSourceKey(r))
	})

	t.Run("falls back to remote address", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		require.Equal(t, r.RemoteAddr, rl.GetSourceKey(r))
	})
}

func TestInMemoryCache(t *testing.T) {
	cache := NewInMemory()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, err := cache.Get("missing")
		require.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.Set("k", 7))

		v, err := cache.Get("k")
		require.NoError(t, err)
		require.Equal(t, 7, v)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		require.NoError(t, cache.SetWithExpiration("short", 1, 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, err := cache.Get("short")
		require.ErrorIs(t, err, ErrCacheMiss)
	})
}
