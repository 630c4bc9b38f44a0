//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockRedisClient struct {
	counts  map[string]int64
	expires map[string]time.Duration

	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (m *mockRedisClient) Ping(context.Context) error { return nil }

func (m *mockRedisClient) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (m *mockRedisClient) Get(context.Context, string) (string, error) { return "", nil }

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc != nil {
		return m.IncrFunc(ctx, key)
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, key, expiration)
	}
	m.expires[key] = expiration
	return nil
}

func (m *mockRedisClient) Del(context.Context, ...string) error { return nil }

func (m *mockRedisClient) Close() error { return nil }

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	client := newMockRedisClient()
	rl := NewRateLimiter(client)
	ctx := context.Background()
	key := PhotoSubmitKey(1001)

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("submission %d denied below the limit", i+1)
		}
	}

	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow over limit: %v", err)
	}
	if ok {
		t.Fatal("fourth submission must be denied with limit 3")
	}
}

func TestRateLimiter_SetsWindowOnFirstHit(t *testing.T) {
	client := newMockRedisClient()
	rl := NewRateLimiter(client)
	ctx := context.Background()
	key := PhotoSubmitKey(1001)

	if _, err := rl.Allow(ctx, key, 3, 30*time.Second); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if client.expires[key] != 30*time.Second {
		t.Fatalf("expected 30s TTL on first increment, got %v", client.expires[key])
	}

	// Later hits must not reset the window.
	client.expires[key] = 0
	if _, err := rl.Allow(ctx, key, 3, 30*time.Second); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if client.expires[key] != 0 {
		t.Fatal("TTL must only be set on the first increment of a window")
	}
}

func TestRateLimiter_IncrErrorDenies(t *testing.T) {
	client := newMockRedisClient()
	boom := errors.New("redis down")
	client.IncrFunc = func(context.Context, string) (int64, error) { return 0, boom }
	rl := NewRateLimiter(client)

	ok, err := rl.Allow(context.Background(), PhotoSubmitKey(1001), 3, time.Minute)
	if !errors.Is(err, boom) {
		t.Fatalf("expected incr error back, got %v", err)
	}
	if ok {
		t.Fatal("errors must not allow the submission")
	}
}

func TestRateLimiter_NilAllowsEverything(t *testing.T) {
	var rl *RateLimiter
	for i := 0; i < 10; i++ {
		ok, err := rl.Allow(context.Background(), PhotoSubmitKey(1001), 1, time.Minute)
		if err != nil || !ok {
			t.Fatalf("nil limiter must allow all: ok=%v err=%v", ok, err)
		}
	}
}

func TestPhotoSubmitKey(t *testing.T) {
	if got := PhotoSubmitKey(42); got != "rate_limit:42:photo" {
		t.Fatalf("unexpected key %q", got)
	}
}
