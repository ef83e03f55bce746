package redis

import (
	"context"
	"testing"
	"time"
)

type fakeRedis struct {
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}
func (f *fakeRedis) Del(ctx context.Context, keys ...string) error { return nil }
func (f *fakeRedis) Close() error                                  { return nil }

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	fr := newFakeRedis()
	rl := NewRateLimiter(fr)
	ctx := context.Background()
	key := SubmitKey("default", "persona")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: ok=%v err=%v, want allowed", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("fourth call allowed, want denied")
	}
	if fr.expires[key] != time.Minute {
		t.Fatalf("window expiry = %v, want set once on first increment", fr.expires[key])
	}
}
