package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/velora-shop/velora-backend/pkg/config"
)

type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *goredis.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(val, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return goredis.NewIntResult(removed, nil)
}

func (f *fakeStore) Expire(_ context.Context, key string, _ time.Duration) *goredis.BoolCmd {
	_, ok := f.values[key]
	return goredis.NewBoolResult(ok, nil)
}

func TestCartKeyNamespacing(t *testing.T) {
	c := &Client{store: &fakeStore{}}
	if got := c.CartKey("abc-123"); got != "velora:cart:abc-123" {
		t.Fatalf("unexpected cart key %q", got)
	}
	if got := c.CartKey(""); got != "velora:cart" {
		t.Fatalf("empty parts should be skipped, got %q", got)
	}
}

func TestSetGetDelRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := &Client{store: &fakeStore{}}
	key := c.CartKey("sess")

	if err := c.Set(ctx, key, `{"1":2}`, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != `{"1":2}` {
		t.Fatalf("unexpected value %q", val)
	}

	if err := c.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := c.Get(ctx, key); !IsAbsent(err) {
		t.Fatalf("expected absence after delete, got %v", err)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2 from url, got %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("expected pool size from config, got %d", opts.PoolSize)
	}
}
