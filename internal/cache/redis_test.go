package cache

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis keeps string keys in memory and understands the release script.
type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	if f.keys[keys[0]] == args[0].(string) {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisGuardClaimsOncePerCampaign(t *testing.T) {
	fake := newFakeRedis()
	replicaA := NewRedisGuard(fake, time.Minute)
	replicaB := NewRedisGuard(fake, time.Minute)
	ctx := context.Background()

	ok, err := replicaA.TryAcquire(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, fake.ttls["campaign:inflight:c1"])

	ok, err = replicaB.TryAcquire(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Only the owner can release.
	require.NoError(t, replicaB.Release(ctx, "c1"))
	ok, _ = replicaB.TryAcquire(ctx, "c1")
	assert.False(t, ok)

	require.NoError(t, replicaA.Release(ctx, "c1"))
	ok, err = replicaB.TryAcquire(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGuardDefaultTTL(t *testing.T) {
	fake := newFakeRedis()
	_, err := NewRedisGuard(fake, 0).TryAcquire(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, DefaultClaimTTL, fake.ttls["campaign:inflight:c1"])
}

func TestRedisGuardErrorsAreTransient(t *testing.T) {
	fake := newFakeRedis()
	fake.err = stderrors.New("connection refused")
	g := NewRedisGuard(fake, time.Minute)

	_, err := g.TryAcquire(context.Background(), "c1")
	assert.True(t, errors.IsTransient(err))
	assert.True(t, errors.IsTransient(g.Release(context.Background(), "c1")))
}

func TestConnect(t *testing.T) {
	client, err := Connect(context.Background(), "redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	client.Close()

	client, err = Connect(context.Background(), "localhost:6380")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	client.Close()

	_, err = Connect(context.Background(), "redis://localhost:6379/notadb")
	assert.Error(t, err)
}
