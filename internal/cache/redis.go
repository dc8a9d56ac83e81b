package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	claimPrefix     = "campaign:inflight:"
	DefaultClaimTTL = 10 * time.Minute
)

// releaseScript deletes the claim only if this replica still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// Connect initializes a Redis client from URL or host:port input.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

type claimClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisGuard claims campaigns across replicas with SET NX PX. A claim
// expires after ttl so a crashed replica cannot block a campaign forever.
type RedisGuard struct {
	client claimClient
	owner  string
	ttl    time.Duration
}

func NewRedisGuard(client claimClient, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisGuard{client: client, owner: uuid.NewString(), ttl: ttl}
}

func (g *RedisGuard) TryAcquire(ctx context.Context, id string) (bool, error) {
	ok, err := g.client.SetNX(ctx, claimPrefix+id, g.owner, g.ttl).Result()
	if err != nil {
		return false, errors.Transient("redis", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, id string) error {
	if err := g.client.Eval(ctx, releaseScript, []string{claimPrefix + id}, g.owner).Err(); err != nil {
		return errors.Transient("redis", err)
	}
	return nil
}
