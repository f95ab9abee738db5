package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript atomically prunes expired entries, checks the limit, and
// records new hits. Running it server-side avoids the check-then-act race a
// pipeline would have under concurrent requests for the same key.
var recordScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local n = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count + n > limit then
	return {0, count}
end
for i = 1, n do
	redis.call('ZADD', key, now, member .. ':' .. i)
end
redis.call('PEXPIRE', key, window)
return {1, count + n}
`)

// RedisStore keeps sliding window state in Redis sorted sets, one set per
// key, scored by hit time in milliseconds. Safe for multi-instance
// deployments since the check-and-record runs as a single Lua script.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client cannot be nil")
	}
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, key string, now time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	res, err := recordScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		n,
		uuid.New().String(),
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis record: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("ratelimit: unexpected script reply of length %d", len(res))
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)
	return allowed == 1, count, nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis reset: %w", err)
	}
	return nil
}
