package revstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis shares revisions across processes and survives restarts.
type Redis struct {
	rdb redis.UniversalClient
	ns  string // logical namespace to avoid collisions; match CacheOptions.Namespace
}

func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

var advanceScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local want = tonumber(ARGV[1])
if want > cur then
  redis.call('SET', KEYS[1], ARGV[1])
end
return redis.call('GET', KEYS[1])
`)

func (s *Redis) key(k string) string { return "rev:" + s.ns + ":" + k }

func (s *Redis) Current(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis rev parse: %w", err)
	}
	return u, nil
}

func (s *Redis) Bump(ctx context.Context, storageKey string) (uint64, error) {
	v, err := s.rdb.Incr(ctx, s.key(storageKey)).Uint64()
	return v, err
}

func (s *Redis) Advance(ctx context.Context, storageKey string, rev uint64) error {
	return advanceScript.Run(ctx, s.rdb, []string{s.key(storageKey)}, rev).Err()
}

func (s *Redis) Close(ctx context.Context) error { return s.rdb.Close() }
