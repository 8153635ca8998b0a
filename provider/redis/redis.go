// Package redis backs the snapshot store with a go-redis client. A shared
// Redis keeps the last-known-good snapshot visible to every replica; pair
// it with revstore.Redis so the revision counter is shared too, otherwise
// replicas will treat each other's writes as stale.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/fallcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis stores snapshot and record frames as plain Redis strings. Cost is
// ignored; Redis applies its own maxmemory policy.
type Redis struct {
	client goredis.UniversalClient
	owned  bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient
	// CloseClient hands ownership of the client to the provider: Close
	// will close it. Leave false when the client is shared.
	CloseClient bool
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{client: cfg.Client, owned: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	if err := p.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.client.Del(ctx, key).Err()
}

// Close closes the client only under CloseClient ownership. Idempotent.
func (p *Redis) Close(context.Context) error {
	if !p.owned {
		return nil
	}
	if err := p.client.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
