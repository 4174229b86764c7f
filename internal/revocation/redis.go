package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked_jti:"

// Redis backs the registry with one key per jti so entries can expire on
// their own. TTL should be at least the longest token TTL: after that the
// token is rejected by expiry anyway and the entry is dead weight.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		TTL:    ttl,
	}
}

func (r *Redis) Revoke(ctx context.Context, jti string) (bool, error) {
	inserted, err := r.Client.SetNX(ctx, keyPrefix+jti, 1, r.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("revocation store: %w", err)
	}
	return inserted, nil
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.Client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revocation store: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
