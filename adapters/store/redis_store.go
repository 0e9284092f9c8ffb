package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

const (
	fieldAccess  = "access"
	fieldRefresh = "refresh"

	latestKey = "latest"
)

// RedisStore is a Redis implementation of the TokenStore interface. Each
// pair is a hash; both hashes are rewritten in one MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.TokenStore {
	return &RedisStore{
		client: client,
		prefix: "pearrelay:tokens:",
	}
}

// Save replaces the pair stored for address and the latest pair.
func (s *RedisStore) Save(ctx context.Context, address string, pair core.TokenPair) error {
	values := map[string]any{
		fieldAccess:  pair.AccessToken,
		fieldRefresh: pair.RefreshToken,
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range []string{s.walletKey(address), s.prefix + latestKey} {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save token pair: %w", err)
	}

	return nil
}

// Get returns the pair last saved for address.
func (s *RedisStore) Get(ctx context.Context, address string) (core.TokenPair, bool, error) {
	return s.load(ctx, s.walletKey(address))
}

// Latest returns the pair saved by the most recent login of any wallet.
func (s *RedisStore) Latest(ctx context.Context) (core.TokenPair, bool, error) {
	return s.load(ctx, s.prefix+latestKey)
}

func (s *RedisStore) load(ctx context.Context, key string) (core.TokenPair, bool, error) {
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return core.TokenPair{}, false, fmt.Errorf("failed to load token pair: %w", err)
	}
	if len(values) == 0 {
		return core.TokenPair{}, false, nil
	}

	return core.TokenPair{
		AccessToken:  values[fieldAccess],
		RefreshToken: values[fieldRefresh],
	}, true, nil
}

func (s *RedisStore) walletKey(address string) string {
	return s.prefix + "wallet:" + walletKey(address)
}
