package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// PairCache implements domain.PairCache on Redis, sharing supported-pair
// discovery across scanner processes. Each (exchange, fiat) set is stored as
// a JSON array at key "pairs:{exchange}:{fiat}" with a TTL.
type PairCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPairCache creates a PairCache backed by the given Client. A non-positive
// ttl falls back to one hour.
func NewPairCache(c *Client, ttl time.Duration) *PairCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PairCache{rdb: c.Underlying(), ttl: ttl}
}

func pairKey(exchange, fiat string) string {
	return fmt.Sprintf("pairs:%s:%s", exchange, fiat)
}

// SetPairs stores the supported crypto set for an (exchange, fiat).
func (pc *PairCache) SetPairs(ctx context.Context, exchange, fiat string, cryptos []string) error {
	payload, err := json.Marshal(cryptos)
	if err != nil {
		return fmt.Errorf("redis: encode pairs %s/%s: %w", exchange, fiat, err)
	}
	if err := pc.rdb.Set(ctx, pairKey(exchange, fiat), payload, pc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set pairs %s/%s: %w", exchange, fiat, err)
	}
	return nil
}

// GetPairs retrieves the supported crypto set for an (exchange, fiat). It
// returns domain.ErrNotFound when the key does not exist.
func (pc *PairCache) GetPairs(ctx context.Context, exchange, fiat string) ([]string, error) {
	payload, err := pc.rdb.Get(ctx, pairKey(exchange, fiat)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get pairs %s/%s: %w", exchange, fiat, err)
	}

	var cryptos []string
	if err := json.Unmarshal(payload, &cryptos); err != nil {
		return nil, fmt.Errorf("redis: decode pairs %s/%s: %w", exchange, fiat, err)
	}
	return cryptos, nil
}

// Compile-time interface check.
var _ domain.PairCache = (*PairCache)(nil)
