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

// HistoryCache implements domain.HistoryCache on Redis. Trade records per
// pair are stored as a JSON array at key "history:{exchange}:{fiat}:{crypto}"
// with a TTL.
type HistoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewHistoryCache creates a HistoryCache backed by the given Client. A
// non-positive ttl falls back to five minutes.
func NewHistoryCache(c *Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &HistoryCache{rdb: c.Underlying(), ttl: ttl}
}

func historyKey(exchange, fiat, crypto string) string {
	return fmt.Sprintf("history:%s:%s:%s", exchange, fiat, crypto)
}

// SetTrades stores recent trade records for a pair.
func (hc *HistoryCache) SetTrades(ctx context.Context, exchange, fiat, crypto string, trades []domain.TradeRecord) error {
	payload, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("redis: encode trades %s %s/%s: %w", exchange, crypto, fiat, err)
	}
	if err := hc.rdb.Set(ctx, historyKey(exchange, fiat, crypto), payload, hc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set trades %s %s/%s: %w", exchange, crypto, fiat, err)
	}
	return nil
}

// GetTrades retrieves recent trade records for a pair. It returns
// domain.ErrNotFound when the key does not exist.
func (hc *HistoryCache) GetTrades(ctx context.Context, exchange, fiat, crypto string) ([]domain.TradeRecord, error) {
	payload, err := hc.rdb.Get(ctx, historyKey(exchange, fiat, crypto)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get trades %s %s/%s: %w", exchange, crypto, fiat, err)
	}

	var trades []domain.TradeRecord
	if err := json.Unmarshal(payload, &trades); err != nil {
		return nil, fmt.Errorf("redis: decode trades %s %s/%s: %w", exchange, crypto, fiat, err)
	}
	return trades, nil
}

// Compile-time interface check.
var _ domain.HistoryCache = (*HistoryCache)(nil)
