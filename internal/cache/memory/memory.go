// Package memory provides in-process TTL caches for supported pairs and
// trade history. Entries expire on their own; there is no external state.
package memory

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

const (
	// DefaultPairsTTL keeps supported-pair sets fresh for an hour: exchanges
	// list new assets rarely.
	DefaultPairsTTL = time.Hour

	// DefaultHistoryTTL keeps trade history for five minutes.
	DefaultHistoryTTL = 5 * time.Minute

	cleanupInterval = 10 * time.Minute
)

// PairCache is an in-process TTL cache of supported cryptos per
// (exchange, fiat).
type PairCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewPairCache creates a pair cache. A non-positive ttl falls back to
// DefaultPairsTTL.
func NewPairCache(ttl time.Duration) *PairCache {
	if ttl <= 0 {
		ttl = DefaultPairsTTL
	}
	return &PairCache{store: gocache.New(ttl, cleanupInterval), ttl: ttl}
}

func (c *PairCache) SetPairs(_ context.Context, exchange, fiat string, cryptos []string) error {
	c.store.Set(pairKey(exchange, fiat), append([]string(nil), cryptos...), c.ttl)
	return nil
}

func (c *PairCache) GetPairs(_ context.Context, exchange, fiat string) ([]string, error) {
	v, ok := c.store.Get(pairKey(exchange, fiat))
	if !ok {
		return nil, domain.ErrNotFound
	}
	cryptos, ok := v.([]string)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]string(nil), cryptos...), nil
}

// HistoryCache is an in-process TTL cache of trade records per pair.
type HistoryCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewHistoryCache creates a history cache. A non-positive ttl falls back to
// DefaultHistoryTTL.
func NewHistoryCache(ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	return &HistoryCache{store: gocache.New(ttl, cleanupInterval), ttl: ttl}
}

func (c *HistoryCache) SetTrades(_ context.Context, exchange, fiat, crypto string, trades []domain.TradeRecord) error {
	c.store.Set(historyKey(exchange, fiat, crypto), append([]domain.TradeRecord(nil), trades...), c.ttl)
	return nil
}

func (c *HistoryCache) GetTrades(_ context.Context, exchange, fiat, crypto string) ([]domain.TradeRecord, error) {
	v, ok := c.store.Get(historyKey(exchange, fiat, crypto))
	if !ok {
		return nil, domain.ErrNotFound
	}
	trades, ok := v.([]domain.TradeRecord)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.TradeRecord(nil), trades...), nil
}

func pairKey(exchange, fiat string) string {
	return fmt.Sprintf("pairs:%s:%s", exchange, fiat)
}

func historyKey(exchange, fiat, crypto string) string {
	return fmt.Sprintf("history:%s:%s:%s", exchange, fiat, crypto)
}

// Compile-time interface checks.
var (
	_ domain.PairCache    = (*PairCache)(nil)
	_ domain.HistoryCache = (*HistoryCache)(nil)
)
