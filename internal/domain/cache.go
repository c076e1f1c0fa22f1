package domain

import (
	"context"
	"time"
)

// PairCache stores the supported crypto set per (exchange, fiat) so repeated
// arbitrage scans do not re-query every adapter.
type PairCache interface {
	SetPairs(ctx context.Context, exchange, fiat string, cryptos []string) error
	GetPairs(ctx context.Context, exchange, fiat string) ([]string, error)
}

// HistoryCache stores recent trade records per pair.
type HistoryCache interface {
	SetTrades(ctx context.Context, exchange, fiat, crypto string, trades []TradeRecord) error
	GetTrades(ctx context.Context, exchange, fiat, crypto string) ([]TradeRecord, error)
}

// RateLimiter throttles outbound adapter requests.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}
