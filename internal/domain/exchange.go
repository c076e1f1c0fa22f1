package domain

import (
	"context"
	"time"
)

// Exchange is the capability set every P2P exchange adapter implements. Both
// operations fail soft: any remote error is recovered locally to an empty
// result, so a broken exchange never poisons a multi-exchange query.
type Exchange interface {
	// Name returns the adapter's exchange identifier, e.g. "okx".
	Name() string

	// SupportedCryptocurrencies returns the crypto codes tradable against the
	// given fiat currency. Returns an empty slice on any remote error.
	SupportedCryptocurrencies(ctx context.Context, fiat string) ([]string, error)

	// P2PPrices returns normalized, risk-scored offers matching the filter.
	// Returns an empty slice on any remote error; a single malformed record
	// within an otherwise successful response is skipped, not fatal.
	P2PPrices(ctx context.Context, fiat, crypto string, tradeType TradeType, filter OfferFilter) ([]Offer, error)
}

// TradeRecord is one historical P2P trade for a pair.
type TradeRecord struct {
	Timestamp time.Time
	Price     float64
	Amount    float64
	Volume    float64 // Price * Amount
	TradeType TradeType
}

// HistoryProvider is the optional capability of adapters that expose recent
// public trades. Records are cached in process memory only.
type HistoryProvider interface {
	HistoricalPrices(ctx context.Context, fiat, crypto string, days int) ([]TradeRecord, error)
}

// MerchantInfo is the detailed advertiser profile exposed by some exchanges.
type MerchantInfo struct {
	Nickname         string
	UserType         string
	UserGrade        int
	MonthOrderCount  int
	MonthFinishRate  float64
	PositiveRate     float64
	Badges           []string
	VIPLevel         *int
	ActiveTime       int
	Volume24h        float64
	RegistrationTime *time.Time
}
