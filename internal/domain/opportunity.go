package domain

import "time"

// MerchantSummary is the condensed advertiser view attached to each side of an
// arbitrage opportunity.
type MerchantSummary struct {
	Name           string
	CompletionRate float64
	RiskScore      float64
}

// ArbitrageOpportunity is a derived, transient record describing one
// profitable buy/sell offer combination. Opportunities are computed fresh on
// every query and never persisted; ordering by ProfitPercent descending
// defines ranking identity, not a stable entity key.
type ArbitrageOpportunity struct {
	ID             string
	Crypto         string
	Fiat           string
	BuyExchange    string
	SellExchange   string
	BuyPrice       float64
	SellPrice      float64
	ProfitPercent  float64
	MaxTradeAmount float64
	BuyMerchant    MerchantSummary
	SellMerchant   MerchantSummary
	DetectedAt     time.Time
}
