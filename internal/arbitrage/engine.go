// Package arbitrage implements the opportunity discovery engine. Given the
// per-exchange offer sets for one crypto/fiat pair it enumerates every
// directional (buy exchange, sell exchange) combination, computes profit,
// applies the caller's threshold, and ranks the results.
package arbitrage

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// Engine discovers arbitrage opportunities in collected offer sets. It is a
// pure function of its inputs and never fails: any well-formed offer mapping,
// including an empty one, yields a (possibly empty) opportunity list.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With(slog.String("component", "arb_engine"))}
}

// Find enumerates every ordered pair of exchanges, self-pairs included, and
// within each pair every combination of one buy offer and one sell offer.
// Buy candidates are taken in ascending price order, sell candidates in
// descending price order (stable sorts; price ties keep input order). An
// opportunity is emitted when
//
//	profit% = (sell.Price - buy.Price) / buy.Price * 100 >= minProfitPercent
//
// with MaxTradeAmount = min(buy.AvailableAmount, sell.AvailableAmount).
//
// The enumeration is deliberately exhaustive: O(E² × O_buy × O_sell) per
// pair, with no pruning or early termination. Exchange and offer counts are
// small (tens), so this stays cheap.
func (e *Engine) Find(
	offersByExchange map[string][]domain.Offer,
	crypto, fiat string,
	minProfitPercent float64,
) []domain.ArbitrageOpportunity {
	if len(offersByExchange) == 0 {
		return nil
	}

	// Deterministic exchange order; map iteration order is not.
	exchanges := lo.Keys(offersByExchange)
	sort.Strings(exchanges)

	now := time.Now().UTC()

	var opps []domain.ArbitrageOpportunity
	for _, buyExchange := range exchanges {
		buyOffers := sortedByPrice(offersByExchange[buyExchange], false)
		if len(buyOffers) == 0 {
			continue
		}
		for _, sellExchange := range exchanges {
			sellOffers := sortedByPrice(offersByExchange[sellExchange], true)
			if len(sellOffers) == 0 {
				continue
			}
			for _, buy := range buyOffers {
				if buy.Price <= 0 {
					// Upstream invariant is Price > 0; skip rather than divide by zero.
					e.logger.Warn("skipping offer with non-positive price",
						slog.String("exchange", buyExchange),
						slog.String("advertiser", buy.Advertiser),
					)
					continue
				}
				for _, sell := range sellOffers {
					profit := (sell.Price - buy.Price) / buy.Price * 100
					if profit < minProfitPercent {
						continue
					}
					opps = append(opps, domain.ArbitrageOpportunity{
						ID:             uuid.Must(uuid.NewRandom()).String(),
						Crypto:         crypto,
						Fiat:           fiat,
						BuyExchange:    buyExchange,
						SellExchange:   sellExchange,
						BuyPrice:       buy.Price,
						SellPrice:      sell.Price,
						ProfitPercent:  profit,
						MaxTradeAmount: min(buy.AvailableAmount, sell.AvailableAmount),
						BuyMerchant:    merchantSummary(buy),
						SellMerchant:   merchantSummary(sell),
						DetectedAt:     now,
					})
				}
			}
		}
	}

	Rank(opps)
	return opps
}

// Rank sorts opportunities by ProfitPercent descending, in place. The sort is
// stable so equal-profit opportunities keep their enumeration order.
func Rank(opps []domain.ArbitrageOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercent > opps[j].ProfitPercent
	})
}

func merchantSummary(o domain.Offer) domain.MerchantSummary {
	return domain.MerchantSummary{
		Name:           o.Advertiser,
		CompletionRate: o.MonthFinishRate,
		RiskScore:      o.MerchantRisk.Score,
	}
}

// sortedByPrice returns a stable price-sorted copy; the input slice is owned
// by the caller and never mutated.
func sortedByPrice(offers []domain.Offer, descending bool) []domain.Offer {
	out := make([]domain.Offer, len(offers))
	copy(out, offers)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}
