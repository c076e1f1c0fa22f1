package arbitrage

import (
	"io"
	"log/slog"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// genOffers builds a random per-exchange offer mapping with positive prices.
func genOffers() gopter.Gen {
	genOffer := gopter.CombineGens(
		gen.Float64Range(0.01, 100000),
		gen.Float64Range(0, 1000),
	).Map(func(vals []interface{}) domain.Offer {
		return domain.Offer{
			Advertiser:      "gen",
			Price:           vals[0].(float64),
			AvailableAmount: vals[1].(float64),
		}
	})

	return gen.MapOf(
		gen.OneConstOf("binance", "okx", "bybit"),
		gen.SliceOfN(4, genOffer),
	)
}

func TestEngine_Find_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	e := NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))

	properties.Property("every emitted opportunity clears the threshold", prop.ForAll(
		func(offers map[string][]domain.Offer, minProfit float64) bool {
			for _, opp := range e.Find(offers, "USDT", "USD", minProfit) {
				if opp.ProfitPercent < minProfit {
					return false
				}
			}
			return true
		},
		genOffers(),
		gen.Float64Range(0, 10),
	))

	properties.Property("result is sorted by profit, non-increasing", prop.ForAll(
		func(offers map[string][]domain.Offer, minProfit float64) bool {
			opps := e.Find(offers, "USDT", "USD", minProfit)
			for i := 1; i < len(opps); i++ {
				if opps[i-1].ProfitPercent < opps[i].ProfitPercent {
					return false
				}
			}
			return true
		},
		genOffers(),
		gen.Float64Range(0, 10),
	))

	properties.Property("max trade amount is min of the two sides", prop.ForAll(
		func(offers map[string][]domain.Offer) bool {
			for _, opp := range e.Find(offers, "USDT", "USD", 0) {
				// Amount can never exceed either side's available balance.
				foundBuy := false
				for _, o := range offers[opp.BuyExchange] {
					if o.Price == opp.BuyPrice && o.AvailableAmount >= opp.MaxTradeAmount {
						foundBuy = true
						break
					}
				}
				foundSell := false
				for _, o := range offers[opp.SellExchange] {
					if o.Price == opp.SellPrice && o.AvailableAmount >= opp.MaxTradeAmount {
						foundSell = true
						break
					}
				}
				if !foundBuy || !foundSell {
					return false
				}
			}
			return true
		},
		genOffers(),
	))

	properties.TestingRun(t)
}
