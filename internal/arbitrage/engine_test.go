package arbitrage

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func offer(price, available float64) domain.Offer {
	return domain.Offer{
		Advertiser:      "trader",
		Price:           price,
		AvailableAmount: available,
		Crypto:          "USDT",
		Fiat:            "USD",
		MonthFinishRate: 0.97,
		MerchantRisk:    domain.MerchantRisk{Score: 85, Level: domain.RiskLevelLow},
	}
}

func TestEngine_Find_CrossExchange(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"binance": {offer(100, 5)},
		"okx":     {offer(103, 3)},
	}

	opps := e.Find(offers, "USDT", "USD", 1.0)

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, "binance", opp.BuyExchange)
	assert.Equal(t, "okx", opp.SellExchange)
	assert.InDelta(t, 3.0, opp.ProfitPercent, 1e-9)
	assert.InDelta(t, 3.0, opp.MaxTradeAmount, 1e-9)
	assert.Equal(t, "USDT", opp.Crypto)
	assert.Equal(t, "USD", opp.Fiat)
	assert.NotEmpty(t, opp.ID)
	assert.False(t, opp.DetectedAt.IsZero())
}

func TestEngine_Find_BelowThreshold(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"binance": {offer(100, 5)},
		"okx":     {offer(100.4, 3)},
	}

	// 0.4% < 1.0% threshold.
	assert.Empty(t, e.Find(offers, "USDT", "USD", 1.0))
}

func TestEngine_Find_SelfExchange(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"okx": {offer(100, 10), offer(105, 4)},
	}

	opps := e.Find(offers, "BTC", "EUR", 1.0)

	require.Len(t, opps, 1)
	assert.Equal(t, "okx", opps[0].BuyExchange)
	assert.Equal(t, "okx", opps[0].SellExchange)
	assert.InDelta(t, 5.0, opps[0].ProfitPercent, 1e-9)
	assert.InDelta(t, 4.0, opps[0].MaxTradeAmount, 1e-9)
}

func TestEngine_Find_EmptyInput(t *testing.T) {
	t.Parallel()

	e := testEngine()

	assert.Empty(t, e.Find(nil, "USDT", "USD", 0.5))
	assert.Empty(t, e.Find(map[string][]domain.Offer{}, "USDT", "USD", 0.5))
	assert.Empty(t, e.Find(map[string][]domain.Offer{"okx": {}}, "USDT", "USD", 0.5))
}

func TestEngine_Find_RankedByProfitDescending(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"a": {offer(100, 1), offer(98, 1)},
		"b": {offer(104, 1), offer(110, 1)},
	}

	opps := e.Find(offers, "ETH", "USD", 1.0)
	require.NotEmpty(t, opps)

	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].ProfitPercent, opps[i].ProfitPercent)
	}
}

func TestEngine_Find_ZeroPriceSkipped(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"a": {offer(0, 5), offer(100, 5)},
		"b": {offer(103, 3)},
	}

	// The zero-price offer must be skipped as a buy candidate, never cause a
	// division fault. It is still a valid (if absurd) sell candidate.
	opps := e.Find(offers, "USDT", "USD", 1.0)
	for _, opp := range opps {
		assert.Greater(t, opp.BuyPrice, 0.0)
	}
}

func TestEngine_Find_ZeroAvailableAmountTolerated(t *testing.T) {
	t.Parallel()

	e := testEngine()
	offers := map[string][]domain.Offer{
		"a": {offer(100, 0)},
		"b": {offer(110, 7)},
	}

	opps := e.Find(offers, "USDT", "USD", 1.0)
	require.Len(t, opps, 1)
	assert.Zero(t, opps[0].MaxTradeAmount)
}

func TestEngine_Find_MerchantSummaries(t *testing.T) {
	t.Parallel()

	buy := offer(100, 5)
	buy.Advertiser = "alice"
	buy.MonthFinishRate = 0.91
	buy.MerchantRisk.Score = 72

	sell := offer(105, 2)
	sell.Advertiser = "bob"
	sell.MonthFinishRate = 0.99
	sell.MerchantRisk.Score = 93

	e := testEngine()
	opps := e.Find(map[string][]domain.Offer{
		"a": {buy},
		"b": {sell},
	}, "USDT", "USD", 1.0)

	require.Len(t, opps, 1) // only a->b clears the threshold
	top := opps[0]
	assert.Equal(t, domain.MerchantSummary{Name: "alice", CompletionRate: 0.91, RiskScore: 72}, top.BuyMerchant)
	assert.Equal(t, domain.MerchantSummary{Name: "bob", CompletionRate: 0.99, RiskScore: 93}, top.SellMerchant)
}
