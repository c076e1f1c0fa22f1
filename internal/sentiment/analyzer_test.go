package sentiment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

func trade(price, amount float64, side domain.TradeType) domain.TradeRecord {
	return domain.TradeRecord{
		Price:     price,
		Amount:    amount,
		Volume:    price * amount,
		TradeType: side,
	}
}

func tradesAt(prices ...float64) []domain.TradeRecord {
	out := make([]domain.TradeRecord, 0, len(prices))
	for i, p := range prices {
		side := domain.TradeTypeBuy
		if i%2 == 1 {
			side = domain.TradeTypeSell
		}
		out = append(out, trade(p, 100, side))
	}
	return out
}

func offersWithVolume(n int, available float64) []domain.Offer {
	out := make([]domain.Offer, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Offer{Price: 1, AvailableAmount: available})
	}
	return out
}

func TestAnalyze_EmptyInputs(t *testing.T) {
	t.Parallel()

	trades := tradesAt(1.00, 1.01)
	offers := offersWithVolume(3, 100)

	assert.Nil(t, Analyze("USDT", "USD", nil, offers, offers))
	assert.Nil(t, Analyze("USDT", "USD", trades, nil, offers))
	assert.Nil(t, Analyze("USDT", "USD", trades, offers, nil))
}

func TestAnalyze_BullishMarket(t *testing.T) {
	t.Parallel()

	// Steady 2% rises with buy-dominated trade flow.
	trades := []domain.TradeRecord{
		trade(1.00, 200, domain.TradeTypeBuy),
		trade(1.02, 200, domain.TradeTypeBuy),
		trade(1.0404, 50, domain.TradeTypeSell),
	}
	buy := offersWithVolume(60, 200)
	sell := offersWithVolume(60, 100)

	r := Analyze("USDT", "USD", trades, buy, sell)
	require.NotNil(t, r)

	assert.Equal(t, TrendBullish, r.Trend)
	assert.Equal(t, VolumeIncreasing, r.VolumeTrend)
	assert.Equal(t, ActivityHigh, r.MarketActivity)
	assert.Equal(t, 120, r.ActiveOrders)
	assert.InDelta(t, 404.0/52.02, r.BuySellRatio, 1e-9)
	assert.Greater(t, r.Score, 0.0)
	assert.InDelta(t, r.Confidence, min(abs(r.Score), 100), 1e-9)
}

func TestAnalyze_BearishMarket(t *testing.T) {
	t.Parallel()

	trades := []domain.TradeRecord{
		trade(1.00, 50, domain.TradeTypeBuy),
		trade(0.97, 200, domain.TradeTypeSell),
		trade(0.9409, 200, domain.TradeTypeSell),
	}
	buy := offersWithVolume(10, 50)
	sell := offersWithVolume(10, 200)

	r := Analyze("BTC", "EUR", trades, buy, sell)
	require.NotNil(t, r)

	assert.Equal(t, TrendBearish, r.Trend)
	assert.Equal(t, VolumeDecreasing, r.VolumeTrend)
	assert.Equal(t, ActivityLow, r.MarketActivity)
	assert.Less(t, r.Score, 0.0)
}

func TestAnalyze_NeutralStableMarket(t *testing.T) {
	t.Parallel()

	trades := []domain.TradeRecord{
		trade(1.00, 100, domain.TradeTypeBuy),
		trade(1.001, 100, domain.TradeTypeSell),
		trade(1.00, 100, domain.TradeTypeBuy),
		trade(1.001, 100, domain.TradeTypeSell),
	}
	buy := offersWithVolume(30, 100)
	sell := offersWithVolume(30, 100)

	r := Analyze("USDT", "USD", trades, buy, sell)
	require.NotNil(t, r)

	assert.Equal(t, TrendNeutral, r.Trend)
	assert.Equal(t, VolumeStable, r.VolumeTrend)
	assert.Equal(t, ActivityMedium, r.MarketActivity)
	assert.InDelta(t, 1.0, r.BuySellRatio, 2e-3)
}

// The volume ratio comes from the recorded trade flow, not the live books:
// a one-sided book says nothing about what actually traded.
func TestAnalyze_RatioFollowsTradeVolume(t *testing.T) {
	t.Parallel()

	trades := []domain.TradeRecord{
		trade(1.0, 300, domain.TradeTypeBuy),
		trade(1.0, 100, domain.TradeTypeSell),
	}
	// Books balanced on both sides; they must not influence the ratio.
	buy := offersWithVolume(5, 100)
	sell := offersWithVolume(5, 100)

	r := Analyze("USDT", "USD", trades, buy, sell)
	require.NotNil(t, r)
	assert.InDelta(t, 3.0, r.BuySellRatio, 1e-9)
	assert.Equal(t, VolumeIncreasing, r.VolumeTrend)
}

func TestAnalyze_ZeroSellVolume(t *testing.T) {
	t.Parallel()

	// Buy-only history has no sell volume to compare against, so the ratio
	// stays neutral instead of spiking.
	trades := []domain.TradeRecord{
		trade(1.00, 100, domain.TradeTypeBuy),
		trade(1.00, 100, domain.TradeTypeBuy),
	}
	buy := offersWithVolume(5, 100)
	sell := offersWithVolume(5, 0)

	r := Analyze("USDT", "USD", trades, buy, sell)
	require.NotNil(t, r)
	assert.InDelta(t, 1.0, r.BuySellRatio, 1e-9)
	assert.Equal(t, VolumeStable, r.VolumeTrend)
}

func TestAnalyze_ScoreBounded(t *testing.T) {
	t.Parallel()

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	genTrade := gopter.CombineGens(
		gen.Float64Range(0.01, 1000),
		gen.Float64Range(0, 1e4),
		gen.OneConstOf(domain.TradeTypeBuy, domain.TradeTypeSell),
	).Map(func(vals []interface{}) domain.TradeRecord {
		return trade(vals[0].(float64), vals[1].(float64), vals[2].(domain.TradeType))
	})

	properties.Property("score and confidence stay bounded", prop.ForAll(
		func(trades []domain.TradeRecord, buyVol, sellVol float64) bool {
			r := Analyze("X", "Y", trades,
				offersWithVolume(3, buyVol), offersWithVolume(3, sellVol))
			if r == nil {
				return false
			}
			return r.Score >= -100 && r.Score <= 100 &&
				r.Confidence >= 0 && r.Confidence <= 100
		},
		gen.SliceOfN(6, genTrade),
		gen.Float64Range(0, 1e6),
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
