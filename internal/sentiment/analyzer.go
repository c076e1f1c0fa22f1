// Package sentiment derives a numeric market read for one trading pair from
// recent trades and the current offer books. Pure computation, no I/O.
package sentiment

import (
	"math"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// Trend labels the short-term price direction.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// VolumeTrend labels the buy/sell volume balance.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "INCREASING"
	VolumeDecreasing VolumeTrend = "DECREASING"
	VolumeStable     VolumeTrend = "STABLE"
)

// Activity buckets the depth of the live order books.
type Activity string

const (
	ActivityHigh   Activity = "HIGH"
	ActivityMedium Activity = "MEDIUM"
	ActivityLow    Activity = "LOW"
)

// Report is the full sentiment read for one pair.
type Report struct {
	Crypto         string
	Fiat           string
	PriceMomentum  float64 // mean successive relative price change
	Trend          Trend
	BuySellRatio   float64 // traded BUY volume over SELL volume
	VolumeTrend    VolumeTrend
	ActiveOrders   int
	MarketActivity Activity
	Score          float64 // -100..100, positive is bullish
	Confidence     float64 // 0..100
}

const (
	trendThreshold = 0.01 // 1% momentum either way

	ratioIncreasing = 1.1
	ratioDecreasing = 0.9

	highActivityOrders   = 100
	mediumActivityOrders = 50
)

// Analyze computes the sentiment report for a pair. It returns nil when any
// input set is empty: a read off partial data would be noise, not signal.
func Analyze(crypto, fiat string, trades []domain.TradeRecord, buyOffers, sellOffers []domain.Offer) *Report {
	if len(trades) == 0 || len(buyOffers) == 0 || len(sellOffers) == 0 {
		return nil
	}

	momentum := priceMomentum(trades)
	ratio := buySellRatio(trades)
	orders := len(buyOffers) + len(sellOffers)

	score := momentum*50 + (ratio-1)*30 + math.Min(float64(orders)/100, 1)*20
	score = clamp(score, -100, 100)

	return &Report{
		Crypto:         crypto,
		Fiat:           fiat,
		PriceMomentum:  momentum,
		Trend:          trendOf(momentum),
		BuySellRatio:   ratio,
		VolumeTrend:    volumeTrendOf(ratio),
		ActiveOrders:   orders,
		MarketActivity: activityOf(orders),
		Score:          score,
		Confidence:     math.Min(math.Abs(score), 100),
	}
}

// priceMomentum is the mean of successive relative price changes across the
// trade history, in chronological input order.
func priceMomentum(trades []domain.TradeRecord) float64 {
	if len(trades) < 2 {
		return 0
	}
	var sum float64
	var n int
	for i := 1; i < len(trades); i++ {
		prev := trades[i-1].Price
		if prev <= 0 {
			continue
		}
		sum += (trades[i].Price - prev) / prev
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// buySellRatio is total BUY trade volume over SELL trade volume across the
// recent history. With no sell volume there is nothing to compare against,
// so the ratio falls back to the neutral 1.
func buySellRatio(trades []domain.TradeRecord) float64 {
	var buyVol, sellVol float64
	for _, t := range trades {
		switch t.TradeType {
		case domain.TradeTypeBuy:
			buyVol += t.Volume
		case domain.TradeTypeSell:
			sellVol += t.Volume
		}
	}
	if sellVol <= 0 {
		return 1
	}
	return buyVol / sellVol
}

func trendOf(momentum float64) Trend {
	switch {
	case momentum > trendThreshold:
		return TrendBullish
	case momentum < -trendThreshold:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

func volumeTrendOf(ratio float64) VolumeTrend {
	switch {
	case ratio > ratioIncreasing:
		return VolumeIncreasing
	case ratio < ratioDecreasing:
		return VolumeDecreasing
	default:
		return VolumeStable
	}
}

func activityOf(orders int) Activity {
	switch {
	case orders > highActivityOrders:
		return ActivityHigh
	case orders > mediumActivityOrders:
		return ActivityMedium
	default:
		return ActivityLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
