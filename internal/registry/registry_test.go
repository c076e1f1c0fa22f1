package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/p2pbot/internal/arbitrage"
	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// mockExchange delegates to per-call functions so each test wires exactly the
// behavior it needs.
type mockExchange struct {
	name      string
	supported func(ctx context.Context, fiat string) ([]string, error)
	prices    func(ctx context.Context, fiat, crypto string, tt domain.TradeType, f domain.OfferFilter) ([]domain.Offer, error)
}

func (m *mockExchange) Name() string { return m.name }

func (m *mockExchange) SupportedCryptocurrencies(ctx context.Context, fiat string) ([]string, error) {
	if m.supported == nil {
		return nil, nil
	}
	return m.supported(ctx, fiat)
}

func (m *mockExchange) P2PPrices(ctx context.Context, fiat, crypto string, tt domain.TradeType, f domain.OfferFilter) ([]domain.Offer, error) {
	if m.prices == nil {
		return nil, nil
	}
	return m.prices(ctx, fiat, crypto, tt, f)
}

func staticOffers(offers ...domain.Offer) func(context.Context, string, string, domain.TradeType, domain.OfferFilter) ([]domain.Offer, error) {
	return func(context.Context, string, string, domain.TradeType, domain.OfferFilter) ([]domain.Offer, error) {
		return offers, nil
	}
}

func offer(advertiser string, price, available, finishRate float64) domain.Offer {
	return domain.Offer{
		Advertiser:      advertiser,
		Price:           price,
		AvailableAmount: available,
		MonthFinishRate: finishRate,
		Crypto:          "USDT",
		Fiat:            "USD",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T, adapters ...domain.Exchange) *Registry {
	t.Helper()
	r := New(Config{AdapterTimeout: time.Second}, arbitrage.NewEngine(testLogger()), nil, testLogger())
	for _, a := range adapters {
		r.Register(a.Name(), a)
	}
	return r
}

func TestRegistry_GetAndExchanges(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t,
		&mockExchange{name: "OKX"},
		&mockExchange{name: "binance"},
	)

	// Lookup is case-insensitive.
	a, err := r.Get("okx")
	require.NoError(t, err)
	assert.Equal(t, "OKX", a.Name())

	_, err = r.Get("bybit")
	assert.ErrorIs(t, err, domain.ErrUnknownExchange)

	assert.Equal(t, []string{"binance", "okx"}, r.Exchanges())
}

func TestRegistry_BestOffers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	okx := &mockExchange{name: "okx", prices: staticOffers(
		offer("a", 1.00, 100, 0.99),
		offer("b", 1.01, 50, 0.80),
	)}
	binance := &mockExchange{name: "binance", prices: staticOffers(
		offer("c", 1.02, 200, 0.95),
	)}

	r := newTestRegistry(t, okx, binance)

	offers := r.BestOffers(ctx, "USD", "USDT", domain.TradeTypeBuy, domain.OfferFilter{})
	require.Len(t, offers, 2)
	assert.Len(t, offers["okx"], 2)
	assert.Len(t, offers["binance"], 1)
}

func TestRegistry_BestOffers_FailSoft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	broken := &mockExchange{name: "broken", prices: func(context.Context, string, string, domain.TradeType, domain.OfferFilter) ([]domain.Offer, error) {
		return nil, errors.New("connection refused")
	}}
	working := &mockExchange{name: "working", prices: staticOffers(offer("a", 1.00, 100, 0.99))}

	r := newTestRegistry(t, broken, working)

	offers := r.BestOffers(ctx, "USD", "USDT", domain.TradeTypeBuy, domain.OfferFilter{})
	require.Len(t, offers, 1)
	assert.Contains(t, offers, "working")
}

func TestRegistry_BestOffers_OmitsEmptyExchanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empty := &mockExchange{name: "empty", prices: staticOffers()}
	working := &mockExchange{name: "working", prices: staticOffers(offer("a", 1.00, 100, 0.99))}

	r := newTestRegistry(t, empty, working)

	offers := r.BestOffers(ctx, "USD", "USDT", domain.TradeTypeBuy, domain.OfferFilter{})
	assert.Len(t, offers, 1)
	assert.NotContains(t, offers, "empty")
}

func TestRegistry_BestOffers_MinMerchantRate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	x := &mockExchange{name: "x", prices: staticOffers(
		offer("good", 1.00, 100, 0.98),
		offer("bad", 1.00, 100, 0.50),
	)}

	r := newTestRegistry(t, x)

	offers := r.BestOffers(ctx, "USD", "USDT", domain.TradeTypeBuy, domain.OfferFilter{MinMerchantRate: 0.9})
	require.Len(t, offers["x"], 1)
	assert.Equal(t, "good", offers["x"][0].Advertiser)
}

func TestRegistry_BestOffers_SlowAdapterTimesOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	slow := &mockExchange{name: "slow", prices: func(ctx context.Context, _, _ string, _ domain.TradeType, _ domain.OfferFilter) ([]domain.Offer, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []domain.Offer{offer("late", 1.00, 100, 0.99)}, nil
		}
	}}
	fast := &mockExchange{name: "fast", prices: staticOffers(offer("a", 1.00, 100, 0.99))}

	r := New(Config{AdapterTimeout: 50 * time.Millisecond}, arbitrage.NewEngine(testLogger()), nil, testLogger())
	r.Register("slow", slow)
	r.Register("fast", fast)

	start := time.Now()
	offers := r.BestOffers(ctx, "USD", "USDT", domain.TradeTypeBuy, domain.OfferFilter{})
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, offers, 1)
	assert.Contains(t, offers, "fast")
}

func TestRegistry_SupportedPairs_UsesCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	calls := 0
	x := &mockExchange{name: "x", supported: func(context.Context, string) ([]string, error) {
		calls++
		return []string{"USDT", "BTC"}, nil
	}}

	cache := &stubPairCache{}
	r := New(Config{AdapterTimeout: time.Second}, arbitrage.NewEngine(testLogger()), cache, testLogger())
	r.Register("x", x)

	got := r.SupportedPairs(ctx, "x", "USD")
	assert.Equal(t, []string{"USDT", "BTC"}, got)
	assert.Equal(t, 1, calls)

	again := r.SupportedPairs(ctx, "x", "USD")
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)
}

func TestRegistry_SupportedPairs_UnknownExchange(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	assert.Empty(t, r.SupportedPairs(context.Background(), "nowhere", "USD"))
}

func TestRegistry_Opportunities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cheap := &mockExchange{name: "cheap", prices: staticOffers(offer("seller", 1.00, 100, 0.99))}
	dear := &mockExchange{name: "dear", prices: staticOffers(offer("buyer", 1.05, 80, 0.97))}

	r := newTestRegistry(t, cheap, dear)

	opps, offersSeen := r.Opportunities(ctx, "USD", []string{"USDT"}, 1.0, domain.OfferFilter{})
	require.NotEmpty(t, opps)
	assert.Equal(t, 2, offersSeen)

	best := opps[0]
	assert.Equal(t, "cheap", best.BuyExchange)
	assert.Equal(t, "dear", best.SellExchange)
	assert.InDelta(t, 5.0, best.ProfitPercent, 1e-9)
	assert.InDelta(t, 80, best.MaxTradeAmount, 1e-9)

	// Ranked descending.
	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].ProfitPercent, opps[i].ProfitPercent)
	}
}

func TestRegistry_Opportunities_DefaultsToAllSupported(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var queried []string
	x := &mockExchange{
		name: "x",
		supported: func(context.Context, string) ([]string, error) {
			return []string{"USDT", "BTC"}, nil
		},
		prices: func(_ context.Context, _, crypto string, _ domain.TradeType, _ domain.OfferFilter) ([]domain.Offer, error) {
			queried = append(queried, crypto)
			return nil, nil
		},
	}

	r := newTestRegistry(t, x)

	opps, offersSeen := r.Opportunities(ctx, "USD", nil, 1.0, domain.OfferFilter{})
	assert.Empty(t, opps)
	assert.Zero(t, offersSeen)
	assert.ElementsMatch(t, []string{"USDT", "BTC"}, queried)
}

type stubPairCache struct {
	pairs map[string][]string
}

func (s *stubPairCache) SetPairs(_ context.Context, exchange, fiat string, cryptos []string) error {
	if s.pairs == nil {
		s.pairs = make(map[string][]string)
	}
	s.pairs[exchange+":"+fiat] = cryptos
	return nil
}

func (s *stubPairCache) GetPairs(_ context.Context, exchange, fiat string) ([]string, error) {
	got, ok := s.pairs[exchange+":"+fiat]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return got, nil
}
