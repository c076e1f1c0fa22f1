package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

type fakeSender struct {
	name   string
	sendFn func(ctx context.Context, title, message string) error
	sent   []string
}

func (f *fakeSender) Send(ctx context.Context, title, message string) error {
	if f.sendFn != nil {
		if err := f.sendFn(ctx, title, message); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, title)
	return nil
}

func (f *fakeSender) Name() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_EventFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{EventArbDetected}, testLogger())

	require.NoError(t, n.Notify(ctx, EventScanFailed, "skipped", "body"))
	assert.Empty(t, s.sent)

	require.NoError(t, n.Notify(ctx, EventArbDetected, "delivered", "body"))
	assert.Equal(t, []string{"delivered"}, s.sent)
}

func TestNotifier_EmptyFilterAllowsAll(t *testing.T) {
	t.Parallel()

	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, nil, testLogger())

	require.NoError(t, n.Notify(context.Background(), "anything", "title", "body"))
	assert.Len(t, s.sent, 1)
}

func TestNotifier_PartialFailureStillDelivers(t *testing.T) {
	t.Parallel()

	broken := &fakeSender{
		name:   "broken",
		sendFn: func(context.Context, string, string) error { return errors.New("boom") },
	}
	working := &fakeSender{name: "working"}
	n := NewNotifier([]Sender{broken, working}, nil, testLogger())

	err := n.NotifyAll(context.Background(), "title", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, working.sent, 1)
}

func TestFormatOpportunities(t *testing.T) {
	t.Parallel()

	opps := []domain.ArbitrageOpportunity{
		{
			Crypto: "USDT", Fiat: "USD",
			BuyExchange: "okx", SellExchange: "binance",
			BuyPrice: 1.00, SellPrice: 1.03,
			ProfitPercent:  3.0,
			MaxTradeAmount: 500,
			BuyMerchant:    domain.MerchantSummary{Name: "alpha", RiskScore: 92},
			SellMerchant:   domain.MerchantSummary{Name: "beta", RiskScore: 88},
		},
	}

	title, message := FormatOpportunities(opps)
	assert.Equal(t, "Arbitrage: USDT/USD up to 3.00%", title)
	assert.Contains(t, message, "buy okx @ 1.0000 -> sell binance @ 1.0300")
	assert.Contains(t, message, "alpha")
	assert.Contains(t, message, "beta")
}

func TestFormatOpportunities_CapsList(t *testing.T) {
	t.Parallel()

	opps := make([]domain.ArbitrageOpportunity, 8)
	for i := range opps {
		opps[i] = domain.ArbitrageOpportunity{
			Crypto: "USDT", Fiat: "USD", ProfitPercent: float64(8 - i),
		}
	}

	_, message := FormatOpportunities(opps)
	assert.Equal(t, maxAlertOpportunities, strings.Count(message, ". buy"))
	assert.Contains(t, message, "and 3 more")
}

func TestFormatOpportunities_Empty(t *testing.T) {
	t.Parallel()

	title, message := FormatOpportunities(nil)
	assert.Empty(t, title)
	assert.Empty(t, message)
}
