package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alanyoungcy/p2pbot/internal/domain"
	"github.com/alanyoungcy/p2pbot/internal/notify"
	"github.com/alanyoungcy/p2pbot/internal/sentiment"
)

// ScanMode runs one arbitrage scan over the configured fiat and cryptos and
// prints a ranked report.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	opps, offersSeen := deps.Registry.Opportunities(
		ctx,
		a.cfg.Scan.Fiat,
		a.cfg.Scan.Cryptos,
		a.cfg.Arbitrage.MinProfitPercent,
		offerFilter(a.cfg),
	)
	if offersSeen == 0 {
		fmt.Printf("no offers collected for %s from any exchange\n", a.cfg.Scan.Fiat)
		return ctx.Err()
	}

	printOpportunities(os.Stdout, a.cfg.Scan.Fiat, opps)
	return ctx.Err()
}

// PairsMode lists the cryptos each exchange supports against the configured
// fiat currency.
func (a *App) PairsMode(ctx context.Context, deps *Dependencies) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXCHANGE\tCRYPTOS")
	for _, exchange := range deps.Registry.Exchanges() {
		cryptos := deps.Registry.SupportedPairs(ctx, exchange, a.cfg.Scan.Fiat)
		if len(cryptos) == 0 {
			fmt.Fprintf(w, "%s\t(none)\n", exchange)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", exchange, strings.Join(cryptos, ", "))
	}
	return w.Flush()
}

// OffersMode prints the current best offers for one pair and side across all
// exchanges, followed by a market sentiment read when trade history is
// available.
func (a *App) OffersMode(ctx context.Context, deps *Dependencies) error {
	fiat := a.cfg.Scan.Fiat
	crypto := firstCrypto(a.cfg.Scan.Cryptos)
	tradeType := domain.TradeType(strings.ToUpper(a.cfg.Scan.TradeType))
	filter := offerFilter(a.cfg)

	byExchange := deps.Registry.BestOffers(ctx, fiat, crypto, tradeType, filter)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s offers for %s/%s\n", tradeType, crypto, fiat)
	fmt.Fprintln(w, "EXCHANGE\tADVERTISER\tPRICE\tAVAILABLE\tRISK")
	for _, exchange := range sortedKeys(byExchange) {
		for _, o := range byExchange[exchange] {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.2f\t%s (%.0f)\n",
				exchange, o.Advertiser, o.Price, o.AvailableAmount,
				o.MerchantRisk.Level, o.MerchantRisk.Score)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	a.printSentiment(ctx, deps, fiat, crypto, byExchange, tradeType, filter)
	return ctx.Err()
}

// printSentiment runs the sentiment analyzer against the first exchange that
// exposes trade history. Missing history just skips the section.
func (a *App) printSentiment(
	ctx context.Context,
	deps *Dependencies,
	fiat, crypto string,
	offers map[string][]domain.Offer,
	tradeType domain.TradeType,
	filter domain.OfferFilter,
) {
	var trades []domain.TradeRecord
	for _, adapter := range deps.Adapters {
		hp, ok := adapter.(domain.HistoryProvider)
		if !ok {
			continue
		}
		got, err := hp.HistoricalPrices(ctx, fiat, crypto, 1)
		if err != nil || len(got) == 0 {
			continue
		}
		trades = got
		break
	}
	if len(trades) == 0 {
		return
	}

	// The analyzer needs both sides of the book; fetch the opposite side.
	opposite := domain.TradeTypeSell
	if tradeType == domain.TradeTypeSell {
		opposite = domain.TradeTypeBuy
	}
	otherSide := deps.Registry.BestOffers(ctx, fiat, crypto, opposite, filter)

	buys, sells := flatten(offers), flatten(otherSide)
	if tradeType == domain.TradeTypeSell {
		buys, sells = sells, buys
	}

	report := sentiment.Analyze(crypto, fiat, trades, buys, sells)
	if report == nil {
		return
	}

	fmt.Printf("\nsentiment %s/%s: %s, volume %s, activity %s (score %.1f, confidence %.1f)\n",
		report.Crypto, report.Fiat,
		report.Trend, report.VolumeTrend, report.MarketActivity,
		report.Score, report.Confidence)
}

// WatchMode scans on an interval and pushes alerts for detected
// opportunities. It returns when the context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Scan.Interval.Duration
	a.logger.InfoContext(ctx, "watch loop starting",
		slog.String("fiat", a.cfg.Scan.Fiat),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First scan immediately, then on every tick.
	a.watchTick(ctx, deps)
	for {
		select {
		case <-ctx.Done():
			a.logger.InfoContext(ctx, "watch loop stopped")
			return ctx.Err()
		case <-ticker.C:
			a.watchTick(ctx, deps)
		}
	}
}

// scanFailureThreshold is the number of consecutive ticks with zero offers
// from every exchange before watch mode raises a scan failure alert. The
// alert fires once per outage, not on every further empty tick.
const scanFailureThreshold = 3

// watchTick runs one scan iteration and dispatches alerts.
func (a *App) watchTick(ctx context.Context, deps *Dependencies) {
	opps, offersSeen := deps.Registry.Opportunities(
		ctx,
		a.cfg.Scan.Fiat,
		a.cfg.Scan.Cryptos,
		a.cfg.Arbitrage.MinProfitPercent,
		offerFilter(a.cfg),
	)

	if offersSeen == 0 {
		a.emptyScans++
		a.logger.WarnContext(ctx, "scan returned no offers",
			slog.String("fiat", a.cfg.Scan.Fiat),
			slog.Int("consecutive", a.emptyScans),
		)
		if a.emptyScans == scanFailureThreshold {
			title := fmt.Sprintf("Scan degraded: no offers for %s", a.cfg.Scan.Fiat)
			message := fmt.Sprintf("%d consecutive scans collected zero offers from every exchange", a.emptyScans)
			if err := deps.Notifier.Notify(ctx, notify.EventScanFailed, title, message); err != nil {
				a.logger.WarnContext(ctx, "alert delivery failed", slog.String("error", err.Error()))
			}
		}
		return
	}
	a.emptyScans = 0

	if len(opps) == 0 {
		return
	}

	title, message := notify.FormatOpportunities(opps)
	if err := deps.Notifier.Notify(ctx, notify.EventArbDetected, title, message); err != nil {
		a.logger.WarnContext(ctx, "alert delivery failed", slog.String("error", err.Error()))
	}
}

// printOpportunities renders the ranked scan result as a table.
func printOpportunities(out *os.File, fiat string, opps []domain.ArbitrageOpportunity) {
	if len(opps) == 0 {
		fmt.Fprintf(out, "no arbitrage opportunities found for %s\n", fiat)
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCRYPTO\tBUY\tSELL\tPROFIT\tMAX AMOUNT\tBUY MERCHANT\tSELL MERCHANT")
	for i, o := range opps {
		fmt.Fprintf(w, "%d\t%s\t%s @ %.4f\t%s @ %.4f\t%.2f%%\t%.2f\t%s (%.0f)\t%s (%.0f)\n",
			i+1, o.Crypto,
			o.BuyExchange, o.BuyPrice,
			o.SellExchange, o.SellPrice,
			o.ProfitPercent, o.MaxTradeAmount,
			o.BuyMerchant.Name, o.BuyMerchant.RiskScore,
			o.SellMerchant.Name, o.SellMerchant.RiskScore,
		)
	}
	_ = w.Flush()
}

func firstCrypto(cryptos []string) string {
	if len(cryptos) == 0 {
		return "USDT"
	}
	return cryptos[0]
}

func flatten(byExchange map[string][]domain.Offer) []domain.Offer {
	var all []domain.Offer
	for _, offers := range byExchange {
		all = append(all, offers...)
	}
	return all
}

func sortedKeys(m map[string][]domain.Offer) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
