// Package registry holds one adapter per exchange and dispatches aggregate
// queries across all of them. Adapter failures are swallowed at this layer:
// a broken or slow exchange contributes nothing, it never breaks the query.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/p2pbot/internal/arbitrage"
	"github.com/alanyoungcy/p2pbot/internal/domain"
)

const defaultAdapterTimeout = 15 * time.Second

// Config configures the registry.
type Config struct {
	// AdapterTimeout bounds every individual adapter call. Expiry is treated
	// as an adapter failure (empty contribution).
	AdapterTimeout time.Duration
}

// Registry maps exchange names to adapters. It is constructed once at wire
// time and is effectively read-only afterwards.
type Registry struct {
	cfg    Config
	engine *arbitrage.Engine
	pairs  domain.PairCache // optional; nil disables pair caching
	logger *slog.Logger

	mu       sync.RWMutex
	adapters map[string]domain.Exchange
}

// New creates an empty registry. Call Register to add adapters.
func New(cfg Config, engine *arbitrage.Engine, pairCache domain.PairCache, logger *slog.Logger) *Registry {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = defaultAdapterTimeout
	}
	return &Registry{
		cfg:      cfg,
		engine:   engine,
		pairs:    pairCache,
		logger:   logger.With(slog.String("component", "registry")),
		adapters: make(map[string]domain.Exchange),
	}
}

// Register stores an adapter under the lower-cased exchange name.
// Re-registering the same name replaces the prior adapter.
func (r *Registry) Register(name string, adapter domain.Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[strings.ToLower(name)] = adapter
}

// Get returns the adapter registered under name, or ErrUnknownExchange.
func (r *Registry) Get(name string) (domain.Exchange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[strings.ToLower(name)]
	if !ok {
		return nil, domain.ErrUnknownExchange
	}
	return a, nil
}

// Exchanges returns all registered exchange names, sorted.
func (r *Registry) Exchanges() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.adapters)
	sort.Strings(names)
	return names
}

// SupportedPairs returns the crypto codes the named exchange trades against
// fiat. Unknown exchanges and adapter failures both yield an empty slice.
func (r *Registry) SupportedPairs(ctx context.Context, exchange, fiat string) []string {
	adapter, err := r.Get(exchange)
	if err != nil {
		r.logger.WarnContext(ctx, "supported pairs for unknown exchange",
			slog.String("exchange", exchange),
		)
		return nil
	}

	if r.pairs != nil {
		if cached, err := r.pairs.GetPairs(ctx, strings.ToLower(exchange), fiat); err == nil && cached != nil {
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.AdapterTimeout)
	defer cancel()

	cryptos, err := adapter.SupportedCryptocurrencies(callCtx, fiat)
	if err != nil {
		r.logger.WarnContext(ctx, "supported pairs query failed",
			slog.String("exchange", exchange),
			slog.String("fiat", fiat),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if r.pairs != nil && len(cryptos) > 0 {
		if err := r.pairs.SetPairs(ctx, strings.ToLower(exchange), fiat, cryptos); err != nil {
			r.logger.DebugContext(ctx, "pair cache write failed", slog.String("error", err.Error()))
		}
	}
	return cryptos
}

// BestOffers queries every registered adapter concurrently and returns the
// post-filter offers keyed by exchange name. An adapter that errors or times
// out contributes no entry; exchanges yielding zero offers after filtering
// are omitted entirely.
func (r *Registry) BestOffers(
	ctx context.Context,
	fiat, crypto string,
	tradeType domain.TradeType,
	filter domain.OfferFilter,
) map[string][]domain.Offer {
	r.mu.RLock()
	adapters := make(map[string]domain.Exchange, len(r.adapters))
	for name, a := range r.adapters {
		adapters[name] = a
	}
	r.mu.RUnlock()

	var (
		resMu   sync.Mutex
		results = make(map[string][]domain.Offer, len(adapters))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, adapter := range adapters {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.cfg.AdapterTimeout)
			defer cancel()

			offers, err := adapter.P2PPrices(callCtx, fiat, crypto, tradeType, filter)
			if err != nil {
				// Fail soft: this exchange just doesn't participate.
				r.logger.WarnContext(ctx, "offer query failed",
					slog.String("exchange", name),
					slog.String("crypto", crypto),
					slog.String("fiat", fiat),
					slog.String("error", err.Error()),
				)
				return nil
			}

			if filter.MinMerchantRate > 0 {
				offers = lo.Filter(offers, func(o domain.Offer, _ int) bool {
					return o.MonthFinishRate >= filter.MinMerchantRate
				})
			}
			if len(offers) == 0 {
				return nil
			}

			resMu.Lock()
			results[name] = offers
			resMu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()

	return results
}

// Opportunities finds arbitrage opportunities for a fiat currency across all
// registered exchanges. When cryptos is empty it defaults to the union of
// every exchange's supported set. The result is sorted by profit percentage,
// descending, across all cryptos.
//
// The second return value is the total number of offers collected across all
// exchanges and cryptos. Zero opportunities with a healthy offer count is a
// quiet market; zero offers means no exchange answered.
func (r *Registry) Opportunities(
	ctx context.Context,
	fiat string,
	cryptos []string,
	minProfitPercent float64,
	filter domain.OfferFilter,
) ([]domain.ArbitrageOpportunity, int) {
	if len(cryptos) == 0 {
		cryptos = r.allSupported(ctx, fiat)
	}

	var opps []domain.ArbitrageOpportunity
	var offersSeen int
	for _, crypto := range cryptos {
		offers := r.BestOffers(ctx, fiat, crypto, domain.TradeTypeBuy, filter)
		if len(offers) == 0 {
			continue
		}
		for _, exchangeOffers := range offers {
			offersSeen += len(exchangeOffers)
		}
		opps = append(opps, r.engine.Find(offers, crypto, fiat, minProfitPercent)...)
	}

	arbitrage.Rank(opps)

	r.logger.InfoContext(ctx, "arbitrage scan complete",
		slog.String("fiat", fiat),
		slog.Int("cryptos", len(cryptos)),
		slog.Int("offers", offersSeen),
		slog.Int("opportunities", len(opps)),
	)
	return opps, offersSeen
}

// allSupported unions SupportedPairs across every registered exchange.
func (r *Registry) allSupported(ctx context.Context, fiat string) []string {
	var all []string
	for _, exchange := range r.Exchanges() {
		all = append(all, r.SupportedPairs(ctx, exchange, fiat)...)
	}
	all = lo.Uniq(all)
	sort.Strings(all)
	return all
}
