package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/p2pbot/internal/arbitrage"
	"github.com/alanyoungcy/p2pbot/internal/cache/memory"
	"github.com/alanyoungcy/p2pbot/internal/cache/redis"
	"github.com/alanyoungcy/p2pbot/internal/config"
	"github.com/alanyoungcy/p2pbot/internal/domain"
	"github.com/alanyoungcy/p2pbot/internal/notify"
	"github.com/alanyoungcy/p2pbot/internal/registry"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Registry *registry.Registry
	Notifier *notify.Notifier

	// Adapters holds the built exchange adapters, also reachable through the
	// registry. Kept so modes can probe optional capabilities such as
	// domain.HistoryProvider.
	Adapters []domain.Exchange
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
//
// Caches default to in-process TTL stores. When Redis is enabled (required
// for watch mode) the pair and history caches move to Redis and a shared
// sliding-window rate limiter throttles outbound adapter requests.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		pairCache    domain.PairCache
		historyCache domain.HistoryCache
		limiter      domain.RateLimiter
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		pairCache = redis.NewPairCache(redisClient, cfg.Registry.PairsTTL.Duration)
		historyCache = redis.NewHistoryCache(redisClient, cfg.Registry.HistoryTTL.Duration)
		limiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration)
	} else {
		pairCache = memory.NewPairCache(cfg.Registry.PairsTTL.Duration)
		historyCache = memory.NewHistoryCache(cfg.Registry.HistoryTTL.Duration)
	}

	// --- Exchange adapters ---
	adapters, err := registry.BuildAdapters(cfg, registry.AdapterDeps{
		Limiter: limiter,
		History: historyCache,
		Logger:  logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: adapters: %w", err)
	}

	// --- Registry ---
	engine := arbitrage.NewEngine(logger)
	reg := registry.New(registry.Config{
		AdapterTimeout: cfg.Registry.AdapterTimeout.Duration,
	}, engine, pairCache, logger)
	for _, adapter := range adapters {
		reg.Register(adapter.Name(), adapter)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return &Dependencies{
		Registry: reg,
		Notifier: notifier,
		Adapters: adapters,
	}, cleanup, nil
}

// offerFilter translates the scan configuration into the domain filter passed
// to every adapter query.
func offerFilter(cfg *config.Config) domain.OfferFilter {
	return domain.OfferFilter{
		PaymentMethods:    cfg.Scan.PaymentMethods,
		MinAmount:         cfg.Scan.MinAmount,
		MaxAmount:         cfg.Scan.MaxAmount,
		Min24hVolume:      cfg.Scan.Min24hVolume,
		MaxPriceDeviation: cfg.Scan.MaxPriceDeviation,
		MerchantOnly:      cfg.Scan.MerchantOnly,
		MinMerchantRate:   cfg.Arbitrage.MinMerchantRate,
	}
}
