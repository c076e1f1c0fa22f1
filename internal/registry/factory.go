package registry

import (
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/p2pbot/internal/config"
	"github.com/alanyoungcy/p2pbot/internal/domain"
	"github.com/alanyoungcy/p2pbot/internal/exchange/binance"
	"github.com/alanyoungcy/p2pbot/internal/exchange/okx"
)

// AdapterDeps carries the shared infrastructure handed to every adapter
// constructor. Limiter and History may be nil; adapters treat both as
// optional.
type AdapterDeps struct {
	Limiter domain.RateLimiter
	History domain.HistoryCache
	Logger  *slog.Logger
}

// adapterFactory builds one exchange adapter from the scanner configuration.
type adapterFactory struct {
	enabled func(cfg *config.Config) bool
	build   func(cfg *config.Config, deps AdapterDeps) (domain.Exchange, error)
}

// factories is the typed construction table. Adding an exchange means adding
// a row here; nothing is discovered by reflection.
var factories = map[string]adapterFactory{
	okx.Name: {
		enabled: func(cfg *config.Config) bool { return cfg.OKX.Enabled },
		build: func(cfg *config.Config, deps AdapterDeps) (domain.Exchange, error) {
			return okx.New(okx.Config{
				BaseURL:    cfg.OKX.BaseURL,
				APIKey:     cfg.OKX.APIKey,
				SecretKey:  cfg.OKX.SecretKey,
				Passphrase: cfg.OKX.Passphrase,
			}, deps.Limiter, deps.History, deps.Logger)
		},
	},
	binance.Name: {
		enabled: func(cfg *config.Config) bool { return cfg.Binance.Enabled },
		build: func(cfg *config.Config, deps AdapterDeps) (domain.Exchange, error) {
			return binance.New(binance.Config{
				BaseURL: cfg.Binance.BaseURL,
				Pages:   cfg.Binance.Pages,
			}, deps.Limiter, deps.Logger), nil
		},
	},
}

// BuildAdapters constructs every enabled exchange adapter. A misconfigured
// adapter is a hard error: the operator asked for it, so silently skipping
// it would hide the mistake.
func BuildAdapters(cfg *config.Config, deps AdapterDeps) ([]domain.Exchange, error) {
	adapters := make([]domain.Exchange, 0, len(factories))
	for name, f := range factories {
		if !f.enabled(cfg) {
			continue
		}
		adapter, err := f.build(cfg, deps)
		if err != nil {
			return nil, fmt.Errorf("build %s adapter: %w", name, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
