// Package config defines the top-level configuration for the P2P arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by P2PBOT_* environment variables.
type Config struct {
	OKX       OKXConfig       `toml:"okx"`
	Binance   BinanceConfig   `toml:"binance"`
	Redis     RedisConfig     `toml:"redis"`
	Registry  RegistryConfig  `toml:"registry"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Scan      ScanConfig      `toml:"scan"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// OKXConfig holds OKX P2P API endpoints and credentials.
type OKXConfig struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	SecretKey  string `toml:"secret_key"`
	Passphrase string `toml:"passphrase"`
}

// BinanceConfig holds Binance C2C API parameters. The search endpoints are
// public, so no credentials are involved.
type BinanceConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Pages   int    `toml:"pages"`
}

// RedisConfig holds Redis connection parameters, used in watch mode for
// shared caches and rate limiting.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// RegistryConfig holds exchange registry parameters.
type RegistryConfig struct {
	AdapterTimeout duration `toml:"adapter_timeout"`
	PairsTTL       duration `toml:"pairs_ttl"`
	HistoryTTL     duration `toml:"history_ttl"`
}

// ArbitrageConfig holds opportunity detection parameters.
type ArbitrageConfig struct {
	MinProfitPercent float64 `toml:"min_profit_percent"`
	MinMerchantRate  float64 `toml:"min_merchant_rate"`
}

// ScanConfig holds what to scan and how the offer filter is shaped.
type ScanConfig struct {
	Fiat              string   `toml:"fiat"`
	Cryptos           []string `toml:"cryptos"` // empty means every supported crypto
	TradeType         string   `toml:"trade_type"`
	Interval          duration `toml:"interval"` // watch mode loop period
	PaymentMethods    []string `toml:"payment_methods"`
	MinAmount         float64  `toml:"min_amount"`
	MaxAmount         float64  `toml:"max_amount"`
	Min24hVolume      float64  `toml:"min_24h_volume"`
	MaxPriceDeviation float64  `toml:"max_price_deviation"`
	MerchantOnly      bool     `toml:"merchant_only"`
}

// RateLimitConfig holds the per-exchange outbound request budget, enforced
// through Redis when it is enabled.
type RateLimitConfig struct {
	Requests int      `toml:"requests"`
	Window   duration `toml:"window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		OKX: OKXConfig{
			Enabled: true,
			BaseURL: "https://www.okx.com",
		},
		Binance: BinanceConfig{
			Enabled: true,
			BaseURL: "https://p2p.binance.com",
			Pages:   1,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Registry: RegistryConfig{
			AdapterTimeout: duration{15 * time.Second},
			PairsTTL:       duration{time.Hour},
			HistoryTTL:     duration{5 * time.Minute},
		},
		Arbitrage: ArbitrageConfig{
			MinProfitPercent: 0.5,
			MinMerchantRate:  0.0,
		},
		Scan: ScanConfig{
			Fiat:      "USD",
			Cryptos:   []string{"USDT"},
			TradeType: "BUY",
			Interval:  duration{time.Minute},
		},
		RateLimit: RateLimitConfig{
			Requests: 5,
			Window:   duration{time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"arb_detected", "scan_failed"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"pairs":  true,
	"offers": true,
	"watch":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validTradeTypes enumerates the accepted values for Scan.TradeType.
var validTradeTypes = map[string]bool{
	"BUY":  true,
	"SELL": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, pairs, offers, watch)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// At least one exchange must be enabled.
	if !c.OKX.Enabled && !c.Binance.Enabled {
		errs = append(errs, "at least one exchange must be enabled")
	}

	// OKX credentials must be complete when the adapter is enabled.
	if c.OKX.Enabled {
		if c.OKX.APIKey == "" || c.OKX.SecretKey == "" || c.OKX.Passphrase == "" {
			errs = append(errs, "okx: api_key, secret_key, and passphrase are all required when enabled")
		}
		if c.OKX.BaseURL == "" {
			errs = append(errs, "okx: base_url must not be empty")
		}
	}

	if c.Binance.Enabled {
		if c.Binance.BaseURL == "" {
			errs = append(errs, "binance: base_url must not be empty")
		}
		if c.Binance.Pages < 1 {
			errs = append(errs, "binance: pages must be >= 1")
		}
	}

	// Redis is required in watch mode.
	if strings.ToLower(c.Mode) == "watch" && !c.Redis.Enabled {
		errs = append(errs, "redis: must be enabled for watch mode")
	}
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Registry
	if c.Registry.AdapterTimeout.Duration <= 0 {
		errs = append(errs, "registry: adapter_timeout must be > 0")
	}

	// Arbitrage
	if c.Arbitrage.MinProfitPercent < 0 {
		errs = append(errs, "arbitrage: min_profit_percent must be >= 0")
	}
	if c.Arbitrage.MinMerchantRate < 0 || c.Arbitrage.MinMerchantRate > 1 {
		errs = append(errs, fmt.Sprintf("arbitrage: min_merchant_rate must be within [0, 1], got %v", c.Arbitrage.MinMerchantRate))
	}

	// Scan
	if c.Scan.Fiat == "" {
		errs = append(errs, "scan: fiat must not be empty")
	}
	if !validTradeTypes[strings.ToUpper(c.Scan.TradeType)] {
		errs = append(errs, fmt.Sprintf("scan: unknown trade_type %q (valid: BUY, SELL)", c.Scan.TradeType))
	}
	if c.Scan.MinAmount < 0 || c.Scan.MaxAmount < 0 {
		errs = append(errs, "scan: min_amount and max_amount must be >= 0")
	}
	if c.Scan.MaxAmount > 0 && c.Scan.MinAmount > c.Scan.MaxAmount {
		errs = append(errs, "scan: min_amount must not exceed max_amount")
	}
	if strings.ToLower(c.Mode) == "watch" && c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0 for watch mode")
	}

	// Rate limit
	if c.RateLimit.Requests < 1 {
		errs = append(errs, "rate_limit: requests must be >= 1")
	}
	if c.RateLimit.Window.Duration <= 0 {
		errs = append(errs, "rate_limit: window must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
