package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies P2PBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known P2PBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── OKX ──
	setBool(&cfg.OKX.Enabled, "P2PBOT_OKX_ENABLED")
	setStr(&cfg.OKX.BaseURL, "P2PBOT_OKX_BASE_URL")
	setStr(&cfg.OKX.APIKey, "P2PBOT_OKX_API_KEY")
	setStr(&cfg.OKX.SecretKey, "P2PBOT_OKX_SECRET_KEY")
	setStr(&cfg.OKX.Passphrase, "P2PBOT_OKX_PASSPHRASE")

	// ── Binance ──
	setBool(&cfg.Binance.Enabled, "P2PBOT_BINANCE_ENABLED")
	setStr(&cfg.Binance.BaseURL, "P2PBOT_BINANCE_BASE_URL")
	setInt(&cfg.Binance.Pages, "P2PBOT_BINANCE_PAGES")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "P2PBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "P2PBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "P2PBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "P2PBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "P2PBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "P2PBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "P2PBOT_REDIS_TLS_ENABLED")

	// ── Registry ──
	setDuration(&cfg.Registry.AdapterTimeout, "P2PBOT_REGISTRY_ADAPTER_TIMEOUT")
	setDuration(&cfg.Registry.PairsTTL, "P2PBOT_REGISTRY_PAIRS_TTL")
	setDuration(&cfg.Registry.HistoryTTL, "P2PBOT_REGISTRY_HISTORY_TTL")

	// ── Arbitrage ──
	setFloat64(&cfg.Arbitrage.MinProfitPercent, "P2PBOT_ARBITRAGE_MIN_PROFIT_PERCENT")
	setFloat64(&cfg.Arbitrage.MinMerchantRate, "P2PBOT_ARBITRAGE_MIN_MERCHANT_RATE")

	// ── Scan ──
	setStr(&cfg.Scan.Fiat, "P2PBOT_SCAN_FIAT")
	setStringSlice(&cfg.Scan.Cryptos, "P2PBOT_SCAN_CRYPTOS")
	setStr(&cfg.Scan.TradeType, "P2PBOT_SCAN_TRADE_TYPE")
	setDuration(&cfg.Scan.Interval, "P2PBOT_SCAN_INTERVAL")
	setStringSlice(&cfg.Scan.PaymentMethods, "P2PBOT_SCAN_PAYMENT_METHODS")
	setFloat64(&cfg.Scan.MinAmount, "P2PBOT_SCAN_MIN_AMOUNT")
	setFloat64(&cfg.Scan.MaxAmount, "P2PBOT_SCAN_MAX_AMOUNT")
	setFloat64(&cfg.Scan.Min24hVolume, "P2PBOT_SCAN_MIN_24H_VOLUME")
	setFloat64(&cfg.Scan.MaxPriceDeviation, "P2PBOT_SCAN_MAX_PRICE_DEVIATION")
	setBool(&cfg.Scan.MerchantOnly, "P2PBOT_SCAN_MERCHANT_ONLY")

	// ── Rate limit ──
	setInt(&cfg.RateLimit.Requests, "P2PBOT_RATE_LIMIT_REQUESTS")
	setDuration(&cfg.RateLimit.Window, "P2PBOT_RATE_LIMIT_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "P2PBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "P2PBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "P2PBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "P2PBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "P2PBOT_MODE")
	setStr(&cfg.LogLevel, "P2PBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
