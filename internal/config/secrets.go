package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// OKX
	out.OKX = cfg.OKX
	redact(&out.OKX.APIKey)
	redact(&out.OKX.SecretKey)
	redact(&out.OKX.Passphrase)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Scan.Cryptos != nil {
		out.Scan.Cryptos = make([]string, len(cfg.Scan.Cryptos))
		copy(out.Scan.Cryptos, cfg.Scan.Cryptos)
	}
	if cfg.Scan.PaymentMethods != nil {
		out.Scan.PaymentMethods = make([]string, len(cfg.Scan.PaymentMethods))
		copy(out.Scan.PaymentMethods, cfg.Scan.PaymentMethods)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
