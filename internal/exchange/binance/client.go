// Package binance implements the Binance C2C exchange adapter. The search
// endpoints are public, so no request signing is involved; like every other
// adapter, remote failures are recovered locally to empty results.
package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

const (
	// Name is the exchange identifier this adapter registers under.
	Name = "binance"

	searchPath           = "/bapi/c2c/v2/friendly/c2c/adv/search"
	filterConditionsPath = "/bapi/c2c/v2/friendly/c2c/adv/filter-conditions"

	requestTimeout = 30 * time.Second
	pageRows       = 20
)

// defaultAssets backs SupportedCryptocurrencies when the filter-conditions
// endpoint is unreachable. These assets trade against every major fiat.
var defaultAssets = []string{"USDT", "BTC", "ETH", "BNB", "FDUSD"}

// Config holds the adapter's connection parameters.
type Config struct {
	BaseURL string // e.g. "https://p2p.binance.com"
	Pages   int    // advertisement pages to fetch per query, default 1
}

// Client is the Binance C2C REST adapter.
type Client struct {
	baseURL    string
	pages      int
	httpClient *http.Client
	limiter    domain.RateLimiter // optional
	logger     *slog.Logger
}

// New creates a Binance adapter. The C2C API needs no credentials.
func New(cfg Config, limiter domain.RateLimiter, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://p2p.binance.com"
	}
	if cfg.Pages <= 0 {
		cfg.Pages = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pages:      cfg.Pages,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		logger:     logger.With(slog.String("exchange", Name)),
	}
}

// Name returns the exchange identifier.
func (c *Client) Name() string { return Name }

// SupportedCryptocurrencies returns the assets tradable against fiat. When
// the discovery endpoint fails, a static default list is returned so a
// transient outage does not blank the whole exchange.
func (c *Client) SupportedCryptocurrencies(ctx context.Context, fiat string) ([]string, error) {
	body := map[string]string{"fiat": fiat}
	data, err := c.doPost(ctx, filterConditionsPath, body)
	if err != nil {
		c.logger.WarnContext(ctx, "filter conditions request failed, using defaults",
			slog.String("fiat", fiat),
			slog.String("error", err.Error()),
		)
		return append([]string(nil), defaultAssets...), nil
	}

	var conditions apiFilterConditions
	if err := json.Unmarshal(data, &conditions); err != nil {
		c.logger.WarnContext(ctx, "decode filter conditions failed", slog.String("error", err.Error()))
		return append([]string(nil), defaultAssets...), nil
	}

	seen := make(map[string]bool, len(conditions.Assets))
	assets := make([]string, 0, len(conditions.Assets))
	for _, a := range conditions.Assets {
		if a.Asset == "" || seen[a.Asset] {
			continue
		}
		seen[a.Asset] = true
		assets = append(assets, a.Asset)
	}
	if len(assets) == 0 {
		return append([]string(nil), defaultAssets...), nil
	}
	return assets, nil
}

// P2PPrices returns normalized, risk-scored offers matching the filter. A
// malformed record is skipped with a warning; a failed page yields whatever
// earlier pages produced.
func (c *Client) P2PPrices(
	ctx context.Context,
	fiat, crypto string,
	tradeType domain.TradeType,
	filter domain.OfferFilter,
) ([]domain.Offer, error) {
	req := searchRequest{
		Asset:     crypto,
		Fiat:      fiat,
		TradeType: strings.ToUpper(string(tradeType)),
		Rows:      pageRows,
		PayTypes:  filter.PaymentMethods,
	}
	if filter.MerchantOnly {
		merchant := "merchant"
		req.PublisherType = &merchant
	}
	if filter.MinAmount > 0 {
		req.TransAmount = strconv.FormatFloat(filter.MinAmount, 'f', -1, 64)
	}

	var offers []domain.Offer
	for page := 1; page <= c.pages; page++ {
		req.Page = page

		data, err := c.doPost(ctx, searchPath, req)
		if err != nil {
			c.logger.WarnContext(ctx, "advertisement search failed",
				slog.String("fiat", fiat),
				slog.String("crypto", crypto),
				slog.Int("page", page),
				slog.String("error", err.Error()),
			)
			break
		}

		var records []apiSearchRecord
		if err := json.Unmarshal(data, &records); err != nil {
			c.logger.WarnContext(ctx, "decode search records failed", slog.String("error", err.Error()))
			break
		}

		for _, rec := range records {
			offer, err := normalizeRecord(rec, tradeType)
			if err != nil {
				// One malformed record must not fail the whole listing.
				c.logger.WarnContext(ctx, "skipping malformed advertisement",
					slog.String("advertiser", rec.Advertiser.NickName),
					slog.String("error", err.Error()),
				)
				continue
			}
			if !filter.Match(offer) {
				continue
			}
			offers = append(offers, offer)
		}

		// A short page means the listing is exhausted.
		if len(records) < pageRows {
			break
		}
	}
	return offers, nil
}

// doPost sends a JSON POST request and unwraps the bapi response envelope.
func (c *Client) doPost(ctx context.Context, path string, body any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, Name); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success || env.Code != "000000" {
		return nil, fmt.Errorf("api error code %s: %s", env.Code, env.Message)
	}
	return env.Data, nil
}

// checkStatus maps non-2xx HTTP status codes to domain errors.
func checkStatus(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("HTTP %d: %w", statusCode, domain.ErrUnauthorized)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("HTTP %d: %w", statusCode, domain.ErrRateLimited)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("HTTP %d: %w", statusCode, domain.ErrNotFound)
	default:
		return fmt.Errorf("HTTP %d", statusCode)
	}
}

// Compile-time interface check.
var _ domain.Exchange = (*Client)(nil)
