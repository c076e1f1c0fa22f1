// Package okx implements the OKX P2P exchange adapter. All remote failures
// are recovered locally to empty results so a broken OKX API never poisons a
// multi-exchange query.
package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/p2pbot/internal/crypto"
	"github.com/alanyoungcy/p2pbot/internal/domain"
)

const (
	// Name is the exchange identifier this adapter registers under.
	Name = "okx"

	apiPrefix      = "/api/v5/p2p"
	requestTimeout = 30 * time.Second
)

// Config holds the adapter's connection parameters and credentials.
type Config struct {
	BaseURL    string // e.g. "https://www.okx.com"
	APIKey     string
	SecretKey  string
	Passphrase string
}

// Client is the OKX P2P REST adapter.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
	limiter    domain.RateLimiter  // optional
	history    domain.HistoryCache // optional
	logger     *slog.Logger
}

// New creates an OKX adapter. Missing credentials are a configuration error:
// the adapter cannot sign requests, so construction fails rather than every
// later query.
func New(cfg Config, limiter domain.RateLimiter, history domain.HistoryCache, logger *slog.Logger) (*Client, error) {
	auth := &crypto.HMACAuth{Key: cfg.APIKey, Secret: cfg.SecretKey, Passphrase: cfg.Passphrase}
	if !auth.Configured() {
		return nil, fmt.Errorf("okx: %w: api_key, secret_key, and passphrase are all required", domain.ErrMissingCredentials)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.okx.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		history:    history,
		logger:     logger.With(slog.String("exchange", Name)),
	}, nil
}

// Name returns the exchange identifier.
func (c *Client) Name() string { return Name }

// SupportedCryptocurrencies returns the crypto codes tradable against fiat.
// Any remote error is logged and recovered to an empty result.
func (c *Client) SupportedCryptocurrencies(ctx context.Context, fiat string) ([]string, error) {
	params := url.Values{}
	params.Set("quoteCurrency", fiat)

	data, err := c.doGet(ctx, apiPrefix+"/tradingPairs", params)
	if err != nil {
		c.logger.WarnContext(ctx, "supported pairs request failed",
			slog.String("fiat", fiat),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var pairs []apiTradingPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		c.logger.WarnContext(ctx, "decode trading pairs failed", slog.String("error", err.Error()))
		return nil, nil
	}

	seen := make(map[string]bool, len(pairs))
	cryptos := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.BaseCurrency == "" || seen[p.BaseCurrency] {
			continue
		}
		seen[p.BaseCurrency] = true
		cryptos = append(cryptos, p.BaseCurrency)
	}

	c.logger.DebugContext(ctx, "supported pairs fetched",
		slog.String("fiat", fiat),
		slog.Int("count", len(cryptos)),
	)
	return cryptos, nil
}

// P2PPrices returns normalized, risk-scored offers matching the filter. A
// single malformed advertisement is skipped with a warning; a failed request
// yields an empty result, never an aborted query.
func (c *Client) P2PPrices(
	ctx context.Context,
	fiat, crypto string,
	tradeType domain.TradeType,
	filter domain.OfferFilter,
) ([]domain.Offer, error) {
	params := url.Values{}
	params.Set("quoteCurrency", fiat)
	params.Set("baseCurrency", crypto)
	params.Set("side", strings.ToUpper(string(tradeType)))
	if len(filter.PaymentMethods) > 0 {
		params.Set("paymentMethod", strings.Join(filter.PaymentMethods, ","))
	}
	if filter.MerchantOnly {
		params.Set("userType", "merchant")
	}
	if filter.MinAmount > 0 {
		params.Set("minSingleTransAmount", strconv.FormatFloat(filter.MinAmount, 'f', -1, 64))
	}
	if filter.MaxAmount > 0 {
		params.Set("maxSingleTransAmount", strconv.FormatFloat(filter.MaxAmount, 'f', -1, 64))
	}

	data, err := c.doGet(ctx, apiPrefix+"/advertisements", params)
	if err != nil {
		c.logger.WarnContext(ctx, "advertisements request failed",
			slog.String("fiat", fiat),
			slog.String("crypto", crypto),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var raws []apiAdvertisement
	if err := json.Unmarshal(data, &raws); err != nil {
		c.logger.WarnContext(ctx, "decode advertisements failed", slog.String("error", err.Error()))
		return nil, nil
	}

	offers := make([]domain.Offer, 0, len(raws))
	for _, raw := range raws {
		offer, err := normalizeOffer(raw, fiat, crypto, tradeType)
		if err != nil {
			// One malformed record must not fail the whole listing.
			c.logger.WarnContext(ctx, "skipping malformed advertisement",
				slog.String("advertiser", raw.NickName),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !filter.Match(offer) {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// HistoricalPrices returns recent public trades for a pair. Results are kept
// in the in-process history cache; the remote API is only consulted on a
// cache miss.
func (c *Client) HistoricalPrices(ctx context.Context, fiat, crypto string, days int) ([]domain.TradeRecord, error) {
	if days <= 0 {
		days = 1
	}

	if c.history != nil {
		if cached, err := c.history.GetTrades(ctx, Name, fiat, crypto); err == nil && cached != nil {
			return cached, nil
		}
	}

	end := time.Now()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	params := url.Values{}
	params.Set("quoteCurrency", fiat)
	params.Set("baseCurrency", crypto)
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))

	data, err := c.doGet(ctx, apiPrefix+"/publicTrades", params)
	if err != nil {
		c.logger.WarnContext(ctx, "public trades request failed",
			slog.String("fiat", fiat),
			slog.String("crypto", crypto),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var raws []apiTrade
	if err := json.Unmarshal(data, &raws); err != nil {
		c.logger.WarnContext(ctx, "decode public trades failed", slog.String("error", err.Error()))
		return nil, nil
	}

	trades := make([]domain.TradeRecord, 0, len(raws))
	for _, raw := range raws {
		ms, err := strconv.ParseInt(raw.Timestamp, 10, 64)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed trade", slog.String("error", err.Error()))
			continue
		}
		price := floatOrZero(raw.Price)
		amount := floatOrZero(raw.Amount)
		trades = append(trades, domain.TradeRecord{
			Timestamp: time.UnixMilli(ms),
			Price:     price,
			Amount:    amount,
			Volume:    price * amount,
			TradeType: domain.TradeType(strings.ToUpper(raw.Side)),
		})
	}

	if c.history != nil && len(trades) > 0 {
		if err := c.history.SetTrades(ctx, Name, fiat, crypto, trades); err != nil {
			c.logger.DebugContext(ctx, "history cache write failed", slog.String("error", err.Error()))
		}
	}
	return trades, nil
}

// MerchantInfo returns the detailed profile of one advertiser. Unlike the
// listing calls this returns the error: callers ask for a specific merchant
// and need to know when the lookup failed.
func (c *Client) MerchantInfo(ctx context.Context, merchantID string) (domain.MerchantInfo, error) {
	params := url.Values{}
	params.Set("userID", merchantID)

	data, err := c.doGet(ctx, apiPrefix+"/userInfo", params)
	if err != nil {
		return domain.MerchantInfo{}, fmt.Errorf("okx: merchant info %s: %w", merchantID, err)
	}

	var raw apiUserInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.MerchantInfo{}, fmt.Errorf("okx: decode merchant info: %w", err)
	}

	info := domain.MerchantInfo{
		Nickname:        raw.NickName,
		UserType:        stringOr(raw.UserType, "user"),
		UserGrade:       intOrZero(raw.UserGrade.String()),
		MonthOrderCount: intOrZero(raw.CompletedOrdersCount30.String()),
		MonthFinishRate: floatOrZero(raw.CompletionRate30d),
		PositiveRate:    floatOrZero(raw.PositiveRate),
		Badges:          raw.Badges,
		ActiveTime:      intOrZero(raw.ActiveTimeInSecond.String()),
		Volume24h:       floatOrZero(raw.Volume24h),
	}
	if raw.VIPLevel != "" {
		if v, err := strconv.Atoi(raw.VIPLevel); err == nil {
			info.VIPLevel = &v
		}
	}
	if raw.RegistrationTime != "" {
		if ms, err := strconv.ParseInt(raw.RegistrationTime, 10, 64); err == nil {
			t := time.UnixMilli(ms)
			info.RegistrationTime = &t
		}
	}
	return info, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends a signed GET request and unwraps the OKX response envelope,
// returning the raw data payload.
func (c *Client) doGet(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, Name); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	requestPath := path
	if len(params) > 0 {
		requestPath += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.auth.Headers(http.MethodGet, requestPath, "") {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != "0" {
		return nil, fmt.Errorf("api error code %s: %s", env.Code, env.Msg)
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

// Compile-time interface checks.
var (
	_ domain.Exchange        = (*Client)(nil)
	_ domain.HistoryProvider = (*Client)(nil)
)
