package okx

import (
	"fmt"
	"strconv"

	"github.com/alanyoungcy/p2pbot/internal/domain"
	"github.com/alanyoungcy/p2pbot/internal/risk"
)

// normalizeOffer converts one raw advertisement into a domain Offer, scoring
// the advertiser on the way. It returns an error only when the record is
// unusable (missing or non-positive price); every other field falls back to
// an explicit default so a sparse record still normalizes.
func normalizeOffer(raw apiAdvertisement, fiat, crypto string, tradeType domain.TradeType) (domain.Offer, error) {
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("parse price %q: %w", raw.Price, err)
	}
	if price <= 0 {
		return domain.Offer{}, fmt.Errorf("non-positive price %v", price)
	}
	if raw.NickName == "" {
		return domain.Offer{}, fmt.Errorf("missing advertiser nickname")
	}

	stats := domain.MerchantStats{
		CompletionRate30d:  floatOrZero(raw.CompletionRate30d),
		PositiveRate:       floatOrZero(raw.PositiveRate),
		CompletedOrders30d: intOrZero(raw.CompletedOrdersCount30.String()),
		UserGrade:          intOrZero(raw.UserGrade.String()),
		UserType:           stringOr(raw.UserType, "user"),
	}

	methods := make([]domain.PaymentMethod, 0, len(raw.PaymentMethods))
	for _, pm := range raw.PaymentMethods {
		methods = append(methods, domain.PaymentMethod{Name: pm.Name, Identifier: pm.Identifier})
	}

	var vip *int
	if raw.VIPLevel != "" {
		if v, err := strconv.Atoi(raw.VIPLevel); err == nil {
			vip = &v
		}
	}

	return domain.Offer{
		Advertiser:         raw.NickName,
		Price:              price,
		AvailableAmount:    floatOrZero(raw.AvailableAmount),
		MinAmount:          floatOrZero(raw.MinSingleTransAmount),
		MaxAmount:          floatOrZero(raw.MaxSingleTransAmount),
		PaymentMethods:     methods,
		Crypto:             crypto,
		Fiat:               fiat,
		TradeType:          tradeType,
		MerchantRisk:       risk.Score(stats),
		MonthOrderCount:    stats.CompletedOrders30d,
		MonthFinishRate:    stats.CompletionRate30d,
		PositiveRate:       stats.PositiveRate,
		UserType:           stats.UserType,
		UserGrade:          stats.UserGrade,
		Badges:             raw.Badges,
		VIPLevel:           vip,
		ActiveTimeInSecond: intOrZero(raw.ActiveTimeInSecond.String()),
		Volume24h:          floatOrZero(raw.Volume24h),
		PriceDeviation:     floatOrZero(raw.PriceDeviation),
	}, nil
}

func floatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func intOrZero(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// json.Number may carry a float representation.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
