package binance

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alanyoungcy/p2pbot/internal/domain"
	"github.com/alanyoungcy/p2pbot/internal/risk"
)

// normalizeRecord converts one raw search record into a domain Offer. It
// errors only on an unusable record (missing or non-positive price, no
// advertiser); everything else coerces to an explicit default.
func normalizeRecord(rec apiSearchRecord, tradeType domain.TradeType) (domain.Offer, error) {
	price, err := strconv.ParseFloat(rec.Adv.Price, 64)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("parse price %q: %w", rec.Adv.Price, err)
	}
	if price <= 0 {
		return domain.Offer{}, fmt.Errorf("non-positive price %v", price)
	}
	if rec.Advertiser.NickName == "" {
		return domain.Offer{}, fmt.Errorf("missing advertiser nickname")
	}

	stats := domain.MerchantStats{
		CompletionRate30d:  numberFloat(rec.Advertiser.MonthFinishRate),
		PositiveRate:       numberFloat(rec.Advertiser.PositiveRate),
		CompletedOrders30d: numberInt(rec.Advertiser.MonthOrderCount),
		UserGrade:          numberInt(rec.Advertiser.UserGrade),
		UserType:           userType(rec.Advertiser.UserType),
	}

	methods := make([]domain.PaymentMethod, 0, len(rec.Adv.TradeMethods))
	for _, tm := range rec.Adv.TradeMethods {
		methods = append(methods, domain.PaymentMethod{
			Name:       tm.TradeMethodName,
			Identifier: tm.Identifier,
		})
	}

	var vip *int
	if rec.Advertiser.VipLevel != "" {
		v := numberInt(rec.Advertiser.VipLevel)
		vip = &v
	}

	return domain.Offer{
		Advertiser:         rec.Advertiser.NickName,
		Price:              price,
		AvailableAmount:    floatOrZero(rec.Adv.SurplusAmount),
		MinAmount:          floatOrZero(rec.Adv.MinSingleTransAmount),
		MaxAmount:          floatOrZero(rec.Adv.MaxSingleTransAmount),
		PaymentMethods:     methods,
		Crypto:             rec.Adv.Asset,
		Fiat:               rec.Adv.FiatUnit,
		TradeType:          tradeType,
		MerchantRisk:       risk.Score(stats),
		MonthOrderCount:    stats.CompletedOrders30d,
		MonthFinishRate:    stats.CompletionRate30d,
		PositiveRate:       stats.PositiveRate,
		UserType:           stats.UserType,
		UserGrade:          stats.UserGrade,
		Badges:             rec.Advertiser.Badges,
		VIPLevel:           vip,
		ActiveTimeInSecond: numberInt(rec.Advertiser.ActiveTimeInSecond),
	}, nil
}

// userType maps Binance's "merchant"/"user" flag, treating anything unknown
// as a plain user so the risk scorer stays conservative.
func userType(s string) string {
	if s == "merchant" {
		return "merchant"
	}
	return "user"
}

func numberFloat(n json.Number) float64 {
	if n == "" {
		return 0
	}
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}

func numberInt(n json.Number) int {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return int(v)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
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
