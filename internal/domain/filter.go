package domain

import "math"

// OfferFilter holds the caller-supplied constraints applied to normalized
// offers. Zero values mean "no constraint". An offer failing any active
// constraint is excluded from the result, never raised as an error.
type OfferFilter struct {
	PaymentMethods    []string // required payment method identifiers (any-of)
	MinAmount         float64  // minimum single transaction amount
	MaxAmount         float64  // maximum single transaction amount
	Min24hVolume      float64
	MaxPriceDeviation float64 // maximum absolute price deviation
	MerchantOnly      bool
	MinMerchantRate   float64 // minimum 30d completion rate, 0..1
}

// Match reports whether the offer passes every active constraint except
// MinMerchantRate, which the registry applies post-retrieval.
func (f OfferFilter) Match(o Offer) bool {
	// Not every exchange reports per-offer 24h volume. A zero value means
	// the datum is absent, not that nothing traded, so the constraint only
	// applies to offers that carry it.
	if f.Min24hVolume > 0 && o.Volume24h > 0 && o.Volume24h < f.Min24hVolume {
		return false
	}
	if f.MaxPriceDeviation > 0 && math.Abs(o.PriceDeviation) > f.MaxPriceDeviation {
		return false
	}
	if f.MinAmount > 0 && o.MaxAmount > 0 && o.MaxAmount < f.MinAmount {
		return false
	}
	if f.MaxAmount > 0 && o.MinAmount > f.MaxAmount {
		return false
	}
	if f.MerchantOnly && o.UserType != "merchant" {
		return false
	}
	if len(f.PaymentMethods) > 0 && !hasAnyPaymentMethod(o, f.PaymentMethods) {
		return false
	}
	return true
}

func hasAnyPaymentMethod(o Offer, wanted []string) bool {
	for _, w := range wanted {
		for _, pm := range o.PaymentMethods {
			if pm.Identifier == w {
				return true
			}
		}
	}
	return false
}
