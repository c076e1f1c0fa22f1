// Package risk converts raw advertiser statistics into a bounded merchant
// risk score and discrete risk level. Scoring is a deterministic pure
// function with no I/O and never fails: garbage inputs degrade to neutral
// defaults rather than errors.
package risk

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

const (
	baseScore = 50.0

	// Score at or above these thresholds maps to LOW / MEDIUM risk.
	lowThreshold    = 80.0
	mediumThreshold = 60.0
)

// Score derives a MerchantRisk from advertiser statistics.
//
// The score starts at 50 and is adjusted by: 30-day completion rate (up to
// +20), positive feedback rate (up to +15), 30-day order count (up to +10,
// saturating at 100 orders), user grade (+2 per grade), and a -5 penalty for
// non-merchant accounts. The result is clamped to [0, 100].
func Score(stats domain.MerchantStats) domain.MerchantRisk {
	completion := sanitizeRate(stats.CompletionRate30d)
	positive := sanitizeRate(stats.PositiveRate)
	orders := stats.CompletedOrders30d
	if orders < 0 {
		orders = 0
	}
	grade := stats.UserGrade
	if grade < 0 {
		grade = 0
	}

	score := baseScore
	score += completion * 20
	score += positive * 15
	score += math.Min(float64(orders)/100, 1.0) * 10
	score += float64(grade) * 2
	if stats.UserType != "merchant" {
		score -= 5
	}

	score = clamp(score, 0, 100)
	if math.IsNaN(score) {
		// Unreachable with sanitized inputs; degrade to neutral regardless.
		return domain.MerchantRisk{Score: 50.0, Level: domain.RiskLevelMedium}
	}

	level := Level(score)
	mr := domain.MerchantRisk{Score: score, Level: level}
	if level == domain.RiskLevelHigh {
		mr.Warning = warningFor(stats)
	}
	return mr
}

// Level maps a risk score to its discrete risk level.
func Level(score float64) domain.RiskLevel {
	switch {
	case score >= lowThreshold:
		return domain.RiskLevelLow
	case score >= mediumThreshold:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelHigh
	}
}

// sanitizeRate replaces missing or nonsensical rate values with the neutral
// default 0. Rates above 1 are treated as percentages already normalized
// upstream gone wrong, so they are clamped instead of rejected.
func sanitizeRate(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func warningFor(stats domain.MerchantStats) string {
	switch {
	case stats.CompletedOrders30d == 0:
		return "no completed orders in the last 30 days"
	case stats.CompletionRate30d < 0.8:
		return fmt.Sprintf("low 30d completion rate: %.0f%%", sanitizeRate(stats.CompletionRate30d)*100)
	default:
		return "low overall merchant trust score"
	}
}
