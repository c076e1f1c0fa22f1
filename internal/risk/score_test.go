package risk

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		stats     domain.MerchantStats
		wantScore float64
		wantLevel domain.RiskLevel
	}{
		{
			name: "top merchant caps at 100",
			stats: domain.MerchantStats{
				CompletionRate30d:  1.0,
				PositiveRate:       1.0,
				CompletedOrders30d: 1000,
				UserGrade:          3,
				UserType:           "merchant",
			},
			wantScore: 100,
			wantLevel: domain.RiskLevelLow,
		},
		{
			name:      "zero stats non-merchant",
			stats:     domain.MerchantStats{UserType: "user"},
			wantScore: 45,
			wantLevel: domain.RiskLevelHigh,
		},
		{
			name: "order count saturates at 100",
			stats: domain.MerchantStats{
				CompletedOrders30d: 250,
				UserType:           "merchant",
			},
			wantScore: 60, // 50 + 10
			wantLevel: domain.RiskLevelMedium,
		},
		{
			name: "mid-range merchant",
			stats: domain.MerchantStats{
				CompletionRate30d:  0.5,
				PositiveRate:       0.8,
				CompletedOrders30d: 50,
				UserGrade:          1,
				UserType:           "merchant",
			},
			wantScore: 50 + 10 + 12 + 5 + 2,
			wantLevel: domain.RiskLevelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Score(tt.stats)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestScore_GarbageInputsNeverFail(t *testing.T) {
	t.Parallel()

	garbage := []domain.MerchantStats{
		{CompletionRate30d: math.NaN(), PositiveRate: math.Inf(1)},
		{CompletionRate30d: -3, PositiveRate: -1, CompletedOrders30d: -10, UserGrade: -5},
		{CompletionRate30d: 42, PositiveRate: 99},
	}

	for _, stats := range garbage {
		got := Score(stats)
		assert.False(t, math.IsNaN(got.Score))
		assert.GreaterOrEqual(t, got.Score, 0.0)
		assert.LessOrEqual(t, got.Score, 100.0)
		assert.NotEmpty(t, got.Level)
	}
}

func TestScore_HighRiskCarriesWarning(t *testing.T) {
	t.Parallel()

	got := Score(domain.MerchantStats{UserType: "user"})
	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	assert.NotEmpty(t, got.Warning)
}

func TestLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.RiskLevelLow, Level(80))
	assert.Equal(t, domain.RiskLevelMedium, Level(79.999))
	assert.Equal(t, domain.RiskLevelMedium, Level(60))
	assert.Equal(t, domain.RiskLevelHigh, Level(59.999))
	assert.Equal(t, domain.RiskLevelHigh, Level(0))
}

func TestScore_BoundedProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score is always within [0,100] with a consistent level", prop.ForAll(
		func(completion, positive float64, orders, grade int, userType string) bool {
			got := Score(domain.MerchantStats{
				CompletionRate30d:  completion,
				PositiveRate:       positive,
				CompletedOrders30d: orders,
				UserGrade:          grade,
				UserType:           userType,
			})
			if got.Score < 0 || got.Score > 100 || math.IsNaN(got.Score) {
				return false
			}
			return got.Level == Level(got.Score)
		},
		gen.Float64Range(-2, 2),
		gen.Float64Range(-2, 2),
		gen.IntRange(-100, 100000),
		gen.IntRange(-5, 10),
		gen.OneConstOf("merchant", "user", ""),
	))

	properties.TestingRun(t)
}
