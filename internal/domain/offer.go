package domain

// TradeType is the side of a P2P advertisement from the taker's perspective.
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// PaymentMethod is one payment rail accepted by an advertiser. Identity is by
// Identifier; Name is the display label.
type PaymentMethod struct {
	Name       string
	Identifier string
}

// RiskLevel is the discrete trust bucket derived from a merchant risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// MerchantRisk is the derived trust assessment of an advertiser. It is
// computed once at normalization time and never mutated afterwards.
type MerchantRisk struct {
	Score   float64 // 0..100, higher is safer
	Level   RiskLevel
	Warning string // optional operator-facing note, set for HIGH risk
}

// MerchantStats are the raw advertiser statistics fed to the risk scorer.
type MerchantStats struct {
	CompletionRate30d  float64 // 0..1
	PositiveRate       float64 // 0..1
	CompletedOrders30d int
	UserGrade          int
	UserType           string // "merchant" or "user"
}

// Offer is the normalized representation of a single P2P advertisement.
// Offers are constructed once per adapter response record and are immutable
// thereafter; the caller that receives them owns them exclusively.
//
// Price is always > 0 for a well-formed offer. AvailableAmount may be zero:
// such an offer is structurally valid but economically useless, and the
// arbitrage engine must tolerate it.
type Offer struct {
	Advertiser      string
	Price           float64
	AvailableAmount float64
	MinAmount       float64
	MaxAmount       float64
	PaymentMethods  []PaymentMethod
	Crypto          string
	Fiat            string
	TradeType       TradeType
	MerchantRisk    MerchantRisk

	// Advertiser statistics carried through from the raw record.
	MonthOrderCount    int
	MonthFinishRate    float64 // 0..1
	PositiveRate       float64 // 0..1
	UserType           string
	UserGrade          int
	Badges             []string
	VIPLevel           *int
	ActiveTimeInSecond int
	Volume24h          float64
	PriceDeviation     float64
}
