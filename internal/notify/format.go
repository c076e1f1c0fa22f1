package notify

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/p2pbot/internal/domain"
)

// maxAlertOpportunities caps how many opportunities one alert lists. The
// input is ranked best-first, so the cap keeps the top of the book.
const maxAlertOpportunities = 5

// FormatOpportunities renders a ranked opportunity list as an alert title and
// body. The body lists at most maxAlertOpportunities entries.
func FormatOpportunities(opps []domain.ArbitrageOpportunity) (title, message string) {
	if len(opps) == 0 {
		return "", ""
	}

	best := opps[0]
	title = fmt.Sprintf("Arbitrage: %s/%s up to %.2f%%", best.Crypto, best.Fiat, best.ProfitPercent)

	var b strings.Builder
	shown := min(len(opps), maxAlertOpportunities)
	for i := 0; i < shown; i++ {
		o := opps[i]
		fmt.Fprintf(&b, "%d. buy %s @ %.4f -> sell %s @ %.4f | profit %.2f%% | max %.2f %s\n",
			i+1,
			o.BuyExchange, o.BuyPrice,
			o.SellExchange, o.SellPrice,
			o.ProfitPercent,
			o.MaxTradeAmount, o.Crypto,
		)
		fmt.Fprintf(&b, "   buy from %s (risk %.0f), sell to %s (risk %.0f)\n",
			o.BuyMerchant.Name, o.BuyMerchant.RiskScore,
			o.SellMerchant.Name, o.SellMerchant.RiskScore,
		)
	}
	if len(opps) > shown {
		fmt.Fprintf(&b, "... and %d more\n", len(opps)-shown)
	}
	return title, strings.TrimRight(b.String(), "\n")
}
