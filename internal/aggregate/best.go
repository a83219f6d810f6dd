package aggregate

import (
	"strings"

	"btcquotes/internal/provider"
	"github.com/shopspring/decimal"
)

// SelectBest returns the provider offering the most crypto. Ties go to the
// provider listed first in provider.All; amounts that do not parse are
// skipped. ok is false when no quote qualifies.
func SelectBest(r Result) (best provider.ID, ok bool) {
	var bestAmount decimal.Decimal
	for _, id := range provider.All {
		q, found := r[id]
		if !found || !q.Present() {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(q.Amount))
		if err != nil {
			continue
		}
		if !ok || v.GreaterThan(bestAmount) {
			best, bestAmount, ok = id, v, true
		}
	}
	return best, ok
}
