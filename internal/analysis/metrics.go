package analysis

import (
	"fmt"

	"github.com/liliang-cn/finsight/internal/domain"
)

// Epsilon replaces a zero denominator in growth and share formulas
const Epsilon = 1e-9

func safeDiv(x float64) float64 {
	if x != 0 {
		return x
	}
	return Epsilon
}

// Engine derives growth, composition and liquidity metrics from a statement
type Engine struct {
	labels  Labels
	matcher Matcher
}

// NewEngine creates a metrics engine. Empty labels fall back to the defaults.
func NewEngine(labels Labels, matcher Matcher) *Engine {
	def := DefaultLabels()
	if labels.TotalAssets == "" {
		labels.TotalAssets = def.TotalAssets
	}
	if labels.CurrentAssets == "" {
		labels.CurrentAssets = def.CurrentAssets
	}
	if labels.CurrentLiabilities == "" {
		labels.CurrentLiabilities = def.CurrentLiabilities
	}
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &Engine{labels: labels, matcher: matcher}
}

// Compute returns a copy of table with growth and share percentages
// attached to every row. It fails without a partial result when no row
// matches the total assets label.
func (e *Engine) Compute(table domain.StatementTable) (domain.StatementTable, error) {
	total, ok := FindRowWith(e.matcher, table, e.labels.TotalAssets)
	if !ok {
		return domain.StatementTable{}, domain.E(domain.KindStructural, "compute metrics",
			fmt.Errorf("%w: no row matching %q", domain.ErrMissingRequiredLineItem, e.labels.TotalAssets))
	}

	priorBase := safeDiv(total.Prior)
	currentBase := safeDiv(total.Current)

	out := table.Clone()
	for i := range out.Items {
		r := &out.Items[i]
		r.Derived = &domain.Derived{
			GrowthPct:       (r.Current - r.Prior) / safeDiv(r.Prior) * 100,
			PriorSharePct:   r.Prior / priorBase * 100,
			CurrentSharePct: r.Current / currentBase * 100,
		}
	}
	return out, nil
}

// Liquidity computes current assets over current liabilities for both
// periods. The division is not guarded: a zero liability base yields an
// infinite or NaN ratio, which callers render as undefined.
func (e *Engine) Liquidity(table domain.StatementTable) (domain.Liquidity, error) {
	assets, okA := FindRowWith(e.matcher, table, e.labels.CurrentAssets)
	liabilities, okL := FindRowWith(e.matcher, table, e.labels.CurrentLiabilities)
	if !okA || !okL {
		var missing []string
		if !okA {
			missing = append(missing, e.labels.CurrentAssets)
		}
		if !okL {
			missing = append(missing, e.labels.CurrentLiabilities)
		}
		return domain.Liquidity{}, domain.E(domain.KindMissingOptionalLineItem, "compute liquidity",
			fmt.Errorf("%w: no row matching %q", domain.ErrInsufficientData, missing))
	}
	return domain.Liquidity{
		Prior:     assets.Prior / liabilities.Prior,
		Current:   assets.Current / liabilities.Current,
		Available: true,
	}, nil
}

// CurrentAssetsGrowth returns the growth percentage of the current assets
// row of a computed table.
func (e *Engine) CurrentAssetsGrowth(table domain.StatementTable) (float64, bool) {
	row, ok := FindRowWith(e.matcher, table, e.labels.CurrentAssets)
	if !ok || row.Derived == nil {
		return 0, false
	}
	return row.Derived.GrowthPct, true
}
