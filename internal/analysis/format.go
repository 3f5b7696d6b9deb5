package analysis

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/liliang-cn/finsight/internal/domain"
)

// Display placeholders
const (
	NotAvailable = "N/A"
	Undefined    = "undefined"
)

// RenderedRow is a line item formatted for display
type RenderedRow struct {
	Label           string `json:"label"`
	Prior           string `json:"prior"`
	Current         string `json:"current"`
	GrowthPct       string `json:"growth_pct"`
	PriorSharePct   string `json:"prior_share_pct"`
	CurrentSharePct string `json:"current_share_pct"`
}

// RenderedLiquidity is the current ratio pair formatted for display
type RenderedLiquidity struct {
	Prior     string `json:"prior"`
	Current   string `json:"current"`
	Delta     string `json:"delta"`
	Available bool   `json:"available"`
}

// FormatAmount renders a raw value as a rounded integer with thousands separators
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return humanize.Commaf(r)
}

// FormatPercent renders a derived percentage with two decimals
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatRatio renders a liquidity ratio as "x times"
func FormatRatio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return fmt.Sprintf("%.2f times", v)
}

// FormatDelta renders a signed two-decimal difference
func FormatDelta(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return fmt.Sprintf("%+.2f", v)
}

// RenderTable applies the display rules to every row
func RenderTable(table domain.StatementTable) []RenderedRow {
	rows := make([]RenderedRow, len(table.Items))
	for i, item := range table.Items {
		rows[i] = RenderedRow{
			Label:   item.Label,
			Prior:   FormatAmount(item.Prior),
			Current: FormatAmount(item.Current),
		}
		if d := item.Derived; d != nil {
			rows[i].GrowthPct = FormatPercent(d.GrowthPct)
			rows[i].PriorSharePct = FormatPercent(d.PriorSharePct)
			rows[i].CurrentSharePct = FormatPercent(d.CurrentSharePct)
		}
	}
	return rows
}

// RenderLiquidity formats the ratio pair, substituting N/A when unavailable
func RenderLiquidity(l domain.Liquidity) RenderedLiquidity {
	if !l.Available {
		return RenderedLiquidity{Prior: NotAvailable, Current: NotAvailable, Delta: NotAvailable}
	}
	return RenderedLiquidity{
		Prior:     FormatRatio(l.Prior),
		Current:   FormatRatio(l.Current),
		Delta:     FormatDelta(l.Delta()),
		Available: true,
	}
}
