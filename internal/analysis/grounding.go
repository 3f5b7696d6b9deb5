package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/liliang-cn/finsight/internal/domain"
)

var tableHeader = []string{
	"Line item",
	"Prior year",
	"Current year",
	"Growth (%)",
	"Share of total assets, prior year (%)",
	"Share of total assets, current year (%)",
}

// Summary is the headline block appended after the table
type Summary struct {
	CurrentAssetsGrowth    float64
	HasCurrentAssetsGrowth bool
	Liquidity              domain.Liquidity
}

// BuildGrounding serializes a computed table and its headline metrics
func (e *Engine) BuildGrounding(table domain.StatementTable, liquidity domain.Liquidity) domain.GroundingDocument {
	growth, ok := e.CurrentAssetsGrowth(table)
	return RenderGrounding(table, Summary{
		CurrentAssetsGrowth:    growth,
		HasCurrentAssetsGrowth: ok,
		Liquidity:              liquidity,
	})
}

// RenderGrounding writes the table and summary as markdown. The output is
// a pure function of its inputs.
func RenderGrounding(table domain.StatementTable, summary Summary) domain.GroundingDocument {
	var sb strings.Builder

	writeRow(&sb, tableHeader)
	writeRule(&sb, len(tableHeader))
	for _, item := range table.Items {
		cells := []string{
			escapeCell(item.Label),
			strconv.FormatFloat(item.Prior, 'f', -1, 64),
			strconv.FormatFloat(item.Current, 'f', -1, 64),
			"", "", "",
		}
		if d := item.Derived; d != nil {
			cells[3] = fixed2(d.GrowthPct)
			cells[4] = fixed2(d.PriorSharePct)
			cells[5] = fixed2(d.CurrentSharePct)
		}
		writeRow(&sb, cells)
	}

	sb.WriteString("\n")
	writeRow(&sb, []string{"Metric", "Value"})
	writeRule(&sb, 2)

	growth := NotAvailable
	if summary.HasCurrentAssetsGrowth {
		growth = fixed2(summary.CurrentAssetsGrowth) + "%"
	}
	writeRow(&sb, []string{"Current assets growth (%)", growth})

	prior, current := NotAvailable, NotAvailable
	if summary.Liquidity.Available {
		prior = ratioCell(summary.Liquidity.Prior)
		current = ratioCell(summary.Liquidity.Current)
	}
	writeRow(&sb, []string{"Current ratio (N-1)", prior})
	writeRow(&sb, []string{"Current ratio (N)", current})

	text := sb.String()
	sum := sha256.Sum256([]byte(text))
	return domain.GroundingDocument{Text: text, Digest: hex.EncodeToString(sum[:])}
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(c)
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func writeRule(sb *strings.Builder, n int) {
	sb.WriteString("|")
	for i := 0; i < n; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func ratioCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return fixed2(v)
}
