package analysis

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/liliang-cn/finsight/internal/domain"
)

// Labels are the line-item queries that locate the rows the metrics depend on
type Labels struct {
	TotalAssets        string `mapstructure:"total_assets"`
	CurrentAssets      string `mapstructure:"current_assets"`
	CurrentLiabilities string `mapstructure:"current_liabilities"`
}

// DefaultLabels returns the labels of a Vietnamese balance sheet (VAS B01-DN)
func DefaultLabels() Labels {
	return Labels{
		TotalAssets:        "TỔNG CỘNG TÀI SẢN",
		CurrentAssets:      "TÀI SẢN NGẮN HẠN",
		CurrentLiabilities: "NỢ NGẮN HẠN",
	}
}

// Matcher decides whether a row label satisfies a lookup query
type Matcher interface {
	Match(label, query string) bool
}

// SubstringMatcher matches when the query occurs anywhere in the label,
// ignoring case. Both sides are NFC-normalized so precomposed and combining
// Vietnamese diacritics compare equal.
type SubstringMatcher struct{}

// Match implements Matcher
func (SubstringMatcher) Match(label, query string) bool {
	return strings.Contains(fold(label), fold(query))
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// FindRow returns the first row, in table order, whose label contains
// query case-insensitively. ok is false when nothing matches.
func FindRow(table domain.StatementTable, query string) (domain.LineItem, bool) {
	return FindRowWith(SubstringMatcher{}, table, query)
}

// FindRowWith is FindRow with a custom matcher
func FindRowWith(m Matcher, table domain.StatementTable, query string) (domain.LineItem, bool) {
	i := indexOf(m, table, query)
	if i < 0 {
		return domain.LineItem{}, false
	}
	return table.Items[i], true
}

func indexOf(m Matcher, table domain.StatementTable, query string) int {
	if query == "" {
		return -1
	}
	for i, item := range table.Items {
		if m.Match(item.Label, query) {
			return i
		}
	}
	return -1
}
