package domain

// LineItem is one row of a two-period statement
type LineItem struct {
	Label   string   `json:"label"`
	Prior   float64  `json:"prior"`
	Current float64  `json:"current"`
	Derived *Derived `json:"derived,omitempty"` // nil until metrics are computed
}

// Derived holds the per-row metrics attached by the metrics engine
type Derived struct {
	GrowthPct       float64 `json:"growth_pct"`
	PriorSharePct   float64 `json:"prior_share_pct"`
	CurrentSharePct float64 `json:"current_share_pct"`
}

// StatementTable is an ordered sequence of line items. Order is the
// statement presentation order and is preserved by every transformation.
type StatementTable struct {
	Items []LineItem `json:"items"`
}

// Len returns the number of rows
func (t StatementTable) Len() int {
	return len(t.Items)
}

// Clone returns a deep copy of the table
func (t StatementTable) Clone() StatementTable {
	items := make([]LineItem, len(t.Items))
	for i, item := range t.Items {
		items[i] = item
		if item.Derived != nil {
			d := *item.Derived
			items[i].Derived = &d
		}
	}
	return StatementTable{Items: items}
}

// Liquidity is the current ratio pair for both periods
type Liquidity struct {
	Prior     float64 `json:"prior"`
	Current   float64 `json:"current"`
	Available bool    `json:"available"`
}

// Delta returns current minus prior
func (l Liquidity) Delta() float64 {
	return l.Current - l.Prior
}
