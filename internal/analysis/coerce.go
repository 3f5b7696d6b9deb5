package analysis

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NumberFormat describes how numeric text is written in uploaded cells.
// A zero Thousands rune means no grouping separator is expected.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// DefaultNumberFormat uses a decimal point and comma grouping ("1,234.5")
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{Decimal: '.', Thousands: ','}
}

// Coercer normalizes raw cell values to numbers
type Coercer struct {
	format NumberFormat
}

// NewCoercer creates a coercer for the given number format
func NewCoercer(format NumberFormat) *Coercer {
	if format.Decimal == 0 {
		format.Decimal = '.'
	}
	if format.Thousands == format.Decimal {
		format.Thousands = 0
	}
	return &Coercer{format: format}
}

// Coerce parses raw as a number. Missing, empty, non-numeric and
// non-finite input yields 0; it never fails.
func (c *Coercer) Coerce(raw any) float64 {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case string:
		v = c.parse(x)
	case []byte:
		v = c.parse(string(x))
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (c *Coercer) parse(s string) float64 {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return 0
	}

	negative := false
	// Accounting notation: (1,000) is -1000
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimFunc(s[1:len(s)-1], unicode.IsSpace)
	}
	// U+2212 MINUS SIGN shows up in exported spreadsheets
	s = strings.Replace(s, "−", "-", 1)
	if negative && strings.HasPrefix(s, "-") {
		// "(-5)" is ambiguous
		return 0
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case c.format.Thousands != 0 && r == c.format.Thousands:
			continue
		case unicode.IsSpace(r) || r == ' ':
			// grouping by spaces ("1 000 000")
			continue
		case r == c.format.Decimal:
			b.WriteByte('.')
		case (r >= '0' && r <= '9') || r == '-' || r == '+' || r == 'e' || r == 'E':
			b.WriteRune(r)
		default:
			return 0
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	if negative {
		v = -v
	}
	return v
}
