package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice extracts a numeric price from the heterogeneous encodings the
// search provider uses: a plain number, a localized currency string like
// "1 234,56 €", or a price-range slice where only the first element counts.
// The second return value is false when no price could be extracted.
func ParsePrice(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return float64(v), true
	case string:
		return parsePriceString(v)
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		if s, ok := v[0].(string); ok {
			return parsePriceString(s)
		}
		return ParsePrice(v[0])
	case []string:
		if len(v) == 0 {
			return 0, false
		}
		return parsePriceString(v[0])
	default:
		return 0, false
	}
}

// parsePriceString strips everything that is not a digit, comma, or period,
// then treats the last remaining comma as the decimal separator.
func parsePriceString(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	if i := strings.LastIndexByte(cleaned, ','); i >= 0 {
		cleaned = cleaned[:i] + "." + cleaned[i+1:]
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	return price, true
}
