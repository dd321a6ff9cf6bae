package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CoerceAmount converts a loosely typed monetary value into whole currency
// units. Null, empty and unparseable inputs become 0; it never fails.
//
// Strings may carry an "Rp" prefix and Indonesian ("1.000.000,50") or
// English ("1,000,000.50") separators.
func CoerceAmount(value any) int64 {
	d, ok := ParseAmount(value)
	if !ok {
		return 0
	}
	return d.IntPart()
}

// ParseAmount is CoerceAmount with an explicit success flag.
func ParseAmount(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case decimal.Decimal:
		return v, true
	case json.Number:
		// already a JSON numeric literal: "." is always the decimal mark
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		return parseAmountString(v)
	case *string:
		if v == nil {
			return decimal.Zero, false
		}
		return parseAmountString(*v)
	default:
		return decimal.Zero, false
	}
}

func parseAmountString(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "rp")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// whichever separator comes last is the decimal mark
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		if isThousandsGrouped(s, ',') {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1 || isThousandsGrouped(s, '.'):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// isThousandsGrouped reports whether every group after sep has exactly three digits.
func isThousandsGrouped(s string, sep byte) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
