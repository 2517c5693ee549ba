// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// NormalizeNumber coerces a raw answer value to a finite number.
// The second return is false when the value is absent: nil, empty or
// blank strings, and anything that does not coerce to a finite number.
// "0", 0 and "0.0" are valid zeros.
func NormalizeNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		return parseNumber(v)
	case []byte:
		return parseNumber(string(v))
	case json.Number:
		return parseNumber(v.String())
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseNumber accepts decimal and exponent notation with surrounding
// whitespace, plus unsigned 0x/0o/0b integer literals.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	// ParseFloat also takes "inf", "nan" and hex floats; none of those are answers
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") ||
		strings.Contains(lower, "x") || strings.Contains(s, "_") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Numbers normalizes values and drops the absent ones, keeping input order.
func Numbers(values []any) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := NormalizeNumber(v); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

// Round rounds v to digits decimal places the way a spreadsheet or
// browser displays it: the exact binary value is rounded, ties away
// from zero. Round(2.25, 1) is 2.3 while Round(1.45, 1) is 1.4, because
// 1.45 is stored slightly below the tie.
func Round(v float64, digits int) float64 {
	if digits < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	x := new(big.Float).SetPrec(512).SetFloat64(math.Abs(v))
	x.Mul(x, new(big.Float).SetPrec(512).SetInt(scale))
	x.Add(x, big.NewFloat(0.5))

	n, _ := x.Int(nil)
	s := n.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}

	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v
	}
	if v < 0 && r != 0 {
		r = -r
	}
	return r
}

// FormatNumber renders a number in its shortest round-trip form the way
// a browser prints it: "12.5", "3", and exponent form from 1e21 up and
// below 1e-6 ("1e+21", "1.5e-7"). Negative zero prints as "0".
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		// Go pads the exponent to two digits
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
