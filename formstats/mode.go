// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import (
	"encoding/json"
	"strconv"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TieBreak orders two candidate mode values with equal counts.
// A negative result means a should be preferred over b.
type TieBreak func(a, b string) int

// collators are pooled because a Collator keeps per-call buffers.
var collators = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// DefaultTieBreak prefers the numerically smaller value when both sides
// are numbers (lower Likert answer wins), otherwise English collation order.
func DefaultTieBreak(a, b string) int {
	na, aok := NormalizeNumber(a)
	nb, bok := NormalizeNumber(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}

	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// PriorityTieBreak prefers values in the given order. Values not listed
// come after all listed ones and are ordered by DefaultTieBreak.
func PriorityTieBreak(order ...string) TieBreak {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		if _, seen := rank[v]; !seen {
			rank[v] = i
		}
	}

	return func(a, b string) int {
		ra, aok := rank[a]
		rb, bok := rank[b]
		switch {
		case aok && bok:
			return ra - rb
		case aok:
			return -1
		case bok:
			return 1
		default:
			return DefaultTieBreak(a, b)
		}
	}
}

// ModeKey converts a raw selection value to the string it is counted
// under. ok is false for nil and empty strings, which are not votes.
func ModeKey(value any) (string, bool) {
	var key string
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		key = v
	case []byte:
		key = string(v)
	case json.Number:
		key = v.String()
	case float64:
		key = FormatNumber(v)
	case float32:
		key = FormatNumber(float64(v))
	case int:
		key = strconv.Itoa(v)
	case int8:
		key = strconv.FormatInt(int64(v), 10)
	case int16:
		key = strconv.FormatInt(int64(v), 10)
	case int32:
		key = strconv.FormatInt(int64(v), 10)
	case int64:
		key = strconv.FormatInt(v, 10)
	case uint:
		key = strconv.FormatUint(uint64(v), 10)
	case uint8:
		key = strconv.FormatUint(uint64(v), 10)
	case uint16:
		key = strconv.FormatUint(uint64(v), 10)
	case uint32:
		key = strconv.FormatUint(uint64(v), 10)
	case uint64:
		key = strconv.FormatUint(v, 10)
	case bool:
		key = strconv.FormatBool(v)
	case interface{ String() string }:
		key = v.String()
	default:
		return "", false
	}

	if key == "" {
		return "", false
	}
	return key, true
}

// Mode returns the most frequent value. An equal count replaces the
// current best only when tieBreak prefers it; a nil tieBreak means
// DefaultTieBreak. ok is false when no value counts as a vote.
func Mode(values []any, tieBreak TieBreak) (mode string, ok bool) {
	if tieBreak == nil {
		tieBreak = DefaultTieBreak
	}

	counts := make(map[string]int)
	var order []string
	for _, raw := range values {
		key, valid := ModeKey(raw)
		if !valid {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return "", false
	}

	best, bestCount := "", -1
	for _, key := range order {
		count := counts[key]
		if count > bestCount || (count == bestCount && tieBreak(key, best) < 0) {
			best, bestCount = key, count
		}
	}
	return best, true
}
