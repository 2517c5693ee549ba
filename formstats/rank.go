// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import (
	"sort"
	"strings"
)

// RankSeparator joins names in a RankLabel.
const RankSeparator = " > "

// Ranked is a named raw value, e.g. one country's patent share.
type Ranked struct {
	Name  string
	Value any
}

// RankLabel orders items by ascending value, drops items whose value
// is absent and joins the names, e.g. "미국 > 일본 > 한국".
// Equal values keep their input order.
func RankLabel(items []Ranked) string {
	type entry struct {
		name  string
		value float64
	}

	entries := make([]entry, 0, len(items))
	for _, item := range items {
		if v, ok := NormalizeNumber(item.Value); ok {
			entries = append(entries, entry{name: item.Name, value: v})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value < entries[j].value
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return strings.Join(names, RankSeparator)
}
