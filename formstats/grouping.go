// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import "encoding/json"

// CodeField is the grouping key every row must carry.
const CodeField = "code"

// DefaultDigits is the rounding applied by BuildMeansByCode.
const DefaultDigits = 1

// Row is one respondent's answers for one classification code.
// Field sets differ per page, so rows stay maps.
type Row map[string]any

// Code returns the row's grouping key. ok is false when the code is
// missing or empty, and such rows belong to no group.
func (r Row) Code() (string, bool) {
	raw, present := r[CodeField]
	if !present {
		return "", false
	}
	switch raw.(type) {
	case string, []byte, json.Number:
	default:
		// numeric zero and false are not codes
		if f, ok := NormalizeNumber(raw); ok && f == 0 {
			return "", false
		}
	}
	return ModeKey(raw)
}

// ByCode maps code -> field -> statistic.
type ByCode[T any] map[string]map[string]T

// Get returns the statistic for code/field and whether it is present.
func (m ByCode[T]) Get(code, field string) (T, bool) {
	v, ok := m[code][field]
	return v, ok
}

// Codes returns the distinct valid codes in first-seen order.
func Codes(rows []Row) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, row := range rows {
		code, ok := row.Code()
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// partition collects each requested field's raw values per code.
func partition(rows []Row, fields []string) map[string]map[string][]any {
	byCode := make(map[string]map[string][]any)
	for _, row := range rows {
		code, ok := row.Code()
		if !ok {
			continue
		}
		fieldValues, exists := byCode[code]
		if !exists {
			fieldValues = make(map[string][]any, len(fields))
			byCode[code] = fieldValues
		}
		for _, field := range fields {
			fieldValues[field] = append(fieldValues[field], row[field])
		}
	}
	return byCode
}

// group applies fn to every (code, field) pair.
func group[T any](rows []Row, fields []string, fn func(field string, values []any) T) ByCode[T] {
	result := make(ByCode[T])
	for code, fieldValues := range partition(rows, fields) {
		out := make(map[string]T, len(fields))
		for _, field := range fields {
			out[field] = fn(field, fieldValues[field])
		}
		result[code] = out
	}
	return result
}

type meanOptions struct {
	digits int
}

// MeanOption configures BuildMeansByCode.
type MeanOption func(*meanOptions)

// WithDigits sets the number of decimal places means are rounded to.
func WithDigits(digits int) MeanOption {
	return func(o *meanOptions) {
		o.digits = digits
	}
}

// BuildMeansByCode computes the rounded mean of every field per code.
// A field without valid values maps to nil.
func BuildMeansByCode(rows []Row, fields []string, opts ...MeanOption) ByCode[*float64] {
	o := meanOptions{digits: DefaultDigits}
	for _, opt := range opts {
		opt(&o)
	}

	return group(rows, fields, func(_ string, values []any) *float64 {
		mean, ok := Mean(values)
		if !ok {
			return nil
		}
		rounded := Round(mean, o.digits)
		return &rounded
	})
}

type modeOptions struct {
	tieBreaks map[string]TieBreak
	allowed   map[string]map[string]bool
}

// ModeOption configures BuildModesByCode.
type ModeOption func(*modeOptions)

// WithTieBreaks overrides the tie-break comparator per field.
func WithTieBreaks(byField map[string]TieBreak) ModeOption {
	return func(o *modeOptions) {
		o.tieBreaks = byField
	}
}

// WithAllowedValues restricts the votes of a field to the listed values.
// Anything else is ignored, so a field whose votes are all unlisted has
// no mode.
func WithAllowedValues(byField map[string][]string) ModeOption {
	return func(o *modeOptions) {
		o.allowed = make(map[string]map[string]bool, len(byField))
		for field, values := range byField {
			set := make(map[string]bool, len(values))
			for _, v := range values {
				set[v] = true
			}
			o.allowed[field] = set
		}
	}
}

// BuildModesByCode computes the mode of every field per code.
// A field without votes maps to nil.
func BuildModesByCode(rows []Row, fields []string, opts ...ModeOption) ByCode[*string] {
	var o modeOptions
	for _, opt := range opts {
		opt(&o)
	}

	return group(rows, fields, func(field string, values []any) *string {
		if set, closed := o.allowed[field]; closed {
			values = onlyAllowed(values, set)
		}
		mode, ok := Mode(values, o.tieBreaks[field])
		if !ok {
			return nil
		}
		return &mode
	})
}

func onlyAllowed(values []any, set map[string]bool) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if key, ok := ModeKey(v); ok && set[key] {
			out = append(out, v)
		}
	}
	return out
}

// BuildClosestRangesByCode computes ClosestFractionRange per code and field.
func BuildClosestRangesByCode(rows []Row, fields []string, fraction float64) ByCode[*ClosestRange] {
	return group(rows, fields, func(_ string, values []any) *ClosestRange {
		return ClosestFractionRange(values, fraction)
	})
}

// BuildSummariesByCode computes the admin summary per code and field.
func BuildSummariesByCode(rows []Row, fields []string) ByCode[Summary] {
	return group(rows, fields, func(_ string, values []any) Summary {
		return Summarize(values)
	})
}
