// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// ErrNoValues is returned by Median and Quantile when no value normalizes
// to a number. Callers are expected to check the count first.
var ErrNoValues = errors.New("formstats: no valid values")

// DefaultFraction is the share of values kept by ClosestFractionRange.
const DefaultFraction = 0.5

// Summary is the admin-table aggregate for one code/field.
// Mean, Median, Q1 and Q3 are nil and Range is empty when N is 0.
type Summary struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Q1     *float64 `json:"q1"`
	Q3     *float64 `json:"q3"`
	Range  string   `json:"range"`
	N      int      `json:"n"`
}

// ClosestRange describes the K values nearest to the mean of N values.
type ClosestRange struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	N    int     `json:"n"`
	K    int     `json:"k"`
}

// Mean returns the arithmetic mean of the values that normalize to a
// number. ok is false when there are none. No rounding is applied.
func Mean(values []any) (mean float64, ok bool) {
	nums := Numbers(values)
	if len(nums) == 0 {
		return 0, false
	}
	mean, err := stats.Mean(nums)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// Median returns the middle value, or the mean of the two middle values
// for an even count.
func Median(values []any) (float64, error) {
	nums := Numbers(values)
	if len(nums) == 0 {
		return 0, ErrNoValues
	}
	median, err := stats.Median(nums)
	if err != nil {
		return 0, fmt.Errorf("median: %w", err)
	}
	return median, nil
}

// Quantile returns the p-quantile using linear interpolation on the
// (n+1)p rank. Ranks before the first element return the minimum and
// ranks at or past the last return the maximum.
func Quantile(values []any, p float64) (float64, error) {
	nums := Numbers(values)
	if len(nums) == 0 {
		return 0, ErrNoValues
	}
	sort.Float64s(nums)
	return interpolate(nums, p), nil
}

// Q1 is Quantile(values, 0.25).
func Q1(values []any) (float64, error) {
	return Quantile(values, 0.25)
}

// Q3 is Quantile(values, 0.75).
func Q3(values []any) (float64, error) {
	return Quantile(values, 0.75)
}

// interpolate expects sorted, non-empty input.
func interpolate(sorted []float64, p float64) float64 {
	n := len(sorted)
	pos := float64(n+1) * p
	floor := math.Floor(pos)
	base := int(floor) - 1
	rest := pos - floor

	if base < 0 {
		return sorted[0]
	}
	if base >= n-1 {
		return sorted[n-1]
	}
	return sorted[base] + rest*(sorted[base+1]-sorted[base])
}

// QuantileRangeLabel formats "{Q1} ~ {Q3}". The two quartiles are taken
// from their own sequences, which are often the same field twice.
func QuantileRangeLabel(q1Values, q3Values []any) (string, error) {
	q1, err := Q1(q1Values)
	if err != nil {
		return "", fmt.Errorf("q1: %w", err)
	}
	q3, err := Q3(q3Values)
	if err != nil {
		return "", fmt.Errorf("q3: %w", err)
	}
	return FormatNumber(q1) + " ~ " + FormatNumber(q3), nil
}

// ClosestFractionRange keeps the ceil(n*fraction) values nearest to the
// mean (at least one) and reports their min and max. A non-positive
// fraction means DefaultFraction. Returns nil when no value is valid.
func ClosestFractionRange(values []any, fraction float64) *ClosestRange {
	nums := Numbers(values)
	if len(nums) == 0 {
		return nil
	}
	if fraction <= 0 || math.IsNaN(fraction) {
		fraction = DefaultFraction
	}

	mean, err := stats.Mean(nums)
	if err != nil {
		return nil
	}

	k := int(math.Ceil(float64(len(nums)) * fraction))
	k = max(1, min(k, len(nums)))

	byDistance := make([]float64, len(nums))
	copy(byDistance, nums)
	sort.SliceStable(byDistance, func(i, j int) bool {
		return math.Abs(byDistance[i]-mean) < math.Abs(byDistance[j]-mean)
	})
	closest := byDistance[:k]

	return &ClosestRange{
		Mean: mean,
		Min:  floats.Min(closest),
		Max:  floats.Max(closest),
		N:    len(nums),
		K:    k,
	}
}

// Summarize computes mean, median, quartiles and the quartile label for
// one field. Every statistic is skipped when nothing is valid.
func Summarize(values []any) Summary {
	nums := Numbers(values)
	s := Summary{N: len(nums)}
	if s.N == 0 {
		return s
	}

	mean, _ := stats.Mean(nums)
	median, _ := stats.Median(nums)

	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	sort.Float64s(sorted)
	q1 := interpolate(sorted, 0.25)
	q3 := interpolate(sorted, 0.75)

	s.Mean = &mean
	s.Median = &median
	s.Q1 = &q1
	s.Q3 = &q3
	s.Range = FormatNumber(q1) + " ~ " + FormatNumber(q3)
	return s
}
