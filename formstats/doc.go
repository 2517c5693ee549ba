// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package formstats aggregates survey answers per classification code.

All functions are pure: they read a snapshot of rows and return freshly
built results. Nothing here touches the database or the network.

# Normalization

Raw answers arrive as strings, numbers, driver bytes or nil.
NormalizeNumber is the single coercion rule used everywhere:

	NormalizeNumber("3")   // 3, true
	NormalizeNumber("0.0") // 0, true
	NormalizeNumber("")    // 0, false
	NormalizeNumber("기타") // 0, false

Absent values never count toward n and never bias a statistic.

# Numeric Aggregator

  - Mean: arithmetic mean, unrounded
  - Median: middle value, mean of the two middles for even counts
  - Quantile, Q1, Q3: linear interpolation on rank (n+1)p
  - QuantileRangeLabel: "Q1 ~ Q3"
  - ClosestFractionRange: min/max of the values nearest the mean
  - Summarize: all of the above for one admin table cell

Median and Quantile return ErrNoValues on empty input; the grouping
functions never call them without values.

# Mode Resolver

Mode counts string keys and breaks ties with a TieBreak. DefaultTieBreak
prefers the smaller number, then English collation order.
PriorityTieBreak fixes an explicit preference list:

	formstats.Mode(answers, formstats.PriorityTieBreak("kr", "us", "cn", "jp", "eu", "etc"))

# Grouping Layer

	rows := []formstats.Row{
		{"code": "A", "x": 1},
		{"code": "A", "x": 3},
		{"code": "B", "x": 5},
	}
	means := formstats.BuildMeansByCode(rows, []string{"x"})
	// means["A"]["x"] == 2, means["B"]["x"] == 5

Rows without a code are skipped. Each code gets an entry for every
requested field; a nil entry means no data.
*/
package formstats
