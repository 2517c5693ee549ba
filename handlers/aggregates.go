// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strconv"
	"strings"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/formstats"
	"github.com/danielhkuo/delphi-survey/models"
)

// PageAggregates computes the first-round means and modes shown on a page.
func PageAggregates(page catalog.Page, rows []formstats.Row, digits int) (formstats.ByCode[*float64], formstats.ByCode[*string]) {
	var means formstats.ByCode[*float64]
	var modes formstats.ByCode[*string]
	if len(page.Means) > 0 {
		means = formstats.BuildMeansByCode(rows, page.Means, formstats.WithDigits(digits))
	}
	if len(page.Modes) > 0 {
		modes = formstats.BuildModesByCode(rows, page.Modes,
			formstats.WithTieBreaks(page.TieBreakFuncs()),
			formstats.WithAllowedValues(page.AllowedModeValues()))
	}
	return means, modes
}

// PatentRankings orders the catalog countries per patent indicator,
// e.g. {"Share": "미국 > 한국 > 일본"}. Indicators without any value
// are left out.
func PatentRankings(cat *catalog.Catalog, ind models.Industry) map[string]string {
	out := make(map[string]string, len(cat.PatentFields))
	for _, f := range cat.PatentFields {
		items := make([]formstats.Ranked, 0, len(cat.Countries))
		for _, c := range cat.Countries {
			items = append(items, formstats.Ranked{Name: c.Name, Value: ind.Metrics[c.Code+f.Name]})
		}
		if label := formstats.RankLabel(items); label != "" {
			out[f.Name] = label
		}
	}
	return out
}

// DisplayCode renders letters as their alphabet position and keeps
// digits, e.g. "A-1" -> "1-1", "AB" -> "1-2".
func DisplayCode(code string) string {
	var parts []string
	digits := ""
	flush := func() {
		if digits != "" {
			parts = append(parts, digits)
			digits = ""
		}
	}
	for _, ch := range strings.ToUpper(code) {
		switch {
		case ch >= 'A' && ch <= 'Z':
			flush()
			parts = append(parts, strconv.Itoa(int(ch-'A'+1)))
		case ch >= '0' && ch <= '9':
			digits += string(ch)
		default:
			flush()
		}
	}
	flush()
	return strings.Join(parts, "-")
}

// ResponseStatus counts responses per code and per respondent
// classification and flags codes below the configured minimums.
// Rows follow the first appearance of each code.
func ResponseStatus(status catalog.Status, responses []models.Response) []models.StatusRow {
	index := make(map[string]int)
	var rows []models.StatusRow
	for _, r := range responses {
		i, ok := index[r.Code]
		if !ok {
			i = len(rows)
			index[r.Code] = i
			counts := make(map[string]int, len(status.Classifications))
			for _, c := range status.Classifications {
				counts[c] = 0
			}
			rows = append(rows, models.StatusRow{
				Code:             r.Code,
				DisplayCode:      DisplayCode(r.Code),
				Field:            r.Field,
				Large:            r.Large,
				Intermediate:     r.Intermediate,
				ByClassification: counts,
			})
		}
		row := &rows[i]
		row.Total++
		if _, tracked := row.ByClassification[r.Classification]; tracked {
			row.ByClassification[r.Classification]++
		}
	}

	for i := range rows {
		row := &rows[i]
		row.AdditionalNeeded = row.Total < status.MinTotal
		for _, n := range row.ByClassification {
			if n < status.MinPerClassification {
				row.AdditionalNeeded = true
			}
		}
	}
	return rows
}

// SummaryTable summarizes fields per code over the given responses.
func SummaryTable(fields []string, responses []models.Response) []models.SummaryRow {
	rows := models.ResponseRows(responses)
	summaries := formstats.BuildSummariesByCode(rows, fields)

	seen := make(map[string]bool)
	var out []models.SummaryRow
	for _, r := range responses {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, models.SummaryRow{
			Code:         r.Code,
			Field:        r.Field,
			Large:        r.Large,
			Intermediate: r.Intermediate,
			Stats:        summaries[r.Code],
		})
	}
	return out
}

// summaryRecords flattens a summary table for CSV and XLSX export.
// Numeric cells are float64, absent ones nil.
func summaryRecords(fields []string, table []models.SummaryRow) ([]string, [][]any) {
	header := []string{"code", "field", "large", "intermediate"}
	for _, f := range fields {
		header = append(header, f+" mean", f+" median", f+" Q1", f+" Q3", f+" Q1~Q3")
	}

	records := make([][]any, 0, len(table))
	for _, row := range table {
		rec := []any{row.Code, row.Field, row.Large, row.Intermediate}
		for _, f := range fields {
			s := row.Stats[f]
			rec = append(rec, deref(s.Mean), deref(s.Median), deref(s.Q1), deref(s.Q3), s.Range)
		}
		records = append(records, rec)
	}
	return header, records
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
