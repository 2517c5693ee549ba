// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/delphi-survey/formstats"
	"github.com/danielhkuo/delphi-survey/models"
)

const exportSheet = "Summary"

var ErrUnsupportedFormat = errors.New("unsupported file format (use .xlsx or .csv)")

// readTable reads the first sheet of an XLSX file or a CSV file,
// chosen by the file name extension.
func readTable(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read sheet: %w", err)
		}
		return rows, nil
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// tableRecords pairs every data row with the header. Header cells are
// trimmed; short rows leave the missing columns out.
func tableRecords(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		empty := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			rec[header[i]] = cell
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// Identity columns of an imported response; every other column is an answer.
var responseColumns = map[string]func(*models.Response, string){
	"id":                 func(r *models.Response, v string) { r.ID = v },
	"code":               func(r *models.Response, v string) { r.Code = v },
	"name":               func(r *models.Response, v string) { r.Name = v },
	"tel":                func(r *models.Response, v string) { r.Tel = v },
	"email":              func(r *models.Response, v string) { r.Email = v },
	"company":            func(r *models.Response, v string) { r.Company = v },
	"position":           func(r *models.Response, v string) { r.Position = v },
	"classification":     func(r *models.Response, v string) { r.Classification = v },
	"etc":                func(r *models.Response, v string) { r.ClassificationEtc = v },
	"classification_etc": func(r *models.Response, v string) { r.ClassificationEtc = v },
	"career":             func(r *models.Response, v string) { r.Career = v },
	"field":              func(r *models.Response, v string) { r.Field = v },
	"large":              func(r *models.Response, v string) { r.Large = v },
	"intermediate":       func(r *models.Response, v string) { r.Intermediate = v },
	"created_at": func(r *models.Response, v string) {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.CreatedAt = t
		}
	},
}

func parseResponses(round int, rows [][]string) ([]models.Response, error) {
	var out []models.Response
	for i, rec := range tableRecords(rows) {
		r := models.Response{Round: round, Answers: map[string]any{}}
		for col, v := range rec {
			if set, ok := responseColumns[col]; ok {
				set(&r, v)
				continue
			}
			if v != "" {
				r.Answers[col] = v
			}
		}
		if r.Code == "" {
			return nil, fmt.Errorf("row %d: code is required", i+2)
		}
		out = append(out, r)
	}
	return out, nil
}

func parseIndustries(rows [][]string) ([]models.Industry, error) {
	var out []models.Industry
	for i, rec := range tableRecords(rows) {
		ind := models.Industry{Metrics: map[string]any{}}
		for col, v := range rec {
			switch col {
			case "code":
				ind.Code = v
			case "field":
				ind.Field = v
			case "large":
				ind.Large = v
			case "intermediate":
				ind.Intermediate = v
			case "description":
				ind.Description = v
			default:
				if n, ok := formstats.NormalizeNumber(v); ok {
					ind.Metrics[col] = n
				} else if v != "" {
					ind.Metrics[col] = v
				}
			}
		}
		if ind.Code == "" {
			return nil, fmt.Errorf("row %d: code is required", i+2)
		}
		out = append(out, ind)
	}
	return out, nil
}

func writeCSV(w io.Writer, header []string, records [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		line := make([]string, len(rec))
		for i, v := range rec {
			line[i] = cellString(v)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return formstats.FormatNumber(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func writeXLSX(w io.Writer, header []string, records [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := setRow(f, 1, headerRow); err != nil {
		return err
	}

	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			if v == nil {
				v = ""
			}
			row[j] = v
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
