// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/delphi-survey/models"
	"github.com/danielhkuo/delphi-survey/store"
	"github.com/danielhkuo/delphi-survey/testutil"
)

func newAdminHandler(t *testing.T) (*AdminHandler, *store.Store) {
	t.Helper()

	st := testutil.SetupTestDB(t)
	for _, r := range []models.Response{
		{Code: "A-1", Classification: "ind", Field: "수송", Intermediate: "전기차", Answers: map[string]any{"importance": "4", "krPer": "80"}},
		{Code: "A-1", Classification: "aca", Field: "수송", Intermediate: "전기차", Answers: map[string]any{"importance": "2", "krPer": "90"}},
		{Code: "B-1", Classification: "ind", Field: "수송", Intermediate: "자율주행", Answers: map[string]any{"importance": "5"}},
	} {
		r.Round = models.RoundSecond
		testutil.CreateTestResponse(t, st, r)
	}
	return NewAdminHandler(st, testutil.LoadCatalog(t), testutil.GetTestConfig()), st
}

func TestGetStatus(t *testing.T) {
	h, _ := newAdminHandler(t)

	w := serve(h.GetStatus, "GET", "/admin/status?prefix=a", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var rows []models.StatusRow
	testutil.AssertJSON(t, w, &rows)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row for prefix A, got %d", len(rows))
	}
	row := rows[0]
	if row.Code != "A-1" || row.DisplayCode != "1-1" || row.Total != 2 {
		t.Errorf("Unexpected row: %+v", row)
	}
	if row.ByClassification["ind"] != 1 || row.ByClassification["aca"] != 1 || row.ByClassification["lab"] != 0 {
		t.Errorf("Unexpected counts: %v", row.ByClassification)
	}
	if !row.AdditionalNeeded {
		t.Error("Expected additional responses to be needed")
	}

	w = serve(h.GetStatus, "GET", "/admin/status", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	rows = nil
	testutil.AssertJSON(t, w, &rows)
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows without prefix, got %d", len(rows))
	}

	w = serve(h.GetStatus, "GET", "/admin/status?prefix=Z", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %s", w.Body.String())
	}
}

func TestGetSummary(t *testing.T) {
	h, _ := newAdminHandler(t)

	w := serve(h.GetSummary, "GET", "/", nil, map[string]string{"prefix": "a"})
	testutil.AssertStatus(t, w, http.StatusOK)

	var table []models.SummaryRow
	testutil.AssertJSON(t, w, &table)
	if len(table) != 1 || table[0].Code != "A-1" {
		t.Fatalf("Expected only A-1, got %+v", table)
	}
	s := table[0].Stats["importance"]
	if s.N != 2 || s.Mean == nil || *s.Mean != 3 {
		t.Errorf("Unexpected importance summary: %+v", s)
	}
	if s := table[0].Stats["urgency"]; s.N != 0 || s.Mean != nil {
		t.Errorf("Expected empty urgency summary, got %+v", s)
	}
}

func TestExportCSV(t *testing.T) {
	h, _ := newAdminHandler(t)

	w := serve(h.ExportCSV, "GET", "/", nil, map[string]string{"prefix": "A"})
	testutil.AssertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "summary-A.csv") {
		t.Errorf("Unexpected Content-Disposition: %s", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one row, got %d records", len(records))
	}
	if records[0][0] != "code" || records[0][4] != "krPer mean" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[1][0] != "A-1" || records[1][4] != "85" {
		t.Errorf("Unexpected row: %v", records[1])
	}
}

func TestExportXLSX(t *testing.T) {
	h, _ := newAdminHandler(t)

	w := serve(h.ExportXLSX, "GET", "/", nil, map[string]string{"prefix": "b"})
	testutil.AssertStatus(t, w, http.StatusOK)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Failed to open exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("Failed to read Summary sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header and one row, got %d", len(rows))
	}
	if rows[0][0] != "code" || rows[1][0] != "B-1" || rows[1][3] != "자율주행" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestImportResponses(t *testing.T) {
	st := testutil.SetupTestDB(t)
	h := NewAdminHandler(st, testutil.LoadCatalog(t), testutil.GetTestConfig())

	content := "\ufeffcode,name,tel,classification,etc,field,importance,krPer\n" +
		"A-1,Alice,01012345678,ind,,수송,4,80\n" +
		"A-2,Alice,01012345678,etc,협회,수송,,70\n" +
		",,,,,,,\n"

	req := testutil.MakeUploadRequest(t, "POST", "/admin/import/responses?round=1", "round1.csv", []byte(content))
	w := httptest.NewRecorder()
	h.ImportResponses(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.ImportResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", resp.Imported)
	}

	found, err := st.FindRespondent(context.Background(), models.RoundFirst, "Alice", "01012345678")
	if err != nil {
		t.Fatalf("Failed to query imported responses: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 responses for Alice, got %d", len(found))
	}
	for _, r := range found {
		if r.Code == "A-2" {
			if r.ClassificationEtc != "협회" {
				t.Errorf("Expected etc classification, got %q", r.ClassificationEtc)
			}
			if _, ok := r.Answers["importance"]; ok {
				t.Error("Blank cells should not become answers")
			}
		}
	}

	tests := []struct {
		name     string
		path     string
		filename string
		content  string
	}{
		{"bad round", "/admin/import/responses?round=3", "r.csv", content},
		{"unsupported format", "/admin/import/responses", "r.txt", content},
		{"missing code", "/admin/import/responses", "r.csv", "name,importance\nAlice,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeUploadRequest(t, "POST", tt.path, tt.filename, []byte(tt.content))
			w := httptest.NewRecorder()
			h.ImportResponses(w, req)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		w := serve(h.ImportResponses, "POST", "/admin/import/responses", map[string]string{"code": "A-1"}, nil)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestImportIndustries(t *testing.T) {
	st := testutil.SetupTestDB(t)
	h := NewAdminHandler(st, testutil.LoadCatalog(t), testutil.GetTestConfig())

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]any{
		{"code", "field", "intermediate", "description", "krShare", "usShare"},
		{"A-1", "수송", "전기차", "배터리 전기차", 2, "1"},
		{"A-2", "수송", "수소차", "", "", 3.5},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	f.Close()

	req := testutil.MakeUploadRequest(t, "POST", "/admin/import/industries", "industries.xlsx", buf.Bytes())
	w := httptest.NewRecorder()
	h.ImportIndustries(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	industries, err := st.Industries(context.Background(), []string{"A-1", "A-2"})
	if err != nil {
		t.Fatalf("Failed to query industries: %v", err)
	}
	if len(industries) != 2 {
		t.Fatalf("Expected 2 industries, got %d", len(industries))
	}
	a1 := industries["A-1"]
	if a1.Description != "배터리 전기차" || a1.Metrics["krShare"] != 2.0 || a1.Metrics["usShare"] != 1.0 {
		t.Errorf("Unexpected A-1: %+v", a1)
	}
	if _, ok := industries["A-2"].Metrics["krShare"]; ok {
		t.Error("Blank metric should be left out")
	}

	// Re-import replaces the row
	content := "code,description\nA-1,갱신됨\n"
	req = testutil.MakeUploadRequest(t, "POST", "/admin/import/industries", "industries.csv", []byte(content))
	w = httptest.NewRecorder()
	h.ImportIndustries(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	industries, err = st.Industries(context.Background(), []string{"A-1"})
	if err != nil {
		t.Fatalf("Failed to query industries: %v", err)
	}
	if industries["A-1"].Description != "갱신됨" {
		t.Errorf("Expected description to be replaced, got %q", industries["A-1"].Description)
	}
}
