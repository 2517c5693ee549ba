// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/cliparse"
	"github.com/danielhkuo/delphi-survey/middleware"
	"github.com/danielhkuo/delphi-survey/models"
	"github.com/danielhkuo/delphi-survey/store"
)

// Upload limit for imports
const maxUploadBytes = 32 << 20

type AdminHandler struct {
	store   *store.Store
	catalog *catalog.Catalog
	cfg     cliparse.Config
}

func NewAdminHandler(st *store.Store, cat *catalog.Catalog, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: st, catalog: cat, cfg: cfg}
}

// GetStatus handles GET /admin/status?prefix=A
// Counts second-round responses per code.
func (h *AdminHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToUpper(r.URL.Query().Get("prefix"))

	responses, err := h.store.ResponsesByPrefix(r.Context(), models.RoundSecond, prefix)
	if err != nil {
		slog.Error("failed to query responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows := ResponseStatus(h.catalog.Status, responses)
	if rows == nil {
		rows = []models.StatusRow{}
	}
	middleware.JSONResponse(w, http.StatusOK, rows)
}

// GetSummary handles GET /admin/{prefix}/summary
func (h *AdminHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	table, ok := h.summary(w, r)
	if !ok {
		return
	}
	if table == nil {
		table = []models.SummaryRow{}
	}
	middleware.JSONResponse(w, http.StatusOK, table)
}

// ExportCSV handles GET /admin/{prefix}/export.csv
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table, ok := h.summary(w, r)
	if !ok {
		return
	}

	header, records := summaryRecords(h.catalog.SummaryFields, table)
	var buf bytes.Buffer
	if err := writeCSV(&buf, header, records); err != nil {
		slog.Error("failed to write csv", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(r)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportXLSX handles GET /admin/{prefix}/export.xlsx
func (h *AdminHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	table, ok := h.summary(w, r)
	if !ok {
		return
	}

	header, records := summaryRecords(h.catalog.SummaryFields, table)
	var buf bytes.Buffer
	if err := writeXLSX(&buf, header, records); err != nil {
		slog.Error("failed to write xlsx", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(r)+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ImportResponses handles POST /admin/import/responses?round=1
// Multipart upload in field "file", .xlsx or .csv, header row first.
func (h *AdminHandler) ImportResponses(w http.ResponseWriter, r *http.Request) {
	round := models.RoundFirst
	if v := r.URL.Query().Get("round"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != models.RoundFirst && n != models.RoundSecond) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "round must be 1 or 2")
			return
		}
		round = n
	}

	rows, ok := h.upload(w, r)
	if !ok {
		return
	}

	responses, err := parseResponses(round, rows)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.store.InsertResponses(r.Context(), responses)
	if err != nil {
		slog.Error("failed to import responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Import failed")
		return
	}

	slog.Info("responses imported", "round", round, "count", n)
	middleware.JSONResponse(w, http.StatusCreated, models.ImportResponse{Imported: n})
}

// ImportIndustries handles POST /admin/import/industries
// Columns other than code/field/large/intermediate/description are
// stored as patent metrics.
func (h *AdminHandler) ImportIndustries(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.upload(w, r)
	if !ok {
		return
	}

	industries, err := parseIndustries(rows)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.store.UpsertIndustries(r.Context(), industries)
	if err != nil {
		slog.Error("failed to import industries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Import failed")
		return
	}

	slog.Info("industries imported", "count", n)
	middleware.JSONResponse(w, http.StatusCreated, models.ImportResponse{Imported: n})
}

func (h *AdminHandler) summary(w http.ResponseWriter, r *http.Request) ([]models.SummaryRow, bool) {
	prefix := strings.ToUpper(r.PathValue("prefix"))
	if prefix == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "prefix is required")
		return nil, false
	}

	responses, err := h.store.ResponsesByPrefix(r.Context(), models.RoundSecond, prefix)
	if err != nil {
		slog.Error("failed to query responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return SummaryTable(h.catalog.SummaryFields, responses), true
}

func (h *AdminHandler) upload(w http.ResponseWriter, r *http.Request) ([][]string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "multipart upload required")
		return nil, false
	}
	file, fh, err := r.FormFile("file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	defer file.Close()

	rows, err := readTable(fh.Filename, file)
	if errors.Is(err, ErrUnsupportedFormat) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "could not read file: "+err.Error())
		return nil, false
	}
	return rows, true
}

func exportName(r *http.Request) string {
	safe := strings.Map(func(c rune) rune {
		if c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' {
			return c
		}
		return -1
	}, strings.ToUpper(r.PathValue("prefix")))
	return "summary-" + safe
}
