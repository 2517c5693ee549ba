// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/cliparse"
	"github.com/danielhkuo/delphi-survey/formstats"
	"github.com/danielhkuo/delphi-survey/middleware"
	"github.com/danielhkuo/delphi-survey/models"
	"github.com/danielhkuo/delphi-survey/store"
)

type StatsHandler struct {
	store   *store.Store
	catalog *catalog.Catalog
	cfg     cliparse.Config
}

func NewStatsHandler(st *store.Store, cat *catalog.Catalog, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{store: st, catalog: cat, cfg: cfg}
}

// GetPageStats handles GET /stats/{page}?code=A-1&code=B-2
// Optional fraction (0,1] sets the closest-range share, default 0.5.
func (h *StatsHandler) GetPageStats(w http.ResponseWriter, r *http.Request) {
	page, ok := h.catalog.Page(r.PathValue("page"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}

	codes := r.URL.Query()["code"]
	if len(codes) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one code is required")
		return
	}

	fraction := formstats.DefaultFraction
	if v := r.URL.Query().Get("fraction"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "fraction must be in (0, 1]")
			return
		}
		fraction = f
	}

	responses, err := h.store.ResponsesByCodes(r.Context(), models.RoundFirst, codes)
	if err != nil {
		slog.Error("failed to query responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	rows := models.ResponseRows(responses)

	means, modes := PageAggregates(page, rows, h.cfg.MeanDigits)
	stats := models.PageStats{
		Page:  page.Name,
		Means: means,
		Modes: modes,
	}
	if len(page.Means) > 0 {
		stats.Ranges = formstats.BuildClosestRangesByCode(rows, page.Means, fraction)
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
