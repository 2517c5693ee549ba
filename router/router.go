// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/cliparse"
	"github.com/danielhkuo/delphi-survey/handlers"
	"github.com/danielhkuo/delphi-survey/middleware"
	"github.com/danielhkuo/delphi-survey/store"
)

func NewRouter(st *store.Store, cat *catalog.Catalog, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(st, cat, cfg)
	statsHandler := handlers.NewStatsHandler(st, cat, cfg)
	adminHandler := handlers.NewAdminHandler(st, cat, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Survey definition
	mux.HandleFunc("GET /catalog", middleware.WithLogging(surveyHandler.GetCatalog))

	// Wizard sessions (respondents)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(surveyHandler.StartSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(surveyHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(surveyHandler.DeleteSession))
	mux.HandleFunc("POST /sessions/{id}/identify", middleware.WithLogging(surveyHandler.Identify))
	mux.HandleFunc("GET /sessions/{id}/pages/{page}", middleware.WithLogging(surveyHandler.GetPage))
	mux.HandleFunc("PUT /sessions/{id}/pages/{page}", middleware.WithLogging(surveyHandler.SaveAnswers))
	mux.HandleFunc("POST /sessions/{id}/submit", middleware.WithLogging(surveyHandler.Submit))

	// First-round aggregates
	mux.HandleFunc("GET /stats/{page}", middleware.WithLogging(statsHandler.GetPageStats))

	// Admin dashboard
	mux.HandleFunc("GET /admin/status", middleware.WithLogging(adminHandler.GetStatus))
	mux.HandleFunc("GET /admin/{prefix}/summary", middleware.WithLogging(adminHandler.GetSummary))
	mux.HandleFunc("GET /admin/{prefix}/export.csv", middleware.WithLogging(adminHandler.ExportCSV))
	mux.HandleFunc("GET /admin/{prefix}/export.xlsx", middleware.WithLogging(adminHandler.ExportXLSX))
	mux.HandleFunc("POST /admin/import/responses", middleware.WithLogging(adminHandler.ImportResponses))
	mux.HandleFunc("POST /admin/import/industries", middleware.WithLogging(adminHandler.ImportIndustries))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("delphi-survey API v1"))
	})

	return mux
}
