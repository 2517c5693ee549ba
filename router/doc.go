// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Delphi survey API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cat, cfg)

# Endpoints

Health and definition:

	GET /health
	GET /catalog

Wizard sessions (respondents):

	POST   /sessions                   - Start (requires agree "yes")
	GET    /sessions/{id}              - Current step and codes
	DELETE /sessions/{id}              - Abandon
	POST   /sessions/{id}/identify     - Match name + phone to round one
	GET    /sessions/{id}/pages/{page} - Page data with round-one aggregates
	PUT    /sessions/{id}/pages/{page} - Save answers and advance
	POST   /sessions/{id}/submit       - Store round-two responses

Statistics:

	GET /stats/{page}?code=A-1&code=B-2 - Round-one means, ranges, modes

Admin:

	GET  /admin/status               - Response counts per code
	GET  /admin/{prefix}/summary     - Round-two summary table
	GET  /admin/{prefix}/export.csv  - Summary as CSV
	GET  /admin/{prefix}/export.xlsx - Summary as XLSX
	POST /admin/import/responses     - Upload responses (?round=1|2)
	POST /admin/import/industries    - Upload classifications and metrics

# Handler Initialization

	surveyHandler := handlers.NewSurveyHandler(st, cat, cfg)
	statsHandler := handlers.NewStatsHandler(st, cat, cfg)
	adminHandler := handlers.NewAdminHandler(st, cat, cfg)

All handlers receive the store, the survey catalog and configuration.
*/
package router
