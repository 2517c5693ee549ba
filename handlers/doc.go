// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the survey API.

# Handler Types

Each handler is a struct with store, catalog and config dependencies:

  - SurveyHandler: the respondent wizard (consent, identification, pages, submit)
  - StatsHandler: first-round aggregates for arbitrary codes
  - AdminHandler: response status, summary tables, import and export

	surveyHandler := handlers.NewSurveyHandler(st, cat, cfg)

# Wizard Flow

	POST /sessions                      → StartSession (agree must be "yes")
	POST /sessions/{id}/identify        → Identify (name + tel1..3)
	GET  /sessions/{id}/pages/{page}    → GetPage
	PUT  /sessions/{id}/pages/{page}    → SaveAnswers
	POST /sessions/{id}/submit          → Submit (stores round-2 responses)

Answers are keyed "<code>_<field>", e.g. "A-1_importance". A page may
only be opened once every earlier page was saved. A submitted session
rejects further changes with 409 Conflict.

# Aggregates

GetPage and GetPageStats group first-round responses by code. Means are
rounded to the configured digits; modes use the page's tie-break order.
Pages flagged with patents also carry per-indicator country rankings
from the industry catalog.

# Admin

	GET  /admin/status?prefix=A         → per-code counts by classification
	GET  /admin/{prefix}/summary        → mean, median, Q1, Q3 per field
	GET  /admin/{prefix}/export.csv
	GET  /admin/{prefix}/export.xlsx
	POST /admin/import/responses?round=1
	POST /admin/import/industries

Imports accept a multipart "file" in .xlsx or .csv with a header row.

# Error Handling

Handlers map errors to status codes:

  - 400 Bad Request: invalid input or missing consent
  - 404 Not Found: unknown session, page or respondent
  - 409 Conflict: page not reached yet, session not finished or already submitted
  - 422 Unprocessable Entity: required answers missing
  - 500 Internal Server Error: database errors
*/
package handlers
