// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Delphi survey API server.

The server runs the second round of a Delphi technology survey: a
respondent identifies with name and phone number, walks through the
question pages for the classification codes they answered in round one,
sees the first-round means and modes for each code, and submits.

# Starting the Server

	DATABASE_URL=survey.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - CATALOG_PATH (-catalog): YAML survey definition (default: embedded)
  - MEAN_DIGITS (-digits): decimals kept on displayed means (default: 1)
  - ALLOWED_ORIGIN (-origin): CORS origin (default: *)

A .env file in the working directory is loaded first.

# Architecture

  - formstats: means, modes, quantiles and closest ranges per code
  - catalog: pages, fields and thresholds of the survey
  - wizard: the respondent state machine
  - store: responses, industries and sessions over sqlx
  - handlers: HTTP handlers for the wizard, stats and admin
  - router, middleware, models, db, cliparse
*/
package main
