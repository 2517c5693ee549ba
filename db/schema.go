// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable between PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Timestamps are TEXT in a fixed-width UTC layout so they sort
// lexically on both drivers.
const schema = `
-- Classification catalog and patent metrics
CREATE TABLE IF NOT EXISTS industry (
    code TEXT PRIMARY KEY,
    field TEXT NOT NULL DEFAULT '',
    large TEXT NOT NULL DEFAULT '',
    intermediate TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    metrics TEXT NOT NULL DEFAULT '{}'
);

-- Responses, one row per respondent x code x round
CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    survey_round INTEGER NOT NULL CHECK (survey_round IN (1, 2)),
    code TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    tel TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    job_position TEXT NOT NULL DEFAULT '',
    classification TEXT NOT NULL DEFAULT '',
    classification_etc TEXT NOT NULL DEFAULT '',
    career TEXT NOT NULL DEFAULT '',
    field TEXT NOT NULL DEFAULT '',
    large TEXT NOT NULL DEFAULT '',
    intermediate TEXT NOT NULL DEFAULT '',
    answers TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_round_code ON response(survey_round, code);
CREATE INDEX IF NOT EXISTS idx_response_identity ON response(survey_round, name, tel);

-- Wizard sessions; submitted is set once, together with the round-2 rows
CREATE TABLE IF NOT EXISTS wizard_session (
    id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    submitted INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);
`
