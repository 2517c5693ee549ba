// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - industry: intermediate classifications with patent metrics (JSON text)
  - response: one row per respondent, code and round; answers as JSON text
  - wizard_session: serialized wizard state keyed by session id

# Indexes

  - response.(survey_round, code)
  - response.(survey_round, name, tel)
*/
package db
