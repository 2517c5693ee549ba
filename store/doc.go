// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists survey responses, industry metrics and wizard
sessions with sqlx on PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).

	st, err := store.Open(store.DriverSQLite, "survey.db")
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

Answers and metrics are JSON text columns so every code can carry its
own set of page fields. Lookups that miss return ErrNotFound.
*/
package store
