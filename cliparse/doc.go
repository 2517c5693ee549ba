// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - CatalogPath: Survey catalog YAML (embedded default when empty)
  - MeanDigits: Decimal digits for displayed means (default: 1)
  - AllowedOrigin: CORS origin (default: *)

# CLI Flags

	-p        Server port
	-d        Database URL
	-t        Database type
	-catalog  Catalog path
	-digits   Mean digits
	-origin   Allowed origin

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	CATALOG_PATH   → -catalog
	MEAN_DIGITS    → -digits
	ALLOWED_ORIGIN → -origin

CLI flags take precedence over environment variables. main loads a
.env file (if present) with godotenv before parsing.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - PORT or MEAN_DIGITS is not a valid integer

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(st, cat, cfg)
*/
package cliparse
