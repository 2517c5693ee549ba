// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/delphi-survey/models"
)

type industryRecord struct {
	Code         string `db:"code"`
	Field        string `db:"field"`
	Large        string `db:"large"`
	Intermediate string `db:"intermediate"`
	Description  string `db:"description"`
	Metrics      string `db:"metrics"`
}

const industryColumns = `code, field, large, intermediate, description, metrics`

const upsertIndustry = `
	INSERT INTO industry (` + industryColumns + `)
	VALUES (:code, :field, :large, :intermediate, :description, :metrics)
	ON CONFLICT (code) DO UPDATE SET
		field = excluded.field,
		large = excluded.large,
		intermediate = excluded.intermediate,
		description = excluded.description,
		metrics = excluded.metrics`

func (rec industryRecord) toModel() (models.Industry, error) {
	metrics := map[string]any{}
	if rec.Metrics != "" {
		if err := json.Unmarshal([]byte(rec.Metrics), &metrics); err != nil {
			return models.Industry{}, fmt.Errorf("decode metrics of %s: %w", rec.Code, err)
		}
	}
	return models.Industry{
		Code:         rec.Code,
		Field:        rec.Field,
		Large:        rec.Large,
		Intermediate: rec.Intermediate,
		Description:  rec.Description,
		Metrics:      metrics,
	}, nil
}

// UpsertIndustries inserts or replaces industries keyed by code.
func (s *Store) UpsertIndustries(ctx context.Context, industries []models.Industry) (int, error) {
	if len(industries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ind := range industries {
		if ind.Code == "" {
			return 0, fmt.Errorf("industry without code")
		}
		metrics := ind.Metrics
		if metrics == nil {
			metrics = map[string]any{}
		}
		b, err := json.Marshal(metrics)
		if err != nil {
			return 0, fmt.Errorf("encode metrics for %s: %w", ind.Code, err)
		}

		rec := industryRecord{
			Code:         ind.Code,
			Field:        ind.Field,
			Large:        ind.Large,
			Intermediate: ind.Intermediate,
			Description:  ind.Description,
			Metrics:      string(b),
		}
		if _, err := tx.NamedExecContext(ctx, upsertIndustry, rec); err != nil {
			return 0, fmt.Errorf("upsert industry %s: %w", ind.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit industries: %w", err)
	}
	return len(industries), nil
}

// Industries returns the industries for the given codes keyed by code.
// Unknown codes are absent from the map.
func (s *Store) Industries(ctx context.Context, codes []string) (map[string]models.Industry, error) {
	out := make(map[string]models.Industry, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+industryColumns+` FROM industry WHERE code IN (?)`, codes)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []industryRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("industries: %w", err)
	}

	for _, rec := range recs {
		ind, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out[ind.Code] = ind
	}
	return out, nil
}

// IndustriesByPrefix lists industries whose code starts with prefix,
// ordered by code.
func (s *Store) IndustriesByPrefix(ctx context.Context, prefix string) ([]models.Industry, error) {
	var recs []industryRecord
	query := s.db.Rebind(`SELECT ` + industryColumns + ` FROM industry WHERE code LIKE ? ORDER BY code`)
	if err := s.db.SelectContext(ctx, &recs, query, likePrefix(prefix)); err != nil {
		return nil, fmt.Errorf("industries by prefix: %w", err)
	}

	out := make([]models.Industry, 0, len(recs))
	for _, rec := range recs {
		if !strings.HasPrefix(rec.Code, prefix) {
			continue
		}
		ind, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, nil
}
