// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/delphi-survey/models"
)

type responseRecord struct {
	ID                string `db:"id"`
	Round             int    `db:"survey_round"`
	Code              string `db:"code"`
	Name              string `db:"name"`
	Tel               string `db:"tel"`
	Email             string `db:"email"`
	Company           string `db:"company"`
	Position          string `db:"job_position"`
	Classification    string `db:"classification"`
	ClassificationEtc string `db:"classification_etc"`
	Career            string `db:"career"`
	Field             string `db:"field"`
	Large             string `db:"large"`
	Intermediate      string `db:"intermediate"`
	Answers           string `db:"answers"`
	CreatedAt         string `db:"created_at"`
}

const responseColumns = `id, survey_round, code, name, tel, email, company, job_position,
	classification, classification_etc, career, field, large, intermediate, answers, created_at`

const insertResponse = `
	INSERT INTO response (` + responseColumns + `)
	VALUES (:id, :survey_round, :code, :name, :tel, :email, :company, :job_position,
		:classification, :classification_etc, :career, :field, :large, :intermediate, :answers, :created_at)`

func toRecord(r models.Response) (responseRecord, error) {
	answers := r.Answers
	if answers == nil {
		answers = map[string]any{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return responseRecord{}, fmt.Errorf("encode answers for %s: %w", r.Code, err)
	}

	return responseRecord{
		ID:                r.ID,
		Round:             r.Round,
		Code:              r.Code,
		Name:              r.Name,
		Tel:               r.Tel,
		Email:             r.Email,
		Company:           r.Company,
		Position:          r.Position,
		Classification:    r.Classification,
		ClassificationEtc: r.ClassificationEtc,
		Career:            r.Career,
		Field:             r.Field,
		Large:             r.Large,
		Intermediate:      r.Intermediate,
		Answers:           string(b),
		CreatedAt:         formatTime(r.CreatedAt),
	}, nil
}

func (rec responseRecord) toModel() (models.Response, error) {
	answers := map[string]any{}
	if rec.Answers != "" {
		if err := json.Unmarshal([]byte(rec.Answers), &answers); err != nil {
			return models.Response{}, fmt.Errorf("decode answers of %s: %w", rec.ID, err)
		}
	}

	return models.Response{
		ID:                rec.ID,
		Round:             rec.Round,
		Code:              rec.Code,
		Name:              rec.Name,
		Tel:               rec.Tel,
		Email:             rec.Email,
		Company:           rec.Company,
		Position:          rec.Position,
		Classification:    rec.Classification,
		ClassificationEtc: rec.ClassificationEtc,
		Career:            rec.Career,
		Field:             rec.Field,
		Large:             rec.Large,
		Intermediate:      rec.Intermediate,
		Answers:           answers,
		CreatedAt:         parseTime(rec.CreatedAt),
	}, nil
}

func toModels(recs []responseRecord) ([]models.Response, error) {
	out := make([]models.Response, 0, len(recs))
	for _, rec := range recs {
		r, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// InsertResponses stores all responses in one transaction. Missing ids
// and timestamps are filled in place.
func (s *Store) InsertResponses(ctx context.Context, responses []models.Response) (int, error) {
	if len(responses) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := insertResponses(ctx, tx, responses)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit responses: %w", err)
	}
	return n, nil
}

func insertResponses(ctx context.Context, tx *sqlx.Tx, responses []models.Response) (int, error) {
	now := time.Now()
	for i := range responses {
		r := &responses[i]
		if r.Round != models.RoundFirst && r.Round != models.RoundSecond {
			return 0, fmt.Errorf("invalid round %d for %s", r.Round, r.Code)
		}
		if r.Code == "" {
			return 0, fmt.Errorf("response %d has no code", i)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}

		rec, err := toRecord(*r)
		if err != nil {
			return 0, err
		}
		if _, err := tx.NamedExecContext(ctx, insertResponse, rec); err != nil {
			return 0, fmt.Errorf("insert response %s: %w", r.Code, err)
		}
	}
	return len(responses), nil
}

// FindRespondent returns every response of a round submitted under the
// given name and phone number, oldest first.
func (s *Store) FindRespondent(ctx context.Context, round int, name, tel string) ([]models.Response, error) {
	var recs []responseRecord
	query := s.db.Rebind(`SELECT ` + responseColumns + ` FROM response
		WHERE survey_round = ? AND name = ? AND tel = ?
		ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &recs, query, round, name, tel); err != nil {
		return nil, fmt.Errorf("find respondent: %w", err)
	}
	return toModels(recs)
}

// ResponsesByCodes returns all responses of a round for the given codes.
func (s *Store) ResponsesByCodes(ctx context.Context, round int, codes []string) ([]models.Response, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+responseColumns+` FROM response
		WHERE survey_round = ? AND code IN (?)
		ORDER BY code, created_at, id`, round, codes)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []responseRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("responses by codes: %w", err)
	}
	return toModels(recs)
}

// ResponsesByPrefix returns all responses of a round whose code starts
// with prefix. An empty prefix matches every code.
func (s *Store) ResponsesByPrefix(ctx context.Context, round int, prefix string) ([]models.Response, error) {
	var recs []responseRecord
	query := s.db.Rebind(`SELECT ` + responseColumns + ` FROM response
		WHERE survey_round = ? AND code LIKE ?
		ORDER BY code, created_at, id`)
	if err := s.db.SelectContext(ctx, &recs, query, round, likePrefix(prefix)); err != nil {
		return nil, fmt.Errorf("responses by prefix: %w", err)
	}

	// LIKE wildcards in the prefix can over-match
	kept := recs[:0]
	for _, rec := range recs {
		if strings.HasPrefix(rec.Code, prefix) {
			kept = append(kept, rec)
		}
	}
	return toModels(kept)
}

func likePrefix(prefix string) string {
	return prefix + "%"
}
