// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/danielhkuo/delphi-survey/formstats"
)

// Survey round constants
const (
	RoundFirst  = 1
	RoundSecond = 2
)

// Consent answer constants
const (
	AgreeYes = "yes"
	AgreeNo  = "no"
)

// Request types

type StartSessionRequest struct {
	Agree string `json:"agree"`
}

type IdentifyRequest struct {
	Name string `json:"name"`
	Tel1 string `json:"tel1"`
	Tel2 string `json:"tel2"`
	Tel3 string `json:"tel3"`
}

// code_field -> value, e.g. "A-1_importance": "3"
type SaveAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// Response types

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Next      string `json:"next"`
}

type IdentifyResponse struct {
	Codes []string `json:"codes"`
	Next  string   `json:"next"`
}

type SaveAnswersResponse struct {
	Next     string `json:"next"`
	Progress int    `json:"progress"`
}

type SubmitResponse struct {
	Submitted int    `json:"submitted"`
	Message   string `json:"message"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

// SessionView is the public part of a wizard session.
type SessionView struct {
	ID        string   `json:"id"`
	Step      string   `json:"step"`
	Progress  int      `json:"progress"`
	Name      string   `json:"name,omitempty"`
	Codes     []string `json:"codes"`
	Submitted bool     `json:"submitted"`
}

// PageView is everything a wizard page renders for the respondent.
type PageView struct {
	Page     string     `json:"page"`
	Title    string     `json:"title"`
	Progress int        `json:"progress"`
	Prev     string     `json:"prev"`
	Next     string     `json:"next"`
	Items    []PageItem `json:"items"`
}

// PageItem is one classification code on a page: the respondent's own
// first-round answers, the current draft, and the first-round aggregates.
type PageItem struct {
	Code         string              `json:"code"`
	Intermediate string              `json:"intermediate"`
	Description  string              `json:"description"`
	FirstRound   map[string]any      `json:"first_round"`
	Answers      map[string]string   `json:"answers"`
	Means        map[string]*float64 `json:"means,omitempty"`
	Modes        map[string]*string  `json:"modes,omitempty"`
	Patents      map[string]string   `json:"patents,omitempty"`
}

// PageStats is the first-round aggregate of one page for arbitrary codes.
type PageStats struct {
	Page   string                                    `json:"page"`
	Means  formstats.ByCode[*float64]                `json:"means,omitempty"`
	Ranges formstats.ByCode[*formstats.ClosestRange] `json:"ranges,omitempty"`
	Modes  formstats.ByCode[*string]                 `json:"modes,omitempty"`
}

// StatusRow is one line of the admin response-status table.
type StatusRow struct {
	Code             string         `json:"code"`
	DisplayCode      string         `json:"display_code"`
	Field            string         `json:"field"`
	Large            string         `json:"large"`
	Intermediate     string         `json:"intermediate"`
	Total            int            `json:"total"`
	ByClassification map[string]int `json:"by_classification"`
	AdditionalNeeded bool           `json:"additional_needed"`
}

// SummaryRow is one line of the admin per-code statistics table.
type SummaryRow struct {
	Code         string                       `json:"code"`
	Field        string                       `json:"field"`
	Large        string                       `json:"large"`
	Intermediate string                       `json:"intermediate"`
	Stats        map[string]formstats.Summary `json:"stats"`
}

// Domain types

// Response is one respondent's answers for one classification code in
// one survey round. Answers holds the page fields, which vary per code.
type Response struct {
	ID                string         `json:"id"`
	Round             int            `json:"round"`
	Code              string         `json:"code"`
	Name              string         `json:"name"`
	Tel               string         `json:"-"` // Never expose in JSON
	Email             string         `json:"-"` // Never expose in JSON
	Company           string         `json:"company"`
	Position          string         `json:"position"`
	Classification    string         `json:"classification"`
	ClassificationEtc string         `json:"classification_etc"`
	Career            string         `json:"career"`
	Field             string         `json:"field"`
	Large             string         `json:"large"`
	Intermediate      string         `json:"intermediate"`
	Answers           map[string]any `json:"answers"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Row flattens the response into an aggregation row. Identity columns
// win over answer keys of the same name.
func (r Response) Row() formstats.Row {
	row := make(formstats.Row, len(r.Answers)+8)
	for k, v := range r.Answers {
		row[k] = v
	}
	row["id"] = r.ID
	row[formstats.CodeField] = r.Code
	row["classification"] = r.Classification
	row["field"] = r.Field
	row["large"] = r.Large
	row["intermediate"] = r.Intermediate
	row["created_at"] = r.CreatedAt
	return row
}

// ResponseRows flattens responses for aggregation.
func ResponseRows(responses []Response) []formstats.Row {
	rows := make([]formstats.Row, len(responses))
	for i, r := range responses {
		rows[i] = r.Row()
	}
	return rows
}

// Industry is one intermediate classification with its patent metrics
// (keys like "krShare", "usGrowth").
type Industry struct {
	Code         string         `json:"code"`
	Field        string         `json:"field"`
	Large        string         `json:"large"`
	Intermediate string         `json:"intermediate"`
	Description  string         `json:"description"`
	Metrics      map[string]any `json:"metrics"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
