// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/models"
)

// Separator between code and field in answer keys ("A-1_importance").
const KeySeparator = "_"

const countryPage = "country"

var (
	ErrNoConsent     = errors.New("consent required")
	ErrNotIdentified = errors.New("respondent not identified")
	ErrNoMatch       = errors.New("no first-round responses for respondent")
	ErrUnknownPage   = errors.New("unknown page")
	ErrPageLocked    = errors.New("page not reached yet")
	ErrBadAnswerKey  = errors.New("malformed answer key")
	ErrUnknownCode   = errors.New("code not assigned to respondent")
	ErrNotFinished   = errors.New("survey not finished")
	ErrSubmitted     = errors.New("survey already submitted")
)

// MissingError lists required answers that are still empty.
type MissingError struct {
	Page    string
	Missing []string // "code_field"
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("page %s: missing answers %s", e.Page, strings.Join(e.Missing, ", "))
}

// Item is one assigned code: the matched first-round response and the
// second-round answers collected so far. Contact fields are kept outside
// FirstRound because Response never serializes them.
type Item struct {
	Code         string            `json:"code"`
	Intermediate string            `json:"intermediate"`
	Description  string            `json:"description"`
	Email        string            `json:"email"`
	FirstRound   models.Response   `json:"first_round"`
	Answers      map[string]string `json:"answers"`
}

// State is the full wizard state of one respondent session.
type State struct {
	ID        string    `json:"id"`
	Agree     bool      `json:"agree"`
	Name      string    `json:"name"`
	Tel       string    `json:"tel"`
	Step      string    `json:"step"`
	Items     []Item    `json:"items"`
	Submitted bool      `json:"submitted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Codes returns the assigned codes in display order.
func (s *State) Codes() []string {
	codes := make([]string, len(s.Items))
	for i, it := range s.Items {
		codes[i] = it.Code
	}
	return codes
}

func (s *State) item(code string) *Item {
	for i := range s.Items {
		if s.Items[i].Code == code {
			return &s.Items[i]
		}
	}
	return nil
}

// Loader and Saver are the storage boundary of the wizard.
type (
	Loader func(ctx context.Context, id string) (*State, error)
	Saver  func(ctx context.Context, s *State) error
)

// Committer stores a submitted session together with its second-round
// responses in one atomic step. It must fail without storing anything
// when the session was already submitted.
type Committer func(ctx context.Context, s *State, responses []models.Response) (int, error)

// Wizard drives sessions through the catalog pages. It holds no state of
// its own; every call loads, transitions and saves.
type Wizard struct {
	catalog *catalog.Catalog
	load    Loader
	save    Saver
	commit  Committer
	now     func() time.Time
}

func New(cat *catalog.Catalog, load Loader, save Saver, commit Committer) *Wizard {
	return &Wizard{catalog: cat, load: load, save: save, commit: commit, now: time.Now}
}

// Start opens a new session once the respondent agreed to the survey.
func (w *Wizard) Start(ctx context.Context, agree string) (*State, error) {
	if agree != models.AgreeYes {
		return nil, ErrNoConsent
	}

	now := w.now()
	s := &State{
		ID:        uuid.NewString(),
		Agree:     true,
		Step:      catalog.PageBasic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.save(ctx, s); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	return s, nil
}

func (w *Wizard) Load(ctx context.Context, id string) (*State, error) {
	return w.load(ctx, id)
}

// Identify attaches the respondent's first-round responses to the
// session. When a code occurs more than once the latest response wins.
func (w *Wizard) Identify(ctx context.Context, id, name, tel string, firstRound []models.Response, industries map[string]models.Industry) (*State, error) {
	s, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Submitted {
		return nil, ErrSubmitted
	}

	latest := LatestByCode(firstRound)
	if len(latest) == 0 {
		return nil, ErrNoMatch
	}

	s.Name = name
	s.Tel = tel
	s.Items = make([]Item, 0, len(latest))
	for _, r := range latest {
		it := Item{
			Code:         r.Code,
			Intermediate: r.Intermediate,
			Email:        r.Email,
			FirstRound:   r,
			Answers:      map[string]string{},
		}
		if ind, ok := industries[r.Code]; ok {
			it.Description = ind.Description
			if it.Intermediate == "" {
				it.Intermediate = ind.Intermediate
			}
		}
		s.Items = append(s.Items, it)
	}
	s.Step = w.catalog.Next(catalog.PageBasic)

	return s, w.persist(ctx, s)
}

// SaveAnswers applies "code_field" answers to a page the respondent has
// reached, checks the page's required fields and advances the step.
func (w *Wizard) SaveAnswers(ctx context.Context, id, page string, answers map[string]string) (*State, error) {
	s, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Submitted {
		return nil, ErrSubmitted
	}
	if len(s.Items) == 0 {
		return nil, ErrNotIdentified
	}

	p, ok := w.catalog.Page(page)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	if !w.Reached(s, page) {
		return nil, fmt.Errorf("%w: %s", ErrPageLocked, page)
	}

	for key, value := range answers {
		code, field, ok := SplitKey(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadAnswerKey, key)
		}
		it := s.item(code)
		if it == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCode, code)
		}
		it.Answers[field] = strings.TrimSpace(value)
	}

	if missing := missingAnswers(p, s.Items); len(missing) > 0 {
		return nil, &MissingError{Page: page, Missing: missing}
	}

	if p.Name == countryPage {
		for i := range s.Items {
			if c := s.Items[i].Answers[countryPage]; c != "" {
				// the best country is the 100% reference of the level page
				s.Items[i].Answers[c+"Per"] = "100"
			}
		}
	}

	next := w.catalog.Next(page)
	if w.index(next) > w.index(s.Step) {
		s.Step = next
	}

	return s, w.persist(ctx, s)
}

// Submission builds the second-round responses of a finished session.
// It stores nothing; Submit does.
func (w *Wizard) Submission(ctx context.Context, id string) (*State, []models.Response, error) {
	s, err := w.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.Submitted {
		return nil, nil, ErrSubmitted
	}
	if len(s.Items) == 0 {
		return nil, nil, ErrNotIdentified
	}
	if s.Step != catalog.PageFinish {
		return nil, nil, ErrNotFinished
	}

	last := w.catalog.Last()
	if missing := missingAnswers(last, s.Items); len(missing) > 0 {
		return nil, nil, &MissingError{Page: last.Name, Missing: missing}
	}

	now := w.now()
	out := make([]models.Response, 0, len(s.Items))
	for _, it := range s.Items {
		first := it.FirstRound
		answers := make(map[string]any, len(it.Answers))
		for k, v := range it.Answers {
			answers[k] = v
		}
		out = append(out, models.Response{
			Round:             models.RoundSecond,
			Code:              it.Code,
			Name:              first.Name,
			Tel:               s.Tel,
			Email:             it.Email,
			Company:           first.Company,
			Position:          first.Position,
			Classification:    first.Classification,
			ClassificationEtc: first.ClassificationEtc,
			Career:            first.Career,
			Field:             first.Field,
			Large:             first.Large,
			Intermediate:      first.Intermediate,
			Answers:           answers,
			CreatedAt:         now,
		})
	}
	return s, out, nil
}

// Submit closes a finished session and stores its second-round
// responses through the Committer. It returns the number stored.
func (w *Wizard) Submit(ctx context.Context, id string) (int, error) {
	s, responses, err := w.Submission(ctx, id)
	if err != nil {
		return 0, err
	}

	s.Submitted = true
	s.UpdatedAt = w.now()
	n, err := w.commit(ctx, s, responses)
	if err != nil {
		return 0, fmt.Errorf("commit session %s: %w", id, err)
	}
	return n, nil
}

// Reached reports whether the respondent may open page.
func (w *Wizard) Reached(s *State, page string) bool {
	i := w.index(page)
	return i >= 0 && i <= w.index(s.Step)
}

// index orders basic < pages... < finish; -1 for unknown names.
func (w *Wizard) index(step string) int {
	switch step {
	case catalog.PageBasic:
		return 0
	case catalog.PageFinish:
		return len(w.catalog.Pages) + 1
	}
	for i, p := range w.catalog.Pages {
		if p.Name == step {
			return i + 1
		}
	}
	return -1
}

func (w *Wizard) persist(ctx context.Context, s *State) error {
	s.UpdatedAt = w.now()
	if err := w.save(ctx, s); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// SplitKey splits "A-1_importance" at the last separator.
func SplitKey(key string) (code, field string, ok bool) {
	i := strings.LastIndex(key, KeySeparator)
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

func missingAnswers(p catalog.Page, items []Item) []string {
	var missing []string
	for _, it := range items {
		for _, field := range p.RequiredFor(it.Answers) {
			if strings.TrimSpace(it.Answers[field]) == "" {
				missing = append(missing, it.Code+KeySeparator+field)
			}
		}
	}
	return missing
}

// LatestByCode keeps one response per code, the one with the latest
// CreatedAt; on equal times the later element wins. Codes keep the
// order of their first appearance.
func LatestByCode(responses []models.Response) []models.Response {
	pos := make(map[string]int)
	var out []models.Response
	for _, r := range responses {
		i, seen := pos[r.Code]
		if !seen {
			pos[r.Code] = len(out)
			out = append(out, r)
			continue
		}
		if !r.CreatedAt.Before(out[i].CreatedAt) {
			out[i] = r
		}
	}
	return out
}
