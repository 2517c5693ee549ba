// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/cliparse"
	"github.com/danielhkuo/delphi-survey/formstats"
	"github.com/danielhkuo/delphi-survey/middleware"
	"github.com/danielhkuo/delphi-survey/models"
	"github.com/danielhkuo/delphi-survey/store"
	"github.com/danielhkuo/delphi-survey/wizard"
)

type SurveyHandler struct {
	store   *store.Store
	catalog *catalog.Catalog
	wizard  *wizard.Wizard
	cfg     cliparse.Config
}

func NewSurveyHandler(st *store.Store, cat *catalog.Catalog, cfg cliparse.Config) *SurveyHandler {
	w := wizard.New(cat,
		wizard.JSONLoader(st.LoadSession),
		wizard.JSONSaver(st.SaveSession),
		wizard.JSONCommitter(st.SubmitSession))
	return &SurveyHandler{store: st, catalog: cat, wizard: w, cfg: cfg}
}

// GetCatalog handles GET /catalog
func (h *SurveyHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.catalog)
}

// StartSession handles POST /sessions
func (h *SurveyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	state, err := h.wizard.Start(r.Context(), strings.TrimSpace(req.Agree))
	if err != nil {
		h.wizardError(w, err, "failed to start session")
		return
	}

	slog.Info("session started", "session_id", state.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.StartSessionResponse{
		SessionID: state.ID,
		Next:      state.Step,
	})
}

// GetSession handles GET /sessions/{id}
func (h *SurveyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.wizard.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		h.wizardError(w, err, "failed to load session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionView{
		ID:        state.ID,
		Step:      state.Step,
		Progress:  h.catalog.Progress(state.Step),
		Name:      state.Name,
		Codes:     state.Codes(),
		Submitted: state.Submitted,
	})
}

// DeleteSession handles DELETE /sessions/{id}
// Abandons the session; nothing was stored for the second round yet.
func (h *SurveyHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.wizard.Load(r.Context(), id); err != nil {
		h.wizardError(w, err, "failed to load session")
		return
	}

	if err := h.store.DeleteSession(r.Context(), id); err != nil {
		slog.Error("failed to delete session", "error", err, "session_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Identify handles POST /sessions/{id}/identify
// Matches name and phone number against the first-round responses.
func (h *SurveyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.IdentifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	tel := strings.TrimSpace(req.Tel1) + strings.TrimSpace(req.Tel2) + strings.TrimSpace(req.Tel3)
	if name == "" || tel == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and phone number are required")
		return
	}

	ctx := r.Context()
	if _, err := h.wizard.Load(ctx, id); err != nil {
		h.wizardError(w, err, "failed to load session")
		return
	}

	matches, err := h.store.FindRespondent(ctx, models.RoundFirst, name, tel)
	if err != nil {
		slog.Error("failed to find respondent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m.Code)
	}
	industries, err := h.store.Industries(ctx, codes)
	if err != nil {
		slog.Error("failed to load industries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	state, err := h.wizard.Identify(ctx, id, name, tel, matches, industries)
	if err != nil {
		h.wizardError(w, err, "failed to identify respondent")
		return
	}

	slog.Info("respondent identified", "session_id", id, "codes", len(state.Items))

	middleware.JSONResponse(w, http.StatusOK, models.IdentifyResponse{
		Codes: state.Codes(),
		Next:  state.Step,
	})
}

// GetPage handles GET /sessions/{id}/pages/{page}
// Returns the respondent's first-round answers, the current draft and
// the first-round aggregates of every assigned code.
func (h *SurveyHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	page, ok := h.catalog.Page(r.PathValue("page"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}

	state, err := h.wizard.Load(r.Context(), id)
	if err != nil {
		h.wizardError(w, err, "failed to load session")
		return
	}
	if len(state.Items) == 0 {
		h.wizardError(w, wizard.ErrNotIdentified, "")
		return
	}
	if !h.wizard.Reached(state, page.Name) {
		h.wizardError(w, wizard.ErrPageLocked, "")
		return
	}

	codes := state.Codes()
	var (
		rows       []formstats.Row
		industries map[string]models.Industry
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		responses, err := h.store.ResponsesByCodes(ctx, models.RoundFirst, codes)
		rows = models.ResponseRows(responses)
		return err
	})
	if page.Patents {
		g.Go(func() error {
			var err error
			industries, err = h.store.Industries(ctx, codes)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("failed to load page data", "error", err, "page", page.Name)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	means, modes := PageAggregates(page, rows, h.cfg.MeanDigits)
	fields := pageFields(page)

	view := models.PageView{
		Page:     page.Name,
		Title:    page.Title,
		Progress: h.catalog.Progress(page.Name),
		Prev:     h.catalog.Prev(page.Name),
		Next:     h.catalog.Next(page.Name),
		Items:    make([]models.PageItem, 0, len(state.Items)),
	}
	for _, it := range state.Items {
		item := models.PageItem{
			Code:         it.Code,
			Intermediate: it.Intermediate,
			Description:  it.Description,
			FirstRound:   make(map[string]any, len(fields)),
			Answers:      it.Answers,
		}
		for _, f := range fields {
			item.FirstRound[f] = it.FirstRound.Answers[f]
		}
		if means != nil {
			item.Means = make(map[string]*float64, len(page.Means))
			for _, f := range page.Means {
				item.Means[f], _ = means.Get(it.Code, f)
			}
		}
		if modes != nil {
			item.Modes = make(map[string]*string, len(page.Modes))
			for _, f := range page.Modes {
				item.Modes[f], _ = modes.Get(it.Code, f)
			}
		}
		if page.Patents {
			if ind, ok := industries[it.Code]; ok {
				item.Patents = PatentRankings(h.catalog, ind)
			}
		}
		view.Items = append(view.Items, item)
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// SaveAnswers handles PUT /sessions/{id}/pages/{page}
func (h *SurveyHandler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	page := r.PathValue("page")

	var req models.SaveAnswersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.wizard.SaveAnswers(r.Context(), id, page, req.Answers); err != nil {
		h.wizardError(w, err, "failed to save answers")
		return
	}

	next := h.catalog.Next(page)
	middleware.JSONResponse(w, http.StatusOK, models.SaveAnswersResponse{
		Next:     next,
		Progress: h.catalog.Progress(next),
	})
}

// Submit handles POST /sessions/{id}/submit
// Stores one second-round response per assigned code and closes the
// session in the same transaction.
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	n, err := h.wizard.Submit(r.Context(), id)
	if err != nil {
		h.wizardError(w, err, "failed to submit survey")
		return
	}

	slog.Info("survey submitted", "session_id", id, "responses", n)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponse{
		Submitted: n,
		Message:   "Survey submitted",
	})
}

// wizardError maps wizard and store errors to HTTP responses.
func (h *SurveyHandler) wizardError(w http.ResponseWriter, err error, logMsg string) {
	var missing *wizard.MissingError
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, wizard.ErrNoMatch):
		middleware.ErrorResponse(w, http.StatusNotFound, "No first-round responses match this name and phone number")
	case errors.Is(err, wizard.ErrUnknownPage):
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
	case errors.Is(err, wizard.ErrNoConsent),
		errors.Is(err, wizard.ErrBadAnswerKey),
		errors.Is(err, wizard.ErrUnknownCode):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrNotIdentified),
		errors.Is(err, wizard.ErrPageLocked),
		errors.Is(err, wizard.ErrNotFinished),
		errors.Is(err, wizard.ErrSubmitted),
		errors.Is(err, store.ErrSessionSubmitted):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &missing):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, missing.Error())
	default:
		slog.Error(logMsg, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// pageFields lists every field a page reads or writes.
func pageFields(p catalog.Page) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(fields ...string) {
		for _, f := range fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	add(p.Means...)
	add(p.Modes...)
	add(p.Required...)
	for _, c := range p.RequiredWhen {
		add(c.Require)
	}
	return out
}
