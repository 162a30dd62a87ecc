package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/novena-api/internal/calendar"
	"github.com/zapponejosh/novena-api/internal/config"
	"github.com/zapponejosh/novena-api/internal/database"
	"github.com/zapponejosh/novena-api/internal/ics"
	"github.com/zapponejosh/novena-api/internal/logger"
	"github.com/zapponejosh/novena-api/internal/parse"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db     *database.DB
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// yearParam extracts and validates the {year} path parameter. The valid
// range matches the anchor table's Gregorian bounds; anything outside it
// is a client error, reported before any computation runs.
func yearParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: must be an integer", raw)
	}
	if year < calendar.MinYear || year > calendar.MaxYear {
		return 0, fmt.Errorf("year %d out of range [%d, %d]", year, calendar.MinYear, calendar.MaxYear)
	}
	return year, nil
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// GetEaster handles GET /api/v1/easter/{year}
func (h *Handlers) GetEaster(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	easter := calendar.CalculateEaster(year)
	WriteSuccess(w, map[string]any{
		"year":   year,
		"easter": calendar.FormatDate(easter),
	})
}

// GetAnchors handles GET /api/v1/anchors/{year}
func (h *Handlers) GetAnchors(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	anchors, err := calendar.BuildAnchorTable(year)
	if err != nil {
		h.logger.Error("failed to build anchor table",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to build anchor table")
		return
	}

	dates := make(map[string]string, len(anchors.Keys()))
	for key, date := range anchors.All() {
		dates[key] = calendar.FormatDate(date)
	}

	WriteSuccess(w, map[string]any{
		"year":    year,
		"anchors": dates,
	})
}

// GetCalendar handles GET /api/v1/calendar/{year}
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	observances, err := calendar.BuildObservancesForYear(year)
	if err != nil {
		h.logger.Error("failed to build calendar",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to build calendar")
		return
	}

	WriteSuccess(w, map[string]any{
		"year":        year,
		"observances": observances,
	})
}

// GetCalendarICS handles GET /api/v1/calendar/{year}/ics
func (h *Handlers) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	observances, err := calendar.BuildObservancesForYear(year)
	if err != nil {
		h.logger.Error("failed to build calendar for export",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to build calendar")
		return
	}

	instances, failures, err := h.resolveAllForYear(ctx, year)
	if err != nil {
		h.logger.Error("failed to resolve novenas for export",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve novenas")
		return
	}
	for _, f := range failures {
		h.logger.Warn("novena skipped in export",
			slog.String("id", f.ID),
			slog.Any("error", f.Err))
	}

	body, err := ics.RenderYear(year, observances, instances)
	if err != nil {
		h.logger.Error("failed to render calendar export",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to render calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="novenas-%d.ics"`, year))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// ListNovenas handles GET /api/v1/novenas
func (h *Handlers) ListNovenas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.db.ListDefinitions(ctx)
	if err != nil {
		h.logger.Error("failed to list definitions", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve novenas")
		return
	}

	WriteSuccess(w, map[string]any{
		"count":   len(records),
		"novenas": records,
	})
}

// GetNovenaForYear handles GET /api/v1/novenas/{id}/{year}
func (h *Handlers) GetNovenaForYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	rec, err := h.db.GetDefinition(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("No novena with id %q", id))
			return
		}
		h.logger.Error("failed to get definition",
			slog.String("id", id),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve novena")
		return
	}

	def, err := rec.Definition()
	if err != nil {
		h.logger.Error("stored definition failed to decode",
			slog.String("id", id),
			slog.Any("error", err))
		WriteInternalError(w, "Stored definition is invalid")
		return
	}

	anchors, err := calendar.BuildAnchorTable(year)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	instance, err := calendar.ResolveNovenaForYear(def, year, anchors)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	WriteSuccess(w, instance)
}

// GetNovenasForYear handles GET /api/v1/novenas/year/{year}
//
// Failures are isolated per entry: one bad definition never voids the
// batch, and every failure is reported next to the successes.
func (h *Handlers) GetNovenasForYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := yearParam(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	instances, failures, err := h.resolveAllForYear(ctx, year)
	if err != nil {
		h.logger.Error("failed to resolve novenas",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve novenas")
		return
	}

	failureList := make([]map[string]string, 0, len(failures))
	for _, f := range failures {
		failureList = append(failureList, map[string]string{
			"id":    f.ID,
			"title": f.Title,
			"error": f.Err.Error(),
		})
	}

	WriteSuccess(w, map[string]any{
		"year":     year,
		"novenas":  instances,
		"failures": failureList,
	})
}

// resolveAllForYear loads every stored definition and resolves it for the
// given year. Definitions that fail to decode join the failure list with
// the same per-entry isolation the resolver applies.
func (h *Handlers) resolveAllForYear(ctx context.Context, year int) ([]calendar.NovenaInstance, []calendar.NovenaFailure, error) {
	records, err := h.db.ListDefinitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list definitions: %w", err)
	}

	anchors, err := calendar.BuildAnchorTable(year)
	if err != nil {
		return nil, nil, fmt.Errorf("build anchor table: %w", err)
	}

	defs := make([]calendar.NovenaDefinition, 0, len(records))
	var failures []calendar.NovenaFailure
	for i := range records {
		def, err := records[i].Definition()
		if err != nil {
			failures = append(failures, calendar.NovenaFailure{
				ID:    records[i].ID,
				Title: records[i].Title,
				Err:   err,
			})
			continue
		}
		defs = append(defs, def)
	}

	instances, resolveFailures := calendar.ResolveNovenas(defs, year, anchors)
	failures = append(failures, resolveFailures...)

	return instances, failures, nil
}

// writeResolutionError maps engine errors onto HTTP statuses. Bad rule
// parameters and unresolvable raw rules are the definition's fault, not
// the server's.
func writeResolutionError(w http.ResponseWriter, err error) {
	var unresolvable *calendar.UnresolvableRuleError
	var invalidParam *calendar.InvalidRuleParameterError
	var unknownAnchor *calendar.UnknownAnchorError

	switch {
	case errors.As(err, &unresolvable):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNRESOLVABLE_RULE")
	case errors.As(err, &invalidParam):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_RULE")
	case errors.As(err, &unknownAnchor):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNKNOWN_ANCHOR")
	default:
		WriteInternalError(w, "Failed to resolve novena")
	}
}

// UpsertNovena handles POST /api/v1/admin/novenas
func (h *Handlers) UpsertNovena(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rec database.NovenaRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if rec.ID == "" {
		WriteBadRequest(w, "Field id is required")
		return
	}
	if rec.Title == "" {
		WriteBadRequest(w, "Field title is required")
		return
	}
	if rec.DurationDays == 0 {
		rec.DurationDays = calendar.DefaultDurationDays
	}
	if rec.DurationDays < 1 || rec.DurationDays > calendar.MaxDurationDays {
		WriteBadRequest(w, fmt.Sprintf("Field duration_days must be in [1, %d]", calendar.MaxDurationDays))
		return
	}

	// Rules must decode and validate before anything is stored
	if _, err := rec.FeastRule.Rule(); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid feast_rule: %v", err))
		return
	}
	if rec.StartRule != nil {
		if _, err := rec.StartRule.Rule(); err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid start_rule: %v", err))
			return
		}
	}

	if err := h.db.UpsertDefinition(ctx, &rec); err != nil {
		h.logger.Error("failed to upsert definition",
			slog.String("id", rec.ID),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to store novena")
		return
	}

	h.logger.Info("definition upserted", slog.String("id", rec.ID))

	stored, err := h.db.GetDefinition(ctx, rec.ID)
	if err != nil {
		h.logger.Error("failed to read back definition",
			slog.String("id", rec.ID),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to store novena")
		return
	}

	WriteCreated(w, stored)
}

// DeleteNovena handles DELETE /api/v1/admin/novenas/{id}
func (h *Handlers) DeleteNovena(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		WriteBadRequest(w, "Field id is required")
		return
	}

	if err := h.db.DeleteDefinition(ctx, id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("Novena %q not found", id))
			return
		}
		log.Error("failed to delete definition",
			slog.String("id", id),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to delete novena")
		return
	}

	log.Info("definition deleted", slog.String("id", id))

	WriteSuccess(w, map[string]string{
		"id": id,
	})
}

// parseRequest is the body of POST /api/v1/admin/parse.
type parseRequest struct {
	Text string `json:"text"`
}

// ParsePhrase handles POST /api/v1/admin/parse
func (h *Handlers) ParsePhrase(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.Text == "" {
		WriteBadRequest(w, "Field text is required")
		return
	}

	rule := parse.ParseRule(req.Text)

	WriteSuccess(w, map[string]any{
		"text": req.Text,
		"kind": rule.Kind(),
		"rule": calendar.Spec(rule),
	})
}
