package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/taper/internal/adapters/repository"
	"github.com/okian/taper/internal/domain/engine"
	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
)

// AthleteDependencies defines what the athlete sub-resources need.
type AthleteDependencies interface {
	SetGenetics(ctx context.Context, athleteID string, entries []model.GeneticProfileEntry) error
	RecoveryModel(ctx context.Context, athleteID string, windowDays int, asOf string) (model.RecoveryModel, error)
}

// AthletesHandler routes /athletes/{id}/... requests.
type AthletesHandler struct {
	deps AthleteDependencies
}

// NewAthletesHandler creates a new athletes handler.
func NewAthletesHandler(deps AthleteDependencies) *AthletesHandler {
	return &AthletesHandler{deps: deps}
}

// HandleAthletes dispatches to the genetics or recovery sub-resource.
func (h *AthletesHandler) HandleAthletes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/athletes/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	athleteID := parts[0]

	switch parts[1] {
	case "genetics":
		h.handlePutGenetics(w, r, athleteID)
	case "recovery":
		h.handleGetRecovery(w, r, athleteID)
	default:
		http.NotFound(w, r)
	}
}

// handlePutGenetics handles PUT /athletes/{id}/genetics requests.
func (h *AthletesHandler) handlePutGenetics(w http.ResponseWriter, r *http.Request, athleteID string) {
	const op = "api.put_genetics"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var entries []model.GeneticProfileEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetGenetics(r.Context(), athleteID, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "stored", "entries": len(entries)})
}

// handleGetRecovery handles GET /athletes/{id}/recovery?window=N&as_of=DAY.
func (h *AthletesHandler) handleGetRecovery(w http.ResponseWriter, r *http.Request, athleteID string) {
	const op = "api.get_recovery"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	windowDays := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		windowDays = n
	}
	asOf := r.URL.Query().Get("as_of")

	rm, err := h.deps.RecoveryModel(r.Context(), athleteID, windowDays, asOf)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, engine.ErrInvalidWindow), errors.Is(err, timeline.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, rm)
}
