// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/taper/internal/domain/dedupe"
	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an observation for async ingestion.
	// Returns false on backpressure.
	Enqueue(ctx context.Context, o model.Observation) bool

	// SetGenetics replaces an athlete's genetic profile.
	SetGenetics(ctx context.Context, athleteID string, entries []model.GeneticProfileEntry) error

	// RecoveryModel computes the athlete's recovery model over the given
	// display window. An empty asOf anchors on the latest ingested day.
	RecoveryModel(ctx context.Context, athleteID string, windowDays int, asOf string) (model.RecoveryModel, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	observationsHandler *ObservationsHandler
	athletesHandler     *AthletesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		observationsHandler: NewObservationsHandler(deps),
		athletesHandler:     NewAthletesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/observations", MetricsMiddleware(s.observationsHandler.HandlePostObservation, "observations"))
	mux.HandleFunc("/athletes/", MetricsMiddleware(s.athletesHandler.HandleAthletes, "athletes"))
}

// observationRequest mirrors the wire schema for POST /observations.
type observationRequest struct {
	ObservationID string                 `json:"observation_id"`
	AthleteID     string                 `json:"athlete_id"`
	Kind          string                 `json:"kind"`
	Load          *model.DailyLoad       `json:"load,omitempty"`
	Biometric     *model.BiometricRecord `json:"biometric,omitempty"`
}

func (o observationRequest) validate() error {
	switch {
	case strings.TrimSpace(o.ObservationID) == "":
		return errors.New("missing observation_id")
	case strings.TrimSpace(o.AthleteID) == "":
		return errors.New("missing athlete_id")
	}
	switch model.ObservationKind(o.Kind) {
	case model.KindLoad:
		if o.Load == nil {
			return errors.New("missing load payload")
		}
		if _, err := timeline.DayKey(o.Load.Date); err != nil {
			return errors.New("invalid load date")
		}
	case model.KindBiometric:
		if o.Biometric == nil {
			return errors.New("missing biometric payload")
		}
		if _, err := timeline.DayKey(o.Biometric.Date); err != nil {
			return errors.New("invalid biometric date")
		}
	default:
		return errors.New("kind must be \"load\" or \"biometric\"")
	}
	return nil
}

func (o observationRequest) toObservation() model.Observation {
	return model.Observation{
		ObservationID: o.ObservationID,
		AthleteID:     o.AthleteID,
		Kind:          model.ObservationKind(o.Kind),
		Load:          o.Load,
		Biometric:     o.Biometric,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
