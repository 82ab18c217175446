package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/taper/internal/adapters/repository"
	"github.com/okian/taper/internal/domain/engine"
	"github.com/okian/taper/internal/domain/model"
)

// fakeDeps implements Dependencies for handler tests.
type fakeDeps struct {
	mu       sync.Mutex
	seen     map[string]bool
	enqueued []model.Observation
	full     bool

	genetics map[string][]model.GeneticProfileEntry

	recoveryModel model.RecoveryModel
	recoveryErr   error
	lastWindow    int
	lastAsOf      string
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		seen:     make(map[string]bool),
		genetics: make(map[string][]model.GeneticProfileEntry),
	}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, id)
}

func (f *fakeDeps) Size() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.seen))
}

func (f *fakeDeps) Enqueue(_ context.Context, o model.Observation) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.enqueued = append(f.enqueued, o)
	return true
}

func (f *fakeDeps) SetGenetics(_ context.Context, athleteID string, entries []model.GeneticProfileEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genetics[athleteID] = entries
	return nil
}

func (f *fakeDeps) RecoveryModel(_ context.Context, _ string, windowDays int, asOf string) (model.RecoveryModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWindow = windowDays
	f.lastAsOf = asOf
	return f.recoveryModel, f.recoveryErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"athletes": 3}
}

func newTestMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return mux
}

func postObservation(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/observations", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func validLoadBody(obsID string) string {
	return fmt.Sprintf(`{
		"observation_id": %q,
		"athlete_id": "ath-1",
		"kind": "load",
		"load": {"date": "2026-03-01", "composite_load": 420}
	}`, obsID)
}

func TestPostObservation_Accepted(t *testing.T) {
	deps := newFakeDeps()
	mux := newTestMux(deps)

	rec := postObservation(t, mux, validLoadBody("obs-1"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var ack ackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Status != "accepted" || ack.Duplicate {
		t.Errorf("unexpected ack: %+v", ack)
	}
	if len(deps.enqueued) != 1 || deps.enqueued[0].Kind != model.KindLoad {
		t.Errorf("observation not enqueued: %+v", deps.enqueued)
	}
}

func TestPostObservation_Duplicate(t *testing.T) {
	deps := newFakeDeps()
	mux := newTestMux(deps)

	postObservation(t, mux, validLoadBody("obs-1"))
	rec := postObservation(t, mux, validLoadBody("obs-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
	var ack ackResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &ack)
	if !ack.Duplicate {
		t.Error("expected duplicate ack")
	}
	if len(deps.enqueued) != 1 {
		t.Errorf("duplicate must not be enqueued again, got %d", len(deps.enqueued))
	}
}

func TestPostObservation_Validation(t *testing.T) {
	deps := newFakeDeps()
	mux := newTestMux(deps)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing observation_id", `{"athlete_id":"a","kind":"load","load":{"date":"2026-03-01"}}`},
		{"missing athlete_id", `{"observation_id":"o","kind":"load","load":{"date":"2026-03-01"}}`},
		{"unknown kind", `{"observation_id":"o","athlete_id":"a","kind":"mood"}`},
		{"kind without payload", `{"observation_id":"o","athlete_id":"a","kind":"load"}`},
		{"bad date", `{"observation_id":"o","athlete_id":"a","kind":"load","load":{"date":"last tuesday"}}`},
		{"biometric without payload", `{"observation_id":"o","athlete_id":"a","kind":"biometric"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postObservation(t, mux, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
	if len(deps.enqueued) != 0 {
		t.Errorf("invalid observations must not be enqueued")
	}

	// Rejected IDs must be retryable.
	if deps.Size() != 0 {
		t.Errorf("rejected observations must not stay marked as seen")
	}
}

func TestPostObservation_Backpressure(t *testing.T) {
	deps := newFakeDeps()
	deps.full = true
	mux := newTestMux(deps)

	rec := postObservation(t, mux, validLoadBody("obs-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	// The seen mark was rolled back, a retry is accepted.
	deps.full = false
	rec = postObservation(t, mux, validLoadBody("obs-1"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 on retry, got %d", rec.Code)
	}
}

func TestPostObservation_MethodNotFound(t *testing.T) {
	mux := newTestMux(newFakeDeps())
	req := httptest.NewRequest(http.MethodGet, "/observations", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for GET /observations, got %d", rec.Code)
	}
}

func TestPutGenetics(t *testing.T) {
	deps := newFakeDeps()
	mux := newTestMux(deps)

	body := `[{"gene":"IL6","genotype":"GG"},{"gene":"ACTN3","genotype":"RR"}]`
	req := httptest.NewRequest(http.MethodPut, "/athletes/ath-1/genetics", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := deps.genetics["ath-1"]; len(got) != 2 || got[0].Gene != "IL6" {
		t.Errorf("genetics not stored: %+v", got)
	}
}

func TestPutGenetics_BadBody(t *testing.T) {
	mux := newTestMux(newFakeDeps())
	req := httptest.NewRequest(http.MethodPut, "/athletes/ath-1/genetics", strings.NewReader(`{"gene":"IL6"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-array body, got %d", rec.Code)
	}
}

func TestGetRecovery(t *testing.T) {
	deps := newFakeDeps()
	deps.recoveryModel = model.RecoveryModel{
		ACWR:           1.33,
		Monotony:       10,
		Strain:         6000,
		LatestRecovery: 81,
		Flags:          []string{"flag-1"},
	}
	mux := newTestMux(deps)

	req := httptest.NewRequest(http.MethodGet, "/athletes/ath-1/recovery?window=14&as_of=2026-03-28", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if deps.lastWindow != 14 || deps.lastAsOf != "2026-03-28" {
		t.Errorf("query params not forwarded: window=%d as_of=%q", deps.lastWindow, deps.lastAsOf)
	}
	var rm model.RecoveryModel
	if err := json.Unmarshal(rec.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decode model: %v", err)
	}
	if rm.LatestRecovery != 81 || rm.Strain != 6000 {
		t.Errorf("unexpected model: %+v", rm)
	}
}

func TestGetRecovery_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown athlete", repository.ErrNotFound, http.StatusNotFound},
		{"invalid window", engine.ErrInvalidWindow, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := newFakeDeps()
			deps.recoveryErr = tc.err
			mux := newTestMux(deps)
			req := httptest.NewRequest(http.MethodGet, "/athletes/ath-1/recovery", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestGetRecovery_NonNumericWindow(t *testing.T) {
	mux := newTestMux(newFakeDeps())
	req := httptest.NewRequest(http.MethodGet, "/athletes/ath-1/recovery?window=all", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAthletesRouting(t *testing.T) {
	mux := newTestMux(newFakeDeps())

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/athletes/", http.StatusBadRequest},
		{http.MethodGet, "/athletes/ath-1", http.StatusBadRequest},
		{http.MethodGet, "/athletes/ath-1/unknown", http.StatusNotFound},
		{http.MethodPost, "/athletes/ath-1/recovery", http.StatusNotFound},
		{http.MethodGet, "/athletes/ath-1/genetics", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rec.Code)
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	mux := newTestMux(newFakeDeps())
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["athletes"] != float64(3) {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(newFakeDeps())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", rec.Code)
	}
}
