package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/taper/internal/domain/model"
)

// client wraps http.Client with JSON helpers.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

func (c *client) putJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

func (c *client) sendJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// submitObservation posts a single observation and classifies the outcome.
func (c *client) submitObservation(ctx context.Context, o model.Observation, stats *Stats) error {
	resp, err := c.postJSON(ctx, "/observations", o)
	if err != nil {
		stats.Failed.Add(1)
		return err
	}
	defer drainAndClose(resp)

	switch resp.StatusCode {
	case http.StatusAccepted:
		stats.Submitted.Add(1)
		return nil
	case http.StatusOK:
		stats.Duplicates.Add(1)
		return nil
	default:
		stats.Failed.Add(1)
		return fmt.Errorf("observation %s rejected with status %d", o.ObservationID, resp.StatusCode)
	}
}

// putGenetics uploads a genetic profile.
func (c *client) putGenetics(ctx context.Context, athleteID string, entries []model.GeneticProfileEntry) error {
	resp, err := c.putJSON(ctx, "/athletes/"+athleteID+"/genetics", entries)
	if err != nil {
		return err
	}
	defer drainAndClose(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("genetics upload for %s failed with status %d", athleteID, resp.StatusCode)
	}
	return nil
}

// getRecovery fetches the recovery model for an athlete.
func (c *client) getRecovery(ctx context.Context, athleteID string, window int) (model.RecoveryModel, error) {
	url := fmt.Sprintf("%s/athletes/%s/recovery?window=%d", c.baseURL, athleteID, window)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.RecoveryModel{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.RecoveryModel{}, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return model.RecoveryModel{}, fmt.Errorf("recovery for %s failed with status %d", athleteID, resp.StatusCode)
	}
	var rm model.RecoveryModel
	if err := json.NewDecoder(resp.Body).Decode(&rm); err != nil {
		return model.RecoveryModel{}, fmt.Errorf("failed to decode recovery model: %w", err)
	}
	return rm, nil
}
