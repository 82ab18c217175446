// Package repository defines the athlete history store interface and errors.
package repository

import (
	"context"

	"github.com/okian/taper/internal/domain/model"
)

// History is one athlete's full ingested state: load and biometric samples in
// ascending date order plus the genetic profile, if any was uploaded.
type History struct {
	AthleteID  string
	Loads      []model.DailyLoad
	Biometrics []model.BiometricRecord
	Genetics   []model.GeneticProfileEntry
}

// Store provides read/write access to per-athlete history.
type Store interface {
	// UpsertLoad records a training-load sample for the athlete. A sample
	// with the same calendar day replaces the previous one.
	UpsertLoad(ctx context.Context, athleteID string, load model.DailyLoad) error

	// UpsertBiometric records a wearable sample for the athlete, keyed by
	// calendar day like UpsertLoad.
	UpsertBiometric(ctx context.Context, athleteID string, rec model.BiometricRecord) error

	// SetGenetics replaces the athlete's genetic profile.
	SetGenetics(ctx context.Context, athleteID string, entries []model.GeneticProfileEntry) error

	// History returns everything known about an athlete.
	// Returns ErrNotFound for unknown athletes.
	History(ctx context.Context, athleteID string) (History, error)

	// Count returns the number of athletes tracked.
	Count(ctx context.Context) int

	// RecordCount returns the total number of stored samples across athletes.
	RecordCount(ctx context.Context) int
}
