// Package timeline normalizes heterogeneous record dates onto canonical day
// keys and merges load and biometric records per day.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/taper/internal/domain/model"
)

// dayKeyLayout is the canonical calendar-day key format.
const dayKeyLayout = "2006-01-02"

// defaultTolerance is the maximum distance for the nearest-neighbor
// biometric fallback: one calendar day.
const defaultTolerance = 24 * time.Hour

// Accepted input date layouts, most specific first. Records arrive from
// different upstream services that disagree on date formatting.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dayKeyLayout,
}

// Day is one merged calendar day of the aligned timeline. Absent records
// are represented by their zero value plus the Has* marker.
type Day struct {
	Key          string // canonical YYYY-MM-DD
	Load         model.DailyLoad
	Biometric    model.BiometricRecord
	HasLoad      bool
	HasBiometric bool
}

// Option applies a configuration option to the Aligner.
type Option func(*Aligner)

// WithTolerance sets the maximum nearest-neighbor distance for the
// biometric fallback lookup.
func WithTolerance(tolerance time.Duration) Option {
	return func(a *Aligner) {
		if tolerance > 0 {
			a.tolerance = tolerance
		}
	}
}

// Aligner merges load and biometric records onto a shared day axis.
type Aligner struct {
	tolerance time.Duration
}

// NewAligner creates an Aligner with configuration options.
func NewAligner(opts ...Option) *Aligner {
	a := &Aligner{
		tolerance: defaultTolerance,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseDay canonicalizes a record date onto UTC midnight of its calendar
// day. Returns ErrInvalidDate when no accepted layout matches.
func ParseDay(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DayKey returns the canonical YYYY-MM-DD key for a date string.
func DayKey(s string) (string, error) {
	t, err := ParseDay(s)
	if err != nil {
		return "", err
	}
	return t.Format(dayKeyLayout), nil
}

// Align produces the sorted union of days present in either input. Each day
// carries the exact-date load record and the exact-date biometric record;
// when no biometric exists for a day, the nearest record within the
// tolerance is borrowed instead. Ties on distance resolve to the earliest
// record scanned, so the result is deterministic for a fixed input order.
func (a *Aligner) Align(loads []model.DailyLoad, biometrics []model.BiometricRecord) ([]Day, error) {
	loadByDay := make(map[string]model.DailyLoad, len(loads))
	bioByDay := make(map[string]model.BiometricRecord, len(biometrics))
	bioDays := make([]time.Time, len(biometrics))
	union := make(map[string]time.Time)

	for _, l := range loads {
		t, err := ParseDay(l.Date)
		if err != nil {
			return nil, fmt.Errorf("load record: %w", err)
		}
		key := t.Format(dayKeyLayout)
		loadByDay[key] = l
		union[key] = t
	}
	for i, b := range biometrics {
		t, err := ParseDay(b.Date)
		if err != nil {
			return nil, fmt.Errorf("biometric record: %w", err)
		}
		key := t.Format(dayKeyLayout)
		bioByDay[key] = b
		bioDays[i] = t
		union[key] = t
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	days := make([]Day, 0, len(keys))
	for _, key := range keys {
		d := Day{Key: key}
		if l, ok := loadByDay[key]; ok {
			d.Load = l
			d.HasLoad = true
		}
		if b, ok := bioByDay[key]; ok {
			d.Biometric = b
			d.HasBiometric = true
		} else if idx, ok := a.nearestBiometric(union[key], bioDays); ok {
			d.Biometric = biometrics[idx]
			d.HasBiometric = true
		}
		days = append(days, d)
	}
	return days, nil
}

// nearestBiometric returns the input index of the biometric record closest
// to day, provided the distance is within the tolerance. The strict "<"
// keeps the earliest-scanned record on ties.
func (a *Aligner) nearestBiometric(day time.Time, bioDays []time.Time) (int, bool) {
	best := -1
	var bestDist time.Duration
	for i, t := range bioDays {
		dist := day.Sub(t)
		if dist < 0 {
			dist = -dist
		}
		if dist > a.tolerance {
			continue
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best, best != -1
}
