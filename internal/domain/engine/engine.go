// Package engine composes the recovery analytics pipeline: date alignment,
// sleep and readiness scoring, workload risk metrics, genotype-adjusted
// thresholds, the forward plan, and risk flags. Every output is a pure
// function of the input collections and the as-of date, so concurrent
// computations for different athletes need no coordination.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/taper/internal/domain/genetics"
	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/plan"
	"github.com/okian/taper/internal/domain/readiness"
	"github.com/okian/taper/internal/domain/timeline"
	"github.com/okian/taper/internal/domain/workload"
)

// defaultWindowDays is used when the input leaves WindowDays unset.
const defaultWindowDays = 7

// allowedWindows are the display windows the API accepts. The risk metrics
// always use the fullest available history regardless of the window.
var allowedWindows = map[int]struct{}{7: {}, 14: {}, 28: {}}

// Input carries the already-fetched collections for one athlete plus the
// explicit "today" reference. The engine never reaches for the wall clock.
type Input struct {
	Loads      []model.DailyLoad
	Biometrics []model.BiometricRecord
	Genetics   []model.GeneticProfileEntry
	AsOf       time.Time
	WindowDays int // 7, 14 or 28; 0 means the engine default
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBaseThresholds overrides the built-in base risk thresholds.
func WithBaseThresholds(t model.RiskThresholds) Option {
	return func(e *Engine) {
		e.baseThresholds = t
	}
}

// WithDefaultWindow sets the window used when the input leaves it unset.
func WithDefaultWindow(days int) Option {
	return func(e *Engine) {
		if _, ok := allowedWindows[days]; ok {
			e.defaultWindow = days
		}
	}
}

// WithAligner sets a custom date aligner.
func WithAligner(a *timeline.Aligner) Option {
	return func(e *Engine) {
		if a != nil {
			e.aligner = a
		}
	}
}

// Engine computes recovery models. It is stateless apart from its
// configuration and safe for concurrent use.
type Engine struct {
	aligner        *timeline.Aligner
	baseThresholds model.RiskThresholds
	defaultWindow  int
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		aligner:        timeline.NewAligner(),
		baseThresholds: genetics.BaseThresholds(),
		defaultWindow:  defaultWindowDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute runs the full pipeline. Context is accepted first per project
// convention; the computation itself is synchronous and does not block.
func (e *Engine) Compute(_ context.Context, in Input) (model.RecoveryModel, error) {
	window := in.WindowDays
	if window == 0 {
		window = e.defaultWindow
	}
	if _, ok := allowedWindows[window]; !ok {
		return model.RecoveryModel{}, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if in.AsOf.IsZero() {
		return model.RecoveryModel{}, ErrMissingAsOf
	}

	days, err := e.aligner.Align(in.Loads, in.Biometrics)
	if err != nil {
		return model.RecoveryModel{}, err
	}

	points := make([]model.RecoveryPoint, len(days))
	loadSeries := make([]float64, len(days))
	for i, d := range days {
		sleepHours := timeline.SleepHours(d.Biometric.SleepOnsetTime, d.Biometric.WakeTime, d.Biometric.SleepDurationH)
		points[i] = model.RecoveryPoint{
			Date:       d.Key,
			Load:       d.Load.CompositeLoad,
			Recovery:   readiness.Score(d.Biometric, sleepHours),
			SleepHours: sleepHours,
			HRV:        d.Biometric.HRVNight,
			RestingHR:  d.Biometric.RestingHR,
		}
		loadSeries[i] = d.Load.CompositeLoad
	}

	metrics := workload.Compute(loadSeries)
	mods := genetics.ExtractModifiers(in.Genetics)
	thresholds := genetics.AdjustThresholds(e.baseThresholds, mods)

	if len(points) > window {
		points = points[len(points)-window:]
	}
	latest := plan.LatestReadiness(points)

	return model.RecoveryModel{
		Points:         points,
		ACWR:           metrics.ACWR,
		Monotony:       metrics.Monotony,
		Strain:         metrics.Strain,
		LatestRecovery: latest,
		Modifiers:      mods,
		Thresholds:     thresholds,
		Plan:           plan.Build(in.AsOf, latest, metrics, thresholds, mods),
		Flags:          plan.Flags(metrics, thresholds, latest),
	}, nil
}
