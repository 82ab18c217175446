// Package readiness computes the 0-100 composite recovery score from
// nightly biometrics.
package readiness

import (
	"math"

	"github.com/okian/taper/internal/domain/model"
)

// Scoring model constants. The weights and breakpoints are the contract:
// this is a deterministic linear model, not a trained one, and downstream
// consumers (plan, flags) depend on exact reproduction.
const (
	hrvFloor   = 35.0 // ms; below this HRV contributes nothing
	hrvCeiling = 80.0
	rhrFloor   = 45.0 // bpm; at or below this resting HR contributes fully
	rhrCeiling = 75.0
	spo2Floor  = 94.0
	spo2Ceil   = 99.0

	sleepTargetFloor = 6.0 // hours
	sleepTargetSpan  = 2.0
	deepPctTarget    = 20.0
	remPctTarget     = 18.0

	sleepDurationWeight = 0.7
	sleepStageWeight    = 0.3

	hrvWeight   = 0.35
	rhrWeight   = 0.25
	sleepWeight = 0.25
	spo2Weight  = 0.15

	maxScore = 100
)

// Score computes the composite readiness score for one day. sleepHours must
// already be resolved (see timeline.SleepHours). An externally supplied
// recovery score in (0,100] always wins over the computed composite.
func Score(rec model.BiometricRecord, sleepHours float64) int {
	if rec.RecoveryScore > 0 && rec.RecoveryScore <= maxScore {
		return int(math.Round(rec.RecoveryScore))
	}

	hrvFactor := 0.0
	if rec.HRVNight > 0 {
		hrvFactor = clamp01((rec.HRVNight - hrvFloor) / (hrvCeiling - hrvFloor))
	}
	rhrFactor := 0.0
	if rec.RestingHR > 0 {
		rhrFactor = clamp01((rhrCeiling - rec.RestingHR) / (rhrCeiling - rhrFloor))
	}
	spo2Factor := 0.0
	if rec.SpO2Night > 0 {
		spo2Factor = clamp01((rec.SpO2Night - spo2Floor) / (spo2Ceil - spo2Floor))
	}

	stageComposite := (clamp01(rec.DeepSleepPct/deepPctTarget) + clamp01(rec.REMSleepPct/remPctTarget)) / 2
	sleepComposite := sleepDurationWeight*clamp01((sleepHours-sleepTargetFloor)/sleepTargetSpan) +
		sleepStageWeight*stageComposite

	score := hrvWeight*hrvFactor + rhrWeight*rhrFactor + sleepWeight*sleepComposite + spo2Weight*spo2Factor
	return int(math.Round(score * maxScore))
}

// clamp01 clamps x to [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
