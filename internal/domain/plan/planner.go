// Package plan produces the rule-based forward training plan and the
// human-readable risk flags.
package plan

import (
	"fmt"
	"time"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/workload"
)

// Planning rule constants.
const (
	planDays = 3

	// lowRecoveryCutoff gates the recovery override; moderateCutoff splits
	// the moderate and high tiers.
	lowRecoveryCutoff = 60
	moderateCutoff    = 75

	dayLayout = "2006-01-02"
)

// Focus labels for the plan tiers.
const (
	focusRecovery = "Active Recovery + Skills"
	focusSpeed    = "Speed & Technical"
	focusAerobic  = "Aerobic Conditioning"
	focusFull     = "Full Conditioning"
)

// Build returns the plan for the next three calendar days after asOf. The
// same rule applies to all three days; only the date label varies. A
// breached workload threshold overrides high readiness: risk wins.
func Build(asOf time.Time, latestReadiness int, m workload.Metrics, thresholds model.RiskThresholds, mods model.GeneticsModifiers) []model.PlanItem {
	highRisk := m.ACWR >= thresholds.ACWR ||
		m.Monotony >= thresholds.Monotony ||
		m.Strain >= thresholds.Strain
	lowRecovery := latestReadiness < lowRecoveryCutoff

	items := make([]model.PlanItem, 0, planDays)
	for i := 1; i <= planDays; i++ {
		day := asOf.AddDate(0, 0, i).Format(dayLayout)
		items = append(items, buildDay(day, latestReadiness, highRisk, lowRecovery, mods))
	}
	return items
}

func buildDay(day string, latestReadiness int, highRisk, lowRecovery bool, mods model.GeneticsModifiers) model.PlanItem {
	switch {
	case highRisk || lowRecovery:
		notes := "workload risk elevated; absorb load before rebuilding intensity"
		if !highRisk {
			notes = fmt.Sprintf("readiness %d below %d; prioritize recovery", latestReadiness, lowRecoveryCutoff)
		}
		return model.PlanItem{
			Day:       day,
			Focus:     focusRecovery,
			Intensity: model.IntensityLow,
			Notes:     notes,
		}
	case latestReadiness < moderateCutoff:
		focus := focusAerobic
		if mods.PowerDominant {
			focus = focusSpeed
		}
		return model.PlanItem{
			Day:       day,
			Focus:     focus,
			Intensity: model.IntensityModerate,
			Notes:     fmt.Sprintf("readiness %d; moderate volume, quality over quantity", latestReadiness),
		}
	default:
		return model.PlanItem{
			Day:       day,
			Focus:     focusFull,
			Intensity: model.IntensityHigh,
			Notes:     fmt.Sprintf("readiness %d; full session as planned", latestReadiness),
		}
	}
}

// LatestReadiness scans the display-window points from most recent to
// oldest and returns the first non-zero recovery value, or 0 when none
// exists. Skipping zeros avoids reporting 0% when the biometric feed lags
// the load feed.
func LatestReadiness(points []model.RecoveryPoint) int {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Recovery > 0 {
			return points[i].Recovery
		}
	}
	return 0
}
