package plan

import (
	"fmt"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/workload"
)

// Flags emits one human-readable flag per breached threshold, plus a
// low-readiness flag. Every flag carries the numeric comparison for
// auditability. The order is fixed (ACWR, Monotony, Strain, Readiness),
// not sorted by severity.
func Flags(m workload.Metrics, thresholds model.RiskThresholds, latestReadiness int) []string {
	var flags []string
	if m.ACWR >= thresholds.ACWR {
		flags = append(flags, fmt.Sprintf("ACWR %.2f at or above threshold %.2f: acute load spike", m.ACWR, thresholds.ACWR))
	}
	if m.Monotony >= thresholds.Monotony {
		flags = append(flags, fmt.Sprintf("Monotony %.2f at or above threshold %.2f: training lacks variation", m.Monotony, thresholds.Monotony))
	}
	if m.Strain >= thresholds.Strain {
		flags = append(flags, fmt.Sprintf("Strain %.0f at or above threshold %.0f: combined overload", m.Strain, thresholds.Strain))
	}
	if latestReadiness < lowRecoveryCutoff {
		flags = append(flags, fmt.Sprintf("Readiness %d below %d: recovery capacity reduced", latestReadiness, lowRecoveryCutoff))
	}
	return flags
}
