package genetics

import "github.com/okian/taper/internal/domain/model"

// Base risk thresholds before genotype adjustment.
const (
	baseACWRThreshold     = 1.5
	baseMonotonyThreshold = 2.0
	baseStrainThreshold   = 6000.0
)

// Genotype threshold shifts. Adjustments are independent and additive; no
// floor is applied, so combined sensitivities may drive a threshold
// negative.
const (
	inflammationACWRShift   = 0.1
	inflammationStrainShift = 500.0
	stressMonotonyShift     = 0.3
)

// BaseThresholds returns the unadjusted risk thresholds.
func BaseThresholds() model.RiskThresholds {
	return model.RiskThresholds{
		ACWR:     baseACWRThreshold,
		Monotony: baseMonotonyThreshold,
		Strain:   baseStrainThreshold,
	}
}

// AdjustThresholds shifts the thresholds for the athlete's modifiers.
// CircadianSensitive is carried through the model but applies no numeric
// shift yet; it is reserved for sleep-aware tuning.
func AdjustThresholds(base model.RiskThresholds, mods model.GeneticsModifiers) model.RiskThresholds {
	t := base
	if mods.InflammationSensitive {
		t.ACWR -= inflammationACWRShift
		t.Strain -= inflammationStrainShift
	}
	if mods.StressSensitive {
		t.Monotony -= stressMonotonyShift
	}
	return t
}
