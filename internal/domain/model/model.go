// Package model contains domain models passed between layers.
package model

// DailyLoad is one athlete-day of training load produced by the upstream
// load service. CompositeLoad is the primary signal consumed downstream.
type DailyLoad struct {
	Date               string  `json:"date"` // calendar day or timestamp; canonicalized by timeline
	ZoneWeightedLoad   float64 `json:"zone_weighted_load"`
	MetabolicPowerLoad float64 `json:"metabolic_power_load"`
	CompositeLoad      float64 `json:"composite_load"`
}

// BiometricRecord is one athlete-day of wearable data. Optional fields use
// their zero value for "absent"; the engine treats absence as "no signal",
// never as an error.
type BiometricRecord struct {
	Date           string  `json:"date"`
	HRVNight       float64 `json:"hrv_night"`  // ms
	RestingHR      float64 `json:"resting_hr"` // bpm
	SpO2Night      float64 `json:"spo2_night"` // percent, 0-100
	SleepDurationH float64 `json:"sleep_duration_h,omitempty"`
	SleepOnsetTime string  `json:"sleep_onset_time,omitempty"` // "HH:MM"
	WakeTime       string  `json:"wake_time,omitempty"`        // "HH:MM"
	DeepSleepPct   float64 `json:"deep_sleep_pct,omitempty"`
	REMSleepPct    float64 `json:"rem_sleep_pct,omitempty"`
	RecoveryScore  float64 `json:"recovery_score,omitempty"` // externally supplied, wins when in (0,100]
}

// GeneticProfileEntry is a single gene/genotype pair from the genetics
// service. Gene names are matched case-insensitively.
type GeneticProfileEntry struct {
	Gene     string `json:"gene"`
	Genotype string `json:"genotype"`
}

// RecoveryPoint is one display-window day of the computed model. Derived,
// engine-owned, rebuilt on every computation.
type RecoveryPoint struct {
	Date       string  `json:"date"`
	Load       float64 `json:"load"`
	Recovery   int     `json:"recovery"` // 0-100
	SleepHours float64 `json:"sleep_hours"`
	HRV        float64 `json:"hrv"`
	RestingHR  float64 `json:"resting_hr"`
}

// GeneticsModifiers are the boolean sensitivity/trait flags derived from an
// athlete's genetic profile.
type GeneticsModifiers struct {
	InflammationSensitive bool `json:"inflammation_sensitive"`
	StressSensitive       bool `json:"stress_sensitive"`
	CircadianSensitive    bool `json:"circadian_sensitive"` // computed but applies no adjustment yet
	PowerDominant         bool `json:"power_dominant"`
}

// RiskThresholds are the breach thresholds for the three workload metrics.
type RiskThresholds struct {
	ACWR     float64 `json:"acwr"`
	Monotony float64 `json:"monotony"`
	Strain   float64 `json:"strain"`
}

// Intensity is the prescribed training intensity for a plan day.
type Intensity string

// Plan intensities.
const (
	IntensityLow      Intensity = "Low"
	IntensityModerate Intensity = "Moderate"
	IntensityHigh     Intensity = "High"
)

// PlanItem is one day of the forward training plan.
type PlanItem struct {
	Day       string    `json:"day"`
	Focus     string    `json:"focus"`
	Intensity Intensity `json:"intensity"`
	Notes     string    `json:"notes"`
}

// RecoveryModel is the full computed output for one athlete: display-window
// points, workload risk metrics, genotype-adjusted thresholds, a 3-day plan
// and human-readable risk flags.
type RecoveryModel struct {
	Points         []RecoveryPoint   `json:"points"`
	ACWR           float64           `json:"acwr"`
	Monotony       float64           `json:"monotony"`
	Strain         float64           `json:"strain"`
	LatestRecovery int               `json:"latest_recovery"`
	Modifiers      GeneticsModifiers `json:"modifiers"`
	Thresholds     RiskThresholds    `json:"thresholds"`
	Plan           []PlanItem        `json:"plan"`
	Flags          []string          `json:"flags"`
}
