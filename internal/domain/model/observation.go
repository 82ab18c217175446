package model

// ObservationKind discriminates ingested observation payloads.
type ObservationKind string

// Observation kinds.
const (
	KindLoad      ObservationKind = "load"
	KindBiometric ObservationKind = "biometric"
)

// Observation is one ingested athlete-day sample flowing through the
// ingestion pipeline. Exactly one of Load or Biometric is set, matching Kind.
type Observation struct {
	ObservationID string           `json:"observation_id"`
	AthleteID     string           `json:"athlete_id"`
	Kind          ObservationKind  `json:"kind"`
	Load          *DailyLoad       `json:"load,omitempty"`
	Biometric     *BiometricRecord `json:"biometric,omitempty"`
}
