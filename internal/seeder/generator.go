package seeder

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/taper/internal/domain/model"
)

// Constants for random number generation.
const randomFloatDivisor = 1000000

// Load pattern shapes. Each athlete is assigned one for the whole season.
const (
	patternSteady = iota
	patternSpike
	patternTaper
	patternMonotone
	patternCount
)

// Biometric generation ranges.
const (
	hrvBase    = 45.0
	hrvRange   = 40.0
	rhrBase    = 45.0
	rhrRange   = 25.0
	spo2Base   = 94.0
	spo2Range  = 5.0
	deepBase   = 12.0
	deepRange  = 14.0
	remBase    = 10.0
	remRange   = 14.0
	loadBase   = 200.0
	loadRange  = 350.0
	spikeBoost = 2.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// Season is one athlete's generated history.
type Season struct {
	AthleteID    string
	Observations []model.Observation
	Genetics     []model.GeneticProfileEntry
}

// generateSeason builds a season ending on endDay with the given length.
func generateSeason(endDay time.Time, days int, withGenetics bool) Season {
	athleteID := uuid.New().String()
	pattern := int(getRandomFloat() * patternCount)
	if pattern >= patternCount {
		pattern = patternCount - 1
	}

	season := Season{AthleteID: athleteID}
	baseLoad := loadBase + getRandomFloat()*loadRange

	for d := 0; d < days; d++ {
		day := endDay.AddDate(0, 0, -(days - 1 - d)).Format("2006-01-02")
		load := dailyLoad(pattern, baseLoad, d, days)

		season.Observations = append(season.Observations, model.Observation{
			ObservationID: uuid.New().String(),
			AthleteID:     athleteID,
			Kind:          model.KindLoad,
			Load:          &model.DailyLoad{Date: day, CompositeLoad: load},
		})

		// Wearables miss the occasional night.
		if getRandomFloat() < 0.9 {
			season.Observations = append(season.Observations, model.Observation{
				ObservationID: uuid.New().String(),
				AthleteID:     athleteID,
				Kind:          model.KindBiometric,
				Biometric:     nightlyBiometric(day),
			})
		}
	}

	if withGenetics {
		season.Genetics = randomGenetics()
	}
	return season
}

// dailyLoad shapes the composite load for day d of the season.
func dailyLoad(pattern int, base float64, d, days int) float64 {
	jitter := 0.9 + getRandomFloat()*0.2
	switch pattern {
	case patternSpike:
		// Flat season with a doubled final week.
		if d >= days-7 {
			return base * spikeBoost * jitter
		}
		return base * jitter
	case patternTaper:
		// Load ramps down toward the end.
		frac := float64(days-d) / float64(days)
		return base * (0.5 + frac) * jitter
	case patternMonotone:
		// Identical load every day; exercises the flat-week monotony rule.
		return base
	default:
		return base * jitter
	}
}

// nightlyBiometric fabricates one night of wearable data.
func nightlyBiometric(day string) *model.BiometricRecord {
	rec := &model.BiometricRecord{
		Date:         day,
		HRVNight:     hrvBase + getRandomFloat()*hrvRange,
		RestingHR:    rhrBase + getRandomFloat()*rhrRange,
		SpO2Night:    spo2Base + getRandomFloat()*spo2Range,
		DeepSleepPct: deepBase + getRandomFloat()*deepRange,
		REMSleepPct:  remBase + getRandomFloat()*remRange,
	}
	// Some devices report a duration, others only clock times.
	if getRandomFloat() < 0.5 {
		rec.SleepDurationH = 5.5 + getRandomFloat()*3.5
	} else {
		onsetH := 21 + int(getRandomFloat()*4) // 21:00 .. 00:00
		rec.SleepOnsetTime = fmt.Sprintf("%02d:%02d", onsetH%24, int(getRandomFloat()*60))
		rec.WakeTime = fmt.Sprintf("%02d:%02d", 5+int(getRandomFloat()*4), int(getRandomFloat()*60))
	}
	return rec
}

// randomGenetics picks a plausible marker panel.
func randomGenetics() []model.GeneticProfileEntry {
	pick := func(options ...string) string {
		return options[int(getRandomFloat()*float64(len(options)))%len(options)]
	}
	return []model.GeneticProfileEntry{
		{Gene: "IL6", Genotype: pick("GG", "GC", "CC")},
		{Gene: "TNF", Genotype: pick("AA", "GA", "GG")},
		{Gene: "ADRB1", Genotype: pick("AA", "AG", "GG")},
		{Gene: "COMT", Genotype: pick("AA", "AG", "GG")},
		{Gene: "CLOCK", Genotype: pick("AA", "AG", "GG")},
		{Gene: "ACTN3", Genotype: pick("RR", "RX", "XX")},
	}
}
