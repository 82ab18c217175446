package timeline

import (
	"strconv"
	"strings"
)

// Sleep time constants.
const (
	minutesPerDay  = 24 * 60
	minutesPerHour = 60

	// clockSentinel is emitted by the ingestion pipeline when the wearable
	// reported no onset/wake time at all.
	clockSentinel = "00:00"
)

// SleepHours derives sleep duration in hours for a biometric record.
// A reported duration wins; otherwise the duration is reconstructed from
// onset and wake clock times, crossing midnight when wake precedes onset.
// Records with neither signal yield 0.
func SleepHours(onsetTime, wakeTime string, reportedHours float64) float64 {
	if reportedHours > 0 {
		return reportedHours
	}
	if onsetTime == "" || wakeTime == "" || onsetTime == clockSentinel || wakeTime == clockSentinel {
		return 0
	}
	onset, ok := parseClockMinutes(onsetTime)
	if !ok {
		return 0
	}
	wake, ok := parseClockMinutes(wakeTime)
	if !ok {
		return 0
	}
	minutes := wake - onset
	if minutes < 0 {
		minutes += minutesPerDay
	}
	if minutes < 0 {
		minutes = 0
	}
	return float64(minutes) / minutesPerHour
}

// parseClockMinutes parses an "HH:MM" clock string into minutes after
// midnight.
func parseClockMinutes(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*minutesPerHour + m, true
}
