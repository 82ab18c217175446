// Package workload computes rolling training-load risk metrics: the
// acute:chronic workload ratio, monotony, and strain.
package workload

import "math"

// Rolling window sizes in days.
const (
	acuteWindow   = 7
	chronicWindow = 28

	// flatLoadMonotony is the monotony assigned to a flat, non-zero load
	// week: zero variation at sustained load is maximally monotonous. A
	// flat zero week is not a risk signal and stays at 0.
	flatLoadMonotony = 10
)

// Metrics holds the three rolling risk metrics over a load history.
type Metrics struct {
	ACWR     float64 `json:"acwr"`
	Monotony float64 `json:"monotony"`
	Strain   float64 `json:"strain"`
}

// Compute derives the risk metrics from an oldest-to-newest sequence of
// composite load values. Histories shorter than the windows are allowed;
// each window simply uses what exists.
func Compute(loads []float64) Metrics {
	acute := lastN(loads, acuteWindow)
	chronic := lastN(loads, chronicWindow)

	acuteMean := Mean(acute)
	chronicMean := Mean(chronic)

	acwr := 0.0
	if chronicMean > 0 {
		acwr = acuteMean / chronicMean
	}

	monotony := 0.0
	if sd := Std(acute); sd > 0 {
		monotony = acuteMean / sd
	} else if acuteMean > 0 {
		monotony = flatLoadMonotony
	}

	return Metrics{
		ACWR:     acwr,
		Monotony: monotony,
		Strain:   math.Round(acuteMean * monotony),
	}
}

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the population standard deviation of xs, 0 when fewer than
// two elements exist.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// lastN returns the trailing n elements of xs, or all of xs when shorter.
func lastN(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
