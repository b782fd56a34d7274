package signals

import (
	"math"
	"sort"
	"time"
)

const hoursPerDay = 24

// round rounds to specified decimal places
func round(value float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(value*mult) / mult
}

// roundCents rounds a fractional cent amount to whole cents
func roundCents(value float64) int64 {
	return int64(math.Round(value))
}

// finite replaces NaN and infinities with zero
func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// avg calculates the average of all values
func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStddev calculates the population standard deviation
func populationStddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := avg(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// median returns the middle value, averaging the two middle values for even counts
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// daysBetween returns the number of days from a to b, allowing fractional days
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}

// gaps returns consecutive day gaps for dates already sorted ascending
func gaps(dates []time.Time) []float64 {
	if len(dates) < 2 {
		return nil
	}
	out := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		out = append(out, daysBetween(dates[i-1], dates[i]))
	}
	return out
}

// toMonthly scales a window total to a 30-day equivalent
func toMonthly(total int64, windowDays int) int64 {
	if windowDays <= 0 {
		return 0
	}
	return roundCents(float64(total) * 30 / float64(windowDays))
}

// inRange reports whether lo <= v <= hi
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
