package kpi

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// wholeDays is the report convention: elapsed time floored to whole days.
func wholeDays(from, to time.Time) float64 {
	return math.Floor(float64(to.Sub(from)) / float64(day))
}

// fractionalDays is the KPI series convention: elapsed time in days, not
// rounded.
func fractionalDays(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(day)
}

func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
