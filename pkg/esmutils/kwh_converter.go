package esmutils

import (
	"math"
	"time"
)

// IntervalKWh is the energy drawn at a constant power over one interval.
// For a one-minute interval this is exactly powerW / 1000 / 60.
func IntervalKWh(powerW float64, interval time.Duration) float64 {
	if powerW <= 0 || interval <= 0 {
		return 0
	}
	perHour := float64(time.Hour) / float64(interval)
	return powerW / 1000 / perHour
}

// No negative values
func KWhToCost(kwh, tariffPerKWh float64) float64 {
	if kwh < 0 {
		return 0
	}
	return kwh * tariffPerKWh
}

// No negative values
func KWhToCO2Grams(kwh, gramsPerKWh float64) float64 {
	if kwh < 0 {
		return 0
	}
	return kwh * gramsPerKWh
}

func GramsToKg(g float64) float64 {
	return g / 1000
}

// Current derived from power and voltage, zero when idle.
func CurrentA(powerW, voltageV float64) float64 {
	if powerW <= 0 || voltageV <= 0 {
		return 0
	}
	return powerW / voltageV
}

// Round to a fixed number of decimals for display.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
