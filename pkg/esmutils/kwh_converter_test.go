package esmutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalKWhOneMinute(t *testing.T) {
	for _, p := range []float64{1, 100, 1234.5678, 2000, 2300} {
		assert.Equal(t, p/1000/60, IntervalKWh(p, time.Minute))
	}
	assert.InDelta(t, 1.0, IntervalKWh(1000, time.Hour), 1e-12)
	assert.Zero(t, IntervalKWh(0, time.Minute))
	assert.Zero(t, IntervalKWh(-5, time.Minute))
	assert.Zero(t, IntervalKWh(500, 0))
}

func TestCostAndCO2(t *testing.T) {
	assert.Equal(t, 2.0*8.5, KWhToCost(2, 8.5))
	assert.Equal(t, 2.0*720, KWhToCO2Grams(2, 720))
	assert.Zero(t, KWhToCost(-1, 8.5))
	assert.Zero(t, KWhToCO2Grams(-1, 720))
	assert.Equal(t, 1.44, GramsToKg(1440))
}

func TestCurrentA(t *testing.T) {
	assert.Equal(t, 2000.0/220, CurrentA(2000, 220))
	assert.Zero(t, CurrentA(0, 220))
	assert.Zero(t, CurrentA(100, 0))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 221.35, Round(221.3456, 2))
	assert.Equal(t, 9.091, Round(9.09090909, 3))
	assert.Equal(t, 1999.9, Round(1999.94, 1))
}
