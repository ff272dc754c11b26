package types

import "time"

type Status string

const (
	StatusOff Status = "OFF"
	StatusOn  Status = "ON"
)

// OnThresholdW is the power above which a room counts as switched on.
const OnThresholdW = 100.0

// TelemetrySample is one simulated minute of a single room.
type TelemetrySample struct {
	Timestamp time.Time `json:"timestamp"`
	Room      string    `json:"room"`
	Floor     int       `json:"floor"`

	// Electrical info
	VoltageV  float64 `json:"voltage_v"`
	CurrentA  float64 `json:"current_a"`
	PowerW    float64 `json:"power_w"`
	EnergyKWh float64 `json:"energy_kwh"`
	Status    Status  `json:"status"`

	// Totals of the room-date this sample belongs to, filled in by the daily rollup
	DayCost     float64 `json:"day_cost"`
	DayCO2Grams float64 `json:"day_co2_g"`
}

// StatusFor applies the ON threshold.
func StatusFor(powerW float64) Status {
	if powerW > OnThresholdW {
		return StatusOn
	}
	return StatusOff
}
