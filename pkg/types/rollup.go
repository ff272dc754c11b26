package types

import "time"

// DailyRollup summarizes one room for one calendar date.
// CO2 is stored in grams; use CO2Kg for presentation.
type DailyRollup struct {
	Room        string    `json:"room"`
	Floor       int       `json:"floor"`
	Date        time.Time `json:"date"`
	EnergyKWh   float64   `json:"energy_kwh"`
	AvgPowerW   float64   `json:"avg_power_w"`
	Cost        float64   `json:"cost"`
	CO2Grams    float64   `json:"co2_g"`
	SampleCount int       `json:"sample_count"`
}

func (d DailyRollup) CO2Kg() float64 {
	return d.CO2Grams / 1000
}

// BucketRow is one bucket of an on-demand resample.
type BucketRow struct {
	Room        string    `json:"room"`
	Start       time.Time `json:"start"`
	EnergyKWh   float64   `json:"energy_kwh"`
	AvgPowerW   float64   `json:"avg_power_w"`
	SampleCount int       `json:"sample_count"`
}

// Rates convert energy into money and emissions.
type Rates struct {
	TariffPerKWh   float64 `json:"tariff_per_kwh"`
	CO2GramsPerKWh float64 `json:"co2_grams_per_kwh"`
	Currency       string  `json:"currency"`
}

// DefaultRates are the Bangladesh grid figures the dashboard was built around.
var DefaultRates = Rates{
	TariffPerKWh:   8.5,
	CO2GramsPerKWh: 720,
	Currency:       "BDT",
}
