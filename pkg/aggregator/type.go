package aggregator

import (
	"errors"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

type Timeframe string

const (
	Hourly  Timeframe = "hour"
	Daily   Timeframe = "day"
	Monthly Timeframe = "month"
)

// DateRange selects whole calendar days, both ends included.
// Only the date part of From and To is used.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Aggregator turns raw samples into rollups and summaries for one building.
type Aggregator struct {
	Layout building.Layout
	Rates  types.Rates
}

// Overview is the whole-building view of one date.
type Overview struct {
	Date      time.Time `json:"date"`
	HasData   bool      `json:"has_data"`
	EnergyKWh float64   `json:"energy_kwh"`
	Cost      float64   `json:"cost"`
	CO2Kg     float64   `json:"co2_kg"`

	// Rooms switched on at the last sampled minute of the date
	LatestAt time.Time `json:"latest_at"`
	OnPowerW float64   `json:"on_power_w"`
	OnRooms  int       `json:"on_rooms"`

	FloorAvgPowerW map[int]float64 `json:"floor_avg_power_w"`
}

type RoomStatus struct {
	Room    string       `json:"room"`
	HasData bool         `json:"has_data"`
	At      time.Time    `json:"at"`
	PowerW  float64      `json:"power_w"`
	Status  types.Status `json:"status"`
}

type RoomDetail struct {
	Room          string                `json:"room"`
	From          time.Time             `json:"from"`
	To            time.Time             `json:"to"`
	HasData       bool                  `json:"has_data"`
	Latest        types.TelemetrySample `json:"latest"`
	EnergyKWh     float64               `json:"energy_kwh"`
	EstimatedBill float64               `json:"estimated_bill"`
	CO2Kg         float64               `json:"co2_kg"`
	Days          int                   `json:"days"`
}
