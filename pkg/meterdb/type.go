package meterdb

import (
	"database/sql"
	"sync"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
)

type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	layout building.Layout
	loc    *time.Location
	key    string
}

// FloorDay sums the daily rollups of every room on a floor.
type FloorDay struct {
	Floor     int       `json:"floor"`
	Date      time.Time `json:"date"`
	Rooms     int       `json:"rooms"`
	EnergyKWh float64   `json:"energy_kwh"`
	Cost      float64   `json:"cost"`
	CO2Grams  float64   `json:"co2_grams"`
}

// HourLoad is the building-wide consumption of one hour. PowerW is the
// summed mean power of the rooms.
type HourLoad struct {
	Start     time.Time `json:"start"`
	Rooms     int       `json:"rooms"`
	EnergyKWh float64   `json:"energy_kwh"`
	PowerW    float64   `json:"power_w"`
}

// RoomEnergy ranks rooms by energy on a date.
type RoomEnergy struct {
	Room      string  `json:"room"`
	Floor     int     `json:"floor"`
	EnergyKWh float64 `json:"energy_kwh"`
	Cost      float64 `json:"cost"`
}
