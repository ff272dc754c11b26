package generator

import (
	"errors"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
)

var (
	ErrInvalidHorizon = errors.New("invalid horizon")
	ErrInvalidParams  = errors.New("invalid generator params")
)

type WeekendPolicy string

const (
	// WeekendOff keeps every room at zero power on Saturday and Sunday.
	WeekendOff WeekendPolicy = "off"
	// WeekendIdle lets a room draw a small idle load on a fraction of weekend minutes.
	WeekendIdle WeekendPolicy = "idle"
)

// LoadRange is a multiplier range applied to a room's base power.
type LoadRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Policy decides, per minute, whether a room draws power and at which load.
// Hours are half-open: [start, end).
type Policy struct {
	OccupiedStartHour int       `json:"occupied_start_hour"`
	OccupiedEndHour   int       `json:"occupied_end_hour"`
	LunchStartHour    int       `json:"lunch_start_hour"`
	LunchEndHour      int       `json:"lunch_end_hour"`
	NominalLoad       LoadRange `json:"nominal_load"`
	LunchLoad         LoadRange `json:"lunch_load"`

	Weekend           WeekendPolicy `json:"weekend"`
	WeekendIdleChance float64       `json:"weekend_idle_chance"`
	WeekendIdleLoad   LoadRange     `json:"weekend_idle_load"`
}

// Horizon is an inclusive range of timestamps at a fixed step.
type Horizon struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Step  time.Duration `json:"step"`
}

type Params struct {
	Layout building.Layout
	// Rooms restricts generation to a subset of the layout. Empty means every room.
	Rooms   []string
	Horizon Horizon
	Seed    uint64

	BasePowerMinW float64
	BasePowerMaxW float64
	VoltageMinV   float64
	VoltageMaxV   float64

	Policy Policy

	// BasePowerOverride pins the base power of individual rooms.
	BasePowerOverride map[string]float64
}

// ScheduleRule is a readable line of the active policy.
type ScheduleRule struct {
	Rule   string `json:"rule"`
	Time   string `json:"time"`
	Action string `json:"action"`
}
