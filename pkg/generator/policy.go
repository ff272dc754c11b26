package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

func DefaultPolicy() Policy {
	return Policy{
		OccupiedStartHour: 8,
		OccupiedEndHour:   18,
		LunchStartHour:    12,
		LunchEndHour:      14,
		NominalLoad:       LoadRange{Min: 0.85, Max: 1.15},
		LunchLoad:         LoadRange{Min: 0.3, Max: 0.6},
		Weekend:           WeekendOff,
		WeekendIdleChance: 0.1,
		WeekendIdleLoad:   LoadRange{Min: 0.05, Max: 0.15},
	}
}

func (r LoadRange) valid() bool {
	return r.Min >= 0 && r.Min <= r.Max
}

func (p Policy) Validate() error {
	switch {
	case p.OccupiedStartHour < 0 || p.OccupiedEndHour > 24 || p.OccupiedStartHour >= p.OccupiedEndHour:
		return fmt.Errorf("%w: occupied window %d-%d", ErrInvalidParams, p.OccupiedStartHour, p.OccupiedEndHour)
	case p.LunchStartHour > p.LunchEndHour ||
		(p.LunchStartHour < p.LunchEndHour &&
			(p.LunchStartHour < p.OccupiedStartHour || p.LunchEndHour > p.OccupiedEndHour)):
		return fmt.Errorf("%w: lunch window %d-%d", ErrInvalidParams, p.LunchStartHour, p.LunchEndHour)
	case !p.NominalLoad.valid() || !p.LunchLoad.valid() || !p.WeekendIdleLoad.valid():
		return fmt.Errorf("%w: load ranges", ErrInvalidParams)
	}
	switch p.Weekend {
	case WeekendOff:
	case WeekendIdle:
		if p.WeekendIdleChance < 0 || p.WeekendIdleChance > 1 {
			return fmt.Errorf("%w: weekend idle chance %v", ErrInvalidParams, p.WeekendIdleChance)
		}
	default:
		return fmt.Errorf("%w: weekend policy %q", ErrInvalidParams, p.Weekend)
	}
	return nil
}

func isWeekend(ts time.Time) bool {
	wd := ts.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// loadFactor draws the fraction of base power a room uses at ts.
// A zero factor means the room is off. Draws are only taken from src when
// the schedule calls for them, so the sequence stays reproducible.
func (p Policy) loadFactor(ts time.Time, src draws) float64 {
	if isWeekend(ts) {
		if p.Weekend != WeekendIdle {
			return 0
		}
		if src.bernoulli(p.WeekendIdleChance) {
			return src.uniform(p.WeekendIdleLoad)
		}
		return 0
	}

	hour := ts.Hour()
	switch {
	case hour < p.OccupiedStartHour || hour >= p.OccupiedEndHour:
		return 0
	case hour >= p.LunchStartHour && hour < p.LunchEndHour:
		return src.uniform(p.LunchLoad)
	default:
		return src.uniform(p.NominalLoad)
	}
}

// Rules describes the policy for the schedule page.
func (p Policy) Rules() []ScheduleRule {
	rules := []ScheduleRule{
		{
			Rule:   "Weekday schedule",
			Time:   fmt.Sprintf("%02d:00-%02d:00", p.OccupiedStartHour, p.OccupiedEndHour),
			Action: fmt.Sprintf("ON at %s of rated power", p.NominalLoad.percent()),
		},
	}
	if p.LunchStartHour < p.LunchEndHour {
		rules = append(rules, ScheduleRule{
			Rule:   "Lunch break",
			Time:   fmt.Sprintf("%02d:00-%02d:00", p.LunchStartHour, p.LunchEndHour),
			Action: fmt.Sprintf("Reduced to %s of rated power", p.LunchLoad.percent()),
		})
	}
	rules = append(rules, ScheduleRule{
		Rule:   "Outside schedule",
		Time:   fmt.Sprintf("before %02d:00, from %02d:00", p.OccupiedStartHour, p.OccupiedEndHour),
		Action: "OFF",
	})
	weekend := ScheduleRule{Rule: "Weekend", Time: "all day", Action: "OFF"}
	if p.Weekend == WeekendIdle {
		weekend.Action = fmt.Sprintf("OFF, %.0f%% of minutes idle at %s of rated power",
			p.WeekendIdleChance*100, p.WeekendIdleLoad.percent())
	}
	return append(rules, weekend)
}

func (r LoadRange) percent() string {
	return fmt.Sprintf("%.0f-%.0f%%", r.Min*100, r.Max*100)
}

// draws wraps the per-room source behind the distributions the policy needs.
type draws struct {
	src rand.Source
}

func (d draws) uniform(r LoadRange) float64 {
	return distuv.Uniform{Min: r.Min, Max: r.Max, Src: d.src}.Rand()
}

func (d draws) bernoulli(p float64) bool {
	return distuv.Bernoulli{P: p, Src: d.src}.Rand() == 1
}
