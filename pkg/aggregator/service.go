package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/esmutils"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

func New(layout building.Layout, rates types.Rates) *Aggregator {
	return &Aggregator{Layout: layout, Rates: rates}
}

// roundToHourStart returns the start of the hour in t's location
func roundToHourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// roundToDayStart returns midnight of t's calendar date in t's location
func roundToDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// roundToMonthStart returns the first day of t's month in t's location
func roundToMonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "hourly", "1h":
		return Hourly, nil
	case "day", "daily", "1d":
		return Daily, nil
	case "month", "monthly":
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
}

// Start returns the bucket t falls into.
func (tf Timeframe) Start(t time.Time) (time.Time, error) {
	switch tf {
	case Hourly:
		return roundToHourStart(t), nil
	case Daily:
		return roundToDayStart(t), nil
	case Monthly:
		return roundToMonthStart(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimeframe, string(tf))
}

// Contains reports whether t's calendar date lies inside the range.
func (r DateRange) Contains(t time.Time) bool {
	k := dayKey(t)
	return k >= dayKey(r.From) && k <= dayKey(r.To)
}

type rollupKey struct {
	room string
	day  string
}

// RollupDaily sums every (room, date) present in samples and broadcasts the
// day's cost and CO2 back onto a copy of each sample. A room-date with no
// energy still yields a rollup of zeros. Rollups are ordered by room then date.
func (a *Aggregator) RollupDaily(samples []types.TelemetrySample) ([]types.TelemetrySample, []types.DailyRollup) {
	index := make(map[rollupKey]int)
	daily := make([]types.DailyRollup, 0)
	powerSums := make([]float64, 0)

	for _, s := range samples {
		k := rollupKey{room: s.Room, day: dayKey(s.Timestamp)}
		i, ok := index[k]
		if !ok {
			i = len(daily)
			index[k] = i
			daily = append(daily, types.DailyRollup{
				Room:  s.Room,
				Floor: s.Floor,
				Date:  roundToDayStart(s.Timestamp),
			})
			powerSums = append(powerSums, 0)
		}
		daily[i].EnergyKWh += s.EnergyKWh
		daily[i].SampleCount++
		powerSums[i] += s.PowerW
	}

	for i := range daily {
		d := &daily[i]
		d.AvgPowerW = powerSums[i] / float64(d.SampleCount)
		d.Cost = esmutils.KWhToCost(d.EnergyKWh, a.Rates.TariffPerKWh)
		d.CO2Grams = esmutils.KWhToCO2Grams(d.EnergyKWh, a.Rates.CO2GramsPerKWh)
	}

	joined := make([]types.TelemetrySample, len(samples))
	for i, s := range samples {
		d := daily[index[rollupKey{room: s.Room, day: dayKey(s.Timestamp)}]]
		s.DayCost = d.Cost
		s.DayCO2Grams = d.CO2Grams
		joined[i] = s
	}

	sort.SliceStable(daily, func(i, j int) bool {
		if daily[i].Room != daily[j].Room {
			return daily[i].Room < daily[j].Room
		}
		return daily[i].Date.Before(daily[j].Date)
	})
	return joined, daily
}

// Resample buckets one room's samples within r. Energy is summed and power
// averaged per bucket. A range without samples yields an empty result.
func (a *Aggregator) Resample(samples []types.TelemetrySample, room string, r DateRange, tf Timeframe) ([]types.BucketRow, error) {
	if _, _, err := a.Layout.ParseRoom(room); err != nil {
		return nil, err
	}
	if _, err := tf.Start(time.Time{}); err != nil {
		return nil, err
	}

	rows := make([]types.BucketRow, 0)
	index := make(map[time.Time]int)
	powerSums := make([]float64, 0)
	for _, s := range samples {
		if s.Room != room || !r.Contains(s.Timestamp) {
			continue
		}
		start, _ := tf.Start(s.Timestamp)
		i, ok := index[start]
		if !ok {
			i = len(rows)
			index[start] = i
			rows = append(rows, types.BucketRow{Room: room, Start: start})
			powerSums = append(powerSums, 0)
		}
		rows[i].EnergyKWh += s.EnergyKWh
		rows[i].SampleCount++
		powerSums[i] += s.PowerW
	}
	for i := range rows {
		rows[i].AvgPowerW = powerSums[i] / float64(rows[i].SampleCount)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start.Before(rows[j].Start)
	})
	return rows, nil
}

// FilterRoom returns the samples of one room within r, in input order.
func (a *Aggregator) FilterRoom(samples []types.TelemetrySample, room string, r DateRange) ([]types.TelemetrySample, error) {
	if _, _, err := a.Layout.ParseRoom(room); err != nil {
		return nil, err
	}
	out := make([]types.TelemetrySample, 0)
	for _, s := range samples {
		if s.Room == room && r.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}
