package aggregator

import (
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/esmutils"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

// BuildingOverview summarizes every room for one calendar date.
func (a *Aggregator) BuildingOverview(samples []types.TelemetrySample, daily []types.DailyRollup, date time.Time) Overview {
	ov := Overview{
		Date:           roundToDayStart(date),
		FloorAvgPowerW: make(map[int]float64),
	}
	day := dayKey(date)

	var co2Grams float64
	floorPower := make(map[int]float64)
	floorCount := make(map[int]int)
	for _, d := range daily {
		if dayKey(d.Date) != day {
			continue
		}
		ov.HasData = true
		ov.EnergyKWh += d.EnergyKWh
		ov.Cost += d.Cost
		co2Grams += d.CO2Grams
		floorPower[d.Floor] += d.AvgPowerW * float64(d.SampleCount)
		floorCount[d.Floor] += d.SampleCount
	}
	ov.CO2Kg = esmutils.GramsToKg(co2Grams)
	for floor, n := range floorCount {
		ov.FloorAvgPowerW[floor] = floorPower[floor] / float64(n)
	}

	for _, s := range samples {
		if dayKey(s.Timestamp) != day {
			continue
		}
		switch {
		case s.Timestamp.After(ov.LatestAt):
			ov.LatestAt = s.Timestamp
			ov.OnPowerW, ov.OnRooms = 0, 0
			fallthrough
		case s.Timestamp.Equal(ov.LatestAt):
			if s.Status == types.StatusOn {
				ov.OnPowerW += s.PowerW
				ov.OnRooms++
			}
		}
	}
	return ov
}

// FloorStatus returns the latest sample of every room on a floor.
func (a *Aggregator) FloorStatus(samples []types.TelemetrySample, floor int) ([]RoomStatus, error) {
	rooms, err := a.Layout.FloorRooms(floor)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(rooms))
	out := make([]RoomStatus, len(rooms))
	for i, r := range rooms {
		pos[r] = i
		out[i] = RoomStatus{Room: r, Status: types.StatusOff}
	}
	for _, s := range samples {
		i, ok := pos[s.Room]
		if !ok {
			continue
		}
		if !out[i].HasData || s.Timestamp.After(out[i].At) {
			out[i] = RoomStatus{Room: s.Room, HasData: true, At: s.Timestamp, PowerW: s.PowerW, Status: s.Status}
		}
	}
	return out, nil
}

// RoomDetail summarizes one room over a date range. The bill and CO2 come
// from the daily rollups of the days in range.
func (a *Aggregator) RoomDetail(samples []types.TelemetrySample, daily []types.DailyRollup, room string, r DateRange) (RoomDetail, error) {
	in, err := a.FilterRoom(samples, room, r)
	if err != nil {
		return RoomDetail{}, err
	}
	rd := RoomDetail{
		Room: room,
		From: roundToDayStart(r.From),
		To:   roundToDayStart(r.To),
	}
	for _, s := range in {
		rd.EnergyKWh += s.EnergyKWh
		if !rd.HasData || s.Timestamp.After(rd.Latest.Timestamp) {
			rd.Latest = s
			rd.HasData = true
		}
	}

	var co2Grams float64
	for _, d := range daily {
		if d.Room != room || !r.Contains(d.Date) {
			continue
		}
		rd.EstimatedBill += d.Cost
		co2Grams += d.CO2Grams
		rd.Days++
	}
	rd.CO2Kg = esmutils.GramsToKg(co2Grams)
	return rd, nil
}
