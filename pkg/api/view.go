package api

import (
	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/esmutils"
	"github.com/NotCoffee418/building_energy_monitor/pkg/meterdb"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

// Values leave the engine at full precision and are only rounded here.

func displaySample(s types.TelemetrySample) types.TelemetrySample {
	s.VoltageV = esmutils.Round(s.VoltageV, 2)
	s.CurrentA = esmutils.Round(s.CurrentA, 3)
	s.PowerW = esmutils.Round(s.PowerW, 1)
	s.EnergyKWh = esmutils.Round(s.EnergyKWh, 6)
	s.DayCost = esmutils.Round(s.DayCost, 2)
	s.DayCO2Grams = esmutils.Round(s.DayCO2Grams, 1)
	return s
}

func displaySamples(in []types.TelemetrySample) []types.TelemetrySample {
	out := make([]types.TelemetrySample, len(in))
	for i, s := range in {
		out[i] = displaySample(s)
	}
	return out
}

func displayDaily(in []types.DailyRollup) []types.DailyRollup {
	out := make([]types.DailyRollup, len(in))
	for i, d := range in {
		d.EnergyKWh = esmutils.Round(d.EnergyKWh, 3)
		d.AvgPowerW = esmutils.Round(d.AvgPowerW, 1)
		d.Cost = esmutils.Round(d.Cost, 2)
		d.CO2Grams = esmutils.Round(d.CO2Grams, 1)
		out[i] = d
	}
	return out
}

func displayBuckets(in []types.BucketRow) []types.BucketRow {
	out := make([]types.BucketRow, len(in))
	for i, b := range in {
		b.EnergyKWh = esmutils.Round(b.EnergyKWh, 3)
		b.AvgPowerW = esmutils.Round(b.AvgPowerW, 1)
		out[i] = b
	}
	return out
}

func displayOverview(o aggregator.Overview) aggregator.Overview {
	o.EnergyKWh = esmutils.Round(o.EnergyKWh, 3)
	o.Cost = esmutils.Round(o.Cost, 2)
	o.CO2Kg = esmutils.Round(o.CO2Kg, 3)
	o.OnPowerW = esmutils.Round(o.OnPowerW, 1)
	floors := make(map[int]float64, len(o.FloorAvgPowerW))
	for f, w := range o.FloorAvgPowerW {
		floors[f] = esmutils.Round(w, 1)
	}
	o.FloorAvgPowerW = floors
	return o
}

func displayRoomStatus(in []aggregator.RoomStatus) []aggregator.RoomStatus {
	out := make([]aggregator.RoomStatus, len(in))
	for i, r := range in {
		r.PowerW = esmutils.Round(r.PowerW, 1)
		out[i] = r
	}
	return out
}

func displayRoomDetail(d aggregator.RoomDetail) aggregator.RoomDetail {
	d.Latest = displaySample(d.Latest)
	d.EnergyKWh = esmutils.Round(d.EnergyKWh, 3)
	d.EstimatedBill = esmutils.Round(d.EstimatedBill, 2)
	d.CO2Kg = esmutils.Round(d.CO2Kg, 3)
	return d
}

func displayFloorDays(in []meterdb.FloorDay) []meterdb.FloorDay {
	for i := range in {
		in[i].EnergyKWh = esmutils.Round(in[i].EnergyKWh, 3)
		in[i].Cost = esmutils.Round(in[i].Cost, 2)
		in[i].CO2Grams = esmutils.Round(in[i].CO2Grams, 1)
	}
	return in
}

func displayHours(in []meterdb.HourLoad) []meterdb.HourLoad {
	for i := range in {
		in[i].EnergyKWh = esmutils.Round(in[i].EnergyKWh, 3)
		in[i].PowerW = esmutils.Round(in[i].PowerW, 1)
	}
	return in
}

func displayTop(in []meterdb.RoomEnergy) []meterdb.RoomEnergy {
	for i := range in {
		in[i].EnergyKWh = esmutils.Round(in[i].EnergyKWh, 3)
		in[i].Cost = esmutils.Round(in[i].Cost, 2)
	}
	return in
}
