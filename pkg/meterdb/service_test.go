package meterdb

import (
	"context"
	"testing"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func loadedStore(t *testing.T) (*Store, *dataset.Dataset) {
	t.Helper()
	p := generator.DefaultParams()
	p.Rooms = []string{"FUB-0201", "FUB-0202", "FUB-0203", "FUB-0501"}
	p.Horizon = generator.Horizon{
		Start: day(2),
		End:   time.Date(2025, 11, 4, 23, 59, 0, 0, time.UTC),
		Step:  time.Minute,
	}
	ds, err := dataset.Build(context.Background(), p, types.DefaultRates)
	require.NoError(t, err)

	s, err := Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.LoadDataset(context.Background(), ds))
	return s, ds
}

func TestOpenStartsEmpty(t *testing.T) {
	s, err := Open(context.Background())
	require.NoError(t, err)
	defer s.Close()

	daily, hourly, err := s.RowCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, daily)
	assert.Zero(t, hourly)
	assert.Empty(t, s.Key())
}

func TestLoadDatasetStoresRollups(t *testing.T) {
	s, ds := loadedStore(t)

	daily, hourly, err := s.RowCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4*3, daily)
	assert.Equal(t, 4*3*24, hourly)
	assert.Equal(t, ds.Key, s.Key())

	got, err := s.DailyRollups(context.Background(), "FUB-0202")
	require.NoError(t, err)
	var want []types.DailyRollup
	for _, d := range ds.Daily {
		if d.Room == "FUB-0202" {
			want = append(want, d)
		}
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Date.Equal(got[i].Date))
		got[i].Date = want[i].Date
		assert.Equal(t, want[i], got[i])
	}
}

func TestLoadDatasetReplacesPrevious(t *testing.T) {
	s, ds := loadedStore(t)

	p := ds.Params
	p.Rooms = []string{"FUB-0101"}
	other, err := dataset.Build(context.Background(), p, types.DefaultRates)
	require.NoError(t, err)
	require.NoError(t, s.LoadDataset(context.Background(), other))

	daily, _, err := s.RowCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, daily)

	rows, err := s.DailyRollups(context.Background(), "FUB-0202")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFloorDailyTotals(t *testing.T) {
	s, ds := loadedStore(t)

	totals, err := s.FloorDailyTotals(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	for _, fd := range totals {
		var energy, cost float64
		for _, d := range ds.Daily {
			if d.Floor == 2 && d.Date.Equal(fd.Date) {
				energy += d.EnergyKWh
				cost += d.Cost
			}
		}
		assert.Equal(t, 3, fd.Rooms)
		assert.InDelta(t, energy, fd.EnergyKWh, 1e-9)
		assert.InDelta(t, cost, fd.Cost, 1e-9)
	}
	// Sunday 2 Nov is off, Monday 3 Nov is not.
	assert.Zero(t, totals[0].EnergyKWh)
	assert.Positive(t, totals[1].EnergyKWh)

	empty, err := s.FloorDailyTotals(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.FloorDailyTotals(context.Background(), 0)
	assert.ErrorIs(t, err, building.ErrUnknownFloor)
}

func TestBuildingHourlyMatchesDaily(t *testing.T) {
	s, ds := loadedStore(t)

	hours, err := s.BuildingHourly(context.Background(), day(3))
	require.NoError(t, err)
	require.Len(t, hours, 24)

	var total float64
	for i, h := range hours {
		assert.Equal(t, day(3).Add(time.Duration(i)*time.Hour), h.Start)
		assert.Equal(t, 4, h.Rooms)
		total += h.EnergyKWh
	}
	var want float64
	for _, d := range ds.Daily {
		if d.Date.Equal(day(3)) {
			want += d.EnergyKWh
		}
	}
	assert.InDelta(t, want, total, 1e-9)
	assert.Zero(t, hours[3].PowerW)
	assert.Positive(t, hours[10].PowerW)

	none, err := s.BuildingHourly(context.Background(), day(20))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTopRooms(t *testing.T) {
	s, _ := loadedStore(t)

	top, err := s.TopRooms(context.Background(), day(4), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].EnergyKWh, top[1].EnergyKWh)

	all, err := s.TopRooms(context.Background(), day(4), 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, top[0], all[0])
}

func TestDailyRollupsUnknownRoom(t *testing.T) {
	s, _ := loadedStore(t)
	_, err := s.DailyRollups(context.Background(), "FUB-1101")
	assert.ErrorIs(t, err, building.ErrUnknownRoom)
}
