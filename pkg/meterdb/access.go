package meterdb

import (
	"context"
	"fmt"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

// LoadDataset replaces the stored rollups with those of ds.
// Hourly rows are resampled from the dataset's samples.
func (s *Store) LoadDataset(ctx context.Context, ds *dataset.Dataset) error {
	agg := ds.Aggregator()
	r := ds.Range()

	var hourly []types.BucketRow
	seen := make(map[string]bool)
	for _, d := range ds.Daily {
		if seen[d.Room] {
			continue
		}
		seen[d.Room] = true
		rows, err := agg.Resample(ds.Samples, d.Room, r, aggregator.Hourly)
		if err != nil {
			return fmt.Errorf("resample %s: %w", d.Room, err)
		}
		hourly = append(hourly, rows...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM daily_rollups"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM hourly_rollups"); err != nil {
		return err
	}

	dailyStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO daily_rollups "+
			"(room, floor, date, energy_kwh, avg_power_w, cost, co2_grams, sample_count) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer dailyStmt.Close()
	for _, d := range ds.Daily {
		_, err := dailyStmt.ExecContext(ctx,
			d.Room,
			d.Floor,
			d.Date.Format(time.DateOnly),
			d.EnergyKWh,
			d.AvgPowerW,
			d.Cost,
			d.CO2Grams,
			d.SampleCount,
		)
		if err != nil {
			return fmt.Errorf("insert daily %s %s: %w", d.Room, d.Date.Format(time.DateOnly), err)
		}
	}

	hourlyStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO hourly_rollups "+
			"(room, floor, start_time, date, energy_kwh, avg_power_w, sample_count) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer hourlyStmt.Close()
	for _, h := range hourly {
		floor, err := ds.Params.Layout.Floor(h.Room)
		if err != nil {
			return err
		}
		_, err = hourlyStmt.ExecContext(ctx,
			h.Room,
			floor,
			h.Start.Unix(),
			h.Start.Format(time.DateOnly),
			h.EnergyKWh,
			h.AvgPowerW,
			h.SampleCount,
		)
		if err != nil {
			return fmt.Errorf("insert hourly %s: %w", h.Room, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.layout = ds.Params.Layout
	s.loc = ds.Params.Horizon.Start.Location()
	s.key = ds.Key
	return nil
}

// Key identifies the dataset currently loaded, empty when none is.
func (s *Store) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

func (s *Store) parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, v, s.loc)
}

// DailyRollups returns the stored rollups of a room ordered by date.
func (s *Store) DailyRollups(ctx context.Context, room string) ([]types.DailyRollup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, _, err := s.layout.ParseRoom(room); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT room, floor, date, energy_kwh, avg_power_w, cost, co2_grams, sample_count "+
			"FROM daily_rollups WHERE room = ? ORDER BY date", room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.DailyRollup{}
	for rows.Next() {
		var d types.DailyRollup
		var date string
		err := rows.Scan(&d.Room, &d.Floor, &date, &d.EnergyKWh, &d.AvgPowerW, &d.Cost, &d.CO2Grams, &d.SampleCount)
		if err != nil {
			return nil, err
		}
		if d.Date, err = s.parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FloorDailyTotals sums a floor's rooms per date.
func (s *Store) FloorDailyTotals(ctx context.Context, floor int) ([]FloorDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.layout.FloorRooms(floor); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT date, COUNT(*), SUM(energy_kwh), SUM(cost), SUM(co2_grams) "+
			"FROM daily_rollups WHERE floor = ? GROUP BY date ORDER BY date", floor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FloorDay{}
	for rows.Next() {
		fd := FloorDay{Floor: floor}
		var date string
		if err := rows.Scan(&date, &fd.Rooms, &fd.EnergyKWh, &fd.Cost, &fd.CO2Grams); err != nil {
			return nil, err
		}
		if fd.Date, err = s.parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, rows.Err()
}

// BuildingHourly returns the building load curve of one date.
func (s *Store) BuildingHourly(ctx context.Context, date time.Time) ([]HourLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT start_time, COUNT(*), SUM(energy_kwh), SUM(avg_power_w) "+
			"FROM hourly_rollups WHERE date = ? GROUP BY start_time ORDER BY start_time",
		date.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HourLoad{}
	for rows.Next() {
		var h HourLoad
		var start int64
		if err := rows.Scan(&start, &h.Rooms, &h.EnergyKWh, &h.PowerW); err != nil {
			return nil, err
		}
		h.Start = time.Unix(start, 0).In(s.loc)
		out = append(out, h)
	}
	return out, rows.Err()
}

// TopRooms ranks rooms by energy on a date, highest first.
func (s *Store) TopRooms(ctx context.Context, date time.Time, limit int) ([]RoomEnergy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = s.layout.RoomCount()
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT room, floor, energy_kwh, cost FROM daily_rollups "+
			"WHERE date = ? ORDER BY energy_kwh DESC, room LIMIT ?",
		date.Format(time.DateOnly), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RoomEnergy{}
	for rows.Next() {
		var re RoomEnergy
		if err := rows.Scan(&re.Room, &re.Floor, &re.EnergyKWh, &re.Cost); err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

// RowCounts reports how many daily and hourly rows are stored.
func (s *Store) RowCounts(ctx context.Context) (daily, hourly int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_rollups").Scan(&daily); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hourly_rollups").Scan(&hourly)
	return daily, hourly, err
}
