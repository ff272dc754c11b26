package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/gorilla/mux"
)

// dataset returns the dataset for the request, honouring ?seed=.
func (s *Server) dataset(r *http.Request) (*dataset.Dataset, error) {
	p := s.params
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, badRequest("seed %q", v)
		}
		p.Seed = seed
	}
	return s.cache.Get(r.Context(), p)
}

func (s *Server) location() *time.Location {
	return s.params.Horizon.Start.Location()
}

func (s *Server) parseDate(name, v string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, v, s.location())
	if err != nil {
		return time.Time{}, badRequest("%s %q is not YYYY-MM-DD", name, v)
	}
	return t, nil
}

// dateParam reads ?date=, defaulting to the last day of the horizon.
func (s *Server) dateParam(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		end := s.params.Horizon.End
		return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()), nil
	}
	return s.parseDate("date", v)
}

// rangeParam reads ?from= and ?to=, defaulting to the dataset's horizon.
func (s *Server) rangeParam(r *http.Request, ds *dataset.Dataset) (aggregator.DateRange, error) {
	dr := ds.Range()
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		from, err := s.parseDate("from", v)
		if err != nil {
			return dr, err
		}
		dr.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := s.parseDate("to", v)
		if err != nil {
			return dr, err
		}
		dr.To = to
	}
	return dr, nil
}

func floorParam(r *http.Request) (int, error) {
	v := mux.Vars(r)["floor"]
	floor, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("floor %q", v)
	}
	return floor, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr := ds.Range()
	writeJSON(w, http.StatusOK, status{
		Message:     "Building Energy Monitor API",
		Status:      "running",
		Building:    ds.Params.Layout.Code,
		Rooms:       len(ds.BasePowers),
		Samples:     len(ds.Samples),
		From:        dr.From.Format(time.DateOnly),
		To:          dr.To.Format(time.DateOnly),
		Fingerprint: fmt.Sprintf("%04x", ds.Fingerprint),
		Currency:    ds.Rates.Currency,
	})
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rooms := make([]roomInfo, 0, len(ds.BasePowers))
	for _, room := range ds.Params.Layout.Rooms() {
		base, ok := ds.BasePowers[room]
		if !ok {
			continue
		}
		floor, _ := ds.Params.Layout.Floor(room)
		rooms = append(rooms, roomInfo{Room: room, Floor: floor, BasePowerW: base})
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleRoomSamples(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := s.rangeParam(r, ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	samples, err := ds.Aggregator().FilterRoom(ds.Samples, mux.Vars(r)["room"], dr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displaySamples(samples))
}

func (s *Server) handleRoomDaily(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.DailyRollups(r.Context(), mux.Vars(r)["room"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayDaily(rows))
}

func (s *Server) handleResample(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := s.rangeParam(r, ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tf := aggregator.Hourly
	if v := r.URL.Query().Get("timeframe"); v != "" {
		if tf, err = aggregator.ParseTimeframe(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	rows, err := ds.Aggregator().Resample(ds.Samples, mux.Vars(r)["room"], dr, tf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayBuckets(rows))
}

func (s *Server) handleRoomDetail(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := s.rangeParam(r, ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := ds.Aggregator().RoomDetail(ds.Samples, ds.Daily, mux.Vars(r)["room"], dr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayRoomDetail(detail))
}

func (s *Server) handleFloor(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	floor, err := floorParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rooms, err := ds.Aggregator().FloorStatus(ds.Samples, floor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayRoomStatus(rooms))
}

func (s *Server) handleFloorDaily(w http.ResponseWriter, r *http.Request) {
	floor, err := floorParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	totals, err := s.store.FloorDailyTotals(r.Context(), floor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayFloorDays(totals))
}

// handleDaily lists daily rollups in range, optionally for one floor.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := s.rangeParam(r, ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	floor := 0
	if v := r.URL.Query().Get("floor"); v != "" {
		if floor, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, badRequest("floor %q", v))
			return
		}
		if _, err := ds.Params.Layout.FloorRooms(floor); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	rows := make([]types.DailyRollup, 0)
	for _, d := range ds.Daily {
		if (floor == 0 || d.Floor == floor) && dr.Contains(d.Date) {
			rows = append(rows, d)
		}
	}
	writeJSON(w, http.StatusOK, displayDaily(rows))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := s.dateParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ov := ds.Aggregator().BuildingOverview(ds.Samples, ds.Daily, date)
	writeJSON(w, http.StatusOK, displayOverview(ov))
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hours, err := s.store.BuildingHourly(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayHours(hours))
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			s.writeError(w, r, badRequest("limit %q", v))
			return
		}
	}
	top, err := s.store.TopRooms(r.Context(), date, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, displayTop(top))
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.params.Policy.Rules())
}
