// Package api serves the building dataset over HTTP and replays room-days
// over a websocket.
package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/meterdb"
	"github.com/NotCoffee418/building_energy_monitor/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

func New(
	cache *dataset.Cache,
	params generator.Params,
	store *meterdb.Store,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Server {
	s := &Server{
		cache:          cache,
		params:         params,
		store:          store,
		metrics:        m,
		log:            log,
		ReplayInterval: 50 * time.Millisecond,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.handleRooms).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/samples", s.handleRoomSamples).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/daily", s.handleRoomDaily).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/resample", s.handleResample).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/detail", s.handleRoomDetail).Methods(http.MethodGet)
	r.HandleFunc("/floors/{floor:[0-9]+}", s.handleFloor).Methods(http.MethodGet)
	r.HandleFunc("/floors/{floor:[0-9]+}/daily", s.handleFloorDaily).Methods(http.MethodGet)
	r.HandleFunc("/daily", s.handleDaily).Methods(http.MethodGet)
	r.HandleFunc("/overview", s.handleOverview).Methods(http.MethodGet)
	r.HandleFunc("/hourly", s.handleHourly).Methods(http.MethodGet)
	r.HandleFunc("/top", s.handleTop).Methods(http.MethodGet)
	r.HandleFunc("/schedules", s.handleSchedules).Methods(http.MethodGet)
	r.HandleFunc("/ws/rooms/{room}", s.handleReplay).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return r
}

// statusRecorder keeps the response code for logging. It passes Hijack
// through so websocket upgrades still work.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sr.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, strconv.Itoa(rec.code))
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Str("path", r.URL.Path).
			Int("status", rec.code).
			Dur("took", time.Since(started)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, building.ErrUnknownRoom), errors.Is(err, building.ErrUnknownFloor):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, generator.ErrInvalidHorizon),
		errors.Is(err, generator.ErrInvalidParams),
		errors.Is(err, aggregator.ErrUnknownTimeframe):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}
