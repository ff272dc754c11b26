package api

import (
	"errors"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/meterdb"
	"github.com/NotCoffee418/building_energy_monitor/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

var errBadRequest = errors.New("bad request")

// Server answers dashboard queries over the dataset built from Params.
// Requests may pick another seed with ?seed=, which goes through the cache.
// The store always holds the rollups of the default dataset.
type Server struct {
	cache   *dataset.Cache
	params  generator.Params
	store   *meterdb.Store
	metrics *metrics.Metrics
	log     zerolog.Logger
	router  *mux.Router

	// Delay between replayed samples on the websocket
	ReplayInterval time.Duration
}

type roomInfo struct {
	Room       string  `json:"room"`
	Floor      int     `json:"floor"`
	BasePowerW float64 `json:"base_power_w"`
}

type status struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Building    string `json:"building"`
	Rooms       int    `json:"rooms"`
	Samples     int    `json:"samples"`
	From        string `json:"from"`
	To          string `json:"to"`
	Fingerprint string `json:"fingerprint"`
	Currency    string `json:"currency"`
}
