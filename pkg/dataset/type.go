package dataset

import (
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
)

// Dataset is one generated horizon together with its daily rollups.
// It is read-only once built and safe to share between goroutines.
type Dataset struct {
	Key         string
	Params      generator.Params
	Rates       types.Rates
	Samples     []types.TelemetrySample
	Daily       []types.DailyRollup
	BasePowers  map[string]float64
	Fingerprint uint16
	BuildTime   time.Duration

	agg *aggregator.Aggregator
}

// Observer receives cache and build events, e.g. for metrics.
type Observer interface {
	CacheHit()
	CacheMiss()
	Built(samples int, took time.Duration)
}
