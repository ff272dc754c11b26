// Dashboard API serves the simulated building over HTTP and websocket replay.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/api"
	"github.com/NotCoffee418/building_energy_monitor/pkg/config"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/logger"
	"github.com/NotCoffee418/building_energy_monitor/pkg/meterdb"
	"github.com/NotCoffee418/building_energy_monitor/pkg/metrics"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	lg := logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	params, err := cfg.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid simulation parameters")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	cache := dataset.NewCache(cfg.TariffRates(), cfg.API.MaxCachedDatasets, lg, m)
	ds, err := cache.Get(ctx, params)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset build failed")
	}

	store, err := meterdb.Open(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("rollup store open failed")
	}
	defer store.Close()
	if err := store.LoadDataset(ctx, ds); err != nil {
		log.Fatal().Err(err).Msg("rollup store load failed")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.New(cache, params, store, m, lg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown incomplete")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("starting building energy dashboard API")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exit")
	}
	log.Info().Msg("server stopped")
}
