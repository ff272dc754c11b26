// Replay collector prints one room-day of samples from the dashboard API as
// JSON lines. Depends on the dashboard API being online.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/NotCoffee418/building_energy_monitor/pkg/interpreter"
	"github.com/NotCoffee418/building_energy_monitor/pkg/logger"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	room := flag.String("room", "FUB-0101", "room to replay")
	date := flag.String("date", "2025-11-03", "day to replay, YYYY-MM-DD")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	lg := logger.Setup(*level, true)

	// Set the host:port from env var BEMS_API_HOST
	host := os.Getenv("BEMS_API_HOST")
	if host == "" {
		host = "localhost:9040"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := json.NewEncoder(os.Stdout)
	listener := interpreter.NewListener(host, lg)
	err := listener.Replay(ctx, *room, *date, func(s types.TelemetrySample) {
		out.Encode(s)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("replay failed")
	}
}
