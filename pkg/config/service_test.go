package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bems")
	t.Setenv("BEMS_CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	raw, err := os.ReadFile(filepath.Join(dir, "bems.toml"))
	require.NoError(t, err)
	var onDisk Config
	_, err = toml.Decode(string(raw), &onDisk)
	require.NoError(t, err)
	assert.Equal(t, Default(), onDisk)
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bems.toml")
	content := `
[building]
code = "ENG"
floors = 3
rooms_per_floor = 4

[simulation]
timezone = "UTC"
start = "2025-11-03T00:00"
end = "2025-11-03T23:59"
step = "15m"
seed = 7
base_power_min_w = 1000
base_power_max_w = 1500
weekend_policy = "idle"
weekend_idle_chance = 0.25

[rates]
tariff_per_kwh = 10
co2_grams_per_kwh = 500
currency = "EUR"

[api]
listen_address = "127.0.0.1"
listen_port = 8080

[log]
level = "debug"
pretty = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ENG", cfg.Building.Code)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.True(t, cfg.Log.Pretty)

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, 12, p.Layout.RoomCount())
	assert.Equal(t, 15*time.Minute, p.Horizon.Step)
	assert.Equal(t, 96, p.Horizon.Steps())
	assert.Equal(t, generator.WeekendIdle, p.Policy.Weekend)
	assert.Equal(t, 0.25, p.Policy.WeekendIdleChance)
	assert.Equal(t, "EUR", cfg.TariffRates().Currency)
	assert.Equal(t, 10.0, cfg.TariffRates().TariffPerKWh)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BEMS_CONFIG_DIR", dir)
	t.Setenv("BEMS_SIMULATION_SEED", "99")
	t.Setenv("BEMS_RATES_TARIFF_PER_KWH", "9.25")
	t.Setenv("BEMS_API_LISTEN_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 9.25, cfg.Rates.TariffPerKWh)
	assert.Equal(t, 9100, cfg.API.ListenPort)
	assert.Equal(t, "Asia/Dhaka", cfg.Simulation.Timezone)
}

func TestDefaultParamsUseDhakaTime(t *testing.T) {
	p, err := Default().Params()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Dhaka", p.Horizon.Start.Location().String())
	assert.Equal(t, 2025, p.Horizon.Start.Year())
	assert.Equal(t, 0, p.Horizon.Start.Hour())
	assert.Equal(t, 15*1440, p.Horizon.Steps())
	assert.Equal(t, uint64(42), p.Seed)
	assert.Equal(t, 80, p.Layout.RoomCount())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *Config){
		"timezone":     func(c *Config) { c.Simulation.Timezone = "Mars/Olympus" },
		"start":        func(c *Config) { c.Simulation.Start = "1 Nov 2025" },
		"step":         func(c *Config) { c.Simulation.Step = "often" },
		"zero step":    func(c *Config) { c.Simulation.Step = "0s" },
		"end":          func(c *Config) { c.Simulation.End = "2025-10-01T00:00" },
		"base range":   func(c *Config) { c.Simulation.BasePowerMinW = 3000 },
		"base zero":    func(c *Config) { c.Simulation.BasePowerMinW = 0 },
		"policy":       func(c *Config) { c.Simulation.WeekendPolicy = "party" },
		"idle chance":  func(c *Config) { c.Simulation.WeekendIdleChance = 1.5 },
		"tariff":       func(c *Config) { c.Rates.TariffPerKWh = -1 },
		"floors":       func(c *Config) { c.Building.Floors = 100 },
		"rooms":        func(c *Config) { c.Building.RoomsPerFloor = 0 },
		"listen port":  func(c *Config) { c.API.ListenPort = 70000 },
		"co2 negative": func(c *Config) { c.Rates.CO2GramsPerKWh = -5 },
		"cache size":   func(c *Config) { c.API.MaxCachedDatasets = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadFileRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bems.toml")
	require.NoError(t, os.WriteFile(path, []byte("[simulation]\nstep = \"-1m\"\n"), 0644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTariffRatesMirrorsRatesSection(t *testing.T) {
	c := Default()
	c.Rates.TariffPerKWh = 12.5
	c.Rates.CO2GramsPerKWh = 650
	c.Rates.Currency = "INR"

	r := c.TariffRates()
	assert.Equal(t, 12.5, r.TariffPerKWh)
	assert.Equal(t, 650.0, r.CO2GramsPerKWh)
	assert.Equal(t, "INR", r.Currency)
	assert.Equal(t, 4, c.API.MaxCachedDatasets)
}
