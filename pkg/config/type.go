package config

import "errors"

var ErrInvalidConfig = errors.New("invalid config")

// Layout of start/end in the config file, interpreted in the configured timezone.
const timeLayout = "2006-01-02T15:04"

type Config struct {
	Building   BuildingConfig   `toml:"building" mapstructure:"building"`
	Simulation SimulationConfig `toml:"simulation" mapstructure:"simulation"`
	Rates      RatesConfig      `toml:"rates" mapstructure:"rates"`
	API        APIConfig        `toml:"api" mapstructure:"api"`
	Log        LogConfig        `toml:"log" mapstructure:"log"`
}

type BuildingConfig struct {
	Code          string `toml:"code" mapstructure:"code"`
	Floors        int    `toml:"floors" mapstructure:"floors"`
	RoomsPerFloor int    `toml:"rooms_per_floor" mapstructure:"rooms_per_floor"`
}

type SimulationConfig struct {
	Timezone      string  `toml:"timezone" mapstructure:"timezone"`
	Start         string  `toml:"start" mapstructure:"start"`
	End           string  `toml:"end" mapstructure:"end"`
	Step          string  `toml:"step" mapstructure:"step"`
	Seed          uint64  `toml:"seed" mapstructure:"seed"`
	BasePowerMinW float64 `toml:"base_power_min_w" mapstructure:"base_power_min_w"`
	BasePowerMaxW float64 `toml:"base_power_max_w" mapstructure:"base_power_max_w"`
	// "off" or "idle"
	WeekendPolicy     string  `toml:"weekend_policy" mapstructure:"weekend_policy"`
	WeekendIdleChance float64 `toml:"weekend_idle_chance" mapstructure:"weekend_idle_chance"`
}

type RatesConfig struct {
	TariffPerKWh   float64 `toml:"tariff_per_kwh" mapstructure:"tariff_per_kwh"`
	CO2GramsPerKWh float64 `toml:"co2_grams_per_kwh" mapstructure:"co2_grams_per_kwh"`
	Currency       string  `toml:"currency" mapstructure:"currency"`
}

type APIConfig struct {
	ListenAddress string `toml:"listen_address" mapstructure:"listen_address"`
	ListenPort    int    `toml:"listen_port" mapstructure:"listen_port"`
	// Datasets kept in memory for ?seed= requests, the default one included
	MaxCachedDatasets int `toml:"max_cached_datasets" mapstructure:"max_cached_datasets"`
}

type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Pretty bool   `toml:"pretty" mapstructure:"pretty"`
}
