package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/dataset"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/pathing"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/spf13/viper"
)

func Default() Config {
	return Config{
		Building: BuildingConfig{
			Code:          building.Default.Code,
			Floors:        building.Default.Floors,
			RoomsPerFloor: building.Default.RoomsPerFloor,
		},
		Simulation: SimulationConfig{
			Timezone:          "Asia/Dhaka",
			Start:             "2025-11-01T00:00",
			End:               "2025-11-15T23:59",
			Step:              "1m",
			Seed:              42,
			BasePowerMinW:     900,
			BasePowerMaxW:     2200,
			WeekendPolicy:     string(generator.WeekendOff),
			WeekendIdleChance: 0.1,
		},
		Rates: RatesConfig{
			TariffPerKWh:   types.DefaultRates.TariffPerKWh,
			CO2GramsPerKWh: types.DefaultRates.CO2GramsPerKWh,
			Currency:       types.DefaultRates.Currency,
		},
		API: APIConfig{
			ListenAddress: "0.0.0.0",
			ListenPort:    9040,

			MaxCachedDatasets: dataset.DefaultCacheSize,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads bems.toml from the config directory, writing the defaults first
// when the file does not exist. BEMS_<SECTION>_<KEY> environment variables
// override file values.
func Load() (*Config, error) {
	if err := pathing.EnsureConfigDir(); err != nil {
		return nil, err
	}
	return LoadFile(pathing.GetConfigPath())
}

func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefault(configPath); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("BEMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefault(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	cfgFile, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer cfgFile.Close()
	return toml.NewEncoder(cfgFile).Encode(Default())
}

// Env overrides only apply to keys viper knows about.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("building.code", d.Building.Code)
	v.SetDefault("building.floors", d.Building.Floors)
	v.SetDefault("building.rooms_per_floor", d.Building.RoomsPerFloor)

	v.SetDefault("simulation.timezone", d.Simulation.Timezone)
	v.SetDefault("simulation.start", d.Simulation.Start)
	v.SetDefault("simulation.end", d.Simulation.End)
	v.SetDefault("simulation.step", d.Simulation.Step)
	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.base_power_min_w", d.Simulation.BasePowerMinW)
	v.SetDefault("simulation.base_power_max_w", d.Simulation.BasePowerMaxW)
	v.SetDefault("simulation.weekend_policy", d.Simulation.WeekendPolicy)
	v.SetDefault("simulation.weekend_idle_chance", d.Simulation.WeekendIdleChance)

	v.SetDefault("rates.tariff_per_kwh", d.Rates.TariffPerKWh)
	v.SetDefault("rates.co2_grams_per_kwh", d.Rates.CO2GramsPerKWh)
	v.SetDefault("rates.currency", d.Rates.Currency)

	v.SetDefault("api.listen_address", d.API.ListenAddress)
	v.SetDefault("api.listen_port", d.API.ListenPort)
	v.SetDefault("api.max_cached_datasets", d.API.MaxCachedDatasets)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c Config) Validate() error {
	if !c.Layout().Valid() {
		return invalid("building layout %s %dx%d", c.Building.Code, c.Building.Floors, c.Building.RoomsPerFloor)
	}
	if _, err := c.Params(); err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Rates.TariffPerKWh < 0 || c.Rates.CO2GramsPerKWh < 0 {
		return invalid("rates must not be negative")
	}
	if c.API.ListenPort < 0 || c.API.ListenPort > 65535 {
		return invalid("listen port %d", c.API.ListenPort)
	}
	if c.API.MaxCachedDatasets < 1 {
		return invalid("max cached datasets %d", c.API.MaxCachedDatasets)
	}
	return nil
}

func (c Config) Layout() building.Layout {
	return building.Layout{
		Code:          c.Building.Code,
		Floors:        c.Building.Floors,
		RoomsPerFloor: c.Building.RoomsPerFloor,
	}
}

func (c Config) TariffRates() types.Rates {
	return types.Rates{
		TariffPerKWh:   c.Rates.TariffPerKWh,
		CO2GramsPerKWh: c.Rates.CO2GramsPerKWh,
		Currency:       c.Rates.Currency,
	}
}

// Params converts the simulation section into generator parameters for all
// rooms of the building.
func (c Config) Params() (generator.Params, error) {
	s := c.Simulation
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return generator.Params{}, invalid("timezone %q: %v", s.Timezone, err)
	}
	start, err := time.ParseInLocation(timeLayout, s.Start, loc)
	if err != nil {
		return generator.Params{}, invalid("start %q: %v", s.Start, err)
	}
	end, err := time.ParseInLocation(timeLayout, s.End, loc)
	if err != nil {
		return generator.Params{}, invalid("end %q: %v", s.End, err)
	}
	step, err := time.ParseDuration(s.Step)
	if err != nil {
		return generator.Params{}, invalid("step %q: %v", s.Step, err)
	}
	if s.BasePowerMinW <= 0 || s.BasePowerMinW > s.BasePowerMaxW {
		return generator.Params{}, invalid("base power range %v-%v", s.BasePowerMinW, s.BasePowerMaxW)
	}

	if s.WeekendIdleChance < 0 || s.WeekendIdleChance > 1 {
		return generator.Params{}, invalid("weekend idle chance %v", s.WeekendIdleChance)
	}

	p := generator.DefaultParams()
	p.Layout = c.Layout()
	p.Horizon = generator.Horizon{Start: start, End: end, Step: step}
	p.Seed = s.Seed
	p.BasePowerMinW = s.BasePowerMinW
	p.BasePowerMaxW = s.BasePowerMaxW
	p.Policy.Weekend = generator.WeekendPolicy(s.WeekendPolicy)
	p.Policy.WeekendIdleChance = s.WeekendIdleChance
	if err := p.Validate(); err != nil {
		return generator.Params{}, err
	}
	return p, nil
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.ListenAddress, c.API.ListenPort)
}
