package main

import (
	"testing"

	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSeed(t *testing.T, args ...string) generator.Params {
	t.Helper()
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	seed := fs.Uint64("seed", 0, "")
	require.NoError(t, fs.Parse(args))

	p := generator.DefaultParams()
	applySeedFlag(fs, *seed, &p)
	return p
}

func TestSeedFlagKeepsConfigWhenAbsent(t *testing.T) {
	assert.Equal(t, uint64(42), parseSeed(t).Seed)
}

func TestSeedFlagAcceptsZero(t *testing.T) {
	assert.Equal(t, uint64(0), parseSeed(t, "--seed=0").Seed)
}

func TestSeedFlagOverrides(t *testing.T) {
	assert.Equal(t, uint64(7), parseSeed(t, "--seed", "7").Seed)
}
