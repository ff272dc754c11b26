package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, start, end time.Time, rooms ...string) []types.TelemetrySample {
	t.Helper()
	p := generator.DefaultParams()
	p.Rooms = rooms
	p.Horizon = generator.Horizon{Start: start, End: end, Step: time.Minute}
	samples, err := generator.Generate(context.Background(), p)
	require.NoError(t, err)
	return samples
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(d int) time.Time {
	return time.Date(2025, 11, d, 23, 59, 0, 0, time.UTC)
}

func newAggregator() *Aggregator {
	return New(building.Default, types.DefaultRates)
}

// Sat 1 Nov through Mon 3 Nov, two rooms.
func TestRollupDailyMatchesMinuteSums(t *testing.T) {
	samples := generate(t, day(1), endOfDay(3), "FUB-0101", "FUB-0402")
	joined, daily := newAggregator().RollupDaily(samples)
	require.Len(t, joined, len(samples))
	require.Len(t, daily, 6)

	for _, d := range daily {
		var energy, power float64
		var n int
		for _, s := range samples {
			if s.Room == d.Room && dayKey(s.Timestamp) == dayKey(d.Date) {
				energy += s.EnergyKWh
				power += s.PowerW
				n++
			}
		}
		assert.Equal(t, 1440, n)
		assert.Equal(t, n, d.SampleCount)
		assert.Equal(t, energy, d.EnergyKWh, d.Room)
		assert.Equal(t, power/float64(n), d.AvgPowerW)
		assert.Equal(t, d.EnergyKWh*8.5, d.Cost)
		assert.Equal(t, d.EnergyKWh*720, d.CO2Grams)
		assert.Equal(t, d.CO2Grams/1000, d.CO2Kg())
	}

	assert.Equal(t, "FUB-0101", daily[0].Room)
	assert.Equal(t, day(1), daily[0].Date)
	assert.Equal(t, day(3), daily[2].Date)
	assert.Equal(t, "FUB-0402", daily[3].Room)
	assert.Equal(t, 4, daily[3].Floor)
}

func TestRollupKeepsZeroEnergyDays(t *testing.T) {
	samples := generate(t, day(1), endOfDay(3), "FUB-0101")
	_, daily := newAggregator().RollupDaily(samples)
	require.Len(t, daily, 3)

	// Saturday and Sunday
	for _, d := range daily[:2] {
		assert.Zero(t, d.EnergyKWh)
		assert.Zero(t, d.Cost)
		assert.Zero(t, d.CO2Grams)
		assert.Zero(t, d.AvgPowerW)
		assert.Equal(t, 1440, d.SampleCount)
	}
	assert.Positive(t, daily[2].EnergyKWh)
}

func TestRollupBroadcastsDayTotals(t *testing.T) {
	samples := generate(t, day(3), endOfDay(4), "FUB-0101", "FUB-0102")
	joined, daily := newAggregator().RollupDaily(samples)

	byKey := make(map[rollupKey]types.DailyRollup)
	for _, d := range daily {
		byKey[rollupKey{room: d.Room, day: dayKey(d.Date)}] = d
	}
	for i, s := range joined {
		d, ok := byKey[rollupKey{room: s.Room, day: dayKey(s.Timestamp)}]
		require.True(t, ok)
		assert.Equal(t, d.Cost, s.DayCost)
		assert.Equal(t, d.CO2Grams, s.DayCO2Grams)

		// Everything else is carried over untouched.
		orig := samples[i]
		orig.DayCost, orig.DayCO2Grams = s.DayCost, s.DayCO2Grams
		assert.Equal(t, orig, s)
	}

	for _, s := range samples {
		assert.Zero(t, s.DayCost)
		assert.Zero(t, s.DayCO2Grams)
	}
}

func TestRollupEmptyTable(t *testing.T) {
	joined, daily := newAggregator().RollupDaily(nil)
	assert.NotNil(t, joined)
	assert.NotNil(t, daily)
	assert.Empty(t, joined)
	assert.Empty(t, daily)
}

func TestRollupCostMonotonicInEnergy(t *testing.T) {
	samples := generate(t, day(3), endOfDay(7))
	_, daily := newAggregator().RollupDaily(samples)
	for _, a := range daily {
		for _, b := range daily {
			if a.EnergyKWh <= b.EnergyKWh {
				assert.LessOrEqual(t, a.Cost, b.Cost)
				assert.LessOrEqual(t, a.CO2Grams, b.CO2Grams)
			}
		}
	}
}

// One weekday, one room rated at 2000 W.
func TestWeekdayScenarioDailyTotals(t *testing.T) {
	p := generator.DefaultParams()
	p.Rooms = []string{"FUB-0101"}
	p.BasePowerOverride = map[string]float64{"FUB-0101": 2000}
	p.Horizon = generator.Horizon{Start: day(3), End: endOfDay(3), Step: time.Minute}
	samples, err := generator.Generate(context.Background(), p)
	require.NoError(t, err)

	_, daily := newAggregator().RollupDaily(samples)
	require.Len(t, daily, 1)

	var sum float64
	for _, s := range samples {
		sum += s.EnergyKWh
	}
	assert.Equal(t, sum, daily[0].EnergyKWh)
	assert.Equal(t, sum*types.DefaultRates.TariffPerKWh, daily[0].Cost)

	// 8 nominal hours at 1700-2300 W plus 2 lunch hours at 600-1200 W.
	assert.GreaterOrEqual(t, daily[0].EnergyKWh, 8*1.7+2*0.6)
	assert.LessOrEqual(t, daily[0].EnergyKWh, 8*2.3+2*1.2)
}

func TestResampleHourlyMatchesDaily(t *testing.T) {
	samples := generate(t, day(3), endOfDay(4), "FUB-0606")
	a := newAggregator()
	_, daily := a.RollupDaily(samples)

	rows, err := a.Resample(samples, "FUB-0606", DateRange{From: day(3), To: day(3)}, Hourly)
	require.NoError(t, err)
	require.Len(t, rows, 24)

	var total float64
	for i, r := range rows {
		assert.Equal(t, day(3).Add(time.Duration(i)*time.Hour), r.Start)
		assert.Equal(t, 60, r.SampleCount)
		assert.Equal(t, "FUB-0606", r.Room)
		total += r.EnergyKWh
		if i < 8 || i >= 18 {
			assert.Zero(t, r.EnergyKWh)
			assert.Zero(t, r.AvgPowerW)
		} else {
			assert.InDelta(t, r.AvgPowerW/1000, r.EnergyKWh, 1e-9)
		}
	}
	assert.InDelta(t, daily[0].EnergyKWh, total, 1e-9)
}

func TestResampleCoarserBuckets(t *testing.T) {
	samples := generate(t, day(3), endOfDay(5), "FUB-0101")
	a := newAggregator()

	rows, err := a.Resample(samples, "FUB-0101", DateRange{From: day(1), To: day(30)}, Daily)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, day(5), rows[2].Start)

	rows, err = a.Resample(samples, "FUB-0101", DateRange{From: day(4), To: day(4)}, Monthly)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, day(1), rows[0].Start)
	assert.Equal(t, 1440, rows[0].SampleCount)
}

func TestResampleOutOfDataRangeIsEmpty(t *testing.T) {
	samples := generate(t, day(3), endOfDay(3), "FUB-0101")
	a := newAggregator()

	before := DateRange{
		From: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
	}
	rows, err := a.Resample(samples, "FUB-0101", before, Hourly)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	// A valid room that simply was not generated.
	rows, err = a.Resample(samples, "FUB-0202", DateRange{From: day(3), To: day(3)}, Hourly)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = a.Resample(samples, "FUB-0101", DateRange{From: day(4), To: day(2)}, Hourly)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestResampleRejectsUnknownRoomAndTimeframe(t *testing.T) {
	a := newAggregator()
	_, err := a.Resample(nil, "FUB-9999", DateRange{From: day(3), To: day(3)}, Hourly)
	assert.ErrorIs(t, err, building.ErrUnknownRoom)

	_, err = a.Resample(nil, "FUB-0101", DateRange{From: day(3), To: day(3)}, Timeframe("week"))
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestParseTimeframe(t *testing.T) {
	for in, want := range map[string]Timeframe{
		"hour": Hourly, "1H": Hourly, " hourly ": Hourly,
		"day": Daily, "1d": Daily,
		"month": Monthly,
	} {
		got, err := ParseTimeframe(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseTimeframe("fortnight")
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestRoundingHelpers(t *testing.T) {
	ts := time.Date(2025, 11, 14, 13, 47, 12, 5, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 14, 13, 0, 0, 0, time.UTC), roundToHourStart(ts))
	assert.Equal(t, time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), roundToDayStart(ts))
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), roundToMonthStart(ts))

	dhaka := time.FixedZone("BDT", 6*60*60)
	late := time.Date(2025, 11, 14, 1, 30, 0, 0, dhaka)
	assert.Equal(t, time.Date(2025, 11, 14, 0, 0, 0, 0, dhaka), roundToDayStart(late))
	assert.Equal(t, "2025-11-14", dayKey(late))
	assert.Equal(t, "2025-11-13", dayKey(late.UTC()))
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{From: day(3), To: day(5)}
	assert.True(t, r.Contains(day(3)))
	assert.True(t, r.Contains(endOfDay(5)))
	assert.False(t, r.Contains(endOfDay(2)))
	assert.False(t, r.Contains(day(6)))
}
