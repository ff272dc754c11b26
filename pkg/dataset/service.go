package dataset

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/sigurn/crc16"
)

var fingerprintTable = crc16.MakeTable(crc16.CRC16_ARC)

// Build generates the telemetry table for p and rolls it up with rates.
func Build(ctx context.Context, p generator.Params, rates types.Rates) (*Dataset, error) {
	started := time.Now()
	raw, err := generator.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	bases, err := generator.BasePowers(p)
	if err != nil {
		return nil, err
	}

	agg := aggregator.New(p.Layout, rates)
	samples, daily := agg.RollupDaily(raw)
	return &Dataset{
		Key:         p.Key(),
		Params:      p,
		Rates:       rates,
		Samples:     samples,
		Daily:       daily,
		BasePowers:  bases,
		Fingerprint: Fingerprint(samples),
		BuildTime:   time.Since(started),
		agg:         agg,
	}, nil
}

// Aggregator returns the aggregator the dataset was rolled up with.
func (d *Dataset) Aggregator() *aggregator.Aggregator {
	return d.agg
}

// Fingerprint is a CRC16/ARC over the generated fields of every sample.
// Identical tables always share a fingerprint.
func Fingerprint(samples []types.TelemetrySample) uint16 {
	crc := crc16.Init(fingerprintTable)
	buf := make([]byte, 0, 64)
	for _, s := range samples {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(s.Timestamp.Unix()))
		buf = append(buf, s.Room...)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.VoltageV))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.CurrentA))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.PowerW))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.EnergyKWh))
		buf = append(buf, s.Status...)
		crc = crc16.Update(crc, buf, fingerprintTable)
	}
	return crc16.Complete(crc, fingerprintTable)
}

// Range returns the dates covered by the dataset.
func (d *Dataset) Range() aggregator.DateRange {
	return aggregator.DateRange{From: d.Params.Horizon.Start, To: d.Params.Horizon.End}
}
