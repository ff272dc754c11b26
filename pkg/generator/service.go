package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/building_energy_monitor/pkg/esmutils"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultParams covers the two weeks the dashboard was demoed on: 1-15 Nov 2025.
func DefaultParams() Params {
	return Params{
		Layout: building.Default,
		Horizon: Horizon{
			Start: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 11, 15, 23, 59, 0, 0, time.UTC),
			Step:  time.Minute,
		},
		Seed:          42,
		BasePowerMinW: 900,
		BasePowerMaxW: 2200,
		VoltageMinV:   218,
		VoltageMaxV:   232,
		Policy:        DefaultPolicy(),
	}
}

func (h Horizon) Validate() error {
	if h.Step <= 0 {
		return fmt.Errorf("%w: step %s must be positive", ErrInvalidHorizon, h.Step)
	}
	if h.End.Before(h.Start) {
		return fmt.Errorf("%w: end %s before start %s",
			ErrInvalidHorizon, h.End.Format(time.RFC3339), h.Start.Format(time.RFC3339))
	}
	return nil
}

// Steps is the number of timestamps in the horizon, end included when it
// falls on the step grid.
func (h Horizon) Steps() int {
	return int(h.End.Sub(h.Start)/h.Step) + 1
}

func (h Horizon) At(i int) time.Time {
	return h.Start.Add(time.Duration(i) * h.Step)
}

func (p Params) Validate() error {
	if err := p.Horizon.Validate(); err != nil {
		return err
	}
	if !p.Layout.Valid() {
		return fmt.Errorf("%w: layout %+v", ErrInvalidParams, p.Layout)
	}
	if p.BasePowerMinW < 0 || p.BasePowerMinW > p.BasePowerMaxW {
		return fmt.Errorf("%w: base power range %v-%v", ErrInvalidParams, p.BasePowerMinW, p.BasePowerMaxW)
	}
	if p.VoltageMinV <= 0 || p.VoltageMinV > p.VoltageMaxV {
		return fmt.Errorf("%w: voltage range %v-%v", ErrInvalidParams, p.VoltageMinV, p.VoltageMaxV)
	}
	for room, w := range p.BasePowerOverride {
		if _, _, err := p.Layout.ParseRoom(room); err != nil {
			return err
		}
		if w < 0 {
			return fmt.Errorf("%w: base power override for %s is negative", ErrInvalidParams, room)
		}
	}
	if _, err := p.roomList(); err != nil {
		return err
	}
	return p.Policy.Validate()
}

func (p Params) roomList() ([]string, error) {
	if len(p.Rooms) == 0 {
		return p.Layout.Rooms(), nil
	}
	seen := make(map[string]bool, len(p.Rooms))
	for _, r := range p.Rooms {
		if _, _, err := p.Layout.ParseRoom(r); err != nil {
			return nil, err
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: room %s listed twice", ErrInvalidParams, r)
		}
		seen[r] = true
	}
	rooms := append([]string(nil), p.Rooms...)
	sort.Slice(rooms, func(i, j int) bool {
		oi, _ := p.Layout.Ordinal(rooms[i])
		oj, _ := p.Layout.Ordinal(rooms[j])
		return oi < oj
	})
	return rooms, nil
}

// Key identifies the generated table. Equal keys produce identical tables.
func (p Params) Key() string {
	var b strings.Builder
	rooms, _ := p.roomList()
	fmt.Fprintf(&b, "layout=%s/%d/%d;", p.Layout.Code, p.Layout.Floors, p.Layout.RoomsPerFloor)
	fmt.Fprintf(&b, "rooms=%s;", strings.Join(rooms, ","))
	fmt.Fprintf(&b, "horizon=%s/%s/%s;",
		p.Horizon.Start.Format(time.RFC3339Nano), p.Horizon.End.Format(time.RFC3339Nano), p.Horizon.Step)
	fmt.Fprintf(&b, "loc=%s;seed=%d;", p.Horizon.Start.Location(), p.Seed)
	fmt.Fprintf(&b, "base=%v-%v;volt=%v-%v;", p.BasePowerMinW, p.BasePowerMaxW, p.VoltageMinV, p.VoltageMaxV)
	fmt.Fprintf(&b, "policy=%+v;", p.Policy)
	overrides := make([]string, 0, len(p.BasePowerOverride))
	for room, w := range p.BasePowerOverride {
		overrides = append(overrides, fmt.Sprintf("%s=%v", room, w))
	}
	sort.Strings(overrides)
	fmt.Fprintf(&b, "override=%s", strings.Join(overrides, ","))
	return b.String()
}

// roomSource is seeded from the base seed and the room's position in the
// layout, so a room's series does not depend on which other rooms are
// generated or in which order.
func roomSource(seed uint64, ordinal int) rand.Source {
	return rand.NewPCG(seed, uint64(ordinal))
}

// basePower consumes the first draw of the room source.
func (p Params) basePower(room string, d draws) float64 {
	w := d.uniform(LoadRange{Min: p.BasePowerMinW, Max: p.BasePowerMaxW})
	if override, ok := p.BasePowerOverride[room]; ok {
		return override
	}
	return w
}

// BasePowers returns the rated power each generated room was given.
func BasePowers(p Params) (map[string]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rooms, _ := p.roomList()
	out := make(map[string]float64, len(rooms))
	for _, room := range rooms {
		ord, _ := p.Layout.Ordinal(room)
		out[room] = p.basePower(room, draws{src: roomSource(p.Seed, ord)})
	}
	return out, nil
}

// Generate produces one sample per room per step of the horizon, ordered by
// room (layout order) then timestamp. Rooms are generated in parallel; each
// room owns its random source so the output is the same for the same params.
func Generate(ctx context.Context, p Params) ([]types.TelemetrySample, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rooms, _ := p.roomList()
	steps := p.Horizon.Steps()
	out := make([]types.TelemetrySample, len(rooms)*steps)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, room := range rooms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return p.generateRoom(room, out[i*steps:(i+1)*steps])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p Params) generateRoom(room string, dst []types.TelemetrySample) error {
	floor, _, err := p.Layout.ParseRoom(room)
	if err != nil {
		return err
	}
	ord, _ := p.Layout.Ordinal(room)
	d := draws{src: roomSource(p.Seed, ord)}
	base := p.basePower(room, d)
	voltage := LoadRange{Min: p.VoltageMinV, Max: p.VoltageMaxV}

	for i := range dst {
		ts := p.Horizon.At(i)
		power := base * p.Policy.loadFactor(ts, d)
		v := d.uniform(voltage)
		dst[i] = types.TelemetrySample{
			Timestamp: ts,
			Room:      room,
			Floor:     floor,
			VoltageV:  v,
			CurrentA:  esmutils.CurrentA(power, v),
			PowerW:    power,
			EnergyKWh: esmutils.IntervalKWh(power, p.Horizon.Step),
			Status:    types.StatusFor(power),
		}
	}
	return nil
}
