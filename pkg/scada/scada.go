// Package scada holds the canonical runtime object of a finished
// simulation run: the raw per-quantity arrays plus the active sensor
// configuration, sensor-reading events, and sensor noise. The observed
// reading matrix is re-derived on demand, never cached, so the pipeline
// configuration can change without re-running the solver.
package scada

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/events"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
	"github.com/waterfutures/scadasim/pkg/uncertainty"
	"github.com/waterfutures/scadasim/pkg/units"
)

// Data owns the immutable raw solver output of one run and the mutable
// pipeline configuration applied on top of it.
type Data struct {
	raw      map[types.Quantity]*mat.Dense
	elements map[types.Quantity][]string
	times    []uint64

	cfg    *sensor.Config
	events []events.SensorReadingEvent
	noise  *uncertainty.SensorNoise

	seed   uint64
	frozen bool
}

// New wraps the raw output of a completed run. raw maps each produced
// quantity to a [len(times) x len(elements[q])] matrix whose columns follow
// elements[q]. Every quantity with selected sensors must be present.
func New(cfg *sensor.Config, raw map[types.Quantity]*mat.Dense, elements map[types.Quantity][]string, times []uint64, seed uint64) (*Data, error) {
	d := &Data{
		raw:      make(map[types.Quantity]*mat.Dense, len(raw)),
		elements: make(map[types.Quantity][]string, len(elements)),
		times:    append([]uint64(nil), times...),
		cfg:      cfg,
		seed:     seed,
	}
	for q, m := range raw {
		rows, _ := m.Dims()
		if rows != len(times) {
			return nil, &types.ShapeMismatchError{Want: len(times), Got: rows, What: fmt.Sprintf("%s rows", q)}
		}
		d.raw[q] = mat.DenseCopyOf(m)
		d.elements[q] = append([]string(nil), elements[q]...)
	}
	for _, q := range types.QuantityOrder {
		if len(cfg.Sensors(q)) > 0 {
			if _, ok := d.raw[q]; !ok {
				return nil, fmt.Errorf("no raw data for selected quantity %s", q)
			}
		}
	}
	return d, nil
}

// NewFromArrays builds Data from externally supplied arrays. Quantities
// selected in the sensor configuration but missing from raw are zero-filled
// and the configuration is frozen.
func NewFromArrays(cfg *sensor.Config, raw map[types.Quantity]*mat.Dense, elements map[types.Quantity][]string, times []uint64, seed uint64) (*Data, error) {
	filled := make(map[types.Quantity]*mat.Dense, len(raw))
	filledElems := make(map[types.Quantity][]string, len(raw))
	for q, m := range raw {
		filled[q] = m
		filledElems[q] = elements[q]
	}
	for _, q := range types.QuantityOrder {
		ids := cfg.Sensors(q)
		if len(ids) == 0 {
			continue
		}
		if _, ok := filled[q]; !ok {
			filled[q] = mat.NewDense(len(times), len(ids), nil)
			filledElems[q] = ids
		}
	}
	d, err := New(cfg, filled, filledElems, times, seed)
	if err != nil {
		return nil, err
	}
	d.frozen = true
	return d, nil
}

// Times returns the reading times of every matrix row, in seconds.
func (d *Data) Times() []uint64 {
	return append([]uint64(nil), d.times...)
}

// SensorConfig returns the active sensor configuration.
func (d *Data) SensorConfig() *sensor.Config { return d.cfg }

// ReadingEvents returns the registered sensor-reading events in
// application order.
func (d *Data) ReadingEvents() []events.SensorReadingEvent {
	return append([]events.SensorReadingEvent(nil), d.events...)
}

// Frozen reports whether the pipeline configuration is frozen.
func (d *Data) Frozen() bool { return d.frozen }

// Seed returns the random seed governing noise reproduction.
func (d *Data) Seed() uint64 { return d.seed }

// ChangeSensorConfig swaps the sensor configuration.
func (d *Data) ChangeSensorConfig(cfg *sensor.Config) error {
	if d.frozen {
		return &types.FrozenConfigError{Op: "change sensor config"}
	}
	for _, q := range types.QuantityOrder {
		if len(cfg.Sensors(q)) > 0 {
			if _, ok := d.raw[q]; !ok {
				return fmt.Errorf("no raw data for selected quantity %s", q)
			}
		}
	}
	d.cfg = cfg
	return nil
}

// ChangeReadingEvents replaces the sensor-reading event list wholesale.
func (d *Data) ChangeReadingEvents(evs []events.SensorReadingEvent) error {
	if d.frozen {
		return &types.FrozenConfigError{Op: "change reading events"}
	}
	d.events = append([]events.SensorReadingEvent(nil), evs...)
	return nil
}

// ChangeSensorNoise replaces the sensor noise applied after all events.
func (d *Data) ChangeSensorNoise(noise *uncertainty.SensorNoise) error {
	if d.frozen {
		return &types.FrozenConfigError{Op: "change sensor noise"}
	}
	d.noise = noise
	return nil
}

// GetData computes the observed reading matrix: raw columns selected per
// the sensor configuration, sensor-reading events applied in registration
// order, sensor noise applied last. The stored raw arrays are never
// mutated; repeated calls with no intervening mutation return identical
// matrices because the noise rng is re-seeded from the stored seed.
func (d *Data) GetData() (*mat.Dense, error) {
	return d.GetDataFor(nil)
}

// GetDataFor is GetData restricted to a subset of sensors; the result's
// columns follow the subset order. A nil subset returns all sensors.
func (d *Data) GetDataFor(subset []types.SensorTarget) (*mat.Dense, error) {
	targets := d.cfg.Targets()
	if len(targets) == 0 {
		return nil, fmt.Errorf("no sensors selected")
	}
	readings := mat.NewDense(len(d.times), len(targets), nil)
	for c, target := range targets {
		rawCol, err := d.rawColumn(target)
		if err != nil {
			return nil, err
		}
		for r := range d.times {
			readings.Set(r, c, d.raw[target.Quantity].At(r, rawCol))
		}
	}

	rng := rand.New(rand.NewSource(d.seed))

	for _, ev := range d.events {
		if ev.State() == events.Created {
			if err := ev.Init(); err != nil {
				return nil, fmt.Errorf("initializing reading event: %w", err)
			}
		}
		col, err := d.cfg.IndexOfReading(ev.Target())
		if err != nil {
			return nil, err
		}
		readings, err = ev.Apply(readings, d.times, col, rng)
		if err != nil {
			return nil, fmt.Errorf("applying reading event: %w", err)
		}
	}

	d.noise.ApplyMatrix(rng, readings, targets)

	if len(subset) == 0 {
		return readings, nil
	}

	out := mat.NewDense(len(d.times), len(subset), nil)
	for c, target := range subset {
		col, err := d.cfg.IndexOfReading(target)
		if err != nil {
			return nil, err
		}
		for r := range d.times {
			out.Set(r, c, readings.At(r, col))
		}
	}
	return out, nil
}

// ConvertUnits returns a copy with all flow- and quality-dimension raw
// arrays rescaled to the target units and the sensor configuration's unit
// metadata updated. The receiver is unchanged.
func (d *Data) ConvertUnits(target types.UnitSet) (*Data, error) {
	current := d.cfg.Units()

	flowFactor, err := units.Factor(current.Flow, target.Flow)
	if err != nil {
		return nil, err
	}
	qualityFactor, err := units.Factor(current.Quality, target.Quality)
	if err != nil {
		return nil, err
	}

	factorFor := func(q types.Quantity) float64 {
		switch q {
		case types.Flow, types.Demand:
			return flowFactor
		case types.NodeQuality, types.LinkQuality, types.BulkSpeciesNode,
			types.BulkSpeciesLink, types.SurfaceSpecies:
			return qualityFactor
		}
		return 1
	}

	out := &Data{
		raw:      make(map[types.Quantity]*mat.Dense, len(d.raw)),
		elements: make(map[types.Quantity][]string, len(d.elements)),
		times:    append([]uint64(nil), d.times...),
		cfg:      d.cfg.WithUnits(target),
		events:   append([]events.SensorReadingEvent(nil), d.events...),
		noise:    d.noise,
		seed:     d.seed,
		frozen:   d.frozen,
	}
	for q, m := range d.raw {
		scaled := mat.DenseCopyOf(m)
		scaled.Scale(factorFor(q), scaled)
		out.raw[q] = scaled
		out.elements[q] = append([]string(nil), d.elements[q]...)
	}
	return out, nil
}

// Concat appends another run's rows to this one. Both must share an equal
// sensor configuration and the same raw layout.
func (d *Data) Concat(other *Data) (*Data, error) {
	if !d.cfg.Equal(other.cfg) {
		return nil, fmt.Errorf("cannot concat: sensor configurations differ")
	}
	out := &Data{
		raw:      make(map[types.Quantity]*mat.Dense, len(d.raw)),
		elements: make(map[types.Quantity][]string, len(d.elements)),
		times:    append(d.Times(), other.times...),
		cfg:      d.cfg,
		events:   append([]events.SensorReadingEvent(nil), d.events...),
		noise:    d.noise,
		seed:     d.seed,
		frozen:   d.frozen,
	}
	for q, m := range d.raw {
		om, ok := other.raw[q]
		if !ok {
			return nil, fmt.Errorf("cannot concat: missing %s data", q)
		}
		_, cols := m.Dims()
		_, ocols := om.Dims()
		if cols != ocols {
			return nil, &types.ShapeMismatchError{Want: cols, Got: ocols, What: fmt.Sprintf("%s columns", q)}
		}
		var stacked mat.Dense
		stacked.Stack(m, om)
		out.raw[q] = &stacked
		out.elements[q] = append([]string(nil), d.elements[q]...)
	}
	return out, nil
}

// Equal reports structural equality of raw arrays, times, sensor
// configuration, seed, and registered events and noise.
func (d *Data) Equal(other *Data) bool {
	if other == nil {
		return false
	}
	if d.seed != other.seed || d.frozen != other.frozen {
		return false
	}
	if !d.cfg.Equal(other.cfg) {
		return false
	}
	if len(d.times) != len(other.times) {
		return false
	}
	for i := range d.times {
		if d.times[i] != other.times[i] {
			return false
		}
	}
	if len(d.raw) != len(other.raw) {
		return false
	}
	for q, m := range d.raw {
		om, ok := other.raw[q]
		if !ok || !mat.Equal(m, om) {
			return false
		}
		if !reflect.DeepEqual(d.elements[q], other.elements[q]) {
			return false
		}
	}
	return reflect.DeepEqual(d.events, other.events) && reflect.DeepEqual(d.noise, other.noise)
}

// rawColumn finds a sensor's column in the raw array of its quantity.
func (d *Data) rawColumn(target types.SensorTarget) (int, error) {
	for i, id := range d.elements[target.Quantity] {
		if id == target.ElementID {
			return i, nil
		}
	}
	return 0, &types.InvalidElementError{Quantity: target.Quantity, ElementID: target.ElementID}
}
