// Package sim drives the external solver through a scenario: model
// uncertainty is applied to the solver's inputs, system events run inside
// the step loop, and the raw per-step output is collected into a scada
// pipeline object.
package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/engine"
	"github.com/waterfutures/scadasim/pkg/events"
	"github.com/waterfutures/scadasim/pkg/scada"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
	"github.com/waterfutures/scadasim/pkg/uncertainty"
)

// Options configures a Simulator.
type Options struct {
	// Seed seeds the single random stream owned by the pipeline. A fixed
	// seed reproduces an identical perturbed scenario.
	Seed uint64

	// Logger receives structured progress logging. Nil disables logging.
	Logger *zap.Logger
}

// Simulator owns the scenario configuration of one simulation: the engine,
// the sensor configuration, the registered events in registration order,
// and the uncertainty set.
type Simulator struct {
	eng engine.Engine
	cfg *sensor.Config

	systemEvents  []events.SystemEvent
	readingEvents []events.SensorReadingEvent

	model *uncertainty.Model
	noise *uncertainty.SensorNoise

	seed   uint64
	logger *zap.Logger
}

// New creates a Simulator for the given engine and sensor configuration.
func New(eng engine.Engine, cfg *sensor.Config, opts Options) *Simulator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		eng:    eng,
		cfg:    cfg,
		seed:   opts.Seed,
		logger: logger,
	}
}

// AddSystemEvent registers a system event. Events are applied each step in
// registration order.
func (s *Simulator) AddSystemEvent(ev events.SystemEvent) {
	s.systemEvents = append(s.systemEvents, ev)
}

// AddReadingEvent registers a sensor-reading event. Events are chained in
// registration order, each receiving the previous event's output.
func (s *Simulator) AddReadingEvent(ev events.SensorReadingEvent) {
	s.readingEvents = append(s.readingEvents, ev)
}

// SetModelUncertainty sets the model-level uncertainty applied to the
// solver's inputs before the run.
func (s *Simulator) SetModelUncertainty(m *uncertainty.Model) { s.model = m }

// SetSensorNoise sets the sensor-level noise carried into the resulting
// scada pipeline.
func (s *Simulator) SetSensorNoise(n *uncertainty.SensorNoise) { s.noise = n }

// Run executes the scenario to completion and wraps the raw solver output.
// Engine failures are surfaced verbatim and never retried.
func (s *Simulator) Run(ctx context.Context) (*scada.Data, error) {
	rng := rand.New(rand.NewSource(s.seed))

	if s.model != nil {
		if err := s.model.Perturb(s.eng, rng); err != nil {
			return nil, fmt.Errorf("model uncertainty: %w", err)
		}
		s.logger.Debug("model uncertainty applied")
	}

	for _, ev := range s.systemEvents {
		if err := ev.Init(s.eng); err != nil {
			return nil, fmt.Errorf("initializing system event: %w", err)
		}
	}

	var (
		times    []uint64
		columns  = make(map[types.Quantity][]string)
		buffered = make(map[types.Quantity][]float64)
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := s.eng.CurrentTime()
		if err := s.applySystemEvents(t); err != nil {
			return nil, err
		}

		res, ok, err := s.eng.Step(ctx)
		if err != nil {
			return nil, &types.EngineFailureError{Step: t, Err: err}
		}
		if !ok {
			break
		}

		times = append(times, res.Time)
		for q, row := range res.Rows {
			if _, seen := columns[q]; !seen {
				columns[q] = s.eng.Elements(q)
			}
			if len(row) != len(columns[q]) {
				return nil, &types.ShapeMismatchError{Want: len(columns[q]), Got: len(row), What: fmt.Sprintf("%s row", q)}
			}
			buffered[q] = append(buffered[q], row...)
		}
		s.logger.Debug("step solved", zap.Uint64("time", res.Time))
	}

	// Teardown: every event leaves the run in the Exited state, including
	// events whose window was never entered.
	for _, ev := range s.systemEvents {
		if ev.State() != events.Exited {
			if err := ev.Exit(s.eng); err != nil {
				return nil, fmt.Errorf("exiting system event: %w", err)
			}
		}
	}

	raw := make(map[types.Quantity]*mat.Dense, len(buffered))
	for q, data := range buffered {
		raw[q] = mat.NewDense(len(times), len(columns[q]), data)
	}

	d, err := scada.New(s.cfg, raw, columns, times, s.seed)
	if err != nil {
		return nil, err
	}
	if err := d.ChangeReadingEvents(s.readingEvents); err != nil {
		return nil, err
	}
	if err := d.ChangeSensorNoise(s.noise); err != nil {
		return nil, err
	}

	s.logger.Info("run complete",
		zap.Int("steps", len(times)),
		zap.Int("sensors", s.cfg.TotalReadings()))
	return d, nil
}

// applySystemEvents runs the active-window transitions for simulation time
// t: Apply inside the window, Exit on the first step after the window.
func (s *Simulator) applySystemEvents(t uint64) error {
	for _, ev := range s.systemEvents {
		switch {
		case ev.InWindow(t):
			if err := ev.Apply(s.eng, t); err != nil {
				return fmt.Errorf("applying system event: %w", err)
			}
		case ev.State() == events.Active && t >= ev.End():
			if err := ev.Exit(s.eng); err != nil {
				return fmt.Errorf("exiting system event: %w", err)
			}
		}
	}
	return nil
}

// Reset rewinds the engine and all registered events so the same scenario
// can be re-run deterministically.
func (s *Simulator) Reset() error {
	if err := s.eng.Reset(); err != nil {
		return fmt.Errorf("resetting engine: %w", err)
	}
	for _, ev := range s.systemEvents {
		ev.Reset()
	}
	for _, ev := range s.readingEvents {
		ev.Reset()
	}
	return nil
}
