package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/waterfutures/scadasim/pkg/events"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
	"github.com/waterfutures/scadasim/pkg/uncertainty"
)

// Scenario describes a complete simulation setup loaded from a YAML file:
// which sensors to place, which events to schedule and what noise to add.
type Scenario struct {
	Seed uint64 `yaml:"seed"`

	// Duration and HydraulicStep are in seconds and configure the solver's
	// step loop. Zero values leave the solver's own defaults in place.
	Duration      uint64 `yaml:"duration"`
	HydraulicStep uint64 `yaml:"hydraulic_step"`

	Units   ScenarioUnits       `yaml:"units"`
	Sensors map[string][]string `yaml:"sensors"`

	Leakages  []LeakageDef  `yaml:"leakages"`
	Actuators []ActuatorDef `yaml:"actuators"`
	Faults    []FaultDef    `yaml:"faults"`
	Attacks   []AttackDef   `yaml:"attacks"`

	Noise *NoiseDef `yaml:"noise"`
}

// ScenarioUnits selects the measurement units of the generated readings.
// Empty fields fall back to the defaults.
type ScenarioUnits struct {
	Flow    string `yaml:"flow"`
	Quality string `yaml:"quality"`
	Mass    string `yaml:"mass"`
	Area    string `yaml:"area"`
}

// LeakageDef describes an abrupt or incipient leakage on a link.
type LeakageDef struct {
	Profile  string  `yaml:"profile"`
	Link     string  `yaml:"link"`
	Diameter float64 `yaml:"diameter"`
	Start    uint64  `yaml:"start"`
	End      uint64  `yaml:"end"`
	Peak     uint64  `yaml:"peak"`
}

// ActuatorDef describes a one-shot pump or valve command.
type ActuatorDef struct {
	Kind    string  `yaml:"kind"`
	Element string  `yaml:"element"`
	Time    uint64  `yaml:"time"`
	On      bool    `yaml:"on"`
	Open    bool    `yaml:"open"`
	Speed   float64 `yaml:"speed"`
}

// FaultDef describes a sensor fault or reading attack on one sensor.
type FaultDef struct {
	Kind     string  `yaml:"kind"`
	Quantity string  `yaml:"quantity"`
	Element  string  `yaml:"element"`
	Start    uint64  `yaml:"start"`
	End      uint64  `yaml:"end"`
	Strength float64 `yaml:"strength"`
}

// AttackDef describes a replay or override attack on one sensor.
type AttackDef struct {
	Kind        string    `yaml:"kind"`
	Quantity    string    `yaml:"quantity"`
	Element     string    `yaml:"element"`
	Start       uint64    `yaml:"start"`
	End         uint64    `yaml:"end"`
	ReplayStart uint64    `yaml:"replay_start"`
	ReplayEnd   uint64    `yaml:"replay_end"`
	Values      []float64 `yaml:"values"`
}

// NoiseDef describes global sensor noise. Only one distribution may be set.
type NoiseDef struct {
	GaussianStd float64 `yaml:"gaussian_std"`
	UniformLow  float64 `yaml:"uniform_low"`
	UniformHigh float64 `yaml:"uniform_high"`
	Percentage  float64 `yaml:"percentage"`
	Relative    bool    `yaml:"relative"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	return &sc, nil
}

// UnitSet resolves the scenario's unit symbols against the defaults.
func (s *Scenario) UnitSet() (types.UnitSet, error) {
	set := types.DefaultUnits()
	for _, f := range []struct {
		symbol string
		dst    *types.Unit
	}{
		{s.Units.Flow, &set.Flow},
		{s.Units.Quality, &set.Quality},
		{s.Units.Mass, &set.Mass},
		{s.Units.Area, &set.Area},
	} {
		if f.symbol == "" {
			continue
		}
		u, ok := types.UnitFromString(f.symbol)
		if !ok {
			return set, fmt.Errorf("unknown unit %q", f.symbol)
		}
		*f.dst = u
	}
	return set, nil
}

// SensorConfig materializes the scenario's sensor placement against a
// network inventory.
func (s *Scenario) SensorConfig(inv sensor.Inventory) (*sensor.Config, error) {
	units, err := s.UnitSet()
	if err != nil {
		return nil, err
	}

	cfg := sensor.New(inv, units)
	for name, ids := range s.Sensors {
		q, ok := types.QuantityFromString(name)
		if !ok {
			return nil, fmt.Errorf("unknown quantity %q", name)
		}
		if err := cfg.SetSensors(q, ids); err != nil {
			return nil, fmt.Errorf("sensors for %s: %w", q, err)
		}
	}
	return cfg, nil
}

// SystemEvents materializes the scenario's leakage and actuator events.
func (s *Scenario) SystemEvents() ([]events.SystemEvent, error) {
	var evs []events.SystemEvent

	for i, d := range s.Leakages {
		var (
			ev  events.SystemEvent
			err error
		)
		switch d.Profile {
		case "abrupt", "":
			ev, err = events.NewAbruptLeakage(d.Link, d.Diameter, d.Start, d.End)
		case "incipient":
			ev, err = events.NewIncipientLeakage(d.Link, d.Diameter, d.Start, d.End, d.Peak)
		default:
			return nil, fmt.Errorf("leakage %d: unknown profile %q", i, d.Profile)
		}
		if err != nil {
			return nil, fmt.Errorf("leakage %d: %w", i, err)
		}
		evs = append(evs, ev)
	}

	for i, d := range s.Actuators {
		switch d.Kind {
		case "pump_state":
			evs = append(evs, events.NewPumpStateEvent(d.Element, d.On, d.Time))
		case "pump_speed":
			evs = append(evs, events.NewPumpSpeedEvent(d.Element, d.Speed, d.Time))
		case "valve_state":
			evs = append(evs, events.NewValveStateEvent(d.Element, d.Open, d.Time))
		default:
			return nil, fmt.Errorf("actuator %d: unknown kind %q", i, d.Kind)
		}
	}

	return evs, nil
}

// ReadingEvents materializes the scenario's fault and attack events.
func (s *Scenario) ReadingEvents() ([]events.SensorReadingEvent, error) {
	var evs []events.SensorReadingEvent

	for i, d := range s.Faults {
		target, err := readingTarget(d.Quantity, d.Element)
		if err != nil {
			return nil, fmt.Errorf("fault %d: %w", i, err)
		}

		var ev events.SensorReadingEvent
		switch d.Kind {
		case "constant":
			ev, err = events.NewFaultConstant(target, d.Strength, d.Start, d.End)
		case "drift":
			ev, err = events.NewFaultDrift(target, d.Strength, d.Start, d.End)
		case "gaussian":
			ev, err = events.NewFaultGaussian(target, d.Strength, d.Start, d.End)
		case "percentage":
			ev, err = events.NewFaultPercentage(target, d.Strength, d.Start, d.End)
		case "stuck_zero":
			ev, err = events.NewFaultStuckZero(target, d.Start, d.End)
		default:
			return nil, fmt.Errorf("fault %d: unknown kind %q", i, d.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("fault %d: %w", i, err)
		}
		evs = append(evs, ev)
	}

	for i, d := range s.Attacks {
		target, err := readingTarget(d.Quantity, d.Element)
		if err != nil {
			return nil, fmt.Errorf("attack %d: %w", i, err)
		}

		var ev events.SensorReadingEvent
		switch d.Kind {
		case "replay":
			ev, err = events.NewReplayAttack(target, d.ReplayStart, d.ReplayEnd, d.Start, d.End)
		case "override":
			ev, err = events.NewOverrideAttack(target, d.Values, d.Start, d.End)
		default:
			return nil, fmt.Errorf("attack %d: unknown kind %q", i, d.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("attack %d: %w", i, err)
		}
		evs = append(evs, ev)
	}

	return evs, nil
}

// SensorNoise materializes the scenario's global noise, or nil when the
// scenario declares none.
func (s *Scenario) SensorNoise() (*uncertainty.SensorNoise, error) {
	if s.Noise == nil {
		return nil, nil
	}

	d := s.Noise
	set := 0
	var u uncertainty.Uncertainty
	if d.GaussianStd != 0 {
		set++
		u = &uncertainty.Gaussian{StdDev: d.GaussianStd, Relative: d.Relative}
	}
	if d.UniformLow != 0 || d.UniformHigh != 0 {
		set++
		u = &uncertainty.Uniform{Low: d.UniformLow, High: d.UniformHigh, Relative: d.Relative}
	}
	if d.Percentage != 0 {
		set++
		u = &uncertainty.PercentageDeviation{Deviation: d.Percentage}
	}

	switch set {
	case 0:
		return nil, fmt.Errorf("noise section declares no distribution")
	case 1:
		return uncertainty.NewGlobalNoise(u), nil
	default:
		return nil, fmt.Errorf("noise section declares more than one distribution")
	}
}

func readingTarget(quantity, element string) (types.SensorTarget, error) {
	q, ok := types.QuantityFromString(quantity)
	if !ok {
		return types.SensorTarget{}, fmt.Errorf("unknown quantity %q", quantity)
	}
	if element == "" {
		return types.SensorTarget{}, fmt.Errorf("element id is required")
	}
	return types.SensorTarget{Quantity: q, ElementID: element}, nil
}
