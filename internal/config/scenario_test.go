package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterfutures/scadasim/pkg/events"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
	"github.com/waterfutures/scadasim/pkg/uncertainty"
)

const scenarioYAML = `
seed: 42
duration: 86400
hydraulic_step: 300
units:
  flow: l/s
sensors:
  pressure: [n1, n2]
  flow: [l1]
leakages:
  - profile: abrupt
    link: l1
    diameter: 0.02
    start: 7200
    end: 14400
  - profile: incipient
    link: l2
    diameter: 0.05
    start: 3600
    end: 28800
    peak: 10800
actuators:
  - kind: pump_state
    element: p1
    time: 3600
    on: false
  - kind: valve_state
    element: v1
    time: 7200
    open: true
faults:
  - kind: drift
    quantity: pressure
    element: n1
    start: 0
    end: 14400
    strength: 0.001
attacks:
  - kind: replay
    quantity: flow
    element: l1
    start: 14400
    end: 28800
    replay_start: 0
    replay_end: 14400
noise:
  gaussian_std: 0.05
  relative: true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func testInventory() sensor.Inventory {
	return sensor.Inventory{
		Nodes:  []string{"n1", "n2"},
		Links:  []string{"l1", "l2"},
		Valves: []string{"v1"},
		Pumps:  []string{"p1"},
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), sc.Seed)
	assert.Equal(t, uint64(86400), sc.Duration)
	assert.Equal(t, uint64(300), sc.HydraulicStep)
	assert.Len(t, sc.Leakages, 2)
	assert.Len(t, sc.Actuators, 2)
	assert.Len(t, sc.Faults, 1)
	assert.Len(t, sc.Attacks, 1)
	require.NotNil(t, sc.Noise)
	assert.True(t, sc.Noise.Relative)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "sensors: ["))
	assert.Error(t, err)
}

func TestScenarioSensorConfig(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	cfg, err := sc.SensorConfig(testInventory())
	require.NoError(t, err)

	assert.Equal(t, []string{"n1", "n2"}, cfg.Sensors(types.Pressure))
	assert.Equal(t, []string{"l1"}, cfg.Sensors(types.Flow))
	assert.Equal(t, types.LitersPerSecond, cfg.Units().Flow)
}

func TestScenarioSensorConfigErrors(t *testing.T) {
	sc := &Scenario{Sensors: map[string][]string{"voltage": {"n1"}}}
	_, err := sc.SensorConfig(testInventory())
	assert.ErrorContains(t, err, "voltage")

	sc = &Scenario{Sensors: map[string][]string{"pressure": {"bogus"}}}
	_, err = sc.SensorConfig(testInventory())
	var invalid *types.InvalidElementError
	assert.ErrorAs(t, err, &invalid)

	sc = &Scenario{Units: ScenarioUnits{Flow: "furlongs"}}
	_, err = sc.SensorConfig(testInventory())
	assert.ErrorContains(t, err, "furlongs")
}

func TestScenarioSystemEvents(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	evs, err := sc.SystemEvents()
	require.NoError(t, err)
	require.Len(t, evs, 4)

	assert.IsType(t, &events.AbruptLeakage{}, evs[0])
	assert.IsType(t, &events.IncipientLeakage{}, evs[1])
	assert.IsType(t, &events.PumpStateEvent{}, evs[2])
	assert.IsType(t, &events.ValveStateEvent{}, evs[3])

	assert.Equal(t, uint64(7200), evs[0].Start())
	assert.Equal(t, uint64(3600), evs[2].Start())
}

func TestScenarioSystemEventErrors(t *testing.T) {
	sc := &Scenario{Leakages: []LeakageDef{{Profile: "gradual", Link: "l1", Start: 0, End: 100}}}
	_, err := sc.SystemEvents()
	assert.ErrorContains(t, err, "gradual")

	sc = &Scenario{Leakages: []LeakageDef{{Link: "l1", Start: 100, End: 100}}}
	_, err = sc.SystemEvents()
	var rangeErr *types.InvalidTimeRangeError
	assert.ErrorAs(t, err, &rangeErr)

	sc = &Scenario{Actuators: []ActuatorDef{{Kind: "thruster", Element: "p1"}}}
	_, err = sc.SystemEvents()
	assert.ErrorContains(t, err, "thruster")
}

func TestScenarioReadingEvents(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	evs, err := sc.ReadingEvents()
	require.NoError(t, err)
	require.Len(t, evs, 2)

	drift, ok := evs[0].(*events.FaultDrift)
	require.True(t, ok)
	assert.Equal(t, types.SensorTarget{Quantity: types.Pressure, ElementID: "n1"}, drift.Target())
	assert.Equal(t, 0.001, drift.Slope)

	replay, ok := evs[1].(*events.ReplayAttack)
	require.True(t, ok)
	assert.Equal(t, uint64(14400), replay.ReplayEnd)
}

func TestScenarioReadingEventErrors(t *testing.T) {
	sc := &Scenario{Faults: []FaultDef{{Kind: "spike", Quantity: "pressure", Element: "n1"}}}
	_, err := sc.ReadingEvents()
	assert.ErrorContains(t, err, "spike")

	sc = &Scenario{Faults: []FaultDef{{Kind: "constant", Quantity: "pressure"}}}
	_, err = sc.ReadingEvents()
	assert.ErrorContains(t, err, "element id")

	sc = &Scenario{Attacks: []AttackDef{{Kind: "override", Quantity: "heat", Element: "n1"}}}
	_, err = sc.ReadingEvents()
	assert.ErrorContains(t, err, "heat")
}

func TestScenarioSensorNoise(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	noise, err := sc.SensorNoise()
	require.NoError(t, err)
	require.NotNil(t, noise)

	// No noise section means no noise, not an error.
	empty := &Scenario{}
	noise, err = empty.SensorNoise()
	require.NoError(t, err)
	assert.Nil(t, noise)

	// Declaring two distributions at once is rejected.
	double := &Scenario{Noise: &NoiseDef{GaussianStd: 0.1, Percentage: 0.05}}
	_, err = double.SensorNoise()
	assert.Error(t, err)

	// As is declaring none.
	hollow := &Scenario{Noise: &NoiseDef{}}
	_, err = hollow.SensorNoise()
	assert.Error(t, err)

	uniform := &Scenario{Noise: &NoiseDef{UniformLow: -0.1, UniformHigh: 0.1}}
	noise, err = uniform.SensorNoise()
	require.NoError(t, err)
	assert.Equal(t, uncertainty.NewGlobalNoise(&uncertainty.Uniform{Low: -0.1, High: 0.1}), noise)
}
