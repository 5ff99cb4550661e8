package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/serialize"
	"github.com/waterfutures/scadasim/pkg/types"
)

func steps(n int, dt uint64) []uint64 {
	times := make([]uint64, n)
	for i := range times {
		times[i] = uint64(i) * dt
	}
	return times
}

func flowTarget(id string) types.SensorTarget {
	return types.SensorTarget{Quantity: types.Flow, ElementID: id}
}

func TestWindowMembership(t *testing.T) {
	ev, err := NewFaultConstant(flowTarget("l1"), 1, 10, 20)
	require.NoError(t, err)

	assert.False(t, ev.InWindow(9))
	assert.True(t, ev.InWindow(10))
	assert.True(t, ev.InWindow(19))
	assert.False(t, ev.InWindow(20))
}

func TestOneShotWindow(t *testing.T) {
	ev := NewPumpStateEvent("p1", false, 3600)
	assert.Equal(t, uint64(3600), ev.Start())
	assert.Equal(t, uint64(3600), ev.End())
	assert.False(t, ev.InWindow(3599))
	assert.True(t, ev.InWindow(3600))
	assert.False(t, ev.InWindow(3601))
}

func TestLifecycleStates(t *testing.T) {
	ev, err := NewFaultStuckZero(flowTarget("l1"), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, Created, ev.State())
	require.NoError(t, ev.Init())
	assert.Equal(t, Initialized, ev.State())

	readings := mat.NewDense(2, 1, []float64{1, 2})
	_, err = ev.Apply(readings, steps(2, 50), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, Active, ev.State())

	require.NoError(t, ev.Exit())
	assert.Equal(t, Exited, ev.State())

	ev.Reset()
	assert.Equal(t, Initialized, ev.State())

	// Reset does nothing before the event ever ran.
	fresh, err := NewFaultStuckZero(flowTarget("l1"), 0, 100)
	require.NoError(t, err)
	fresh.Reset()
	assert.Equal(t, Created, fresh.State())
}

func TestInvalidWindows(t *testing.T) {
	var rangeErr *types.InvalidTimeRangeError

	_, err := NewAbruptLeakage("l1", 0.02, 100, 100)
	require.ErrorAs(t, err, &rangeErr)

	_, err = NewIncipientLeakage("l1", 0.02, 100, 50, 75)
	assert.ErrorAs(t, err, &rangeErr)

	// Peak must lie inside (start, end].
	_, err = NewIncipientLeakage("l1", 0.02, 100, 200, 100)
	assert.ErrorAs(t, err, &rangeErr)
	_, err = NewIncipientLeakage("l1", 0.02, 100, 200, 201)
	assert.ErrorAs(t, err, &rangeErr)
	_, err = NewIncipientLeakage("l1", 0.02, 100, 200, 200)
	assert.NoError(t, err)

	_, err = NewReplayAttack(flowTarget("l1"), 50, 50, 100, 200)
	assert.ErrorAs(t, err, &rangeErr)
}

func TestIncipientLeakageRamp(t *testing.T) {
	lk, err := NewIncipientLeakage("l1", 0.1, 0, 20, 10)
	require.NoError(t, err)

	full := lk.AreaAt(10)
	assert.Greater(t, full, 0.0)

	assert.Equal(t, 0.0, lk.AreaAt(0))
	assert.InDelta(t, full/2, lk.AreaAt(5), 1e-12)
	assert.Equal(t, full, lk.AreaAt(15))
	assert.Equal(t, full, lk.AreaAt(20))
}

func TestLeakageLifecycleAgainstEngine(t *testing.T) {
	eng := newStubEngine()
	lk, err := NewAbruptLeakage("l1", 0.1, 100, 200)
	require.NoError(t, err)

	require.NoError(t, lk.Init(eng))
	require.NoError(t, lk.Apply(eng, 100))
	assert.Greater(t, eng.leakAreas["l1"], 0.0)

	require.NoError(t, lk.Exit(eng))
	assert.Equal(t, 0.0, eng.leakAreas["l1"])

	missing, err := NewAbruptLeakage("nope", 0.1, 100, 200)
	require.NoError(t, err)
	var invalid *types.InvalidElementError
	assert.ErrorAs(t, missing.Init(eng), &invalid)
}

func TestActuatorValidation(t *testing.T) {
	eng := newStubEngine()

	var invalid *types.InvalidElementError
	assert.ErrorAs(t, NewPumpStateEvent("nope", true, 0).Init(eng), &invalid)
	assert.ErrorAs(t, NewValveStateEvent("nope", true, 0).Init(eng), &invalid)
	assert.NoError(t, NewPumpSpeedEvent("p1", 0.5, 0).Init(eng))
}

func TestActuatorApply(t *testing.T) {
	eng := newStubEngine()

	ev := NewPumpStateEvent("p1", false, 3600)
	require.NoError(t, ev.Init(eng))
	require.NoError(t, ev.Apply(eng, 3600))
	assert.Equal(t, false, eng.pumpStates["p1"])

	sp := NewPumpSpeedEvent("p1", 0.75, 7200)
	require.NoError(t, sp.Init(eng))
	require.NoError(t, sp.Apply(eng, 7200))
	assert.Equal(t, 0.75, eng.pumpSpeeds["p1"])

	vv := NewValveStateEvent("v1", false, 7200)
	require.NoError(t, vv.Init(eng))
	require.NoError(t, vv.Apply(eng, 7200))
	open, set := eng.linkStatus["v1"]
	assert.True(t, set)
	assert.False(t, open)
}

func TestFaultConstantOnlyTouchesWindowAndColumn(t *testing.T) {
	ev, err := NewFaultConstant(flowTarget("l1"), 5, 100, 300)
	require.NoError(t, err)

	readings := mat.NewDense(5, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
		5, 50,
	})
	out, err := ev.Apply(readings, steps(5, 100), 1, nil)
	require.NoError(t, err)

	want := mat.NewDense(5, 2, []float64{
		1, 10,
		2, 25,
		3, 35,
		4, 40,
		5, 50,
	})
	assert.True(t, mat.Equal(want, out))
}

func TestFaultDriftGrowsWithElapsedTime(t *testing.T) {
	ev, err := NewFaultDrift(flowTarget("l1"), 0.01, 100, 400)
	require.NoError(t, err)

	readings := mat.NewDense(4, 1, []float64{10, 10, 10, 10})
	out, err := ev.Apply(readings, steps(4, 100), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, out.At(0, 0))
	assert.Equal(t, 10.0, out.At(1, 0))
	assert.InDelta(t, 11.0, out.At(2, 0), 1e-12)
	assert.InDelta(t, 12.0, out.At(3, 0), 1e-12)
}

func TestFaultPercentageAndStuckZero(t *testing.T) {
	pct, err := NewFaultPercentage(flowTarget("l1"), 1.1, 0, 200)
	require.NoError(t, err)

	readings := mat.NewDense(3, 1, []float64{10, 20, 30})
	out, err := pct.Apply(readings, steps(3, 100), 0, nil)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 22.0, out.At(1, 0), 1e-12)
	assert.Equal(t, 30.0, out.At(2, 0))

	stuck, err := NewFaultStuckZero(flowTarget("l1"), 100, 300)
	require.NoError(t, err)
	out, err = stuck.Apply(out, steps(3, 100), 0, nil)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, out.At(0, 0), 1e-12)
	assert.Equal(t, 0.0, out.At(1, 0))
	assert.Equal(t, 0.0, out.At(2, 0))
}

func TestFaultGaussianDeterministicPerSeed(t *testing.T) {
	run := func(seed uint64) *mat.Dense {
		ev, err := NewFaultGaussian(flowTarget("l1"), 0.5, 0, 1000)
		require.NoError(t, err)
		readings := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
		out, err := ev.Apply(readings, steps(5, 100), 0, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		return out
	}

	assert.True(t, mat.Equal(run(9), run(9)))
	assert.False(t, mat.Equal(run(9), run(10)))
}

func TestReplayAttackCyclicWraparound(t *testing.T) {
	// Replay rows 0-4 into the window covering rows 10-19; the 5-row
	// history wraps around twice.
	ev, err := NewReplayAttack(flowTarget("l1"), 0, 500, 1000, 2000)
	require.NoError(t, err)

	data := make([]float64, 20)
	for i := range data {
		data[i] = float64(i)
	}
	readings := mat.NewDense(20, 1, data)
	out, err := ev.Apply(readings, steps(20, 100), 0, nil)
	require.NoError(t, err)

	for row := 10; row < 20; row++ {
		assert.Equal(t, float64((row-10)%5), out.At(row, 0), "row %d", row)
	}
	// Rows outside the attack window are untouched.
	assert.Equal(t, 5.0, out.At(5, 0))
}

func TestReplayAttackEmptyReplayWindow(t *testing.T) {
	ev, err := NewReplayAttack(flowTarget("l1"), 5000, 6000, 0, 500)
	require.NoError(t, err)

	readings := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	_, err = ev.Apply(readings, steps(5, 100), 0, nil)
	var shape *types.ShapeMismatchError
	assert.ErrorAs(t, err, &shape)
}

func TestOverrideAttack(t *testing.T) {
	ev, err := NewOverrideAttack(flowTarget("l1"), []float64{42, 42, 42}, 100, 400)
	require.NoError(t, err)

	readings := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	out, err := ev.Apply(readings, steps(5, 100), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 42, 42, 42, 5}, []float64{
		out.At(0, 0), out.At(1, 0), out.At(2, 0), out.At(3, 0), out.At(4, 0),
	})
}

func TestOverrideAttackCountMismatch(t *testing.T) {
	ev, err := NewOverrideAttack(flowTarget("l1"), []float64{42, 42}, 100, 400)
	require.NoError(t, err)

	readings := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	_, err = ev.Apply(readings, steps(5, 100), 0, nil)
	var shape *types.ShapeMismatchError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 3, shape.Want)
	assert.Equal(t, 2, shape.Got)
}

func TestEventRoundTrips(t *testing.T) {
	mustAbrupt, err := NewAbruptLeakage("l1", 0.02, 100, 200)
	require.NoError(t, err)
	mustIncipient, err := NewIncipientLeakage("l2", 0.05, 100, 400, 250)
	require.NoError(t, err)
	mustConstant, err := NewFaultConstant(flowTarget("l1"), 2.5, 0, 100)
	require.NoError(t, err)
	mustDrift, err := NewFaultDrift(flowTarget("l1"), 0.01, 0, 100)
	require.NoError(t, err)
	mustGaussian, err := NewFaultGaussian(flowTarget("l1"), 0.5, 0, 100)
	require.NoError(t, err)
	mustPct, err := NewFaultPercentage(flowTarget("l1"), 0.9, 0, 100)
	require.NoError(t, err)
	mustStuck, err := NewFaultStuckZero(flowTarget("l1"), 0, 100)
	require.NoError(t, err)
	mustReplay, err := NewReplayAttack(flowTarget("l1"), 0, 500, 1000, 2000)
	require.NoError(t, err)
	mustOverride, err := NewOverrideAttack(flowTarget("l1"), []float64{1, 2, 3}, 0, 300)
	require.NoError(t, err)

	for _, ev := range []serialize.Serializable{
		mustAbrupt,
		mustIncipient,
		NewPumpStateEvent("p1", false, 3600),
		NewPumpSpeedEvent("p1", 0.5, 3600),
		NewValveStateEvent("v1", true, 3600),
		mustConstant,
		mustDrift,
		mustGaussian,
		mustPct,
		mustStuck,
		mustReplay,
		mustOverride,
	} {
		raw, err := serialize.Dump(ev)
		require.NoError(t, err, "%T", ev)
		got, err := serialize.Load(raw)
		require.NoError(t, err, "%T", ev)
		assert.Equal(t, ev, got, "%T", ev)
	}
}
