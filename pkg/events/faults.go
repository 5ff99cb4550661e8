package events

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/waterfutures/scadasim/pkg/types"
)

// readingEvent carries the common state of all sensor-reading events: the
// time window and the target sensor.
type readingEvent struct {
	window
	target types.SensorTarget
}

func newReadingEvent(target types.SensorTarget, start, end uint64) (readingEvent, error) {
	if end < start {
		return readingEvent{}, &types.InvalidTimeRangeError{Start: start, End: end, Reason: "end must not be before start"}
	}
	return readingEvent{window: window{start: start, end: end}, target: target}, nil
}

func (e *readingEvent) Init() error {
	e.markInitialized()
	return nil
}

func (e *readingEvent) Exit() error {
	e.markExited()
	return nil
}

func (e *readingEvent) Target() types.SensorTarget { return e.target }

// windowRows invokes fn for every row whose reading time falls inside the
// event window, in time order.
func (e *readingEvent) windowRows(times []uint64, fn func(row int, t uint64)) {
	for i, t := range times {
		if e.InWindow(t) {
			fn(i, t)
		}
	}
}

// FaultConstant shifts the target sensor's readings by a constant offset.
type FaultConstant struct {
	readingEvent
	Shift float64
}

// NewFaultConstant creates a constant-shift sensor fault.
func NewFaultConstant(target types.SensorTarget, shift float64, start, end uint64) (*FaultConstant, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &FaultConstant{readingEvent: base, Shift: shift}, nil
}

func (f *FaultConstant) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	f.markActive()
	f.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, readings.At(row, col)+f.Shift)
	})
	return readings, nil
}

// FaultDrift adds a linearly growing offset: slope times the elapsed
// seconds since the fault started.
type FaultDrift struct {
	readingEvent
	Slope float64
}

// NewFaultDrift creates a drifting sensor fault.
func NewFaultDrift(target types.SensorTarget, slope float64, start, end uint64) (*FaultDrift, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &FaultDrift{readingEvent: base, Slope: slope}, nil
}

func (f *FaultDrift) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	f.markActive()
	f.windowRows(times, func(row int, t uint64) {
		readings.Set(row, col, readings.At(row, col)+f.Slope*float64(t-f.start))
	})
	return readings, nil
}

// FaultGaussian adds zero-mean Gaussian noise to the target sensor.
type FaultGaussian struct {
	readingEvent
	StdDev float64
}

// NewFaultGaussian creates a noisy sensor fault.
func NewFaultGaussian(target types.SensorTarget, stdDev float64, start, end uint64) (*FaultGaussian, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &FaultGaussian{readingEvent: base, StdDev: stdDev}, nil
}

func (f *FaultGaussian) Apply(readings *mat.Dense, times []uint64, col int, rng *rand.Rand) (*mat.Dense, error) {
	f.markActive()
	dist := distuv.Normal{Mu: 0, Sigma: f.StdDev, Src: rng}
	f.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, readings.At(row, col)+dist.Rand())
	})
	return readings, nil
}

// FaultPercentage scales the target sensor's readings by a fixed factor.
type FaultPercentage struct {
	readingEvent
	Factor float64
}

// NewFaultPercentage creates a proportionally skewed sensor fault.
func NewFaultPercentage(target types.SensorTarget, factor float64, start, end uint64) (*FaultPercentage, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &FaultPercentage{readingEvent: base, Factor: factor}, nil
}

func (f *FaultPercentage) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	f.markActive()
	f.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, readings.At(row, col)*f.Factor)
	})
	return readings, nil
}

// FaultStuckZero forces the target sensor to read zero.
type FaultStuckZero struct {
	readingEvent
}

// NewFaultStuckZero creates a stuck-at-zero sensor fault.
func NewFaultStuckZero(target types.SensorTarget, start, end uint64) (*FaultStuckZero, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &FaultStuckZero{readingEvent: base}, nil
}

func (f *FaultStuckZero) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	f.markActive()
	f.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, 0)
	})
	return readings, nil
}
