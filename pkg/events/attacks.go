package events

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/types"
)

// ReplayAttack overwrites the target sensor's readings during the attack
// window with historical values of the same sensor, sampled cyclically from
// the replay window and aligned to elapsed active time. When the replay
// window is shorter than the attack window the replayed slice wraps around
// from its start.
type ReplayAttack struct {
	readingEvent
	ReplayStart uint64
	ReplayEnd   uint64
}

// NewReplayAttack creates a replay attack. The replay window [replayStart,
// replayEnd) is only checked for ordering here; whether it actually covers
// any readings depends on the data and is checked at apply time.
func NewReplayAttack(target types.SensorTarget, replayStart, replayEnd, start, end uint64) (*ReplayAttack, error) {
	if end <= start {
		return nil, &types.InvalidTimeRangeError{Start: start, End: end, Reason: "end must be after start"}
	}
	if replayEnd <= replayStart {
		return nil, &types.InvalidTimeRangeError{Start: replayStart, End: replayEnd, Reason: "replay end must be after replay start"}
	}
	return &ReplayAttack{
		readingEvent: readingEvent{window: window{start: start, end: end}, target: target},
		ReplayStart:  replayStart,
		ReplayEnd:    replayEnd,
	}, nil
}

func (a *ReplayAttack) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	a.markActive()

	// Collect the historical slice first; the attack window may overlap it.
	var replay []float64
	for i, t := range times {
		if t >= a.ReplayStart && t < a.ReplayEnd {
			replay = append(replay, readings.At(i, col))
		}
	}
	if len(replay) == 0 {
		return nil, &types.ShapeMismatchError{Want: 1, Got: 0, What: "replay window readings"}
	}

	k := 0
	a.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, replay[k%len(replay)])
		k++
	})
	return readings, nil
}

// OverrideAttack overwrites the target sensor's readings during the attack
// window with a caller-supplied fixed sequence.
type OverrideAttack struct {
	readingEvent
	Values []float64
}

// NewOverrideAttack creates an override attack. The value count must match
// the number of readings inside the window, which depends on the reporting
// time step and is therefore checked at apply time.
func NewOverrideAttack(target types.SensorTarget, values []float64, start, end uint64) (*OverrideAttack, error) {
	base, err := newReadingEvent(target, start, end)
	if err != nil {
		return nil, err
	}
	return &OverrideAttack{
		readingEvent: base,
		Values:       append([]float64(nil), values...),
	}, nil
}

func (a *OverrideAttack) Apply(readings *mat.Dense, times []uint64, col int, _ *rand.Rand) (*mat.Dense, error) {
	a.markActive()

	count := 0
	a.windowRows(times, func(int, uint64) { count++ })
	if count != len(a.Values) {
		return nil, &types.ShapeMismatchError{Want: count, Got: len(a.Values), What: "override values"}
	}

	k := 0
	a.windowRows(times, func(row int, _ uint64) {
		readings.Set(row, col, a.Values[k])
		k++
	})
	return readings, nil
}
