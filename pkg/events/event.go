// Package events implements scenario events: system events that mutate
// solver state during a run, and sensor-reading events that post-process
// the computed reading matrix.
package events

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/engine"
	"github.com/waterfutures/scadasim/pkg/types"
)

// State is the lifecycle state of an event.
type State int

const (
	Created State = iota
	Initialized
	Active
	Exited
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Initialized:
		return "initialized"
	case Active:
		return "active"
	case Exited:
		return "exited"
	}
	return "unknown"
}

// Event is the shared lifecycle of all scenario events. The orchestrator
// exclusively owns the event list and drives the transitions in
// registration order: Init once before any step, Apply only while the
// current time is inside [Start, End), Exit exactly once afterwards (or at
// teardown if the window was never left). Reset returns the event to
// Initialized so the same scenario can be replayed.
type Event interface {
	Start() uint64
	End() uint64
	State() State

	// InWindow reports whether t falls inside [Start, End), or exactly on
	// Start for one-shot events.
	InWindow(t uint64) bool

	Reset()
}

// SystemEvent mutates solver-visible state during the step loop. The
// side effect becomes visible in subsequent solver steps.
type SystemEvent interface {
	Event
	Init(eng engine.Engine) error
	Apply(eng engine.Engine, currentTime uint64) error
	Exit(eng engine.Engine) error
}

// SensorReadingEvent transforms the already-computed reading matrix. Apply
// receives the whole matrix plus the per-row reading times and the column
// index of its target sensor; it must only touch rows inside its window and
// that one column, leaving everything else untouched. The orchestrator
// passes a scratch copy, so writing in place is allowed; the returned
// matrix feeds the next event in registration order.
type SensorReadingEvent interface {
	Event
	Init() error
	Exit() error
	Target() types.SensorTarget
	Apply(readings *mat.Dense, times []uint64, col int, rng *rand.Rand) (*mat.Dense, error)
}

// window carries the shared time window and state machine. One-shot events
// are modeled with Start == End and fire at exactly that time.
type window struct {
	start uint64
	end   uint64
	state State
}

func (w *window) Start() uint64 { return w.start }
func (w *window) End() uint64   { return w.end }
func (w *window) State() State  { return w.state }

// Reset transitions back to Initialized from Active or Exited.
func (w *window) Reset() {
	if w.state == Active || w.state == Exited {
		w.state = Initialized
	}
}

// InWindow reports whether t falls inside the active window.
func (w *window) InWindow(t uint64) bool {
	if w.start == w.end {
		return t == w.start
	}
	return t >= w.start && t < w.end
}

func (w *window) markInitialized() { w.state = Initialized }
func (w *window) markActive()      { w.state = Active }
func (w *window) markExited()      { w.state = Exited }
