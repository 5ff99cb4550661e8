// Package engine declares the contract of the external hydraulic and
// water-quality solver. The solver itself is an opaque collaborator; this
// layer only consumes its per-step raw arrays and its mutation entry
// points.
package engine

import (
	"context"

	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
)

// StepResult is the raw output of one simulation step: for each quantity
// the solver produces, one value per element in the order reported by
// Elements.
type StepResult struct {
	Time uint64
	Rows map[types.Quantity][]float64
}

// Engine is the external solver. Implementations are single-threaded and
// advanced cooperatively by the pipeline orchestrator; a failed step is
// fatal and surfaced verbatim, never retried.
type Engine interface {
	// Inventory lists the network elements, used to validate sensor
	// selections and event targets.
	Inventory() sensor.Inventory

	// Elements returns the element ids backing a quantity's raw array, in
	// stable internal index order.
	Elements(q types.Quantity) []string

	// CurrentTime returns the simulation time, in seconds, of the step the
	// next call to Step will solve. System events are applied against this
	// time before the solver advances.
	CurrentTime() uint64

	// Step solves the next simulation step. ok is false when the run is
	// complete and the result must be discarded.
	Step(ctx context.Context) (res *StepResult, ok bool, err error)

	// Reset rewinds the solver to the start of the simulation so the same
	// scenario can be replayed.
	Reset() error

	// Actuator and quality-source mutators, consumed by system events.
	// Changes take effect from the next solved step.
	SetLinkStatus(linkID string, open bool) error
	SetPumpState(pumpID string, on bool) error
	SetPumpSpeed(pumpID string, speed float64) error
	SetValveSetting(valveID string, setting float64) error
	SetLeakArea(linkID string, area float64) error
	SetQualitySource(nodeID string, strength float64) error
	SetDemand(nodeID string, demand float64) error

	// Model parameter access, consumed by model-level uncertainty before a
	// run starts.
	Parameter(kind types.ParamKind) (map[string]float64, error)
	SetParameter(kind types.ParamKind, elementID string, value float64) error
}
