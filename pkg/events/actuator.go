package events

import (
	"github.com/waterfutures/scadasim/pkg/engine"
	"github.com/waterfutures/scadasim/pkg/types"
)

// requirePump validates that a pump exists in the engine's network.
func requirePump(eng engine.Engine, pumpID string) error {
	for _, id := range eng.Inventory().Pumps {
		if id == pumpID {
			return nil
		}
	}
	return &types.InvalidElementError{Quantity: types.PumpState, ElementID: pumpID}
}

// requireValve validates that a valve exists in the engine's network.
func requireValve(eng engine.Engine, valveID string) error {
	for _, id := range eng.Inventory().Valves {
		if id == valveID {
			return nil
		}
	}
	return &types.InvalidElementError{Quantity: types.ValveState, ElementID: valveID}
}

// PumpStateEvent switches a pump on or off exactly once at Time.
type PumpStateEvent struct {
	window
	PumpID string
	On     bool
}

// NewPumpStateEvent creates a one-shot pump switch. One-shot events use an
// empty window with start == end == time.
func NewPumpStateEvent(pumpID string, on bool, time uint64) *PumpStateEvent {
	return &PumpStateEvent{
		window: window{start: time, end: time},
		PumpID: pumpID,
		On:     on,
	}
}

func (e *PumpStateEvent) Init(eng engine.Engine) error {
	if err := requirePump(eng, e.PumpID); err != nil {
		return err
	}
	e.markInitialized()
	return nil
}

func (e *PumpStateEvent) Apply(eng engine.Engine, _ uint64) error {
	e.markActive()
	return eng.SetPumpState(e.PumpID, e.On)
}

func (e *PumpStateEvent) Exit(engine.Engine) error {
	e.markExited()
	return nil
}

// PumpSpeedEvent sets a continuous pump speed exactly once at Time.
type PumpSpeedEvent struct {
	window
	PumpID string
	Speed  float64
}

// NewPumpSpeedEvent creates a one-shot pump speed change.
func NewPumpSpeedEvent(pumpID string, speed float64, time uint64) *PumpSpeedEvent {
	return &PumpSpeedEvent{
		window: window{start: time, end: time},
		PumpID: pumpID,
		Speed:  speed,
	}
}

func (e *PumpSpeedEvent) Init(eng engine.Engine) error {
	if err := requirePump(eng, e.PumpID); err != nil {
		return err
	}
	e.markInitialized()
	return nil
}

func (e *PumpSpeedEvent) Apply(eng engine.Engine, _ uint64) error {
	e.markActive()
	return eng.SetPumpSpeed(e.PumpID, e.Speed)
}

func (e *PumpSpeedEvent) Exit(engine.Engine) error {
	e.markExited()
	return nil
}

// ValveStateEvent opens or closes a valve exactly once at Time.
type ValveStateEvent struct {
	window
	ValveID string
	Open    bool
}

// NewValveStateEvent creates a one-shot valve switch.
func NewValveStateEvent(valveID string, open bool, time uint64) *ValveStateEvent {
	return &ValveStateEvent{
		window:  window{start: time, end: time},
		ValveID: valveID,
		Open:    open,
	}
}

func (e *ValveStateEvent) Init(eng engine.Engine) error {
	if err := requireValve(eng, e.ValveID); err != nil {
		return err
	}
	e.markInitialized()
	return nil
}

func (e *ValveStateEvent) Apply(eng engine.Engine, _ uint64) error {
	e.markActive()
	return eng.SetLinkStatus(e.ValveID, e.Open)
}

func (e *ValveStateEvent) Exit(engine.Engine) error {
	e.markExited()
	return nil
}
