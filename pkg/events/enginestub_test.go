package events

import (
	"context"

	"github.com/waterfutures/scadasim/pkg/engine"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
)

// stubEngine records mutations so tests can assert event side effects.
type stubEngine struct {
	leakAreas   map[string]float64
	pumpStates  map[string]bool
	pumpSpeeds  map[string]float64
	linkStatus  map[string]bool
	valveStates map[string]float64
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		leakAreas:   make(map[string]float64),
		pumpStates:  make(map[string]bool),
		pumpSpeeds:  make(map[string]float64),
		linkStatus:  make(map[string]bool),
		valveStates: make(map[string]float64),
	}
}

func (s *stubEngine) Inventory() sensor.Inventory {
	return sensor.Inventory{
		Nodes:  []string{"n1", "n2"},
		Links:  []string{"l1", "l2"},
		Valves: []string{"v1"},
		Pumps:  []string{"p1"},
		Tanks:  []string{"t1"},
	}
}

func (s *stubEngine) Elements(types.Quantity) []string { return nil }
func (s *stubEngine) CurrentTime() uint64              { return 0 }

func (s *stubEngine) Step(context.Context) (*engine.StepResult, bool, error) {
	return nil, false, nil
}

func (s *stubEngine) Reset() error { return nil }

func (s *stubEngine) SetLinkStatus(id string, open bool) error {
	s.linkStatus[id] = open
	return nil
}

func (s *stubEngine) SetPumpState(id string, on bool) error {
	s.pumpStates[id] = on
	return nil
}

func (s *stubEngine) SetPumpSpeed(id string, speed float64) error {
	s.pumpSpeeds[id] = speed
	return nil
}

func (s *stubEngine) SetValveSetting(id string, setting float64) error {
	s.valveStates[id] = setting
	return nil
}

func (s *stubEngine) SetLeakArea(id string, area float64) error {
	s.leakAreas[id] = area
	return nil
}

func (s *stubEngine) SetQualitySource(string, float64) error { return nil }
func (s *stubEngine) SetDemand(string, float64) error        { return nil }

func (s *stubEngine) Parameter(types.ParamKind) (map[string]float64, error) {
	return nil, nil
}

func (s *stubEngine) SetParameter(types.ParamKind, string, float64) error {
	return nil
}
