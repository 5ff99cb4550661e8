package events

import (
	"math"

	"github.com/waterfutures/scadasim/pkg/engine"
	"github.com/waterfutures/scadasim/pkg/types"
)

// AbruptLeakage opens a leak of constant area on a link for the whole
// active window.
type AbruptLeakage struct {
	window
	LinkID   string
	Diameter float64
}

// NewAbruptLeakage creates a leak that holds a constant area derived from
// the leak diameter over [start, end).
func NewAbruptLeakage(linkID string, diameter float64, start, end uint64) (*AbruptLeakage, error) {
	if end <= start {
		return nil, &types.InvalidTimeRangeError{Start: start, End: end, Reason: "end must be after start"}
	}
	return &AbruptLeakage{
		window:   window{start: start, end: end},
		LinkID:   linkID,
		Diameter: diameter,
	}, nil
}

func (l *AbruptLeakage) Init(eng engine.Engine) error {
	if err := requireLink(eng, l.LinkID); err != nil {
		return err
	}
	l.markInitialized()
	return nil
}

func (l *AbruptLeakage) Apply(eng engine.Engine, _ uint64) error {
	l.markActive()
	return eng.SetLeakArea(l.LinkID, leakArea(l.Diameter))
}

func (l *AbruptLeakage) Exit(eng engine.Engine) error {
	l.markExited()
	return eng.SetLeakArea(l.LinkID, 0)
}

// IncipientLeakage grows linearly from zero area at start to the target
// area at peak, then holds constant until end.
type IncipientLeakage struct {
	window
	LinkID   string
	Diameter float64
	Peak     uint64
}

// NewIncipientLeakage creates a ramping leak. peak must lie in
// (start, end].
func NewIncipientLeakage(linkID string, diameter float64, start, end, peak uint64) (*IncipientLeakage, error) {
	if end <= start {
		return nil, &types.InvalidTimeRangeError{Start: start, End: end, Peak: peak, Reason: "end must be after start"}
	}
	if peak <= start || peak > end {
		return nil, &types.InvalidTimeRangeError{Start: start, End: end, Peak: peak, Reason: "peak must be in (start, end]"}
	}
	return &IncipientLeakage{
		window:   window{start: start, end: end},
		LinkID:   linkID,
		Diameter: diameter,
		Peak:     peak,
	}, nil
}

func (l *IncipientLeakage) Init(eng engine.Engine) error {
	if err := requireLink(eng, l.LinkID); err != nil {
		return err
	}
	l.markInitialized()
	return nil
}

func (l *IncipientLeakage) Apply(eng engine.Engine, t uint64) error {
	l.markActive()
	return eng.SetLeakArea(l.LinkID, l.AreaAt(t))
}

func (l *IncipientLeakage) Exit(eng engine.Engine) error {
	l.markExited()
	return eng.SetLeakArea(l.LinkID, 0)
}

// AreaAt returns the leak area at time t: a linear ramp up to the peak
// time, the full area afterwards.
func (l *IncipientLeakage) AreaAt(t uint64) float64 {
	full := leakArea(l.Diameter)
	if t >= l.Peak {
		return full
	}
	if t <= l.start {
		return 0
	}
	return full * float64(t-l.start) / float64(l.Peak-l.start)
}

// leakArea converts a leak diameter into the circular leak area.
func leakArea(diameter float64) float64 {
	return math.Pi * diameter * diameter / 4
}

// requireLink validates that a link exists in the engine's network.
func requireLink(eng engine.Engine, linkID string) error {
	for _, id := range eng.Inventory().Links {
		if id == linkID {
			return nil
		}
	}
	return &types.InvalidElementError{Quantity: types.Flow, ElementID: linkID}
}
