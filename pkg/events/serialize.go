package events

import (
	"github.com/waterfutures/scadasim/pkg/serialize"
	"github.com/waterfutures/scadasim/pkg/types"
)

const eventExt = ".event"

func windowFields(w *window) []serialize.Field {
	return []serialize.Field{
		{Name: "start", Value: w.start},
		{Name: "end", Value: w.end},
	}
}

func targetFields(t types.SensorTarget) []serialize.Field {
	return []serialize.Field{
		{Name: "quantity", Value: uint64(t.Quantity)},
		{Name: "element", Value: t.ElementID},
	}
}

func readWindow(attrs map[string]any) (start, end uint64, err error) {
	if start, err = serialize.Uint64(attrs, "start"); err != nil {
		return
	}
	end, err = serialize.Uint64(attrs, "end")
	return
}

func readTarget(attrs map[string]any) (types.SensorTarget, error) {
	q, err := serialize.Uint64(attrs, "quantity")
	if err != nil {
		return types.SensorTarget{}, err
	}
	element, err := serialize.String(attrs, "element")
	if err != nil {
		return types.SensorTarget{}, err
	}
	return types.SensorTarget{Quantity: types.Quantity(q), ElementID: element}, nil
}

func (l *AbruptLeakage) TypeTag() serialize.TypeTag { return serialize.TagAbruptLeakage }
func (l *AbruptLeakage) FileExt() string            { return eventExt }
func (l *AbruptLeakage) Describe() []serialize.Field {
	return append(windowFields(&l.window),
		serialize.Field{Name: "link", Value: l.LinkID},
		serialize.Field{Name: "diameter", Value: l.Diameter})
}

func (l *IncipientLeakage) TypeTag() serialize.TypeTag { return serialize.TagIncipientLeakage }
func (l *IncipientLeakage) FileExt() string            { return eventExt }
func (l *IncipientLeakage) Describe() []serialize.Field {
	return append(windowFields(&l.window),
		serialize.Field{Name: "link", Value: l.LinkID},
		serialize.Field{Name: "diameter", Value: l.Diameter},
		serialize.Field{Name: "peak", Value: l.Peak})
}

func (e *PumpStateEvent) TypeTag() serialize.TypeTag { return serialize.TagPumpStateEvent }
func (e *PumpStateEvent) FileExt() string            { return eventExt }
func (e *PumpStateEvent) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "time", Value: e.start},
		{Name: "pump", Value: e.PumpID},
		{Name: "on", Value: e.On},
	}
}

func (e *PumpSpeedEvent) TypeTag() serialize.TypeTag { return serialize.TagPumpSpeedEvent }
func (e *PumpSpeedEvent) FileExt() string            { return eventExt }
func (e *PumpSpeedEvent) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "time", Value: e.start},
		{Name: "pump", Value: e.PumpID},
		{Name: "speed", Value: e.Speed},
	}
}

func (e *ValveStateEvent) TypeTag() serialize.TypeTag { return serialize.TagValveStateEvent }
func (e *ValveStateEvent) FileExt() string            { return eventExt }
func (e *ValveStateEvent) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "time", Value: e.start},
		{Name: "valve", Value: e.ValveID},
		{Name: "open", Value: e.Open},
	}
}

func (f *FaultConstant) TypeTag() serialize.TypeTag { return serialize.TagFaultConstant }
func (f *FaultConstant) FileExt() string            { return eventExt }
func (f *FaultConstant) Describe() []serialize.Field {
	return append(append(windowFields(&f.window), targetFields(f.target)...),
		serialize.Field{Name: "shift", Value: f.Shift})
}

func (f *FaultDrift) TypeTag() serialize.TypeTag { return serialize.TagFaultDrift }
func (f *FaultDrift) FileExt() string            { return eventExt }
func (f *FaultDrift) Describe() []serialize.Field {
	return append(append(windowFields(&f.window), targetFields(f.target)...),
		serialize.Field{Name: "slope", Value: f.Slope})
}

func (f *FaultGaussian) TypeTag() serialize.TypeTag { return serialize.TagFaultGaussian }
func (f *FaultGaussian) FileExt() string            { return eventExt }
func (f *FaultGaussian) Describe() []serialize.Field {
	return append(append(windowFields(&f.window), targetFields(f.target)...),
		serialize.Field{Name: "std_dev", Value: f.StdDev})
}

func (f *FaultPercentage) TypeTag() serialize.TypeTag { return serialize.TagFaultPercentage }
func (f *FaultPercentage) FileExt() string            { return eventExt }
func (f *FaultPercentage) Describe() []serialize.Field {
	return append(append(windowFields(&f.window), targetFields(f.target)...),
		serialize.Field{Name: "factor", Value: f.Factor})
}

func (f *FaultStuckZero) TypeTag() serialize.TypeTag { return serialize.TagFaultStuckZero }
func (f *FaultStuckZero) FileExt() string            { return eventExt }
func (f *FaultStuckZero) Describe() []serialize.Field {
	return append(windowFields(&f.window), targetFields(f.target)...)
}

func (a *ReplayAttack) TypeTag() serialize.TypeTag { return serialize.TagReplayAttack }
func (a *ReplayAttack) FileExt() string            { return eventExt }
func (a *ReplayAttack) Describe() []serialize.Field {
	return append(append(windowFields(&a.window), targetFields(a.target)...),
		serialize.Field{Name: "replay_start", Value: a.ReplayStart},
		serialize.Field{Name: "replay_end", Value: a.ReplayEnd})
}

func (a *OverrideAttack) TypeTag() serialize.TypeTag { return serialize.TagOverrideAttack }
func (a *OverrideAttack) FileExt() string            { return eventExt }
func (a *OverrideAttack) Describe() []serialize.Field {
	return append(append(windowFields(&a.window), targetFields(a.target)...),
		serialize.Field{Name: "values", Value: append([]float64(nil), a.Values...)})
}

func init() {
	serialize.Register(serialize.TagAbruptLeakage, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, err := readWindow(attrs)
		if err != nil {
			return nil, err
		}
		link, err := serialize.String(attrs, "link")
		if err != nil {
			return nil, err
		}
		diameter, err := serialize.Float64(attrs, "diameter")
		if err != nil {
			return nil, err
		}
		ev, err := NewAbruptLeakage(link, diameter, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagIncipientLeakage, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, err := readWindow(attrs)
		if err != nil {
			return nil, err
		}
		link, err := serialize.String(attrs, "link")
		if err != nil {
			return nil, err
		}
		diameter, err := serialize.Float64(attrs, "diameter")
		if err != nil {
			return nil, err
		}
		peak, err := serialize.Uint64(attrs, "peak")
		if err != nil {
			return nil, err
		}
		ev, err := NewIncipientLeakage(link, diameter, start, end, peak)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagPumpStateEvent, func(attrs map[string]any) (serialize.Serializable, error) {
		t, err := serialize.Uint64(attrs, "time")
		if err != nil {
			return nil, err
		}
		pump, err := serialize.String(attrs, "pump")
		if err != nil {
			return nil, err
		}
		on, err := serialize.Bool(attrs, "on")
		if err != nil {
			return nil, err
		}
		return NewPumpStateEvent(pump, on, t), nil
	})

	serialize.Register(serialize.TagPumpSpeedEvent, func(attrs map[string]any) (serialize.Serializable, error) {
		t, err := serialize.Uint64(attrs, "time")
		if err != nil {
			return nil, err
		}
		pump, err := serialize.String(attrs, "pump")
		if err != nil {
			return nil, err
		}
		speed, err := serialize.Float64(attrs, "speed")
		if err != nil {
			return nil, err
		}
		return NewPumpSpeedEvent(pump, speed, t), nil
	})

	serialize.Register(serialize.TagValveStateEvent, func(attrs map[string]any) (serialize.Serializable, error) {
		t, err := serialize.Uint64(attrs, "time")
		if err != nil {
			return nil, err
		}
		valve, err := serialize.String(attrs, "valve")
		if err != nil {
			return nil, err
		}
		open, err := serialize.Bool(attrs, "open")
		if err != nil {
			return nil, err
		}
		return NewValveStateEvent(valve, open, t), nil
	})

	serialize.Register(serialize.TagFaultConstant, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		shift, err := serialize.Float64(attrs, "shift")
		if err != nil {
			return nil, err
		}
		ev, err := NewFaultConstant(target, shift, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagFaultDrift, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		slope, err := serialize.Float64(attrs, "slope")
		if err != nil {
			return nil, err
		}
		ev, err := NewFaultDrift(target, slope, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagFaultGaussian, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		stdDev, err := serialize.Float64(attrs, "std_dev")
		if err != nil {
			return nil, err
		}
		ev, err := NewFaultGaussian(target, stdDev, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagFaultPercentage, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		factor, err := serialize.Float64(attrs, "factor")
		if err != nil {
			return nil, err
		}
		ev, err := NewFaultPercentage(target, factor, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagFaultStuckZero, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		ev, err := NewFaultStuckZero(target, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagReplayAttack, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		replayStart, err := serialize.Uint64(attrs, "replay_start")
		if err != nil {
			return nil, err
		}
		replayEnd, err := serialize.Uint64(attrs, "replay_end")
		if err != nil {
			return nil, err
		}
		ev, err := NewReplayAttack(target, replayStart, replayEnd, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})

	serialize.Register(serialize.TagOverrideAttack, func(attrs map[string]any) (serialize.Serializable, error) {
		start, end, target, err := readFaultHeader(attrs)
		if err != nil {
			return nil, err
		}
		values, err := serialize.Float64Slice(attrs, "values")
		if err != nil {
			return nil, err
		}
		ev, err := NewOverrideAttack(target, values, start, end)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})
}

func readFaultHeader(attrs map[string]any) (start, end uint64, target types.SensorTarget, err error) {
	if start, end, err = readWindow(attrs); err != nil {
		return
	}
	target, err = readTarget(attrs)
	return
}
