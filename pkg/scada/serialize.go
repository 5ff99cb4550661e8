package scada

import (
	"fmt"

	"github.com/waterfutures/scadasim/pkg/events"
	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/serialize"
	"github.com/waterfutures/scadasim/pkg/types"
	"github.com/waterfutures/scadasim/pkg/uncertainty"
	"gonum.org/v1/gonum/mat"
)

// TypeTag implements serialize.Serializable.
func (d *Data) TypeTag() serialize.TypeTag { return serialize.TagScadaData }

// FileExt implements serialize.Serializable.
func (d *Data) FileExt() string { return ".scada" }

// Describe implements serialize.Serializable. Raw arrays are emitted per
// quantity in canonical order; absent quantities emit no fields.
func (d *Data) Describe() []serialize.Field {
	evs := make([]serialize.Serializable, len(d.events))
	for i, ev := range d.events {
		evs[i], _ = ev.(serialize.Serializable)
	}

	var noise any
	if d.noise != nil {
		noise = d.noise
	}

	fields := []serialize.Field{
		{Name: "times", Value: d.Times()},
		{Name: "seed", Value: d.seed},
		{Name: "frozen", Value: d.frozen},
		{Name: "config", Value: d.cfg},
		{Name: "events", Value: evs},
		{Name: "noise", Value: noise},
	}
	for _, q := range types.QuantityOrder {
		m, ok := d.raw[q]
		if !ok {
			continue
		}
		fields = append(fields,
			serialize.Field{Name: "raw_" + q.String(), Value: mat.DenseCopyOf(m)},
			serialize.Field{Name: "elements_" + q.String(), Value: append([]string(nil), d.elements[q]...)},
		)
	}
	return fields
}

func init() {
	serialize.Register(serialize.TagScadaData, func(attrs map[string]any) (serialize.Serializable, error) {
		times, err := serialize.Uint64Slice(attrs, "times")
		if err != nil {
			return nil, err
		}
		seed, err := serialize.Uint64(attrs, "seed")
		if err != nil {
			return nil, err
		}
		frozen, err := serialize.Bool(attrs, "frozen")
		if err != nil {
			return nil, err
		}

		cfgObj, err := serialize.Object(attrs, "config")
		if err != nil {
			return nil, err
		}
		cfg, ok := cfgObj.(*sensor.Config)
		if !ok {
			return nil, fmt.Errorf("config is %T, want sensor config", cfgObj)
		}

		raw := make(map[types.Quantity]*mat.Dense)
		elements := make(map[types.Quantity][]string)
		for _, q := range types.QuantityOrder {
			if _, present := attrs["raw_"+q.String()]; !present {
				continue
			}
			m, err := serialize.Matrix(attrs, "raw_"+q.String())
			if err != nil {
				return nil, err
			}
			ids, err := serialize.StringSlice(attrs, "elements_"+q.String())
			if err != nil {
				return nil, err
			}
			raw[q] = m
			elements[q] = ids
		}

		d, err := New(cfg, raw, elements, times, seed)
		if err != nil {
			return nil, err
		}
		d.frozen = frozen

		evObjs, err := serialize.ObjectList(attrs, "events")
		if err != nil {
			return nil, err
		}
		for _, obj := range evObjs {
			ev, ok := obj.(events.SensorReadingEvent)
			if !ok {
				return nil, fmt.Errorf("%T is not a sensor-reading event", obj)
			}
			d.events = append(d.events, ev)
		}

		noiseObj, err := serialize.Object(attrs, "noise")
		if err != nil {
			return nil, err
		}
		if noiseObj != nil {
			noise, ok := noiseObj.(*uncertainty.SensorNoise)
			if !ok {
				return nil, fmt.Errorf("noise is %T, want sensor noise", noiseObj)
			}
			d.noise = noise
		}
		return d, nil
	})
}
