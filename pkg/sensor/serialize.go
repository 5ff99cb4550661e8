package sensor

import (
	"fmt"

	"github.com/waterfutures/scadasim/pkg/serialize"
	"github.com/waterfutures/scadasim/pkg/types"
)

// TypeTag implements serialize.Serializable.
func (c *Config) TypeTag() serialize.TypeTag { return serialize.TagSensorConfig }

// FileExt implements serialize.Serializable.
func (c *Config) FileExt() string { return ".scfg" }

// Describe implements serialize.Serializable.
func (c *Config) Describe() []serialize.Field {
	fields := []serialize.Field{
		{Name: "inventory_nodes", Value: append([]string(nil), c.inventory.Nodes...)},
		{Name: "inventory_links", Value: append([]string(nil), c.inventory.Links...)},
		{Name: "inventory_valves", Value: append([]string(nil), c.inventory.Valves...)},
		{Name: "inventory_pumps", Value: append([]string(nil), c.inventory.Pumps...)},
		{Name: "inventory_tanks", Value: append([]string(nil), c.inventory.Tanks...)},
	}
	for _, q := range types.QuantityOrder {
		fields = append(fields, serialize.Field{
			Name:  "sensors_" + q.String(),
			Value: append([]string(nil), c.selections[q]...),
		})
	}
	fields = append(fields,
		serialize.Field{Name: "unit_flow", Value: uint64(c.units.Flow)},
		serialize.Field{Name: "unit_quality", Value: uint64(c.units.Quality)},
		serialize.Field{Name: "unit_mass", Value: uint64(c.units.Mass)},
		serialize.Field{Name: "unit_area", Value: uint64(c.units.Area)},
	)
	return fields
}

func init() {
	serialize.Register(serialize.TagSensorConfig, func(attrs map[string]any) (serialize.Serializable, error) {
		var (
			inv  Inventory
			err  error
			read = func(name string) []string {
				if err != nil {
					return nil
				}
				var v []string
				v, err = serialize.StringSlice(attrs, name)
				return v
			}
		)
		inv.Nodes = read("inventory_nodes")
		inv.Links = read("inventory_links")
		inv.Valves = read("inventory_valves")
		inv.Pumps = read("inventory_pumps")
		inv.Tanks = read("inventory_tanks")
		if err != nil {
			return nil, err
		}

		var units types.UnitSet
		for _, u := range []struct {
			name string
			dst  *types.Unit
		}{
			{"unit_flow", &units.Flow},
			{"unit_quality", &units.Quality},
			{"unit_mass", &units.Mass},
			{"unit_area", &units.Area},
		} {
			raw, err := serialize.Uint64(attrs, u.name)
			if err != nil {
				return nil, err
			}
			*u.dst = types.Unit(raw)
		}

		cfg := New(inv, units)
		for _, q := range types.QuantityOrder {
			ids, err := serialize.StringSlice(attrs, "sensors_"+q.String())
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				continue
			}
			if err := cfg.SetSensors(q, ids); err != nil {
				return nil, fmt.Errorf("restoring %s sensors: %w", q, err)
			}
		}
		return cfg, nil
	})
}
