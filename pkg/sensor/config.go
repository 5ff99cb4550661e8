// Package sensor maps (quantity, element) sensor selections to column
// indices in the flattened reading matrix.
package sensor

import (
	"fmt"

	"github.com/waterfutures/scadasim/pkg/types"
)

// Inventory lists the element ids that exist in the network, per element
// class. It is the validation source for sensor selections.
type Inventory struct {
	Nodes  []string
	Links  []string
	Valves []string
	Pumps  []string
	Tanks  []string
}

// elementClass returns the inventory slice that backs a quantity.
func (inv *Inventory) elementClass(q types.Quantity) []string {
	switch q {
	case types.Pressure, types.Demand, types.NodeQuality, types.BulkSpeciesNode:
		return inv.Nodes
	case types.Flow, types.LinkQuality, types.BulkSpeciesLink, types.SurfaceSpecies:
		return inv.Links
	case types.ValveState:
		return inv.Valves
	case types.PumpState, types.PumpEfficiency, types.PumpEnergy:
		return inv.Pumps
	case types.TankLevel, types.TankVolume:
		return inv.Tanks
	}
	return nil
}

// Config holds the active sensor selection per quantity and the derived
// index ranges in the flattened reading vector. Insertion order of a
// quantity's selection determines its column order.
type Config struct {
	inventory  Inventory
	selections map[types.Quantity][]string
	ranges     map[types.Quantity][2]int
	units      types.UnitSet
}

// New creates an empty sensor configuration validated against the given
// network inventory.
func New(inv Inventory, units types.UnitSet) *Config {
	c := &Config{
		inventory:  inv,
		selections: make(map[types.Quantity][]string),
		ranges:     make(map[types.Quantity][2]int),
		units:      units,
	}
	c.recomputeRanges()
	return c
}

// SetSensors replaces the selection for a quantity. The ids must exist in
// the network inventory and contain no duplicates; their order is preserved
// and determines column order. Index ranges of all subsequent quantities
// are recomputed.
func (c *Config) SetSensors(q types.Quantity, ids []string) error {
	valid := make(map[string]struct{})
	for _, id := range c.inventory.elementClass(q) {
		valid[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := valid[id]; !ok {
			return &types.InvalidElementError{Quantity: q, ElementID: id}
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate %s sensor %q", q, id)
		}
		seen[id] = struct{}{}
	}

	c.selections[q] = append([]string(nil), ids...)
	c.recomputeRanges()
	return nil
}

// Sensors returns the current selection for a quantity in column order.
func (c *Config) Sensors(q types.Quantity) []string {
	return append([]string(nil), c.selections[q]...)
}

// IndexOfReading returns the column index of the given sensor in the
// flattened reading vector.
func (c *Config) IndexOfReading(target types.SensorTarget) (int, error) {
	start, _ := c.IndexRange(target.Quantity)
	for i, id := range c.selections[target.Quantity] {
		if id == target.ElementID {
			return start + i, nil
		}
	}
	return 0, &types.NotSensedError{Quantity: target.Quantity, ElementID: target.ElementID}
}

// IndexRange returns the half-open [start, end) column range occupied by a
// quantity's selection. An empty selection yields start == end.
func (c *Config) IndexRange(q types.Quantity) (int, int) {
	r := c.ranges[q]
	return r[0], r[1]
}

// TotalReadings returns the width of the flattened reading vector.
func (c *Config) TotalReadings() int {
	n := 0
	for _, ids := range c.selections {
		n += len(ids)
	}
	return n
}

// Targets returns all selected sensors in column order.
func (c *Config) Targets() []types.SensorTarget {
	targets := make([]types.SensorTarget, 0, c.TotalReadings())
	for _, q := range types.QuantityOrder {
		for _, id := range c.selections[q] {
			targets = append(targets, types.SensorTarget{Quantity: q, ElementID: id})
		}
	}
	return targets
}

// Inventory returns the network inventory the configuration validates
// against.
func (c *Config) Inventory() Inventory { return c.inventory }

// Units returns the measurement unit metadata of this configuration.
func (c *Config) Units() types.UnitSet { return c.units }

// WithUnits returns a copy of the configuration carrying different unit
// metadata. Used by unit conversion; selections are unchanged.
func (c *Config) WithUnits(units types.UnitSet) *Config {
	clone := c.Clone()
	clone.units = units
	return clone
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := New(c.inventory, c.units)
	for q, ids := range c.selections {
		clone.selections[q] = append([]string(nil), ids...)
	}
	clone.recomputeRanges()
	return clone
}

// Equal reports structural equality: same ordered selection per quantity
// and same units. The network inventory is not part of equality.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	if c.units != other.units {
		return false
	}
	for _, q := range types.QuantityOrder {
		a, b := c.selections[q], other.selections[q]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Hash computes an FNV-1a fingerprint over the ordered selections and
// units, consistent with Equal.
func (c *Config) Hash() uint64 {
	var hash uint64 = 14695981039346656037
	mix := func(s string) {
		for i := 0; i < len(s); i++ {
			hash ^= uint64(s[i])
			hash *= 1099511628211
		}
		// Field separator so "ab"+"c" and "a"+"bc" hash differently.
		hash ^= 0xff
		hash *= 1099511628211
	}
	for _, q := range types.QuantityOrder {
		mix(q.String())
		for _, id := range c.selections[q] {
			mix(id)
		}
	}
	mix(c.units.Flow.String())
	mix(c.units.Quality.String())
	mix(c.units.Mass.String())
	mix(c.units.Area.String())
	return hash
}

// recomputeRanges reassigns the contiguous, gap-free index ranges following
// canonical quantity order.
func (c *Config) recomputeRanges() {
	next := 0
	for _, q := range types.QuantityOrder {
		n := len(c.selections[q])
		c.ranges[q] = [2]int{next, next + n}
		next += n
	}
}
