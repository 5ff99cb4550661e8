package types

// Quantity identifies a category of measurable or controllable value
// produced by the hydraulic/water-quality engine.
type Quantity int

const (
	Pressure Quantity = iota
	Flow
	Demand
	NodeQuality
	LinkQuality
	ValveState
	PumpState
	PumpEfficiency
	PumpEnergy
	TankLevel
	TankVolume
	BulkSpeciesNode
	BulkSpeciesLink
	SurfaceSpecies
)

// QuantityOrder is the canonical ordering of quantities. It determines the
// layout of index ranges in the flattened reading vector.
var QuantityOrder = []Quantity{
	Pressure, Flow, Demand, NodeQuality, LinkQuality,
	ValveState, PumpState, PumpEfficiency, PumpEnergy,
	TankLevel, TankVolume,
	BulkSpeciesNode, BulkSpeciesLink, SurfaceSpecies,
}

var quantityNames = map[Quantity]string{
	Pressure:        "pressure",
	Flow:            "flow",
	Demand:          "demand",
	NodeQuality:     "node_quality",
	LinkQuality:     "link_quality",
	ValveState:      "valve_state",
	PumpState:       "pump_state",
	PumpEfficiency:  "pump_efficiency",
	PumpEnergy:      "pump_energy",
	TankLevel:       "tank_level",
	TankVolume:      "tank_volume",
	BulkSpeciesNode: "bulk_species_node",
	BulkSpeciesLink: "bulk_species_link",
	SurfaceSpecies:  "surface_species",
}

// String returns the quantity name used in scenario files and logs.
func (q Quantity) String() string {
	if name, ok := quantityNames[q]; ok {
		return name
	}
	return "unknown"
}

// QuantityFromString parses a quantity name. The second return value is
// false if the name is not a known quantity.
func QuantityFromString(name string) (Quantity, bool) {
	for q, n := range quantityNames {
		if n == name {
			return q, true
		}
	}
	return 0, false
}

// SensorTarget identifies a single sensor: one element observed under one
// quantity.
type SensorTarget struct {
	Quantity  Quantity
	ElementID string
}

// ParamKind identifies a physical model parameter that model-level
// uncertainty may perturb before a simulation run.
type ParamKind int

const (
	ParamElevation ParamKind = iota
	ParamPipeLength
	ParamPipeDiameter
	ParamPipeRoughness
	ParamBaseDemand
	ParamDemandPattern
	ParamReactionBulk
	ParamReactionWall
)

var paramNames = map[ParamKind]string{
	ParamElevation:     "elevation",
	ParamPipeLength:    "pipe_length",
	ParamPipeDiameter:  "pipe_diameter",
	ParamPipeRoughness: "pipe_roughness",
	ParamBaseDemand:    "base_demand",
	ParamDemandPattern: "demand_pattern",
	ParamReactionBulk:  "reaction_bulk",
	ParamReactionWall:  "reaction_wall",
}

// String returns the parameter name.
func (p ParamKind) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	return "unknown"
}
