package types

// Unit is a measurement unit attached to sensor configuration metadata.
// The unit is authoritative metadata of the owning sensor configuration,
// not of an individual reading.
type Unit int

// Flow units.
const (
	CubicMetersPerHour Unit = iota
	LitersPerSecond
	GallonsPerMinute
	MillionGallonsPerDay
	CubicFeetPerSecond
)

// Quality units.
const (
	MilligramsPerLiter Unit = iota + 100
	MicrogramsPerLiter
	MolesPerLiter
)

// Mass units.
const (
	Milligrams Unit = iota + 200
	Micrograms
	Moles
)

// Area units.
const (
	SquareMeters Unit = iota + 300
	SquareFeet
	SquareCentimeters
)

var unitNames = map[Unit]string{
	CubicMetersPerHour:   "m3/h",
	LitersPerSecond:      "l/s",
	GallonsPerMinute:     "gpm",
	MillionGallonsPerDay: "mgd",
	CubicFeetPerSecond:   "cfs",
	MilligramsPerLiter:   "mg/l",
	MicrogramsPerLiter:   "ug/l",
	MolesPerLiter:        "mol/l",
	Milligrams:           "mg",
	Micrograms:           "ug",
	Moles:                "mol",
	SquareMeters:         "m2",
	SquareFeet:           "ft2",
	SquareCentimeters:    "cm2",
}

// String returns the unit symbol.
func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "unknown"
}

// UnitFromString parses a unit symbol. The second return value is false if
// the symbol is not a known unit.
func UnitFromString(symbol string) (Unit, bool) {
	for u, n := range unitNames {
		if n == symbol {
			return u, true
		}
	}
	return 0, false
}

// UnitSet is the per-dimension measurement unit metadata carried by a
// sensor configuration.
type UnitSet struct {
	Flow    Unit
	Quality Unit
	Mass    Unit
	Area    Unit
}

// DefaultUnits returns the metric defaults.
func DefaultUnits() UnitSet {
	return UnitSet{
		Flow:    CubicMetersPerHour,
		Quality: MilligramsPerLiter,
		Mass:    Milligrams,
		Area:    SquareMeters,
	}
}
