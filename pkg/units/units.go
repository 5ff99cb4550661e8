// Package units provides the pure conversion-factor lookup used when a
// pipeline is rescaled to a different measurement unit.
package units

import (
	"fmt"

	"github.com/waterfutures/scadasim/pkg/types"
)

// Multipliers into the base unit of each dimension (m3/h, mg/l, mg, m2).
var baseFactors = map[types.Unit]float64{
	types.CubicMetersPerHour:   1.0,
	types.LitersPerSecond:      3.6,
	types.GallonsPerMinute:     0.2271247,
	types.MillionGallonsPerDay: 157.725491,
	types.CubicFeetPerSecond:   101.940648,

	types.MilligramsPerLiter: 1.0,
	types.MicrogramsPerLiter: 0.001,

	types.Milligrams: 1.0,
	types.Micrograms: 0.001,

	types.SquareMeters:      1.0,
	types.SquareFeet:        0.09290304,
	types.SquareCentimeters: 0.0001,
}

// Factor returns the multiplier converting a value expressed in from-units
// into to-units. Both units must belong to the same dimension and have a
// fixed conversion; mole-based units have no fixed factor and are rejected.
func Factor(from, to types.Unit) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	if sameDimension(from, to) {
		fb, okf := baseFactors[from]
		tb, okt := baseFactors[to]
		if okf && okt {
			return fb / tb, nil
		}
	}
	return 0, fmt.Errorf("no conversion from %s to %s", from, to)
}

func sameDimension(a, b types.Unit) bool {
	return int(a)/100 == int(b)/100
}
