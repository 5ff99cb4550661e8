package uncertainty

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/waterfutures/scadasim/pkg/types"
)

// SensorNoise is the final perturbation stage of the reading pipeline,
// applied after all sensor-reading events. Like model uncertainty it is
// either global (every reading) or local (listed sensors only), never both.
type SensorNoise struct {
	global Uncertainty
	local  map[types.SensorTarget]Uncertainty
}

// NewGlobalNoise perturbs every sensor reading with the same Uncertainty.
func NewGlobalNoise(u Uncertainty) *SensorNoise {
	return &SensorNoise{global: u}
}

// NewLocalNoise perturbs only the listed sensors, each with its own
// Uncertainty.
func NewLocalNoise(byTarget map[types.SensorTarget]Uncertainty) *SensorNoise {
	cp := make(map[types.SensorTarget]Uncertainty, len(byTarget))
	for t, u := range byTarget {
		cp[t] = u
	}
	return &SensorNoise{local: cp}
}

// ApplyMatrix perturbs the reading matrix in place. targets lists the
// sensor behind each column, in column order. Rows are visited first so
// deep variants consume one draw per time step.
func (n *SensorNoise) ApplyMatrix(rng *rand.Rand, readings *mat.Dense, targets []types.SensorTarget) {
	if n == nil {
		return
	}
	rows, cols := readings.Dims()
	if n.global != nil {
		for r := 0; r < rows; r++ {
			n.global.ApplyRow(rng, r, readings.RawRowView(r))
		}
		return
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols && c < len(targets); c++ {
			u, ok := n.local[targets[c]]
			if !ok {
				continue
			}
			readings.Set(r, c, u.Apply(rng, r, readings.At(r, c)))
		}
	}
}
