package uncertainty

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/waterfutures/scadasim/pkg/types"
)

// ParamStore is the slice of the engine that model uncertainty perturbs:
// named physical parameters keyed by element id.
type ParamStore interface {
	// Parameter returns the current values of a model parameter by element id.
	Parameter(kind types.ParamKind) (map[string]float64, error)

	// SetParameter overwrites one element's value of a model parameter.
	SetParameter(kind types.ParamKind, elementID string, value float64) error
}

// Model holds the model-level uncertainty of a scenario: per parameter
// either one global Uncertainty applied to every element, or a local
// per-element mapping. Global and local are mutually exclusive per
// parameter so no value is perturbed twice.
type Model struct {
	global map[types.ParamKind]Uncertainty
	local  map[types.ParamKind]map[string]Uncertainty
}

// NewModel creates an empty model-uncertainty set.
func NewModel() *Model {
	return &Model{
		global: make(map[types.ParamKind]Uncertainty),
		local:  make(map[types.ParamKind]map[string]Uncertainty),
	}
}

// SetGlobal applies u identically to every element of the parameter.
func (m *Model) SetGlobal(kind types.ParamKind, u Uncertainty) error {
	if _, ok := m.local[kind]; ok {
		return &types.ConflictingUncertaintyError{Param: kind}
	}
	m.global[kind] = u
	return nil
}

// SetLocal applies a distinct Uncertainty per listed element; elements not
// listed are left unperturbed.
func (m *Model) SetLocal(kind types.ParamKind, byElement map[string]Uncertainty) error {
	if _, ok := m.global[kind]; ok {
		return &types.ConflictingUncertaintyError{Param: kind}
	}
	cp := make(map[string]Uncertainty, len(byElement))
	for id, u := range byElement {
		cp[id] = u
	}
	m.local[kind] = cp
	return nil
}

// Perturb rewrites the engine's model parameters in place. Elements are
// visited in sorted id order so a fixed seed reproduces the same perturbed
// scenario.
func (m *Model) Perturb(store ParamStore, rng *rand.Rand) error {
	for _, kind := range []types.ParamKind{
		types.ParamElevation, types.ParamPipeLength, types.ParamPipeDiameter,
		types.ParamPipeRoughness, types.ParamBaseDemand, types.ParamDemandPattern,
		types.ParamReactionBulk, types.ParamReactionWall,
	} {
		global, hasGlobal := m.global[kind]
		local, hasLocal := m.local[kind]
		if !hasGlobal && !hasLocal {
			continue
		}

		values, err := store.Parameter(kind)
		if err != nil {
			return fmt.Errorf("reading %s: %w", kind, err)
		}

		ids := make([]string, 0, len(values))
		for id := range values {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			u := global
			if hasLocal {
				var ok bool
				if u, ok = local[id]; !ok {
					continue
				}
			}
			if err := store.SetParameter(kind, id, u.Apply(rng, 0, values[id])); err != nil {
				return fmt.Errorf("perturbing %s of %q: %w", kind, id, err)
			}
		}
	}
	return nil
}
