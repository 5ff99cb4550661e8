package uncertainty

import (
	"fmt"
	"sort"

	"github.com/waterfutures/scadasim/pkg/serialize"
	"github.com/waterfutures/scadasim/pkg/types"
)

const uncertaintyExt = ".unc"

func (g *Gaussian) TypeTag() serialize.TypeTag { return serialize.TagGaussianUncertainty }
func (g *Gaussian) FileExt() string            { return uncertaintyExt }
func (g *Gaussian) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "mean", Value: g.Mean},
		{Name: "std_dev", Value: g.StdDev},
		{Name: "relative", Value: g.Relative},
		{Name: "clamp_negatives", Value: g.ClampNegatives},
	}
}

func (u *Uniform) TypeTag() serialize.TypeTag { return serialize.TagUniformUncertainty }
func (u *Uniform) FileExt() string            { return uncertaintyExt }
func (u *Uniform) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "low", Value: u.Low},
		{Name: "high", Value: u.High},
		{Name: "relative", Value: u.Relative},
		{Name: "clamp_negatives", Value: u.ClampNegatives},
	}
}

func (p *PercentageDeviation) TypeTag() serialize.TypeTag { return serialize.TagPercentageDeviation }
func (p *PercentageDeviation) FileExt() string            { return uncertaintyExt }
func (p *PercentageDeviation) Describe() []serialize.Field {
	return []serialize.Field{{Name: "deviation", Value: p.Deviation}}
}

func (g *DeepGaussian) TypeTag() serialize.TypeTag { return serialize.TagDeepGaussianUncertainty }
func (g *DeepGaussian) FileExt() string            { return uncertaintyExt }
func (g *DeepGaussian) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "mean", Value: g.Mean},
		{Name: "std_dev", Value: g.StdDev},
		{Name: "relative", Value: g.Relative},
		{Name: "clamp_negatives", Value: g.ClampNegatives},
	}
}

func (u *DeepUniform) TypeTag() serialize.TypeTag { return serialize.TagDeepUniformUncertainty }
func (u *DeepUniform) FileExt() string            { return uncertaintyExt }
func (u *DeepUniform) Describe() []serialize.Field {
	return []serialize.Field{
		{Name: "low", Value: u.Low},
		{Name: "high", Value: u.High},
		{Name: "relative", Value: u.Relative},
		{Name: "clamp_negatives", Value: u.ClampNegatives},
	}
}

func (d *DeepUniformDataDependent) TypeTag() serialize.TypeTag {
	return serialize.TagDeepUniformDataDependent
}
func (d *DeepUniformDataDependent) FileExt() string { return uncertaintyExt }
func (d *DeepUniformDataDependent) Describe() []serialize.Field {
	return []serialize.Field{{Name: "fraction", Value: d.Fraction}}
}

func (n *SensorNoise) TypeTag() serialize.TypeTag { return serialize.TagSensorNoise }
func (n *SensorNoise) FileExt() string            { return ".noise" }

// Describe flattens the local mapping into three parallel lists in sorted
// target order so the encoding is deterministic.
func (n *SensorNoise) Describe() []serialize.Field {
	// Non-serializable custom uncertainties are passed through as-is so the
	// encoder rejects them with a clear error instead of a panic here.
	var global any
	if n.global != nil {
		if s, ok := n.global.(serialize.Serializable); ok {
			global = s
		} else {
			global = n.global
		}
	}

	targets := make([]types.SensorTarget, 0, len(n.local))
	for t := range n.local {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Quantity != targets[j].Quantity {
			return targets[i].Quantity < targets[j].Quantity
		}
		return targets[i].ElementID < targets[j].ElementID
	})

	quantities := make([]uint64, len(targets))
	elements := make([]string, len(targets))
	uncs := make([]serialize.Serializable, len(targets))
	for i, t := range targets {
		quantities[i] = uint64(t.Quantity)
		elements[i] = t.ElementID
		uncs[i], _ = n.local[t].(serialize.Serializable)
	}

	return []serialize.Field{
		{Name: "global", Value: global},
		{Name: "local_quantities", Value: quantities},
		{Name: "local_elements", Value: elements},
		{Name: "local_uncertainties", Value: uncs},
	}
}

func init() {
	serialize.Register(serialize.TagGaussianUncertainty, func(attrs map[string]any) (serialize.Serializable, error) {
		g := &Gaussian{}
		return g, fillGaussian(attrs, &g.Mean, &g.StdDev, &g.Relative, &g.ClampNegatives)
	})
	serialize.Register(serialize.TagDeepGaussianUncertainty, func(attrs map[string]any) (serialize.Serializable, error) {
		g := &DeepGaussian{}
		return g, fillGaussian(attrs, &g.Mean, &g.StdDev, &g.Relative, &g.ClampNegatives)
	})
	serialize.Register(serialize.TagUniformUncertainty, func(attrs map[string]any) (serialize.Serializable, error) {
		u := &Uniform{}
		return u, fillUniform(attrs, &u.Low, &u.High, &u.Relative, &u.ClampNegatives)
	})
	serialize.Register(serialize.TagDeepUniformUncertainty, func(attrs map[string]any) (serialize.Serializable, error) {
		u := &DeepUniform{}
		return u, fillUniform(attrs, &u.Low, &u.High, &u.Relative, &u.ClampNegatives)
	})
	serialize.Register(serialize.TagPercentageDeviation, func(attrs map[string]any) (serialize.Serializable, error) {
		deviation, err := serialize.Float64(attrs, "deviation")
		if err != nil {
			return nil, err
		}
		return &PercentageDeviation{Deviation: deviation}, nil
	})
	serialize.Register(serialize.TagDeepUniformDataDependent, func(attrs map[string]any) (serialize.Serializable, error) {
		fraction, err := serialize.Float64(attrs, "fraction")
		if err != nil {
			return nil, err
		}
		return &DeepUniformDataDependent{Fraction: fraction}, nil
	})
	serialize.Register(serialize.TagSensorNoise, func(attrs map[string]any) (serialize.Serializable, error) {
		globalObj, err := serialize.Object(attrs, "global")
		if err != nil {
			return nil, err
		}
		if globalObj != nil {
			global, ok := globalObj.(Uncertainty)
			if !ok {
				return nil, fmt.Errorf("global noise is not an uncertainty: %T", globalObj)
			}
			return NewGlobalNoise(global), nil
		}

		quantities, err := serialize.Uint64Slice(attrs, "local_quantities")
		if err != nil {
			return nil, err
		}
		elements, err := serialize.StringSlice(attrs, "local_elements")
		if err != nil {
			return nil, err
		}
		uncs, err := serialize.ObjectList(attrs, "local_uncertainties")
		if err != nil {
			return nil, err
		}
		if len(quantities) != len(elements) || len(elements) != len(uncs) {
			return nil, &types.ShapeMismatchError{Want: len(quantities), Got: len(uncs), What: "local noise lists"}
		}

		local := make(map[types.SensorTarget]Uncertainty, len(uncs))
		for i, obj := range uncs {
			u, ok := obj.(Uncertainty)
			if !ok {
				return nil, fmt.Errorf("local noise entry is not an uncertainty: %T", obj)
			}
			local[types.SensorTarget{Quantity: types.Quantity(quantities[i]), ElementID: elements[i]}] = u
		}
		return NewLocalNoise(local), nil
	})
}

func fillGaussian(attrs map[string]any, mean, stdDev *float64, relative, clamp *bool) error {
	var err error
	if *mean, err = serialize.Float64(attrs, "mean"); err != nil {
		return err
	}
	if *stdDev, err = serialize.Float64(attrs, "std_dev"); err != nil {
		return err
	}
	if *relative, err = serialize.Bool(attrs, "relative"); err != nil {
		return err
	}
	*clamp, err = serialize.Bool(attrs, "clamp_negatives")
	return err
}

func fillUniform(attrs map[string]any, low, high *float64, relative, clamp *bool) error {
	var err error
	if *low, err = serialize.Float64(attrs, "low"); err != nil {
		return err
	}
	if *high, err = serialize.Float64(attrs, "high"); err != nil {
		return err
	}
	if *relative, err = serialize.Bool(attrs, "relative"); err != nil {
		return err
	}
	*clamp, err = serialize.Bool(attrs, "clamp_negatives")
	return err
}
