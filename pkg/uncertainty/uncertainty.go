// Package uncertainty implements stochastic perturbation of model
// parameters and sensor readings.
package uncertainty

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uncertainty perturbs a scalar or a row of values. Implementations are
// stateless: given the same rng state, step, and inputs they produce the
// same outputs, so the pipeline can re-derive identical results from a
// fixed seed.
type Uncertainty interface {
	// Apply perturbs a single value. Non-deep variants ignore step.
	Apply(rng *rand.Rand, step int, v float64) float64

	// ApplyRow perturbs one time step's worth of values in place. Deep
	// variants draw a single sample for the whole row; all others draw
	// independently per element.
	ApplyRow(rng *rand.Rand, step int, row []float64)
}

// Gaussian adds (absolute) or scales by 1+draw (relative) a normal draw.
type Gaussian struct {
	Mean   float64
	StdDev float64

	// Relative selects multiplicative mode: v * (1 + draw).
	Relative bool

	// ClampNegatives clamps a perturbed non-negative value at zero instead
	// of letting relative noise flip its sign. Off by default; the flip is
	// allowed unless the caller opts in.
	ClampNegatives bool
}

func (g *Gaussian) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: rng}.Rand()
	return finish(v, draw, g.Relative, g.ClampNegatives)
}

func (g *Gaussian) ApplyRow(rng *rand.Rand, step int, row []float64) {
	for i, v := range row {
		row[i] = g.Apply(rng, step, v)
	}
}

// Uniform adds (absolute) or scales by 1+draw (relative) a uniform draw
// from [Low, High).
type Uniform struct {
	Low            float64
	High           float64
	Relative       bool
	ClampNegatives bool
}

func (u *Uniform) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Uniform{Min: u.Low, Max: u.High, Src: rng}.Rand()
	return finish(v, draw, u.Relative, u.ClampNegatives)
}

func (u *Uniform) ApplyRow(rng *rand.Rand, step int, row []float64) {
	for i, v := range row {
		row[i] = u.Apply(rng, step, v)
	}
}

// PercentageDeviation scales a value by a bounded percentage drawn from
// [-Deviation, +Deviation]. Always multiplicative.
type PercentageDeviation struct {
	// Deviation is the maximum relative deviation, e.g. 0.05 for ±5%.
	Deviation float64
}

func (p *PercentageDeviation) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Uniform{Min: -p.Deviation, Max: p.Deviation, Src: rng}.Rand()
	return v * (1 + draw)
}

func (p *PercentageDeviation) ApplyRow(rng *rand.Rand, step int, row []float64) {
	for i, v := range row {
		row[i] = p.Apply(rng, step, v)
	}
}

// DeepGaussian draws one independent normal sample per time step and
// applies it to every element of that step's row.
type DeepGaussian struct {
	Mean           float64
	StdDev         float64
	Relative       bool
	ClampNegatives bool
}

func (g *DeepGaussian) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: rng}.Rand()
	return finish(v, draw, g.Relative, g.ClampNegatives)
}

func (g *DeepGaussian) ApplyRow(rng *rand.Rand, _ int, row []float64) {
	draw := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: rng}.Rand()
	for i, v := range row {
		row[i] = finish(v, draw, g.Relative, g.ClampNegatives)
	}
}

// DeepUniform draws one independent uniform sample per time step and
// applies it to every element of that step's row.
type DeepUniform struct {
	Low            float64
	High           float64
	Relative       bool
	ClampNegatives bool
}

func (u *DeepUniform) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Uniform{Min: u.Low, Max: u.High, Src: rng}.Rand()
	return finish(v, draw, u.Relative, u.ClampNegatives)
}

func (u *DeepUniform) ApplyRow(rng *rand.Rand, _ int, row []float64) {
	draw := distuv.Uniform{Min: u.Low, Max: u.High, Src: rng}.Rand()
	for i, v := range row {
		row[i] = finish(v, draw, u.Relative, u.ClampNegatives)
	}
}

// DeepUniformDataDependent draws one uniform fraction per time step and
// scales every element of that step's row by it. The perturbation bounds
// follow the data itself: a value v moves within [v*(1-Fraction), v*(1+Fraction)].
type DeepUniformDataDependent struct {
	// Fraction is the maximum relative deviation, e.g. 0.1 for ±10%.
	Fraction float64
}

func (d *DeepUniformDataDependent) Apply(rng *rand.Rand, _ int, v float64) float64 {
	draw := distuv.Uniform{Min: -d.Fraction, Max: d.Fraction, Src: rng}.Rand()
	return v * (1 + draw)
}

func (d *DeepUniformDataDependent) ApplyRow(rng *rand.Rand, _ int, row []float64) {
	draw := distuv.Uniform{Min: -d.Fraction, Max: d.Fraction, Src: rng}.Rand()
	for i, v := range row {
		row[i] = v * (1 + draw)
	}
}

// finish combines a value with a draw under the absolute/relative mode and
// the sign-flip policy.
func finish(v, draw float64, relative, clampNegatives bool) float64 {
	var out float64
	if relative {
		out = v * (1 + draw)
	} else {
		out = v + draw
	}
	if clampNegatives && v >= 0 && out < 0 {
		out = 0
	}
	return out
}
