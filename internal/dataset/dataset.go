// Package dataset generates the synthetic coupling-field regression data.
//
// Each sample is a 16-wide feature vector drawn from a scaled normal
// distribution; the scalar target is a deterministic nonlinear function of
// four fixed feature slices plus a per-sample noise draw. All randomness
// flows through an explicit seed, so a dataset can be regenerated
// bit-identically.
package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureWidth is the fixed length of every feature vector.
const FeatureWidth = 16

// featureScale is the standard deviation of the feature draws.
const featureScale = 0.1

// stdEps guards the slice standardization against zero variance.
const stdEps = 1e-5

// Dataset is an immutable collection of feature/target pairs.
// Length and contents are fixed at construction.
type Dataset struct {
	features [][]float64
	targets  []float64
}

// New generates n samples using the given seed.
// Per sample the draw order is the 16 features followed by one noise draw;
// this order is part of the reproducibility contract.
func New(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	features := make([][]float64, n)
	targets := make([]float64, n)

	for i := 0; i < n; i++ {
		f := make([]float64, FeatureWidth)
		for j := range f {
			f[j] = rng.NormFloat64() * featureScale
		}
		z := rng.NormFloat64()

		features[i] = f
		targets[i] = target(f, z)
	}

	return &Dataset{features: features, targets: targets}
}

// target computes the scalar label from the fixed feature slices:
//
//	warp         = exp(sum(standardize(f[0:4])))
//	entanglement = tanh(product(f[4:8]) * 0.1)
//	coherence    = sigmoid(sum(standardize(f[8:12])))
//	stability    = tanh(sum(standardize(f[12:16])))
//	noise        = 0.1 * sin(z*pi)
//	target       = 0.5 * (warp*entanglement + coherence*stability + noise)
//
// The slice boundaries must not change: they are relied on by
// reproducibility tests.
func target(f []float64, z float64) float64 {
	warp := math.Exp(floats.Sum(standardize(f[0:4])))
	entanglement := math.Tanh(floats.Prod(f[4:8]) * 0.1)
	coherence := sigmoid(floats.Sum(standardize(f[8:12])))
	stability := math.Tanh(floats.Sum(standardize(f[12:16])))
	noise := 0.1 * math.Sin(z*math.Pi)

	return 0.5 * (warp*entanglement + coherence*stability + noise)
}

// standardize returns a new slice with the mean removed and the population
// standard deviation divided out.
func standardize(x []float64) []float64 {
	mean := stat.Mean(x, nil)

	variance := 0.0
	for _, v := range x {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(x))
	std := math.Sqrt(variance + stdEps)

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.targets)
}

// At returns the i-th feature vector and target.
// The returned slice is backing storage and must not be modified.
func (d *Dataset) At(i int) ([]float64, float64) {
	return d.features[i], d.targets[i]
}

// Split partitions the dataset into a leading fraction and the remainder,
// preserving sample order. frac is clamped to [0, 1].
func (d *Dataset) Split(frac float64) (*Dataset, *Dataset) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	cut := int(frac * float64(d.Len()))

	head := &Dataset{features: d.features[:cut], targets: d.targets[:cut]}
	tail := &Dataset{features: d.features[cut:], targets: d.targets[cut:]}
	return head, tail
}
