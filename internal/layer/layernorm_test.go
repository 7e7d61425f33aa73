package layer

import (
	"math"
	"testing"
)

func TestLayerNormForward(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5, true)

	// Input: [1, 2, 3, 4]
	// Mean = 2.5, Std = sqrt(1.25) ~ 1.118
	input := []float64{1, 2, 3, 4}

	output := ln.Forward(input)

	mean := 2.5
	std := math.Sqrt(1.25 + 1e-5)
	expected := []float64{
		(1 - mean) / std,
		(2 - mean) / std,
		(3 - mean) / std,
		(4 - mean) / std,
	}

	for i := 0; i < 4; i++ {
		if math.Abs(output[i]-expected[i]) > 1e-5 {
			t.Errorf("Output[%d] = %f, expected %f", i, output[i], expected[i])
		}
	}
}

func TestLayerNormDefaultAffine(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5, true)
	ln.Forward([]float64{1, 2, 3, 4})

	// Default gamma is all 1s, beta all 0s
	for i, g := range ln.Gamma() {
		if math.Abs(g-1.0) > 1e-10 {
			t.Errorf("Gamma[%d] = %f, expected 1.0", i, g)
		}
	}
	for i, b := range ln.Beta() {
		if math.Abs(b) > 1e-10 {
			t.Errorf("Beta[%d] = %f, expected 0.0", i, b)
		}
	}
}

func TestLayerNormWithoutAffine(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5, false)

	out := ln.Forward([]float64{1, 2, 3, 4})

	// Output has zero mean and unit variance (up to eps)
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum) > 1e-10 {
		t.Errorf("normalized mean = %f, expected 0", sum/4)
	}

	if params := ln.Params(); len(params) != 0 {
		t.Errorf("Expected 0 params, got %d", len(params))
	}
}

// TestLayerNormBackwardNumeric verifies the input gradient against central
// finite differences of a scalar objective sum(gamma*norm(x) + beta).
func TestLayerNormBackwardNumeric(t *testing.T) {
	forward := func(x []float64) float64 {
		ln := NewLayerNorm(len(x), 1e-5, true)
		out := ln.Forward(x)
		sum := 0.0
		for _, v := range out {
			sum += v * v
		}
		return sum
	}

	x := []float64{0.3, -1.2, 0.8, 2.1}

	ln := NewLayerNorm(4, 1e-5, true)
	out := ln.Forward(x)
	grad := make([]float64, 4)
	for i := range out {
		grad[i] = 2 * out[i] // d(sum out^2)/d(out)
	}
	gradIn := ln.Backward(grad)

	const h = 1e-6
	for i := range x {
		xp := append([]float64(nil), x...)
		xm := append([]float64(nil), x...)
		xp[i] += h
		xm[i] -= h
		numeric := (forward(xp) - forward(xm)) / (2 * h)
		if math.Abs(numeric-gradIn[i]) > 1e-4 {
			t.Errorf("gradIn[%d]: analytic %f, numeric %f", i, gradIn[i], numeric)
		}
	}
}

func TestLayerNormGammaBetaGradients(t *testing.T) {
	ln := NewLayerNorm(3, 1e-5, true)
	out := ln.Forward([]float64{1, 2, 3})

	grad := []float64{1, 1, 1}
	ln.Backward(grad)

	// dL/dgamma = grad * normalized, dL/dbeta = grad
	gg := ln.GammaGradients()
	for i := range gg {
		if math.Abs(gg[i]-out[i]) > 1e-10 {
			t.Errorf("gammaGrad[%d] = %f, expected %f", i, gg[i], out[i])
		}
	}
	for i, bg := range ln.BetaGradients() {
		if math.Abs(bg-1) > 1e-10 {
			t.Errorf("betaGrad[%d] = %f, expected 1", i, bg)
		}
	}
}
