package layer

import (
	"math"
	"math/rand"
	"testing"
)

func TestDropoutEvalPassThrough(t *testing.T) {
	d := NewDropout(0.5, 4, rand.New(rand.NewSource(42)))
	d.SetTraining(false)

	input := []float64{1, -2, 3, -4}
	out := d.Forward(input)

	for i := range input {
		if out[i] != input[i] {
			t.Errorf("eval out[%d] = %f, expected %f", i, out[i], input[i])
		}
	}
}

func TestDropoutEvalDeterministic(t *testing.T) {
	d := NewDropout(0.1, 8, rand.New(rand.NewSource(42)))
	d.SetTraining(false)

	input := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	first := append([]float64(nil), d.Forward(input)...)
	second := d.Forward(input)

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("eval forward not deterministic at %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestDropoutTrainingMaskAndScale(t *testing.T) {
	const p = 0.5
	d := NewDropout(p, 1000, rand.New(rand.NewSource(7)))

	input := make([]float64, 1000)
	for i := range input {
		input[i] = 1.0
	}
	out := d.Forward(input)

	dropped := 0
	scale := 1.0 / (1.0 - p)
	for i, v := range out {
		switch {
		case v == 0:
			dropped++
		case math.Abs(v-scale) > 1e-12:
			t.Fatalf("surviving unit %d = %f, expected %f", i, v, scale)
		}
	}

	// Dropped fraction should be near p for a large layer.
	frac := float64(dropped) / 1000
	if math.Abs(frac-p) > 0.08 {
		t.Errorf("dropped fraction = %f, expected ~%f", frac, p)
	}
}

func TestDropoutBackwardUsesMask(t *testing.T) {
	d := NewDropout(0.5, 100, rand.New(rand.NewSource(3)))

	input := make([]float64, 100)
	for i := range input {
		input[i] = 1.0
	}
	out := d.Forward(input)

	grad := make([]float64, 100)
	for i := range grad {
		grad[i] = 1.0
	}
	gradIn := d.Backward(grad)

	// Gradient flows only through surviving units, with the same scaling.
	for i := range out {
		if (out[i] == 0) != (gradIn[i] == 0) {
			t.Fatalf("mask mismatch at %d: out=%f gradIn=%f", i, out[i], gradIn[i])
		}
		if out[i] != 0 && math.Abs(gradIn[i]-2.0) > 1e-12 {
			t.Errorf("gradIn[%d] = %f, expected 2.0", i, gradIn[i])
		}
	}
}
