package layer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sumlabs/crystalnet/internal/activations"
)

func TestDenseForward(t *testing.T) {
	d := NewDense(2, 2, activations.Linear{}, rand.New(rand.NewSource(1)))

	// W = [[1, 2], [3, 4]], b = [0.5, -0.5]
	d.SetParams([]float64{1, 2, 3, 4, 0.5, -0.5})

	out := d.Forward([]float64{1, 1})

	expected := []float64{1 + 2 + 0.5, 3 + 4 - 0.5}
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > 1e-12 {
			t.Errorf("out[%d] = %f, expected %f", i, out[i], expected[i])
		}
	}
}

func TestDenseBackwardAccumulates(t *testing.T) {
	d := NewDense(2, 1, activations.Linear{}, rand.New(rand.NewSource(1)))
	d.SetParams([]float64{2, 3, 0})

	d.Forward([]float64{1, 2})
	d.Backward([]float64{1})

	// dL/dW = grad * input = [1, 2], dL/db = 1
	grads := d.Gradients()
	want := []float64{1, 2, 1}
	for i := range want {
		if math.Abs(grads[i]-want[i]) > 1e-12 {
			t.Errorf("grad[%d] = %f, expected %f", i, grads[i], want[i])
		}
	}

	// A second identical pass must double the accumulated gradients.
	d.Forward([]float64{1, 2})
	d.Backward([]float64{1})
	grads = d.Gradients()
	for i := range want {
		if math.Abs(grads[i]-2*want[i]) > 1e-12 {
			t.Errorf("accumulated grad[%d] = %f, expected %f", i, grads[i], 2*want[i])
		}
	}

	d.ClearGradients()
	for i, g := range d.Gradients() {
		if g != 0 {
			t.Errorf("grad[%d] = %f after ClearGradients, expected 0", i, g)
		}
	}
}

func TestDenseInputGradient(t *testing.T) {
	d := NewDense(2, 2, activations.Linear{}, rand.New(rand.NewSource(1)))
	d.SetParams([]float64{1, 2, 3, 4, 0, 0})

	d.Forward([]float64{1, 1})
	gradIn := d.Backward([]float64{1, 1})

	// dL/dx[i] = sum_o(dz[o] * W[o, i]) = [1+3, 2+4]
	want := []float64{4, 6}
	for i := range want {
		if math.Abs(gradIn[i]-want[i]) > 1e-12 {
			t.Errorf("gradIn[%d] = %f, expected %f", i, gradIn[i], want[i])
		}
	}
}

func TestDenseSeededInitReproducible(t *testing.T) {
	a := NewDense(8, 4, activations.SiLU{}, rand.New(rand.NewSource(7)))
	b := NewDense(8, 4, activations.SiLU{}, rand.New(rand.NewSource(7)))

	pa, pb := a.Params(), b.Params()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("params diverge at %d: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestDenseShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on input size mismatch")
		}
	}()

	d := NewDense(4, 2, activations.Linear{}, rand.New(rand.NewSource(1)))
	d.Forward([]float64{1, 2})
}
