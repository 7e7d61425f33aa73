package layer

import "math/rand"

// Dropout implements inverted dropout regularization.
// During training, inputs are zeroed with probability p and survivors are
// scaled by 1/(1-p). During inference, inputs pass through unchanged.
type Dropout struct {
	p        float64
	training bool
	size     int

	// Reusable buffers
	outputBuf []float64
	maskBuf   []float64
	gradInBuf []float64

	rng *rand.Rand
}

// NewDropout creates a new dropout layer.
// p is the probability of dropping a unit; the RNG is supplied by the caller
// so mask sequences are reproducible for a fixed seed.
func NewDropout(p float64, size int, rng *rand.Rand) *Dropout {
	return &Dropout{
		p:         p,
		training:  true,
		size:      size,
		outputBuf: make([]float64, size),
		maskBuf:   make([]float64, size),
		gradInBuf: make([]float64, size),
		rng:       rng,
	}
}

// SetTraining sets whether the layer should be in training or inference mode.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// IsTraining returns whether the layer is in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// Forward performs a forward pass through the dropout layer.
func (d *Dropout) Forward(x []float64) []float64 {
	if len(x) != d.size {
		panic("Dropout: input size mismatch")
	}

	if !d.training {
		copy(d.outputBuf, x)
		return d.outputBuf
	}

	keepProb := 1.0 - d.p
	scale := 1.0 / keepProb

	for i := 0; i < d.size; i++ {
		if d.rng.Float64() < d.p {
			d.maskBuf[i] = 0
			d.outputBuf[i] = 0
		} else {
			d.maskBuf[i] = 1
			d.outputBuf[i] = x[i] * scale
		}
	}

	return d.outputBuf
}

// Backward propagates the gradient through the mask saved by the most
// recent Forward call.
func (d *Dropout) Backward(grad []float64) []float64 {
	if !d.training {
		copy(d.gradInBuf, grad)
		return d.gradInBuf
	}

	scale := 1.0 / (1.0 - d.p)
	for i := 0; i < d.size; i++ {
		if d.maskBuf[i] > 0 {
			d.gradInBuf[i] = grad[i] * scale
		} else {
			d.gradInBuf[i] = 0
		}
	}

	return d.gradInBuf
}

// Params returns layer parameters (empty for Dropout).
func (d *Dropout) Params() []float64 {
	return nil
}

// SetParams sets layer parameters (no-op for Dropout).
func (d *Dropout) SetParams(params []float64) {
}

// Gradients returns layer gradients (empty for Dropout).
func (d *Dropout) Gradients() []float64 {
	return nil
}

// ClearGradients zeroes out the accumulated gradients (no-op for Dropout).
func (d *Dropout) ClearGradients() {
}

// P returns the dropout probability.
func (d *Dropout) P() float64 {
	return d.p
}

// InSize returns the input size of the layer.
func (d *Dropout) InSize() int {
	return d.size
}

// OutSize returns the output size of the layer.
func (d *Dropout) OutSize() int {
	return d.size
}
