// Package opt provides optimization algorithms.
package opt

import "math"

// Optimizer updates a named parameter tensor in-place from its gradients.
// Stateful optimizers key their per-parameter state by the tensor name, so a
// name must map to the same tensor across steps.
type Optimizer interface {
	// StepInPlace updates params in-place from gradients. decay selects
	// whether weight decay applies to this tensor.
	StepInPlace(name string, params, gradients []float64, decay bool)

	// BeginStep marks the start of a new optimization step.
	BeginStep()

	SetLR(lr float64)
	GetLR() float64
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64
}

// BeginStep is a no-op for SGD.
func (s *SGD) BeginStep() {}

// StepInPlace updates params in-place: params = params - lr * gradients
func (s *SGD) StepInPlace(name string, params, gradients []float64, decay bool) {
	for i := range params {
		params[i] -= s.LearningRate * gradients[i]
	}
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) { s.LearningRate = lr }

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 { return s.LearningRate }

// AdamW optimizer with decoupled weight decay.
// PyTorch reference: torch.optim.AdamW
type AdamW struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability
	WeightDecay  float64

	step int
	m    map[string][]float64
	v    map[string][]float64
}

// NewAdamW creates an AdamW optimizer with default moment coefficients.
func NewAdamW(learningRate, weightDecay float64) *AdamW {
	return &AdamW{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		WeightDecay:  weightDecay,
		m:            make(map[string][]float64),
		v:            make(map[string][]float64),
	}
}

// BeginStep advances the shared timestep used for bias correction.
// Call once per optimization step, before the per-tensor updates.
func (a *AdamW) BeginStep() {
	a.step++
}

// StepInPlace applies one AdamW update to params.
// Weight decay is decoupled from the moment estimates and only applied when
// decay is true (dense weights; not norm gains, biases, or coupling scalars).
func (a *AdamW) StepInPlace(name string, params, gradients []float64, decay bool) {
	if len(params) != len(gradients) {
		panic("AdamW: params and gradients must have same length")
	}

	m, ok := a.m[name]
	if !ok {
		m = make([]float64, len(params))
		a.m[name] = m
	}
	v, ok := a.v[name]
	if !ok {
		v = make([]float64, len(params))
		a.v[name] = v
	}

	t := a.step
	if t == 0 {
		t = 1
	}
	biasCorr1 := 1 - math.Pow(a.Beta1, float64(t))
	biasCorr2 := 1 - math.Pow(a.Beta2, float64(t))

	for i := range params {
		g := gradients[i]
		m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
		v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g

		mHat := m[i] / biasCorr1
		vHat := v[i] / biasCorr2

		if decay && a.WeightDecay != 0 {
			params[i] -= a.LearningRate * a.WeightDecay * params[i]
		}
		params[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

// SetLR updates the learning rate.
func (a *AdamW) SetLR(lr float64) { a.LearningRate = lr }

// GetLR returns the current learning rate.
func (a *AdamW) GetLR() float64 { return a.LearningRate }
