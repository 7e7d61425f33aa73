// Package activations provides activation functions optimized for performance.
package activations

import "math"

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// sigmoid computes the sigmoid function
// Inline for performance
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (t Tanh) Derivative(x float64) float64 {
	tanhX := math.Tanh(x)
	return 1 - tanhX*tanhX
}

// SiLU (Sigmoid Linear Unit, also called Swish) activation function.
// PyTorch reference: torch.nn.SiLU()
type SiLU struct{}

// Activate computes x * sigmoid(x)
func (s SiLU) Activate(x float64) float64 {
	return x * sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 + x * (1 - sigmoid(x)))
func (s SiLU) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 + x*(1-sigma))
}

// Linear is the identity activation for pure affine layers.
type Linear struct{}

// Activate returns x unchanged
func (l Linear) Activate(x float64) float64 {
	return x
}

// Derivative returns 1
func (l Linear) Derivative(x float64) float64 {
	return 1
}
