package layer

import (
	"math"
)

// LayerNorm implements layer normalization.
// Normalizes across feature dimensions (not batch dimension).
type LayerNorm struct {
	normalizedShape   int
	eps               float64
	elementwiseAffine bool

	// Learnable parameters (when affine is enabled)
	gamma []float64
	beta  []float64

	// Pre-allocated buffers
	outputBuf    []float64
	gradInBuf    []float64
	gradGammaBuf []float64
	gradBetaBuf  []float64

	// Saved state for backward pass
	savedInput []float64
	inputMean  float64
	inputStd   float64
}

// NewLayerNorm creates a new layer normalization layer.
// normalizedShape is the feature width, eps guards against division by zero
// (1e-5 matches the PyTorch default), elementwiseAffine enables the learned
// scale (gamma) and shift (beta).
func NewLayerNorm(normalizedShape int, eps float64, elementwiseAffine bool) *LayerNorm {
	l := &LayerNorm{
		normalizedShape:   normalizedShape,
		eps:               eps,
		elementwiseAffine: elementwiseAffine,
		outputBuf:         make([]float64, normalizedShape),
		gradInBuf:         make([]float64, normalizedShape),
		savedInput:        make([]float64, normalizedShape),
	}

	if elementwiseAffine {
		l.gamma = make([]float64, normalizedShape)
		l.beta = make([]float64, normalizedShape)
		l.gradGammaBuf = make([]float64, normalizedShape)
		l.gradBetaBuf = make([]float64, normalizedShape)

		for i := 0; i < normalizedShape; i++ {
			l.gamma[i] = 1.0
		}
	}

	return l
}

// Forward normalizes x to zero mean and unit variance, then applies the
// affine transform when enabled.
func (l *LayerNorm) Forward(x []float64) []float64 {
	n := l.normalizedShape
	if len(x) != n {
		panic("LayerNorm: input size mismatch")
	}
	copy(l.savedInput, x)

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += x[i]
	}
	mean := sum / float64(n)
	l.inputMean = mean

	sumSquares := 0.0
	for i := 0; i < n; i++ {
		diff := x[i] - mean
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(n)
	std := math.Sqrt(variance + l.eps)
	l.inputStd = std

	for i := 0; i < n; i++ {
		normalized := (x[i] - mean) / std
		if l.elementwiseAffine {
			l.outputBuf[i] = l.gamma[i]*normalized + l.beta[i]
		} else {
			l.outputBuf[i] = normalized
		}
	}

	return l.outputBuf
}

// Backward propagates the gradient through the normalization, accumulating
// gamma and beta gradients when affine is enabled.
func (l *LayerNorm) Backward(grad []float64) []float64 {
	n := l.normalizedShape
	mean := l.inputMean
	std := l.inputStd

	sumGrad := 0.0
	sumGradXMean := 0.0
	for i := 0; i < n; i++ {
		g := grad[i]
		if l.elementwiseAffine {
			g *= l.gamma[i]
		}
		diff := l.savedInput[i] - mean
		sumGrad += g
		sumGradXMean += g * diff
	}

	for i := 0; i < n; i++ {
		g := grad[i]
		if l.elementwiseAffine {
			g *= l.gamma[i]
		}
		diff := l.savedInput[i] - mean
		gradInput := (g - sumGrad/float64(n)) / std
		gradInput -= (diff * sumGradXMean) / (float64(n) * std * std * std)
		l.gradInBuf[i] = gradInput
	}

	if l.elementwiseAffine {
		for i := 0; i < n; i++ {
			normalized := (l.savedInput[i] - mean) / std
			l.gradGammaBuf[i] += grad[i] * normalized
			l.gradBetaBuf[i] += grad[i]
		}
	}

	return l.gradInBuf
}

// Params returns layer parameters (gamma and beta when affine is enabled).
func (l *LayerNorm) Params() []float64 {
	if !l.elementwiseAffine {
		return nil
	}

	params := make([]float64, 0, len(l.gamma)+len(l.beta))
	params = append(params, l.gamma...)
	params = append(params, l.beta...)
	return params
}

// SetParams updates gamma and beta from a flattened slice.
func (l *LayerNorm) SetParams(params []float64) {
	if !l.elementwiseAffine {
		return
	}
	copy(l.gamma, params[:len(l.gamma)])
	copy(l.beta, params[len(l.gamma):])
}

// Gradients returns layer gradients (gamma and beta gradients when affine is enabled).
func (l *LayerNorm) Gradients() []float64 {
	if !l.elementwiseAffine {
		return nil
	}

	gradients := make([]float64, 0, len(l.gradGammaBuf)+len(l.gradBetaBuf))
	gradients = append(gradients, l.gradGammaBuf...)
	gradients = append(gradients, l.gradBetaBuf...)
	return gradients
}

// ClearGradients zeroes out the accumulated gradients.
func (l *LayerNorm) ClearGradients() {
	if !l.elementwiseAffine {
		return
	}
	for i := range l.gradGammaBuf {
		l.gradGammaBuf[i] = 0
	}
	for i := range l.gradBetaBuf {
		l.gradBetaBuf[i] = 0
	}
}

// Gamma returns the gamma parameters (for affine layers).
func (l *LayerNorm) Gamma() []float64 {
	return l.gamma
}

// Beta returns the beta parameters (for affine layers).
func (l *LayerNorm) Beta() []float64 {
	return l.beta
}

// GammaGradients returns the gamma gradient buffer directly.
func (l *LayerNorm) GammaGradients() []float64 {
	return l.gradGammaBuf
}

// BetaGradients returns the beta gradient buffer directly.
func (l *LayerNorm) BetaGradients() []float64 {
	return l.gradBetaBuf
}

// InSize returns the input size.
func (l *LayerNorm) InSize() int {
	return l.normalizedShape
}

// OutSize returns the output size.
func (l *LayerNorm) OutSize() int {
	return l.normalizedShape
}

// Eps returns the epsilon value for numerical stability.
func (l *LayerNorm) Eps() float64 {
	return l.eps
}
