package opt

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ClipGradNorm rescales the gradient slices in-place so their combined L2
// norm does not exceed maxNorm, mirroring torch.nn.utils.clip_grad_norm_.
// Returns the norm before clipping.
func ClipGradNorm(grads [][]float64, maxNorm float64) float64 {
	total := 0.0
	for _, g := range grads {
		if len(g) == 0 {
			continue
		}
		nrm := floats.Norm(g, 2)
		total += nrm * nrm
	}
	total = math.Sqrt(total)

	if total > maxNorm {
		scale := maxNorm / (total + 1e-6)
		for _, g := range grads {
			if len(g) == 0 {
				continue
			}
			floats.Scale(scale, g)
		}
	}

	return total
}
