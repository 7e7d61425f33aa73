// Package model implements the coupling-field regression network: a
// three-block feed-forward net over 16 input features with four learned
// scalar coupling parameters that scale intermediate activations.
package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sumlabs/crystalnet/internal/activations"
	"github.com/sumlabs/crystalnet/internal/layer"
)

// Indices into the coupling parameter vector.
const (
	TimeWarp = iota
	QuantumCoupling
	RealityIntegrity
	PhaseCoherence
	numCouplings
)

// couplingNames label the coupling slots for metrics and checkpoints.
var couplingNames = [numCouplings]string{
	"time_warp",
	"quantum_coupling",
	"reality_integrity",
	"phase_coherence",
}

// scaleFor maps each hidden block to the coupling scalar that scales its
// output. PhaseCoherence and RealityIntegrity are shared with the input
// gate and the breach term respectively, so their gradients accumulate
// across use sites.
var scaleFor = [3]int{QuantumCoupling, RealityIntegrity, PhaseCoherence}

// block is one hidden stage: dense -> layer norm -> SiLU -> dropout ->
// coupling scale.
type block struct {
	dense *layer.Dense
	norm  *layer.LayerNorm
	drop  *layer.Dropout

	// Saved forward state for backward
	actIn    []float64 // layer norm output, pre-SiLU
	actOut   []float64 // SiLU output, dropout input
	preScale []float64 // dropout output, before the coupling scale
	scaled   []float64 // block output

	// Scratch for backward
	dScale []float64
	dAct   []float64
}

// CouplingNet maps a 16-dimensional input to a scalar output.
type CouplingNet struct {
	inSize  int
	hidden  int
	dropout float64

	blocks [3]*block
	out    *layer.Dense

	couplings     []float64
	couplingGrads []float64

	silu activations.SiLU

	// Saved forward state
	input  []float64
	gated  []float64
	meanH  float64
	output []float64

	gradInBuf []float64
}

// New creates a coupling network with the given input width, hidden size and
// dropout rate. All weight initialization and dropout masks derive from the
// seed, so construction is reproducible.
func New(inSize, hidden int, dropout float64, seed int64) *CouplingNet {
	rng := rand.New(rand.NewSource(seed))

	m := &CouplingNet{
		inSize:        inSize,
		hidden:        hidden,
		dropout:       dropout,
		couplings:     make([]float64, numCouplings),
		couplingGrads: make([]float64, numCouplings),
		input:         make([]float64, inSize),
		gated:         make([]float64, inSize),
		output:        make([]float64, 1),
		gradInBuf:     make([]float64, inSize),
	}

	// Coupling starting points: a small warp keeps the input gate away
	// from the cos zero crossing, the rest start at identity scale.
	m.couplings[TimeWarp] = 0.1
	m.couplings[QuantumCoupling] = 1.0
	m.couplings[RealityIntegrity] = 1.0
	m.couplings[PhaseCoherence] = 1.0

	in := inSize
	for b := range m.blocks {
		m.blocks[b] = &block{
			dense:    layer.NewDense(in, hidden, activations.Linear{}, rng),
			norm:     layer.NewLayerNorm(hidden, 1e-5, true),
			drop:     layer.NewDropout(dropout, hidden, rng),
			actIn:    make([]float64, hidden),
			actOut:   make([]float64, hidden),
			preScale: make([]float64, hidden),
			scaled:   make([]float64, hidden),
			dScale:   make([]float64, hidden),
			dAct:     make([]float64, hidden),
		}
		in = hidden
	}
	m.out = layer.NewDense(hidden, 1, activations.Linear{}, rng)

	return m
}

// SetTraining toggles dropout between training and inference behavior.
func (m *CouplingNet) SetTraining(training bool) {
	for _, b := range m.blocks {
		b.drop.SetTraining(training)
	}
}

// Forward computes the scalar prediction for one input vector.
//
// The input is first gated by sigmoid(phaseCoherence)*cos(timeWarp*pi),
// the real part of exp(i*timeWarp*pi), then passed through the three
// scaled blocks. The output adds tanh(mean(h))*realityIntegrity to the
// final linear projection.
func (m *CouplingNet) Forward(x []float64) []float64 {
	if len(x) != m.inSize {
		panic("CouplingNet: input size mismatch")
	}
	copy(m.input, x)

	gate := sigmoid(m.couplings[PhaseCoherence]) * math.Cos(m.couplings[TimeWarp]*math.Pi)
	for i := range x {
		m.gated[i] = x[i] * gate
	}

	h := m.gated
	for bi, b := range m.blocks {
		z := b.dense.Forward(h)
		n := b.norm.Forward(z)
		copy(b.actIn, n)

		for i := range b.actOut {
			b.actOut[i] = m.silu.Activate(b.actIn[i])
		}

		d := b.drop.Forward(b.actOut)
		copy(b.preScale, d)

		s := m.couplings[scaleFor[bi]]
		for i := range b.scaled {
			b.scaled[i] = b.preScale[i] * s
		}
		h = b.scaled
	}

	sum := 0.0
	for _, v := range h {
		sum += v
	}
	m.meanH = sum / float64(m.hidden)
	breach := math.Tanh(m.meanH)

	o := m.out.Forward(h)
	m.output[0] = o[0] + breach*m.couplings[RealityIntegrity]
	return m.output
}

// Backward accumulates gradients for all parameters, including the shared
// coupling scalars, from the loss gradient w.r.t. the scalar output.
// Must follow a Forward call on the same input.
func (m *CouplingNet) Backward(grad []float64) []float64 {
	g := grad[0]

	breach := math.Tanh(m.meanH)
	m.couplingGrads[RealityIntegrity] += g * breach

	dH := m.out.Backward([]float64{g})

	// Breach path: d(tanh(mean(h)))/dh_i = (1-tanh^2)/hidden
	db := g * m.couplings[RealityIntegrity] * (1 - breach*breach) / float64(m.hidden)
	for i := range dH {
		dH[i] += db
	}

	cur := dH
	for bi := len(m.blocks) - 1; bi >= 0; bi-- {
		b := m.blocks[bi]
		s := m.couplings[scaleFor[bi]]

		dot := 0.0
		for i := range cur {
			dot += cur[i] * b.preScale[i]
		}
		m.couplingGrads[scaleFor[bi]] += dot

		for i := range cur {
			b.dScale[i] = cur[i] * s
		}

		dd := b.drop.Backward(b.dScale)
		for i := range dd {
			b.dAct[i] = dd[i] * m.silu.Derivative(b.actIn[i])
		}

		dn := b.norm.Backward(b.dAct)
		cur = b.dense.Backward(dn)
	}

	// Input gate: gated_i = x_i * sigmoid(pc) * cos(tw*pi)
	dot := 0.0
	for i := range cur {
		dot += cur[i] * m.input[i]
	}
	sigP := sigmoid(m.couplings[PhaseCoherence])
	cosT := math.Cos(m.couplings[TimeWarp] * math.Pi)
	m.couplingGrads[PhaseCoherence] += dot * cosT * sigP * (1 - sigP)
	m.couplingGrads[TimeWarp] += dot * sigP * (-math.Pi * math.Sin(m.couplings[TimeWarp]*math.Pi))

	gate := sigP * cosT
	for i := range cur {
		m.gradInBuf[i] = cur[i] * gate
	}
	return m.gradInBuf
}

// ForwardBatch computes predictions for a batch; the result has one row per
// input, each of length 1.
func (m *CouplingNet) ForwardBatch(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		y := m.Forward(x[i])
		out[i] = []float64{y[0]}
	}
	return out
}

// Tensor is a named view of a live parameter slice and its gradient buffer.
// Decay marks tensors that take weight decay (dense weights only).
type Tensor struct {
	Name   string
	Params []float64
	Grads  []float64
	Decay  bool
}

// Tensors returns views over every parameter in a stable order.
func (m *CouplingNet) Tensors() []Tensor {
	ts := make([]Tensor, 0, 3*4+3)
	for bi, b := range m.blocks {
		prefix := fmt.Sprintf("blocks.%d", bi)
		ts = append(ts,
			Tensor{prefix + ".dense.weight", b.dense.Weights(), b.dense.WeightGradients(), true},
			Tensor{prefix + ".dense.bias", b.dense.Biases(), b.dense.BiasGradients(), false},
			Tensor{prefix + ".norm.gamma", b.norm.Gamma(), b.norm.GammaGradients(), false},
			Tensor{prefix + ".norm.beta", b.norm.Beta(), b.norm.BetaGradients(), false},
		)
	}
	ts = append(ts,
		Tensor{"out.weight", m.out.Weights(), m.out.WeightGradients(), true},
		Tensor{"out.bias", m.out.Biases(), m.out.BiasGradients(), false},
		Tensor{"couplings", m.couplings, m.couplingGrads, false},
	)
	return ts
}

// ClearGradients zeroes every gradient buffer.
func (m *CouplingNet) ClearGradients() {
	for _, b := range m.blocks {
		b.dense.ClearGradients()
		b.norm.ClearGradients()
	}
	m.out.ClearGradients()
	for i := range m.couplingGrads {
		m.couplingGrads[i] = 0
	}
}

// ScaleGradients multiplies every gradient by f (batch averaging).
func (m *CouplingNet) ScaleGradients(f float64) {
	for _, t := range m.Tensors() {
		for i := range t.Grads {
			t.Grads[i] *= f
		}
	}
}

// NumParams returns the total learnable parameter count.
func (m *CouplingNet) NumParams() int {
	total := 0
	for _, t := range m.Tensors() {
		total += len(t.Params)
	}
	return total
}

// InSize returns the input width.
func (m *CouplingNet) InSize() int { return m.inSize }

// Hidden returns the hidden width.
func (m *CouplingNet) Hidden() int { return m.hidden }

// TimeWarpValue returns the current time warp coupling.
func (m *CouplingNet) TimeWarpValue() float64 { return m.couplings[TimeWarp] }

// QuantumCouplingValue returns the current quantum coupling.
func (m *CouplingNet) QuantumCouplingValue() float64 { return m.couplings[QuantumCoupling] }

// RealityIntegrityValue returns the current reality integrity coupling.
func (m *CouplingNet) RealityIntegrityValue() float64 { return m.couplings[RealityIntegrity] }

// PhaseCoherenceValue returns the current phase coherence coupling.
func (m *CouplingNet) PhaseCoherenceValue() float64 { return m.couplings[PhaseCoherence] }

// CouplingGradients returns the live coupling gradient buffer.
func (m *CouplingNet) CouplingGradients() []float64 { return m.couplingGrads }

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
