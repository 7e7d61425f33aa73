// Package trainer drives epochs of optimization over the coupling network:
// batched MSE training with coupling regularization, gradient clipping, a
// one-cycle schedule, per-epoch metrics, and callback-driven checkpointing
// and plotting.
package trainer

import (
	"github.com/sumlabs/crystalnet/internal/dataset"
	"github.com/sumlabs/crystalnet/internal/loss"
	"github.com/sumlabs/crystalnet/internal/model"
	"github.com/sumlabs/crystalnet/internal/opt"
)

// maxGradNorm bounds the global gradient norm per optimization step.
const maxGradNorm = 1.0

// couplingRegWeight penalizes large timeWarp and quantumCoupling values:
// loss += couplingRegWeight * (timeWarp^2 + quantumCoupling^2).
const couplingRegWeight = 0.01

// Trainer runs the training loop over a coupling network.
type Trainer struct {
	cfg       Config
	model     *model.CouplingNet
	mse       loss.MSE
	mae       loss.L1
	optimizer *opt.AdamW
	scheduler *opt.OneCycle
	history   *History
	callbacks []Callback

	// Pre-allocated per-sample buffers
	gradBuf   []float64
	targetBuf []float64
}

// New creates a trainer for the given model. The one-cycle schedule is
// created in Fit once the total step count is known.
func New(cfg Config, m *model.CouplingNet) *Trainer {
	return &Trainer{
		cfg:       cfg,
		model:     m,
		optimizer: opt.NewAdamW(cfg.LearningRate, cfg.WeightDecay),
		history:   &History{},
		gradBuf:   make([]float64, 1),
		targetBuf: make([]float64, 1),
	}
}

// AddCallback registers a training observer.
func (t *Trainer) AddCallback(c Callback) {
	t.callbacks = append(t.callbacks, c)
}

// Model returns the model under training.
func (t *Trainer) Model() *model.CouplingNet {
	return t.model
}

// History returns the per-epoch metrics log.
func (t *Trainer) History() *History {
	return t.history
}

// Config returns the training configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Fit trains for the configured number of epochs. The training set is
// reshuffled every epoch; the validation set is evaluated in order with
// dropout disabled. Numeric instability (NaN loss) propagates into the
// metrics and checkpoint decisions unguarded.
func (t *Trainer) Fit(train, val *dataset.Dataset) {
	loader := dataset.NewLoader(train, t.cfg.BatchSize, true, t.cfg.Seed)

	stepsPerEpoch := loader.NumBatches()
	if t.cfg.StepsPerEpoch > 0 && t.cfg.StepsPerEpoch < stepsPerEpoch {
		stepsPerEpoch = t.cfg.StepsPerEpoch
	}
	t.scheduler = opt.NewOneCycle(t.optimizer, t.cfg.LearningRate, t.cfg.Epochs*stepsPerEpoch)

	for _, cb := range t.callbacks {
		cb.OnTrainBegin(t)
	}

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		t.model.SetTraining(true)

		epochLoss := 0.0
		steps := 0
		for batch := range loader.Epoch() {
			if steps >= stepsPerEpoch {
				continue // drain the loader so its workers exit
			}
			epochLoss += t.trainStep(batch)
			steps++
		}
		trainLoss := epochLoss / float64(steps)

		valLoss, valMAE := t.Evaluate(val)

		m := EpochMetrics{
			Epoch:            epoch,
			TrainLoss:        trainLoss,
			ValLoss:          valLoss,
			ValMAE:           valMAE,
			TimeWarp:         t.model.TimeWarpValue(),
			QuantumCoupling:  t.model.QuantumCouplingValue(),
			RealityIntegrity: t.model.RealityIntegrityValue(),
			PhaseCoherence:   t.model.PhaseCoherenceValue(),
			LearningRate:     t.optimizer.GetLR(),
		}
		t.history.Append(m)

		for _, cb := range t.callbacks {
			cb.OnEpochEnd(epoch, m, t)
		}
	}

	for _, cb := range t.callbacks {
		cb.OnTrainEnd(t)
	}
}

// trainStep runs forward/backward over one batch, averages the accumulated
// gradients, adds the coupling regularization, clips the global gradient
// norm, and applies one optimizer and scheduler step. Returns the batch
// training loss including the regularization term.
func (t *Trainer) trainStep(batch dataset.Batch) float64 {
	t.model.ClearGradients()

	total := 0.0
	for i := range batch.X {
		pred := t.model.Forward(batch.X[i])
		t.targetBuf[0] = batch.Y[i]

		total += t.mse.Forward(pred, t.targetBuf)
		t.mse.BackwardInPlace(pred, t.targetBuf, t.gradBuf)
		t.model.Backward(t.gradBuf)
	}

	n := float64(len(batch.X))
	t.model.ScaleGradients(1 / n)

	// Coupling regularization contributes 2*w*c to the scalar gradients.
	tw := t.model.TimeWarpValue()
	qc := t.model.QuantumCouplingValue()
	reg := couplingRegWeight * (tw*tw + qc*qc)
	cg := t.model.CouplingGradients()
	cg[model.TimeWarp] += 2 * couplingRegWeight * tw
	cg[model.QuantumCoupling] += 2 * couplingRegWeight * qc

	tensors := t.model.Tensors()
	grads := make([][]float64, len(tensors))
	for i, tensor := range tensors {
		grads[i] = tensor.Grads
	}
	opt.ClipGradNorm(grads, maxGradNorm)

	t.optimizer.BeginStep()
	for _, tensor := range tensors {
		t.optimizer.StepInPlace(tensor.Name, tensor.Params, tensor.Grads, tensor.Decay)
	}
	t.scheduler.Step()

	return total/n + reg
}

// Evaluate computes the mean MSE and MAE over a dataset with dropout
// disabled and no gradient accumulation.
func (t *Trainer) Evaluate(ds *dataset.Dataset) (mse, mae float64) {
	t.model.SetTraining(false)

	n := ds.Len()
	for i := 0; i < n; i++ {
		x, y := ds.At(i)
		pred := t.model.Forward(x)
		t.targetBuf[0] = y
		mse += t.mse.Forward(pred, t.targetBuf)
		mae += t.mae.Forward(pred, t.targetBuf)
	}
	return mse / float64(n), mae / float64(n)
}
