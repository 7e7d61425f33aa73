package main

import (
	"fmt"
	"math"

	"github.com/sumlabs/crystalnet/internal/dataset"
	"github.com/sumlabs/crystalnet/internal/model"
	"github.com/sumlabs/crystalnet/internal/trainer"
	"github.com/sumlabs/crystalnet/internal/viz"
)

func main() {
	fmt.Println("=== Coupling Network Training ===")

	cfg := trainer.DefaultConfig()

	fmt.Printf("Architecture: %d-%d-%d-%d-1 with layer norm, SiLU and dropout\n",
		dataset.FeatureWidth, cfg.HiddenDim, cfg.HiddenDim, cfg.HiddenDim)
	fmt.Println("Loss function: MSE + coupling regularization")
	fmt.Printf("Optimizer: AdamW (lr %.4g, weight decay %.4g) with one-cycle schedule\n",
		cfg.LearningRate, cfg.WeightDecay)

	// Synthetic dataset, split 80/20 into train and validation
	ds := dataset.New(2000, cfg.Seed)
	train, val := ds.Split(0.8)
	fmt.Printf("Dataset: %d train / %d validation samples\n", train.Len(), val.Len())

	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	fmt.Printf("Parameters: %d\n", m.NumParams())

	t := trainer.New(cfg, m)
	checkpoint := trainer.NewModelCheckpoint(cfg.CheckpointPath)
	t.AddCallback(trainer.Logger{Interval: cfg.LogEvery})
	t.AddCallback(trainer.NewCSVLogger("training_metrics.csv", false))
	t.AddCallback(checkpoint)
	t.AddCallback(viz.NewPlotCallback(cfg.PlotDir, cfg.PlotEvery))

	t.Fit(train, val)

	if last, ok := t.History().Last(); ok {
		fmt.Printf("\nFinal couplings: time_warp=%.4f quantum_coupling=%.4f reality_integrity=%.4f phase_coherence=%.4f\n",
			last.TimeWarp, last.QuantumCoupling, last.RealityIntegrity, last.PhaseCoherence)
	}
	if best, ok := t.History().BestValLoss(); ok {
		fmt.Printf("Best validation loss: %.6f\n", best)
	}

	// Reload the checkpointed model and confirm it evaluates cleanly.
	if !math.IsInf(checkpoint.BestLoss(), 1) {
		restored, err := model.Load(cfg.CheckpointPath, cfg.Seed)
		if err != nil {
			fmt.Printf("Error loading checkpoint: %v\n", err)
			return
		}
		rt := trainer.New(cfg, restored)
		mse, mae := rt.Evaluate(val)
		fmt.Printf("Restored checkpoint: val mse = %.6f, val mae = %.6f\n", mse, mae)
	}
}
