package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sumlabs/crystalnet/internal/trainer"
)

func sampleHistory(epochs int) *trainer.History {
	h := &trainer.History{}
	for e := 1; e <= epochs; e++ {
		h.Append(trainer.EpochMetrics{
			Epoch:            e,
			TrainLoss:        1.0 / float64(e),
			ValLoss:          1.2 / float64(e),
			ValMAE:           0.8 / float64(e),
			TimeWarp:         0.1 + 0.01*float64(e),
			QuantumCoupling:  1.0 - 0.005*float64(e),
			RealityIntegrity: 1.0,
			PhaseCoherence:   1.0 + 0.002*float64(e),
			LearningRate:     0.01 * float64(e),
		})
	}
	return h
}

func TestRenderWritesAllPlots(t *testing.T) {
	dir := t.TempDir()
	if err := Render(sampleHistory(5), dir); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, name := range []string{"loss.png", "couplings.png", "lr.png", "val_mae.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected plot %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("plot %s is empty", name)
		}
	}
}

func TestRenderEmptyHistoryIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	if err := Render(&trainer.History{}, dir); err != nil {
		t.Fatalf("Render on empty history failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected no plot dir for empty history")
	}
}

func TestPlotCallbackInterval(t *testing.T) {
	dir := t.TempDir()
	cb := NewPlotCallback(dir, 10)

	tr := trainer.New(trainer.Config{PlotDir: dir}, nil)
	for e := 1; e <= 9; e++ {
		cb.OnEpochEnd(e, trainer.EpochMetrics{Epoch: e}, tr)
	}
	if _, err := os.Stat(filepath.Join(dir, "loss.png")); !os.IsNotExist(err) {
		t.Errorf("callback rendered before the interval elapsed")
	}
}
