package trainer

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sumlabs/crystalnet/internal/dataset"
	"github.com/sumlabs/crystalnet/internal/model"
)

func tinyConfig() Config {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.Epochs = 2
	cfg.HiddenDim = 8
	cfg.LearningRate = 0.001
	return cfg
}

func TestFitRecordsMetricsPerEpoch(t *testing.T) {
	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)

	ds := dataset.New(8, 1)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	h := tr.History()
	if h.Len() != cfg.Epochs {
		t.Fatalf("history has %d records, expected %d", h.Len(), cfg.Epochs)
	}

	for i := 0; i < h.Len(); i++ {
		r := h.At(i)
		if r.Epoch != i+1 {
			t.Errorf("record %d has epoch %d", i, r.Epoch)
		}
		if math.IsNaN(r.TrainLoss) || math.IsNaN(r.ValLoss) {
			t.Errorf("epoch %d has NaN losses", r.Epoch)
		}
		if r.LearningRate <= 0 {
			t.Errorf("epoch %d learning rate = %f", r.Epoch, r.LearningRate)
		}
	}
}

func TestBestValLossTrajectoryNonIncreasing(t *testing.T) {
	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)

	ds := dataset.New(8, 2)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	// The running best over epochs must never increase.
	records := tr.History().Records()
	bests := make([]float64, len(records))
	best := math.Inf(1)
	for i, r := range records {
		best = math.Min(best, r.ValLoss)
		bests[i] = best
	}
	for i := 1; i < len(bests); i++ {
		if bests[i] > bests[i-1] {
			t.Fatalf("best val loss increased at epoch %d: %v > %v", i+1, bests[i], bests[i-1])
		}
	}
	if math.IsInf(bests[len(bests)-1], 1) {
		t.Fatal("no finite validation loss recorded")
	}
}

func TestCheckpointWrittenOnImprovement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "best_model.gob")

	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)
	ckpt := NewModelCheckpoint(path)
	tr.AddCallback(ckpt)

	ds := dataset.New(8, 3)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	// The first epoch always improves on +Inf, so the file must exist and
	// the callback's best must equal the history minimum.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("checkpoint not written: %v", err)
	}
	want, ok := tr.History().BestValLoss()
	if !ok {
		t.Fatal("history has no finite validation loss")
	}
	if ckpt.BestLoss() != want {
		t.Errorf("checkpoint best = %f, history best = %f", ckpt.BestLoss(), want)
	}

	// The persisted snapshot must be loadable into the same shape.
	restored, err := model.Load(path, cfg.Seed)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Hidden() != cfg.HiddenDim {
		t.Errorf("restored hidden = %d, expected %d", restored.Hidden(), cfg.HiddenDim)
	}
}

func TestCheckpointNotRewrittenWithoutImprovement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "best_model.gob")

	ckpt := NewModelCheckpoint(path)
	ckpt.bestLoss = 0 // nothing can improve on a zero loss

	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)
	tr.AddCallback(ckpt)

	ds := dataset.New(8, 4)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("checkpoint written despite no improvement")
	}
}

func TestGradNormClippedAfterTraining(t *testing.T) {
	cfg := tinyConfig()
	cfg.LearningRate = 0.1 // large steps make large raw gradients likely
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)

	ds := dataset.New(8, 5)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	// The gradient buffers still hold the final batch's post-clip,
	// post-regularization gradients.
	total := 0.0
	for _, tensor := range m.Tensors() {
		for _, g := range tensor.Grads {
			total += g * g
		}
	}
	if norm := math.Sqrt(total); norm > maxGradNorm+1e-6 {
		t.Errorf("post-clip gradient norm = %f, exceeds %f", norm, maxGradNorm)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)

	ds := dataset.New(16, 6)
	first, firstMAE := tr.Evaluate(ds)
	second, secondMAE := tr.Evaluate(ds)

	if first != second || firstMAE != secondMAE {
		t.Errorf("evaluation not deterministic: (%v, %v) vs (%v, %v)",
			first, firstMAE, second, secondMAE)
	}
}

func TestStepsPerEpochLimit(t *testing.T) {
	cfg := tinyConfig()
	cfg.Epochs = 1
	cfg.StepsPerEpoch = 1
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)

	ds := dataset.New(16, 7)
	train, val := ds.Split(0.75)
	tr.Fit(train, val) // must terminate despite more batches than steps

	if tr.History().Len() != 1 {
		t.Fatalf("history has %d records, expected 1", tr.History().Len())
	}
}

func TestCSVLoggerWritesRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "training_log.csv")

	cfg := tinyConfig()
	m := model.New(dataset.FeatureWidth, cfg.HiddenDim, 0.1, cfg.Seed)
	tr := New(cfg, m)
	tr.AddCallback(NewCSVLogger(path, false))

	ds := dataset.New(8, 8)
	train, val := ds.Split(0.5)
	tr.Fit(train, val)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	// Header plus one row per epoch.
	if len(rows) != 1+cfg.Epochs {
		t.Fatalf("log has %d rows, expected %d", len(rows), 1+cfg.Epochs)
	}
	if rows[0][0] != "epoch" {
		t.Errorf("header starts with %q, expected \"epoch\"", rows[0][0])
	}
}
