// Package viz renders training curves with gonum/plot. It observes the
// trainer through the callback interface so the numeric core stays headless.
package viz

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sumlabs/crystalnet/internal/trainer"
)

// PlotCallback renders the training plots every Interval epochs.
type PlotCallback struct {
	trainer.BaseCallback
	Dir      string
	Interval int
}

// NewPlotCallback creates a plot observer writing PNG files into dir.
func NewPlotCallback(dir string, interval int) *PlotCallback {
	return &PlotCallback{Dir: dir, Interval: interval}
}

func (c *PlotCallback) OnEpochEnd(epoch int, m trainer.EpochMetrics, t *trainer.Trainer) {
	if c.Interval <= 0 || epoch%c.Interval != 0 {
		return
	}
	if err := Render(t.History(), c.Dir); err != nil {
		fmt.Printf("PlotCallback: %v\n", err)
	}
}

func (c *PlotCallback) OnTrainEnd(t *trainer.Trainer) {
	if err := Render(t.History(), c.Dir); err != nil {
		fmt.Printf("PlotCallback: %v\n", err)
	}
}

// Render writes the four training plots (losses, coupling trajectories,
// learning rate, validation MAE) into dir, creating it if needed.
func Render(h *trainer.History, dir string) error {
	records := h.Records()
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot dir: %w", err)
	}

	if err := renderLosses(records, filepath.Join(dir, "loss.png")); err != nil {
		return err
	}
	if err := renderCouplings(records, filepath.Join(dir, "couplings.png")); err != nil {
		return err
	}
	if err := renderSeries(records, "Learning Rate", "lr",
		func(r trainer.EpochMetrics) float64 { return r.LearningRate },
		filepath.Join(dir, "lr.png")); err != nil {
		return err
	}
	return renderSeries(records, "Validation MAE", "mae",
		func(r trainer.EpochMetrics) float64 { return r.ValMAE },
		filepath.Join(dir, "val_mae.png"))
}

func series(records []trainer.EpochMetrics, value func(trainer.EpochMetrics) float64) plotter.XYs {
	xys := make(plotter.XYs, len(records))
	for i, r := range records {
		xys[i].X = float64(r.Epoch)
		xys[i].Y = value(r)
	}
	return xys
}

func renderLosses(records []trainer.EpochMetrics, path string) error {
	p := plot.New()
	p.Title.Text = "Training and Validation Loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	lines := []struct {
		name  string
		value func(trainer.EpochMetrics) float64
	}{
		{"train", func(r trainer.EpochMetrics) float64 { return r.TrainLoss }},
		{"val", func(r trainer.EpochMetrics) float64 { return r.ValLoss }},
	}
	for i, l := range lines {
		line, err := plotter.NewLine(series(records, l.value))
		if err != nil {
			return fmt.Errorf("failed to build %s loss line: %w", l.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	return save(p, path)
}

func renderCouplings(records []trainer.EpochMetrics, path string) error {
	p := plot.New()
	p.Title.Text = "Coupling Parameters"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "value"

	lines := []struct {
		name  string
		value func(trainer.EpochMetrics) float64
	}{
		{"time_warp", func(r trainer.EpochMetrics) float64 { return r.TimeWarp }},
		{"quantum_coupling", func(r trainer.EpochMetrics) float64 { return r.QuantumCoupling }},
		{"reality_integrity", func(r trainer.EpochMetrics) float64 { return r.RealityIntegrity }},
		{"phase_coherence", func(r trainer.EpochMetrics) float64 { return r.PhaseCoherence }},
	}
	for i, l := range lines {
		line, err := plotter.NewLine(series(records, l.value))
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", l.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	return save(p, path)
}

func renderSeries(records []trainer.EpochMetrics, title, ylabel string, value func(trainer.EpochMetrics) float64, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = ylabel

	line, err := plotter.NewLine(series(records, value))
	if err != nil {
		return fmt.Errorf("failed to build %s line: %w", title, err)
	}
	p.Add(line)

	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
