package trainer

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Callback defines the interface for training observers.
type Callback interface {
	OnTrainBegin(t *Trainer)
	OnTrainEnd(t *Trainer)
	OnEpochEnd(epoch int, m EpochMetrics, t *Trainer)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(t *Trainer)                       {}
func (c BaseCallback) OnTrainEnd(t *Trainer)                         {}
func (c BaseCallback) OnEpochEnd(epoch int, m EpochMetrics, t *Trainer) {}

// ModelCheckpoint saves the model after every epoch whose validation loss
// improves on the best seen so far. A NaN validation loss never improves,
// so the checkpoint is left untouched once losses go non-finite.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	bestLoss float64
}

// NewModelCheckpoint creates a best-validation-loss checkpoint callback.
func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		bestLoss: math.Inf(1),
	}
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, m EpochMetrics, t *Trainer) {
	if m.ValLoss < c.bestLoss {
		c.bestLoss = m.ValLoss
		if err := t.Model().Save(c.Filename); err != nil {
			fmt.Printf("Error saving checkpoint: %v\n", err)
		} else {
			fmt.Printf("Checkpoint saved: val loss %.6f is new best\n", m.ValLoss)
		}
	}
}

// BestLoss returns the best validation loss seen so far.
func (c *ModelCheckpoint) BestLoss() float64 {
	return c.bestLoss
}

// Logger prints training progress to the console every Interval epochs.
type Logger struct {
	BaseCallback
	Interval int
}

func (c Logger) OnEpochEnd(epoch int, m EpochMetrics, t *Trainer) {
	if c.Interval > 0 && epoch%c.Interval == 0 {
		fmt.Printf("Epoch %d: train = %.6f, val = %.6f, lr = %.6f\n",
			epoch, m.TrainLoss, m.ValLoss, m.LearningRate)
	}
}

// CSVLogger appends one row of metrics per epoch to a CSV file.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

func (c *CSVLogger) OnTrainBegin(t *Trainer) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		fmt.Printf("CSVLogger: failed to open file %s: %v\n", c.Filename, err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.writer.Write([]string{
			"epoch", "train_loss", "val_loss", "val_mae",
			"time_warp", "quantum_coupling", "reality_integrity", "phase_coherence",
			"lr", "time_seconds",
		})
		c.writer.Flush()
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, m EpochMetrics, t *Trainer) {
	if c.writer == nil {
		return
	}

	elapsed := time.Since(c.start).Seconds()
	record := []string{
		strconv.Itoa(epoch),
		fmt.Sprintf("%.6f", m.TrainLoss),
		fmt.Sprintf("%.6f", m.ValLoss),
		fmt.Sprintf("%.6f", m.ValMAE),
		fmt.Sprintf("%.6f", m.TimeWarp),
		fmt.Sprintf("%.6f", m.QuantumCoupling),
		fmt.Sprintf("%.6f", m.RealityIntegrity),
		fmt.Sprintf("%.6f", m.PhaseCoherence),
		fmt.Sprintf("%.6f", m.LearningRate),
		fmt.Sprintf("%.2f", elapsed),
	}

	if err := c.writer.Write(record); err != nil {
		fmt.Printf("CSVLogger: failed to write record: %v\n", err)
	}
	c.writer.Flush()
}

func (c *CSVLogger) OnTrainEnd(t *Trainer) {
	if c.file != nil {
		c.writer.Flush()
		c.file.Close()
		c.file = nil
		c.writer = nil
	}
}
