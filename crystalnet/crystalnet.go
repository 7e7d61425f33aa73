package crystalnet

import (
	"github.com/sumlabs/crystalnet/internal/dataset"
	"github.com/sumlabs/crystalnet/internal/model"
	"github.com/sumlabs/crystalnet/internal/stakesim"
	"github.com/sumlabs/crystalnet/internal/trainer"
	"github.com/sumlabs/crystalnet/internal/viz"
)

// Re-export common types and functions for easier access
type (
	Model        = model.CouplingNet
	Dataset      = dataset.Dataset
	Loader       = dataset.Loader
	Batch        = dataset.Batch
	Trainer      = trainer.Trainer
	Config       = trainer.Config
	Callback     = trainer.Callback
	EpochMetrics = trainer.EpochMetrics
	History      = trainer.History
)

// FeatureWidth is the number of input features per sample.
const FeatureWidth = dataset.FeatureWidth

// Model creation
func NewModel(inSize, hidden int, dropout float64, seed int64) *Model {
	return model.New(inSize, hidden, dropout, seed)
}

// Datasets
func NewDataset(n int, seed int64) *Dataset {
	return dataset.New(n, seed)
}

func NewLoader(ds *Dataset, batchSize int, shuffle bool, seed int64) *Loader {
	return dataset.NewLoader(ds, batchSize, shuffle, seed)
}

// Training
func DefaultConfig() Config {
	return trainer.DefaultConfig()
}

func NewTrainer(cfg Config, m *Model) *Trainer {
	return trainer.New(cfg, m)
}

// Callbacks
func Logger(interval int) trainer.Logger {
	return trainer.Logger{Interval: interval}
}

func ModelCheckpoint(filename string) *trainer.ModelCheckpoint {
	return trainer.NewModelCheckpoint(filename)
}

func CSVLogger(filename string, append bool) *trainer.CSVLogger {
	return trainer.NewCSVLogger(filename, append)
}

func PlotCallback(dir string, interval int) trainer.Callback {
	return viz.NewPlotCallback(dir, interval)
}

// Model Persistence
func Load(filename string, seed int64) (*Model, error) {
	return model.Load(filename, seed)
}

// Stake simulation
type (
	SimConfig  = stakesim.Config
	BlockStats = stakesim.BlockStats
)

func DefaultSimConfig() SimConfig {
	return stakesim.DefaultConfig()
}

func RunSimulation(cfg SimConfig, blocks int) []BlockStats {
	return stakesim.Run(cfg, blocks)
}
