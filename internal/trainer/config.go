package trainer

// Config holds the training hyperparameters. It is an in-memory record;
// no config file parsing happens in the core.
type Config struct {
	BatchSize     int
	LearningRate  float64 // peak one-cycle learning rate
	WeightDecay   float64
	HiddenDim     int
	Epochs        int
	StepsPerEpoch int // 0 means one full pass over the training set
	Seed          int64

	CheckpointPath string
	LogEvery       int
	PlotEvery      int
	PlotDir        string
}

// DefaultConfig returns the standard training setup.
func DefaultConfig() Config {
	return Config{
		BatchSize:      32,
		LearningRate:   0.01,
		WeightDecay:    1e-4,
		HiddenDim:      64,
		Epochs:         100,
		StepsPerEpoch:  0,
		Seed:           42,
		CheckpointPath: "best_model.gob",
		LogEvery:       10,
		PlotEvery:      10,
		PlotDir:        "plots",
	}
}
