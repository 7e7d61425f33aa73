package trainer

import "math"

// EpochMetrics is one per-epoch record of scalar training metrics.
type EpochMetrics struct {
	Epoch            int
	TrainLoss        float64
	ValLoss          float64
	ValMAE           float64
	TimeWarp         float64
	QuantumCoupling  float64
	RealityIntegrity float64
	PhaseCoherence   float64
	LearningRate     float64
}

// History is the ordered per-epoch metrics log. Records are appended once
// per epoch and read by callbacks and plot renderers.
type History struct {
	records []EpochMetrics
}

// Append adds a record to the log.
func (h *History) Append(m EpochMetrics) {
	h.records = append(h.records, m)
}

// Len returns the number of recorded epochs.
func (h *History) Len() int {
	return len(h.records)
}

// At returns the i-th record.
func (h *History) At(i int) EpochMetrics {
	return h.records[i]
}

// Records returns the full ordered log.
func (h *History) Records() []EpochMetrics {
	return h.records
}

// Last returns the most recent record; ok is false when the log is empty.
func (h *History) Last() (EpochMetrics, bool) {
	if len(h.records) == 0 {
		return EpochMetrics{}, false
	}
	return h.records[len(h.records)-1], true
}

// BestValLoss returns the lowest recorded validation loss; ok is false when
// the log is empty or contains only NaN validation losses.
func (h *History) BestValLoss() (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, r := range h.records {
		if r.ValLoss < best {
			best = r.ValLoss
			found = true
		}
	}
	return best, found
}
