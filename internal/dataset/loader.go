package dataset

import "math/rand"

// loaderWorkers is the fixed size of the batch-assembly pool. Two workers
// are enough to overlap batch construction with the training step.
const loaderWorkers = 2

// Batch is one mini-batch of features and targets.
type Batch struct {
	X [][]float64
	Y []float64
}

// Loader yields mini-batches from a dataset, optionally reshuffling the
// sample order between epochs. Batches within an epoch arrive in a fixed
// order; shuffling only permutes which samples land in which batch.
type Loader struct {
	ds        *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader creates a loader. With shuffle enabled the sample order is
// re-drawn from the seeded RNG at the start of every epoch, so a fixed seed
// reproduces the exact batch sequence across runs.
func NewLoader(ds *Dataset, batchSize int, shuffle bool, seed int64) *Loader {
	if batchSize < 1 {
		panic("Loader: batch size must be positive")
	}
	return &Loader{
		ds:        ds,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// NumBatches returns the number of batches per epoch.
func (l *Loader) NumBatches() int {
	return (l.ds.Len() + l.batchSize - 1) / l.batchSize
}

// Epoch returns a channel producing one epoch of batches in order.
// Batches are assembled ahead of the consumer by a small worker pool; order
// is preserved by handing each batch its own slot.
func (l *Loader) Epoch() <-chan Batch {
	n := l.ds.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	numBatches := l.NumBatches()
	slots := make([]chan Batch, numBatches)
	for i := range slots {
		slots[i] = make(chan Batch, 1)
	}

	jobs := make(chan int)
	for w := 0; w < loaderWorkers; w++ {
		go func() {
			for b := range jobs {
				start := b * l.batchSize
				end := start + l.batchSize
				if end > n {
					end = n
				}

				batch := Batch{
					X: make([][]float64, 0, end-start),
					Y: make([]float64, 0, end-start),
				}
				for _, idx := range order[start:end] {
					x, y := l.ds.At(idx)
					batch.X = append(batch.X, x)
					batch.Y = append(batch.Y, y)
				}
				slots[b] <- batch
			}
		}()
	}

	go func() {
		for b := 0; b < numBatches; b++ {
			jobs <- b
		}
		close(jobs)
	}()

	out := make(chan Batch, loaderWorkers)
	go func() {
		for b := 0; b < numBatches; b++ {
			out <- <-slots[b]
		}
		close(out)
	}()

	return out
}
