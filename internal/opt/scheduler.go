package opt

import "math"

// Scheduler defines the interface for learning rate schedulers.
type Scheduler interface {
	Step()
	GetLR() float64
}

// OneCycle implements the one-cycle learning rate policy: a linear ramp from
// maxLR/divFactor up to maxLR over the warmup fraction of training, followed
// by a cosine anneal down to maxLR/finalDivFactor.
type OneCycle struct {
	optimizer  Optimizer
	maxLR      float64
	totalSteps int

	warmupFrac     float64
	divFactor      float64
	finalDivFactor float64

	lastStep int
}

// NewOneCycle creates a OneCycle scheduler over totalSteps optimizer steps.
// The optimizer learning rate is set to the initial (warmup start) value
// immediately.
func NewOneCycle(optimizer Optimizer, maxLR float64, totalSteps int) *OneCycle {
	s := &OneCycle{
		optimizer:      optimizer,
		maxLR:          maxLR,
		totalSteps:     totalSteps,
		warmupFrac:     0.3,
		divFactor:      25.0,
		finalDivFactor: 100.0,
	}
	optimizer.SetLR(s.lrAt(0))
	return s
}

// Step advances the schedule by one optimizer step.
func (s *OneCycle) Step() {
	if s.lastStep < s.totalSteps {
		s.lastStep++
	}
	s.optimizer.SetLR(s.lrAt(s.lastStep))
}

// GetLR returns the learning rate for the current step.
func (s *OneCycle) GetLR() float64 {
	return s.lrAt(s.lastStep)
}

func (s *OneCycle) lrAt(step int) float64 {
	warmupSteps := int(s.warmupFrac * float64(s.totalSteps))
	if warmupSteps < 1 {
		warmupSteps = 1
	}

	initial := s.maxLR / s.divFactor
	final := s.maxLR / s.finalDivFactor

	if step <= warmupSteps {
		frac := float64(step) / float64(warmupSteps)
		return initial + (s.maxLR-initial)*frac
	}

	annealSteps := s.totalSteps - warmupSteps
	if annealSteps < 1 {
		return final
	}
	frac := float64(step-warmupSteps) / float64(annealSteps)
	if frac > 1 {
		frac = 1
	}
	return final + (s.maxLR-final)*0.5*(1+math.Cos(math.Pi*frac))
}
