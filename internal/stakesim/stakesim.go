// Package stakesim simulates a proof-of-stake validator network whose
// rewards and slashing are driven by phase coherence across the validator
// set and golden-ratio stake proportions.
package stakesim

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// Phi is the golden ratio, the proportion constant for stake
// distribution, utility, and reward scaling.
var Phi = (1 + math.Sqrt(5)) / 2

// Config holds the network and economic parameters of the simulation.
type Config struct {
	NumValidators      int
	QuantumCoupling    float64
	BlockTime          float64
	TotalSupply        float64
	StabilityThreshold float64
	MaxInflationRate   float64
	PhaseNoiseStd      float64
	Seed               int64
}

// DefaultConfig mirrors the reference network: 20 validators, a near-unit
// phase coupling, and inflation capped at 0.01% per block.
func DefaultConfig() Config {
	return Config{
		NumValidators:      20,
		QuantumCoupling:    0.99999,
		BlockTime:          0.01,
		TotalSupply:        1_000_000,
		StabilityThreshold: 0.95,
		MaxInflationRate:   0.0001,
		PhaseNoiseStd:      0.01,
		Seed:               42,
	}
}

// Validator is a staking participant with an oscillator phase. Rewards
// compound into the stake; slashes are tracked cumulatively.
type Validator struct {
	Stake   float64
	Rewards float64
	Slashes float64
	Phase   float64
	Utility float64
}

// BlockStats summarizes one simulated block.
type BlockStats struct {
	Coherence    float64
	Utility      float64
	TotalRewards float64
	TotalSlashed float64
	TotalStake   float64
	StakeRatio   float64
}

// Network is a set of validators evolving under coupled phase dynamics.
type Network struct {
	cfg        Config
	validators []Validator
	totalStake float64
	rng        *rand.Rand
}

// NewNetwork seeds validators with a phi-based stake distribution: each
// validator receives totalSupply/(phi*n), with every second validator
// holding an extra 1/phi share.
func NewNetwork(cfg Config) *Network {
	n := &Network{
		cfg:        cfg,
		validators: make([]Validator, cfg.NumValidators),
		totalStake: cfg.TotalSupply,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
	stakeUnit := cfg.TotalSupply * (1 / Phi) / float64(cfg.NumValidators)
	for i := range n.validators {
		n.validators[i].Stake = stakeUnit * (1 + float64(i%2)*(1/Phi))
	}
	return n
}

// Validators returns the current validator set.
func (n *Network) Validators() []Validator {
	return n.validators
}

// TotalStake returns the stake summed over all validators.
func (n *Network) TotalStake() float64 {
	return n.totalStake
}

// Coherence measures phase alignment across the validator set as the
// magnitude of the mean phasor |mean(e^(i*phase))|. It is 1 when all
// phases agree and approaches 0 as they scatter.
func (n *Network) Coherence() float64 {
	var sum complex128
	for i := range n.validators {
		sum += cmplx.Exp(complex(0, n.validators[i].Phase))
	}
	mean := sum / complex(float64(len(n.validators)), 0)
	return cmplx.Abs(mean)
}

// Utility combines coherence with how closely a stake ratio tracks the
// optimal proportion 1/phi, scaled by phi and capped at 1.
func Utility(coherence, stakeRatio float64) float64 {
	optimalRatio := 1 / Phi
	ratioAlignment := 1 - math.Abs(stakeRatio-optimalRatio)
	return math.Min(coherence*ratioAlignment*Phi, 1.0)
}

// RewardRate converts a utility into a per-block inflation rate.
func (n *Network) RewardRate(utility float64) float64 {
	return n.cfg.MaxInflationRate * Phi * utility
}

// NetworkUtility evaluates Utility at the network's aggregate stake ratio.
func (n *Network) NetworkUtility() float64 {
	stakeSum := 0.0
	for i := range n.validators {
		stakeSum += n.validators[i].Stake
	}
	return Utility(n.Coherence(), stakeSum/n.cfg.TotalSupply)
}

// distributeRewards pays each validator proportionally to its stake and
// individual utility, compounding the reward into the stake. Returns the
// total paid out.
func (n *Network) distributeRewards(networkUtility float64) float64 {
	rewardRate := n.RewardRate(networkUtility)
	totalRewards := 0.0
	for i := range n.validators {
		v := &n.validators[i]
		stakeRatio := v.Stake / n.totalStake
		v.Utility = Utility(networkUtility, stakeRatio)

		reward := v.Stake * rewardRate * v.Utility * Phi
		v.Rewards += reward
		v.Stake += reward
		totalRewards += reward
	}
	return totalRewards
}

// applySlashing burns stake from every validator when coherence falls
// below the stability threshold. The slash fraction is (1-coherence)/phi.
func (n *Network) applySlashing(coherence float64) float64 {
	if coherence >= n.cfg.StabilityThreshold {
		return 0
	}
	totalSlashed := 0.0
	for i := range n.validators {
		v := &n.validators[i]
		slash := v.Stake * (1 - coherence) * (1 / Phi)
		v.Stake -= slash
		v.Slashes += slash
		totalSlashed += slash
	}
	return totalSlashed
}

// SimulateBlock advances the network by one block: measure coherence and
// utility, distribute rewards, apply slashing, then drift every phase by
// blockTime*coupling with small Gaussian noise.
func (n *Network) SimulateBlock() BlockStats {
	coherence := n.Coherence()
	networkUtility := n.NetworkUtility()

	totalRewards := n.distributeRewards(networkUtility)
	totalSlashed := n.applySlashing(coherence)

	n.totalStake = 0
	for i := range n.validators {
		n.totalStake += n.validators[i].Stake
	}

	dt := n.cfg.BlockTime
	for i := range n.validators {
		noise := n.rng.NormFloat64() * n.cfg.PhaseNoiseStd
		n.validators[i].Phase += dt * n.cfg.QuantumCoupling * (1 + noise)
	}

	return BlockStats{
		Coherence:    coherence,
		Utility:      networkUtility,
		TotalRewards: totalRewards,
		TotalSlashed: totalSlashed,
		TotalStake:   n.totalStake,
		StakeRatio:   n.totalStake / n.cfg.TotalSupply,
	}
}

// Run simulates the given number of blocks and returns per-block stats.
func Run(cfg Config, blocks int) []BlockStats {
	network := NewNetwork(cfg)
	history := make([]BlockStats, 0, blocks)
	for b := 0; b < blocks; b++ {
		history = append(history, network.SimulateBlock())
	}
	return history
}
