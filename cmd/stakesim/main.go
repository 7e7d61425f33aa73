package main

import (
	"fmt"

	"github.com/sumlabs/crystalnet/internal/stakesim"
)

func main() {
	fmt.Println("=== Proof of Stake Simulation ===")

	cfg := stakesim.DefaultConfig()
	fmt.Printf("Validators: %d, total supply: %.0f, stability threshold: %.2f\n",
		cfg.NumValidators, cfg.TotalSupply, cfg.StabilityThreshold)

	blocks := 1000
	history := stakesim.Run(cfg, blocks)

	totalRewards := 0.0
	totalSlashed := 0.0
	for _, stats := range history {
		totalRewards += stats.TotalRewards
		totalSlashed += stats.TotalSlashed
	}

	final := history[len(history)-1]
	fmt.Println("\nFinal Network State:")
	fmt.Printf("Coherence: %.4f\n", final.Coherence)
	fmt.Printf("Utility: %.4f\n", final.Utility)
	fmt.Printf("Stake Ratio: %.4f\n", final.StakeRatio)
	fmt.Printf("Total Rewards: %.2f\n", totalRewards)
	fmt.Printf("Total Slashed: %.2f\n", totalSlashed)
}
