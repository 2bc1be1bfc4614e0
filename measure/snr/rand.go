package snr

import "math/rand"

// trialSeeds derives one sub-seed per trial from the root seed. Drawing the
// seeds up front decouples trial randomness from execution order, and
// growing the trial count leaves the seeds of earlier trials unchanged.
func trialSeeds(seed int64, trials int) []int64 {
	root := rand.New(rand.NewSource(seed))
	seeds := make([]int64, trials)
	for i := range seeds {
		seeds[i] = root.Int63()
	}
	return seeds
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
