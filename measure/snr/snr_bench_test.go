package snr

import (
	"testing"

	"github.com/cwbudde/algo-lensing/lensing/grid"
	"github.com/cwbudde/algo-lensing/lensing/kaisersquires"
)

func BenchmarkEstimate(b *testing.B) {
	cat := syntheticCatalog(1, 2000)

	cfg := DefaultConfig()
	cfg.Grid = grid.Config{System: grid.SystemPixel, Downsample: 1}
	cfg.Modes = kaisersquires.ModeE
	cfg.Trials = 32
	cfg.Seed = 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Estimate(cat, cfg)
		if err != nil {
			b.Fatal(err)
		}
	}
}
