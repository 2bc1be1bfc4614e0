package kaisersquires

import (
	"testing"

	"github.com/cwbudde/algo-lensing/internal/testutil"
)

func benchmarkInvert(b *testing.B, ny, nx int, modes Mode) {
	kappa := testutil.ZeroMean(testutil.GaussianBlob(ny, nx, float64(ny)/2, float64(nx)/2, float64(ny)/8, 0.05))
	g1, g2 := testutil.ShearFromConvergence(kappa)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := InvertGrids(g1, g2, modes)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInvert64x64E(b *testing.B) { benchmarkInvert(b, 64, 64, ModeE) }

func BenchmarkInvert64x64Both(b *testing.B) { benchmarkInvert(b, 64, 64, ModeE|ModeB) }

func BenchmarkInvert256x256E(b *testing.B) { benchmarkInvert(b, 256, 256, ModeE) }

func BenchmarkInvert127x253Both(b *testing.B) { benchmarkInvert(b, 127, 253, ModeE|ModeB) }
