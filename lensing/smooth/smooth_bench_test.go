package smooth

import (
	"testing"

	"github.com/cwbudde/algo-lensing/internal/testutil"
)

func benchmarkSmooth(b *testing.B, ny, nx int, sigma float64) {
	field := testutil.GaussianBlob(ny, nx, float64(ny)/2, float64(nx)/2, float64(ny)/6, 1)
	cfg := Config{Kernel: KernelGaussian, Sigma: sigma}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Smooth(field, cfg)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSmoothDirect64x64(b *testing.B) { benchmarkSmooth(b, 64, 64, 2) }

func BenchmarkSmoothDirect256x256(b *testing.B) { benchmarkSmooth(b, 256, 256, 4) }

func BenchmarkSmoothFFT256x256(b *testing.B) { benchmarkSmooth(b, 256, 256, 12) }
