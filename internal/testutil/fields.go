package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-lensing/internal/fft2"
)

// GaussianBlob generates a (ny, nx) grid holding an isotropic Gaussian bump
// of the given amplitude centered at (cy, cx).
func GaussianBlob(ny, nx int, cy, cx, sigma, amplitude float64) [][]float64 {
	g := make([][]float64, ny)
	for y := range g {
		g[y] = make([]float64, nx)
		for x := range g[y] {
			dy := float64(y) - cy
			dx := float64(x) - cx
			g[y][x] = amplitude * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
		}
	}
	return g
}

// ZeroMean returns a copy of g with its mean subtracted. Useful for
// round-trip tests: the Kaiser-Squires inversion pins the map mean to zero,
// so only zero-mean fields survive a forward-inverse cycle exactly.
func ZeroMean(g [][]float64) [][]float64 {
	sum := 0.0
	count := 0
	for y := range g {
		for _, v := range g[y] {
			sum += v
			count++
		}
	}
	mean := sum / float64(count)

	out := make([][]float64, len(g))
	for y := range g {
		out[y] = make([]float64, len(g[y]))
		for x, v := range g[y] {
			out[y][x] = v - mean
		}
	}
	return out
}

// ShearFromConvergence forward-models the shear field sourced by a pure
// E-mode convergence grid: G1 = D1*K, G2 = D2*K in the Fourier domain, with
// the same spectral kernel the inversion uses. Running the Kaiser-Squires
// inversion on the result recovers the zero-mean part of kappa with
// vanishing B-mode.
func ShearFromConvergence(kappa [][]float64) (g1, g2 [][]float64) {
	ny := len(kappa)
	nx := len(kappa[0])

	t := fft2.New(ny, nx)
	spec := fft2.ToComplex(kappa)
	t.Forward(spec)

	freqX := fft2.Freq(nx)
	freqY := fft2.Freq(ny)

	spec1 := fft2.NewComplex(ny, nx)
	spec2 := fft2.NewComplex(ny, nx)

	for y := 0; y < ny; y++ {
		ky := freqY[y]
		for x := 0; x < nx; x++ {
			kx := freqX[x]

			k2 := kx*kx + ky*ky
			if k2 == 0 {
				continue
			}

			d1 := complex((kx*kx-ky*ky)/k2, 0)
			d2 := complex(2*kx*ky/k2, 0)
			spec1[y][x] = d1 * spec[y][x]
			spec2[y][x] = d2 * spec[y][x]
		}
	}

	t.Inverse(spec1)
	t.Inverse(spec2)

	return fft2.RealPart(spec1), fft2.RealPart(spec2)
}

// NoisyShearColumns scatters n records uniformly over [0, width) x
// [0, height) with small random shear drawn from a fixed seed. Intended for
// building deterministic synthetic catalogs.
func NoisyShearColumns(seed int64, n int, width, height, shearScale float64) (x, y, g1, g2 []float64) {
	rng := rand.New(rand.NewSource(seed))

	x = make([]float64, n)
	y = make([]float64, n)
	g1 = make([]float64, n)
	g2 = make([]float64, n)

	for i := 0; i < n; i++ {
		x[i] = rng.Float64() * width
		y[i] = rng.Float64() * height
		g1[i] = (rng.Float64()*2 - 1) * shearScale
		g2[i] = (rng.Float64()*2 - 1) * shearScale
	}

	return x, y, g1, g2
}
