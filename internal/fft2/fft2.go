// Package fft2 provides 2D complex FFT helpers over rectangular grids.
//
// Transforms are computed as a row pass followed by a column pass using
// gonum's complex FFT, which accepts arbitrary lengths. This matters for
// gridded sky maps whose dimensions are dictated by the field geometry and
// are rarely powers of two.
package fft2

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform holds row and column FFT plans for a fixed grid shape.
type Transform struct {
	ny, nx int
	row    *fourier.CmplxFFT
	col    *fourier.CmplxFFT
}

// New creates a transform for grids of shape (ny, nx).
func New(ny, nx int) *Transform {
	return &Transform{
		ny:  ny,
		nx:  nx,
		row: fourier.NewCmplxFFT(nx),
		col: fourier.NewCmplxFFT(ny),
	}
}

// Ny returns the number of grid rows.
func (t *Transform) Ny() int { return t.ny }

// Nx returns the number of grid columns.
func (t *Transform) Nx() int { return t.nx }

// Forward computes the unnormalized forward DFT of a in place.
// a must have shape (ny, nx).
func (t *Transform) Forward(a [][]complex128) {
	t.apply(a, true)
}

// Inverse computes the inverse DFT of a in place, normalized by 1/(ny*nx)
// so that Inverse(Forward(x)) == x up to floating-point residue.
func (t *Transform) Inverse(a [][]complex128) {
	t.apply(a, false)

	scale := complex(1/float64(t.ny*t.nx), 0)
	for y := range a {
		for x := range a[y] {
			a[y][x] *= scale
		}
	}
}

func (t *Transform) apply(a [][]complex128, forward bool) {
	// Row pass.
	for y := 0; y < t.ny; y++ {
		if forward {
			t.row.Coefficients(a[y], a[y])
		} else {
			t.row.Sequence(a[y], a[y])
		}
	}

	// Column pass.
	col := make([]complex128, t.ny)
	for x := 0; x < t.nx; x++ {
		for y := 0; y < t.ny; y++ {
			col[y] = a[y][x]
		}

		if forward {
			t.col.Coefficients(col, col)
		} else {
			t.col.Sequence(col, col)
		}

		for y := 0; y < t.ny; y++ {
			a[y][x] = col[y]
		}
	}
}

// Freq returns the discrete sample frequencies for an n-point transform in
// cycles per sample, in standard FFT ordering: 0, 1/n, ... then the negative
// frequencies. Matches numpy.fft.fftfreq.
func Freq(n int) []float64 {
	f := make([]float64, n)
	half := (n - 1) / 2

	for i := 0; i <= half; i++ {
		f[i] = float64(i) / float64(n)
	}
	for i := half + 1; i < n; i++ {
		f[i] = float64(i-n) / float64(n)
	}

	return f
}

// NewComplex allocates a zeroed (ny, nx) complex grid.
func NewComplex(ny, nx int) [][]complex128 {
	a := make([][]complex128, ny)
	for y := range a {
		a[y] = make([]complex128, nx)
	}
	return a
}

// ToComplex copies a real grid into a freshly allocated complex grid.
func ToComplex(g [][]float64) [][]complex128 {
	a := make([][]complex128, len(g))
	for y := range g {
		a[y] = make([]complex128, len(g[y]))
		for x, v := range g[y] {
			a[y][x] = complex(v, 0)
		}
	}
	return a
}

// RealPart extracts the real part of a complex grid into a new real grid.
// The imaginary residue of a nominally real field is discarded here.
func RealPart(a [][]complex128) [][]float64 {
	g := make([][]float64, len(a))
	for y := range a {
		g[y] = make([]float64, len(a[y]))
		for x, v := range a[y] {
			g[y][x] = real(v)
		}
	}
	return g
}
