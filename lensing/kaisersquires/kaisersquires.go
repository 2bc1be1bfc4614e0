// Package kaisersquires reconstructs convergence maps from gridded shear.
//
// The inversion is the standard Kaiser-Squires linear operator applied in
// the Fourier domain: the shear grids are transformed, multiplied by the
// spectral kernel, and transformed back. The E-mode map traces projected
// mass density; the B-mode map is expected to vanish for a genuine lensing
// signal and serves as a systematics check.
package kaisersquires

import (
	"errors"

	"github.com/cwbudde/algo-lensing/internal/fft2"
	"github.com/cwbudde/algo-lensing/lensing/grid"
)

// Errors returned by the inversion.
var (
	ErrShapeMismatch  = errors.New("kaisersquires: shear grids differ in shape")
	ErrDegenerateGrid = errors.New("kaisersquires: grid dimensions must be at least 2")
	ErrNoModes        = errors.New("kaisersquires: no output mode requested")
)

// Mode is a set of requested output modes.
type Mode uint8

const (
	// ModeE requests the curl-free (mass) component.
	ModeE Mode = 1 << iota

	// ModeB requests the divergence-free (systematics) component.
	ModeB
)

// Has reports whether m contains all modes in want.
func (m Mode) Has(want Mode) bool { return m&want == want }

// Convergence holds reconstructed convergence grids aligned to the source
// field's grid. Only the requested mode grids are non-nil.
type Convergence struct {
	Grid   grid.Grid
	KappaE [][]float64
	KappaB [][]float64
	Modes  Mode
}

// Invert reconstructs the requested convergence modes from a binned shear
// field.
//
// For sky-coordinate grids the sign of g2 is flipped before inversion: RA
// increases leftward on the sky, so the gridded field has opposite
// handedness to the pixel convention the kernel assumes.
func Invert(field *grid.ShearField, modes Mode) (*Convergence, error) {
	g1, g2 := field.G1, field.G2
	if field.Grid.System == grid.SystemRADec {
		g2 = negate(g2)
	}

	kappaE, kappaB, err := InvertGrids(g1, g2, modes)
	if err != nil {
		return nil, err
	}

	return &Convergence{
		Grid:   field.Grid,
		KappaE: kappaE,
		KappaB: kappaB,
		Modes:  modes,
	}, nil
}

// InvertGrids applies the Kaiser-Squires operator to raw shear grids of
// shape (Ny, Nx). It returns the requested mode grids of the same shape; a
// mode that was not requested comes back nil.
//
// The forward transforms of g1 and g2 are computed once and shared between
// the two modes. The zero-frequency kernel term is zero, which pins the
// unconstrained mean convergence of each output to zero. The inverse
// transform's imaginary residue is discarded; outputs are real grids.
func InvertGrids(g1, g2 [][]float64, modes Mode) (kappaE, kappaB [][]float64, err error) {
	if modes == 0 {
		return nil, nil, ErrNoModes
	}

	ny, nx, err := shape(g1, g2)
	if err != nil {
		return nil, nil, err
	}

	t := fft2.New(ny, nx)

	spec1 := fft2.ToComplex(g1)
	spec2 := fft2.ToComplex(g2)
	t.Forward(spec1)
	t.Forward(spec2)

	freqX := fft2.Freq(nx)
	freqY := fft2.Freq(ny)

	var specE, specB [][]complex128
	if modes.Has(ModeE) {
		specE = fft2.NewComplex(ny, nx)
	}
	if modes.Has(ModeB) {
		specB = fft2.NewComplex(ny, nx)
	}

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

			if specE != nil {
				specE[y][x] = d1*spec1[y][x] + d2*spec2[y][x]
			}
			if specB != nil {
				specB[y][x] = d1*spec2[y][x] - d2*spec1[y][x]
			}
		}
	}

	if specE != nil {
		t.Inverse(specE)
		kappaE = fft2.RealPart(specE)
	}
	if specB != nil {
		t.Inverse(specB)
		kappaB = fft2.RealPart(specB)
	}

	return kappaE, kappaB, nil
}

func shape(g1, g2 [][]float64) (ny, nx int, err error) {
	ny = len(g1)
	if ny != len(g2) {
		return 0, 0, ErrShapeMismatch
	}
	if ny < 2 {
		return 0, 0, ErrDegenerateGrid
	}

	nx = len(g1[0])
	for y := 0; y < ny; y++ {
		if len(g1[y]) != nx || len(g2[y]) != nx {
			return 0, 0, ErrShapeMismatch
		}
	}
	if nx < 2 {
		return 0, 0, ErrDegenerateGrid
	}

	return ny, nx, nil
}

func negate(g [][]float64) [][]float64 {
	out := make([][]float64, len(g))
	for y := range g {
		out[y] = make([]float64, len(g[y]))
		for x, v := range g[y] {
			out[y][x] = -v
		}
	}
	return out
}
