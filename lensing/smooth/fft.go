package smooth

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// convolveFFT performs the Gaussian convolution in the frequency domain.
//
// The field is reflect-extended by the kernel radius on every side, embedded
// in a power-of-two grid, and circularly convolved with the kernel placed
// wrap-around at the origin. The extension border absorbs both the circular
// wrap and the zero padding, so the cropped center is identical to a direct
// reflect-boundary convolution up to floating-point residue.
func convolveFFT(field [][]float64, ny, nx int, coeffs []float64) ([][]float64, error) {
	radius := len(coeffs) / 2
	extH := ny + 2*radius
	extW := nx + 2*radius
	fh := nextPowerOf2(extH)
	fw := nextPowerOf2(extW)

	rowPlan, err := algofft.NewPlan64(fw)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}
	colPlan, err := algofft.NewPlan64(fh)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}

	// Reflect-extended field in the top-left corner of the FFT grid.
	a := makeComplexGrid(fh, fw)
	for y := 0; y < extH; y++ {
		srcRow := field[reflectIndex(y-radius, ny)]
		for x := 0; x < extW; x++ {
			a[y][x] = complex(srcRow[reflectIndex(x-radius, nx)], 0)
		}
	}

	// Separable kernel as an outer product, wrapped around the origin.
	b := makeComplexGrid(fh, fw)
	for j := -radius; j <= radius; j++ {
		cy := coeffs[j+radius]
		row := b[(j+fh)%fh]
		for i := -radius; i <= radius; i++ {
			row[(i+fw)%fw] = complex(cy*coeffs[i+radius], 0)
		}
	}

	if err := fft2(a, rowPlan, colPlan, true); err != nil {
		return nil, err
	}
	if err := fft2(b, rowPlan, colPlan, true); err != nil {
		return nil, err
	}

	for y := range a {
		for x := range a[y] {
			a[y][x] *= b[y][x]
		}
	}

	if err := fft2(a, rowPlan, colPlan, false); err != nil {
		return nil, err
	}

	out := make([][]float64, ny)
	for y := 0; y < ny; y++ {
		out[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			out[y][x] = real(a[y+radius][x+radius])
		}
	}

	return out, nil
}

// fft2 transforms a power-of-two grid in place, rows then columns.
func fft2(a [][]complex128, rowPlan, colPlan *algofft.Plan[complex128], forward bool) error {
	h := len(a)
	w := len(a[0])

	rowScratch := make([]complex128, w)
	for y := 0; y < h; y++ {
		var err error
		if forward {
			err = rowPlan.Forward(rowScratch, a[y])
		} else {
			err = rowPlan.Inverse(rowScratch, a[y])
		}
		if err != nil {
			return fmt.Errorf("smooth: FFT failed: %w", err)
		}
		copy(a[y], rowScratch)
	}

	col := make([]complex128, h)
	colScratch := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}

		var err error
		if forward {
			err = colPlan.Forward(colScratch, col)
		} else {
			err = colPlan.Inverse(colScratch, col)
		}
		if err != nil {
			return fmt.Errorf("smooth: FFT failed: %w", err)
		}

		for y := 0; y < h; y++ {
			a[y][x] = colScratch[y]
		}
	}

	return nil
}

func makeComplexGrid(h, w int) [][]complex128 {
	g := make([][]complex128, h)
	for y := range g {
		g[y] = make([]complex128, w)
	}
	return g
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
