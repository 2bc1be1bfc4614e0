// Package running provides streaming per-cell statistics over 2D grids.
//
// The accumulator implements Welford's online algorithm so that mean and
// variance stay numerically stable over many updates, and supports merging
// two accumulators (Chan et al. parallel variance update) so independent
// workers can aggregate without shared state.
package running

import (
	"errors"
	"math"
)

// ErrShapeMismatch is returned when an update or merge grid does not match
// the accumulator's shape.
var ErrShapeMismatch = errors.New("running: grid shape mismatch")

// GridStats accumulates per-cell mean and variance across a sequence of
// equally shaped grids.
type GridStats struct {
	ny, nx int
	count  int
	mean   [][]float64
	m2     [][]float64
}

// NewGridStats creates an empty accumulator for (ny, nx) grids.
func NewGridStats(ny, nx int) *GridStats {
	return &GridStats{
		ny:   ny,
		nx:   nx,
		mean: zeros(ny, nx),
		m2:   zeros(ny, nx),
	}
}

// Count returns the number of grids accumulated so far.
func (s *GridStats) Count() int { return s.count }

// Update folds one grid into the accumulator.
func (s *GridStats) Update(g [][]float64) error {
	if !shapeMatches(g, s.ny, s.nx) {
		return ErrShapeMismatch
	}

	s.count++
	n := float64(s.count)

	for y := 0; y < s.ny; y++ {
		meanRow, m2Row, row := s.mean[y], s.m2[y], g[y]
		for x := 0; x < s.nx; x++ {
			delta := row[x] - meanRow[x]
			meanRow[x] += delta / n
			m2Row[x] += delta * (row[x] - meanRow[x])
		}
	}

	return nil
}

// Merge folds another accumulator of the same shape into s. The other
// accumulator is left untouched. Merging in a fixed order yields
// reproducible results regardless of how updates were distributed.
func (s *GridStats) Merge(o *GridStats) error {
	if o.ny != s.ny || o.nx != s.nx {
		return ErrShapeMismatch
	}
	if o.count == 0 {
		return nil
	}
	if s.count == 0 {
		s.count = o.count
		copyGrid(s.mean, o.mean)
		copyGrid(s.m2, o.m2)
		return nil
	}

	na := float64(s.count)
	nb := float64(o.count)
	nab := na + nb

	for y := 0; y < s.ny; y++ {
		for x := 0; x < s.nx; x++ {
			delta := o.mean[y][x] - s.mean[y][x]
			s.mean[y][x] += delta * nb / nab
			s.m2[y][x] += o.m2[y][x] + delta*delta*na*nb/nab
		}
	}
	s.count += o.count

	return nil
}

// Mean returns the per-cell mean of the accumulated grids. With no
// accumulated grids the result is all zeros.
func (s *GridStats) Mean() [][]float64 {
	out := zeros(s.ny, s.nx)
	copyGrid(out, s.mean)
	return out
}

// Std returns the per-cell population standard deviation, sqrt(M2/n). Cells
// whose accumulated values were all identical come out exactly zero.
func (s *GridStats) Std() [][]float64 {
	out := zeros(s.ny, s.nx)
	if s.count == 0 {
		return out
	}

	n := float64(s.count)
	for y := 0; y < s.ny; y++ {
		for x := 0; x < s.nx; x++ {
			m2 := s.m2[y][x]
			if m2 <= 0 {
				// Negative residue from cancellation counts as zero spread.
				continue
			}
			out[y][x] = math.Sqrt(m2 / n)
		}
	}

	return out
}

func zeros(ny, nx int) [][]float64 {
	g := make([][]float64, ny)
	for y := range g {
		g[y] = make([]float64, nx)
	}
	return g
}

func copyGrid(dst, src [][]float64) {
	for y := range dst {
		copy(dst[y], src[y])
	}
}

func shapeMatches(g [][]float64, ny, nx int) bool {
	if len(g) != ny {
		return false
	}
	for y := range g {
		if len(g[y]) != nx {
			return false
		}
	}
	return true
}
