package running

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func randomGrids(seed int64, count, ny, nx int) [][][]float64 {
	rng := rand.New(rand.NewSource(seed))
	grids := make([][][]float64, count)
	for i := range grids {
		g := make([][]float64, ny)
		for y := range g {
			g[y] = make([]float64, nx)
			for x := range g[y] {
				g[y][x] = rng.NormFloat64()
			}
		}
		grids[i] = g
	}
	return grids
}

// naiveStats computes per-cell mean and population std with the plain
// two-pass formulas, as a reference for the streaming implementation.
func naiveStats(grids [][][]float64, ny, nx int) (mean, std [][]float64) {
	n := float64(len(grids))
	mean = make([][]float64, ny)
	std = make([][]float64, ny)

	for y := 0; y < ny; y++ {
		mean[y] = make([]float64, nx)
		std[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			sum := 0.0
			for _, g := range grids {
				sum += g[y][x]
			}
			m := sum / n

			sq := 0.0
			for _, g := range grids {
				d := g[y][x] - m
				sq += d * d
			}

			mean[y][x] = m
			std[y][x] = math.Sqrt(sq / n)
		}
	}

	return mean, std
}

func TestGridStatsMatchesTwoPass(t *testing.T) {
	const ny, nx = 5, 7
	grids := randomGrids(11, 40, ny, nx)

	s := NewGridStats(ny, nx)
	for _, g := range grids {
		if err := s.Update(g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if s.Count() != len(grids) {
		t.Fatalf("Count() = %d, want %d", s.Count(), len(grids))
	}

	wantMean, wantStd := naiveStats(grids, ny, nx)
	gotMean, gotStd := s.Mean(), s.Std()

	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if math.Abs(gotMean[y][x]-wantMean[y][x]) > 1e-12 {
				t.Fatalf("mean (%d,%d): got %v, want %v", y, x, gotMean[y][x], wantMean[y][x])
			}
			if math.Abs(gotStd[y][x]-wantStd[y][x]) > 1e-12 {
				t.Fatalf("std (%d,%d): got %v, want %v", y, x, gotStd[y][x], wantStd[y][x])
			}
		}
	}
}

func TestGridStatsIdenticalValuesZeroStd(t *testing.T) {
	g := [][]float64{{1.25, -3}, {0, 42}}

	s := NewGridStats(2, 2)
	for i := 0; i < 10; i++ {
		if err := s.Update(g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	std := s.Std()
	for y := range std {
		for x := range std[y] {
			if std[y][x] != 0 {
				t.Fatalf("std (%d,%d) = %v, want exactly 0", y, x, std[y][x])
			}
		}
	}
}

func TestGridStatsMergeMatchesSequential(t *testing.T) {
	const ny, nx = 4, 4
	grids := randomGrids(23, 30, ny, nx)

	seq := NewGridStats(ny, nx)
	for _, g := range grids {
		if err := seq.Update(g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	left := NewGridStats(ny, nx)
	right := NewGridStats(ny, nx)
	for i, g := range grids {
		target := left
		if i >= len(grids)/3 {
			target = right
		}
		if err := target.Update(g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := left.Merge(right); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if left.Count() != seq.Count() {
		t.Fatalf("merged count %d, want %d", left.Count(), seq.Count())
	}

	seqMean, seqStd := seq.Mean(), seq.Std()
	mergedMean, mergedStd := left.Mean(), left.Std()

	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if math.Abs(mergedMean[y][x]-seqMean[y][x]) > 1e-12 {
				t.Fatalf("mean (%d,%d): merged %v, sequential %v", y, x, mergedMean[y][x], seqMean[y][x])
			}
			if math.Abs(mergedStd[y][x]-seqStd[y][x]) > 1e-12 {
				t.Fatalf("std (%d,%d): merged %v, sequential %v", y, x, mergedStd[y][x], seqStd[y][x])
			}
		}
	}
}

func TestGridStatsMergeIntoEmpty(t *testing.T) {
	grids := randomGrids(5, 8, 3, 3)

	full := NewGridStats(3, 3)
	for _, g := range grids {
		if err := full.Update(g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	empty := NewGridStats(3, 3)
	if err := empty.Merge(full); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if empty.Count() != full.Count() {
		t.Fatalf("count %d, want %d", empty.Count(), full.Count())
	}

	a, b := empty.Mean(), full.Mean()
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				t.Fatalf("mean (%d,%d) differs after merge into empty", y, x)
			}
		}
	}

	// Merging an empty accumulator is a no-op.
	before := full.Count()
	if err := full.Merge(NewGridStats(3, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.Count() != before {
		t.Fatal("merging empty changed the count")
	}
}

func TestGridStatsEmpty(t *testing.T) {
	s := NewGridStats(2, 3)

	for _, g := range [][][]float64{s.Mean(), s.Std()} {
		for y := range g {
			for x := range g[y] {
				if g[y][x] != 0 {
					t.Fatalf("empty accumulator cell (%d,%d) = %v, want 0", y, x, g[y][x])
				}
			}
		}
	}
}

func TestGridStatsShapeMismatch(t *testing.T) {
	s := NewGridStats(2, 2)

	if err := s.Update([][]float64{{1, 2, 3}, {4, 5, 6}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Update() error = %v, want %v", err, ErrShapeMismatch)
	}
	if err := s.Merge(NewGridStats(3, 2)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Merge() error = %v, want %v", err, ErrShapeMismatch)
	}
}
