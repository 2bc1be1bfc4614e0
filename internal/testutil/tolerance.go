package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireGridNearlyEqual fails t if got and want differ in shape or if any
// cell pair exceeds eps (absolute tolerance).
func RequireGridNearlyEqual(t *testing.T, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("row count mismatch: got %d, want %d", len(got), len(want))
	}
	for y := range got {
		if len(got[y]) != len(want[y]) {
			t.Fatalf("row %d: length mismatch: got %d, want %d", y, len(got[y]), len(want[y]))
		}
		for x := range got[y] {
			diff := math.Abs(got[y][x] - want[y][x])
			if diff > eps {
				t.Fatalf("cell (%d,%d): got %v, want %v (diff %v > eps %v)", y, x, got[y][x], want[y][x], diff, eps)
			}
		}
	}
}

// RequireGridNear fails t if any cell deviates from want by more than eps.
func RequireGridNear(t *testing.T, got [][]float64, want, eps float64) {
	t.Helper()
	for y := range got {
		for x := range got[y] {
			if math.Abs(got[y][x]-want) > eps {
				t.Fatalf("cell (%d,%d): got %v, want %v (eps %v)", y, x, got[y][x], want, eps)
			}
		}
	}
}

// RequireGridFinite fails t if any cell is NaN or Inf.
func RequireGridFinite(t *testing.T, g [][]float64) {
	t.Helper()
	for y := range g {
		for x, v := range g[y] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("cell (%d,%d): non-finite value %v", y, x, v)
			}
		}
	}
}

// RequireGridShape fails t if g is not a (ny, nx) grid.
func RequireGridShape(t *testing.T, g [][]float64, ny, nx int) {
	t.Helper()
	if len(g) != ny {
		t.Fatalf("row count: got %d, want %d", len(g), ny)
	}
	for y := range g {
		if len(g[y]) != nx {
			t.Fatalf("row %d: length got %d, want %d", y, len(g[y]), nx)
		}
	}
}

// MaxAbsDiffGrid returns the maximum absolute cellwise difference between
// two grids. Returns an error if the grids differ in shape.
func MaxAbsDiffGrid(a, b [][]float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("row count mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return 0, fmt.Errorf("row %d: length mismatch: %d vs %d", y, len(a[y]), len(b[y]))
		}
		for x := range a[y] {
			d := math.Abs(a[y][x] - b[y][x])
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff, nil
}

// MaxAbsGrid returns the maximum absolute cell value of a grid.
func MaxAbsGrid(g [][]float64) float64 {
	maxAbs := 0.0
	for y := range g {
		for _, v := range g[y] {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	return maxAbs
}
