package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lensing/lensing/catalog"
)

// Config controls grid construction and binning.
type Config struct {
	// System selects the coordinate convention.
	System System

	// Resolution is the angular cell size in arcminutes. Used when System
	// is SystemRADec.
	Resolution float64

	// Downsample is the pixel binning factor (output cells per input pixel
	// is 1/Downsample). Used when System is SystemPixel.
	Downsample float64

	// Bounds overrides the extents computed from the catalog. Records
	// outside the bounds are excluded.
	Bounds *Boundaries

	// NormalizeWeights rescales the accumulated weight grid to a maximum of
	// one. When false the grid holds raw weight sums.
	NormalizeWeights bool
}

// DefaultConfig returns a sky-coordinate configuration with one-arcminute
// cells and no downsampling.
func DefaultConfig() Config {
	return Config{
		System:     SystemRADec,
		Resolution: 1,
		Downsample: 1,
	}
}

// ShearField holds gridded shear components and the accumulated weight per
// cell, aligned to Grid. All three grids share shape (Ny, Nx). Cells with no
// contributing records hold zero shear and zero weight.
type ShearField struct {
	Grid   Grid
	G1     [][]float64
	G2     [][]float64
	Weight [][]float64
}

// Bin grids the catalog's shear measurements as weighted cell means.
//
// Each record lands in exactly one cell by floor division of its coordinates;
// records exactly on the upper boundary close into the last cell. The
// accumulation is a commutative weighted sum, so record order never affects
// the result. The catalog is validated and cleaned before binning.
func Bin(cat *catalog.Catalog, cfg Config) (*ShearField, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	clean := cat.Clean()
	if clean.Len() == 0 {
		return nil, fmt.Errorf("grid: no usable records: %w", catalog.ErrEmpty)
	}

	g, err := buildGrid(clean, cfg)
	if err != nil {
		return nil, err
	}

	grids := NewGrids(g.Ny, g.Nx, 3)
	field := &ShearField{
		Grid:   g,
		G1:     grids[0],
		G2:     grids[1],
		Weight: grids[2],
	}

	accumulate(field, clean)
	normalize(field, cfg.NormalizeWeights)

	return field, nil
}

func buildGrid(cat *catalog.Catalog, cfg Config) (Grid, error) {
	var bounds Boundaries

	switch {
	case cfg.Bounds != nil:
		bounds = *cfg.Bounds
		if bounds.Span1() <= 0 || bounds.Span2() <= 0 {
			return Grid{}, ErrInvalidBounds
		}
	case cfg.System == SystemPixel:
		bounds = PixelBoundaries(cat.Coord1, cat.Coord2)
	default:
		bounds = RADecBoundaries(cat.Coord1, cat.Coord2)
	}

	var nx, ny int

	switch cfg.System {
	case SystemPixel:
		if cfg.Downsample <= 0 {
			return Grid{}, ErrInvalidDownsample
		}
		nx = int(math.Ceil(bounds.Span1() / cfg.Downsample))
		ny = int(math.Ceil(bounds.Span2() / cfg.Downsample))
	default:
		if cfg.Resolution <= 0 {
			return Grid{}, ErrInvalidResolution
		}
		// Scale the RA cell count by cos(dec) so cells are approximately
		// square on the sky.
		dec0 := (bounds.Min2 + bounds.Max2) / 2
		cosDec := math.Cos(dec0 * math.Pi / 180)
		nx = int(math.Ceil(bounds.Span1()*arcminPerDegree/cfg.Resolution) * cosDec)
		ny = int(math.Ceil(bounds.Span2() * arcminPerDegree / cfg.Resolution))
	}

	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	return Grid{System: cfg.System, Bounds: bounds, Nx: nx, Ny: ny}, nil
}

func accumulate(field *ShearField, cat *catalog.Catalog) {
	g := field.Grid

	for i := 0; i < cat.Len(); i++ {
		ix, ok := cellIndex(cat.Coord1[i], g.Bounds.Min1, g.Bounds.Max1, g.Nx)
		if !ok {
			continue
		}
		iy, ok := cellIndex(cat.Coord2[i], g.Bounds.Min2, g.Bounds.Max2, g.Ny)
		if !ok {
			continue
		}

		w := cat.WeightAt(i)
		field.G1[iy][ix] += cat.G1[i] * w
		field.G2[iy][ix] += cat.G2[i] * w
		field.Weight[iy][ix] += w
	}
}

// cellIndex maps a coordinate to its cell by floor division. Values exactly
// on the upper boundary belong to the last cell; values outside [min, max]
// are excluded.
func cellIndex(v, min, max float64, n int) (int, bool) {
	if v < min || v > max {
		return 0, false
	}

	span := max - min
	if span == 0 {
		return 0, true
	}

	idx := int(math.Floor((v - min) / span * float64(n)))
	if idx >= n {
		idx = n - 1
	}

	return idx, true
}

func normalize(field *ShearField, normalizeWeights bool) {
	for y := range field.Weight {
		for x, w := range field.Weight[y] {
			if w == 0 {
				// Empty cells stay at zero shear so the Fourier operator
				// downstream sees a defined value.
				continue
			}
			field.G1[y][x] /= w
			field.G2[y][x] /= w
		}
	}

	if !normalizeWeights {
		return
	}

	maxW := 0.0
	for _, row := range field.Weight {
		if m := vecmath.MaxAbs(row); m > maxW {
			maxW = m
		}
	}
	if maxW == 0 {
		return
	}

	for _, row := range field.Weight {
		vecmath.ScaleBlockInPlace(row, 1/maxW)
	}
}

// NewGrids allocates count zeroed (ny, nx) grids.
func NewGrids(ny, nx, count int) [][][]float64 {
	out := make([][][]float64, count)
	for i := range out {
		g := make([][]float64, ny)
		for y := range g {
			g[y] = make([]float64, nx)
		}
		out[i] = g
	}
	return out
}
