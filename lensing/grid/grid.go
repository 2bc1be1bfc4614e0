// Package grid bins irregularly located shear measurements onto regular 2D
// grids.
//
// Two coordinate conventions are supported: sky coordinates (RA/Dec in
// degrees, with an angular resolution in arcminutes) and pixel coordinates
// (with a downsample factor). Grid extents default to the catalog's bounding
// box but can be overridden by the caller.
package grid

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by grid construction and binning.
var (
	ErrInvalidResolution = errors.New("grid: resolution must be > 0")
	ErrInvalidDownsample = errors.New("grid: downsample factor must be > 0")
	ErrInvalidBounds     = errors.New("grid: bounds must have positive extent")
)

// System selects the coordinate convention of a catalog and its grid.
type System int

const (
	// SystemRADec interprets coordinates as right ascension and declination
	// in degrees.
	SystemRADec System = iota

	// SystemPixel interprets coordinates as detector pixel positions.
	SystemPixel
)

// String returns the configuration name of the system.
func (s System) String() string {
	switch s {
	case SystemRADec:
		return "radec"
	case SystemPixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// Boundaries describes the rectangular extent of a grid in catalog
// coordinates. Min1/Max1 span the first coordinate (RA or x), Min2/Max2 the
// second (Dec or y).
type Boundaries struct {
	Min1, Max1 float64
	Min2, Max2 float64
}

// Span1 returns the extent of the first coordinate.
func (b Boundaries) Span1() float64 { return b.Max1 - b.Min1 }

// Span2 returns the extent of the second coordinate.
func (b Boundaries) Span2() float64 { return b.Max2 - b.Min2 }

// Grid is a regular 2D lattice of cell centers covering Bounds with Ny rows
// and Nx columns. Row index follows the second coordinate, column index the
// first, so aligned field grids have shape (Ny, Nx).
type Grid struct {
	System System
	Bounds Boundaries
	Nx, Ny int
}

// CellSize1 returns the cell extent along the first coordinate.
func (g Grid) CellSize1() float64 { return g.Bounds.Span1() / float64(g.Nx) }

// CellSize2 returns the cell extent along the second coordinate.
func (g Grid) CellSize2() float64 { return g.Bounds.Span2() / float64(g.Ny) }

// Axis1 returns the Nx cell-center coordinates along the first axis.
func (g Grid) Axis1() []float64 {
	return axis(g.Bounds.Min1, g.Bounds.Max1, g.Nx)
}

// Axis2 returns the Ny cell-center coordinates along the second axis.
func (g Grid) Axis2() []float64 {
	return axis(g.Bounds.Min2, g.Bounds.Max2, g.Ny)
}

func axis(min, max float64, n int) []float64 {
	centers := make([]float64, n)
	if n == 1 {
		centers[0] = (min + max) / 2
		return centers
	}

	half := (max - min) / float64(n) / 2
	floats.Span(centers, min+half, max-half)

	return centers
}

// arcminPerDegree converts between the two angular units in play: grid
// resolution is quoted in arcminutes, catalog coordinates in degrees.
const arcminPerDegree = 60.0

// RADecBoundaries computes median-centered extents over the given sky
// coordinates. The field size is the coordinate range, centered on the
// median rather than the midpoint so a few outliers do not drag the field
// center.
func RADecBoundaries(ra, dec []float64) Boundaries {
	raMed := median(ra)
	decMed := median(dec)
	raSize := floats.Max(ra) - floats.Min(ra)
	decSize := floats.Max(dec) - floats.Min(dec)

	return Boundaries{
		Min1: raMed - raSize/2,
		Max1: raMed + raSize/2,
		Min2: decMed - decSize/2,
		Max2: decMed + decSize/2,
	}
}

// PixelBoundaries computes integer extents covering the given pixel
// coordinates.
func PixelBoundaries(x, y []float64) Boundaries {
	return Boundaries{
		Min1: math.Floor(floats.Min(x)),
		Max1: math.Ceil(floats.Max(x)),
		Min2: math.Floor(floats.Min(y)),
		Max2: math.Ceil(floats.Max(y)),
	}
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	n := len(s)
	if n == 0 {
		return math.NaN()
	}

	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
