// Package catalog holds galaxy shape measurements for map making.
//
// A Catalog is a column-oriented collection of shear records: two sky or
// pixel coordinates, the two shear components, and an optional per-object
// weight. Catalogs are treated as immutable once built; the randomization
// helpers used for null-hypothesis resampling return new catalogs and leave
// the input untouched.
package catalog

import (
	"errors"
	"math"
)

// Errors returned by catalog operations.
var (
	ErrColumnLength = errors.New("catalog: column length mismatch")
	ErrEmpty        = errors.New("catalog: empty catalog")
)

// Catalog stores shear records as parallel column slices.
// Weight may be nil, in which case every record has unit weight.
type Catalog struct {
	Coord1 []float64
	Coord2 []float64
	G1     []float64
	G2     []float64
	Weight []float64
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.Coord1)
}

// Validate checks that all columns share the same length and that the
// catalog is non-empty.
func (c *Catalog) Validate() error {
	n := len(c.Coord1)
	if n == 0 {
		return ErrEmpty
	}

	if len(c.Coord2) != n || len(c.G1) != n || len(c.G2) != n {
		return ErrColumnLength
	}
	if c.Weight != nil && len(c.Weight) != n {
		return ErrColumnLength
	}

	return nil
}

// WeightAt returns the weight of record i, defaulting to 1 when no weight
// column is present.
func (c *Catalog) WeightAt(i int) float64 {
	if c.Weight == nil {
		return 1
	}
	return c.Weight[i]
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Coord1: append([]float64(nil), c.Coord1...),
		Coord2: append([]float64(nil), c.Coord2...),
		G1:     append([]float64(nil), c.G1...),
		G2:     append([]float64(nil), c.G2...),
	}
	if c.Weight != nil {
		out.Weight = append([]float64(nil), c.Weight...)
	}
	return out
}

// Clean returns a catalog containing only usable records: finite coordinates
// and shear components, and a finite non-negative weight when a weight
// column is present. The input is not modified.
func (c *Catalog) Clean() *Catalog {
	out := &Catalog{}
	if c.Weight != nil {
		out.Weight = make([]float64, 0, c.Len())
	}

	for i := 0; i < c.Len(); i++ {
		if !finite(c.Coord1[i]) || !finite(c.Coord2[i]) {
			continue
		}
		if !finite(c.G1[i]) || !finite(c.G2[i]) {
			continue
		}
		if c.Weight != nil && (!finite(c.Weight[i]) || c.Weight[i] < 0) {
			continue
		}

		out.Coord1 = append(out.Coord1, c.Coord1[i])
		out.Coord2 = append(out.Coord2, c.Coord2[i])
		out.G1 = append(out.G1, c.G1[i])
		out.G2 = append(out.G2, c.G2[i])
		if c.Weight != nil {
			out.Weight = append(out.Weight, c.Weight[i])
		}
	}

	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
