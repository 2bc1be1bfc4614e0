package catalog

import (
	"math"
	"math/rand"
)

// ShuffleSpatial returns a catalog with the coordinate pairs permuted across
// records while each record keeps its original shear and weight. This breaks
// the correlation between position and shear and is the basis of the
// position-shuffle null hypothesis.
func (c *Catalog) ShuffleSpatial(rng *rand.Rand) *Catalog {
	out := c.Clone()
	n := out.Len()

	// Fisher-Yates over the coordinate pairs only.
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out.Coord1[i], out.Coord1[j] = out.Coord1[j], out.Coord1[i]
		out.Coord2[i], out.Coord2[j] = out.Coord2[j], out.Coord2[i]
	}

	return out
}

// RandomizeOrientation returns a catalog with each record's shear rotated by
// an independent uniformly random angle. Positions, weights, and shear
// magnitudes are preserved; any coherent alignment is destroyed.
func (c *Catalog) RandomizeOrientation(rng *rand.Rand) *Catalog {
	out := c.Clone()

	for i := 0; i < out.Len(); i++ {
		// A rotation of the source by phi rotates (g1, g2) by 2*phi, so a
		// uniform draw over [0, 2*pi) in the shear plane is the right measure.
		theta := 2 * math.Pi * rng.Float64()
		sin, cos := math.Sincos(theta)

		g1, g2 := out.G1[i], out.G2[i]
		out.G1[i] = g1*cos - g2*sin
		out.G2[i] = g1*sin + g2*cos
	}

	return out
}
