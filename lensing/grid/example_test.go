package grid_test

import (
	"fmt"

	"github.com/cwbudde/algo-lensing/lensing/catalog"
	"github.com/cwbudde/algo-lensing/lensing/grid"
)

func ExampleBin() {
	cat := &catalog.Catalog{
		Coord1: []float64{0.5, 1.5, 0.5, 1.5},
		Coord2: []float64{0.5, 0.5, 1.5, 1.5},
		G1:     []float64{0.1, -0.1, 0.1, -0.1},
		G2:     []float64{0, 0, 0, 0},
	}

	field, err := grid.Bin(cat, grid.Config{System: grid.SystemPixel, Downsample: 1})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%dx%d\n", field.Grid.Ny, field.Grid.Nx)
	fmt.Printf("%.1f %.1f\n", field.G1[0][0], field.G1[0][1])
	fmt.Printf("%.1f %.1f\n", field.G1[1][0], field.G1[1][1])
	// Output:
	// 2x2
	// 0.1 -0.1
	// 0.1 -0.1
}
