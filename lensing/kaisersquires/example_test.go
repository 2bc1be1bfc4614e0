package kaisersquires_test

import (
	"fmt"

	"github.com/cwbudde/algo-lensing/lensing/kaisersquires"
)

func ExampleInvertGrids() {
	g1 := [][]float64{
		{0.1, -0.1},
		{0.1, -0.1},
	}
	g2 := [][]float64{
		{0, 0},
		{0, 0},
	}

	kappaE, _, err := kaisersquires.InvertGrids(g1, g2, kaisersquires.ModeE)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%.2f %.2f\n", kappaE[0][0], kappaE[0][1])
	fmt.Printf("%.2f %.2f\n", kappaE[1][0], kappaE[1][1])
	// Output:
	// 0.10 -0.10
	// 0.10 -0.10
}
