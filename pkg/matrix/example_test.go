package matrix_test

import (
	"fmt"

	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
)

func Example() {
	// Two emulated PIO blocks stand in for PIO0 and PIO1.
	blocks := []pio.Block{pio.NewEmulator(0, 125_000_000), pio.NewEmulator(1, 125_000_000)}

	m, err := matrix.Open(matrix.Geometry{Width: 5, Height: 5}, 7, blocks...)
	if err != nil {
		fmt.Printf("Failed to open matrix: %v\n", err)
		return
	}
	defer m.Close()

	m.Clear()
	if err := m.RenderDigit(9, matrix.LedColor{R: 100}); err != nil {
		fmt.Printf("Failed to render digit: %v\n", err)
		return
	}
	if err := m.Commit(); err != nil {
		fmt.Printf("Failed to commit: %v\n", err)
		return
	}
	fmt.Println("committed", m.Geometry())
	// Output: committed 5x5
}

func ExampleGeometry_Index() {
	g := matrix.Geometry{Width: 5, Height: 5}
	for _, p := range [][2]int{{3, 0}, {3, 1}, {0, 4}} {
		i, _ := g.Index(p[0], p[1])
		fmt.Println(p, "->", i)
	}
	// Output:
	// [3 0] -> 3
	// [3 1] -> 6
	// [0 4] -> 20
}
