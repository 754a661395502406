package codec

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports reshape arithmetic that does not add up.
var ErrShapeMismatch = errors.New("codec: shape mismatch")

// IndexGrid is an N-dimensional array of codebook indices with a known
// shape. Data is stored flat in row-major order: the last dimension varies
// fastest, matching the traversal order used when packing.
type IndexGrid struct {
	Shape []int
	Data  []int
}

// NewIndexGrid allocates a grid for the given shape.
func NewIndexGrid(shape ...int) (*IndexGrid, error) {
	n, err := shapeSize(shape)
	if err != nil {
		return nil, err
	}
	return &IndexGrid{Shape: shape, Data: make([]int, n)}, nil
}

// Reshape wraps flat row-major data in a grid of the given shape. The
// data length must equal the product of the dimensions.
func Reshape(data []int, shape []int) (*IndexGrid, error) {
	n, err := shapeSize(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d symbols cannot fill shape %v (%d cells)",
			ErrShapeMismatch, len(data), shape, n)
	}
	return &IndexGrid{Shape: shape, Data: data}, nil
}

// Flatten returns the grid's symbols in row-major order. The slice aliases
// the grid's storage.
func (g *IndexGrid) Flatten() []int {
	return g.Data
}

// Len returns the number of cells in the grid.
func (g *IndexGrid) Len() int {
	return len(g.Data)
}

// At returns the value at (row, col) of a 2-D grid.
func (g *IndexGrid) At(row, col int) int {
	return g.Data[row*g.Shape[len(g.Shape)-1]+col]
}

// Set assigns the value at (row, col) of a 2-D grid.
func (g *IndexGrid) Set(row, col, v int) {
	g.Data[row*g.Shape[len(g.Shape)-1]+col] = v
}

func shapeSize(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShapeMismatch)
	}
	n := 1
	for i, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: dimension %d is %d, must be > 0", ErrShapeMismatch, i, d)
		}
		n *= d
	}
	return n, nil
}
