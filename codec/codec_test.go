package codec

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Parthkk90/vqvae/container"
)

func TestReshape(t *testing.T) {
	grid, err := Reshape([]int{1, 2, 3, 4, 5, 6}, []int{2, 3})
	require.NoError(t, err)
	require.Equal(t, 2, grid.At(0, 1))
	require.Equal(t, 4, grid.At(1, 0))
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, grid.Flatten())
}

func TestReshapeMismatch(t *testing.T) {
	_, err := Reshape([]int{1, 2, 3, 4, 5}, []int{2, 3})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Reshape([]int{1, 2}, []int{2, 0})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Reshape([]int{1, 2}, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestIndicesRoundTrip(t *testing.T) {
	grid, err := Reshape([]int{2, 2, 2, 3, 3, 1}, []int{2, 3})
	require.NoError(t, err)

	a, err := CompressIndices(grid, nil)
	require.NoError(t, err)
	require.Equal(t, 6, a.SymbolCount)
	require.Equal(t, 9, a.BitLength)

	data, err := container.Marshal(a)
	require.NoError(t, err)
	parsed, err := container.Unmarshal(data)
	require.NoError(t, err)

	got, err := DecompressIndices(parsed)
	require.NoError(t, err)
	require.Equal(t, grid.Shape, got.Shape)
	require.Equal(t, grid.Data, got.Data)
}

func TestIndicesRoundTripZstd(t *testing.T) {
	data := make([]int, 64*64)
	for i := range data {
		data[i] = (i * 7) % 100
	}
	grid, err := Reshape(data, []int{64, 64})
	require.NoError(t, err)

	a, err := CompressIndices(grid, &Options{PayloadCodec: container.PayloadCodecZstd})
	require.NoError(t, err)

	raw, err := container.Marshal(a)
	require.NoError(t, err)
	parsed, err := container.Unmarshal(raw)
	require.NoError(t, err)

	got, err := DecompressIndices(parsed)
	require.NoError(t, err)
	require.Equal(t, grid.Data, got.Data)
}

func TestDecompressShapeMismatch(t *testing.T) {
	grid, err := Reshape([]int{1, 2, 3, 4}, []int{2, 2})
	require.NoError(t, err)
	a, err := CompressIndices(grid, nil)
	require.NoError(t, err)

	// A tampered shape whose product no longer matches the symbol count
	// must fail at reshape, not decode garbage.
	a.Shape = []int{3, 2}
	_, err = DecompressIndices(a)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

// stubModel returns a fixed grid regardless of input and records decode calls.
type stubModel struct {
	grid    *IndexGrid
	decoded *IndexGrid
}

func (s *stubModel) EncodeImage(image.Image) (*IndexGrid, error) {
	return s.grid, nil
}

func (s *stubModel) DecodeIndices(g *IndexGrid) (image.Image, error) {
	s.decoded = g
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestCompressDecompressWithModel(t *testing.T) {
	grid, err := Reshape([]int{5, 5, 5, 9, 9, 0, 0, 0}, []int{2, 4})
	require.NoError(t, err)
	m := &stubModel{grid: grid}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	data, err := Compress(img, m, nil)
	require.NoError(t, err)

	_, err = Decompress(data, m)
	require.NoError(t, err)
	require.NotNil(t, m.decoded)
	require.Equal(t, grid.Shape, m.decoded.Shape)
	require.Equal(t, grid.Data, m.decoded.Data)
}
