// Package model provides the vector-quantization side of the pipeline: a
// codebook model that maps images to index grids and back. The entropy
// coder treats any Model implementation as an opaque collaborator; this
// package supplies the palette quantizer used by the command-line tools.
package model

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	"github.com/Parthkk90/vqvae/codec"
)

var (
	ErrEmptyCodebook = errors.New("model: empty codebook")
	ErrIndexRange    = errors.New("model: index outside codebook")
)

// PaletteModel quantizes images against a fixed RGB codebook. Encoding
// downscales the image to the grid size and maps every pixel to the index
// of the nearest codebook entry by squared RGB distance; decoding is a
// plain codebook lookup at grid resolution.
type PaletteModel struct {
	Codebook []color.RGBA
	// GridWidth and GridHeight are the index grid dimensions.
	GridWidth  int
	GridHeight int
	// BlurSigma, when > 0, applies a Gaussian blur before quantization to
	// suppress speckle in the index grid.
	BlurSigma float32
}

// NewPaletteModel builds a model over the given codebook.
func NewPaletteModel(codebook []color.RGBA, gridW, gridH int) (*PaletteModel, error) {
	if len(codebook) == 0 {
		return nil, ErrEmptyCodebook
	}
	if gridW <= 0 || gridH <= 0 {
		return nil, fmt.Errorf("model: invalid grid size %dx%d", gridW, gridH)
	}
	return &PaletteModel{Codebook: codebook, GridWidth: gridW, GridHeight: gridH}, nil
}

// EncodeImage implements codec.Model.
func (m *PaletteModel) EncodeImage(img image.Image) (*codec.IndexGrid, error) {
	if len(m.Codebook) == 0 {
		return nil, ErrEmptyCodebook
	}

	src := image.Image(imaging.Resize(img, m.GridWidth, m.GridHeight, imaging.Lanczos))
	if m.BlurSigma > 0 {
		g := gift.New(gift.GaussianBlur(m.BlurSigma))
		dst := image.NewRGBA(g.Bounds(src.Bounds()))
		g.Draw(dst, src)
		src = dst
	}

	grid, err := codec.NewIndexGrid(m.GridHeight, m.GridWidth)
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	for y := 0; y < m.GridHeight; y++ {
		for x := 0; x < m.GridWidth; x++ {
			grid.Set(y, x, m.nearest(src.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return grid, nil
}

// DecodeIndices implements codec.Model.
func (m *PaletteModel) DecodeIndices(grid *codec.IndexGrid) (image.Image, error) {
	if len(grid.Shape) != 2 {
		return nil, fmt.Errorf("model: expected 2-D grid, got shape %v", grid.Shape)
	}
	h, w := grid.Shape[0], grid.Shape[1]
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := grid.At(y, x)
			if idx < 0 || idx >= len(m.Codebook) {
				return nil, fmt.Errorf("%w: index %d at (%d,%d), codebook size %d",
					ErrIndexRange, idx, y, x, len(m.Codebook))
			}
			img.SetRGBA(x, y, m.Codebook[idx])
		}
	}
	return img, nil
}

// nearest returns the codebook index with minimal squared RGB distance.
// Ties resolve to the lowest index.
func (m *PaletteModel) nearest(c color.Color) int {
	r, g, b, _ := c.RGBA()
	r8, g8, b8 := int64(r>>8), int64(g>>8), int64(b>>8)

	best := 0
	bestDist := int64(1) << 62
	for i, entry := range m.Codebook {
		dr := r8 - int64(entry.R)
		dg := g8 - int64(entry.G)
		db := b8 - int64(entry.B)
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = i
			if dist == 0 {
				break
			}
		}
	}
	return best
}
