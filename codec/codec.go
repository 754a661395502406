// Package codec glues a vector-quantization model to the Huffman coder and
// the artifact container: image in, self-describing compressed bytes out,
// and back again.
package codec

import (
	"image"

	"github.com/Parthkk90/vqvae/container"
	"github.com/Parthkk90/vqvae/huffman"
)

// Model is the external vector-quantization boundary. Implementations map
// an image to a grid of codebook indices and reconstruct an image from the
// grid. Model failures pass through to the caller unmodified.
type Model interface {
	EncodeImage(img image.Image) (*IndexGrid, error)
	DecodeIndices(grid *IndexGrid) (image.Image, error)
}

// Options controls artifact encoding.
type Options struct {
	// PayloadCodec selects the container payload storage
	// (container.PayloadCodecNone or container.PayloadCodecZstd).
	// Empty means no payload compression.
	PayloadCodec string
}

// CompressIndices entropy-codes an index grid into an artifact. This is the
// model-free half of Compress: frequency count, code construction, bit
// packing, container assembly.
func CompressIndices(grid *IndexGrid, opts *Options) (*container.Artifact, error) {
	symbols := grid.Flatten()
	freqs, err := huffman.CountFrequencies(symbols)
	if err != nil {
		return nil, err
	}
	table, err := huffman.BuildCodes(freqs)
	if err != nil {
		return nil, err
	}
	payload, bitLen, err := huffman.Pack(symbols, table)
	if err != nil {
		return nil, err
	}

	a := &container.Artifact{
		Shape:        grid.Shape,
		SymbolCount:  len(symbols),
		CodeTable:    table,
		BitLength:    bitLen,
		Payload:      payload,
		PayloadCodec: container.PayloadCodecNone,
	}
	if opts != nil && opts.PayloadCodec != "" {
		a.PayloadCodec = opts.PayloadCodec
	}
	return a, nil
}

// DecompressIndices reverses CompressIndices: unpack the bit stream with
// the artifact's own code table and reshape to the stored dimensions.
func DecompressIndices(a *container.Artifact) (*IndexGrid, error) {
	symbols, err := huffman.Unpack(a.Payload, a.BitLength, a.CodeTable, a.SymbolCount)
	if err != nil {
		return nil, err
	}
	return Reshape(symbols, a.Shape)
}

// Compress runs the model's encoder on an image and serializes the
// entropy-coded index grid into artifact bytes.
func Compress(img image.Image, m Model, opts *Options) ([]byte, error) {
	grid, err := m.EncodeImage(img)
	if err != nil {
		return nil, err
	}
	a, err := CompressIndices(grid, opts)
	if err != nil {
		return nil, err
	}
	return container.Marshal(a)
}

// Decompress parses artifact bytes, restores the index grid, and runs the
// model's decoder to reconstruct the image.
func Decompress(data []byte, m Model) (image.Image, error) {
	a, err := container.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	grid, err := DecompressIndices(a)
	if err != nil {
		return nil, err
	}
	return m.DecodeIndices(grid)
}
