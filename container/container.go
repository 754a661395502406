// Package container reads and writes the self-describing compressed
// artifact: a small binary envelope carrying the Huffman code table, the
// packed bit stream with its exact bit length, and the index-grid shape.
// An artifact decodes with no external information besides the model.
//
// Layout: magic "VQC1", one version byte, a little-endian uint32 header
// length, a JSON header, then the payload bytes. The JSON encoder sorts
// map keys, so the serialized code table has a fixed canonical order and
// identical artifacts are byte-identical.
package container

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/Parthkk90/vqvae/huffman"
)

// Magic number for compressed artifacts.
var Magic = []byte{'V', 'Q', 'C', '1'}

const Version = 1

// Payload codecs.
const (
	PayloadCodecNone = "none"
	PayloadCodecZstd = "zstd"
)

// Container format errors.
var (
	ErrInvalidMagic       = errors.New("container: invalid magic number")
	ErrUnsupportedVersion = errors.New("container: unsupported version")
	ErrMalformedContainer = errors.New("container: malformed container")
)

// maxHeaderSize bounds the JSON header to keep hand-edited or hostile
// artifacts from forcing huge allocations.
const maxHeaderSize = 16 * 1024 * 1024

// Artifact is the unit of persistence produced by compression and consumed
// by decompression.
type Artifact struct {
	// Shape holds the index grid dimensions, row-major, all > 0.
	Shape []int
	// SymbolCount is the total number of flattened symbols, > 0.
	SymbolCount int
	// CodeTable maps each symbol to its prefix code.
	CodeTable huffman.CodeTable
	// BitLength is the exact number of valid bits in Payload.
	BitLength int
	// Payload is the packed, padded bit stream.
	Payload []byte
	// PayloadCodec selects how Payload is stored on disk.
	PayloadCodec string
}

// header is the JSON wire form of everything except the payload bytes.
type header struct {
	Shape        []int             `json:"shape"`
	SymbolCount  int               `json:"symbol_count"`
	CodeTable    map[string]string `json:"code_table"`
	BitLength    int               `json:"bit_length"`
	PayloadCodec string            `json:"payload_codec"`
}

// Validate checks every invariant the format promises. It is the strict
// boundary for untrusted input: no field may be missing, defaulted, or
// inconsistent with the payload.
func (a *Artifact) Validate() error {
	if len(a.Shape) == 0 {
		return fmt.Errorf("%w: missing shape", ErrMalformedContainer)
	}
	for i, d := range a.Shape {
		if d <= 0 {
			return fmt.Errorf("%w: shape dimension %d is %d, must be > 0", ErrMalformedContainer, i, d)
		}
	}
	if a.SymbolCount <= 0 {
		return fmt.Errorf("%w: symbol_count is %d, must be > 0", ErrMalformedContainer, a.SymbolCount)
	}
	if len(a.CodeTable) == 0 {
		return fmt.Errorf("%w: missing code_table", ErrMalformedContainer)
	}
	if err := a.CodeTable.Validate(); err != nil {
		return fmt.Errorf("%w: code_table: %v", ErrMalformedContainer, err)
	}
	if a.BitLength <= 0 {
		return fmt.Errorf("%w: bit_length is %d, must be > 0", ErrMalformedContainer, a.BitLength)
	}
	if a.BitLength < a.SymbolCount {
		// Every code is at least one bit.
		return fmt.Errorf("%w: bit_length %d < symbol_count %d", ErrMalformedContainer, a.BitLength, a.SymbolCount)
	}
	switch a.PayloadCodec {
	case PayloadCodecNone, PayloadCodecZstd:
	default:
		return fmt.Errorf("%w: unknown payload_codec %q", ErrMalformedContainer, a.PayloadCodec)
	}
	// Payload here is always the raw packed bit stream; the codec only
	// affects how it is stored inside the envelope.
	if want := (a.BitLength + 7) / 8; len(a.Payload) != want {
		return fmt.Errorf("%w: payload is %d bytes, bit_length %d requires %d",
			ErrMalformedContainer, len(a.Payload), a.BitLength, want)
	}
	return nil
}

// Write serializes the artifact to w. The artifact's PayloadCodec decides
// whether the packed bits are stored raw or zstd-compressed.
func Write(w io.Writer, a *Artifact) error {
	stored := a.Payload
	switch a.PayloadCodec {
	case "", PayloadCodecNone:
		a.PayloadCodec = PayloadCodecNone
	case PayloadCodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		stored = enc.EncodeAll(a.Payload, nil)
		enc.Close()
	default:
		return fmt.Errorf("%w: unknown payload_codec %q", ErrMalformedContainer, a.PayloadCodec)
	}

	hdr := header{
		Shape:        a.Shape,
		SymbolCount:  a.SymbolCount,
		CodeTable:    make(map[string]string, len(a.CodeTable)),
		BitLength:    a.BitLength,
		PayloadCodec: a.PayloadCodec,
	}
	for _, s := range a.CodeTable.Symbols() {
		hdr.CodeTable[strconv.Itoa(s)] = a.CodeTable[s].String()
	}

	headJSON, err := json.Marshal(&hdr)
	if err != nil {
		return err
	}

	if _, err := w.Write(Magic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return err
	}
	var hlen [4]byte
	binary.LittleEndian.PutUint32(hlen[:], uint32(len(headJSON)))
	if _, err := w.Write(hlen[:]); err != nil {
		return err
	}
	if _, err := w.Write(headJSON); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// Marshal serializes the artifact to bytes. The artifact is validated
// first so a malformed artifact can never be persisted.
func Marshal(a *Artifact) ([]byte, error) {
	if a.PayloadCodec == "" {
		a.PayloadCodec = PayloadCodecNone
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses an artifact from r, validating every required field.
func Read(r io.Reader) (*Artifact, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	if !bytes.Equal(magic[:], Magic) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic[:])
	}

	var ver [1]byte
	if _, err := io.ReadFull(r, ver[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated before version byte", ErrMalformedContainer)
	}
	if ver[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ver[0])
	}

	var hlen [4]byte
	if _, err := io.ReadFull(r, hlen[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated before header length", ErrMalformedContainer)
	}
	headLen := binary.LittleEndian.Uint32(hlen[:])
	if headLen == 0 || headLen > maxHeaderSize {
		return nil, fmt.Errorf("%w: header length %d", ErrMalformedContainer, headLen)
	}

	headJSON := make([]byte, headLen)
	if _, err := io.ReadFull(r, headJSON); err != nil {
		return nil, fmt.Errorf("%w: truncated header (want %d bytes)", ErrMalformedContainer, headLen)
	}

	var hdr header
	dec := json.NewDecoder(bytes.NewReader(headJSON))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("%w: header JSON: %v", ErrMalformedContainer, err)
	}

	stored, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedContainer, err)
	}

	a := &Artifact{
		Shape:        hdr.Shape,
		SymbolCount:  hdr.SymbolCount,
		CodeTable:    make(huffman.CodeTable, len(hdr.CodeTable)),
		BitLength:    hdr.BitLength,
		PayloadCodec: hdr.PayloadCodec,
	}
	for key, bits := range hdr.CodeTable {
		symbol, err := strconv.Atoi(key)
		if err != nil || symbol < 0 {
			return nil, fmt.Errorf("%w: code_table key %q is not a non-negative symbol", ErrMalformedContainer, key)
		}
		code, err := huffman.ParseCode(bits)
		if err != nil {
			return nil, fmt.Errorf("%w: code_table[%q]: %v", ErrMalformedContainer, key, err)
		}
		a.CodeTable[symbol] = code
	}

	switch hdr.PayloadCodec {
	case PayloadCodecNone:
		a.Payload = stored
	case PayloadCodecZstd:
		zdec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		a.Payload, err = zdec.DecodeAll(stored, nil)
		zdec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: zstd payload: %v", ErrMalformedContainer, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown payload_codec %q", ErrMalformedContainer, hdr.PayloadCodec)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Unmarshal parses an artifact from bytes.
func Unmarshal(data []byte) (*Artifact, error) {
	return Read(bytes.NewReader(data))
}
