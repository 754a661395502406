package huffman

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// Pack serializes a symbol sequence as concatenated code bits, MSB first.
// The final byte is zero-padded; bitLen reports the exact number of valid
// bits so the unpacker can discard the padding. A symbol with no table
// entry fails with ErrUnknownSymbol.
func Pack(symbols []int, table CodeTable) (payload []byte, bitLen int, err error) {
	if len(symbols) == 0 {
		return nil, 0, ErrEmptyInput
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for i, s := range symbols {
		c, ok := table[s]
		if !ok {
			return nil, 0, fmt.Errorf("%w: symbol %d at position %d", ErrUnknownSymbol, s, i)
		}
		if err := w.WriteBits(c.Bits, uint8(c.Len)); err != nil {
			return nil, 0, err
		}
		bitLen += c.Len
	}
	// Close flushes the last partial byte, padded with zero bits.
	if err := w.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), bitLen, nil
}

// decodeNode is one node of the decode tree rebuilt from a code table.
// Leaves hold a symbol; internal nodes have at least one child.
type decodeNode struct {
	symbol int
	leaf   bool
	child  [2]*decodeNode
}

// newDecodeTree rebuilds the prefix tree from a code table. Any pair of
// codes where one is a prefix of the other (or a duplicate) collides while
// inserting and is rejected, which enforces the prefix property on tables
// loaded from untrusted artifacts.
func newDecodeTree(table CodeTable) (*decodeNode, error) {
	root := &decodeNode{}
	for _, s := range table.Symbols() {
		c := table[s]
		if c.Len <= 0 || c.Len > 64 {
			return nil, fmt.Errorf("%w: symbol %d has code length %d", ErrInvalidTable, s, c.Len)
		}
		node := root
		for i := c.Len - 1; i >= 0; i-- {
			if node.leaf {
				return nil, fmt.Errorf("%w: code for symbol %d extends the code of symbol %d", ErrInvalidTable, s, node.symbol)
			}
			bit := c.Bits >> uint(i) & 1
			if node.child[bit] == nil {
				node.child[bit] = &decodeNode{}
			}
			node = node.child[bit]
		}
		if node.leaf || node.child[0] != nil || node.child[1] != nil {
			return nil, fmt.Errorf("%w: code %q for symbol %d is a prefix of another code", ErrInvalidTable, c.String(), s)
		}
		node.symbol = s
		node.leaf = true
	}
	return root, nil
}

// Unpack reconstructs the original symbol sequence from a packed payload.
// It walks the decode tree bit by bit, emitting a symbol at each leaf and
// resetting to the root. Exactly bitLen bits must be consumed and exactly
// count symbols produced; a truncated, overlong, or dead-end stream fails
// with ErrCorruptStream. That check is the integrity check for artifacts:
// there is no separate checksum.
func Unpack(payload []byte, bitLen int, table CodeTable, count int) ([]int, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: symbol count %d", ErrCorruptStream, count)
	}
	if bitLen <= 0 || bitLen > len(payload)*8 {
		return nil, fmt.Errorf("%w: bit length %d does not fit %d payload bytes", ErrCorruptStream, bitLen, len(payload))
	}

	root, err := newDecodeTree(table)
	if err != nil {
		return nil, err
	}

	r := bitio.NewReader(bytes.NewReader(payload))
	symbols := make([]int, count)
	consumed := 0
	for i := 0; i < count; i++ {
		node := root
		for !node.leaf {
			if consumed == bitLen {
				return nil, fmt.Errorf("%w: stream ended after %d of %d symbols", ErrCorruptStream, i, count)
			}
			bit, err := r.ReadBool()
			if err != nil {
				return nil, fmt.Errorf("%w: stream ended after %d of %d symbols", ErrCorruptStream, i, count)
			}
			consumed++
			next := node.child[0]
			if bit {
				next = node.child[1]
			}
			if next == nil {
				return nil, fmt.Errorf("%w: no code matches bit sequence at bit %d", ErrCorruptStream, consumed)
			}
			node = next
		}
		symbols[i] = node.symbol
	}
	if consumed != bitLen {
		return nil, fmt.Errorf("%w: consumed %d bits, expected %d", ErrCorruptStream, consumed, bitLen)
	}
	return symbols, nil
}
