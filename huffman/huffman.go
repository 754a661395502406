// Package huffman implements the entropy coder for vector-quantization
// codebook indices: frequency analysis, canonical prefix code construction,
// and exact bit-level packing and unpacking.
package huffman

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyInput      = errors.New("huffman: empty input")
	ErrDegenerateTable = errors.New("huffman: degenerate frequency table")
	ErrUnknownSymbol   = errors.New("huffman: symbol not in code table")
	ErrInvalidTable    = errors.New("huffman: invalid code table")
	ErrCorruptStream   = errors.New("huffman: corrupt bit stream")
)

// Code is one symbol's prefix code: the low Len bits of Bits, MSB first.
type Code struct {
	Bits uint64
	Len  int
}

// String renders the code as a "0"/"1" string, e.g. "0110".
func (c Code) String() string {
	var b strings.Builder
	for i := c.Len - 1; i >= 0; i-- {
		if c.Bits>>uint(i)&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseCode parses a "0"/"1" string back into a Code.
func ParseCode(s string) (Code, error) {
	if s == "" {
		return Code{}, fmt.Errorf("%w: empty code string", ErrInvalidTable)
	}
	if len(s) > 64 {
		return Code{}, fmt.Errorf("%w: code longer than 64 bits", ErrInvalidTable)
	}
	var c Code
	for i := 0; i < len(s); i++ {
		c.Bits <<= 1
		switch s[i] {
		case '1':
			c.Bits |= 1
		case '0':
		default:
			return Code{}, fmt.Errorf("%w: code %q contains %q", ErrInvalidTable, s, s[i])
		}
		c.Len++
	}
	return c, nil
}

// CodeTable maps each symbol to its prefix code.
type CodeTable map[int]Code

// Symbols returns the table's symbols in ascending order.
func (t CodeTable) Symbols() []int {
	syms := make([]int, 0, len(t))
	for s := range t {
		syms = append(syms, s)
	}
	sort.Ints(syms)
	return syms
}

// CountFrequencies scans an ordered symbol sequence and returns the
// per-symbol occurrence counts. The sequence must be non-empty.
func CountFrequencies(symbols []int) (map[int]uint64, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptyInput
	}
	freqs := make(map[int]uint64)
	for _, s := range symbols {
		freqs[s]++
	}
	return freqs, nil
}

// huffmanNode is one node of the code-length tree. Leaves carry a symbol;
// internal nodes carry the sum of their children's counts.
type huffmanNode struct {
	symbol int
	count  uint64
	seq    int // insertion order, breaks count ties deterministically
	left   *huffmanNode
	right  *huffmanNode
}

// huffmanHeap is a min-heap over (count, seq).
type huffmanHeap []*huffmanNode

func (h huffmanHeap) Len() int { return len(h) }
func (h huffmanHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	return h[i].seq < h[j].seq
}
func (h huffmanHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *huffmanHeap) Push(x any) {
	*h = append(*h, x.(*huffmanNode))
}

func (h *huffmanHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// BuildCodes constructs a minimum-redundancy prefix code for the given
// frequency table.
//
// The tree is built with a min-heap keyed by (count, insertion sequence);
// leaves are inserted in ascending symbol order, so equal-weight ties break
// identically on every build. The first node extracted at each merge becomes
// the 0 child. The tree only determines code lengths: the codes themselves
// are canonical (within each length, assigned in ascending symbol order),
// so two builds from the same frequencies yield byte-identical tables.
//
// A table with a single symbol yields a one-bit code "0". An empty table
// fails with ErrEmptyInput; a zero count fails with ErrDegenerateTable.
func BuildCodes(freqs map[int]uint64) (CodeTable, error) {
	if len(freqs) == 0 {
		return nil, ErrEmptyInput
	}

	symbols := make([]int, 0, len(freqs))
	for s, count := range freqs {
		if count == 0 {
			return nil, fmt.Errorf("%w: symbol %d has zero count", ErrDegenerateTable, s)
		}
		if s < 0 {
			return nil, fmt.Errorf("%w: negative symbol %d", ErrDegenerateTable, s)
		}
		symbols = append(symbols, s)
	}
	sort.Ints(symbols)

	lengths := make(map[int]int, len(symbols))

	if len(symbols) == 1 {
		// A one-node tree has no root-to-leaf path; the single symbol
		// still needs a code the unpacker can count bits with.
		lengths[symbols[0]] = 1
		return canonicalCodes(lengths), nil
	}

	nodes := make(huffmanHeap, 0, len(symbols))
	seq := 0
	for _, s := range symbols {
		nodes = append(nodes, &huffmanNode{symbol: s, count: freqs[s], seq: seq})
		seq++
	}
	heap.Init(&nodes)

	for nodes.Len() > 1 {
		left := heap.Pop(&nodes).(*huffmanNode)
		right := heap.Pop(&nodes).(*huffmanNode)
		heap.Push(&nodes, &huffmanNode{
			symbol: -1,
			count:  left.count + right.count,
			seq:    seq,
			left:   left,
			right:  right,
		})
		seq++
	}

	computeLengths(nodes[0], 0, lengths)
	return canonicalCodes(lengths), nil
}

// computeLengths records each leaf's depth as its code length.
func computeLengths(node *huffmanNode, depth int, lengths map[int]int) {
	if node.left == nil && node.right == nil {
		lengths[node.symbol] = depth
		return
	}
	computeLengths(node.left, depth+1, lengths)
	computeLengths(node.right, depth+1, lengths)
}

// canonicalCodes assigns canonical codes from code lengths: codes of the same
// length are consecutive, in ascending symbol order.
func canonicalCodes(lengths map[int]int) CodeTable {
	maxLen := 0
	symbols := make([]int, 0, len(lengths))
	for s, l := range lengths {
		symbols = append(symbols, s)
		if l > maxLen {
			maxLen = l
		}
	}

	lengthCount := make([]int, maxLen+1)
	for _, l := range lengths {
		lengthCount[l]++
	}

	code := uint64(0)
	nextCode := make([]uint64, maxLen+1)
	for bits := 1; bits <= maxLen; bits++ {
		code = (code + uint64(lengthCount[bits-1])) << 1
		nextCode[bits] = code
	}

	// Sort by (length, symbol) so assignment order is deterministic.
	sort.Slice(symbols, func(i, j int) bool {
		li, lj := lengths[symbols[i]], lengths[symbols[j]]
		if li != lj {
			return li < lj
		}
		return symbols[i] < symbols[j]
	})

	table := make(CodeTable, len(symbols))
	for _, s := range symbols {
		l := lengths[s]
		table[s] = Code{Bits: nextCode[l], Len: l}
		nextCode[l]++
	}
	return table
}

// Validate checks that the table is a well-formed prefix code: non-empty,
// codes of sane length, and no code a prefix of another.
func (t CodeTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidTable)
	}
	_, err := newDecodeTree(t)
	return err
}
