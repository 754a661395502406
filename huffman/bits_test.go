package huffman

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func mustBuild(t *testing.T, symbols []int) CodeTable {
	t.Helper()
	freqs, err := CountFrequencies(symbols)
	if err != nil {
		t.Fatalf("CountFrequencies error: %v", err)
	}
	table, err := BuildCodes(freqs)
	if err != nil {
		t.Fatalf("BuildCodes error: %v", err)
	}
	return table
}

func TestPackExample(t *testing.T) {
	// [2,2,2,3,3,1] packs to 1+1+1+2+2+2 = 9 bits in 2 bytes.
	symbols := []int{2, 2, 2, 3, 3, 1}
	table := mustBuild(t, symbols)

	payload, bitLen, err := Pack(symbols, table)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	if bitLen != 9 {
		t.Errorf("bit length %d, want 9", bitLen)
	}
	if len(payload) != 2 {
		t.Errorf("payload %d bytes, want 2", len(payload))
	}

	decoded, err := Unpack(payload, bitLen, table, len(symbols))
	if err != nil {
		t.Fatalf("Unpack error: %v", err)
	}
	if !reflect.DeepEqual(decoded, symbols) {
		t.Errorf("round trip: got %v, want %v", decoded, symbols)
	}
}

func TestPackUnknownSymbol(t *testing.T) {
	table := mustBuild(t, []int{1, 2, 3})
	_, _, err := Pack([]int{1, 2, 9}, table)
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestPackEmpty(t *testing.T) {
	table := mustBuild(t, []int{1, 2})
	_, _, err := Pack(nil, table)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(5000) + 1
		alphabet := rng.Intn(500) + 1
		symbols := make([]int, n)
		for i := range symbols {
			symbols[i] = rng.Intn(alphabet)
		}

		table := mustBuild(t, symbols)
		payload, bitLen, err := Pack(symbols, table)
		if err != nil {
			t.Fatalf("trial %d: Pack error: %v", trial, err)
		}
		if want := (bitLen + 7) / 8; len(payload) != want {
			t.Fatalf("trial %d: payload %d bytes for %d bits, want %d", trial, len(payload), bitLen, want)
		}

		decoded, err := Unpack(payload, bitLen, table, n)
		if err != nil {
			t.Fatalf("trial %d: Unpack error: %v", trial, err)
		}
		if !reflect.DeepEqual(decoded, symbols) {
			t.Fatalf("trial %d: round trip mismatch", trial)
		}
	}
}

func TestSingleSymbolRun(t *testing.T) {
	// K copies of one symbol compress to exactly K bits before padding.
	const k = 37
	symbols := make([]int, k)
	for i := range symbols {
		symbols[i] = 5
	}

	table := mustBuild(t, symbols)
	payload, bitLen, err := Pack(symbols, table)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	if bitLen != k {
		t.Errorf("bit length %d, want %d", bitLen, k)
	}

	decoded, err := Unpack(payload, bitLen, table, k)
	if err != nil {
		t.Fatalf("Unpack error: %v", err)
	}
	if !reflect.DeepEqual(decoded, symbols) {
		t.Errorf("round trip mismatch for single-symbol run")
	}
}

func TestUnpackTruncatedPayload(t *testing.T) {
	symbols := make([]int, 400)
	rng := rand.New(rand.NewSource(9))
	for i := range symbols {
		symbols[i] = rng.Intn(64)
	}
	table := mustBuild(t, symbols)
	payload, bitLen, err := Pack(symbols, table)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}

	// Dropping the last byte must be detected, never a silent wrong answer.
	_, err = Unpack(payload[:len(payload)-1], bitLen, table, len(symbols))
	if !errors.Is(err, ErrCorruptStream) {
		t.Errorf("truncated payload: expected ErrCorruptStream, got %v", err)
	}
}

func TestUnpackWrongCounts(t *testing.T) {
	symbols := []int{1, 2, 3, 1, 2, 1}
	table := mustBuild(t, symbols)
	payload, bitLen, err := Pack(symbols, table)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}

	// Too few symbols requested: leftover bits.
	if _, err := Unpack(payload, bitLen, table, len(symbols)-1); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("short count: expected ErrCorruptStream, got %v", err)
	}
	// Too many symbols requested: stream exhausted.
	if _, err := Unpack(payload, bitLen, table, len(symbols)+1); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("long count: expected ErrCorruptStream, got %v", err)
	}
	// Bit length beyond the payload.
	if _, err := Unpack(payload, len(payload)*8+1, table, len(symbols)); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("oversized bit length: expected ErrCorruptStream, got %v", err)
	}
	if _, err := Unpack(payload, bitLen, table, 0); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("zero count: expected ErrCorruptStream, got %v", err)
	}
}

func TestUnpackRejectsInvalidTable(t *testing.T) {
	// "0" is a prefix of "01".
	bad := CodeTable{
		1: {Bits: 0b0, Len: 1},
		2: {Bits: 0b01, Len: 2},
	}
	if _, err := Unpack([]byte{0x00}, 3, bad, 2); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("prefix collision: expected ErrInvalidTable, got %v", err)
	}

	// Duplicate codes collide too.
	dup := CodeTable{
		1: {Bits: 0b1, Len: 1},
		2: {Bits: 0b1, Len: 1},
	}
	if _, err := Unpack([]byte{0x80}, 1, dup, 1); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("duplicate code: expected ErrInvalidTable, got %v", err)
	}
}

func TestUnpackCorruptedBits(t *testing.T) {
	// Single-symbol stream is all zero bits; a flipped bit hits the missing
	// 1 branch of the decode tree.
	symbols := []int{7, 7, 7, 7, 7, 7, 7, 7}
	table := mustBuild(t, symbols)
	payload, bitLen, err := Pack(symbols, table)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	payload[0] ^= 0x80
	if _, err := Unpack(payload, bitLen, table, len(symbols)); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("flipped bit: expected ErrCorruptStream, got %v", err)
	}
}

func BenchmarkPack(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	symbols := make([]int, 64*1024)
	for i := range symbols {
		symbols[i] = rng.Intn(512)
	}
	freqs, _ := CountFrequencies(symbols)
	table, _ := BuildCodes(freqs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Pack(symbols, table)
	}
}

func BenchmarkUnpack(b *testing.B) {
	rng := rand.New(rand.NewSource(2))
	symbols := make([]int, 64*1024)
	for i := range symbols {
		symbols[i] = rng.Intn(512)
	}
	freqs, _ := CountFrequencies(symbols)
	table, _ := BuildCodes(freqs)
	payload, bitLen, _ := Pack(symbols, table)

	b.ResetTimer()
	b.SetBytes(int64(len(payload)))
	for i := 0; i < b.N; i++ {
		Unpack(payload, bitLen, table, len(symbols))
	}
}
