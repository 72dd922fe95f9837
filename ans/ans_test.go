package ans

import (
	"math/rand"
	"testing"

	"github.com/cocosip/go-mesh-codec/bitio"
)

func TestRabsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, p0 := range []uint8{1, 32, 128, 200, 255} {
		bits := make([]bool, 500)
		for i := range bits {
			// Draw with roughly the coded probability so renormalization sees
			// a realistic stream; p0=1 and p0=255 give near-pure ones and
			// near-pure zeros.
			bits[i] = rng.Intn(256) >= int(p0)
		}
		coder := NewAnsCoder()
		for i := len(bits) - 1; i >= 0; i-- {
			if err := coder.EncodeBit(bits[i], p0); err != nil {
				t.Fatalf("EncodeBit(p0=%d): %v", p0, err)
			}
		}
		payload, err := coder.Finish()
		if err != nil {
			t.Fatalf("Finish(p0=%d): %v", p0, err)
		}
		dec, err := NewAnsDecoder(payload)
		if err != nil {
			t.Fatalf("NewAnsDecoder(p0=%d): %v", p0, err)
		}
		for i, want := range bits {
			got, err := dec.DecodeBit(p0)
			if err != nil {
				t.Fatalf("DecodeBit %d (p0=%d): %v", i, p0, err)
			}
			if got != want {
				t.Fatalf("bit %d (p0=%d): got %v want %v", i, p0, got, want)
			}
		}
	}
}

func TestRansBitCoderRoundTrip(t *testing.T) {
	cases := [][]bool{
		nil,
		{true},
		{false},
		{true, false, true, true, false, false, false, true},
	}
	long := make([]bool, 1000)
	for i := range long {
		long[i] = i%7 == 0
	}
	cases = append(cases, long)

	for ci, bits := range cases {
		enc := NewRAnsBitEncoder()
		for _, b := range bits {
			enc.EncodeBit(b)
		}
		out := bitio.NewEncoderBuffer()
		if err := enc.EndEncoding(out); err != nil {
			t.Fatalf("case %d: EndEncoding: %v", ci, err)
		}
		d := bitio.NewDecoderBuffer(out.Bytes())
		dec, err := NewRAnsBitDecoder(d)
		if err != nil {
			t.Fatalf("case %d: NewRAnsBitDecoder: %v", ci, err)
		}
		for i, want := range bits {
			got, err := dec.DecodeNextBit()
			if err != nil {
				t.Fatalf("case %d bit %d: %v", ci, i, err)
			}
			if got != want {
				t.Fatalf("case %d bit %d: got %v want %v", ci, i, got, want)
			}
		}
	}
}

func TestNormalizeFrequenciesSum(t *testing.T) {
	cases := [][]uint64{
		{1},
		{1, 1},
		{1000, 1, 1, 1},
		{5, 0, 0, 7, 0, 3},
		{1, 1 << 40},
	}
	for ci, counts := range cases {
		for _, bits := range []int{10, 11, 12} {
			probs, err := NormalizeFrequencies(counts, bits)
			if err != nil {
				t.Fatalf("case %d bits %d: %v", ci, bits, err)
			}
			var sum uint32
			for i, p := range probs {
				if counts[i] > 0 && p == 0 {
					t.Fatalf("case %d bits %d: positive count %d starved", ci, bits, i)
				}
				if counts[i] == 0 && p != 0 {
					t.Fatalf("case %d bits %d: zero count %d gained probability", ci, bits, i)
				}
				sum += p
			}
			if sum != uint32(1)<<uint(bits) {
				t.Fatalf("case %d bits %d: sum %d", ci, bits, sum)
			}
		}
	}
}

func TestTableRoundTrip(t *testing.T) {
	counts := []uint64{10, 0, 0, 0, 25, 1, 0, 900, 0, 0, 0, 0, 0, 0, 64, 2}
	probs, err := NormalizeFrequencies(counts, 12)
	if err != nil {
		t.Fatalf("NormalizeFrequencies: %v", err)
	}
	out := bitio.NewEncoderBuffer()
	EncodeTable(out, probs, bitio.DefaultMeshVersion)
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeTable(d, 12)
	if err != nil {
		t.Fatalf("DecodeTable: %v", err)
	}
	if len(got) != len(probs) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(probs))
	}
	for i := range probs {
		if got[i] != probs[i] {
			t.Fatalf("prob %d: got %d want %d", i, got[i], probs[i])
		}
	}
}

func TestSymbolCoderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, precision := range []int{10, 11, 12} {
		symbols := make([]uint32, 2000)
		counts := make([]uint64, 9)
		for i := range symbols {
			// Skewed alphabet.
			s := uint32(rng.Intn(3))
			if rng.Intn(10) == 0 {
				s = uint32(3 + rng.Intn(6))
			}
			symbols[i] = s
			counts[s]++
		}
		probs, err := NormalizeFrequencies(counts, precision)
		if err != nil {
			t.Fatalf("NormalizeFrequencies: %v", err)
		}
		table := BuildCumulative(probs)
		enc := NewRAnsSymbolEncoder(precision, table)
		for i := len(symbols) - 1; i >= 0; i-- {
			if err := enc.EncodeSymbol(symbols[i]); err != nil {
				t.Fatalf("EncodeSymbol: %v", err)
			}
		}
		payload, err := enc.Finish()
		if err != nil {
			t.Fatalf("Finish: %v", err)
		}
		dec, err := NewRAnsSymbolDecoder(precision, table, payload)
		if err != nil {
			t.Fatalf("NewRAnsSymbolDecoder: %v", err)
		}
		for i, want := range symbols {
			got, err := dec.DecodeSymbol()
			if err != nil {
				t.Fatalf("DecodeSymbol %d: %v", i, err)
			}
			if got != want {
				t.Fatalf("precision %d symbol %d: got %d want %d", precision, i, got, want)
			}
		}
	}
}

func TestEncodeDecodeSymbolsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	cases := [][]uint32{
		nil,
		{0},
		{0, 0, 0, 0},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{1 << 20, 0, 5, 1<<18 + 3},
	}
	clustered := make([]uint32, 3000)
	for i := range clustered {
		clustered[i] = uint32(rng.Intn(16))
	}
	cases = append(cases, clustered)

	for ci, symbols := range cases {
		out := bitio.NewEncoderBuffer()
		if err := EncodeSymbols(out, bitio.DefaultMeshVersion, symbols, 1); err != nil {
			t.Fatalf("case %d: EncodeSymbols: %v", ci, err)
		}
		d := bitio.NewDecoderBuffer(out.Bytes())
		got, err := DecodeSymbols(d, len(symbols))
		if err != nil {
			t.Fatalf("case %d: DecodeSymbols: %v", ci, err)
		}
		if len(got) != len(symbols) {
			t.Fatalf("case %d: length %d want %d", ci, len(got), len(symbols))
		}
		for i := range symbols {
			if got[i] != symbols[i] {
				t.Fatalf("case %d symbol %d: got %d want %d", ci, i, got[i], symbols[i])
			}
		}
		if d.Remaining() != 0 {
			t.Fatalf("case %d: %d trailing bytes", ci, d.Remaining())
		}
	}
}

func TestFoldedBit32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 255, 1023, 513, 7, 999}
	const width = 10
	enc := NewFoldedBit32Encoder(width)
	for _, v := range values {
		enc.EncodeValue(v)
	}
	out := bitio.NewEncoderBuffer()
	if err := enc.EndEncoding(out); err != nil {
		t.Fatalf("EndEncoding: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	dec, err := NewFoldedBit32Decoder(d, width)
	if err != nil {
		t.Fatalf("NewFoldedBit32Decoder: %v", err)
	}
	for i, want := range values {
		got, err := dec.DecodeValue()
		if err != nil {
			t.Fatalf("DecodeValue %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("value %d: got %d want %d", i, got, want)
		}
	}
}
