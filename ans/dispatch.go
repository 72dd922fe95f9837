package ans

import (
	"math"
	"math/bits"

	"github.com/cocosip/go-mesh-codec/bitio"
)

// Scheme is the first byte of an encode_symbols/decode_symbols stream:
// it picks between bit-length-tagged and flat-alphabet coding.
type Scheme uint8

const (
	SchemeTagged Scheme = 0
	SchemeRaw    Scheme = 1
)

// maxRawAlphabet is the first symbol value too large for the RAW scheme's
// dense frequency table; streams whose maximum reaches it are always coded
// TAGGED. Shared with DecodeTable's sanity cap on declared table sizes.
const maxRawAlphabet = 1 << 18

// ComputeRansUnclampedPrecision returns ceil(1.5*log2(maxValue+1)) with no
// clamping, the raw precision suggested by an alphabet whose largest symbol
// is maxValue.
func ComputeRansUnclampedPrecision(maxValue uint32) int {
	if maxValue == 0 {
		return 0
	}
	bitsNeeded := math.Log2(float64(maxValue) + 1)
	return int(math.Ceil(1.5 * bitsNeeded))
}

// ComputeRansPrecisionFromUniqueSymbolsBitLength returns
// ceil(1.5*bitLength) clamped to [12,20], the working range for
// RAW-scheme precision.
func ComputeRansPrecisionFromUniqueSymbolsBitLength(bitLength int) int {
	p := int(math.Ceil(1.5 * float64(bitLength)))
	if p < 12 {
		p = 12
	}
	if p > 20 {
		p = 20
	}
	return p
}

func bitLengthOf(v uint32) int {
	if v == 0 {
		return 0
	}
	return 32 - bits.LeadingZeros32(v)
}

func histogram(values []uint32, size int) []uint64 {
	counts := make([]uint64, size)
	for _, v := range values {
		counts[v]++
	}
	return counts
}

func maxOf(values []uint32) uint32 {
	var m uint32
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// EncodeSymbols implements the dispatcher entry point: it picks
// TAGGED or RAW by comparing ShannonEntropyTracker-estimated total sizes,
// writes the scheme tag, then the chosen encoding.
func EncodeSymbols(out *bitio.EncoderBuffer, version bitio.Version, symbols []uint32, numComponents int) error {
	if len(symbols) == 0 {
		// Nothing to code; write only the scheme tag so the decoder (which
		// skips straight to returning an empty slice for numValues==0) stays
		// in sync with the stream.
		out.EncodeU8(byte(SchemeRaw))
		return nil
	}
	tags := make([]uint32, len(symbols))
	for i, s := range symbols {
		tags[i] = uint32(bitLengthOf(s))
	}

	// RAW flattens the alphabet into a dense frequency table, so it is only
	// viable while the largest symbol stays small; past that the table alone
	// would dwarf the payload.
	if maxOf(symbols) >= maxRawAlphabet {
		return encodeTagged(out, version, symbols, tags)
	}

	taggedTracker := NewShannonEntropyTracker()
	for _, t := range tags {
		taggedTracker.Push(t)
	}
	taggedDataBits, taggedTableBits := taggedTracker.Peek()
	var payloadBits float64
	for _, t := range tags {
		payloadBits += float64(t)
	}
	taggedTotal := taggedDataBits + taggedTableBits + payloadBits

	rawTracker := NewShannonEntropyTracker()
	for _, s := range symbols {
		rawTracker.Push(s)
	}
	rawDataBits, rawTableBits := rawTracker.Peek()
	rawTotal := rawDataBits + rawTableBits

	if taggedTotal <= rawTotal {
		return encodeTagged(out, version, symbols, tags)
	}
	return encodeRaw(out, version, symbols)
}

// maxDecodeSymbols bounds how many symbols a single stream may declare, so
// a corrupt or truncated count fails cleanly instead of attempting an
// absurd allocation.
const maxDecodeSymbols = 1 << 26

// DecodeSymbols is the inverse of EncodeSymbols; numValues must match the
// count the caller encoded.
func DecodeSymbols(d *bitio.DecoderBuffer, numValues int) ([]uint32, error) {
	if numValues < 0 || numValues > maxDecodeSymbols {
		return nil, ErrMalformedTable
	}
	schemeByte, err := d.DecodeU8()
	if err != nil {
		return nil, err
	}
	if numValues == 0 {
		// The encoder wrote only the scheme tag for an empty stream.
		return nil, nil
	}
	switch Scheme(schemeByte) {
	case SchemeTagged:
		return decodeTagged(d, numValues)
	case SchemeRaw:
		return decodeRaw(d, numValues)
	default:
		return nil, ErrMalformedTable
	}
}

func encodeTagged(out *bitio.EncoderBuffer, version bitio.Version, symbols []uint32, tags []uint32) error {
	out.EncodeU8(byte(SchemeTagged))
	maxTag := maxOf(tags)
	precisionBits := ComputeRansPrecisionFromUniqueSymbolsBitLength(bitLengthOf(maxTag + 1))
	counts := histogram(tags, int(maxTag)+1)
	probs, err := NormalizeFrequencies(counts, precisionBits)
	if err != nil {
		return err
	}
	table := BuildCumulative(probs)
	out.EncodeU8(byte(precisionBits))
	EncodeTable(out, probs, version)

	enc := NewRAnsSymbolEncoder(precisionBits, table)
	for i := len(tags) - 1; i >= 0; i-- {
		if err := enc.EncodeSymbol(tags[i]); err != nil {
			return err
		}
	}
	tail, err := enc.Finish()
	if err != nil {
		return err
	}
	out.EncodeVarint(uint64(len(tail)))
	out.EncodeBytes(tail)

	bitEnc := bitio.NewDirectBitEncoder()
	for i, s := range symbols {
		bitEnc.EncodeLeastSignificantBits32(s, int(tags[i]))
	}
	bitEnc.EndEncoding(out)
	return nil
}

func decodeTagged(d *bitio.DecoderBuffer, numValues int) ([]uint32, error) {
	precisionBits, err := d.DecodeU8()
	if err != nil {
		return nil, err
	}
	if precisionBits < 1 || precisionBits > 20 {
		return nil, ErrMalformedTable
	}
	probs, err := DecodeTable(d, int(precisionBits))
	if err != nil {
		return nil, err
	}
	table := BuildCumulative(probs)
	size, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	payload, err := d.DecodeBytes(int(size))
	if err != nil {
		return nil, err
	}
	rDec, err := NewRAnsSymbolDecoder(int(precisionBits), table, payload)
	if err != nil {
		return nil, err
	}
	tags := make([]int, numValues)
	for i := 0; i < numValues; i++ {
		t, err := rDec.DecodeSymbol()
		if err != nil {
			return nil, err
		}
		tags[i] = int(t)
	}
	bitDec, err := bitio.NewDirectBitDecoder(d)
	if err != nil {
		return nil, err
	}
	symbols := make([]uint32, numValues)
	for i := 0; i < numValues; i++ {
		v, err := bitDec.DecodeLeastSignificantBits32(tags[i])
		if err != nil {
			return nil, err
		}
		symbols[i] = v
	}
	return symbols, nil
}

func encodeRaw(out *bitio.EncoderBuffer, version bitio.Version, symbols []uint32) error {
	out.EncodeU8(byte(SchemeRaw))
	maxVal := maxOf(symbols)
	precisionBits := ComputeRansPrecisionFromUniqueSymbolsBitLength(bitLengthOf(maxVal + 1))
	counts := histogram(symbols, int(maxVal)+1)
	probs, err := NormalizeFrequencies(counts, precisionBits)
	if err != nil {
		return err
	}
	table := BuildCumulative(probs)
	out.EncodeU8(byte(precisionBits))
	EncodeTable(out, probs, version)

	enc := NewRAnsSymbolEncoder(precisionBits, table)
	for i := len(symbols) - 1; i >= 0; i-- {
		if err := enc.EncodeSymbol(symbols[i]); err != nil {
			return err
		}
	}
	tail, err := enc.Finish()
	if err != nil {
		return err
	}
	out.EncodeVarint(uint64(len(tail)))
	out.EncodeBytes(tail)
	return nil
}

func decodeRaw(d *bitio.DecoderBuffer, numValues int) ([]uint32, error) {
	precisionBits, err := d.DecodeU8()
	if err != nil {
		return nil, err
	}
	if precisionBits < 1 || precisionBits > 20 {
		return nil, ErrMalformedTable
	}
	probs, err := DecodeTable(d, int(precisionBits))
	if err != nil {
		return nil, err
	}
	table := BuildCumulative(probs)
	size, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	payload, err := d.DecodeBytes(int(size))
	if err != nil {
		return nil, err
	}
	rDec, err := NewRAnsSymbolDecoder(int(precisionBits), table, payload)
	if err != nil {
		return nil, err
	}
	symbols := make([]uint32, numValues)
	for i := 0; i < numValues; i++ {
		v, err := rDec.DecodeSymbol()
		if err != nil {
			return nil, err
		}
		symbols[i] = v
	}
	return symbols, nil
}
