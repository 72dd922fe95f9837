package ans

import (
	"errors"

	"github.com/cocosip/go-mesh-codec/bitio"
)

var (
	// ErrMalformedTable is returned when a decoded rANS probability table
	// does not sum to the expected precision, or is otherwise inconsistent.
	ErrMalformedTable = errors.New("ans: malformed probability table")
	// ErrNormalizationFailed is returned when the probability fix-up
	// algorithm cannot converge without zeroing a positive frequency.
	ErrNormalizationFailed = errors.New("ans: probability normalization did not converge")
)

// RAnsSymbol is one entry of a normalized rANS frequency table.
type RAnsSymbol struct {
	Prob    uint32
	CumProb uint32
}

// NormalizeFrequencies rescales raw symbol counts so they sum exactly to
// 1<<precisionBits, rounding proportionally and then fixing the rounding
// error by adjusting the largest-probability symbol; a symbol with a
// positive raw count never gets rounded down to zero probability.
// Iterates a bounded number of times; returns ErrNormalizationFailed
// if it cannot converge without starving a positive-count symbol.
func NormalizeFrequencies(counts []uint64, precisionBits int) ([]uint32, error) {
	precision := uint64(1) << uint(precisionBits)
	total := uint64(0)
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return make([]uint32, len(counts)), nil
	}
	probs := make([]uint64, len(counts))
	var sum uint64
	for i, c := range counts {
		if c == 0 {
			continue
		}
		p := (c*precision + total/2) / total
		if p == 0 {
			p = 1
		}
		probs[i] = p
		sum += p
	}
	for iter := 0; sum != precision && iter < len(counts)+64; iter++ {
		largest := -1
		for i, p := range probs {
			if counts[i] == 0 {
				continue
			}
			if largest == -1 || p > probs[largest] {
				largest = i
			}
		}
		if largest == -1 {
			return nil, ErrNormalizationFailed
		}
		if sum > precision {
			deficit := sum - precision
			if deficit >= probs[largest] {
				return nil, ErrNormalizationFailed
			}
			probs[largest] -= deficit
			sum -= deficit
		} else {
			probs[largest] += precision - sum
			sum = precision
		}
	}
	if sum != precision {
		return nil, ErrNormalizationFailed
	}
	out := make([]uint32, len(counts))
	for i, p := range probs {
		out[i] = uint32(p)
	}
	return out, nil
}

// BuildCumulative fills CumProb from Prob for a dense table.
func BuildCumulative(probs []uint32) []RAnsSymbol {
	table := make([]RAnsSymbol, len(probs))
	var cum uint32
	for i, p := range probs {
		table[i] = RAnsSymbol{Prob: p, CumProb: cum}
		cum += p
	}
	return table
}

// EncodeTable serializes probs (length numSymbols, proportional to
// 1<<precisionBits) as: varint num_symbols (u8 pre-v2.0), then one
// mode-tagged byte per symbol (or per zero-run): mode 0/1/2 in the low two
// bits select 0/1/2 extra bytes holding the high bits of a probability up
// to 22 bits; mode 3 marks a run of consecutive zero-probability symbols,
// its high six bits holding run_length-1.
func EncodeTable(out *bitio.EncoderBuffer, probs []uint32, version bitio.Version) {
	if version.AtLeast(2, 0) {
		out.EncodeVarint(uint64(len(probs)))
	} else {
		out.EncodeU8(uint8(len(probs)))
	}
	i := 0
	for i < len(probs) {
		if probs[i] == 0 {
			run := 0
			for i+run < len(probs) && probs[i+run] == 0 && run < 64 {
				run++
			}
			out.EncodeU8(byte(((run - 1) << 2) | 3))
			i += run
			continue
		}
		p := probs[i]
		switch {
		case p < 1<<6:
			out.EncodeU8(byte((p << 2) | 0))
		case p < 1<<14:
			out.EncodeU8(byte(((p & 0x3f) << 2) | 1))
			out.EncodeU8(byte(p >> 6))
		default: // < 1<<22
			out.EncodeU8(byte(((p & 0x3f) << 2) | 2))
			out.EncodeU8(byte((p >> 6) & 0xff))
			out.EncodeU8(byte((p >> 14) & 0xff))
		}
		i++
	}
}

// DecodeTable is the inverse of EncodeTable. numSymbols is capped at
// maxRawAlphabet; the decoded probabilities must sum exactly to
// 1<<precisionBits or ErrMalformedTable is returned.
func DecodeTable(d *bitio.DecoderBuffer, precisionBits int) ([]uint32, error) {
	var numSymbols uint64
	var err error
	if d.Version.AtLeast(2, 0) {
		numSymbols, err = d.DecodeVarint()
	} else {
		var b uint8
		b, err = d.DecodeU8()
		numSymbols = uint64(b)
	}
	if err != nil {
		return nil, err
	}
	precision := uint32(1) << uint(precisionBits)
	if numSymbols > maxRawAlphabet {
		return nil, ErrMalformedTable
	}
	probs := make([]uint32, numSymbols)
	var sum uint32
	i := uint64(0)
	for i < numSymbols {
		b, err := d.DecodeU8()
		if err != nil {
			return nil, err
		}
		mode := b & 3
		switch mode {
		case 3:
			run := uint64(b>>2) + 1
			if i+run > numSymbols {
				return nil, ErrMalformedTable
			}
			i += run
		case 0:
			probs[i] = uint32(b >> 2)
			sum += probs[i]
			i++
		case 1:
			b2, err := d.DecodeU8()
			if err != nil {
				return nil, err
			}
			probs[i] = uint32(b>>2) | (uint32(b2) << 6)
			sum += probs[i]
			i++
		case 2:
			b2, err := d.DecodeU8()
			if err != nil {
				return nil, err
			}
			b3, err := d.DecodeU8()
			if err != nil {
				return nil, err
			}
			probs[i] = uint32(b>>2) | (uint32(b2) << 6) | (uint32(b3) << 14)
			sum += probs[i]
			i++
		}
	}
	if sum != precision {
		return nil, ErrMalformedTable
	}
	return probs, nil
}

// RAnsSymbolEncoder codes symbols against a fixed-precision normalized
// frequency table.
type RAnsSymbolEncoder struct {
	precisionBits int
	precision     uint32
	lRansBase     uint32
	table         []RAnsSymbol
	x             uint32
	buf           []byte
}

// NewRAnsSymbolEncoder builds an encoder for the given precision and
// normalized table (as produced by NormalizeFrequencies+BuildCumulative).
func NewRAnsSymbolEncoder(precisionBits int, table []RAnsSymbol) *RAnsSymbolEncoder {
	precision := uint32(1) << uint(precisionBits)
	return &RAnsSymbolEncoder{
		precisionBits: precisionBits,
		precision:     precision,
		lRansBase:     precision * 4,
		table:         table,
		x:             precision * 4,
	}
}

// EncodeSymbol writes one symbol.
func (e *RAnsSymbolEncoder) EncodeSymbol(sym uint32) error {
	if int(sym) >= len(e.table) || e.table[sym].Prob == 0 {
		return ErrMalformedTable
	}
	s := e.table[sym]
	xMax := ((e.lRansBase >> uint(e.precisionBits)) << 8) * s.Prob
	for e.x >= xMax {
		e.buf = append(e.buf, byte(e.x&0xff))
		e.x >>= 8
	}
	e.x = (e.x/s.Prob)*e.precision + e.x%s.Prob + s.CumProb
	return nil
}

// Finish flushes the coder state with the same trailing-tag serialization
// as AnsCoder.Finish, offset by this coder's own lRansBase floor.
func (e *RAnsSymbolEncoder) Finish() ([]byte, error) {
	return flushAnsState(append([]byte{}, e.buf...), e.x-e.lRansBase)
}

// RAnsSymbolDecoder is the inverse of RAnsSymbolEncoder.
type RAnsSymbolDecoder struct {
	precisionBits int
	precision     uint32
	lRansBase     uint32
	table         []RAnsSymbol
	lut           []uint32 // rem -> symbol
	buf           []byte
	cursor        int
	x             uint32
}

// NewRAnsSymbolDecoder builds a decoder from a normalized table and the
// coded payload (the payload must have been produced with a matching
// precisionBits and table).
func NewRAnsSymbolDecoder(precisionBits int, table []RAnsSymbol, payload []byte) (*RAnsSymbolDecoder, error) {
	precision := uint32(1) << uint(precisionBits)
	lut := make([]uint32, precision)
	for sym, s := range table {
		for r := s.CumProb; r < s.CumProb+s.Prob; r++ {
			lut[r] = uint32(sym)
		}
	}
	d := &RAnsSymbolDecoder{
		precisionBits: precisionBits,
		precision:     precision,
		lRansBase:     precision * 4,
		table:         table,
		lut:           lut,
		buf:           payload,
		cursor:        len(payload),
	}
	if err := d.readInit(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *RAnsSymbolDecoder) readInit() error {
	state, cursor, err := readAnsState(d.buf, d.cursor)
	if err != nil {
		return err
	}
	d.x = state + d.lRansBase
	d.cursor = cursor
	return nil
}

func (d *RAnsSymbolDecoder) popByte() (byte, error) {
	if d.cursor < 1 {
		return 0, ErrAnsTruncated
	}
	d.cursor--
	return d.buf[d.cursor], nil
}

// DecodeSymbol returns the next symbol.
func (d *RAnsSymbolDecoder) DecodeSymbol() (uint32, error) {
	rem := d.x & (d.precision - 1)
	sym := d.lut[rem]
	s := d.table[sym]
	d.x = s.Prob*(d.x>>uint(d.precisionBits)) + rem - s.CumProb
	for d.x < d.lRansBase {
		b, err := d.popByte()
		if err != nil {
			return 0, err
		}
		d.x = (d.x << 8) | uint32(b)
	}
	return sym, nil
}
