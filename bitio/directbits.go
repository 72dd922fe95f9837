package bitio

// DirectBitEncoder packs bits MSB-first within 32-bit words and is framed
// with a fixed u32 byte-size prefix (never version-gated, unlike the size
// prefix StartBitDecoding reads).
type DirectBitEncoder struct {
	words      []uint32
	cur        uint32
	bitsInWord int
}

// NewDirectBitEncoder returns an empty encoder.
func NewDirectBitEncoder() *DirectBitEncoder {
	return &DirectBitEncoder{}
}

// EncodeLeastSignificantBits32 packs the low n (0..32) bits of v, MSB-first
// within each 32-bit word.
func (e *DirectBitEncoder) EncodeLeastSignificantBits32(v uint32, n int) {
	if n == 0 {
		return
	}
	if n < 32 {
		v &= (uint32(1) << uint(n)) - 1
	}
	remaining := n
	for remaining > 0 {
		free := 32 - e.bitsInWord
		take := remaining
		if take > free {
			take = free
		}
		// Extract the top `take` bits of the remaining value and pack them
		// into the current word's next free (MSB-first) slot.
		shiftOut := remaining - take
		chunk := (v >> uint(shiftOut)) & ((uint32(1) << uint(take)) - 1)
		e.cur |= chunk << uint(free-take)
		e.bitsInWord += take
		remaining -= take
		if e.bitsInWord == 32 {
			e.words = append(e.words, e.cur)
			e.cur = 0
			e.bitsInWord = 0
		}
	}
}

// EndEncoding flushes any partial word and writes the size-prefixed payload
// to out.
func (e *DirectBitEncoder) EndEncoding(out *EncoderBuffer) {
	if e.bitsInWord > 0 {
		e.words = append(e.words, e.cur)
		e.cur = 0
		e.bitsInWord = 0
	}
	out.EncodeU32(uint32(len(e.words) * 4))
	for _, w := range e.words {
		out.EncodeU32(w)
	}
}

// DirectBitDecoder mirrors DirectBitEncoder.
type DirectBitDecoder struct {
	words      []uint32
	wordIdx    int
	bitsUsed   int
}

// NewDirectBitDecoder reads the size-prefixed payload from d.
func NewDirectBitDecoder(d *DecoderBuffer) (*DirectBitDecoder, error) {
	byteSize, err := d.DecodeU32()
	if err != nil {
		return nil, err
	}
	if int(byteSize) > d.Remaining() {
		return nil, ErrTruncated
	}
	numWords := int(byteSize) / 4
	words := make([]uint32, numWords)
	for i := range words {
		w, err := d.DecodeU32()
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return &DirectBitDecoder{words: words}, nil
}

// DecodeLeastSignificantBits32 is the inverse of the encoder's method.
func (dd *DirectBitDecoder) DecodeLeastSignificantBits32(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 32 {
		return 0, ErrInvalidBitCount
	}
	var result uint32
	remaining := n
	for remaining > 0 {
		if dd.wordIdx >= len(dd.words) {
			return 0, ErrTruncated
		}
		free := 32 - dd.bitsUsed
		take := remaining
		if take > free {
			take = free
		}
		shift := free - take
		chunk := (dd.words[dd.wordIdx] >> uint(shift)) & ((uint32(1) << uint(take)) - 1)
		result = (result << uint(take)) | chunk
		dd.bitsUsed += take
		remaining -= take
		if dd.bitsUsed == 32 {
			dd.wordIdx++
			dd.bitsUsed = 0
		}
	}
	return result, nil
}
