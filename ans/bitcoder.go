package ans

import "github.com/cocosip/go-mesh-codec/bitio"

// RAnsBitEncoder accumulates a sequence of bits and flushes them as a single
// rABS-coded run with a uniform probability estimated from the observed bit
// frequencies.
type RAnsBitEncoder struct {
	bits []bool
}

// NewRAnsBitEncoder returns an empty encoder.
func NewRAnsBitEncoder() *RAnsBitEncoder {
	return &RAnsBitEncoder{}
}

// EncodeBit appends one bit to the pending run.
func (e *RAnsBitEncoder) EncodeBit(bit bool) {
	e.bits = append(e.bits, bit)
}

// EndEncoding estimates zero_prob from the accumulated bits, rABS-codes them
// (fed to the coder in reverse of generation order, since rABS is LIFO), and
// appends [zero_prob u8][varint size][payload] to out.
func (e *RAnsBitEncoder) EndEncoding(out *bitio.EncoderBuffer) error {
	zeroProb := estimateZeroProb(e.bits)
	coder := NewAnsCoder()
	for i := len(e.bits) - 1; i >= 0; i-- {
		if err := coder.EncodeBit(e.bits[i], zeroProb); err != nil {
			return err
		}
	}
	payload, err := coder.Finish()
	if err != nil {
		return err
	}
	out.EncodeU8(zeroProb)
	out.EncodeVarint(uint64(len(payload)))
	out.EncodeBytes(payload)
	return nil
}

func estimateZeroProb(bits []bool) uint8 {
	if len(bits) == 0 {
		return 128
	}
	zeros := 0
	for _, b := range bits {
		if !b {
			zeros++
		}
	}
	p := (zeros*p8Precision + len(bits)/2) / len(bits)
	if p < 1 {
		p = 1
	}
	if p > 255 {
		p = 255
	}
	return uint8(p)
}

// RAnsBitDecoder is the inverse of RAnsBitEncoder: it reads the whole run up
// front, then serves bits one at a time in original generation order.
type RAnsBitDecoder struct {
	coder *AnsDecoder
	p0    uint8
}

// NewRAnsBitDecoder reads [zero_prob u8][varint size][payload] from d and
// prepares to decode bits in original order.
func NewRAnsBitDecoder(d *bitio.DecoderBuffer) (*RAnsBitDecoder, error) {
	p0, err := d.DecodeU8()
	if err != nil {
		return nil, err
	}
	size, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	payload, err := d.DecodeBytes(int(size))
	if err != nil {
		return nil, err
	}
	coder, err := NewAnsDecoder(payload)
	if err != nil {
		return nil, err
	}
	return &RAnsBitDecoder{coder: coder, p0: p0}, nil
}

// DecodeNextBit returns the next bit in original generation order.
func (d *RAnsBitDecoder) DecodeNextBit() (bool, error) {
	return d.coder.DecodeBit(d.p0)
}
