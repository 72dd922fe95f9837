package ans

import "github.com/cocosip/go-mesh-codec/bitio"

// FoldedBit32Encoder codes fixed-width unsigned integers as one independent
// stream per bit position (width streams, at most 32): bit i of every value
// goes to its own
// RAnsBitEncoder. This outperforms a single DirectBitEncoder when a group of
// values shares a width but the high bits are heavily skewed toward zero
// (the common case for KD-tree leaf residuals), since each bit position gets
// its own estimated probability instead of sharing one flat code.
type FoldedBit32Encoder struct {
	width    int
	encoders []*RAnsBitEncoder
}

// NewFoldedBit32Encoder returns an encoder for values of the given bit
// width (0..32).
func NewFoldedBit32Encoder(width int) *FoldedBit32Encoder {
	e := &FoldedBit32Encoder{width: width, encoders: make([]*RAnsBitEncoder, width)}
	for i := range e.encoders {
		e.encoders[i] = NewRAnsBitEncoder()
	}
	return e
}

// EncodeValue appends one value's width bits, LSB first, one bit to each
// per-position stream.
func (e *FoldedBit32Encoder) EncodeValue(v uint32) {
	for i := 0; i < e.width; i++ {
		e.encoders[i].EncodeBit((v>>uint(i))&1 != 0)
	}
}

// EndEncoding flushes every per-position stream in order.
func (e *FoldedBit32Encoder) EndEncoding(out *bitio.EncoderBuffer) error {
	for _, enc := range e.encoders {
		if err := enc.EndEncoding(out); err != nil {
			return err
		}
	}
	return nil
}

// FoldedBit32Decoder is the inverse of FoldedBit32Encoder.
type FoldedBit32Decoder struct {
	width    int
	decoders []*RAnsBitDecoder
}

// NewFoldedBit32Decoder reads width independent per-bit-position streams
// from d.
func NewFoldedBit32Decoder(d *bitio.DecoderBuffer, width int) (*FoldedBit32Decoder, error) {
	fd := &FoldedBit32Decoder{width: width, decoders: make([]*RAnsBitDecoder, width)}
	for i := 0; i < width; i++ {
		dec, err := NewRAnsBitDecoder(d)
		if err != nil {
			return nil, err
		}
		fd.decoders[i] = dec
	}
	return fd, nil
}

// DecodeValue reconstructs the next value from its width per-position bits.
func (fd *FoldedBit32Decoder) DecodeValue() (uint32, error) {
	var v uint32
	for i := 0; i < fd.width; i++ {
		bit, err := fd.decoders[i].DecodeNextBit()
		if err != nil {
			return 0, err
		}
		if bit {
			v |= uint32(1) << uint(i)
		}
	}
	return v, nil
}
