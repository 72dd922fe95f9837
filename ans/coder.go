// Package ans implements the entropy-coding substrate: the rABS binary
// coder and its shared asymmetric-numeral-systems state machine, the rANS
// multi-symbol coder built on top of it, the direct-bit fallback glue, and
// the Shannon-entropy-driven scheme dispatcher.
package ans

import "errors"

const (
	// lBase is the renormalization floor for the rABS state machine.
	lBase = 4096
	// ioBase is the byte granularity renormalization emits/consumes.
	ioBase = 256
	// p8Precision is the 8-bit probability precision rABS operates at.
	p8Precision = 256
)

var (
	// ErrAnsStateOverflow is returned when a coder's final state does not
	// fit the 2-bit-tag/30-bit-payload serialization.
	ErrAnsStateOverflow = errors.New("ans: state overflow on flush")
	// ErrAnsTruncated is returned when a decoder runs out of trailing bytes.
	ErrAnsTruncated = errors.New("ans: truncated coded buffer")
	// ErrAnsInvalidProbability is returned for a probability outside [1,255].
	ErrAnsInvalidProbability = errors.New("ans: probability out of range")
)

// AnsCoder is the rABS encoder: a LIFO asymmetric-numeral-systems state
// machine. Bytes are appended to Bytes() in generation order; the final
// state is serialized by Finish. A decoder consumes this buffer from its
// logical end backward (AnsDecoder), so the last bit encoded is the first
// bit decoded.
type AnsCoder struct {
	x   uint32
	buf []byte
}

// NewAnsCoder returns a coder initialized to the renormalization floor.
func NewAnsCoder() *AnsCoder {
	return &AnsCoder{x: lBase}
}

// EncodeBit writes bit with P(bit==0) given by p0 (an 8-bit-precision
// probability in [1,255]).
func (c *AnsCoder) EncodeBit(bit bool, p0 uint8) error {
	if p0 == 0 {
		return ErrAnsInvalidProbability
	}
	p := uint32(p8Precision) - uint32(p0)
	var ls uint32
	if bit {
		ls = p
	} else {
		ls = uint32(p0)
	}
	for c.x >= lBase*ls {
		c.buf = append(c.buf, byte(c.x&0xff))
		c.x >>= 8
	}
	var add uint32
	if !bit {
		add = p
	}
	c.x = (c.x/ls)*ioBase + c.x%ls + add
	return nil
}

// flushAnsState appends a coder's final state, already offset down by its
// renormalization floor, as 1..4 trailing bytes: low-order payload bytes
// first, then a byte carrying a 2-bit size tag in its top two bits plus the
// highest six payload bits. The tag byte sits last because the decoder
// consumes the buffer from its logical end. Fails if the offset state needs
// more than 30 bits.
func flushAnsState(buf []byte, state uint32) ([]byte, error) {
	switch {
	case state < 1<<6:
		return append(buf, byte(state)), nil
	case state < 1<<14:
		return append(buf, byte(state), byte(0x40|(state>>8)&0x3f)), nil
	case state < 1<<22:
		return append(buf, byte(state), byte(state>>8), byte(0x80|(state>>16)&0x3f)), nil
	case state < 1<<30:
		return append(buf, byte(state), byte(state>>8), byte(state>>16), byte(0xc0|(state>>24)&0x3f)), nil
	default:
		return nil, ErrAnsStateOverflow
	}
}

// readAnsState is the inverse of flushAnsState: it consumes the trailing
// tag/payload bytes from the logical end of buf and returns the offset
// state plus the new cursor.
func readAnsState(buf []byte, cursor int) (state uint32, newCursor int, err error) {
	if cursor < 1 {
		return 0, 0, ErrAnsTruncated
	}
	val := buf[cursor-1]
	cursor--
	extra := int(val >> 6)
	if cursor < extra {
		return 0, 0, ErrAnsTruncated
	}
	state = uint32(val & 0x3f)
	for i := 0; i < extra; i++ {
		state = state<<8 | uint32(buf[cursor-1-i])
	}
	return state, cursor - extra, nil
}

// Finish serializes the final state (offset by the lBase floor, which the
// decoder restores) after the coded bytes.
func (c *AnsCoder) Finish() ([]byte, error) {
	return flushAnsState(append([]byte{}, c.buf...), c.x-lBase)
}

// AnsDecoder mirrors AnsCoder, consuming a buffer produced by
// AnsCoder.Finish from its logical end backward.
type AnsDecoder struct {
	buf    []byte
	cursor int // next unread index going backward; buf[0:cursor] remains
	x      uint32
}

// NewAnsDecoder initializes a decoder over buf, reading the trailing
// tag/state bytes first (ReadInit).
func NewAnsDecoder(buf []byte) (*AnsDecoder, error) {
	d := &AnsDecoder{buf: buf, cursor: len(buf)}
	if err := d.readInit(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AnsDecoder) readInit() error {
	state, cursor, err := readAnsState(d.buf, d.cursor)
	if err != nil {
		return err
	}
	d.x = state + lBase
	d.cursor = cursor
	return nil
}

func (d *AnsDecoder) popByte() (byte, error) {
	if d.cursor < 1 {
		return 0, ErrAnsTruncated
	}
	d.cursor--
	return d.buf[d.cursor], nil
}

func (d *AnsDecoder) readNormalize() error {
	for d.x < lBase {
		b, err := d.popByte()
		if err != nil {
			return err
		}
		d.x = (d.x << 8) | uint32(b)
	}
	return nil
}

// DecodeBit reads one bit coded with P(bit==0)=p0.
func (d *AnsDecoder) DecodeBit(p0 uint8) (bool, error) {
	if p0 == 0 {
		return false, ErrAnsInvalidProbability
	}
	if err := d.readNormalize(); err != nil {
		return false, err
	}
	p := uint32(p8Precision) - uint32(p0)
	quo := d.x / ioBase
	rem := d.x % ioBase
	if rem < p {
		d.x = quo*p + rem
		return true, nil
	}
	d.x = quo*uint32(p0) + (rem - p)
	return false, nil
}
