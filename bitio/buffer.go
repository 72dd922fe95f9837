package bitio

import (
	"encoding/binary"
	"math"
)

// EncoderBuffer is a growable, append-only byte container. All integer and
// float fields are little-endian.
type EncoderBuffer struct {
	buf []byte

	bitActive bool
	bitBuf    uint64
	bitsInBuf int
}

// NewEncoderBuffer returns an empty EncoderBuffer.
func NewEncoderBuffer() *EncoderBuffer {
	return &EncoderBuffer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated bytes. The slice aliases internal storage;
// callers must not mutate it after further encode calls.
func (e *EncoderBuffer) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *EncoderBuffer) Len() int { return len(e.buf) }

// EncodeU8 appends a single byte.
func (e *EncoderBuffer) EncodeU8(v uint8) { e.buf = append(e.buf, v) }

// EncodeU16 appends a little-endian uint16.
func (e *EncoderBuffer) EncodeU16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// EncodeU32 appends a little-endian uint32.
func (e *EncoderBuffer) EncodeU32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// EncodeU64 appends a little-endian uint64.
func (e *EncoderBuffer) EncodeU64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// EncodeF32 appends a little-endian IEEE 754 float32.
func (e *EncoderBuffer) EncodeF32(v float32) {
	e.EncodeU32(math.Float32bits(v))
}

// EncodeF64 appends a little-endian IEEE 754 float64.
func (e *EncoderBuffer) EncodeF64(v float64) {
	e.EncodeU64(math.Float64bits(v))
}

// EncodeBytes appends raw bytes verbatim (no length prefix).
func (e *EncoderBuffer) EncodeBytes(b []byte) { e.buf = append(e.buf, b...) }

// EncodeVarint appends v as unsigned LEB128: 7-bit groups, continuation bit
// in the MSB of every byte but the last.
func (e *EncoderBuffer) EncodeVarint(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			e.buf = append(e.buf, b|0x80)
		} else {
			e.buf = append(e.buf, b)
			return
		}
	}
}

// EncodeVarintSigned appends v as a zigzag-mapped unsigned varint:
// zigzag(v) = (v<<1) ^ (v>>63).
func (e *EncoderBuffer) EncodeVarintSigned(v int64) {
	e.EncodeVarint(ZigzagEncode64(v))
}

// StartBitEncoding opens a bit-encoding session: subsequent
// EncodeLeastSignificantBits32 calls pack bits LSB-first into bytes, the
// mirror image of DecoderBuffer's StartBitDecoding(false) mode. The session
// has no size prefix; EndBitEncoding pads the final partial byte with zeros.
func (e *EncoderBuffer) StartBitEncoding() {
	e.bitBuf = 0
	e.bitsInBuf = 0
	e.bitActive = true
}

// EncodeLeastSignificantBits32 appends the low n (0..32) bits of v to the
// open bit-encoding session.
func (e *EncoderBuffer) EncodeLeastSignificantBits32(v uint32, n int) {
	if !e.bitActive || n <= 0 {
		return
	}
	if n < 32 {
		v &= (uint32(1) << uint(n)) - 1
	}
	e.bitBuf |= uint64(v) << uint(e.bitsInBuf)
	e.bitsInBuf += n
	for e.bitsInBuf >= 8 {
		e.buf = append(e.buf, byte(e.bitBuf))
		e.bitBuf >>= 8
		e.bitsInBuf -= 8
	}
}

// EndBitEncoding flushes any partial byte and closes the session.
func (e *EncoderBuffer) EndBitEncoding() {
	if !e.bitActive {
		return
	}
	if e.bitsInBuf > 0 {
		e.buf = append(e.buf, byte(e.bitBuf))
	}
	e.bitBuf = 0
	e.bitsInBuf = 0
	e.bitActive = false
}

// ZigzagEncode32 maps a signed 32-bit value onto the unsigned domain.
func ZigzagEncode32(v int32) uint32 { return (uint32(v) << 1) ^ uint32(v>>31) }

// ZigzagDecode32 is the inverse of ZigzagEncode32.
func ZigzagDecode32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }

// ZigzagEncode64 maps a signed 64-bit value onto the unsigned domain.
func ZigzagEncode64(v int64) uint64 { return (uint64(v) << 1) ^ uint64(v>>63) }

// ZigzagDecode64 is the inverse of ZigzagEncode64.
func ZigzagDecode64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// DecoderBuffer reads the forms EncoderBuffer writes from a borrowed byte
// slice, tracking a read cursor and the bitstream Version parsed from the
// container header (callers must set Version before decoding version-gated
// fields; it defaults to DefaultMeshVersion).
type DecoderBuffer struct {
	data    []byte
	pos     int
	Version Version

	bitActive    bool
	bitBuf       uint64
	bitsInBuf    int
	bitStartPos  int
	bitSizeKnown bool
	bitSize      int
	bitsConsumed int
}

// NewDecoderBuffer wraps data for sequential reads starting at offset 0.
func NewDecoderBuffer(data []byte) *DecoderBuffer {
	return &DecoderBuffer{data: data, Version: DefaultMeshVersion}
}

// Pos returns the current byte offset, usable for Truncated/Malformed error
// reporting.
func (d *DecoderBuffer) Pos() int { return d.pos }

// Remaining returns the number of unread bytes.
func (d *DecoderBuffer) Remaining() int { return len(d.data) - d.pos }

func (d *DecoderBuffer) require(n int) error {
	if n < 0 || n > d.Remaining() {
		return ErrTruncated
	}
	return nil
}

// DecodeU8 reads one byte.
func (d *DecoderBuffer) DecodeU8() (uint8, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

// DecodeU16 reads a little-endian uint16.
func (d *DecoderBuffer) DecodeU16() (uint16, error) {
	if err := d.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, nil
}

// DecodeU32 reads a little-endian uint32.
func (d *DecoderBuffer) DecodeU32() (uint32, error) {
	if err := d.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

// DecodeU64 reads a little-endian uint64.
func (d *DecoderBuffer) DecodeU64() (uint64, error) {
	if err := d.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

// DecodeF32 reads a little-endian IEEE 754 float32.
func (d *DecoderBuffer) DecodeF32() (float32, error) {
	v, err := d.DecodeU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// DecodeF64 reads a little-endian IEEE 754 float64.
func (d *DecoderBuffer) DecodeF64() (float64, error) {
	v, err := d.DecodeU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// DecodeBytes reads n raw bytes.
func (d *DecoderBuffer) DecodeBytes(n int) ([]byte, error) {
	if err := d.require(n); err != nil {
		return nil, err
	}
	v := d.data[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

// DecodeVarint reads an unsigned LEB128 value.
func (d *DecoderBuffer) DecodeVarint() (uint64, error) {
	var v uint64
	for shift := uint(0); ; shift += 7 {
		if shift >= 70 {
			return 0, ErrVarintOverflow
		}
		b, err := d.DecodeU8()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// DecodeVarintSigned reads a zigzag-mapped signed varint.
func (d *DecoderBuffer) DecodeVarintSigned() (int64, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return ZigzagDecode64(v), nil
}

// StartBitDecoding enters bit-decoding mode. When expectSize is true
// a byte-size prefix is read first: varint for Version >= 2.2, else a raw
// u64. Fails with ErrBitDecodingActive if a session is already open.
func (d *DecoderBuffer) StartBitDecoding(expectSize bool) error {
	if d.bitActive {
		return ErrBitDecodingActive
	}
	d.bitSizeKnown = false
	d.bitSize = 0
	if expectSize {
		if d.Version.AtLeast(2, 2) {
			size, err := d.DecodeVarint()
			if err != nil {
				return err
			}
			d.bitSize = int(size)
		} else {
			size, err := d.DecodeU64()
			if err != nil {
				return err
			}
			d.bitSize = int(size)
		}
		d.bitSizeKnown = true
	}
	d.bitActive = true
	d.bitBuf = 0
	d.bitsInBuf = 0
	d.bitsConsumed = 0
	d.bitStartPos = d.pos
	return nil
}

// DecodeLeastSignificantBits32 consumes n (0..32) bits LSB-first from the
// current byte stream.
func (d *DecoderBuffer) DecodeLeastSignificantBits32(n int) (uint32, error) {
	if !d.bitActive {
		return 0, ErrBitDecodingInactive
	}
	if n < 0 || n > 32 {
		return 0, ErrInvalidBitCount
	}
	for d.bitsInBuf < n {
		b, err := d.DecodeU8()
		if err != nil {
			return 0, err
		}
		d.bitBuf |= uint64(b) << uint(d.bitsInBuf)
		d.bitsInBuf += 8
	}
	var mask uint64
	if n == 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(n)) - 1
	}
	v := d.bitBuf & mask
	d.bitBuf >>= uint(n)
	d.bitsInBuf -= n
	d.bitsConsumed += n
	return uint32(v), nil
}

// EndBitDecoding leaves bit-decoding mode, repositioning the byte cursor at
// start+size if a size prefix was read, otherwise advancing by
// ceil(bits_consumed/8) from where the session started.
func (d *DecoderBuffer) EndBitDecoding() error {
	if !d.bitActive {
		return ErrBitDecodingInactive
	}
	d.bitActive = false
	if d.bitSizeKnown {
		d.pos = d.bitStartPos + d.bitSize
		return nil
	}
	consumedBytes := (d.bitsConsumed + 7) / 8
	d.pos = d.bitStartPos + consumedBytes
	return nil
}
