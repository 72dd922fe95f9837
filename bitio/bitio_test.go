package bitio

import (
	"math"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 14, 1<<21 - 1, 1 << 32, math.MaxUint64}
	out := NewEncoderBuffer()
	for _, v := range values {
		out.EncodeVarint(v)
	}
	d := NewDecoderBuffer(out.Bytes())
	for _, want := range values {
		got, err := d.DecodeVarint()
		if err != nil {
			t.Fatalf("DecodeVarint: %v", err)
		}
		if got != want {
			t.Fatalf("got %d want %d", got, want)
		}
	}
	if d.Remaining() != 0 {
		t.Fatalf("trailing bytes: %d", d.Remaining())
	}
}

func TestVarintSignedRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -64, 64, math.MinInt64, math.MaxInt64}
	out := NewEncoderBuffer()
	for _, v := range values {
		out.EncodeVarintSigned(v)
	}
	d := NewDecoderBuffer(out.Bytes())
	for _, want := range values {
		got, err := d.DecodeVarintSigned()
		if err != nil {
			t.Fatalf("DecodeVarintSigned: %v", err)
		}
		if got != want {
			t.Fatalf("got %d want %d", got, want)
		}
	}
}

func TestZigzag32Identity(t *testing.T) {
	values := []int32{0, 1, -1, math.MaxInt32, math.MinInt32, 12345, -98765}
	for _, v := range values {
		if got := ZigzagDecode32(ZigzagEncode32(v)); got != v {
			t.Fatalf("zigzag(%d) round-tripped to %d", v, got)
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	out := NewEncoderBuffer()
	out.EncodeU8(0xab)
	out.EncodeU16(0xbeef)
	out.EncodeU32(0xdeadbeef)
	out.EncodeU64(0x0123456789abcdef)
	out.EncodeF32(3.25)
	out.EncodeF64(-1.5e300)

	d := NewDecoderBuffer(out.Bytes())
	if v, _ := d.DecodeU8(); v != 0xab {
		t.Fatalf("u8: %x", v)
	}
	if v, _ := d.DecodeU16(); v != 0xbeef {
		t.Fatalf("u16: %x", v)
	}
	if v, _ := d.DecodeU32(); v != 0xdeadbeef {
		t.Fatalf("u32: %x", v)
	}
	if v, _ := d.DecodeU64(); v != 0x0123456789abcdef {
		t.Fatalf("u64: %x", v)
	}
	if v, _ := d.DecodeF32(); v != 3.25 {
		t.Fatalf("f32: %v", v)
	}
	if v, _ := d.DecodeF64(); v != -1.5e300 {
		t.Fatalf("f64: %v", v)
	}
}

func TestTruncatedReads(t *testing.T) {
	d := NewDecoderBuffer([]byte{0x01})
	if _, err := d.DecodeU32(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	d = NewDecoderBuffer([]byte{0x80, 0x80})
	if _, err := d.DecodeVarint(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated for cut varint, got %v", err)
	}
}

func TestBitSessionRoundTrip(t *testing.T) {
	out := NewEncoderBuffer()
	out.StartBitEncoding()
	values := []struct {
		v uint32
		n int
	}{{1, 1}, {0, 1}, {5, 3}, {0xffff, 16}, {0x12345678, 32}, {3, 2}}
	for _, c := range values {
		out.EncodeLeastSignificantBits32(c.v, c.n)
	}
	out.EndBitEncoding()

	d := NewDecoderBuffer(out.Bytes())
	if err := d.StartBitDecoding(false); err != nil {
		t.Fatalf("StartBitDecoding: %v", err)
	}
	for _, c := range values {
		got, err := d.DecodeLeastSignificantBits32(c.n)
		if err != nil {
			t.Fatalf("DecodeLeastSignificantBits32: %v", err)
		}
		want := c.v
		if c.n < 32 {
			want &= (1 << uint(c.n)) - 1
		}
		if got != want {
			t.Fatalf("got %x want %x", got, want)
		}
	}
	if err := d.EndBitDecoding(); err != nil {
		t.Fatalf("EndBitDecoding: %v", err)
	}
}

func TestBitDecodingSizePrefix(t *testing.T) {
	// Version >= 2.2 frames the bit run with a varint byte size; the cursor
	// must land immediately after the framed run regardless of how many bits
	// were consumed.
	out := NewEncoderBuffer()
	out.EncodeVarint(2)
	out.EncodeBytes([]byte{0b00000101, 0x00})
	out.EncodeU8(0x7f) // trailing byte after the framed run

	d := NewDecoderBuffer(out.Bytes())
	if err := d.StartBitDecoding(true); err != nil {
		t.Fatalf("StartBitDecoding: %v", err)
	}
	v, err := d.DecodeLeastSignificantBits32(3)
	if err != nil {
		t.Fatalf("decode bits: %v", err)
	}
	if v != 5 {
		t.Fatalf("got %d want 5", v)
	}
	if err := d.EndBitDecoding(); err != nil {
		t.Fatalf("EndBitDecoding: %v", err)
	}
	b, err := d.DecodeU8()
	if err != nil || b != 0x7f {
		t.Fatalf("cursor misplaced after bit run: %x %v", b, err)
	}
}

func TestDirectBitsRoundTrip(t *testing.T) {
	enc := NewDirectBitEncoder()
	values := []struct {
		v uint32
		n int
	}{{1, 1}, {0x3ff, 10}, {0, 5}, {0xdeadbeef, 32}, {7, 3}}
	for _, c := range values {
		enc.EncodeLeastSignificantBits32(c.v, c.n)
	}
	out := NewEncoderBuffer()
	enc.EndEncoding(out)

	d := NewDecoderBuffer(out.Bytes())
	dec, err := NewDirectBitDecoder(d)
	if err != nil {
		t.Fatalf("NewDirectBitDecoder: %v", err)
	}
	for _, c := range values {
		got, err := dec.DecodeLeastSignificantBits32(c.n)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := c.v
		if c.n < 32 {
			want &= (1 << uint(c.n)) - 1
		}
		if got != want {
			t.Fatalf("got %x want %x", got, want)
		}
	}
}
