// Package geom defines the in-memory data model shared by the rest of the
// codec: the scalar DataType enum, a growable DataBuffer, and the
// PointAttribute/PointCloud/Mesh/CornerTable entities the codec operates on.
package geom

import "fmt"

// DataType is a closed enum identifying the scalar type stored in an
// attribute's raw bytes. Its size in bytes is fully determined by the tag.
type DataType uint8

const (
	DTInvalid DataType = iota
	DTInt8
	DTUInt8
	DTInt16
	DTUInt16
	DTInt32
	DTUInt32
	DTInt64
	DTUInt64
	DTFloat32
	DTFloat64
	DTBool
)

// Size returns the number of bytes one scalar of this type occupies.
func (t DataType) Size() int {
	switch t {
	case DTInt8, DTUInt8, DTBool:
		return 1
	case DTInt16, DTUInt16:
		return 2
	case DTInt32, DTUInt32, DTFloat32:
		return 4
	case DTInt64, DTUInt64, DTFloat64:
		return 8
	default:
		return 0
	}
}

func (t DataType) String() string {
	switch t {
	case DTInvalid:
		return "Invalid"
	case DTInt8:
		return "Int8"
	case DTUInt8:
		return "UInt8"
	case DTInt16:
		return "Int16"
	case DTUInt16:
		return "UInt16"
	case DTInt32:
		return "Int32"
	case DTUInt32:
		return "UInt32"
	case DTInt64:
		return "Int64"
	case DTUInt64:
		return "UInt64"
	case DTFloat32:
		return "Float32"
	case DTFloat64:
		return "Float64"
	case DTBool:
		return "Bool"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
}

// DataBuffer is a growable byte container with positional read/write. It
// carries an update counter so that downstream caches (e.g. a recomputed
// portable attribute) can detect whether the backing bytes changed since
// they were last derived.
type DataBuffer struct {
	buf     []byte
	updates uint64
}

// NewDataBuffer returns an empty DataBuffer.
func NewDataBuffer() *DataBuffer { return &DataBuffer{} }

// NewDataBufferFromBytes wraps an existing byte slice without copying.
func NewDataBufferFromBytes(b []byte) *DataBuffer { return &DataBuffer{buf: b} }

// Bytes returns the buffer's current contents.
func (b *DataBuffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes held.
func (b *DataBuffer) Len() int { return len(b.buf) }

// UpdateCount returns the number of times the buffer's contents changed.
func (b *DataBuffer) UpdateCount() uint64 { return b.updates }

// Write appends or overwrites bytes starting at offset, growing the buffer
// as needed.
func (b *DataBuffer) Write(offset int, data []byte) {
	end := offset + len(data)
	if end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[offset:end], data)
	b.updates++
}

// Read returns a copy of n bytes starting at offset.
func (b *DataBuffer) Read(offset, n int) []byte {
	out := make([]byte, n)
	copy(out, b.buf[offset:offset+n])
	return out
}

// Resize grows or truncates the buffer to exactly n bytes.
func (b *DataBuffer) Resize(n int) {
	if n == len(b.buf) {
		return
	}
	grown := make([]byte, n)
	copy(grown, b.buf)
	b.buf = grown
	b.updates++
}
