package geom

import (
	"errors"
	"math"
)

// GeometryAttributeType classifies what a PointAttribute represents.
type GeometryAttributeType uint8

const (
	AttrInvalid GeometryAttributeType = iota
	AttrPosition
	AttrNormal
	AttrColor
	AttrTexCoord
	AttrGeneric
)

// PointIndex addresses one entry of a PointCloud (0..num_points-1).
type PointIndex int32

// AttributeValueIndex addresses one distinct value stored in a
// PointAttribute's raw bytes, which may be fewer than num_points when the
// attribute uses an explicit index map.
type AttributeValueIndex int32

// InvalidPointIndex and InvalidAttributeValueIndex are the sentinel values
// used throughout the codec for "no such index".
const (
	InvalidPointIndex         PointIndex          = -1
	InvalidAttributeValueIndex AttributeValueIndex = -1
)

var (
	// ErrIndexMapLength is returned when an explicit index map's length does
	// not equal num_points (PointAttribute invariant).
	ErrIndexMapLength = errors.New("geom: explicit index map length mismatch")
	// ErrIndexMapOutOfRange is returned when an explicit index map entry is
	// neither INVALID nor less than the attribute's unique value count.
	ErrIndexMapOutOfRange = errors.New("geom: index map entry out of range")
)

// TransformData records the parameters of a prior non-identity transform
// applied to an attribute (quantization bounds, octahedron bit depth) so the
// inverse transform can be replayed during decode.
type TransformData struct {
	// QuantizationBits is set for a QuantizationTransform or
	// OctahedronTransform; zero means no transform was recorded.
	QuantizationBits int
	// MinValues holds one value per component for QuantizationTransform.
	MinValues []float32
	// Range is the QuantizationTransform's shared per-component range.
	Range float32
	// IsOctahedron distinguishes OctahedronTransform from QuantizationTransform
	// when QuantizationBits is set.
	IsOctahedron bool
}

// PointAttribute is one channel of per-point data: a typed, possibly
// multi-component array of raw bytes addressed either directly by
// PointIndex (identity mapping) or indirectly through an explicit
// PointIndex -> AttributeValueIndex map.
type PointAttribute struct {
	AttributeType GeometryAttributeType
	DataType      DataType
	NumComponents int
	Normalized    bool
	UniqueID      uint32

	// ByteStride is the number of bytes between consecutive values in Buffer;
	// normally DataType.Size()*NumComponents.
	ByteStride int
	Buffer     *DataBuffer

	// IndexMap is nil for an identity mapping (point i -> value i). When
	// non-nil its length must equal the owning PointCloud's num_points.
	IndexMap []AttributeValueIndex

	// NumUniqueValues is the number of distinct attribute values stored in
	// Buffer; for an identity mapping this equals num_points.
	NumUniqueValues int

	// Transform records a prior non-identity transform, if any.
	Transform *TransformData
}

// NewIdentityAttribute allocates a PointAttribute with an identity index map
// sized for numPoints entries of the given type/component count.
func NewIdentityAttribute(at GeometryAttributeType, dt DataType, numComponents int, uniqueID uint32, numPoints int) *PointAttribute {
	stride := dt.Size() * numComponents
	return &PointAttribute{
		AttributeType:   at,
		DataType:        dt,
		NumComponents:   numComponents,
		UniqueID:        uniqueID,
		ByteStride:      stride,
		Buffer:          NewDataBufferFromBytes(make([]byte, stride*numPoints)),
		NumUniqueValues: numPoints,
	}
}

// MappedIndex resolves a PointIndex to the AttributeValueIndex whose bytes
// hold that point's attribute value.
func (a *PointAttribute) MappedIndex(p PointIndex) AttributeValueIndex {
	if a.IndexMap == nil {
		return AttributeValueIndex(p)
	}
	return a.IndexMap[p]
}

// SetExplicitIndexMap installs m as the attribute's index map, validating
// the invariant: len(m) == numPoints, every entry is INVALID or
// < NumUniqueValues.
func (a *PointAttribute) SetExplicitIndexMap(m []AttributeValueIndex, numPoints int) error {
	if len(m) != numPoints {
		return ErrIndexMapLength
	}
	for _, v := range m {
		if v != InvalidAttributeValueIndex && int(v) >= a.NumUniqueValues {
			return ErrIndexMapOutOfRange
		}
	}
	a.IndexMap = m
	return nil
}

// ValueBytes returns the raw bytes of the value at AttributeValueIndex avi.
func (a *PointAttribute) ValueBytes(avi AttributeValueIndex) []byte {
	off := int(avi) * a.ByteStride
	return a.Buffer.Read(off, a.ByteStride)
}

// SetValueBytes overwrites the raw bytes of the value at avi.
func (a *PointAttribute) SetValueBytes(avi AttributeValueIndex, data []byte) {
	a.Buffer.Write(int(avi)*a.ByteStride, data)
}

// GetValueFloat32 reads component c of the value at avi as a float32,
// converting from the attribute's DataType (used by quantization/transform
// code operating on a generic numeric attribute).
func (a *PointAttribute) GetValueFloat32(avi AttributeValueIndex, c int) float32 {
	off := int(avi)*a.ByteStride + c*a.DataType.Size()
	switch a.DataType {
	case DTFloat32:
		bits := leU32(a.Buffer.Read(off, 4))
		return math.Float32frombits(bits)
	default:
		return float32(a.GetValueUint32(avi, c))
	}
}

// GetValueUint32 reads component c of the value at avi as a uint32
// (used for already-quantized portable attributes).
func (a *PointAttribute) GetValueUint32(avi AttributeValueIndex, c int) uint32 {
	off := int(avi)*a.ByteStride + c*a.DataType.Size()
	b := a.Buffer.Read(off, a.DataType.Size())
	switch a.DataType.Size() {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(b[0]) | uint32(b[1])<<8
	case 4:
		return leU32(b)
	default:
		return 0
	}
}

// SetValueUint32 writes component c of the value at avi from a uint32.
func (a *PointAttribute) SetValueUint32(avi AttributeValueIndex, c int, v uint32) {
	off := int(avi)*a.ByteStride + c*a.DataType.Size()
	var b []byte
	switch a.DataType.Size() {
	case 1:
		b = []byte{byte(v)}
	case 2:
		b = []byte{byte(v), byte(v >> 8)}
	default:
		b = []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
	a.Buffer.Write(off, b)
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// SetValueFloat32 writes component c of the value at avi as a float32.
func (a *PointAttribute) SetValueFloat32(avi AttributeValueIndex, c int, v float32) {
	off := int(avi)*a.ByteStride + c*a.DataType.Size()
	bits := math.Float32bits(v)
	a.Buffer.Write(off, []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
}
