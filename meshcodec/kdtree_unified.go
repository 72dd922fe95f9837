package meshcodec

import (
	"math"

	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/container"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/kdtree"
	"github.com/cocosip/go-mesh-codec/transform"
)

// columnKind classifies how a PointAttribute's components were folded into
// the unified KD-tree point vector, so decode knows how to unfold them.
type columnKind uint8

const (
	columnFloat    columnKind = 0 // quantized via transform.QuantizationTransform.
	columnSigned   columnKind = 1 // offset by a recorded per-component minimum.
	columnUnsigned columnKind = 2 // passed through as-is.
)

type column struct {
	attrType   geom.GeometryAttributeType
	dataType   geom.DataType
	numComp    int
	uniqueID   uint32
	offset     int
	kind       columnKind
	qt         *transform.QuantizationTransform
	signedMins []int32
}

// encodeUnifiedKDTree implements the unified point-cloud attribute
// encoder: every attribute's components are packed into one D-dimensional
// unsigned integer vector per point (float attributes quantized, signed
// integers offset by their minimum, unsigned integers passed through) and
// the whole set compressed with kdtree.Encode.
func encodeUnifiedKDTree(out *bitio.EncoderBuffer, version bitio.Version, pc *geom.PointCloud, opt container.Options) error {
	numPoints := pc.NumPoints()
	out.EncodeVarint(uint64(pc.NumAttributes()))

	cols := make([]column, pc.NumAttributes())
	total := 0
	for i := 0; i < pc.NumAttributes(); i++ {
		attr := pc.Attribute(i)
		out.EncodeU8(uint8(attr.AttributeType))
		out.EncodeU8(uint8(attr.DataType))
		out.EncodeU8(uint8(attr.NumComponents))
		out.EncodeVarint(uint64(attr.UniqueID))

		c := column{
			attrType: attr.AttributeType,
			dataType: attr.DataType,
			numComp:  attr.NumComponents,
			uniqueID: attr.UniqueID,
			offset:   total,
		}
		switch {
		case attr.DataType == geom.DTFloat32 || attr.DataType == geom.DTFloat64:
			c.kind = columnFloat
			bits := opt.QuantizationBitsFor(attr.AttributeType)
			mins := make([]float32, attr.NumComponents)
			maxs := make([]float32, attr.NumComponents)
			for k := range mins {
				mins[k] = float32(math.Inf(1))
				maxs[k] = float32(math.Inf(-1))
			}
			for p := 0; p < numPoints; p++ {
				avi := geom.AttributeValueIndex(p)
				for k := 0; k < attr.NumComponents; k++ {
					v := attr.GetValueFloat32(avi, k)
					if v < mins[k] {
						mins[k] = v
					}
					if v > maxs[k] {
						maxs[k] = v
					}
				}
			}
			rng := transform.ComputeRange(mins, maxs)
			qt, err := transform.NewQuantizationTransform(bits, mins, rng)
			if err != nil {
				return err
			}
			c.qt = qt
			out.EncodeVarint(uint64(bits))
			out.EncodeF32(rng)
			for _, m := range mins {
				out.EncodeF32(m)
			}
		case isSignedInt(attr.DataType):
			c.kind = columnSigned
			mins := make([]int32, attr.NumComponents)
			for k := range mins {
				mins[k] = math.MaxInt32
			}
			for p := 0; p < numPoints; p++ {
				avi := geom.AttributeValueIndex(p)
				for k := 0; k < attr.NumComponents; k++ {
					v := int32(attr.GetValueUint32(avi, k))
					if v < mins[k] {
						mins[k] = v
					}
				}
			}
			c.signedMins = mins
			for _, m := range mins {
				out.EncodeVarintSigned(int64(m))
			}
		default:
			c.kind = columnUnsigned
		}
		cols[i] = c
		total += attr.NumComponents
	}

	points := make([][]uint32, numPoints)
	for p := range points {
		points[p] = make([]uint32, total)
	}
	for _, c := range cols {
		attr := findAttribute(pc, c)
		for p := 0; p < numPoints; p++ {
			avi := geom.AttributeValueIndex(p)
			for k := 0; k < c.numComp; k++ {
				var v uint32
				switch c.kind {
				case columnFloat:
					v = c.qt.Quantize(attr.GetValueFloat32(avi, k), k)
				case columnSigned:
					v = uint32(int32(attr.GetValueUint32(avi, k)) - c.signedMins[k])
				default:
					v = attr.GetValueUint32(avi, k)
				}
				points[p][c.offset+k] = v
			}
		}
	}

	return kdtree.Encode(out, version, points, total, opt.EncodingSpeed)
}

func findAttribute(pc *geom.PointCloud, c column) *geom.PointAttribute {
	for i := 0; i < pc.NumAttributes(); i++ {
		a := pc.Attribute(i)
		if a.UniqueID == c.uniqueID && a.AttributeType == c.attrType {
			return a
		}
	}
	return nil
}

func isSignedInt(dt geom.DataType) bool {
	switch dt {
	case geom.DTInt8, geom.DTInt16, geom.DTInt32, geom.DTInt64:
		return true
	default:
		return false
	}
}

// decodeUnifiedKDTree is the inverse of encodeUnifiedKDTree.
func decodeUnifiedKDTree(d *bitio.DecoderBuffer, numPoints int) (*geom.PointCloud, error) {
	numAttrs, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	if numAttrs > uint64(d.Remaining()) {
		return nil, bitio.ErrTruncated
	}
	cols := make([]column, numAttrs)
	total := 0
	for i := range cols {
		atByte, err := d.DecodeU8()
		if err != nil {
			return nil, err
		}
		dtByte, err := d.DecodeU8()
		if err != nil {
			return nil, err
		}
		ncByte, err := d.DecodeU8()
		if err != nil {
			return nil, err
		}
		uid, err := d.DecodeVarint()
		if err != nil {
			return nil, err
		}
		c := column{
			attrType: geom.GeometryAttributeType(atByte),
			dataType: geom.DataType(dtByte),
			numComp:  int(ncByte),
			uniqueID: uint32(uid),
			offset:   total,
		}
		switch {
		case c.dataType == geom.DTFloat32 || c.dataType == geom.DTFloat64:
			c.kind = columnFloat
			bits, err := d.DecodeVarint()
			if err != nil {
				return nil, err
			}
			rng, err := d.DecodeF32()
			if err != nil {
				return nil, err
			}
			mins := make([]float32, c.numComp)
			for k := range mins {
				mins[k], err = d.DecodeF32()
				if err != nil {
					return nil, err
				}
			}
			qt, err := transform.NewQuantizationTransform(int(bits), mins, rng)
			if err != nil {
				return nil, err
			}
			c.qt = qt
		case isSignedInt(c.dataType):
			c.kind = columnSigned
			mins := make([]int32, c.numComp)
			for k := range mins {
				v, err := d.DecodeVarintSigned()
				if err != nil {
					return nil, err
				}
				mins[k] = int32(v)
			}
			c.signedMins = mins
		default:
			c.kind = columnUnsigned
		}
		cols[i] = c
		total += c.numComp
	}

	points, err := kdtree.Decode(d, total)
	if err != nil {
		return nil, err
	}

	pc := geom.NewPointCloud(numPoints)
	for _, c := range cols {
		stride := c.dataType.Size() * c.numComp
		if stride <= 0 || numPoints < 0 || numPoints > (1<<30)/stride {
			return nil, bitio.ErrTruncated
		}
		attr := geom.NewIdentityAttribute(c.attrType, c.dataType, c.numComp, c.uniqueID, numPoints)
		for p := 0; p < numPoints && p < len(points); p++ {
			avi := geom.AttributeValueIndex(p)
			for k := 0; k < c.numComp; k++ {
				raw := points[p][c.offset+k]
				switch c.kind {
				case columnFloat:
					attr.SetValueFloat32(avi, k, c.qt.Dequantize(raw, k))
				case columnSigned:
					attr.SetValueUint32(avi, k, uint32(int32(raw)+c.signedMins[k]))
				default:
					attr.SetValueUint32(avi, k, raw)
				}
			}
		}
		pc.AddAttribute(attr)
	}
	return pc, nil
}
