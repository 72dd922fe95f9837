// Package attrenc implements the per-attribute encoders: a sequential
// codec that predicts one attribute at a time against either a point
// cloud's natural order or a mesh's connectivity traversal order, wrapping
// the value transforms (quantization, octahedral normals) and the
// prediction transforms/schemes in prediction/.
package attrenc

import (
	"errors"
	"math"

	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/prediction"
	"github.com/cocosip/go-mesh-codec/transform"
)

// DecoderType is the first byte of an attribute's encoded block,
// selecting which value transform (if any) ran before prediction.
type DecoderType uint8

const (
	TypeGeneric       DecoderType = 0 // native integer components, no value transform.
	TypeInteger       DecoderType = 1 // explicitly-integer DataType; same codec path as Generic.
	TypeQuantization  DecoderType = 2 // float components, per-component min+range quantization.
	TypeNormals       DecoderType = 3 // 3-component unit normals, octahedral quantization.
)

var (
	ErrUnsupportedDataType = errors.New("attrenc: unsupported attribute data type")
	ErrUnknownDecoderType  = errors.New("attrenc: unknown decoder type byte")
	// ErrMissingMeshContext is returned when a stream selects a mesh
	// prediction method but the surrounding container carried no
	// connectivity to predict against.
	ErrMissingMeshContext = errors.New("attrenc: mesh prediction method without connectivity")
)

// EncodeOptions carries the per-attribute knobs the container's Options
// bundle resolves before calling into attrenc.
type EncodeOptions struct {
	QuantizationBits int // used for Position/Generic float attributes.
	NormalBits       int // used for Normal attributes.
	EncodingSpeed    int
	Method           prediction.Method // forced method, used only when ForceMethod is set.
	ForceMethod      bool              // false lets SelectMethod choose per attribute.
	Positions        [][]int32         // already-portable parent position data, required for TexCoordsPortable.

	// SourceOrder maps each encoded entry to the attribute value it carries;
	// nil means the identity over NumUniqueValues. The EdgeBreaker path sets
	// it to the connectivity traversal's vertex mint order, which both
	// duplicates values at vertex splits and renumbers entries to match the
	// decoder's mint order.
	SourceOrder []int
}

func isFloatType(dt geom.DataType) bool {
	return dt == geom.DTFloat32 || dt == geom.DTFloat64
}

func decoderTypeFor(attr *geom.PointAttribute) DecoderType {
	if attr.AttributeType == geom.AttrNormal && isFloatType(attr.DataType) && attr.NumComponents == 3 {
		return TypeNormals
	}
	if isFloatType(attr.DataType) {
		return TypeQuantization
	}
	return TypeGeneric
}

// gatherOrder resolves an EncodeOptions.SourceOrder into the concrete list
// of attribute value indices to encode, one per output entry.
func gatherOrder(attr *geom.PointAttribute, sourceOrder []int) []geom.AttributeValueIndex {
	if sourceOrder != nil {
		out := make([]geom.AttributeValueIndex, len(sourceOrder))
		for i, s := range sourceOrder {
			out[i] = geom.AttributeValueIndex(s)
		}
		return out
	}
	out := make([]geom.AttributeValueIndex, attr.NumUniqueValues)
	for i := range out {
		out[i] = geom.AttributeValueIndex(i)
	}
	return out
}

// extractPortable reads the gathered values of attr as a [][]int32. Integer
// DataTypes pass through; this is the raw form prediction.Transform
// operates on.
func extractPortable(attr *geom.PointAttribute, gather []geom.AttributeValueIndex) [][]int32 {
	out := make([][]int32, len(gather))
	for i, avi := range gather {
		row := make([]int32, attr.NumComponents)
		for c := 0; c < attr.NumComponents; c++ {
			row[c] = int32(attr.GetValueUint32(avi, c))
		}
		out[i] = row
	}
	return out
}

// EncodeAttribute writes one attribute's full encoded block: decoder type
// byte, value-transform parameters (if any), prediction method byte,
// transform-type byte, and the prediction scheme's own stream. It returns
// the attribute's portable integer form (post value-transform, pre-
// prediction) so a caller encoding a Position attribute can stash it and
// pass it back as EncodeOptions.Positions when encoding a TexCoord
// attribute that follows.
//
// For a point cloud (meshCtx == nil) prediction runs over the identity
// order 0..NumUniqueValues-1 using prediction.EncodeSequence. For a mesh
// attribute, meshCtx supplies the corner-table wiring Parallelogram/
// ConstrainedMultiParallelogram/TexCoordsPortable need.
func EncodeAttribute(out *bitio.EncoderBuffer, version bitio.Version, attr *geom.PointAttribute, meshCtx *prediction.MeshContext, opt EncodeOptions) ([][]int32, error) {
	dtype := decoderTypeFor(attr)
	out.EncodeU8(uint8(dtype))
	gather := gatherOrder(attr, opt.SourceOrder)

	var data [][]int32
	var octCenter, octMax int32
	switch dtype {
	case TypeNormals:
		oct, err := transform.NewOctahedronTransform(opt.NormalBits)
		if err != nil {
			return nil, err
		}
		octCenter, octMax = oct.CenterValue(), oct.MaxQuantizedValue()
		out.EncodeVarint(uint64(opt.NormalBits))
		data = make([][]int32, len(gather))
		for i, avi := range gather {
			x := attr.GetValueFloat32(avi, 0)
			y := attr.GetValueFloat32(avi, 1)
			z := attr.GetValueFloat32(avi, 2)
			s, t := oct.EncodeNormal(float64(x), float64(y), float64(z))
			data[i] = []int32{s, t}
		}
	case TypeQuantization:
		nc := attr.NumComponents
		mins := make([]float32, nc)
		maxs := make([]float32, nc)
		for c := 0; c < nc; c++ {
			mins[c] = float32(math.Inf(1))
			maxs[c] = float32(math.Inf(-1))
		}
		for _, avi := range gather {
			for c := 0; c < nc; c++ {
				v := attr.GetValueFloat32(avi, c)
				if v < mins[c] {
					mins[c] = v
				}
				if v > maxs[c] {
					maxs[c] = v
				}
			}
		}
		rng := transform.ComputeRange(mins, maxs)
		qt, err := transform.NewQuantizationTransform(opt.QuantizationBits, mins, rng)
		if err != nil {
			return nil, err
		}
		out.EncodeVarint(uint64(opt.QuantizationBits))
		out.EncodeF32(rng)
		for c := 0; c < nc; c++ {
			out.EncodeF32(mins[c])
		}
		data = make([][]int32, len(gather))
		for i, avi := range gather {
			row := make([]int32, nc)
			for c := 0; c < nc; c++ {
				row[c] = int32(qt.Quantize(attr.GetValueFloat32(avi, c), c))
			}
			data[i] = row
		}
	case TypeGeneric, TypeInteger:
		data = extractPortable(attr, gather)
	default:
		return nil, ErrUnknownDecoderType
	}

	kind := prediction.KindPointCloud
	if meshCtx != nil {
		kind = prediction.KindMeshEdgebreaker
	}
	method := opt.Method
	if !opt.ForceMethod {
		method = prediction.SelectMethod(prediction.SelectOptions{
			Kind:              kind,
			AttributeType:     attr.AttributeType,
			EncodingSpeed:     opt.EncodingSpeed,
			NumPoints:         len(data),
			NumComponents:     attr.NumComponents,
			IsQuantized:       dtype == TypeQuantization,
			PositionQuantBits: opt.QuantizationBits,
			TexQuantBits:      opt.QuantizationBits,
		})
	}
	// Fall back to Difference whenever a preferred method's
	// preconditions do not hold — a forced method with no corner table, a
	// tex-coord projection with no parent positions, or the reserved
	// MultiParallelogram value.
	switch method {
	case prediction.MethodParallelogram, prediction.MethodConstrainedMultiParallelogram:
		if meshCtx == nil {
			method = prediction.MethodDifference
		}
	case prediction.MethodTexCoordsPortable:
		if meshCtx == nil || opt.Positions == nil {
			method = prediction.MethodDifference
		}
	case prediction.MethodDifference:
	default:
		method = prediction.MethodDifference
	}
	ttype := prediction.TransformFor(method, attr.AttributeType)
	if ttype == prediction.TransformNormalOctahedronCanonicalized && dtype != TypeNormals {
		// A Normal-typed attribute that did not go through the octahedral
		// value transform has no (max, center) parameters to canonicalize
		// against; treat it as a plain integer channel.
		ttype = prediction.TransformDelta
	}
	out.EncodeU8(uint8(method))
	out.EncodeU8(uint8(ttype))

	order := identityOrder(len(data))
	if meshCtx != nil {
		order = meshCtx.Order
	}

	switch method {
	case prediction.MethodParallelogram:
		return data, prediction.EncodeParallelogram(out, version, data, meshCtx)
	case prediction.MethodConstrainedMultiParallelogram:
		return data, prediction.EncodeConstrainedMultiParallelogram(out, version, data, meshCtx)
	case prediction.MethodTexCoordsPortable:
		return data, prediction.EncodeTexCoordsPortable(out, version, data, &prediction.TexCoordsContext{
			MeshContext: meshCtx,
			Positions:   opt.Positions,
		})
	default:
		tr, err := prediction.NewTransform(ttype)
		if err != nil {
			return nil, err
		}
		if nt, ok := tr.(*prediction.NormalOctahedronCanonicalizedTransform); ok {
			nt.SetParams(octMax, octCenter)
		}
		return data, prediction.EncodeSequence(out, version, data, order, tr)
	}
}

func identityOrder(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

// DecodeAttribute is the inverse of EncodeAttribute, reconstructing a
// PointAttribute with DataType/NumComponents/AttributeType supplied by the
// caller (the container header carries these) and Buffer filled
// with NumUniqueValues worth of dequantized/un-octahedroned values. It also
// returns the attribute's portable integer form, the same value
// EncodeAttribute returns on the encode side, for a caller decoding a
// Position attribute to stash and feed back in as texPositions when
// decoding a TexCoord attribute that follows.
func DecodeAttribute(d *bitio.DecoderBuffer, attrType geom.GeometryAttributeType, dt geom.DataType, numComponents int, numValues int, meshCtx *prediction.MeshContext, texPositions [][]int32) (*geom.PointAttribute, [][]int32, error) {
	if numComponents < 1 || numComponents > 255 {
		return nil, nil, ErrUnsupportedDataType
	}
	stride := dt.Size() * numComponents
	// Refuse to preallocate attribute storage past the
	// 1 GiB implementation limit rather than trust a corrupt header.
	if numValues < 0 || stride <= 0 || numValues > (1<<30)/stride {
		return nil, nil, ErrUnsupportedDataType
	}
	rawType, err := d.DecodeU8()
	if err != nil {
		return nil, nil, err
	}
	dtype := DecoderType(rawType)

	var qt *transform.QuantizationTransform
	var oct *transform.OctahedronTransform
	switch dtype {
	case TypeNormals:
		bits, err := d.DecodeVarint()
		if err != nil {
			return nil, nil, err
		}
		oct, err = transform.NewOctahedronTransform(int(bits))
		if err != nil {
			return nil, nil, err
		}
	case TypeQuantization:
		bits, err := d.DecodeVarint()
		if err != nil {
			return nil, nil, err
		}
		rng, err := d.DecodeF32()
		if err != nil {
			return nil, nil, err
		}
		mins := make([]float32, numComponents)
		for c := range mins {
			mins[c], err = d.DecodeF32()
			if err != nil {
				return nil, nil, err
			}
		}
		qt, err = transform.NewQuantizationTransform(int(bits), mins, rng)
		if err != nil {
			return nil, nil, err
		}
	case TypeGeneric, TypeInteger:
	default:
		return nil, nil, ErrUnknownDecoderType
	}

	methodByte, err := d.DecodeU8()
	if err != nil {
		return nil, nil, err
	}
	method := prediction.Method(methodByte)
	ttypeByte, err := d.DecodeU8()
	if err != nil {
		return nil, nil, err
	}
	ttype := prediction.TransformType(ttypeByte)

	order := identityOrder(numValues)
	if meshCtx != nil {
		order = meshCtx.Order
	}

	var portNumComponents int
	switch dtype {
	case TypeNormals:
		portNumComponents = 2
	default:
		portNumComponents = numComponents
	}

	if method == prediction.MethodMultiParallelogram {
		return nil, nil, prediction.ErrReservedMethod
	}

	var data [][]int32
	switch method {
	case prediction.MethodParallelogram:
		if meshCtx == nil {
			return nil, nil, ErrMissingMeshContext
		}
		data, err = prediction.DecodeParallelogram(d, portNumComponents, meshCtx)
	case prediction.MethodConstrainedMultiParallelogram:
		if meshCtx == nil {
			return nil, nil, ErrMissingMeshContext
		}
		data, err = prediction.DecodeConstrainedMultiParallelogram(d, portNumComponents, meshCtx)
	case prediction.MethodTexCoordsPortable:
		if meshCtx == nil || texPositions == nil {
			return nil, nil, ErrMissingMeshContext
		}
		data, err = prediction.DecodeTexCoordsPortable(d, &prediction.TexCoordsContext{
			MeshContext: meshCtx,
			Positions:   texPositions,
		})
	default:
		var tr prediction.Transform
		tr, err = prediction.NewTransform(ttype)
		if err != nil {
			return nil, nil, err
		}
		if nt, ok := tr.(*prediction.NormalOctahedronCanonicalizedTransform); ok && oct != nil {
			nt.SetParams(oct.MaxQuantizedValue(), oct.CenterValue())
		}
		data, err = prediction.DecodeSequence(d, order, portNumComponents, tr)
	}
	if err != nil {
		return nil, nil, err
	}

	attr := &geom.PointAttribute{
		AttributeType:   attrType,
		DataType:        dt,
		NumComponents:   numComponents,
		ByteStride:      dt.Size() * numComponents,
		Buffer:          geom.NewDataBufferFromBytes(make([]byte, dt.Size()*numComponents*numValues)),
		NumUniqueValues: numValues,
	}
	for i := 0; i < numValues; i++ {
		avi := geom.AttributeValueIndex(i)
		switch dtype {
		case TypeNormals:
			x, y, z := oct.DecodeNormal(data[i][0], data[i][1])
			attr.SetValueFloat32(avi, 0, float32(x))
			attr.SetValueFloat32(avi, 1, float32(y))
			attr.SetValueFloat32(avi, 2, float32(z))
		case TypeQuantization:
			for c := 0; c < numComponents; c++ {
				attr.SetValueFloat32(avi, c, qt.Dequantize(uint32(data[i][c]), c))
			}
		default:
			for c := 0; c < numComponents; c++ {
				attr.SetValueUint32(avi, c, uint32(data[i][c]))
			}
		}
	}
	return attr, data, nil
}
