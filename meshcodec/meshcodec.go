// Package meshcodec is the public API: Encode/EncodePointCloud turn a
// geom.Mesh/PointCloud plus container.Options into a container-framed byte
// stream, and Decode turns one back into whichever geometry it holds.
//
// Every attribute here is assumed identity-mapped (no attribute seams): one
// PointAttribute value per mesh vertex/point-cloud point, matching the
// scope edgebreaker.EncodeConnectivity already narrows to for connectivity.
package meshcodec

import (
	"github.com/cocosip/go-mesh-codec/attrenc"
	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/container"
	"github.com/cocosip/go-mesh-codec/edgebreaker"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/prediction"
)

// Encode writes mesh as a container-framed stream. A mesh with zero faces
// is encoded as a point cloud.
func Encode(mesh *geom.Mesh, opt container.Options) ([]byte, error) {
	gt := container.SelectGeometryType(true, mesh.NumFaces())
	if gt == container.GeometryPointCloud {
		return EncodePointCloud(&mesh.PointCloud, opt)
	}

	method, version := container.SelectEncodingMethod(opt, gt)
	out := bitio.NewEncoderBuffer()
	container.EncodeHeader(out, container.Header{Version: version, GeometryType: gt, EncodingMethod: method})

	var meshCtx *prediction.MeshContext
	var sourceOrder []int
	switch method {
	case container.MethodEdgebreaker:
		ct := geom.NewCornerTableFromFaces(mesh.Faces(), mesh.NumPoints())
		res, err := edgebreaker.EncodeConnectivity(ct)
		if err != nil {
			return nil, err
		}
		if err := edgebreaker.EncodeStream(out, version, res); err != nil {
			return nil, err
		}
		// Predict over the connectivity the decoder will reconstruct, not
		// the original table, so both sides see identical neighborhoods;
		// attribute values are gathered per minted vertex (duplicating at
		// vertex splits).
		_, meshCtx = edgebreaker.BuildDecodeContext(res.DecodedFaces, res.NumDecodedVertices)
		sourceOrder = make([]int, len(res.VertexOrder))
		for i, v := range res.VertexOrder {
			sourceOrder[i] = int(v)
		}
	default: // Sequential: faces written directly, no corner-table prediction context.
		out.EncodeVarint(uint64(mesh.NumPoints()))
		out.EncodeVarint(uint64(mesh.NumFaces()))
		for i := 0; i < mesh.NumFaces(); i++ {
			f := mesh.Face(i)
			for _, p := range f {
				out.EncodeVarint(uint64(p))
			}
		}
	}

	if err := encodeAttributes(out, version, &mesh.PointCloud, meshCtx, sourceOrder, opt); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EncodePointCloud writes pc as a container-framed stream with no
// connectivity section. A point cloud with zero points
// encodes to an empty attribute/point section and decodes back the same way.
func EncodePointCloud(pc *geom.PointCloud, opt container.Options) ([]byte, error) {
	gt := container.GeometryPointCloud
	method, version := container.SelectEncodingMethod(opt, gt)
	out := bitio.NewEncoderBuffer()
	container.EncodeHeader(out, container.Header{Version: version, GeometryType: gt, EncodingMethod: method})
	out.EncodeVarint(uint64(pc.NumPoints()))

	if method == container.MethodKDTree {
		if err := encodeUnifiedKDTree(out, version, pc, opt); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	}
	if err := encodeAttributes(out, version, pc, nil, nil, opt); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeAttributes(out *bitio.EncoderBuffer, version bitio.Version, pc *geom.PointCloud, meshCtx *prediction.MeshContext, sourceOrder []int, opt container.Options) error {
	out.EncodeVarint(uint64(pc.NumAttributes()))
	var positions [][]int32
	for i := 0; i < pc.NumAttributes(); i++ {
		attr := pc.Attribute(i)
		out.EncodeU8(uint8(attr.AttributeType))
		out.EncodeU8(uint8(attr.DataType))
		out.EncodeU8(uint8(attr.NumComponents))
		out.EncodeVarint(uint64(attr.UniqueID))

		eopt := attrenc.EncodeOptions{
			QuantizationBits: opt.QuantizationBitsFor(attr.AttributeType),
			NormalBits:       opt.QuantizationBitsFor(geom.AttrNormal),
			EncodingSpeed:    opt.EncodingSpeed,
			Method:           opt.PredictionMethod,
			ForceMethod:      opt.ForcePredictionMethod,
			Positions:        positions,
			SourceOrder:      sourceOrder,
		}
		// TexCoordsPortable needs the preceding Position attribute's
		// portable integer form; we don't resolve SelectMethod ourselves
		// here, so just make it available whenever we have it.
		data, err := attrenc.EncodeAttribute(out, version, attr, meshCtx, eopt)
		if err != nil {
			return err
		}
		if attr.AttributeType == geom.AttrPosition {
			positions = data
		}
	}
	return nil
}

// Decode reads a container-framed stream back into a *geom.Mesh (connectivity
// present) or *geom.PointCloud (no connectivity). Exactly one of the two
// return values is non-nil.
func Decode(data []byte) (*geom.Mesh, *geom.PointCloud, error) {
	d := bitio.NewDecoderBuffer(data)
	h, err := container.DecodeHeader(d)
	if err != nil {
		return nil, nil, err
	}

	if h.EncodingMethod != container.MethodSequential && h.EncodingMethod != container.MethodEdgebreaker {
		return nil, nil, &container.Error{Kind: container.KindBadEncodingMethod, Offset: d.Pos(), Message: "unknown encoding method"}
	}

	if h.GeometryType == container.GeometryPointCloud {
		numPoints, err := d.DecodeVarint()
		if err != nil {
			return nil, nil, err
		}
		if h.EncodingMethod == container.MethodKDTree {
			pc, err := decodeUnifiedKDTree(d, int(numPoints))
			return nil, pc, err
		}
		pc, err := decodeAttributes(d, int(numPoints), nil)
		return nil, pc, err
	}

	var meshCtx *prediction.MeshContext
	var faces []geom.Face
	var numVertices int
	switch h.EncodingMethod {
	case container.MethodEdgebreaker:
		symbols, _, nf, events, err := edgebreaker.DecodeStream(d)
		if err != nil {
			return nil, nil, err
		}
		dr, err := edgebreaker.DecodeConnectivity(symbols, nf, events)
		if err != nil {
			return nil, nil, err
		}
		faces = dr.Faces
		numVertices = dr.NumVertices
		_, meshCtx = edgebreaker.BuildDecodeContext(faces, numVertices)
	default:
		nv, err := d.DecodeVarint()
		if err != nil {
			return nil, nil, err
		}
		nf, err := d.DecodeVarint()
		if err != nil {
			return nil, nil, err
		}
		// A face costs at least three varint bytes; anything larger than the
		// remaining input is a corrupt count, not a large mesh.
		if nf > uint64(d.Remaining()) {
			return nil, nil, bitio.ErrTruncated
		}
		numVertices = int(nv)
		faces = make([]geom.Face, nf)
		for i := range faces {
			for c := 0; c < 3; c++ {
				v, err := d.DecodeVarint()
				if err != nil {
					return nil, nil, err
				}
				faces[i][c] = geom.PointIndex(v)
			}
		}
	}

	pc, err := decodeAttributes(d, numVertices, meshCtx)
	if err != nil {
		return nil, nil, err
	}
	mesh := &geom.Mesh{PointCloud: *pc}
	mesh.SetFaces(faces)
	return mesh, nil, nil
}

func decodeAttributes(d *bitio.DecoderBuffer, numValues int, meshCtx *prediction.MeshContext) (*geom.PointCloud, error) {
	numAttrs, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	// Each attribute header costs at least four bytes.
	if numAttrs > uint64(d.Remaining()) {
		return nil, bitio.ErrTruncated
	}
	pc := geom.NewPointCloud(numValues)
	var positions [][]int32
	for i := uint64(0); i < numAttrs; i++ {
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
		attrType := geom.GeometryAttributeType(atByte)
		attr, data, err := attrenc.DecodeAttribute(d, attrType, geom.DataType(dtByte), int(ncByte), numValues, meshCtx, positions)
		if err != nil {
			return nil, err
		}
		attr.UniqueID = uint32(uid)
		if attrType == geom.AttrPosition {
			positions = data
		}
		pc.AddAttribute(attr)
	}
	return pc, nil
}
