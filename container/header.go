package container

import "github.com/cocosip/go-mesh-codec/bitio"

// Magic identifies a stream as this codec's container format.
var Magic = [5]byte{'D', 'R', 'A', 'C', 'O'}

// GeometryType distinguishes the two top-level shapes a container can hold.
type GeometryType uint8

const (
	GeometryPointCloud    GeometryType = 0
	GeometryTriangularMesh GeometryType = 1
)

// EncodingMethod is geometry-type-relative: for a mesh, 0=Sequential,
// 1=EdgeBreaker; for a point cloud, 0=Sequential, 1=KDTree.
type EncodingMethod uint8

const (
	MethodSequential EncodingMethod = 0
	MethodEdgebreaker EncodingMethod = 1
	MethodKDTree      EncodingMethod = 1 // alias: meaning depends on GeometryType.
)

// headerHasFlags reports whether a stream of the given geometry type and
// version carries the header's u16 flags word: from 1.3 for point clouds,
// from 1.2 for meshes. Streams below their threshold stop right after
// EncodingMethod.
func headerHasFlags(gt GeometryType, v bitio.Version) bool {
	if gt == GeometryPointCloud {
		return v.AtLeast(1, 3)
	}
	return v.AtLeast(1, 2)
}

// HeaderFlags are reserved bits carried by every version headerHasFlags
// admits. None are defined yet; the field exists so a future revision can
// add one without bumping the container version again.
type HeaderFlags uint16

// Header is the fixed-size preamble every encoded stream starts with.
type Header struct {
	Version        bitio.Version
	GeometryType   GeometryType
	EncodingMethod EncodingMethod
	Flags          HeaderFlags
}

// EncodeHeader writes magic, version, geometry type, encoding method, and
// (when the version supports it) the flags word.
func EncodeHeader(out *bitio.EncoderBuffer, h Header) {
	out.EncodeBytes(Magic[:])
	out.EncodeU8(h.Version.Major)
	out.EncodeU8(h.Version.Minor)
	out.EncodeU8(uint8(h.GeometryType))
	out.EncodeU8(uint8(h.EncodingMethod))
	if headerHasFlags(h.GeometryType, h.Version) {
		out.EncodeU16(uint16(h.Flags))
	}
}

// DecodeHeader is the inverse of EncodeHeader.
func DecodeHeader(d *bitio.DecoderBuffer) (Header, error) {
	magic, err := d.DecodeBytes(5)
	if err != nil {
		return Header{}, newErr(KindTruncated, d.Pos(), "short magic")
	}
	for i, b := range magic {
		if b != Magic[i] {
			return Header{}, newErr(KindBadMagic, d.Pos(), "magic mismatch")
		}
	}
	major, err := d.DecodeU8()
	if err != nil {
		return Header{}, newErr(KindTruncated, d.Pos(), "missing version major")
	}
	minor, err := d.DecodeU8()
	if err != nil {
		return Header{}, newErr(KindTruncated, d.Pos(), "missing version minor")
	}
	gtByte, err := d.DecodeU8()
	if err != nil {
		return Header{}, newErr(KindTruncated, d.Pos(), "missing geometry type")
	}
	gt := GeometryType(gtByte)
	if gt != GeometryPointCloud && gt != GeometryTriangularMesh {
		return Header{}, newErr(KindBadGeometryType, d.Pos(), "unknown geometry type")
	}
	methodByte, err := d.DecodeU8()
	if err != nil {
		return Header{}, newErr(KindTruncated, d.Pos(), "missing encoding method")
	}
	version := bitio.Version{Major: major, Minor: minor}
	d.Version = version

	h := Header{Version: version, GeometryType: gt, EncodingMethod: EncodingMethod(methodByte)}
	if headerHasFlags(gt, version) {
		flags, err := d.DecodeU16()
		if err != nil {
			return Header{}, newErr(KindTruncated, d.Pos(), "missing flags")
		}
		h.Flags = HeaderFlags(flags)
	}
	return h, nil
}
