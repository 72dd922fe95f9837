package container

import (
	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/prediction"
)

// Options bundles every per-encode knob the public API recognizes, with zero values meaning
// "let the selection policy decide". A meshcodec caller builds one directly
// or loads one from a config.Profile.
type Options struct {
	// QuantizationBits maps an attribute type to its quantization bit depth;
	// AttrPosition and AttrTexCoord default to 14, AttrNormal to 8 when unset.
	QuantizationBits map[geom.GeometryAttributeType]int

	// PredictionMethod forces a prediction.Method for every attribute when
	// ForcePredictionMethod is set. Left at its zero value (and
	// ForcePredictionMethod false), prediction.SelectMethod chooses per
	// attribute instead — mirroring EncodingMethod/ForceEncodingMethod
	// below, since prediction.Method's zero value (MethodDifference) is
	// itself a meaningful forced choice, not a sentinel "unset" value.
	PredictionMethod      prediction.Method
	ForcePredictionMethod bool

	// EncodingSpeed is the 0..10 dial: 0 favors ratio, 10 favors
	// throughput. Zero value behaves as 0 (maximum compression).
	EncodingSpeed int

	// EncodingMethod forces MethodSequential/MethodEdgebreaker (mesh) or
	// MethodSequential/MethodKDTree (point cloud); leave at its zero value
	// (MethodSequential) together with ForceEncodingMethod=false to let
	// SelectEncodingMethod apply the version-gated default.
	EncodingMethod      EncodingMethod
	ForceEncodingMethod bool

	VersionMajor uint8
	VersionMinor uint8
}

// QuantizationBitsFor resolves an attribute's quantization depth, applying
// the defaults when the caller's map doesn't cover it.
func (o Options) QuantizationBitsFor(at geom.GeometryAttributeType) int {
	if o.QuantizationBits != nil {
		if b, ok := o.QuantizationBits[at]; ok {
			return b
		}
	}
	switch at {
	case geom.AttrNormal:
		return 8
	default:
		return 14
	}
}

// version resolves the Options' requested bitstream version, defaulting per
// geometry type/encoding method the way Default*Version constants do.
func (o Options) version(gt GeometryType, method EncodingMethod) bitio.Version {
	if o.VersionMajor != 0 || o.VersionMinor != 0 {
		return bitio.Version{Major: o.VersionMajor, Minor: o.VersionMinor}
	}
	switch {
	case gt == GeometryTriangularMesh:
		return bitio.DefaultMeshVersion
	case method == MethodKDTree:
		return bitio.DefaultPointCloudKdTreeVersion
	default:
		return bitio.DefaultPointCloudSequentialVersion
	}
}
