package prediction

import "github.com/cocosip/go-mesh-codec/geom"

// AttributeKind distinguishes whether the method-selection policy is
// choosing a predictor for a mesh or a point cloud, and whether the
// sequential attribute encoder (which exposes no corner table to the
// factory) is in play.
type AttributeKind int

const (
	KindPointCloud AttributeKind = iota
	KindMeshSequential
	KindMeshEdgebreaker
)

// SelectOptions carries the inputs the method-selection policy
// consults.
type SelectOptions struct {
	Kind             AttributeKind
	AttributeType    geom.GeometryAttributeType
	EncodingSpeed    int
	NumPoints        int
	NumComponents    int
	IsQuantized      bool
	PositionQuantBits int
	TexQuantBits      int
}

// SelectMethod implements the encoder-side method-selection policy.
func SelectMethod(o SelectOptions) Method {
	if o.Kind == KindPointCloud {
		return MethodDifference
	}
	if o.EncodingSpeed >= 10 {
		return MethodDifference
	}
	if o.Kind == KindMeshSequential {
		return MethodDifference
	}
	if o.AttributeType == geom.AttrTexCoord && o.NumComponents == 2 && o.IsQuantized &&
		o.EncodingSpeed < 4 && 2*o.PositionQuantBits+o.TexQuantBits < 64 {
		return MethodTexCoordsPortable
	}
	if o.AttributeType == geom.AttrNormal {
		return MethodDifference
	}
	if o.EncodingSpeed >= 8 {
		return MethodDifference
	}
	if o.EncodingSpeed >= 2 || o.NumPoints < 40 {
		return MethodParallelogram
	}
	return MethodConstrainedMultiParallelogram
}

// TransformFor returns the transform a selected method pairs with by
// default: NormalOctahedronCanonicalized for Normal attributes (paired with
// Difference), Delta otherwise. TexCoordsPortable and
// ConstrainedMultiParallelogram/Parallelogram implement their own
// correction arithmetic directly and are not paired with a Transform value
// (TransformNone).
func TransformFor(method Method, attrType geom.GeometryAttributeType) TransformType {
	switch method {
	case MethodDifference:
		if attrType == geom.AttrNormal {
			return TransformNormalOctahedronCanonicalized
		}
		return TransformDelta
	default:
		return TransformNone
	}
}
