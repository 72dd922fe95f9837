package container

import "github.com/cocosip/go-mesh-codec/bitio"

// SelectGeometryType applies the rule that a mesh with no faces is
// encoded as a point cloud: EdgeBreaker and Sequential-mesh connectivity
// both require at least one triangle to traverse.
func SelectGeometryType(isMesh bool, numFaces int) GeometryType {
	if isMesh && numFaces > 0 {
		return GeometryTriangularMesh
	}
	return GeometryPointCloud
}

// SelectEncodingMethod picks the default connectivity/point-ordering method
// for a geometry type at the Options' requested version, honoring an
// explicit override first.
//
// Mesh: EdgeBreaker from version 2.2, Sequential below that.
// Point cloud: KD-tree from version 2.3, Sequential below that.
func SelectEncodingMethod(o Options, gt GeometryType) (EncodingMethod, bitio.Version) {
	if o.ForceEncodingMethod {
		return o.EncodingMethod, o.version(gt, o.EncodingMethod)
	}
	switch gt {
	case GeometryTriangularMesh:
		v := o.version(gt, MethodEdgebreaker)
		if v.AtLeast(2, 2) {
			return MethodEdgebreaker, v
		}
		return MethodSequential, o.version(gt, MethodSequential)
	default:
		v := o.version(gt, MethodKDTree)
		if v.AtLeast(2, 3) {
			return MethodKDTree, v
		}
		return MethodSequential, o.version(gt, MethodSequential)
	}
}
