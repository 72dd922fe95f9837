package meshcodec

import "github.com/cocosip/go-mesh-codec/container"

// geometryCodec adapts one (GeometryType, EncodingMethod) pair's name into
// container.GeometryCodec so it shows up in container.List/Get; this
// package's Encode/Decode dispatch on the method byte directly rather than
// through the registry, but registering here lets callers introspect which
// encoding methods a build actually supports.
type geometryCodec struct {
	name   string
	gt     container.GeometryType
	method container.EncodingMethod
}

func (g geometryCodec) Name() string                          { return g.name }
func (g geometryCodec) GeometryType() container.GeometryType   { return g.gt }
func (g geometryCodec) EncodingMethod() container.EncodingMethod { return g.method }

func init() {
	container.Register(geometryCodec{"mesh-sequential", container.GeometryTriangularMesh, container.MethodSequential})
	container.Register(geometryCodec{"mesh-edgebreaker", container.GeometryTriangularMesh, container.MethodEdgebreaker})
	container.Register(geometryCodec{"pointcloud-sequential", container.GeometryPointCloud, container.MethodSequential})
	container.Register(geometryCodec{"pointcloud-kdtree", container.GeometryPointCloud, container.MethodKDTree})
}
