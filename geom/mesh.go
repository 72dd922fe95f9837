package geom

// Face is a triangle expressed as three point indices.
type Face [3]PointIndex

// Mesh is a PointCloud plus a triangle index stream. Faces may reference
// indices up to NumPoints()-1; connectivity need not be manifold.
type Mesh struct {
	PointCloud
	faces []Face
}

// NewMesh returns an empty mesh with the given point count.
func NewMesh(numPoints int) *Mesh {
	return &Mesh{PointCloud: *NewPointCloud(numPoints)}
}

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Face returns the triangle at FaceIndex i.
func (m *Mesh) Face(i int) Face { return m.faces[i] }

// Faces returns the full face list.
func (m *Mesh) Faces() []Face { return m.faces }

// AddFace appends f to the face list.
func (m *Mesh) AddFace(f Face) { m.faces = append(m.faces, f) }

// SetFaces replaces the face list wholesale (used by decoders).
func (m *Mesh) SetFaces(faces []Face) { m.faces = faces }
