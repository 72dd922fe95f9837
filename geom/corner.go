package geom

import "sort"

// CornerIndex addresses one of the three (face, slot) corners of a
// triangle: 3*face + slot.
type CornerIndex int32

// VertexIndex addresses one vertex of a CornerTable. Distinct from
// PointIndex: EdgeBreaker may mint extra vertices at attribute seams, so a
// CornerTable can have more vertices than the mesh has points.
type VertexIndex int32

// FaceIndex addresses one triangle.
type FaceIndex int32

const (
	InvalidCorner CornerIndex = -1
	InvalidVertex VertexIndex = -1
	InvalidFace   FaceIndex   = -1
)

// CornerTable is a half-edge-style topology index built from a face list
//. It is an arena of parallel integer slices indexed by CornerIndex
// or VertexIndex, not a pointer graph.
type CornerTable struct {
	oppositeCorners []CornerIndex
	cornerToVertex  []VertexIndex
	vertexCorner    []CornerIndex // one representative incoming corner per vertex
	numFaces        int
	numVertices     int
}

// NewCornerTableFromFaces builds a CornerTable for the given faces, whose
// point indices are assumed dense in [0, numVertices).
func NewCornerTableFromFaces(faces []Face, numVertices int) *CornerTable {
	ct := &CornerTable{
		numFaces:        len(faces),
		numVertices:     numVertices,
		oppositeCorners: make([]CornerIndex, len(faces)*3),
		cornerToVertex:  make([]VertexIndex, len(faces)*3),
		vertexCorner:    make([]CornerIndex, numVertices),
	}
	for i := range ct.oppositeCorners {
		ct.oppositeCorners[i] = InvalidCorner
	}
	for i := range ct.vertexCorner {
		ct.vertexCorner[i] = InvalidCorner
	}
	for f, face := range faces {
		for slot := 0; slot < 3; slot++ {
			c := CornerIndex(f*3 + slot)
			ct.cornerToVertex[c] = VertexIndex(face[slot])
		}
	}
	ct.computeOpposites(faces)
	for v := 0; v < numVertices; v++ {
		ct.vertexCorner[v] = InvalidCorner
	}
	for c := range ct.cornerToVertex {
		v := ct.cornerToVertex[c]
		if ct.vertexCorner[v] == InvalidCorner {
			ct.vertexCorner[v] = CornerIndex(c)
		}
	}
	return ct
}

type directedEdge struct {
	src, dst VertexIndex
	corner   CornerIndex
}

// computeOpposites collects every directed edge (src->dst, corner), sorts
// pairs, and matches (a,b) with (b,a) to fill in opposite-corner pointers.
// Unmatched edges (boundaries, non-manifold edges) keep InvalidCorner.
func (ct *CornerTable) computeOpposites(faces []Face) {
	edges := make([]directedEdge, 0, len(faces)*3)
	for f := range faces {
		for slot := 0; slot < 3; slot++ {
			c := CornerIndex(f*3 + slot)
			next := ct.Next(c)
			// The edge opposite corner c runs from the vertex at Next(c) to
			// the vertex at Previous(c).
			prev := ct.Previous(c)
			edges = append(edges, directedEdge{
				src:    ct.cornerToVertex[next],
				dst:    ct.cornerToVertex[prev],
				corner: c,
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].src != edges[j].src {
			return edges[i].src < edges[j].src
		}
		return edges[i].dst < edges[j].dst
	})
	used := make([]bool, len(edges))
	// Pairing: build an index by (src,dst) to find the unique reverse match.
	byPair := make(map[[2]VertexIndex][]int)
	for i, e := range edges {
		byPair[[2]VertexIndex{e.src, e.dst}] = append(byPair[[2]VertexIndex{e.src, e.dst}], i)
	}
	for i, e := range edges {
		if used[i] {
			continue
		}
		key := [2]VertexIndex{e.dst, e.src}
		candidates := byPair[key]
		for _, j := range candidates {
			if !used[j] && j != i {
				ct.oppositeCorners[e.corner] = edges[j].corner
				ct.oppositeCorners[edges[j].corner] = e.corner
				used[i] = true
				used[j] = true
				break
			}
		}
	}
}

// NumFaces returns the number of triangles.
func (ct *CornerTable) NumFaces() int { return ct.numFaces }

// NumVertices returns the number of distinct vertices (may exceed the
// mesh's NumPoints() after seam-driven splits).
func (ct *CornerTable) NumVertices() int { return ct.numVertices }

// Vertex returns the vertex a corner belongs to.
func (ct *CornerTable) Vertex(c CornerIndex) VertexIndex {
	if c == InvalidCorner {
		return InvalidVertex
	}
	return ct.cornerToVertex[c]
}

// Opposite returns the corner across the edge from c, or InvalidCorner on a
// boundary.
func (ct *CornerTable) Opposite(c CornerIndex) CornerIndex {
	if c == InvalidCorner {
		return InvalidCorner
	}
	return ct.oppositeCorners[c]
}

// SetOpposite overwrites the opposite pointer for c (used when minting new
// vertices at attribute seams).
func (ct *CornerTable) SetOpposite(c, opp CornerIndex) {
	ct.oppositeCorners[c] = opp
}

// Face returns the face a corner belongs to.
func (ct *CornerTable) Face(c CornerIndex) FaceIndex { return FaceIndex(int32(c) / 3) }

// Next returns the next corner within the same face (c - c%3 + (c+1)%3).
func (ct *CornerTable) Next(c CornerIndex) CornerIndex {
	f := int32(c) - int32(c)%3
	return CornerIndex(f + (int32(c)+1)%3)
}

// Previous returns Next(Next(c)).
func (ct *CornerTable) Previous(c CornerIndex) CornerIndex {
	return ct.Next(ct.Next(c))
}

// Swing returns the next corner around c's vertex: Next(Opposite(Next(c))).
// Returns InvalidCorner once the swing walk hits a boundary.
func (ct *CornerTable) Swing(c CornerIndex) CornerIndex {
	opp := ct.Opposite(ct.Next(c))
	if opp == InvalidCorner {
		return InvalidCorner
	}
	return ct.Next(opp)
}

// SwingBackward walks the vertex ring in the opposite direction:
// Previous(Opposite(Previous(c))).
func (ct *CornerTable) SwingBackward(c CornerIndex) CornerIndex {
	opp := ct.Opposite(ct.Previous(c))
	if opp == InvalidCorner {
		return InvalidCorner
	}
	return ct.Previous(opp)
}

// LeftMostCorner returns the representative corner for vertex v.
func (ct *CornerTable) LeftMostCorner(v VertexIndex) CornerIndex {
	return ct.vertexCorner[v]
}

// SetLeftMostCorner overrides the representative corner for v.
func (ct *CornerTable) SetLeftMostCorner(v VertexIndex, c CornerIndex) {
	ct.vertexCorner[v] = c
}

// IsOnBoundary reports whether v's swing ring does not close (the vertex's
// leftmost corner's backward swing hits InvalidCorner).
func (ct *CornerTable) IsOnBoundary(v VertexIndex) bool {
	c := ct.LeftMostCorner(v)
	if c == InvalidCorner {
		return true
	}
	return ct.SwingBackward(c) == InvalidCorner
}

// VertexRing returns every corner incident to v, walking Swing from the
// representative corner until it returns to the start or hits a boundary.
func (ct *CornerTable) VertexRing(v VertexIndex) []CornerIndex {
	start := ct.LeftMostCorner(v)
	if start == InvalidCorner {
		return nil
	}
	ring := []CornerIndex{start}
	c := ct.Swing(start)
	for c != InvalidCorner && c != start {
		ring = append(ring, c)
		c = ct.Swing(c)
	}
	return ring
}

// AddNewVertex grows the table by one vertex (used when EdgeBreaker splits a
// vertex at an attribute seam) and returns its index.
func (ct *CornerTable) AddNewVertex(initialCorner CornerIndex) VertexIndex {
	v := VertexIndex(ct.numVertices)
	ct.numVertices++
	ct.vertexCorner = append(ct.vertexCorner, initialCorner)
	return v
}

// SetVertex reassigns the vertex a corner maps to (used during seam vertex
// splitting).
func (ct *CornerTable) SetVertex(c CornerIndex, v VertexIndex) {
	ct.cornerToVertex[c] = v
}
