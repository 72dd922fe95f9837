package geom

import "testing"

func TestDataTypeSizes(t *testing.T) {
	cases := map[DataType]int{
		DTInvalid: 0, DTInt8: 1, DTUInt8: 1, DTBool: 1,
		DTInt16: 2, DTUInt16: 2,
		DTInt32: 4, DTUInt32: 4, DTFloat32: 4,
		DTInt64: 8, DTUInt64: 8, DTFloat64: 8,
	}
	for dt, want := range cases {
		if got := dt.Size(); got != want {
			t.Fatalf("%v.Size() = %d, want %d", dt, got, want)
		}
	}
}

func TestDataBufferUpdateCounter(t *testing.T) {
	b := NewDataBuffer()
	if b.UpdateCount() != 0 {
		t.Fatalf("fresh buffer has update count %d", b.UpdateCount())
	}
	b.Write(0, []byte{1, 2, 3})
	b.Write(1, []byte{9})
	if b.UpdateCount() != 2 {
		t.Fatalf("expected 2 updates, got %d", b.UpdateCount())
	}
	if got := b.Read(0, 3); got[0] != 1 || got[1] != 9 || got[2] != 3 {
		t.Fatalf("unexpected contents %v", got)
	}
	b.Resize(8)
	if b.Len() != 8 || b.UpdateCount() != 3 {
		t.Fatalf("resize: len %d updates %d", b.Len(), b.UpdateCount())
	}
}

func TestExplicitIndexMapValidation(t *testing.T) {
	attr := NewIdentityAttribute(AttrGeneric, DTUInt8, 1, 7, 4)
	if err := attr.SetExplicitIndexMap([]AttributeValueIndex{0, 1}, 4); err != ErrIndexMapLength {
		t.Fatalf("expected ErrIndexMapLength, got %v", err)
	}
	if err := attr.SetExplicitIndexMap([]AttributeValueIndex{0, 1, 2, 9}, 4); err != ErrIndexMapOutOfRange {
		t.Fatalf("expected ErrIndexMapOutOfRange, got %v", err)
	}
	m := []AttributeValueIndex{3, InvalidAttributeValueIndex, 0, 1}
	if err := attr.SetExplicitIndexMap(m, 4); err != nil {
		t.Fatalf("valid map rejected: %v", err)
	}
	if got := attr.MappedIndex(0); got != 3 {
		t.Fatalf("MappedIndex(0) = %d", got)
	}
	if got := attr.MappedIndex(1); got != InvalidAttributeValueIndex {
		t.Fatalf("MappedIndex(1) = %d", got)
	}
}

func TestCornerTableDerivedOps(t *testing.T) {
	// Two triangles sharing edge (1,2): {0,1,2} and {2,1,3}.
	faces := []Face{{0, 1, 2}, {2, 1, 3}}
	ct := NewCornerTableFromFaces(faces, 4)

	if ct.NumFaces() != 2 || ct.NumVertices() != 4 {
		t.Fatalf("counts: %d faces %d vertices", ct.NumFaces(), ct.NumVertices())
	}
	for c := CornerIndex(0); c < 6; c++ {
		if ct.Previous(c) != ct.Next(ct.Next(c)) {
			t.Fatalf("previous != next^2 at corner %d", c)
		}
	}
	// The shared edge (1,2) is opposite corner 0 (vertex 0) in face 0 and
	// opposite corner 5 (vertex 3) in face 1.
	if ct.Opposite(0) != 5 || ct.Opposite(5) != 0 {
		t.Fatalf("opposite pairing: %d %d", ct.Opposite(0), ct.Opposite(5))
	}
	// Opposite symmetry everywhere it is set.
	for c := CornerIndex(0); c < 6; c++ {
		if opp := ct.Opposite(c); opp != InvalidCorner && ct.Opposite(opp) != c {
			t.Fatalf("opposite not symmetric at corner %d", c)
		}
	}
}

func TestCornerTableVertexRing(t *testing.T) {
	// Closed fan around vertex 0: every other vertex has degree <= 2, the
	// center's ring visits all four faces.
	faces := []Face{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {0, 4, 1}}
	ct := NewCornerTableFromFaces(faces, 5)

	ring := ct.VertexRing(0)
	if len(ring) != 4 {
		t.Fatalf("expected 4 corners around the center, got %d", len(ring))
	}
	seenFaces := map[FaceIndex]bool{}
	for _, c := range ring {
		if ct.Vertex(c) != 0 {
			t.Fatalf("ring corner %d belongs to vertex %d", c, ct.Vertex(c))
		}
		seenFaces[ct.Face(c)] = true
	}
	if len(seenFaces) != 4 {
		t.Fatalf("ring covered %d faces", len(seenFaces))
	}
	if ct.IsOnBoundary(0) {
		t.Fatalf("interior vertex reported on boundary")
	}
	if !ct.IsOnBoundary(1) {
		t.Fatalf("rim vertex not reported on boundary")
	}
}
