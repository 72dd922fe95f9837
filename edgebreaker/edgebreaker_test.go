package edgebreaker

import (
	"testing"

	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
)

func countNonHole(symbols []Symbol) int {
	n := 0
	for _, s := range symbols {
		if s != SymbolH {
			n++
		}
	}
	return n
}

func roundTrip(t *testing.T, faces []geom.Face, numVertices int) (*EncodeResult, *DecodeResult) {
	t.Helper()
	ct := geom.NewCornerTableFromFaces(faces, numVertices)
	res, err := EncodeConnectivity(ct)
	if err != nil {
		t.Fatalf("EncodeConnectivity: %v", err)
	}
	if countNonHole(res.Symbols) != len(faces) {
		t.Fatalf("expected %d face symbols, got %d in %v", len(faces), countNonHole(res.Symbols), res.Symbols)
	}
	dr, err := DecodeConnectivity(res.Symbols, len(faces), res.Events)
	if err != nil {
		t.Fatalf("DecodeConnectivity: %v", err)
	}
	if len(dr.Faces) != len(faces) {
		t.Fatalf("face count mismatch: got %d want %d", len(dr.Faces), len(faces))
	}
	if dr.NumVertices != res.NumDecodedVertices {
		t.Fatalf("vertex count mismatch: decoder %d, encoder replay %d", dr.NumVertices, res.NumDecodedVertices)
	}
	for i := range dr.Faces {
		if dr.Faces[i] != res.DecodedFaces[i] {
			t.Fatalf("face %d mismatch: decoder %v, encoder replay %v", i, dr.Faces[i], res.DecodedFaces[i])
		}
	}
	return res, dr
}

func TestEncodeDecodeUnitTriangle(t *testing.T) {
	res, dr := roundTrip(t, []geom.Face{{0, 1, 2}}, 3)
	// Seed C plus one H per unmatched boundary gate.
	if len(res.Symbols) != 3 || res.Symbols[0] != SymbolC {
		t.Fatalf("expected [C H H], got %v", res.Symbols)
	}
	if dr.NumVertices != 3 {
		t.Fatalf("expected 3 vertices, got %d", dr.NumVertices)
	}
}

func TestEncodeDecodeQuad(t *testing.T) {
	res, dr := roundTrip(t, []geom.Face{{0, 1, 2}, {0, 2, 3}}, 4)
	if res.Symbols[0] != SymbolC {
		t.Fatalf("first symbol must be C, got %v", res.Symbols[0])
	}
	if dr.NumVertices != 4 {
		t.Fatalf("expected 4 vertices, got %d", dr.NumVertices)
	}
	// Every decode-order vertex carries one original vertex, all four of
	// which must appear.
	seen := map[geom.VertexIndex]bool{}
	for _, v := range res.VertexOrder {
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 original vertices minted, got %v", res.VertexOrder)
	}
}

func TestEncodeDecodeWireRoundTrip(t *testing.T) {
	faces := []geom.Face{{0, 1, 2}, {0, 2, 3}}
	ct := geom.NewCornerTableFromFaces(faces, 4)
	res, err := EncodeConnectivity(ct)
	if err != nil {
		t.Fatalf("EncodeConnectivity: %v", err)
	}

	out := bitio.NewEncoderBuffer()
	if err := EncodeStream(out, bitio.DefaultMeshVersion, res); err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	symbols, nv, nf, events, err := DecodeStream(d)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if nv != res.NumDecodedVertices || nf != 2 || len(events) != 0 {
		t.Fatalf("unexpected header: nv=%d nf=%d events=%d", nv, nf, len(events))
	}
	if len(symbols) != len(res.Symbols) {
		t.Fatalf("symbol count mismatch: got %d want %d", len(symbols), len(res.Symbols))
	}
	for i := range symbols {
		if symbols[i] != res.Symbols[i] {
			t.Fatalf("symbol %d mismatch: got %v want %v", i, symbols[i], res.Symbols[i])
		}
	}
}

func TestEncodeDecodeGrid(t *testing.T) {
	const n = 10
	var faces []geom.Face
	idx := func(x, y int) geom.PointIndex { return geom.PointIndex(y*n + x) }
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			faces = append(faces, geom.Face{idx(x, y), idx(x + 1, y), idx(x, y + 1)})
			faces = append(faces, geom.Face{idx(x + 1, y), idx(x + 1, y + 1), idx(x, y + 1)})
		}
	}
	res, dr := roundTrip(t, faces, n*n)
	// One vertex minted per face symbol plus the seed's two gate vertices.
	if dr.NumVertices != len(faces)+2 {
		t.Fatalf("expected %d vertices, got %d", len(faces)+2, dr.NumVertices)
	}
	if len(res.VertexOrder) != dr.NumVertices {
		t.Fatalf("vertex order length %d != %d", len(res.VertexOrder), dr.NumVertices)
	}
}

func TestEncodeDecodeClosedOctahedron(t *testing.T) {
	faces := []geom.Face{
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
		{1, 0, 5}, {2, 1, 5}, {3, 2, 5}, {0, 3, 5},
	}
	_, dr := roundTrip(t, faces, 6)
	if dr.NumVertices != len(faces)+2 {
		t.Fatalf("expected %d vertices, got %d", len(faces)+2, dr.NumVertices)
	}
}

func TestEncodeDecodeAnnulus(t *testing.T) {
	// A ring of 8 quads split into triangles: two boundary loops. The gate
	// traversal closes the wrap-around with H symbols instead of needing
	// Split events.
	const n = 8
	outer := func(i int) geom.PointIndex { return geom.PointIndex(i % n) }
	inner := func(i int) geom.PointIndex { return geom.PointIndex(n + i%n) }
	var faces []geom.Face
	for i := 0; i < n; i++ {
		faces = append(faces, geom.Face{outer(i), outer(i + 1), inner(i)})
		faces = append(faces, geom.Face{outer(i + 1), inner(i + 1), inner(i)})
	}
	roundTrip(t, faces, 2*n)
}

func TestEncodeConnectivityRejectsDisconnectedMesh(t *testing.T) {
	faces := []geom.Face{{0, 1, 2}, {3, 4, 5}}
	ct := geom.NewCornerTableFromFaces(faces, 6)
	if _, err := EncodeConnectivity(ct); err != ErrDisconnectedMesh {
		t.Fatalf("expected ErrDisconnectedMesh, got %v", err)
	}
}

func TestDecodeConnectivityRejectsBadStreams(t *testing.T) {
	if _, err := DecodeConnectivity([]Symbol{SymbolE}, 1, nil); err != ErrFirstSymbolNotC {
		t.Fatalf("expected ErrFirstSymbolNotC, got %v", err)
	}
	if _, err := DecodeConnectivity([]Symbol{SymbolC, SymbolE}, 5, nil); err != ErrTraversalMismatch {
		t.Fatalf("expected ErrTraversalMismatch, got %v", err)
	}
}
