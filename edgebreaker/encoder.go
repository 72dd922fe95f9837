package edgebreaker

import "github.com/cocosip/go-mesh-codec/geom"

// EncodeResult is the symbol stream plus the decoder-replay bookkeeping the
// attribute encoders need: the face list the decoder will reconstruct, and
// for every vertex it will mint, which original corner-table vertex that
// minted vertex duplicates.
type EncodeResult struct {
	Symbols []Symbol
	// Events is empty for this encoder: a gate whose face was consumed by
	// another strand is closed with H rather than resumed with S, so no
	// topology split bookkeeping is ever required (see DESIGN.md).
	Events []TopologySplitEvent
	// VertexOrder maps each decode-order vertex to the original vertex whose
	// attribute values it carries. The same original vertex may appear more
	// than once (vertex splitting).
	VertexOrder []geom.VertexIndex
	// DataToCorner holds one original-table corner per decode-order vertex
	// (the corner the traversal minted it at).
	DataToCorner []geom.CornerIndex
	// DecodedFaces is the exact face list DecodeConnectivity will produce
	// from Symbols, in decode-order vertex ids. Prediction contexts on the
	// encode side are built from this list, never from the original table,
	// so both sides predict over identical connectivity.
	DecodedFaces []geom.Face
	// NumDecodedVertices is len(VertexOrder), the decoded mesh's point count.
	NumDecodedVertices int
}

// encGate is one pending continuation: the tip corner of the candidate face
// across the gate edge (InvalidCorner on a mesh boundary) and the decode
// order ids of the gate edge's two endpoints.
type encGate struct {
	cross geom.CornerIndex
	a, b  int
}

// seedCorner picks the traversal seed. The edge opposite the seed corner is
// the one edge no gate is ever pushed for, so on a mesh with boundary the
// seed is chosen opposite a boundary edge; a closed manifold's dual graph
// stays connected with any single edge removed, so corner 0 serves there.
func seedCorner(ct *geom.CornerTable) geom.CornerIndex {
	numCorners := ct.NumFaces() * 3
	for c := 0; c < numCorners; c++ {
		if ct.Opposite(geom.CornerIndex(c)) == geom.InvalidCorner {
			return geom.CornerIndex(c)
		}
	}
	return 0
}

// EncodeConnectivity runs the traversal over ct and returns the symbol
// stream together with the reconstruction the decoder will derive from it.
// It maintains the decoder's gate stack in lockstep: the seed face opens
// with C and pushes its left and right gates; every pop either attaches the
// face behind the gate (classified C/R/L/E by which of its two continuation
// edges still lead to unvisited faces) or emits H when the gate has nothing
// fresh behind it (a boundary edge, or a face another strand already took).
func EncodeConnectivity(ct *geom.CornerTable) (*EncodeResult, error) {
	numFaces := ct.NumFaces()
	res := &EncodeResult{}
	if numFaces == 0 {
		return res, nil
	}
	if err := validateTopology(ct); err != nil {
		return nil, err
	}

	visited := make([]bool, numFaces)
	visitedCount := 0

	mint := func(v geom.VertexIndex, c geom.CornerIndex) int {
		id := len(res.VertexOrder)
		res.VertexOrder = append(res.VertexOrder, v)
		res.DataToCorner = append(res.DataToCorner, c)
		return id
	}

	root := seedCorner(ct)
	rootNext, rootPrev := ct.Next(root), ct.Previous(root)
	v0 := mint(ct.Vertex(root), root)
	v1 := mint(ct.Vertex(rootNext), rootNext)
	v2 := mint(ct.Vertex(rootPrev), rootPrev)
	visited[ct.Face(root)] = true
	visitedCount++
	res.Symbols = append(res.Symbols, SymbolC)
	res.DecodedFaces = append(res.DecodedFaces, geom.Face{
		geom.PointIndex(v0), geom.PointIndex(v1), geom.PointIndex(v2),
	})

	// Push order mirrors the decoder's seed: left gate below, right on top.
	stack := []encGate{
		{cross: ct.Opposite(rootNext), a: v2, b: v0},
		{cross: ct.Opposite(rootPrev), a: v0, b: v1},
	}

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g.cross == geom.InvalidCorner || visited[ct.Face(g.cross)] {
			res.Symbols = append(res.Symbols, SymbolH)
			continue
		}
		cur := g.cross
		visited[ct.Face(cur)] = true
		visitedCount++
		t := mint(ct.Vertex(cur), cur)
		res.DecodedFaces = append(res.DecodedFaces, geom.Face{
			geom.PointIndex(g.a), geom.PointIndex(g.b), geom.PointIndex(t),
		})

		// The gate edge is opposite cur; its endpoints sit at Next(cur) and
		// Previous(cur). Work out which endpoint the decoder knows as `a`,
		// because each continuation crosses the edge between the tip and one
		// specific endpoint.
		next, prev := ct.Next(cur), ct.Previous(cur)
		cornerOfA, cornerOfB := next, prev
		if ct.Vertex(next) != res.VertexOrder[g.a] {
			cornerOfA, cornerOfB = prev, next
		}
		left := encGate{cross: ct.Opposite(cornerOfA), a: t, b: g.b}
		right := encGate{cross: ct.Opposite(cornerOfB), a: g.a, b: t}
		leftFree := left.cross != geom.InvalidCorner && !visited[ct.Face(left.cross)]
		rightFree := right.cross != geom.InvalidCorner && !visited[ct.Face(right.cross)]

		switch {
		case leftFree && rightFree:
			res.Symbols = append(res.Symbols, SymbolC)
			stack = append(stack, left, right)
		case leftFree:
			res.Symbols = append(res.Symbols, SymbolR)
			stack = append(stack, left)
		case rightFree:
			res.Symbols = append(res.Symbols, SymbolL)
			stack = append(stack, right)
		default:
			res.Symbols = append(res.Symbols, SymbolE)
		}
	}

	if visitedCount != numFaces {
		// Reachable only through the seed's own entry edge; validateTopology
		// cannot distinguish this from ordinary adjacency.
		return nil, ErrDisconnectedMesh
	}
	res.NumDecodedVertices = len(res.VertexOrder)
	return res, nil
}
