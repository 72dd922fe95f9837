package edgebreaker

import "github.com/cocosip/go-mesh-codec/geom"

type gate struct{ a, b int } // decode-order vertex ids of the gate edge.

// DecodeResult is the reconstructed connectivity. Vertices are numbered in
// mint order, which the attribute decoders use as their entry order.
type DecodeResult struct {
	Faces       []geom.Face
	NumVertices int
}

// DecodeConnectivity rebuilds a face list from a CLERSH symbol stream with
// the gate-stack simulation: the opening C mints the seed face and its
// two continuation gates; every later symbol pops a gate and either attaches
// a new face across it (minting a fresh tip vertex) or, for H, closes the
// gate with nothing behind it. An S symbol resumes from the gate recorded by
// its topology split event's source symbol instead of the popped one.
func DecodeConnectivity(symbols []Symbol, numFaces int, events []TopologySplitEvent) (*DecodeResult, error) {
	res := &DecodeResult{}
	if numFaces == 0 {
		return res, nil
	}
	if len(symbols) == 0 || symbols[0] != SymbolC {
		return nil, ErrFirstSymbolNotC
	}

	sourceEvents := make(map[int][]TopologySplitEvent)
	for _, ev := range events {
		sourceEvents[ev.SourceSymbolID] = append(sourceEvents[ev.SourceSymbolID], ev)
	}
	splitGates := make(map[int]gate)

	nextVertex := 0
	newVertex := func() int {
		v := nextVertex
		nextVertex++
		return v
	}

	v0, v1, v2 := newVertex(), newVertex(), newVertex()
	res.Faces = append(res.Faces, geom.Face{
		geom.PointIndex(v0), geom.PointIndex(v1), geom.PointIndex(v2),
	})
	stack := []gate{{a: v2, b: v0}, {a: v0, b: v1}}

	for i := 1; i < len(symbols); i++ {
		var g gate
		if sg, ok := splitGates[i]; ok {
			// The matching source symbol recorded this gate; the regular pop
			// is discarded in its favor.
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			g = sg
			delete(splitGates, i)
		} else {
			if len(stack) == 0 {
				return nil, ErrTraversalMismatch
			}
			g = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}

		sym := symbols[i]
		if sym == SymbolH {
			continue
		}
		t := newVertex()
		res.Faces = append(res.Faces, geom.Face{
			geom.PointIndex(g.a), geom.PointIndex(g.b), geom.PointIndex(t),
		})
		if len(res.Faces) > numFaces {
			return nil, ErrTraversalMismatch
		}

		switch sym {
		case SymbolC, SymbolS:
			stack = append(stack, gate{a: t, b: g.b}, gate{a: g.a, b: t})
		case SymbolR:
			stack = append(stack, gate{a: t, b: g.b})
		case SymbolL:
			stack = append(stack, gate{a: g.a, b: t})
		case SymbolE:
		default:
			return nil, ErrTraversalMismatch
		}

		if sym == SymbolR || sym == SymbolL || sym == SymbolE {
			for _, ev := range sourceEvents[i] {
				sg := gate{a: t, b: g.b}
				if ev.SourceEdge == SourceEdgeRight {
					sg = gate{a: g.a, b: t}
				}
				splitGates[ev.SplitSymbolID] = sg
			}
		}
	}

	if len(res.Faces) != numFaces || len(stack) != 0 {
		return nil, ErrTraversalMismatch
	}
	res.NumVertices = nextVertex
	return res, nil
}
