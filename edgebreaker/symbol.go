// Package edgebreaker implements the mesh connectivity codec: a
// depth-first corner-table traversal that emits one CLERSH symbol per gate,
// and the forward gate-stack reconstruction that rebuilds a face list from
// the symbol stream, minting vertices in decode order. The reconstruction
// mints a fresh vertex for every face it attaches, so a decoded mesh may
// carry more vertices than the input; the
// encoder replays the exact same reconstruction to know which original
// vertex each minted one duplicates.
package edgebreaker

import "errors"

// Symbol is one of the six EdgeBreaker gate classifications, encoded
// as the values 0..5 below.
type Symbol uint8

const (
	SymbolC Symbol = 0 // Center: both non-gate edges continue into fresh faces.
	SymbolS Symbol = 1 // Split: resumes from a recorded topology-split gate.
	SymbolL Symbol = 2 // Left: only the right continuation is fresh.
	SymbolR Symbol = 3 // Right: only the left continuation is fresh.
	SymbolE Symbol = 4 // End: neither continuation is fresh, strip closes.
	SymbolH Symbol = 5 // Hole: nothing behind this gate (boundary or already visited); no face.
)

func (s Symbol) String() string {
	switch s {
	case SymbolC:
		return "C"
	case SymbolS:
		return "S"
	case SymbolL:
		return "L"
	case SymbolR:
		return "R"
	case SymbolE:
		return "E"
	case SymbolH:
		return "H"
	default:
		return "?"
	}
}

var (
	// ErrFirstSymbolNotC is returned when a decoded stream's first symbol is
	// not C.
	ErrFirstSymbolNotC = errors.New("edgebreaker: first symbol is not C")
	// ErrUnmatchedSplit is returned when the declared split-symbol count does
	// not match the number of decoded topology split events.
	ErrUnmatchedSplit = errors.New("edgebreaker: split symbol/event count mismatch")
	// ErrTraversalMismatch is returned when the decoded symbol stream does
	// not account for exactly num_faces faces, or the gate stack underflows.
	ErrTraversalMismatch = errors.New("edgebreaker: symbol/face count mismatch")
	// ErrDisconnectedMesh is returned by EncodeConnectivity when the corner
	// table has faces a traversal seeded at one face can never reach: more
	// than one connected component, or faces reachable only through the seed
	// face's own entry edge.
	ErrDisconnectedMesh = errors.New("edgebreaker: mesh faces not reachable from a single traversal")
)

// TopologySplitEvent records a gate handed from a source symbol (R/L/E) to a
// later S symbol, joining two otherwise-disjoint traversal strands.
// The encoder here never produces them (every dead gate is closed
// with H instead), but the decoder honors them for streams that do.
type TopologySplitEvent struct {
	SplitSymbolID  int
	SourceSymbolID int
	SourceEdge     SourceEdge
}

// SourceEdge selects which of the source symbol's two non-gate edges the
// split resumes from.
type SourceEdge uint8

const (
	SourceEdgeLeft  SourceEdge = 0
	SourceEdgeRight SourceEdge = 1
)
