package edgebreaker

import (
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/prediction"
)

// BuildDecodeContext rebuilds a CornerTable for a reconstructed face list
// and wires a matching prediction.MeshContext. DecodeConnectivity mints
// vertices in entry order already, so vertex index and data index coincide.
// The encoder calls this on EncodeResult.DecodedFaces and the decoder on
// DecodeResult.Faces — the same input by construction, so the two sides'
// predictors see identical connectivity.
func BuildDecodeContext(faces []geom.Face, numVertices int) (*geom.CornerTable, *prediction.MeshContext) {
	ct := geom.NewCornerTableFromFaces(faces, numVertices)
	numCorners := ct.NumFaces() * 3
	cornerToData := make([]int, numCorners)
	dataToCorner := make([]geom.CornerIndex, numVertices)
	seen := make([]bool, numVertices)
	for c := 0; c < numCorners; c++ {
		v := ct.Vertex(geom.CornerIndex(c))
		cornerToData[c] = int(v)
		if !seen[v] {
			seen[v] = true
			dataToCorner[v] = geom.CornerIndex(c)
		}
	}
	order := make([]int, numVertices)
	for i := range order {
		order[i] = i
	}
	return ct, &prediction.MeshContext{
		Table:        ct,
		DataToCorner: dataToCorner,
		CornerToData: cornerToData,
		Order:        order,
	}
}
