package edgebreaker

import "github.com/cocosip/go-mesh-codec/geom"

// validateTopology checks, via a face-adjacency flood fill over the corner
// table's opposite pointers, that every face is reachable from face 0. The
// traversal in EncodeConnectivity grows a single region from one seed face,
// so a second connected component could never be visited and would silently
// drop out of the stream; rejecting it here surfaces the problem at encode
// time instead of as a face-count mismatch during decode.
func validateTopology(ct *geom.CornerTable) error {
	numFaces := ct.NumFaces()
	if numFaces == 0 {
		return nil
	}

	visited := make([]bool, numFaces)
	queue := make([]geom.FaceIndex, 0, numFaces)
	queue = append(queue, 0)
	visited[0] = true
	visitedCount := 0

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		visitedCount++
		for slot := 0; slot < 3; slot++ {
			c := geom.CornerIndex(int32(f)*3 + int32(slot))
			opp := ct.Opposite(c)
			if opp == geom.InvalidCorner {
				continue
			}
			nf := ct.Face(opp)
			if !visited[nf] {
				visited[nf] = true
				queue = append(queue, nf)
			}
		}
	}

	if visitedCount != numFaces {
		return ErrDisconnectedMesh
	}
	return nil
}
