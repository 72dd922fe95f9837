package prediction

import (
	"github.com/cocosip/go-mesh-codec/ans"
	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
)

// MeshContext is the corner-table wiring a mesh-aware predictor needs: the
// topology itself, a map from each attribute data entry to one of its
// corners, and the inverse map from corner to data entry. order is the
// sequence of data-entry indices in traversal/processing order (normally
// the vertex decode order the connectivity codec produces).
type MeshContext struct {
	Table        *geom.CornerTable
	DataToCorner []geom.CornerIndex
	CornerToData []int
	Order        []int
}

// parallelogramPredict returns the parallelogram prediction for the data
// entry at corner c (B+C-D using the opposite face's third vertex),
// provided all three neighbor data entries have already been processed
// (marked in processed); otherwise it reports ok=false so the
// caller can fall back to Delta.
func parallelogramPredict(ctx *MeshContext, data [][]int32, processed []bool, c geom.CornerIndex) (pred []int32, ok bool) {
	ct := ctx.Table
	opp := ct.Opposite(c)
	if opp == geom.InvalidCorner {
		return nil, false
	}
	nextCorner := ct.Next(c)
	prevCorner := ct.Previous(c)
	nextData := ctx.CornerToData[nextCorner]
	prevData := ctx.CornerToData[prevCorner]
	oppData := ctx.CornerToData[opp]
	if !processed[nextData] || !processed[prevData] || !processed[oppData] {
		return nil, false
	}
	n := len(data[nextData])
	pred = make([]int32, n)
	for i := 0; i < n; i++ {
		pred[i] = data[nextData][i] + data[prevData][i] - data[oppData][i]
	}
	return pred, true
}

// EncodeParallelogram implements the Parallelogram method: for each
// entry in reverse traversal order, predict via parallelogramPredict,
// falling back to the previous entry (Delta) when the neighbor faces are
// unavailable, zigzag-code the resulting corrections.
func EncodeParallelogram(out *bitio.EncoderBuffer, version bitio.Version, data [][]int32, ctx *MeshContext) error {
	numComponents := 0
	if len(data) > 0 {
		numComponents = len(data[0])
	}
	n := len(ctx.Order)
	// Mirror the decoder's knowledge: when entry i is predicted, only entries
	// at earlier traversal positions have been decoded. Walking the order in
	// reverse, retracting each entry before predicting it leaves exactly the
	// earlier positions marked.
	processed := make([]bool, len(data))
	for _, idx := range ctx.Order {
		processed[idx] = true
	}
	corrections := make([][]int32, n)
	zero := make([]int32, numComponents)
	for i := n - 1; i >= 0; i-- {
		idx := ctx.Order[i]
		processed[idx] = false
		c := ctx.DataToCorner[idx]
		pred, ok := parallelogramPredict(ctx, data, processed, c)
		if !ok {
			if i == 0 {
				pred = zero
			} else {
				pred = data[ctx.Order[i-1]]
			}
		}
		corr := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			corr[k] = data[idx][k] - pred[k]
		}
		corrections[i] = corr
	}
	flat := make([]uint32, 0, n*numComponents)
	for _, corr := range corrections {
		for _, v := range corr {
			flat = append(flat, bitio.ZigzagEncode32(v))
		}
	}
	return ans.EncodeSymbols(out, version, flat, numComponents)
}

// DecodeParallelogram is the inverse of EncodeParallelogram.
func DecodeParallelogram(d *bitio.DecoderBuffer, numComponents int, ctx *MeshContext) ([][]int32, error) {
	n := len(ctx.Order)
	flat, err := ans.DecodeSymbols(d, n*numComponents)
	if err != nil {
		return nil, err
	}
	maxIdx := 0
	for _, idx := range ctx.Order {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	data := make([][]int32, maxIdx+1)
	processed := make([]bool, maxIdx+1)
	zero := make([]int32, numComponents)
	for i, idx := range ctx.Order {
		corr := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			corr[k] = bitio.ZigzagDecode32(flat[i*numComponents+k])
		}
		c := ctx.DataToCorner[idx]
		pred, ok := parallelogramPredict(ctx, data, processed, c)
		if !ok {
			if i == 0 {
				pred = zero
			} else {
				pred = data[ctx.Order[i-1]]
			}
		}
		val := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			val[k] = pred[k] + corr[k]
		}
		data[idx] = val
		processed[idx] = true
	}
	return data, nil
}

// candidateCorners returns the corners of every face incident to the
// vertex that owns corner c, excluding c's own face, for use by
// ConstrainedMultiParallelogram's multi-candidate search.
func candidateCorners(ct *geom.CornerTable, c geom.CornerIndex) []geom.CornerIndex {
	v := ct.Vertex(c)
	var out []geom.CornerIndex
	for _, ring := range ct.VertexRing(v) {
		if ring != c {
			out = append(out, ring)
		}
	}
	return out
}

// EncodeConstrainedMultiParallelogram implements the multi-candidate
// scheme: for each entry, every incident already-processed face contributes
// a parallelogram candidate; a crease bit per candidate records whether it
// was folded into the averaged prediction, chosen greedily to minimize the
// L1 residual against the original value. Crease bits are packed with
// ans.RAnsBitEncoder.
func EncodeConstrainedMultiParallelogram(out *bitio.EncoderBuffer, version bitio.Version, data [][]int32, ctx *MeshContext) error {
	numComponents := 0
	if len(data) > 0 {
		numComponents = len(data[0])
	}
	n := len(ctx.Order)
	processed := make([]bool, len(data))
	for _, idx := range ctx.Order {
		processed[idx] = true
	}
	corrections := make([][]int32, n)
	// Crease bits are collected per entry and flushed in forward traversal
	// order after the reverse pass, since the decoder consumes them forward.
	entryBits := make([][]bool, n)
	zero := make([]int32, numComponents)

	for i := n - 1; i >= 0; i-- {
		idx := ctx.Order[i]
		processed[idx] = false
		c := ctx.DataToCorner[idx]
		candidates := candidateCorners(ctx.Table, c)
		var included [][]int32
		var includeFlags []bool
		for _, cand := range candidates {
			pred, ok := parallelogramPredict(ctx, data, processed, cand)
			includeFlags = append(includeFlags, false)
			if !ok {
				continue
			}
			// Greedy inclusion: include a candidate only if it does not
			// increase the summed L1 residual against the original value.
			l1 := 0
			for k := 0; k < numComponents; k++ {
				d := data[idx][k] - pred[k]
				if d < 0 {
					d = -d
				}
				l1 += int(d)
			}
			avgL1 := 0
			if len(included) > 0 {
				avg := averageVectors(included, numComponents)
				for k := 0; k < numComponents; k++ {
					d := data[idx][k] - avg[k]
					if d < 0 {
						d = -d
					}
					avgL1 += int(d)
				}
			} else {
				avgL1 = l1 + 1 // force first valid candidate in
			}
			if l1 <= avgL1 {
				included = append(included, pred)
				includeFlags[len(includeFlags)-1] = true
			}
		}
		entryBits[i] = includeFlags
		var pred []int32
		if len(included) > 0 {
			pred = averageVectors(included, numComponents)
		} else if i > 0 {
			pred = data[ctx.Order[i-1]]
		} else {
			pred = zero
		}
		corr := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			corr[k] = data[idx][k] - pred[k]
		}
		corrections[i] = corr
	}

	creaseBits := ans.NewRAnsBitEncoder()
	for _, bits := range entryBits {
		for _, f := range bits {
			creaseBits.EncodeBit(f)
		}
	}
	flat := make([]uint32, 0, n*numComponents)
	for _, corr := range corrections {
		for _, v := range corr {
			flat = append(flat, bitio.ZigzagEncode32(v))
		}
	}
	if err := creaseBits.EndEncoding(out); err != nil {
		return err
	}
	return ans.EncodeSymbols(out, version, flat, numComponents)
}

// DecodeConstrainedMultiParallelogram is the inverse of
// EncodeConstrainedMultiParallelogram.
func DecodeConstrainedMultiParallelogram(d *bitio.DecoderBuffer, numComponents int, ctx *MeshContext) ([][]int32, error) {
	creaseDec, err := ans.NewRAnsBitDecoder(d)
	if err != nil {
		return nil, err
	}
	n := len(ctx.Order)
	flat, err := ans.DecodeSymbols(d, n*numComponents)
	if err != nil {
		return nil, err
	}
	maxIdx := 0
	for _, idx := range ctx.Order {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	data := make([][]int32, maxIdx+1)
	processed := make([]bool, maxIdx+1)
	zero := make([]int32, numComponents)

	for i, idx := range ctx.Order {
		c := ctx.DataToCorner[idx]
		candidates := candidateCorners(ctx.Table, c)
		var included [][]int32
		for _, cand := range candidates {
			bit, err := creaseDec.DecodeNextBit()
			if err != nil {
				return nil, err
			}
			if !bit {
				continue
			}
			pred, ok := parallelogramPredict(ctx, data, processed, cand)
			if ok {
				included = append(included, pred)
			}
		}
		var pred []int32
		if len(included) > 0 {
			pred = averageVectors(included, numComponents)
		} else if i > 0 {
			pred = data[ctx.Order[i-1]]
		} else {
			pred = zero
		}
		corr := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			corr[k] = bitio.ZigzagDecode32(flat[i*numComponents+k])
		}
		val := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			val[k] = pred[k] + corr[k]
		}
		data[idx] = val
		processed[idx] = true
	}
	return data, nil
}

func averageVectors(vs [][]int32, numComponents int) []int32 {
	out := make([]int32, numComponents)
	if len(vs) == 0 {
		return out
	}
	sums := make([]int64, numComponents)
	for _, v := range vs {
		for k := 0; k < numComponents; k++ {
			sums[k] += int64(v[k])
		}
	}
	for k := 0; k < numComponents; k++ {
		out[k] = int32(sums[k] / int64(len(vs)))
	}
	return out
}
