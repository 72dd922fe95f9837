package prediction

import (
	"github.com/cocosip/go-mesh-codec/ans"
	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
)

// TexCoordsContext extends MeshContext with the parent (already-decoded)
// integer position attribute TexCoordsPortable projects against.
type TexCoordsContext struct {
	*MeshContext
	Positions [][]int32 // one 3-component entry per data index, parent attribute space
}

// texNeighbors returns the data indices at c's next and previous corners
// (the other two vertices of c's face), in that order, keeping only those
// already processed, so it may return fewer than two.
func texNeighbors(ctx *MeshContext, processed []bool, c geom.CornerIndex) []int {
	ct := ctx.Table
	var out []int
	for _, cand := range []geom.CornerIndex{ct.Next(c), ct.Previous(c)} {
		d := ctx.CornerToData[cand]
		if processed[d] {
			out = append(out, d)
		}
	}
	return out
}

// predictTexCoord implements the portable tex-coord projection: given two
// known neighbor (position,uv) pairs and the current position, it
// parameterizes the current position along the segment between the
// neighbors and predicts the UV the same way, recording which side of the
// segment (orientation) the true point falls on.
func predictTexCoord(pn, pp [3]int32, un, up [2]int32, pc [3]int32) (predU, predV int32, orientation bool) {
	// pp - pn (edge vector), pc - pn (to-current vector), in float64 to
	// avoid exact rational arithmetic; float64 keeps ample headroom at the
	// quantization depths the selection policy admits for this method.
	ex, ey, ez := float64(pp[0]-pn[0]), float64(pp[1]-pn[1]), float64(pp[2]-pn[2])
	cx, cy, cz := float64(pc[0]-pn[0]), float64(pc[1]-pn[1]), float64(pc[2]-pn[2])
	elen2 := ex*ex + ey*ey + ez*ez
	if elen2 < 1e-9 {
		return un[0], un[1], false
	}
	s := (cx*ex + cy*ey + cz*ez) / elen2
	// Perpendicular component magnitude (height above the edge), used only
	// for its sign via the orientation bit; magnitude folds into the UV
	// tangent-space basis below.
	px, py, pz := cx-s*ex, cy-s*ey, cz-s*ez
	h := sqrt64(px*px + py*py + pz*pz)

	ux, uy := float64(up[0]-un[0]), float64(up[1]-un[1])
	// A 2D vector orthogonal to (ux,uy), scaled to the same relative length
	// as the 3D perpendicular component had to the edge length.
	orthoX, orthoY := -uy, ux
	elen := sqrt64(elen2)
	orthoLen := sqrt64(orthoX*orthoX + orthoY*orthoY)
	var scale float64
	if orthoLen > 1e-9 {
		scale = (h / elen)
	}
	var hx, hy float64
	if orthoLen > 1e-9 {
		hx = orthoX / orthoLen * scale * orthoLen
		hy = orthoY / orthoLen * scale * orthoLen
	}
	orientation = pz >= 0 || (pz == 0 && py >= 0)
	if !orientation {
		hx, hy = -hx, -hy
	}
	predU = un[0] + int32(round64(s*ux+hx))
	predV = un[1] + int32(round64(s*uy+hy))
	return predU, predV, orientation
}

func sqrt64(v float64) float64 {
	if v <= 0 {
		return 0
	}
	// Newton's method avoids importing math solely for Sqrt in this
	// file; kept local since this transform otherwise only uses +-*/.
	x := v
	for i := 0; i < 40; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

func round64(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

// EncodeTexCoordsPortable implements the TexCoordsPortable method: it
// requires a parent position attribute, and falls back to Delta
// (predicting the previous entry) whenever fewer than two processed
// neighbors are available for a data point.
func EncodeTexCoordsPortable(out *bitio.EncoderBuffer, version bitio.Version, data [][]int32, ctx *TexCoordsContext) error {
	numComponents := 2
	n := len(ctx.Order)
	processed := make([]bool, len(data))
	for _, idx := range ctx.Order {
		processed[idx] = true
	}
	corrections := make([][]int32, n)
	// One orientation bit per projected entry, collected during the reverse
	// pass and flushed in forward order below (the decoder reads forward).
	orient := make([]*bool, n)
	zero := make([]int32, numComponents)

	for i := n - 1; i >= 0; i-- {
		idx := ctx.Order[i]
		processed[idx] = false
		c := ctx.DataToCorner[idx]
		neighbors := texNeighbors(ctx.MeshContext, processed, c)
		var pred []int32
		if len(neighbors) >= 2 {
			nd, pd := neighbors[0], neighbors[1]
			var pn, pp, pcv [3]int32
			copy(pn[:], ctx.Positions[nd])
			copy(pp[:], ctx.Positions[pd])
			copy(pcv[:], ctx.Positions[idx])
			var un, up [2]int32
			copy(un[:], data[nd])
			copy(up[:], data[pd])
			u, v, o := predictTexCoord(pn, pp, un, up, pcv)
			orient[i] = &o
			pred = []int32{u, v}
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

	orientBits := ans.NewRAnsBitEncoder()
	for _, o := range orient {
		if o != nil {
			orientBits.EncodeBit(*o)
		}
	}
	flat := make([]uint32, 0, n*numComponents)
	for _, corr := range corrections {
		for _, v := range corr {
			flat = append(flat, bitio.ZigzagEncode32(v))
		}
	}
	if err := orientBits.EndEncoding(out); err != nil {
		return err
	}
	return ans.EncodeSymbols(out, version, flat, numComponents)
}

// DecodeTexCoordsPortable is the inverse of EncodeTexCoordsPortable.
func DecodeTexCoordsPortable(d *bitio.DecoderBuffer, ctx *TexCoordsContext) ([][]int32, error) {
	numComponents := 2
	orientDec, err := ans.NewRAnsBitDecoder(d)
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
		neighbors := texNeighbors(ctx.MeshContext, processed, c)
		var pred []int32
		if len(neighbors) >= 2 {
			nd, pd := neighbors[0], neighbors[1]
			var pn, pp, pcv [3]int32
			copy(pn[:], ctx.Positions[nd])
			copy(pp[:], ctx.Positions[pd])
			copy(pcv[:], ctx.Positions[idx])
			var un, up [2]int32
			copy(un[:], data[nd])
			copy(up[:], data[pd])
			orient, err := orientDec.DecodeNextBit()
			if err != nil {
				return nil, err
			}
			u, v := predictTexCoordKnownOrientation(pn, pp, un, up, pcv, orient)
			pred = []int32{u, v}
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

// predictTexCoordKnownOrientation mirrors predictTexCoord's math but takes
// the orientation bit the encoder recorded instead of recomputing it from
// (unavailable, not-yet-decoded) data.
func predictTexCoordKnownOrientation(pn, pp [3]int32, un, up [2]int32, pc [3]int32, orientation bool) (predU, predV int32) {
	ex, ey, ez := float64(pp[0]-pn[0]), float64(pp[1]-pn[1]), float64(pp[2]-pn[2])
	cx, cy, cz := float64(pc[0]-pn[0]), float64(pc[1]-pn[1]), float64(pc[2]-pn[2])
	elen2 := ex*ex + ey*ey + ez*ez
	if elen2 < 1e-9 {
		return un[0], un[1]
	}
	s := (cx*ex + cy*ey + cz*ez) / elen2
	px, py, pz := cx-s*ex, cy-s*ey, cz-s*ez
	h := sqrt64(px*px + py*py + pz*pz)

	ux, uy := float64(up[0]-un[0]), float64(up[1]-un[1])
	orthoX, orthoY := -uy, ux
	elen := sqrt64(elen2)
	orthoLen := sqrt64(orthoX*orthoX + orthoY*orthoY)
	var scale float64
	if orthoLen > 1e-9 {
		scale = h / elen
	}
	var hx, hy float64
	if orthoLen > 1e-9 {
		hx = orthoX / orthoLen * scale * orthoLen
		hy = orthoY / orthoLen * scale * orthoLen
	}
	if !orientation {
		hx, hy = -hx, -hy
	}
	predU = un[0] + int32(round64(s*ux+hx))
	predV = un[1] + int32(round64(s*uy+hy))
	return predU, predV
}
