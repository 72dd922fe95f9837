package prediction

import (
	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/numeric"
)

// NormalOctahedronCanonicalizedTransform implements the 2D octahedral-coord
// correction transform, operating on (s,t) pairs produced by
// transform.OctahedronTransform. It centers the coordinates, folds
// predictions that fall outside the diamond back in, rotates both
// prediction and original into a canonical quadrant, then takes a
// modular difference made non-negative for entropy coding.
type NormalOctahedronCanonicalizedTransform struct {
	maxQuantizedValue int32
	centerValue        int32
}

// NewNormalOctahedronCanonicalizedTransform returns an uninitialized
// transform; SetParams or DecodeParams must set MaxQuantizedValue/CenterValue
// before use.
func NewNormalOctahedronCanonicalizedTransform() *NormalOctahedronCanonicalizedTransform {
	return &NormalOctahedronCanonicalizedTransform{}
}

// SetParams lets the attribute encoder wire in the OctahedronTransform's
// parameters directly instead of relying on Init (which only sees
// already-quantized data, not the quantization bit depth).
func (t *NormalOctahedronCanonicalizedTransform) SetParams(maxQuantizedValue, centerValue int32) {
	t.maxQuantizedValue = maxQuantizedValue
	t.centerValue = centerValue
}

func (*NormalOctahedronCanonicalizedTransform) Init([][]int32, int) {}
func (*NormalOctahedronCanonicalizedTransform) CorrectionsPositive() bool { return true }

func (t *NormalOctahedronCanonicalizedTransform) EncodeParams(out *bitio.EncoderBuffer) {
	out.EncodeVarintSigned(int64(t.maxQuantizedValue))
	out.EncodeVarintSigned(int64(t.centerValue))
}

func (t *NormalOctahedronCanonicalizedTransform) DecodeParams(d *bitio.DecoderBuffer, _ int) error {
	mq, err := d.DecodeVarintSigned()
	if err != nil {
		return err
	}
	cv, err := d.DecodeVarintSigned()
	if err != nil {
		return err
	}
	t.maxQuantizedValue = int32(mq)
	t.centerValue = int32(cv)
	return nil
}

func abs32(v int32) int32 { return numeric.Abs(v) }

// sign32 treats zero as positive (unlike numeric.Sign's three-way sign); see
// transform.OctahedronTransform's sign32 for the same convention.
func sign32(v int32) int32 {
	if v < 0 {
		return -1
	}
	return 1
}

// isInDiamond reports whether a centered (s,t) lies within |s|+|t|<=center.
func (t *NormalOctahedronCanonicalizedTransform) isInDiamond(s, tt int32) bool {
	return abs32(s)+abs32(tt) <= t.centerValue
}

// invertDiamond folds a centered point outside the diamond back across the
// boundary (the closed-form octahedral unwrapping bijection). A zero
// coordinate takes the other coordinate's sign, so a canonical point folded
// onto an axis unfolds back onto its own side.
func (t *NormalOctahedronCanonicalizedTransform) invertDiamond(s, tt int32) (int32, int32) {
	sSign, tSign := sign32(s), sign32(tt)
	if s == 0 {
		sSign = tSign
	}
	if tt == 0 {
		tSign = sSign
	}
	newS := sSign * (t.centerValue - abs32(tt))
	newT := tSign * (t.centerValue - abs32(s))
	return newS, newT
}

// rotationFor returns how many 90-degree turns (0..3) bring a centered point
// into the bottom-left quadrant (s<=0, t<=0).
func rotationFor(s, tt int32) int {
	switch {
	case s <= 0 && tt <= 0:
		return 0
	case s > 0 && tt <= 0:
		return 1
	case s > 0 && tt > 0:
		return 2
	default:
		return 3
	}
}

// rotate90 rotates a centered point 90 degrees clockwise, n times.
func rotate90(s, tt int32, n int) (int32, int32) {
	for i := 0; i < n; i++ {
		s, tt = tt, -s
	}
	return s, tt
}

func (t *NormalOctahedronCanonicalizedTransform) canonicalizePair(origS, origT, predS, predT int32) (cOrigS, cOrigT, cPredS, cPredT int32) {
	cs, ct := predS-t.centerValue, predT-t.centerValue
	os, ot := origS-t.centerValue, origT-t.centerValue
	if !t.isInDiamond(cs, ct) {
		cs, ct = t.invertDiamond(cs, ct)
		os, ot = t.invertDiamond(os, ot)
	}
	n := rotationFor(cs, ct)
	cs, ct = rotate90(cs, ct, n)
	os, ot = rotate90(os, ot, n)
	return os, ot, cs, ct
}

func (t *NormalOctahedronCanonicalizedTransform) modMax(v int32) int32 {
	m := t.maxQuantizedValue + 1
	v = v % m
	if v < 0 {
		v += m
	}
	if v > m/2 {
		v -= m
	}
	return v
}

func (t *NormalOctahedronCanonicalizedTransform) makePositive(v int32) int32 {
	if v < 0 {
		return v + t.maxQuantizedValue + 1
	}
	return v
}

// ComputeCorrection expects orig/pred as 2-component (s,t) pairs. The coded
// correction is mod_max(orig - pred) in the canonicalized frame, made
// non-negative for entropy coding.
func (t *NormalOctahedronCanonicalizedTransform) ComputeCorrection(orig, pred, out []int32) {
	os, ot, cs, ct := t.canonicalizePair(orig[0], orig[1], pred[0], pred[1])
	out[0] = t.makePositive(t.modMax(os - cs))
	out[1] = t.makePositive(t.modMax(ot - ct))
}

// ComputeOriginal is the inverse of ComputeCorrection.
func (t *NormalOctahedronCanonicalizedTransform) ComputeOriginal(pred, corr, out []int32) {
	cs, ct := pred[0]-t.centerValue, pred[1]-t.centerValue
	inverted := false
	if !t.isInDiamond(cs, ct) {
		cs, ct = t.invertDiamond(cs, ct)
		inverted = true
	}
	n := rotationFor(cs, ct)
	rs, rt := rotate90(cs, ct, n)

	// Both canonicalized coordinates are bounded by centerValue, so folding
	// pred+correction through modMax recovers the canonicalized original
	// exactly.
	os := t.modMax(t.unmakePositive(corr[0]) + rs)
	ot := t.modMax(t.unmakePositive(corr[1]) + rt)

	// Undo rotation, then undo the diamond inversion if it was applied.
	os, ot = rotate90Inverse(os, ot, n)
	if inverted {
		os, ot = t.invertDiamond(os, ot)
	}
	out[0] = os + t.centerValue
	out[1] = ot + t.centerValue
}

func (t *NormalOctahedronCanonicalizedTransform) unmakePositive(v int32) int32 {
	half := (t.maxQuantizedValue + 1) / 2
	if v > half {
		return v - (t.maxQuantizedValue + 1)
	}
	return v
}

func rotate90Inverse(s, tt int32, n int) (int32, int32) {
	for i := 0; i < n; i++ {
		s, tt = -tt, s
	}
	return s, tt
}
