package prediction

import "github.com/cocosip/go-mesh-codec/bitio"

// DeltaTransform implements the plain difference transform:
// corr = orig - pred, the first entry predicted against zero.
type DeltaTransform struct{}

// NewDeltaTransform returns a stateless Delta transform.
func NewDeltaTransform() *DeltaTransform { return &DeltaTransform{} }

func (*DeltaTransform) Init([][]int32, int)          {}
func (*DeltaTransform) CorrectionsPositive() bool    { return false }
func (*DeltaTransform) EncodeParams(*bitio.EncoderBuffer) {}
func (*DeltaTransform) DecodeParams(*bitio.DecoderBuffer, int) error { return nil }

func (*DeltaTransform) ComputeCorrection(orig, pred, out []int32) {
	for i := range out {
		out[i] = orig[i] - pred[i]
	}
}

func (*DeltaTransform) ComputeOriginal(pred, corr, out []int32) {
	for i := range out {
		out[i] = pred[i] + corr[i]
	}
}
