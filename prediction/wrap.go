package prediction

import "github.com/cocosip/go-mesh-codec/bitio"

// WrapTransform implements the modular-wraparound transform: it
// records the observed (min,max) per component during Init, clamps the
// prediction into that range before differencing, and folds the result
// modulo (max-min+1) into (-half_range, +half_range].
type WrapTransform struct {
	min, max []int32
	maxDif   []int32
}

// NewWrapTransform returns an uninitialized Wrap transform; call Init
// before use.
func NewWrapTransform() *WrapTransform { return &WrapTransform{} }

func (w *WrapTransform) Init(data [][]int32, numComponents int) {
	w.min = make([]int32, numComponents)
	w.max = make([]int32, numComponents)
	w.maxDif = make([]int32, numComponents)
	for c := 0; c < numComponents; c++ {
		mn, mx := int32(0), int32(0)
		if len(data) > 0 {
			mn, mx = data[0][c], data[0][c]
		}
		for _, entry := range data {
			if entry[c] < mn {
				mn = entry[c]
			}
			if entry[c] > mx {
				mx = entry[c]
			}
		}
		w.min[c] = mn
		w.max[c] = mx
		w.maxDif[c] = mx - mn + 1
	}
}

func (*WrapTransform) CorrectionsPositive() bool { return false }

func (w *WrapTransform) EncodeParams(out *bitio.EncoderBuffer) {
	out.EncodeVarint(uint64(len(w.min)))
	for i := range w.min {
		out.EncodeVarintSigned(int64(w.min[i]))
		out.EncodeVarintSigned(int64(w.max[i]))
	}
}

func (w *WrapTransform) DecodeParams(d *bitio.DecoderBuffer, numComponents int) error {
	n, err := d.DecodeVarint()
	if err != nil {
		return err
	}
	w.min = make([]int32, n)
	w.max = make([]int32, n)
	w.maxDif = make([]int32, n)
	for i := range w.min {
		mn, err := d.DecodeVarintSigned()
		if err != nil {
			return err
		}
		mx, err := d.DecodeVarintSigned()
		if err != nil {
			return err
		}
		w.min[i] = int32(mn)
		w.max[i] = int32(mx)
		w.maxDif[i] = int32(mx) - int32(mn) + 1
	}
	return nil
}

func (w *WrapTransform) clamp(c int, v int32) int32 {
	if v < w.min[c] {
		return w.min[c]
	}
	if v > w.max[c] {
		return w.max[c]
	}
	return v
}

func (w *WrapTransform) ComputeCorrection(orig, pred, out []int32) {
	for c := range out {
		p := w.clamp(c, pred[c])
		diff := orig[c] - p
		out[c] = foldModular(diff, w.maxDif[c])
	}
}

func (w *WrapTransform) ComputeOriginal(pred, corr, out []int32) {
	for c := range out {
		p := w.clamp(c, pred[c])
		v := p + corr[c]
		md := w.maxDif[c]
		for v > w.max[c] {
			v -= md
		}
		for v < w.min[c] {
			v += md
		}
		out[c] = v
	}
}

// foldModular reduces diff modulo maxDif into (-maxDif/2, maxDif/2], ties
// broken towards +half.
func foldModular(diff, maxDif int32) int32 {
	if maxDif <= 0 {
		return diff
	}
	half := maxDif / 2
	m := diff % maxDif
	if m < 0 {
		m += maxDif
	}
	// m is now in [0, maxDif); shift into (-half, half].
	if m > half {
		m -= maxDif
	}
	return m
}
