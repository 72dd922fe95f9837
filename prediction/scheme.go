// Package prediction implements the prediction transforms and prediction
// schemes: closed sum types for method and transform, a
// sequence-based encoder/decoder pair for source+transform combinations,
// and the corner-table-driven mesh predictors built on top of them.
package prediction

import (
	"errors"

	"github.com/cocosip/go-mesh-codec/ans"
	"github.com/cocosip/go-mesh-codec/bitio"
)

// Method is the prediction-scheme method enum, serialized as i8. The
// numbering matches the historical wire values this bitstream inherited;
// MethodMultiParallelogram is reserved: a conforming encoder must never
// emit it.
type Method int8

const (
	MethodNone                       Method = -1
	MethodDifference                 Method = 0
	MethodParallelogram              Method = 1
	MethodMultiParallelogram         Method = 2 // reserved, never emitted
	MethodConstrainedMultiParallelogram Method = 3
	MethodTexCoordsDeprecated        Method = 4
	MethodGeometricNormal            Method = 5
	MethodTexCoordsPortable          Method = 6
)

// TransformType is the prediction-transform enum, serialized as i8.
type TransformType int8

const (
	TransformNone                           TransformType = -1
	TransformDelta                          TransformType = 0
	TransformWrap                           TransformType = 1
	TransformNormalOctahedron               TransformType = 2
	TransformNormalOctahedronCanonicalized  TransformType = 3
)

var (
	// ErrReservedMethod is returned when a decoder encounters
	// MethodMultiParallelogram.
	ErrReservedMethod = errors.New("prediction: MultiParallelogram method is reserved")
	// ErrUnknownMethod/ErrUnknownTransform guard the factory lookups.
	ErrUnknownMethod    = errors.New("prediction: unknown method")
	ErrUnknownTransform = errors.New("prediction: unknown transform type")
)

// Transform is the per-component correction transform paired with a
// prediction source by a PredictionScheme.
type Transform interface {
	// Init is called once before the first ComputeCorrection/ComputeOriginal
	// with the full original/portable data, its entry count and component
	// count, so transforms like Wrap can precompute global parameters.
	Init(data [][]int32, numComponents int)
	// CorrectionsPositive reports whether corrections are always
	// non-negative, letting the caller skip zigzag mapping.
	CorrectionsPositive() bool
	// ComputeCorrection writes corr = f(orig, pred) componentwise.
	ComputeCorrection(orig, pred, out []int32)
	// ComputeOriginal writes orig = f^-1(pred, corr) componentwise.
	ComputeOriginal(pred, corr, out []int32)
	// EncodeParams/DecodeParams (de)serialize any transform parameters
	// computed during Init (e.g. Wrap's per-component min/max).
	EncodeParams(out *bitio.EncoderBuffer)
	DecodeParams(d *bitio.DecoderBuffer, numComponents int) error
}

// NewTransform is the factory for a TransformType: a table-driven switch
// over the closed enum, simpler than a class hierarchy here.
func NewTransform(t TransformType) (Transform, error) {
	switch t {
	case TransformDelta:
		return NewDeltaTransform(), nil
	case TransformWrap:
		return NewWrapTransform(), nil
	case TransformNormalOctahedronCanonicalized:
		return NewNormalOctahedronCanonicalizedTransform(), nil
	default:
		return nil, ErrUnknownTransform
	}
}

// EncodeSequence implements the encoder-side pass: for each entry in
// reverse traversal order, predict from already-encoded neighbors (the
// previous entry in `order`, or the zero vector for the first), compute the
// correction, then entropy-code the correction stream via the symbol
// dispatcher. Corrections are zigzag-mapped unless the transform declares
// CorrectionsPositive.
func EncodeSequence(out *bitio.EncoderBuffer, version bitio.Version, data [][]int32, order []int, transform Transform) error {
	numComponents := 0
	if len(data) > 0 {
		numComponents = len(data[0])
	}
	transform.Init(data, numComponents)

	n := len(order)
	corrections := make([][]int32, n)
	zero := make([]int32, numComponents)
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		var pred []int32
		if i == 0 {
			pred = zero
		} else {
			pred = data[order[i-1]]
		}
		corr := make([]int32, numComponents)
		transform.ComputeCorrection(data[idx], pred, corr)
		corrections[i] = corr
	}

	flat := make([]uint32, 0, n*numComponents)
	positive := transform.CorrectionsPositive()
	for _, corr := range corrections {
		for c := 0; c < numComponents; c++ {
			if positive {
				flat = append(flat, uint32(corr[c]))
			} else {
				flat = append(flat, bitio.ZigzagEncode32(corr[c]))
			}
		}
	}
	transform.EncodeParams(out)
	return ans.EncodeSymbols(out, version, flat, numComponents)
}

// DecodeSequence is the inverse of EncodeSequence: forward traversal order,
// reconstructing each entry from the previous decoded one.
func DecodeSequence(d *bitio.DecoderBuffer, order []int, numComponents int, transform Transform) ([][]int32, error) {
	if err := transform.DecodeParams(d, numComponents); err != nil {
		return nil, err
	}
	n := len(order)
	flat, err := ans.DecodeSymbols(d, n*numComponents)
	if err != nil {
		return nil, err
	}
	positive := transform.CorrectionsPositive()
	maxIdx := 0
	for _, idx := range order {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	data := make([][]int32, maxIdx+1)
	zero := make([]int32, numComponents)
	for i, idx := range order {
		corr := make([]int32, numComponents)
		for c := 0; c < numComponents; c++ {
			v := flat[i*numComponents+c]
			if positive {
				corr[c] = int32(v)
			} else {
				corr[c] = bitio.ZigzagDecode32(v)
			}
		}
		var pred []int32
		if i == 0 {
			pred = zero
		} else {
			pred = data[order[i-1]]
		}
		val := make([]int32, numComponents)
		transform.ComputeOriginal(pred, corr, val)
		data[idx] = val
	}
	return data, nil
}
