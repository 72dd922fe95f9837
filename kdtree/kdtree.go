// Package kdtree implements the dimensionally-adaptive integer
// KD-tree codec used for point clouds: points are recursively partitioned
// at the geometric midpoint of whichever axis currently holds the widest
// remaining integer range, leaves are flushed as residual bits (per-bit
// rANS streams for leaves of at most FoldedLeafMax points, direct bits for
// larger ones), and
// each split records how many points fell on the low side as a single
// rANS-coded symbol so the decoder can rebalance its own partition without
// touching point coordinates directly.
package kdtree

import (
	"errors"

	"github.com/cocosip/go-mesh-codec/ans"
	"github.com/cocosip/go-mesh-codec/bitio"
)

var (
	ErrDimensionMismatch = errors.New("kdtree: point dimension mismatch")
	// ErrMalformedSplit is returned when a decoded split count exceeds the
	// subtree's point count.
	ErrMalformedSplit = errors.New("kdtree: split count exceeds subtree size")
	// ErrTooManyPoints is returned when a stream declares a point total whose
	// storage would exceed the allocation limit.
	ErrTooManyPoints = errors.New("kdtree: declared point count exceeds decoder limit")
)

// leafThreshold maps compression_level (0..6) to the maximum leaf size the
// recursion stops subdividing at. Higher levels stop at smaller leaves,
// giving deeper trees with more split symbols and fewer points per leaf.
var leafThreshold = [7]int{16, 14, 12, 10, 8, 6, 4}

// FoldedLeafMax is the point count at or below which a leaf's residual bits
// are coded with ans.FoldedBit32Encoder instead of bitio.DirectBitEncoder
// (small leaves benefit from the per-bit-position
// probability model, larger ones amortize better with a flat direct code).
const FoldedLeafMax = 8

// CompressionLevel maps the public encoding_speed dial onto the internal
// level as clamp(10-encoding_speed, 0, 6), with the special case that a
// point with more than 15 components forces level 6 down to 5 (an
// all-folded level 6 tree would otherwise spend an excessive number of
// per-bit-position rANS encoders on wide attribute packings).
func CompressionLevel(encodingSpeed, numComponents int) int {
	level := 10 - encodingSpeed
	if level < 0 {
		level = 0
	}
	if level > 6 {
		level = 6
	}
	if level == 6 && numComponents > 15 {
		level = 5
	}
	return level
}

type bounds struct {
	min, max []uint32
}

func (b bounds) widestAxis() (axis int, width int) {
	width = -1
	for i, mn := range b.min {
		w := bitWidth(b.max[i] - mn)
		if w > width {
			width = w
			axis = i
		}
	}
	return axis, width
}

func bitWidth(v uint32) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// midpoint returns the split point for the interval [min, max], strictly
// above min whenever max > min so both children shrink and the recursion
// always terminates, with no overflow even when the interval spans the full
// uint32 range. Encoder and decoder must agree on this exactly.
func midpoint(min, max uint32) uint32 {
	return min + (max-min)/2 + 1
}

// Encode writes the KD-tree compressed form of points, each a D-component
// unsigned integer vector (callers pack signed/float attributes into this
// representation before calling in). The per-component bounding
// box is written to the header so the decoder can replicate the exact same
// sequence of axis/midpoint choices the encoder made.
func Encode(out *bitio.EncoderBuffer, version bitio.Version, points [][]uint32, numComponents int, encodingSpeed int) error {
	level := CompressionLevel(encodingSpeed, numComponents)
	out.EncodeU8(uint8(level))
	out.EncodeVarint(uint64(len(points)))
	out.EncodeVarint(uint64(numComponents))

	b := bounds{min: make([]uint32, numComponents), max: make([]uint32, numComponents)}
	for c := 0; c < numComponents; c++ {
		b.min[c] = ^uint32(0)
	}
	for _, p := range points {
		if len(p) != numComponents {
			return ErrDimensionMismatch
		}
		for c, v := range p {
			if v < b.min[c] {
				b.min[c] = v
			}
			if v > b.max[c] {
				b.max[c] = v
			}
		}
	}
	if len(points) == 0 {
		for c := range b.min {
			b.min[c] = 0
		}
	}
	for c := 0; c < numComponents; c++ {
		out.EncodeVarint(uint64(b.min[c]))
		out.EncodeVarint(uint64(b.max[c]))
	}

	enc := &encoder{out: out, version: version, threshold: leafThreshold[level]}
	return enc.node(points, b)
}

type encoder struct {
	out       *bitio.EncoderBuffer
	version   bitio.Version
	threshold int
}

func (e *encoder) node(points [][]uint32, b bounds) error {
	axis, width := b.widestAxis()
	if len(points) <= e.threshold || width == 0 {
		// width == 0 means every remaining point is identical on every
		// axis: no split can separate them, so force a leaf regardless of
		// count to avoid recursing forever on a zero-width partition.
		return e.leaf(points, b)
	}
	mid := midpoint(b.min[axis], b.max[axis])

	left := make([][]uint32, 0, len(points))
	right := make([][]uint32, 0, len(points))
	for _, p := range points {
		if p[axis] < mid {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	if err := ans.EncodeSymbols(e.out, e.version, []uint32{uint32(len(left))}, 1); err != nil {
		return err
	}

	leftBounds := bounds{min: append([]uint32(nil), b.min...), max: append([]uint32(nil), b.max...)}
	leftBounds.max[axis] = mid - 1
	rightBounds := bounds{min: append([]uint32(nil), b.min...), max: append([]uint32(nil), b.max...)}
	rightBounds.min[axis] = mid

	if err := e.node(left, leftBounds); err != nil {
		return err
	}
	return e.node(right, rightBounds)
}

func (e *encoder) leaf(points [][]uint32, b bounds) error {
	// An empty leaf (every point of a split fell on one side) carries no
	// payload at all; the decoder skips it symmetrically.
	if len(points) == 0 {
		return nil
	}
	numComponents := len(b.min)
	widths := make([]int, numComponents)
	for c := range widths {
		widths[c] = bitWidth(b.max[c] - b.min[c])
	}

	if len(points) <= FoldedLeafMax {
		folded := make([]*ans.FoldedBit32Encoder, numComponents)
		for c := range folded {
			folded[c] = ans.NewFoldedBit32Encoder(widths[c])
		}
		for _, p := range points {
			for c, v := range p {
				folded[c].EncodeValue(v - b.min[c])
			}
		}
		for _, f := range folded {
			if err := f.EndEncoding(e.out); err != nil {
				return err
			}
		}
		return nil
	}

	direct := bitio.NewDirectBitEncoder()
	for _, p := range points {
		for c, v := range p {
			direct.EncodeLeastSignificantBits32(v-b.min[c], widths[c])
		}
	}
	direct.EndEncoding(e.out)
	return nil
}

// Decode is the inverse of Encode; numComponents must match what the
// encoder was called with.
func Decode(d *bitio.DecoderBuffer, numComponents int) ([][]uint32, error) {
	rawLevel, err := d.DecodeU8()
	if err != nil {
		return nil, err
	}
	level := int(rawLevel)
	numPoints, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	encodedComponents, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	if int(encodedComponents) != numComponents {
		return nil, ErrDimensionMismatch
	}
	// Reject a declared size whose point storage alone
	// would exceed 1 GiB rather than attempt the allocation.
	perPoint := uint64(24 + 4*numComponents)
	if numPoints > (1<<30)/perPoint {
		return nil, ErrTooManyPoints
	}

	b := bounds{min: make([]uint32, numComponents), max: make([]uint32, numComponents)}
	for c := 0; c < numComponents; c++ {
		mn, err := d.DecodeVarint()
		if err != nil {
			return nil, err
		}
		mx, err := d.DecodeVarint()
		if err != nil {
			return nil, err
		}
		b.min[c] = uint32(mn)
		b.max[c] = uint32(mx)
	}

	dec := &decoder{d: d, threshold: leafThreshold[clampLevel(level)]}
	return dec.node(int(numPoints), b)
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 6 {
		return 6
	}
	return level
}

type decoder struct {
	d         *bitio.DecoderBuffer
	threshold int
}

func (dec *decoder) node(n int, b bounds) ([][]uint32, error) {
	axis, width := b.widestAxis()
	if n <= dec.threshold || width == 0 {
		return dec.leaf(n, b)
	}
	mid := midpoint(b.min[axis], b.max[axis])

	symbols, err := ans.DecodeSymbols(dec.d, 1)
	if err != nil {
		return nil, err
	}
	leftCount := int(symbols[0])
	rightCount := n - leftCount
	if leftCount > n || rightCount < 0 {
		return nil, ErrMalformedSplit
	}

	leftBounds := bounds{min: append([]uint32(nil), b.min...), max: append([]uint32(nil), b.max...)}
	leftBounds.max[axis] = mid - 1
	rightBounds := bounds{min: append([]uint32(nil), b.min...), max: append([]uint32(nil), b.max...)}
	rightBounds.min[axis] = mid

	left, err := dec.node(leftCount, leftBounds)
	if err != nil {
		return nil, err
	}
	right, err := dec.node(rightCount, rightBounds)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

func (dec *decoder) leaf(n int, b bounds) ([][]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	numComponents := len(b.min)
	widths := make([]int, numComponents)
	for c := range widths {
		widths[c] = bitWidth(b.max[c] - b.min[c])
	}
	points := make([][]uint32, n)

	if n <= FoldedLeafMax {
		folded := make([]*ans.FoldedBit32Decoder, numComponents)
		for c := range folded {
			fd, err := ans.NewFoldedBit32Decoder(dec.d, widths[c])
			if err != nil {
				return nil, err
			}
			folded[c] = fd
		}
		for i := 0; i < n; i++ {
			p := make([]uint32, numComponents)
			for c := range p {
				v, err := folded[c].DecodeValue()
				if err != nil {
					return nil, err
				}
				p[c] = v + b.min[c]
			}
			points[i] = p
		}
		return points, nil
	}

	direct, err := bitio.NewDirectBitDecoder(dec.d)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		p := make([]uint32, numComponents)
		for c := range p {
			v, err := direct.DecodeLeastSignificantBits32(widths[c])
			if err != nil {
				return nil, err
			}
			p[c] = v + b.min[c]
		}
		points[i] = p
	}
	return points, nil
}
