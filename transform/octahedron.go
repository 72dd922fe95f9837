package transform

import (
	"math"

	"github.com/cocosip/go-mesh-codec/numeric"
)

// OctahedronTransform maps a unit 3-vector (normals) onto two quantized
// integers via the octahedral bijection. QuantizationBits must lie
// in [2,30].
type OctahedronTransform struct {
	Bits         int
	centerValue  int32
	maxQuantized int32 // 2^bits - 2
}

// NewOctahedronTransform validates bits in [2,30].
func NewOctahedronTransform(bits int) (*OctahedronTransform, error) {
	if bits < 2 || bits > 30 {
		return nil, ErrInvalidQuantizationBits
	}
	maxValue := (int32(1) << uint(bits)) - 2
	return &OctahedronTransform{
		Bits:         bits,
		centerValue:  maxValue / 2,
		maxQuantized: maxValue,
	}, nil
}

// CenterValue returns (2^Bits-1)/2, the midpoint of the (s,t) square.
func (o *OctahedronTransform) CenterValue() int32 { return o.centerValue }

// MaxQuantizedValue returns 2^Bits - 2, the largest coordinate value.
func (o *OctahedronTransform) MaxQuantizedValue() int32 { return o.maxQuantized }

// sign32 treats zero as positive (unlike numeric.Sign's three-way sign),
// matching the octahedral unwrap formula which needs a nonzero multiplier
// even on an axis.
func sign32(v int32) int32 {
	if v < 0 {
		return -1
	}
	return 1
}

func abs32(v int32) int32 { return numeric.Abs(v) }

// EncodeNormal maps a (not necessarily unit) normal onto quantized
// octahedral coordinates (s,t), both in [0, MaxQuantizedValue()].
func (o *OctahedronTransform) EncodeNormal(x, y, z float64) (s, t int32) {
	l1 := math.Abs(x) + math.Abs(y) + math.Abs(z)
	if l1 < 1e-12 {
		x, y, z = 1, 0, 0
		l1 = 1
	} else {
		x, y, z = x/l1, y/l1, z/l1
	}

	center := float64(o.centerValue)
	ix := int32(math.Round(x * center))
	iy := int32(math.Round(y * center))
	izAbs := o.centerValue - abs32(ix) - abs32(iy)
	if izAbs < 0 {
		if abs32(ix) > abs32(iy) {
			ix = sign32(ix) * (o.centerValue - abs32(iy))
		} else {
			iy = sign32(iy) * (o.centerValue - abs32(ix))
		}
		izAbs = 0
	}
	iz := izAbs
	if z < 0 {
		iz = -iz
	}

	var sPrime, tPrime int32
	if ix >= 0 {
		sPrime, tPrime = iy, iz
	} else {
		// Left hemisphere: unwrap along the diamond edges.
		sy := sign32(iy)
		sz := sign32(iz)
		if iy == 0 {
			sy = 1
		}
		if iz == 0 {
			sz = 1
		}
		sPrime = sy * (o.centerValue - abs32(iz))
		tPrime = sz * (o.centerValue - abs32(iy))
	}
	s = sPrime + o.centerValue
	t = tPrime + o.centerValue
	return o.canonicalize(s, t)
}

// canonicalize folds the boundary duplicate representations (the (s,t)
// square's corner and edge points can arise from distinct octahedron faces
// describing the same normal) onto one fixed representative, so that (s,t)
// uniquely determines the normal. The three corners equivalent to
// (max,max) collapse there; a point on a square edge reflects across that
// edge's center.
func (o *OctahedronTransform) canonicalize(s, t int32) (int32, int32) {
	max := o.maxQuantized
	c := o.centerValue
	switch {
	case (s == 0 && t == 0) || (s == 0 && t == max) || (s == max && t == 0):
		s, t = max, max
	case s == 0 && t > c:
		t = c - (t - c)
	case s == max && t < c:
		t = c + (c - t)
	case t == max && s < c:
		s = c + (c - s)
	case t == 0 && s > c:
		s = c - (s - c)
	}
	return s, t
}

// DecodeNormal is the inverse of EncodeNormal, returning a unit vector.
func (o *OctahedronTransform) DecodeNormal(s, t int32) (x, y, z float64) {
	c := float64(o.centerValue)
	fs := float64(s) - c
	fy := fs / c
	ft := float64(t) - c
	fz := ft / c
	fx := 1 - math.Abs(fy) - math.Abs(fz)
	if fx < 0 {
		// Unwrap: reflect across the diamond edge.
		oy := fy
		oz := fz
		if oy >= 0 {
			fy = 1 - math.Abs(oz)
		} else {
			fy = -(1 - math.Abs(oz))
		}
		if oz >= 0 {
			fz = 1 - math.Abs(oy)
		} else {
			fz = -(1 - math.Abs(oy))
		}
	}
	norm := math.Sqrt(fx*fx + fy*fy + fz*fz)
	if norm < 1e-12 {
		return 1, 0, 0
	}
	return fx / norm, fy / norm, fz / norm
}
