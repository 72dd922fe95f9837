package transform

import (
	"math"
	"math/rand"
	"testing"
)

func TestQuantizationErrorBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	mins := []float32{-5, 0, 100}
	maxs := []float32{5, 1, 104}
	valueRange := ComputeRange(mins, maxs)
	for _, bits := range []int{1, 8, 14, 31} {
		qt, err := NewQuantizationTransform(bits, mins, valueRange)
		if err != nil {
			t.Fatalf("bits %d: %v", bits, err)
		}
		bound := qt.MaxDecodeError()
		for i := 0; i < 200; i++ {
			c := rng.Intn(3)
			v := mins[c] + rng.Float32()*(maxs[c]-mins[c])
			back := qt.Dequantize(qt.Quantize(v, c), c)
			if diff := float64(back - v); math.Abs(diff) > float64(bound) {
				t.Fatalf("bits %d component %d: |%v - %v| > %v", bits, c, back, v, bound)
			}
		}
	}
}

func TestQuantizationBitsValidation(t *testing.T) {
	if _, err := NewQuantizationTransform(0, []float32{0}, 1); err != ErrInvalidQuantizationBits {
		t.Fatalf("expected ErrInvalidQuantizationBits for 0 bits, got %v", err)
	}
	if _, err := NewQuantizationTransform(32, []float32{0}, 1); err != ErrInvalidQuantizationBits {
		t.Fatalf("expected ErrInvalidQuantizationBits for 32 bits, got %v", err)
	}
}

func TestComputeRangeZeroClamps(t *testing.T) {
	if r := ComputeRange([]float32{3, 3}, []float32{3, 3}); r != 1.0 {
		t.Fatalf("expected degenerate range to clamp to 1.0, got %v", r)
	}
}

func TestOctahedronRoundTripAngularError(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vectors := [][3]float64{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		{1, 1, 1}, {-1, 1, -1},
	}
	for i := 0; i < 500; i++ {
		vectors = append(vectors, [3]float64{
			rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(),
		})
	}
	for _, bits := range []int{4, 10, 16} {
		oct, err := NewOctahedronTransform(bits)
		if err != nil {
			t.Fatalf("bits %d: %v", bits, err)
		}
		// The decoded normal must satisfy dot(original, decoded) > cos(pi / 2^(bits-2)).
		minDot := math.Cos(math.Pi / math.Exp2(float64(bits-2)))
		for _, v := range vectors {
			norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
			if norm < 1e-9 {
				continue
			}
			ux, uy, uz := v[0]/norm, v[1]/norm, v[2]/norm
			s, tt := oct.EncodeNormal(ux, uy, uz)
			if s < 0 || s > oct.MaxQuantizedValue() || tt < 0 || tt > oct.MaxQuantizedValue() {
				t.Fatalf("bits %d: (s,t)=(%d,%d) out of range", bits, s, tt)
			}
			dx, dy, dz := oct.DecodeNormal(s, tt)
			dot := ux*dx + uy*dy + uz*dz
			if dot <= minDot {
				t.Fatalf("bits %d vector %v: dot %v <= %v", bits, v, dot, minDot)
			}
		}
	}
}

func TestOctahedronStableUnderReencode(t *testing.T) {
	// Decoding then re-encoding must land on the same (s,t) pair, or the
	// prediction layer's portable values would drift across generations.
	oct, err := NewOctahedronTransform(10)
	if err != nil {
		t.Fatalf("NewOctahedronTransform: %v", err)
	}
	rng := rand.New(rand.NewSource(23))
	for i := 0; i < 300; i++ {
		x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
		s1, t1 := oct.EncodeNormal(x, y, z)
		dx, dy, dz := oct.DecodeNormal(s1, t1)
		s2, t2 := oct.EncodeNormal(dx, dy, dz)
		if s1 != s2 || t1 != t2 {
			t.Fatalf("re-encode moved (%d,%d) -> (%d,%d) for %v", s1, t1, s2, t2, [3]float64{x, y, z})
		}
	}
}
