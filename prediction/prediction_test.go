package prediction

import (
	"math/rand"
	"testing"

	"github.com/cocosip/go-mesh-codec/bitio"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/transform"
)

func identity(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

func TestDeltaSequenceRoundTrip(t *testing.T) {
	data := [][]int32{{100, -5}, {101, -4}, {99, -7}, {150, 20}, {150, 20}}
	out := bitio.NewEncoderBuffer()
	if err := EncodeSequence(out, bitio.DefaultMeshVersion, data, identity(len(data)), NewDeltaTransform()); err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeSequence(d, identity(len(data)), 2, NewDeltaTransform())
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	for i := range data {
		for c := range data[i] {
			if got[i][c] != data[i][c] {
				t.Fatalf("entry %d comp %d: got %d want %d", i, c, got[i][c], data[i][c])
			}
		}
	}
}

func TestWrapSequenceRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	data := make([][]int32, 64)
	for i := range data {
		data[i] = []int32{int32(rng.Intn(1024)), int32(rng.Intn(7)) - 3}
	}
	out := bitio.NewEncoderBuffer()
	if err := EncodeSequence(out, bitio.DefaultMeshVersion, data, identity(len(data)), NewWrapTransform()); err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeSequence(d, identity(len(data)), 2, NewWrapTransform())
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	for i := range data {
		for c := range data[i] {
			if got[i][c] != data[i][c] {
				t.Fatalf("entry %d comp %d: got %d want %d", i, c, got[i][c], data[i][c])
			}
		}
	}
}

func TestWrapFoldModular(t *testing.T) {
	// Correction folds into (-maxDif/2, +maxDif/2], ties towards +half.
	cases := []struct{ diff, maxDif, want int32 }{
		{0, 10, 0},
		{5, 10, 5},
		{6, 10, -4},
		{-5, 10, 5},
		{-4, 10, -4},
		{13, 10, 3},
	}
	for _, c := range cases {
		if got := foldModular(c.diff, c.maxDif); got != c.want {
			t.Fatalf("foldModular(%d, %d) = %d, want %d", c.diff, c.maxDif, got, c.want)
		}
	}
}

func TestNormalOctahedronCanonicalizedRoundTrip(t *testing.T) {
	tr := NewNormalOctahedronCanonicalizedTransform()
	const bits = 6
	maxQ := int32(1)<<bits - 2
	center := maxQ / 2
	tr.SetParams(maxQ, center)
	oct, err := transform.NewOctahedronTransform(bits)
	if err != nil {
		t.Fatalf("NewOctahedronTransform: %v", err)
	}

	rng := rand.New(rand.NewSource(17))
	orig := make([]int32, 2)
	pred := make([]int32, 2)
	corr := make([]int32, 2)
	back := make([]int32, 2)
	for i := 0; i < 5000; i++ {
		orig[0], orig[1] = oct.EncodeNormal(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		pred[0], pred[1] = int32(rng.Intn(int(maxQ)+1)), int32(rng.Intn(int(maxQ)+1))
		// Originals are canonical octahedral coordinates as EncodeNormal
		// produces them; the prediction may fall anywhere in the square,
		// including outside the diamond.
		tr.ComputeCorrection(orig, pred, corr)
		if corr[0] < 0 || corr[1] < 0 {
			t.Fatalf("corrections must be non-negative, got %v", corr)
		}
		tr.ComputeOriginal(pred, corr, back)
		if back[0] != orig[0] || back[1] != orig[1] {
			t.Fatalf("orig %v pred %v: corr %v decoded to %v", orig, pred, corr, back)
		}
	}
}

func TestNormalOctahedronParamsRoundTrip(t *testing.T) {
	tr := NewNormalOctahedronCanonicalizedTransform()
	tr.SetParams(1022, 511)
	out := bitio.NewEncoderBuffer()
	tr.EncodeParams(out)

	tr2 := NewNormalOctahedronCanonicalizedTransform()
	d := bitio.NewDecoderBuffer(out.Bytes())
	if err := tr2.DecodeParams(d, 2); err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if tr2.maxQuantizedValue != 1022 || tr2.centerValue != 511 {
		t.Fatalf("params drifted: %d %d", tr2.maxQuantizedValue, tr2.centerValue)
	}
}

// gridContext builds a MeshContext over a small triangulated grid whose
// vertex ids are already in data order, the shape the mesh predictors see
// after connectivity decoding.
func gridContext(t *testing.T, n int) (*MeshContext, [][]int32) {
	t.Helper()
	var faces []geom.Face
	idx := func(x, y int) geom.PointIndex { return geom.PointIndex(y*n + x) }
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			faces = append(faces, geom.Face{idx(x, y), idx(x + 1, y), idx(x, y + 1)})
			faces = append(faces, geom.Face{idx(x + 1, y), idx(x + 1, y + 1), idx(x, y + 1)})
		}
	}
	numVertices := n * n
	ct := geom.NewCornerTableFromFaces(faces, numVertices)
	numCorners := ct.NumFaces() * 3
	cornerToData := make([]int, numCorners)
	dataToCorner := make([]geom.CornerIndex, numVertices)
	seen := make([]bool, numVertices)
	for c := 0; c < numCorners; c++ {
		v := ct.Vertex(geom.CornerIndex(c))
		cornerToData[c] = int(v)
		if !seen[v] {
			seen[v] = true
			dataToCorner[v] = geom.CornerIndex(c)
		}
	}
	ctx := &MeshContext{
		Table:        ct,
		DataToCorner: dataToCorner,
		CornerToData: cornerToData,
		Order:        identity(numVertices),
	}
	data := make([][]int32, numVertices)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			data[y*n+x] = []int32{int32(x * 100), int32(y * 100), int32((x + y) % 3)}
		}
	}
	return ctx, data
}

func TestParallelogramRoundTrip(t *testing.T) {
	ctx, data := gridContext(t, 6)
	out := bitio.NewEncoderBuffer()
	if err := EncodeParallelogram(out, bitio.DefaultMeshVersion, data, ctx); err != nil {
		t.Fatalf("EncodeParallelogram: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeParallelogram(d, 3, ctx)
	if err != nil {
		t.Fatalf("DecodeParallelogram: %v", err)
	}
	for i := range data {
		for c := range data[i] {
			if got[i][c] != data[i][c] {
				t.Fatalf("entry %d comp %d: got %d want %d", i, c, got[i][c], data[i][c])
			}
		}
	}
}

func TestConstrainedMultiParallelogramRoundTrip(t *testing.T) {
	ctx, data := gridContext(t, 5)
	out := bitio.NewEncoderBuffer()
	if err := EncodeConstrainedMultiParallelogram(out, bitio.DefaultMeshVersion, data, ctx); err != nil {
		t.Fatalf("EncodeConstrainedMultiParallelogram: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeConstrainedMultiParallelogram(d, 3, ctx)
	if err != nil {
		t.Fatalf("DecodeConstrainedMultiParallelogram: %v", err)
	}
	for i := range data {
		for c := range data[i] {
			if got[i][c] != data[i][c] {
				t.Fatalf("entry %d comp %d: got %d want %d", i, c, got[i][c], data[i][c])
			}
		}
	}
}

func TestTexCoordsPortableRoundTrip(t *testing.T) {
	meshCtx, positions := gridContext(t, 5)
	uvs := make([][]int32, len(positions))
	for i, p := range positions {
		uvs[i] = []int32{p[0] * 2, p[1] * 2}
	}
	ctx := &TexCoordsContext{MeshContext: meshCtx, Positions: positions}

	out := bitio.NewEncoderBuffer()
	if err := EncodeTexCoordsPortable(out, bitio.DefaultMeshVersion, uvs, ctx); err != nil {
		t.Fatalf("EncodeTexCoordsPortable: %v", err)
	}
	d := bitio.NewDecoderBuffer(out.Bytes())
	got, err := DecodeTexCoordsPortable(d, ctx)
	if err != nil {
		t.Fatalf("DecodeTexCoordsPortable: %v", err)
	}
	for i := range uvs {
		for c := range uvs[i] {
			if got[i][c] != uvs[i][c] {
				t.Fatalf("entry %d comp %d: got %d want %d", i, c, got[i][c], uvs[i][c])
			}
		}
	}
}

func TestSelectMethodPolicy(t *testing.T) {
	cases := []struct {
		name string
		opt  SelectOptions
		want Method
	}{
		{"point cloud", SelectOptions{Kind: KindPointCloud, EncodingSpeed: 0}, MethodDifference},
		{"speed 10", SelectOptions{Kind: KindMeshEdgebreaker, EncodingSpeed: 10}, MethodDifference},
		{"sequential mesh", SelectOptions{Kind: KindMeshSequential, EncodingSpeed: 0}, MethodDifference},
		{
			"tex coords",
			SelectOptions{
				Kind: KindMeshEdgebreaker, AttributeType: geom.AttrTexCoord,
				NumComponents: 2, IsQuantized: true, EncodingSpeed: 0,
				PositionQuantBits: 14, TexQuantBits: 12, NumPoints: 100,
			},
			MethodTexCoordsPortable,
		},
		{"normal", SelectOptions{Kind: KindMeshEdgebreaker, AttributeType: geom.AttrNormal, NumPoints: 100}, MethodDifference},
		{"speed 8", SelectOptions{Kind: KindMeshEdgebreaker, EncodingSpeed: 8, NumPoints: 100}, MethodDifference},
		{"speed 5", SelectOptions{Kind: KindMeshEdgebreaker, EncodingSpeed: 5, NumPoints: 100}, MethodParallelogram},
		{"small mesh", SelectOptions{Kind: KindMeshEdgebreaker, EncodingSpeed: 0, NumPoints: 30}, MethodParallelogram},
		{"slow large mesh", SelectOptions{Kind: KindMeshEdgebreaker, EncodingSpeed: 0, NumPoints: 100}, MethodConstrainedMultiParallelogram},
	}
	for _, c := range cases {
		if got := SelectMethod(c.opt); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}
