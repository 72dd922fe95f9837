package meshcodec

import (
	"testing"

	"github.com/cocosip/go-mesh-codec/container"
	"github.com/cocosip/go-mesh-codec/geom"
)

func cubeMesh() *geom.Mesh {
	positions := [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	faces := []geom.Face{
		{0, 1, 2}, {0, 2, 3}, // bottom
		{4, 6, 5}, {4, 7, 6}, // top
		{0, 4, 5}, {0, 5, 1}, // side
	}
	mesh := geom.NewMesh(len(positions))
	pos := geom.NewIdentityAttribute(geom.AttrPosition, geom.DTFloat32, 3, 1, len(positions))
	for i, p := range positions {
		for c := 0; c < 3; c++ {
			pos.SetValueFloat32(geom.AttributeValueIndex(i), c, p[c])
		}
	}
	mesh.AddAttribute(pos)
	mesh.SetFaces(faces)
	return mesh
}

func TestEncodeDecodeMeshEdgebreaker(t *testing.T) {
	mesh := cubeMesh()
	data, err := Encode(mesh, container.Options{EncodingSpeed: 5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	gotMesh, gotPC, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotPC != nil {
		t.Fatalf("expected a mesh, got a point cloud")
	}
	if gotMesh.NumFaces() != mesh.NumFaces() {
		t.Fatalf("face count mismatch: got %d want %d", gotMesh.NumFaces(), mesh.NumFaces())
	}
	if gotMesh.NumPoints() != mesh.NumPoints() {
		t.Fatalf("point count mismatch: got %d want %d", gotMesh.NumPoints(), mesh.NumPoints())
	}
}

func TestEncodeDecodeMeshSequential(t *testing.T) {
	mesh := cubeMesh()
	data, err := Encode(mesh, container.Options{EncodingSpeed: 5, ForceEncodingMethod: true, EncodingMethod: container.MethodSequential, VersionMajor: 2, VersionMinor: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	gotMesh, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotMesh.NumFaces() != mesh.NumFaces() || gotMesh.NumPoints() != mesh.NumPoints() {
		t.Fatalf("mismatch: got %d faces/%d points", gotMesh.NumFaces(), gotMesh.NumPoints())
	}
	pos := gotMesh.Attribute(0)
	want := mesh.Attribute(0)
	for i := 0; i < mesh.NumPoints(); i++ {
		for c := 0; c < 3; c++ {
			g := pos.GetValueFloat32(geom.AttributeValueIndex(i), c)
			w := want.GetValueFloat32(geom.AttributeValueIndex(i), c)
			if diff := g - w; diff > 0.01 || diff < -0.01 {
				t.Fatalf("point %d component %d: got %v want %v", i, c, g, w)
			}
		}
	}
}

func TestEncodeDecodePointCloudKDTree(t *testing.T) {
	pc := geom.NewPointCloud(6)
	pos := geom.NewIdentityAttribute(geom.AttrPosition, geom.DTFloat32, 3, 1, 6)
	pts := [][3]float32{{0, 0, 0}, {1, 2, 3}, {4, 1, 9}, {2, 2, 2}, {7, 7, 1}, {3, 5, 6}}
	for i, p := range pts {
		for c := 0; c < 3; c++ {
			pos.SetValueFloat32(geom.AttributeValueIndex(i), c, p[c])
		}
	}
	pc.AddAttribute(pos)

	data, err := EncodePointCloud(pc, container.Options{EncodingSpeed: 5})
	if err != nil {
		t.Fatalf("EncodePointCloud: %v", err)
	}
	_, gotPC, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotPC.NumPoints() != pc.NumPoints() {
		t.Fatalf("point count mismatch: got %d want %d", gotPC.NumPoints(), pc.NumPoints())
	}
	gotAttr := gotPC.Attribute(0)
	seen := make([]bool, 6)
	for i := 0; i < 6; i++ {
		var found bool
		for j, want := range pts {
			if seen[j] {
				continue
			}
			match := true
			for c := 0; c < 3; c++ {
				if diff := gotAttr.GetValueFloat32(geom.AttributeValueIndex(i), c) - want[c]; diff > 0.01 || diff < -0.01 {
					match = false
					break
				}
			}
			if match {
				seen[j] = true
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("decoded point %d matches no source point", i)
		}
	}
}

func TestEncodePointCloudEmpty(t *testing.T) {
	pc := geom.NewPointCloud(0)
	data, err := EncodePointCloud(pc, container.Options{})
	if err != nil {
		t.Fatalf("EncodePointCloud: %v", err)
	}
	_, gotPC, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotPC.NumPoints() != 0 || gotPC.NumAttributes() != 0 {
		t.Fatalf("expected an empty point cloud, got %d points / %d attributes", gotPC.NumPoints(), gotPC.NumAttributes())
	}
}
