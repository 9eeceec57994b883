package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/alwayssomewhattired/Vulkan/internal/assets"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu/gputest"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/model"
	"github.com/alwayssomewhattired/Vulkan/pkg/formats"
	"github.com/alwayssomewhattired/Vulkan/pkg/math"
)

// writeQuadGLB writes a four-vertex, six-index quad and returns its path.
func writeQuadGLB(t *testing.T, dir string) string {
	t.Helper()

	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: modeler.WritePosition(doc, [][3]float32{
				{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
			}),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{
				{0, 0}, {1, 0}, {1, 1}, {0, 1},
			}),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 3, 0})),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "quad", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "quad", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(dir, "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("failed to write test GLB: %v", err)
	}
	return path
}

func TestLoadModel(t *testing.T) {
	path := writeQuadGLB(t, t.TempDir())
	dev := gputest.New()
	l := New(dev, dev)

	if err := l.LoadModel(path); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	if l.VertexCount != 4 {
		t.Errorf("VertexCount = %d, want 4", l.VertexCount)
	}
	if l.IndexCount != 6 {
		t.Errorf("IndexCount = %d, want 6", l.IndexCount)
	}
	if l.IndexType != gpu.IndexUint32 {
		t.Errorf("IndexType = %v, want uint32", l.IndexType)
	}
	if l.VertexBuffer.Size != 4*gpu.DeviceSize(model.VertexSize) {
		t.Errorf("vertex buffer size = %d, want %d", l.VertexBuffer.Size, 4*model.VertexSize)
	}
	if l.IndexBuffer.Size != 6*model.IndexSize {
		t.Errorf("index buffer size = %d, want %d", l.IndexBuffer.Size, 6*model.IndexSize)
	}
	if l.ModelMatrix != math.Identity() {
		t.Errorf("ModelMatrix = %v, want identity", l.ModelMatrix)
	}
	if l.Bounds.Min != [3]float32{-1, -1, 0} || l.Bounds.Max != [3]float32{1, 1, 0} {
		t.Errorf("Bounds = %+v", l.Bounds)
	}

	// Device contents must match the normalized mesh byte for byte.
	glb, err := formats.ParseGLBFile(path)
	if err != nil {
		t.Fatalf("ParseGLBFile failed: %v", err)
	}
	mesh, err := model.BuildMesh(glb)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	if !bytes.Equal(dev.Contents(l.VertexBuffer.Buffer), mesh.VertexBytes()) {
		t.Error("vertex buffer contents differ from normalized mesh")
	}
	if !bytes.Equal(dev.Contents(l.IndexBuffer.Buffer), mesh.IndexBytes()) {
		t.Error("index buffer contents differ from normalized mesh")
	}

	if dev.Live() != 2 {
		t.Errorf("Live = %d, want 2", dev.Live())
	}
	if dev.LiveStaging() != 0 {
		t.Errorf("LiveStaging = %d, want 0", dev.LiveStaging())
	}
}

func TestLoadModelFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	good := writeQuadGLB(t, dir)

	corrupt := filepath.Join(dir, "corrupt.glb")
	if err := os.WriteFile(corrupt, []byte("glTF\x02\x00\x00\x00garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		setup   func(d *gputest.Device)
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "missing.glb"), nil, assets.ErrNotFound},
		{"corrupt file", corrupt, nil, formats.ErrDecode},
		{"vertex staging fails", good, func(d *gputest.Device) { d.FailCreateAt = 1 }, gputest.ErrInjected},
		{"vertex copy fails", good, func(d *gputest.Device) { d.FailCopyAt = 1 }, gputest.ErrInjected},
		{"index device buffer fails", good, func(d *gputest.Device) { d.FailCreateAt = 4 }, gputest.ErrInjected},
		{"index map fails", good, func(d *gputest.Device) { d.FailMapAt = 2 }, gputest.ErrInjected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			if tt.setup != nil {
				tt.setup(dev)
			}
			l := New(dev, dev)

			err := l.LoadModel(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if l.Loaded() {
				t.Error("loader reports loaded after failure")
			}
			if !l.IndexBuffer.IsZero() {
				t.Error("loader holds an index buffer after failure")
			}
			if dev.Live() != 0 {
				t.Errorf("Live = %d, want 0", dev.Live())
			}
			if dev.DoubleReleases != 0 {
				t.Errorf("DoubleReleases = %d, want 0", dev.DoubleReleases)
			}
		})
	}
}

func TestLoadModelReplacesPrevious(t *testing.T) {
	path := writeQuadGLB(t, t.TempDir())
	dev := gputest.New()
	l := New(dev, dev)

	if err := l.LoadModel(path); err != nil {
		t.Fatalf("first LoadModel failed: %v", err)
	}
	first := l.VertexBuffer

	if err := l.LoadModel(path); err != nil {
		t.Fatalf("second LoadModel failed: %v", err)
	}
	if l.VertexBuffer == first {
		t.Error("expected a new vertex buffer on reload")
	}
	if !dev.Allocation(first.Buffer).Destroyed {
		t.Error("previous vertex buffer was not destroyed")
	}
	if dev.Live() != 2 {
		t.Errorf("Live = %d, want 2", dev.Live())
	}

	// A failing reload still drops the earlier model.
	dev.FailCopyAt = 5
	if err := l.LoadModel(path); err == nil {
		t.Fatal("expected third LoadModel to fail")
	}
	if dev.Live() != 0 {
		t.Errorf("Live after failed reload = %d, want 0", dev.Live())
	}
}

func TestLoadModelRereadsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeQuadGLB(t, dir)

	dev := gputest.New()
	l := New(dev, dev)
	if err := l.LoadModel(path); err != nil {
		t.Fatalf("first LoadModel failed: %v", err)
	}
	if l.VertexCount != 4 {
		t.Fatalf("VertexCount = %d, want 4", l.VertexCount)
	}

	// Replace the quad with a single triangle at the same path.
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("failed to rewrite test GLB: %v", err)
	}

	if err := l.LoadModel(path); err != nil {
		t.Fatalf("second LoadModel failed: %v", err)
	}
	if l.VertexCount != 3 || l.IndexCount != 3 {
		t.Errorf("after rewrite: vertices=%d indices=%d, want 3/3", l.VertexCount, l.IndexCount)
	}
	l.Release()
}

func TestRelease(t *testing.T) {
	path := writeQuadGLB(t, t.TempDir())
	dev := gputest.New()
	l := New(dev, dev)

	// Releasing an empty loader is a no-op.
	l.Release()
	if len(dev.Calls) != 0 {
		t.Errorf("expected no device calls, got %v", dev.Calls)
	}

	if err := l.LoadModel(path); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	l.Release()
	l.Release()

	if dev.Live() != 0 {
		t.Errorf("Live = %d, want 0", dev.Live())
	}
	if dev.DoubleReleases != 0 {
		t.Errorf("DoubleReleases = %d, want 0", dev.DoubleReleases)
	}
	if l.IndexCount != 0 || l.VertexCount != 0 {
		t.Errorf("counts after Release = %d/%d, want 0/0", l.VertexCount, l.IndexCount)
	}
}

func TestLoadModelFromAssetRoot(t *testing.T) {
	dir := t.TempDir()
	writeQuadGLB(t, dir)

	dev := gputest.New()
	l := New(dev, dev)
	if err := l.Assets.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	if err := l.LoadModel("quad.glb"); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if l.IndexCount != 6 {
		t.Errorf("IndexCount = %d, want 6", l.IndexCount)
	}
	l.Release()
}

func TestLoadMesh(t *testing.T) {
	dev := gputest.New()
	l := New(dev, dev)

	mesh := &model.Mesh{
		Vertices: []model.Vertex{
			{Position: [3]float32{0, 0, 0}, Color: model.DefaultColor},
			{Position: [3]float32{1, 0, 0}, Color: model.DefaultColor},
			{Position: [3]float32{0, 1, 0}, Color: model.DefaultColor},
		},
		Indices: []uint32{0, 1, 2},
	}
	if err := l.LoadMesh(mesh); err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	if l.VertexBuffer.Size != 3*32 || l.IndexBuffer.Size != 3*4 {
		t.Errorf("sizes = %d/%d, want 96/12", l.VertexBuffer.Size, l.IndexBuffer.Size)
	}

	if err := l.LoadMesh(&model.Mesh{}); !errors.Is(err, gpu.ErrEmptyUpload) {
		t.Errorf("expected ErrEmptyUpload for empty mesh, got %v", err)
	}
	if dev.Live() != 0 {
		t.Errorf("Live = %d, want 0", dev.Live())
	}
}
