// Package loader turns a GLB file into GPU-resident vertex and index
// buffers.
package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/assets"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/model"
	"github.com/alwayssomewhattired/Vulkan/internal/logger"
	"github.com/alwayssomewhattired/Vulkan/pkg/formats"
	"github.com/alwayssomewhattired/Vulkan/pkg/math"
)

// Loader owns the buffers of the most recently loaded model.
// A Loader is not safe for concurrent use.
type Loader struct {
	// Assets resolves and reads model files. New sets a manager with no
	// search roots.
	Assets *assets.Manager

	VertexBuffer gpu.BufferPair
	IndexBuffer  gpu.BufferPair
	IndexCount   uint32
	IndexType    gpu.IndexType
	VertexCount  uint32
	Bounds       model.Bounds
	ModelMatrix  math.Mat4

	dev      gpu.Device
	uploader *gpu.Uploader
}

// New creates a loader that allocates through xfer and tears down through dev.
func New(dev gpu.Device, xfer gpu.Transfer) *Loader {
	return &Loader{
		Assets:      assets.NewManager(),
		IndexType:   gpu.IndexUint32,
		ModelMatrix: math.Identity(),
		dev:         dev,
		uploader:    gpu.NewUploader(dev, xfer),
	}
}

// LoadModel parses the GLB at path, normalizes its mesh and uploads it.
// Buffers from a previous load are released first. On error the loader
// holds no buffers.
func (l *Loader) LoadModel(path string) error {
	l.Release()

	data, err := l.Assets.Load(path)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", path, err)
	}

	glb, err := formats.ParseGLB(data)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", path, err)
	}

	mesh, err := model.BuildMesh(glb)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", path, err)
	}

	logger.Debug("mesh normalized",
		zap.String("path", path),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Uint32("indices", mesh.IndexCount()),
		zap.Stringer("sourceIndexWidth", mesh.SourceIndexWidth))

	return l.upload(path, mesh)
}

// LoadMesh uploads an already normalized mesh, releasing any previous
// buffers first.
func (l *Loader) LoadMesh(mesh *model.Mesh) error {
	l.Release()
	return l.upload("", mesh)
}

func (l *Loader) upload(path string, mesh *model.Mesh) error {
	vb, ib, err := l.uploader.UploadMesh(mesh.VertexBytes(), mesh.IndexBytes())
	if err != nil {
		return fmt.Errorf("uploading model %s: %w", path, err)
	}

	l.VertexBuffer = vb
	l.IndexBuffer = ib
	l.IndexCount = mesh.IndexCount()
	l.VertexCount = uint32(len(mesh.Vertices))
	l.Bounds = mesh.Bounds

	logger.Info("model loaded",
		zap.String("path", path),
		zap.Uint32("vertices", l.VertexCount),
		zap.Uint32("indices", l.IndexCount),
		zap.Uint64("vertexBytes", uint64(vb.Size)),
		zap.Uint64("indexBytes", uint64(ib.Size)))

	return nil
}

// Loaded reports whether the loader currently owns buffers.
func (l *Loader) Loaded() bool {
	return !l.VertexBuffer.IsZero()
}

// Release destroys and frees the vertex and index buffers. It is safe to
// call more than once.
func (l *Loader) Release() {
	if !l.Loaded() && l.IndexBuffer.IsZero() {
		return
	}

	gpu.Release(l.dev, l.VertexBuffer)
	gpu.Release(l.dev, l.IndexBuffer)

	l.VertexBuffer = gpu.BufferPair{}
	l.IndexBuffer = gpu.BufferPair{}
	l.IndexCount = 0
	l.VertexCount = 0
	l.Bounds = model.Bounds{}
}
