package gpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/logger"
)

// ErrEmptyUpload is returned when asked to upload zero bytes.
var ErrEmptyUpload = errors.New("gpu: empty upload")

// Uploader copies host data into device-local buffers.
type Uploader struct {
	dev  Device
	xfer Transfer
}

// NewUploader creates an uploader using dev for mapping and teardown and
// xfer for allocation and copies.
func NewUploader(dev Device, xfer Transfer) *Uploader {
	return &Uploader{dev: dev, xfer: xfer}
}

// Upload stages data in host-visible memory and copies it into a new
// device-local buffer created with TransferDst|usage. The staging buffer is
// always released before returning. On error no allocation is returned.
func (u *Uploader) Upload(data []byte, usage BufferUsage) (BufferPair, error) {
	size := DeviceSize(len(data))
	if size == 0 {
		return BufferPair{}, ErrEmptyUpload
	}

	staging, err := u.xfer.CreateBuffer(size, UsageTransferSrc, MemoryHostVisible|MemoryHostCoherent)
	if err != nil {
		return BufferPair{}, fmt.Errorf("create staging buffer: %w", err)
	}
	defer Release(u.dev, staging)

	if err := u.fill(staging, data); err != nil {
		return BufferPair{}, err
	}

	final, err := u.xfer.CreateBuffer(size, UsageTransferDst|usage, MemoryDeviceLocal)
	if err != nil {
		return BufferPair{}, fmt.Errorf("create device buffer: %w", err)
	}

	if err := u.xfer.CopyBuffer(staging.Buffer, final.Buffer, size); err != nil {
		Release(u.dev, final)
		return BufferPair{}, fmt.Errorf("copy staging buffer: %w", err)
	}

	logger.Debug("buffer uploaded",
		zap.Uint64("buffer", uint64(final.Buffer)),
		zap.Uint64("size", uint64(size)),
		zap.Uint32("usage", uint32(usage)))

	return final, nil
}

func (u *Uploader) fill(staging BufferPair, data []byte) error {
	mapped, err := u.dev.MapMemory(staging.Memory, staging.Size)
	if err != nil {
		return fmt.Errorf("map staging memory: %w", err)
	}
	defer u.dev.UnmapMemory(staging.Memory)

	if len(mapped) < len(data) {
		return fmt.Errorf("map staging memory: mapped %d bytes, need %d", len(mapped), len(data))
	}
	copy(mapped, data)
	return nil
}

// UploadMesh uploads vertex data then index data. If the index upload fails
// the vertex buffer is released before the error is returned.
func (u *Uploader) UploadMesh(vertices, indices []byte) (vertex, index BufferPair, err error) {
	vertex, err = u.Upload(vertices, UsageVertexBuffer)
	if err != nil {
		return BufferPair{}, BufferPair{}, fmt.Errorf("vertex buffer: %w", err)
	}

	index, err = u.Upload(indices, UsageIndexBuffer)
	if err != nil {
		Release(u.dev, vertex)
		return BufferPair{}, BufferPair{}, fmt.Errorf("index buffer: %w", err)
	}

	return vertex, index, nil
}
