// Package glgpu implements gpu.Device and gpu.Transfer on an OpenGL 4.1
// core context.
//
// Host-visible allocations become STREAM_DRAW buffers that are mapped with
// glMapBufferRange; device-local allocations become STATIC_DRAW buffers.
// GL has no separate memory objects, so a Memory handle is the buffer name.
//
// All methods must be called on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
	"github.com/alwayssomewhattired/Vulkan/internal/logger"
)

// Device is a GL-backed gpu.Device and gpu.Transfer.
type Device struct {
	sizes map[uint32]gpu.DeviceSize
}

var (
	_ gpu.Device   = (*Device)(nil)
	_ gpu.Transfer = (*Device)(nil)
)

// New returns a device for the current GL context. Init must already have
// been called.
func New() *Device {
	return &Device{sizes: make(map[uint32]gpu.DeviceSize)}
}

// Init loads the GL function pointers for the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version, renderer := Version()
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", renderer),
	)
	return nil
}

// Version returns the GL version and renderer strings of the current context.
func Version() (version, renderer string) {
	return gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER))
}

// CreateBuffer allocates an uninitialized buffer of size bytes.
func (d *Device) CreateBuffer(size gpu.DeviceSize, usage gpu.BufferUsage, props gpu.MemoryProperty) (gpu.BufferPair, error) {
	clearErrors("CreateBuffer")

	var name uint32
	gl.GenBuffers(1, &name)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, name)
	gl.BufferData(gl.COPY_WRITE_BUFFER, int(size), nil, usageHint(props))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if err := checkError("glBufferData"); err != nil {
		gl.DeleteBuffers(1, &name)
		return gpu.BufferPair{}, err
	}

	d.sizes[name] = size
	logger.Debug("gl buffer created",
		zap.Uint32("name", name),
		zap.Uint64("size", uint64(size)),
		zap.Uint32("usage", uint32(usage)))

	return gpu.BufferPair{Buffer: gpu.Buffer(name), Memory: gpu.Memory(name), Size: size}, nil
}

// CopyBuffer copies size bytes from src to dst and waits for completion.
func (d *Device) CopyBuffer(src, dst gpu.Buffer, size gpu.DeviceSize) error {
	clearErrors("CopyBuffer")
	gl.BindBuffer(gl.COPY_READ_BUFFER, uint32(src))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(dst))
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, int(size))
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if err := checkError("glCopyBufferSubData"); err != nil {
		return err
	}
	gl.Finish()
	return nil
}

// MapMemory maps the first size bytes of the buffer for writing.
func (d *Device) MapMemory(mem gpu.Memory, size gpu.DeviceSize) ([]byte, error) {
	name := uint32(mem)
	if have, ok := d.sizes[name]; !ok || size > have {
		return nil, fmt.Errorf("glgpu: map %d bytes of buffer %d: out of range", size, name)
	}

	clearErrors("MapMemory")
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, name)
	ptr := gl.MapBufferRange(gl.COPY_WRITE_BUFFER, 0, int(size),
		gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if ptr == nil {
		if err := checkError("glMapBufferRange"); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("glgpu: glMapBufferRange returned nil for buffer %d", name)
	}
	return unsafe.Slice((*byte)(ptr), int(size)), nil
}

// UnmapMemory unmaps a buffer mapped with MapMemory.
func (d *Device) UnmapMemory(mem gpu.Memory) {
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(mem))
	if !gl.UnmapBuffer(gl.COPY_WRITE_BUFFER) {
		logger.Warn("gl buffer contents lost during unmap", zap.Uint32("name", uint32(mem)))
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// DestroyBuffer deletes the GL buffer name.
func (d *Device) DestroyBuffer(buf gpu.Buffer) {
	name := uint32(buf)
	if _, ok := d.sizes[name]; !ok {
		return
	}
	gl.DeleteBuffers(1, &name)
}

// FreeMemory drops the bookkeeping for a buffer's storage. The storage
// itself is released with the buffer name.
func (d *Device) FreeMemory(mem gpu.Memory) {
	delete(d.sizes, uint32(mem))
}

// Live returns the number of buffers not yet freed.
func (d *Device) Live() int {
	return len(d.sizes)
}

func usageHint(props gpu.MemoryProperty) uint32 {
	if props.Has(gpu.MemoryHostVisible) {
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

// maxPendingErrors bounds error draining; a lost context may keep
// reporting errors.
const maxPendingErrors = 16

var getError = gl.GetError

// pendingErrors reads GL error flags until NO_ERROR.
func pendingErrors() []uint32 {
	var codes []uint32
	for len(codes) < maxPendingErrors {
		code := getError()
		if code == gl.NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	return codes
}

// clearErrors discards errors left by earlier GL calls so the following
// checkError only sees errors raised by op.
func clearErrors(op string) {
	if codes := pendingErrors(); len(codes) > 0 {
		logger.Warn("discarding stale gl errors",
			zap.String("before", op),
			zap.Uint32s("codes", codes))
	}
}

func checkError(op string) error {
	codes := pendingErrors()
	switch len(codes) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("glgpu: %s failed: 0x%x", op, codes[0])
	default:
		return fmt.Errorf("glgpu: %s failed: 0x%x (and %d more: %#x)", op, codes[0], len(codes)-1, codes[1:])
	}
}
