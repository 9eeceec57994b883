// Package gpu moves host data into device-local GPU buffers through a
// host-visible staging buffer.
//
// The device itself is injected: Device covers mapping and teardown of
// allocations, Transfer covers buffer creation and the blocking copy.
package gpu

// Buffer is an opaque device buffer handle.
type Buffer uint64

// Memory is an opaque device memory handle backing a Buffer.
type Memory uint64

// DeviceSize is a size in bytes on the device.
type DeviceSize uint64

// BufferUsage is a bit set describing how a buffer will be used.
type BufferUsage uint32

// Buffer usage bits. Values match VkBufferUsageFlagBits.
const (
	UsageTransferSrc  BufferUsage = 0x00000001
	UsageTransferDst  BufferUsage = 0x00000002
	UsageIndexBuffer  BufferUsage = 0x00000040
	UsageVertexBuffer BufferUsage = 0x00000080
)

// Has reports whether all bits in flag are set.
func (u BufferUsage) Has(flag BufferUsage) bool {
	return u&flag == flag
}

// MemoryProperty is a bit set of memory placement requirements.
type MemoryProperty uint32

// Memory property bits. Values match VkMemoryPropertyFlagBits.
const (
	MemoryDeviceLocal  MemoryProperty = 0x00000001
	MemoryHostVisible  MemoryProperty = 0x00000002
	MemoryHostCoherent MemoryProperty = 0x00000004
)

// Has reports whether all bits in flag are set.
func (p MemoryProperty) Has(flag MemoryProperty) bool {
	return p&flag == flag
}

// IndexType identifies the element type of an index buffer.
type IndexType uint32

// Index types. Values match VkIndexType.
const (
	IndexUint16 IndexType = 0
	IndexUint32 IndexType = 1
)

// String returns the index type name.
func (t IndexType) String() string {
	switch t {
	case IndexUint16:
		return "uint16"
	case IndexUint32:
		return "uint32"
	default:
		return "unknown"
	}
}

// BufferPair is a buffer together with the memory bound to it.
type BufferPair struct {
	Buffer Buffer
	Memory Memory
	Size   DeviceSize
}

// IsZero reports whether the pair holds no allocation.
func (p BufferPair) IsZero() bool {
	return p.Buffer == 0 && p.Memory == 0
}

// Device is the borrowed logical device used to map and tear down
// allocations.
type Device interface {
	MapMemory(mem Memory, size DeviceSize) ([]byte, error)
	UnmapMemory(mem Memory)
	DestroyBuffer(buf Buffer)
	FreeMemory(mem Memory)
}

// Transfer provides buffer creation and a synchronous buffer-to-buffer
// copy. CopyBuffer must not return before the copy has completed.
type Transfer interface {
	CreateBuffer(size DeviceSize, usage BufferUsage, props MemoryProperty) (BufferPair, error)
	CopyBuffer(src, dst Buffer, size DeviceSize) error
}

// Release destroys the buffer and frees its memory. Zero pairs are ignored.
func Release(dev Device, p BufferPair) {
	if p.IsZero() {
		return
	}
	dev.DestroyBuffer(p.Buffer)
	dev.FreeMemory(p.Memory)
}
