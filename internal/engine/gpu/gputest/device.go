// Package gputest provides an in-memory gpu.Device and gpu.Transfer that
// records every call, supports failure injection and tracks live
// allocations.
package gputest

import (
	"errors"
	"fmt"

	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
)

// ErrInjected is returned by calls configured to fail.
var ErrInjected = errors.New("gputest: injected failure")

// Allocation is one buffer and its backing memory.
type Allocation struct {
	Buffer gpu.Buffer
	Memory gpu.Memory
	Size   gpu.DeviceSize
	Usage  gpu.BufferUsage
	Props  gpu.MemoryProperty
	Data   []byte

	Mapped    bool
	Destroyed bool
	Freed     bool
}

// Live reports whether the buffer or its memory has not been released.
func (a *Allocation) Live() bool {
	return !a.Destroyed || !a.Freed
}

// Device is a fake GPU. The zero value is not usable; call New.
//
// FailCreateAt, FailMapAt and FailCopyAt select the 1-based call number of
// CreateBuffer, MapMemory and CopyBuffer that returns ErrInjected. Zero
// disables injection.
type Device struct {
	FailCreateAt int
	FailMapAt    int
	FailCopyAt   int

	// Calls lists the method names in call order.
	Calls []string

	// DoubleReleases counts DestroyBuffer/FreeMemory calls on handles
	// that were already released or never allocated.
	DoubleReleases int

	creates, maps, copies int
	next                  uint64
	allocs                []*Allocation
	buffers               map[gpu.Buffer]*Allocation
	memory                map[gpu.Memory]*Allocation
}

var (
	_ gpu.Device   = (*Device)(nil)
	_ gpu.Transfer = (*Device)(nil)
)

// New returns an empty fake device.
func New() *Device {
	return &Device{
		buffers: make(map[gpu.Buffer]*Allocation),
		memory:  make(map[gpu.Memory]*Allocation),
	}
}

// CreateBuffer allocates a zeroed buffer of size bytes.
func (d *Device) CreateBuffer(size gpu.DeviceSize, usage gpu.BufferUsage, props gpu.MemoryProperty) (gpu.BufferPair, error) {
	d.Calls = append(d.Calls, "CreateBuffer")
	d.creates++
	if d.creates == d.FailCreateAt {
		return gpu.BufferPair{}, ErrInjected
	}

	// Buffers take odd handles and memory even ones so the two can
	// never be confused.
	d.next++
	a := &Allocation{
		Buffer: gpu.Buffer(2*d.next - 1),
		Memory: gpu.Memory(2 * d.next),
		Size:   size,
		Usage:  usage,
		Props:  props,
		Data:   make([]byte, size),
	}
	d.allocs = append(d.allocs, a)
	d.buffers[a.Buffer] = a
	d.memory[a.Memory] = a

	return gpu.BufferPair{Buffer: a.Buffer, Memory: a.Memory, Size: size}, nil
}

// CopyBuffer copies size bytes from src to dst.
func (d *Device) CopyBuffer(src, dst gpu.Buffer, size gpu.DeviceSize) error {
	d.Calls = append(d.Calls, "CopyBuffer")
	d.copies++
	if d.copies == d.FailCopyAt {
		return ErrInjected
	}

	s, ok := d.buffers[src]
	if !ok || s.Destroyed {
		return fmt.Errorf("gputest: copy from unknown buffer %d", src)
	}
	t, ok := d.buffers[dst]
	if !ok || t.Destroyed {
		return fmt.Errorf("gputest: copy to unknown buffer %d", dst)
	}
	if size > s.Size || size > t.Size {
		return fmt.Errorf("gputest: copy of %d bytes exceeds buffer size", size)
	}
	copy(t.Data[:size], s.Data[:size])
	return nil
}

// MapMemory returns a slice aliasing the allocation's contents. Only
// host-visible memory can be mapped.
func (d *Device) MapMemory(mem gpu.Memory, size gpu.DeviceSize) ([]byte, error) {
	d.Calls = append(d.Calls, "MapMemory")
	d.maps++
	if d.maps == d.FailMapAt {
		return nil, ErrInjected
	}

	a, ok := d.memory[mem]
	if !ok || a.Freed {
		return nil, fmt.Errorf("gputest: map of unknown memory %d", mem)
	}
	if !a.Props.Has(gpu.MemoryHostVisible) {
		return nil, fmt.Errorf("gputest: memory %d is not host visible", mem)
	}
	if size > a.Size {
		return nil, fmt.Errorf("gputest: map of %d bytes exceeds allocation", size)
	}
	a.Mapped = true
	return a.Data[:size], nil
}

// UnmapMemory clears the mapped state.
func (d *Device) UnmapMemory(mem gpu.Memory) {
	d.Calls = append(d.Calls, "UnmapMemory")
	if a, ok := d.memory[mem]; ok {
		a.Mapped = false
	}
}

// DestroyBuffer marks the buffer destroyed.
func (d *Device) DestroyBuffer(buf gpu.Buffer) {
	d.Calls = append(d.Calls, "DestroyBuffer")
	a, ok := d.buffers[buf]
	if !ok || a.Destroyed {
		d.DoubleReleases++
		return
	}
	a.Destroyed = true
}

// FreeMemory marks the memory freed.
func (d *Device) FreeMemory(mem gpu.Memory) {
	d.Calls = append(d.Calls, "FreeMemory")
	a, ok := d.memory[mem]
	if !ok || a.Freed {
		d.DoubleReleases++
		return
	}
	a.Freed = true
}

// Allocations returns every allocation made so far, in creation order.
func (d *Device) Allocations() []*Allocation {
	return d.allocs
}

// Allocation returns the allocation for buf, or nil.
func (d *Device) Allocation(buf gpu.Buffer) *Allocation {
	return d.buffers[buf]
}

// Contents returns the current bytes of buf, or nil if unknown.
func (d *Device) Contents(buf gpu.Buffer) []byte {
	if a, ok := d.buffers[buf]; ok {
		return a.Data
	}
	return nil
}

// Live returns the number of allocations not fully released.
func (d *Device) Live() int {
	n := 0
	for _, a := range d.allocs {
		if a.Live() {
			n++
		}
	}
	return n
}

// LiveStaging returns the number of live allocations created as transfer
// sources.
func (d *Device) LiveStaging() int {
	n := 0
	for _, a := range d.allocs {
		if a.Live() && a.Usage.Has(gpu.UsageTransferSrc) {
			n++
		}
	}
	return n
}

// Mapped returns the number of allocations still mapped.
func (d *Device) Mapped() int {
	n := 0
	for _, a := range d.allocs {
		if a.Mapped {
			n++
		}
	}
	return n
}
