package formats

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
)

// ComponentEncoding is the numeric encoding of a single accessor component.
type ComponentEncoding uint8

// Component encodings.
const (
	EncodingUnknown ComponentEncoding = iota
	EncodingInt8
	EncodingUint8
	EncodingInt16
	EncodingUint16
	EncodingUint32
	EncodingFloat32
)

// String returns a human-readable encoding name.
func (e ComponentEncoding) String() string {
	switch e {
	case EncodingInt8:
		return "int8"
	case EncodingUint8:
		return "uint8"
	case EncodingInt16:
		return "int16"
	case EncodingUint16:
		return "uint16"
	case EncodingUint32:
		return "uint32"
	case EncodingFloat32:
		return "float32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e))
	}
}

// Size returns the byte size of one component.
func (e ComponentEncoding) Size() int {
	switch e {
	case EncodingInt8, EncodingUint8:
		return 1
	case EncodingInt16, EncodingUint16:
		return 2
	case EncodingUint32, EncodingFloat32:
		return 4
	default:
		return 0
	}
}

// IsUnsigned returns true for the unsigned integer encodings.
func (e ComponentEncoding) IsUnsigned() bool {
	return e == EncodingUint8 || e == EncodingUint16 || e == EncodingUint32
}

// EncodingOf maps a glTF component type to its encoding.
func EncodingOf(c gltf.ComponentType) ComponentEncoding {
	switch c {
	case gltf.ComponentByte:
		return EncodingInt8
	case gltf.ComponentUbyte:
		return EncodingUint8
	case gltf.ComponentShort:
		return EncodingInt16
	case gltf.ComponentUshort:
		return EncodingUint16
	case gltf.ComponentUint:
		return EncodingUint32
	case gltf.ComponentFloat:
		return EncodingFloat32
	default:
		return EncodingUnknown
	}
}

// ComponentsOf returns the number of components per element of a glTF
// accessor type.
func ComponentsOf(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	default:
		return 0
	}
}

// AccessorView is a read-only, strided, bounds-checked view over the bytes
// of one accessor. It borrows the decoded buffer and must not outlive the
// parse that produced it.
type AccessorView struct {
	data       []byte
	zero       bool
	Stride     int
	Count      int
	Encoding   ComponentEncoding
	Components int
}

// NewAccessorView creates a view over data, which starts at the first
// element. A stride of 0 means tightly packed elements.
func NewAccessorView(data []byte, stride, count int, enc ComponentEncoding, components int) *AccessorView {
	v := &AccessorView{
		data:       data,
		Stride:     stride,
		Count:      count,
		Encoding:   enc,
		Components: components,
	}
	if v.Stride == 0 {
		v.Stride = v.ElementSize()
	}
	return v
}

// NewZeroAccessorView creates a view whose elements all read as zero.
func NewZeroAccessorView(count int, enc ComponentEncoding, components int) *AccessorView {
	v := NewAccessorView(nil, 0, count, enc, components)
	v.zero = true
	return v
}

// MaxZeroElements bounds accessors without a buffer view, which have no
// bytes to check a declared count against.
const MaxZeroElements = 1 << 24

// byteSpan returns the bytes needed to read every element, or -1 if the
// declared count or stride is negative or overflows.
func (v *AccessorView) byteSpan() int {
	if v.Count == 0 {
		return 0
	}
	size := v.ElementSize()
	if v.Count < 0 || v.Stride < 0 || size <= 0 {
		return -1
	}
	if v.Count-1 > (gomath.MaxInt-size)/max(v.Stride, 1) {
		return gomath.MaxInt
	}
	return (v.Count-1)*v.Stride + size
}

// ElementSize returns the natural (unpadded) byte size of one element.
func (v *AccessorView) ElementSize() int {
	return v.Encoding.Size() * v.Components
}

// element returns the bytes of element i.
func (v *AccessorView) element(i int) ([]byte, error) {
	if i < 0 || i >= v.Count {
		return nil, fmt.Errorf("%w: element %d of %d", ErrAccessorOutOfBounds, i, v.Count)
	}
	size := v.ElementSize()
	if v.zero {
		return make([]byte, size), nil
	}
	off := i * v.Stride
	end := off + size
	if end > len(v.data) {
		return nil, fmt.Errorf("%w: element %d needs bytes [%d,%d) of %d",
			ErrAccessorOutOfBounds, i, off, end, len(v.data))
	}
	return v.data[off:end], nil
}

// Floats reads the float components of element i into dst.
// dst must hold at least Components values.
func (v *AccessorView) Floats(i int, dst []float32) error {
	if v.Encoding != EncodingFloat32 {
		return fmt.Errorf("%w: reading %s components as float32", ErrInvalidAccessor, v.Encoding)
	}
	if len(dst) < v.Components {
		return fmt.Errorf("%w: destination holds %d of %d components", ErrInvalidAccessor, len(dst), v.Components)
	}
	raw, err := v.element(i)
	if err != nil {
		return err
	}
	for c := 0; c < v.Components; c++ {
		dst[c] = gomath.Float32frombits(binary.LittleEndian.Uint32(raw[c*4:]))
	}
	return nil
}

// Uint reads element i of a scalar unsigned-integer accessor, widened to
// 32 bits.
func (v *AccessorView) Uint(i int) (uint32, error) {
	if !v.Encoding.IsUnsigned() || v.Components != 1 {
		return 0, fmt.Errorf("%w: reading %s x%d as unsigned scalar", ErrInvalidAccessor, v.Encoding, v.Components)
	}
	raw, err := v.element(i)
	if err != nil {
		return 0, err
	}
	switch v.Encoding {
	case EncodingUint8:
		return uint32(raw[0]), nil
	case EncodingUint16:
		return uint32(binary.LittleEndian.Uint16(raw)), nil
	default:
		return binary.LittleEndian.Uint32(raw), nil
	}
}
