package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
)

// GLB format errors.
var (
	ErrDecode              = errors.New("GLB decode failure")
	ErrInvalidAccessor     = errors.New("invalid accessor")
	ErrAccessorOutOfBounds = errors.New("accessor reads past buffer end")
)

const (
	glbMagic      = "glTF"
	glbHeaderSize = 12
	glbVersion    = 2
)

// GLBHeader is the fixed 12-byte header of a binary glTF container.
type GLBHeader struct {
	Version uint32
	Length  uint32
}

// GLB is a decoded binary glTF container.
// Image payloads stay as opaque buffer views and are never decoded.
type GLB struct {
	Header GLBHeader
	Doc    *gltf.Document
}

// ParseGLB parses a GLB container from raw bytes.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < glbHeaderSize {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrDecode, len(data))
	}

	if string(data[0:4]) != glbMagic {
		return nil, fmt.Errorf("%w: invalid magic %q, expected %q", ErrDecode, data[0:4], glbMagic)
	}

	header := GLBHeader{
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}
	if header.Version != glbVersion {
		return nil, fmt.Errorf("%w: unsupported container version %d", ErrDecode, header.Version)
	}
	if int64(header.Length) > int64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrDecode, header.Length, len(data))
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data[:header.Length])).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &GLB{Header: header, Doc: doc}, nil
}

// ParseGLBFile parses a GLB container from disk.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading GLB file: %v", ErrDecode, err)
	}
	return ParseGLB(data)
}

// Accessor resolves accessor index into a bounds-checked view over the
// decoded buffer bytes. The view borrows the document's storage.
func (g *GLB) Accessor(index int) (*AccessorView, error) {
	doc := g.Doc
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrInvalidAccessor, index, len(doc.Accessors))
	}
	acc := doc.Accessors[index]
	if acc == nil {
		return nil, fmt.Errorf("%w: accessor %d is empty", ErrInvalidAccessor, index)
	}

	encoding := EncodingOf(acc.ComponentType)
	components := ComponentsOf(acc.Type)
	count := int(acc.Count)

	// No buffer view: every element is zero.
	if acc.BufferView == nil {
		if count > MaxZeroElements {
			return nil, fmt.Errorf("%w: accessor %d declares %d zero elements, limit %d",
				ErrAccessorOutOfBounds, index, count, MaxZeroElements)
		}
		return NewZeroAccessorView(count, encoding, components), nil
	}

	viewIdx := int(*acc.BufferView)
	if viewIdx < 0 || viewIdx >= len(doc.BufferViews) || doc.BufferViews[viewIdx] == nil {
		return nil, fmt.Errorf("%w: accessor %d references buffer view %d", ErrInvalidAccessor, index, viewIdx)
	}
	view := doc.BufferViews[viewIdx]

	bufIdx := int(view.Buffer)
	if bufIdx < 0 || bufIdx >= len(doc.Buffers) || doc.Buffers[bufIdx] == nil {
		return nil, fmt.Errorf("%w: buffer view %d references buffer %d", ErrInvalidAccessor, viewIdx, bufIdx)
	}
	data := doc.Buffers[bufIdx].Data

	start := int(view.ByteOffset)
	end := start + int(view.ByteLength)
	if start < 0 || end > len(data) || start > end {
		return nil, fmt.Errorf("%w: buffer view %d spans [%d,%d) of %d bytes",
			ErrAccessorOutOfBounds, viewIdx, start, end, len(data))
	}
	region := data[start:end]

	offset := int(acc.ByteOffset)
	if offset < 0 || offset > len(region) {
		return nil, fmt.Errorf("%w: accessor %d offset %d exceeds view length %d",
			ErrAccessorOutOfBounds, index, offset, len(region))
	}

	v := NewAccessorView(region[offset:], int(view.ByteStride), count, encoding, components)
	if need := v.byteSpan(); need > len(v.data) {
		return nil, fmt.Errorf("%w: accessor %d declares %d elements needing %d bytes, view has %d",
			ErrAccessorOutOfBounds, index, count, need, len(v.data))
	}
	return v, nil
}
