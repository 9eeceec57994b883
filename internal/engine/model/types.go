// Package model normalizes decoded GLB geometry into GPU-ready vertex and
// index sequences.
package model

import (
	"fmt"
	"unsafe"
)

// IndexWidth is the index bit width an asset declared for its primitive.
type IndexWidth uint8

// Index widths.
const (
	IndexWidth8  IndexWidth = 8
	IndexWidth16 IndexWidth = 16
	IndexWidth32 IndexWidth = 32
)

// String returns the width as "uintN".
func (w IndexWidth) String() string {
	return fmt.Sprintf("uint%d", uint8(w))
}

// Mesh holds the normalized mesh data ready for GPU upload.
// Indices are always 32-bit regardless of SourceIndexWidth.
type Mesh struct {
	Vertices         []Vertex
	Indices          []uint32
	SourceIndexWidth IndexWidth
	Bounds           Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh positions.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// VertexBytes returns the vertex sequence as raw bytes, sharing storage.
func (m *Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*VertexSize)
}

// IndexBytes returns the index sequence as raw bytes, sharing storage.
func (m *Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*IndexSize)
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
