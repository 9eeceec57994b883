package model

import "unsafe"

// Vertex is one interleaved vertex: position, color and texture coordinate.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
	TexCoord [2]float32
}

// VertexSize is the byte stride of Vertex in a vertex buffer.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// IndexSize is the byte stride of one normalized index.
const IndexSize = 4

// DefaultColor is substituted for every vertex; assets carry no color source.
var DefaultColor = [3]float32{1, 1, 1}

// VertexFormat identifies an attribute's data layout. Values match the
// corresponding VkFormat enumerants.
type VertexFormat uint32

// Vertex attribute formats.
const (
	FormatR32G32Sfloat    VertexFormat = 103
	FormatR32G32B32Sfloat VertexFormat = 106
)

// Components returns the float count of the format.
func (f VertexFormat) Components() int {
	switch f {
	case FormatR32G32Sfloat:
		return 2
	case FormatR32G32B32Sfloat:
		return 3
	default:
		return 0
	}
}

// InputRate selects per-vertex or per-instance attribute stepping.
type InputRate uint32

// Input rates.
const (
	InputRateVertex   InputRate = 0
	InputRateInstance InputRate = 1
)

// VertexBinding describes the buffer binding the vertex stream reads from.
type VertexBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate InputRate
}

// VertexAttribute describes one shader input inside a binding.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   VertexFormat
	Offset   uint32
}

// VertexBindingDescription returns the binding layout for Vertex.
func VertexBindingDescription() VertexBinding {
	return VertexBinding{
		Binding:   0,
		Stride:    uint32(VertexSize),
		InputRate: InputRateVertex,
	}
}

// VertexAttributeDescriptions returns position, color and texCoord at
// locations 0, 1 and 2.
func VertexAttributeDescriptions() [3]VertexAttribute {
	return [3]VertexAttribute{
		{
			Location: 0,
			Binding:  0,
			Format:   FormatR32G32B32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Position)),
		},
		{
			Location: 1,
			Binding:  0,
			Format:   FormatR32G32B32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
		{
			Location: 2,
			Binding:  0,
			Format:   FormatR32G32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.TexCoord)),
		},
	}
}
