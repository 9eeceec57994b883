// Package debug provides debug visualization and capture utilities.
package debug

import (
	"github.com/alwayssomewhattired/Vulkan/internal/engine/model"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BoundsColor is the default wireframe color.
var BoundsColor = [3]float32{1, 0.8, 0.1}

// BoundsWireframe returns line-list vertices outlining b, expanded by
// padding on every side.
func BoundsWireframe(b model.Bounds, padding float32, color [3]float32) []model.Vertex {
	minX, minY, minZ := b.Min[0]-padding, b.Min[1]-padding, b.Min[2]-padding
	maxX, maxY, maxZ := b.Max[0]+padding, b.Max[1]+padding, b.Max[2]+padding

	corners := [8][3]float32{
		{minX, minY, minZ}, {maxX, minY, minZ}, {maxX, minY, maxZ}, {minX, minY, maxZ},
		{minX, maxY, minZ}, {maxX, maxY, minZ}, {maxX, maxY, maxZ}, {minX, maxY, maxZ},
	}
	edges := [12][2]int{
		// Bottom face
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		// Top face
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		// Vertical edges
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	verts := make([]model.Vertex, 0, BBoxWireframeVertexCount)
	for _, e := range edges {
		verts = append(verts,
			model.Vertex{Position: corners[e[0]], Color: color},
			model.Vertex{Position: corners[e[1]], Color: color},
		)
	}
	return verts
}
