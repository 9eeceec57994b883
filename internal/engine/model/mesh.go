package model

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/alwayssomewhattired/Vulkan/pkg/formats"
)

// Mesh building errors.
var (
	ErrEmptyAsset                 = errors.New("asset has no meshes")
	ErrNoMeshReferenced           = errors.New("no scene node references a mesh")
	ErrUnsupportedAttributeFormat = errors.New("unsupported attribute format")
	ErrUnsupportedIndexType       = errors.New("unsupported index component type")
)

// BuildMesh normalizes the first primitive of the selected mesh into
// 32-bit indexed vertices. Only POSITION and TEXCOORD_0 are read; every
// vertex gets DefaultColor.
func BuildMesh(glb *formats.GLB) (*Mesh, error) {
	doc := glb.Doc
	if len(doc.Meshes) == 0 {
		return nil, ErrEmptyAsset
	}

	_, meshIdx, err := SelectMeshNode(doc)
	if err != nil {
		return nil, err
	}

	mesh := doc.Meshes[meshIdx]
	if mesh == nil || len(mesh.Primitives) == 0 || mesh.Primitives[0] == nil {
		return nil, fmt.Errorf("%w: mesh %d has no primitives", ErrNoMeshReferenced, meshIdx)
	}
	prim := mesh.Primitives[0]

	vertices, bounds, err := readPositions(glb, prim)
	if err != nil {
		return nil, err
	}

	if err := readTexCoords(glb, prim, vertices); err != nil {
		return nil, err
	}

	indices, width, err := readIndices(glb, prim, len(vertices))
	if err != nil {
		return nil, err
	}

	return &Mesh{
		Vertices:         vertices,
		Indices:          indices,
		SourceIndexWidth: width,
		Bounds:           bounds,
	}, nil
}

// SelectMeshNode scans the root nodes of the default scene (scene 0 when
// the document names none) and returns the last node that references a
// mesh, together with that mesh index. Later nodes override earlier ones.
func SelectMeshNode(doc *gltf.Document) (node, mesh int, err error) {
	if len(doc.Scenes) == 0 {
		return -1, -1, fmt.Errorf("%w: document has no scenes", ErrNoMeshReferenced)
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) || doc.Scenes[sceneIdx] == nil {
		return -1, -1, fmt.Errorf("%w: default scene %d not present", formats.ErrDecode, sceneIdx)
	}

	node, mesh = -1, -1
	for _, n := range doc.Scenes[sceneIdx].Nodes {
		nodeIdx := int(n)
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return -1, -1, fmt.Errorf("%w: scene %d references node %d of %d",
				formats.ErrDecode, sceneIdx, nodeIdx, len(doc.Nodes))
		}
		nd := doc.Nodes[nodeIdx]
		if nd == nil || nd.Mesh == nil || int(*nd.Mesh) < 0 {
			continue
		}
		node, mesh = nodeIdx, int(*nd.Mesh)
	}

	if mesh < 0 {
		return -1, -1, fmt.Errorf("%w: scene %d", ErrNoMeshReferenced, sceneIdx)
	}
	if mesh >= len(doc.Meshes) {
		return -1, -1, fmt.Errorf("%w: node %d references mesh %d of %d",
			formats.ErrDecode, node, mesh, len(doc.Meshes))
	}
	return node, mesh, nil
}

func readPositions(glb *formats.GLB, prim *gltf.Primitive) ([]Vertex, Bounds, error) {
	accIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, Bounds{}, fmt.Errorf("%w: primitive has no POSITION attribute", ErrUnsupportedAttributeFormat)
	}

	view, err := glb.Accessor(int(accIdx))
	if err != nil {
		return nil, Bounds{}, fmt.Errorf("%w: POSITION: %w", formats.ErrDecode, err)
	}
	if view.Encoding != formats.EncodingFloat32 || view.Components != 3 {
		return nil, Bounds{}, fmt.Errorf("%w: POSITION is %s x%d, want float32 x3",
			ErrUnsupportedAttributeFormat, view.Encoding, view.Components)
	}

	vertices := make([]Vertex, view.Count)
	if len(vertices) == 0 {
		return vertices, Bounds{}, nil
	}

	var bounds Bounds
	var p [3]float32
	for i := range vertices {
		if err := view.Floats(i, p[:]); err != nil {
			return nil, Bounds{}, fmt.Errorf("%w: POSITION: %w", formats.ErrDecode, err)
		}
		vertices[i] = Vertex{Position: p, Color: DefaultColor}
		if i == 0 {
			bounds = Bounds{Min: p, Max: p}
		}
		updateBounds(&bounds, p)
	}

	return vertices, bounds, nil
}

// readTexCoords fills TexCoord with V flipped to a bottom-left origin.
// Vertices past the accessor's count keep (0,0).
func readTexCoords(glb *formats.GLB, prim *gltf.Primitive, vertices []Vertex) error {
	accIdx, ok := prim.Attributes[gltf.TEXCOORD_0]
	if !ok {
		return nil
	}

	view, err := glb.Accessor(int(accIdx))
	if err != nil {
		return fmt.Errorf("%w: TEXCOORD_0: %w", formats.ErrDecode, err)
	}
	if view.Encoding != formats.EncodingFloat32 || view.Components != 2 {
		return fmt.Errorf("%w: TEXCOORD_0 is %s x%d, want float32 x2",
			ErrUnsupportedAttributeFormat, view.Encoding, view.Components)
	}

	n := min(len(vertices), view.Count)
	var uv [2]float32
	for i := 0; i < n; i++ {
		if err := view.Floats(i, uv[:]); err != nil {
			return fmt.Errorf("%w: TEXCOORD_0: %w", formats.ErrDecode, err)
		}
		vertices[i].TexCoord = [2]float32{uv[0], 1 - uv[1]}
	}
	return nil
}

// readIndices widens 8- and 16-bit indices to 32 bits. A primitive without
// indices is drawn in vertex order.
func readIndices(glb *formats.GLB, prim *gltf.Primitive, vertexCount int) ([]uint32, IndexWidth, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, IndexWidth32, nil
	}

	accIdx := int(*prim.Indices)
	var width IndexWidth
	if accIdx >= 0 && accIdx < len(glb.Doc.Accessors) && glb.Doc.Accessors[accIdx] != nil {
		var err error
		if width, err = indexWidth(glb.Doc.Accessors[accIdx]); err != nil {
			return nil, 0, err
		}
	}

	view, err := glb.Accessor(accIdx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: indices: %w", formats.ErrDecode, err)
	}

	indices := make([]uint32, view.Count)
	for i := range indices {
		idx, err := view.Uint(i)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: indices: %w", formats.ErrDecode, err)
		}
		indices[i] = idx
	}
	return indices, width, nil
}

// indexWidth checks the declared index format before any bytes are read.
func indexWidth(acc *gltf.Accessor) (IndexWidth, error) {
	if acc.Type != gltf.AccessorScalar {
		return 0, fmt.Errorf("%w: index accessor is %s", ErrUnsupportedIndexType, acc.Type)
	}
	switch enc := formats.EncodingOf(acc.ComponentType); enc {
	case formats.EncodingUint8:
		return IndexWidth8, nil
	case formats.EncodingUint16:
		return IndexWidth16, nil
	case formats.EncodingUint32:
		return IndexWidth32, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedIndexType, enc)
	}
}
