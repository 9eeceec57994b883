package model

import "testing"

func TestVertexSize(t *testing.T) {
	if VertexSize != 32 {
		t.Errorf("expected 32-byte vertex, got %d", VertexSize)
	}
}

func TestVertexEquality(t *testing.T) {
	a := Vertex{Position: [3]float32{1, 2, 3}, Color: DefaultColor, TexCoord: [2]float32{0.5, 0.5}}
	b := a
	if a != b {
		t.Error("identical vertices should compare equal")
	}

	b.TexCoord[1] = 0.25
	if a == b {
		t.Error("vertices with different texCoord should differ")
	}

	c := a
	c.Color = [3]float32{1, 0, 0}
	if a == c {
		t.Error("vertices with different color should differ")
	}
}

func TestVertexBindingDescription(t *testing.T) {
	b := VertexBindingDescription()
	if b.Binding != 0 {
		t.Errorf("expected binding 0, got %d", b.Binding)
	}
	if b.Stride != 32 {
		t.Errorf("expected stride 32, got %d", b.Stride)
	}
	if b.InputRate != InputRateVertex {
		t.Errorf("expected per-vertex input rate, got %d", b.InputRate)
	}
}

func TestVertexAttributeDescriptions(t *testing.T) {
	attrs := VertexAttributeDescriptions()

	expected := []struct {
		location uint32
		format   VertexFormat
		offset   uint32
	}{
		{0, FormatR32G32B32Sfloat, 0},
		{1, FormatR32G32B32Sfloat, 12},
		{2, FormatR32G32Sfloat, 24},
	}

	for i, exp := range expected {
		a := attrs[i]
		if a.Location != exp.location || a.Format != exp.format || a.Offset != exp.offset || a.Binding != 0 {
			t.Errorf("attribute %d: got %+v, want location=%d format=%d offset=%d",
				i, a, exp.location, exp.format, exp.offset)
		}
	}

	if attrs[2].Format.Components() != 2 || attrs[0].Format.Components() != 3 {
		t.Error("unexpected component counts for attribute formats")
	}
}
