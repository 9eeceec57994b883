package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
)

func TestIndexGLType(t *testing.T) {
	tests := []struct {
		in      gpu.IndexType
		want    uint32
		wantErr bool
	}{
		{gpu.IndexUint16, gl.UNSIGNED_SHORT, false},
		{gpu.IndexUint32, gl.UNSIGNED_INT, false},
		{gpu.IndexType(9), 0, true},
	}
	for _, tt := range tests {
		got, err := indexGLType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("indexGLType(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("indexGLType(%v) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestAspect(t *testing.T) {
	r := &Renderer{config: Config{Width: 1280, Height: 720}}
	if got := r.Aspect(); got != float32(1280)/float32(720) {
		t.Errorf("Aspect = %f", got)
	}

	r.config.Height = 0
	if got := r.Aspect(); got != 1 {
		t.Errorf("Aspect with zero height = %f, want 1", got)
	}
}
