package glgpu

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
)

func TestUsageHint(t *testing.T) {
	tests := []struct {
		name  string
		props gpu.MemoryProperty
		want  uint32
	}{
		{"staging", gpu.MemoryHostVisible | gpu.MemoryHostCoherent, gl.STREAM_DRAW},
		{"device local", gpu.MemoryDeviceLocal, gl.STATIC_DRAW},
		{"none", 0, gl.STATIC_DRAW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usageHint(tt.props); got != tt.want {
				t.Errorf("usageHint(%#x) = %#x, want %#x", tt.props, got, tt.want)
			}
		})
	}
}

func TestMapUnknownBuffer(t *testing.T) {
	d := New()
	if _, err := d.MapMemory(42, 16); err == nil {
		t.Error("expected error mapping unknown buffer")
	}
	if d.Live() != 0 {
		t.Errorf("Live = %d, want 0", d.Live())
	}
}

// fakeErrors replaces getError with a queue of codes for the test.
func fakeErrors(t *testing.T, codes ...uint32) *[]uint32 {
	t.Helper()
	queue := append([]uint32(nil), codes...)
	orig := getError
	getError = func() uint32 {
		if len(queue) == 0 {
			return gl.NO_ERROR
		}
		code := queue[0]
		queue = queue[1:]
		return code
	}
	t.Cleanup(func() { getError = orig })
	return &queue
}

func TestCheckError(t *testing.T) {
	tests := []struct {
		name    string
		codes   []uint32
		wantErr bool
	}{
		{"clean", nil, false},
		{"one", []uint32{gl.INVALID_VALUE}, true},
		{"several", []uint32{gl.INVALID_VALUE, gl.INVALID_OPERATION, gl.OUT_OF_MEMORY}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := fakeErrors(t, tt.codes...)
			err := checkError("glBufferData")
			if (err != nil) != tt.wantErr {
				t.Errorf("checkError() = %v, wantErr %v", err, tt.wantErr)
			}
			if len(*queue) != 0 {
				t.Errorf("%d error flags left pending", len(*queue))
			}
		})
	}
}

func TestClearErrorsBeforeCheck(t *testing.T) {
	// Errors raised before the checked call must not be blamed on it.
	fakeErrors(t, gl.INVALID_ENUM, gl.INVALID_OPERATION)

	clearErrors("CreateBuffer")
	if err := checkError("glBufferData"); err != nil {
		t.Errorf("checkError after clearErrors = %v, want nil", err)
	}
}

func TestPendingErrorsBounded(t *testing.T) {
	orig := getError
	getError = func() uint32 { return gl.CONTEXT_LOST }
	t.Cleanup(func() { getError = orig })

	if got := len(pendingErrors()); got != maxPendingErrors {
		t.Errorf("pendingErrors returned %d codes, want %d", got, maxPendingErrors)
	}
}
