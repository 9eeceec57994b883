package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestManagerLoadAbsolute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.glb")
	writeFile(t, path, []byte("abc"))

	m := NewManager()
	data, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("Load = %q, want %q", data, "abc")
	}
}

func TestManagerRootPriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeFile(t, filepath.Join(low, "models", "cube.glb"), []byte("low"))
	writeFile(t, filepath.Join(high, "models", "cube.glb"), []byte("high"))
	writeFile(t, filepath.Join(low, "models", "only-low.glb"), []byte("only"))

	m := NewManager()
	if err := m.AddRoot(low); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}
	if err := m.AddRoot(high); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"models/cube.glb", "high"},
		{"models/only-low.glb", "only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := m.Load(tt.name)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Load = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestManagerNotFound(t *testing.T) {
	m := NewManager()
	if err := m.AddRoot(t.TempDir()); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}

	_, err := m.Load("missing/nothing.glb")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = m.Load(filepath.Join(t.TempDir(), "gone.glb"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absolute path, got %v", err)
	}
}

func TestManagerAddRootErrors(t *testing.T) {
	m := NewManager()
	if err := m.AddRoot(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, nil)
	if err := m.AddRoot(file); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestManagerLoadRereads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.glb")
	writeFile(t, path, []byte("v1"))

	m := NewManager()
	if data, err := m.Load(path); err != nil || string(data) != "v1" {
		t.Fatalf("Load = %q, %v, want v1", data, err)
	}

	writeFile(t, path, []byte("v2"))
	data, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("expected v2 after rewrite, got %q", data)
	}
}

func TestManagerClose(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cube.glb"), []byte("cube"))

	m := NewManager()
	if err := m.AddRoot(root); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	if _, err := m.Load("cube.glb"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	m.Close()

	if _, err := m.Load("cube.glb"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Close = %v, want ErrNotFound", err)
	}
}
