// Package assets resolves asset paths against search roots.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when a path exists in no search root.
var ErrNotFound = errors.New("asset not found")

// Manager loads asset files from the filesystem. File contents are never
// retained: every Load reads the current bytes from disk.
type Manager struct {
	roots []string
	mu    sync.RWMutex
}

// NewManager creates a new asset manager with no search roots. Paths are
// then resolved relative to the working directory only.
func NewManager() *Manager {
	return &Manager{}
}

// AddRoot adds a directory to search for relative paths.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding asset root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding asset root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	return nil
}

// Resolve returns the filesystem path for name. Absolute paths and paths
// that exist relative to the working directory are used as is.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		p := filepath.Join(m.roots[i], name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads the current contents of the file for name.
func (m *Manager) Load(name string) ([]byte, error) {
	path, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}
	return data, nil
}

// Close drops all search roots.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
}
