// Package memory stores payload snapshots in-memory for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Archive stores snapshots in a map and returns pseudo URIs.
type Archive struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates a new in-memory archive.
func New() *Archive {
	return &Archive{data: make(map[string][]byte)}
}

// PutObject stores the content and returns a memory:// URI.
func (a *Archive) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[path] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", path), nil
}

// Object returns the stored content for path.
func (a *Archive) Object(path string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.data[path]
	return data, ok
}
