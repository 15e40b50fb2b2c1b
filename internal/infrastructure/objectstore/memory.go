package objectstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Facturo-api/internal/application/storage"
)

var _ storage.ObjectStore = (*MemoryStore)(nil)

// MemoryStore guarda los objetos en memoria. Solo para desarrollo y tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore construye el store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func key(bucket, path string) string { return bucket + "/" + path }

// Upload guarda una copia de data.
func (m *MemoryStore) Upload(_ context.Context, bucket, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(bucket, path)
	if _, ok := m.objects[k]; ok {
		return fmt.Errorf("objectstore: %s ya existe", k)
	}
	m.objects[k] = append([]byte(nil), data...)
	return nil
}

// Download devuelve el objeto o storage.ErrObjectNotFound.
func (m *MemoryStore) Download(_ context.Context, bucket, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key(bucket, path)]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete borra los objetos indicados; los inexistentes se ignoran.
func (m *MemoryStore) Delete(_ context.Context, bucket string, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, key(bucket, p))
	}
	return nil
}

// SignedURL devuelve una URL ficticia con esquema memory://.
func (m *MemoryStore) SignedURL(_ context.Context, bucket, path string, _ int) (string, error) {
	return "memory://" + key(bucket, path), nil
}

// Len número de objetos guardados.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
