package storage

import (
	"context"
	"sync"

	"audioscribe/internal/model"
)

// Memory is an in-process Uploader. Fail, when set, is consulted before each
// write with the 1-based call number and may return an error to inject.
type Memory struct {
	Bucket string
	Fail   func(call int) error

	mu      sync.Mutex
	calls   int
	objects map[string][]byte
	types   map[string]string
}

// NewMemory returns an empty in-memory bucket.
func NewMemory(bucket string) *Memory {
	return &Memory{
		Bucket:  bucket,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Upload(_ context.Context, key, contentType string, data []byte) (model.StoredObjectRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Fail != nil {
		if err := m.Fail(m.calls); err != nil {
			return model.StoredObjectRef{}, err
		}
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	m.types[key] = contentType
	return model.StoredObjectRef{Bucket: m.Bucket, Key: key}, nil
}

// Calls returns how many writes were attempted.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Object returns a copy of a stored object and its content type.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, m.types[key], true
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ Uploader = (*Memory)(nil)
