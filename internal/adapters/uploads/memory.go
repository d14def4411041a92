package uploads

import (
	"context"
	"io"
	"sync"
)

// Memory keeps uploads in a map. Tests only.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key, _, data, err := prepare(filename, r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data

	return "/uploads/" + key, nil
}

// Len reports how many blobs were stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
