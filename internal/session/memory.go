package session

import "sync"

// Memory is an in-process Persistence with no durability. Used by tests and
// by embedders that do not want state on disk.
type Memory struct {
	mu    sync.Mutex
	pairs map[string]string
}

var _ Persistence = (*Memory)(nil)

// NewMemory returns an empty in-memory persistence.
func NewMemory() *Memory {
	return &Memory{pairs: make(map[string]string)}
}

func (m *Memory) Save(pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.pairs[k] = v
	}
	return nil
}

func (m *Memory) Load() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.pairs))
	for k, v := range m.pairs {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = make(map[string]string)
	return nil
}

func (m *Memory) Close() error { return nil }
