package store

import (
	"encoding/json"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-memory Store implementation, scoped to the lifetime of the
// process. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// Insert stores a key-value pair, returning the raw previous value if one existed.
func (m *Memory) Insert(key, value any) (json.RawMessage, error) {
	k, err := encodeKey(key)
	if err != nil {
		return nil, err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var previous json.RawMessage
	if prev, ok := m.items[k]; ok {
		previous = json.RawMessage(prev)
	}
	m.items[k] = string(v)
	return previous, nil
}

// Get deserializes the value stored under key into value.
func (m *Memory) Get(key, value any) (bool, error) {
	k, err := encodeKey(key)
	if err != nil {
		return false, err
	}

	m.mu.RLock()
	stored, ok := m.items[k]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(stored), value); err != nil {
		return false, &SerializationError{Err: err}
	}
	return true, nil
}

// Remove clears the value stored under key, deserializing it into value.
// The value is left in place if it cannot be deserialized into value.
func (m *Memory) Remove(key, value any) (bool, error) {
	k, err := encodeKey(key)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[k]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(stored), value); err != nil {
		return false, &SerializationError{Err: err}
	}
	delete(m.items, k)
	return true, nil
}
