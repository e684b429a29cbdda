// Package store provides durable-enough key-value storage for carrying
// authorization flow state across a redirect to the identity provider and back.
// Keys and values are structured data serialized to and from JSON strings.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAccessDenied indicates the backing storage refused access.
	ErrAccessDenied = errors.New("store access denied")

	// ErrStorageFull indicates the backing storage has no room for the value.
	ErrStorageFull = errors.New("store is full")

	// ErrUnknown indicates an undocumented storage failure.
	ErrUnknown = errors.New("unknown store error")
)

// SerializationError reports a key or value that could not be serialized into,
// or deserialized out of, the store.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("store serialization error: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Store is a generic key-value storage API. Implementations must serialize keys
// and values to strings, so any JSON-serializable type can be stored.
type Store interface {
	// Insert stores a key-value pair.
	// Returns the raw previous value if one existed, otherwise nil.
	Insert(key, value any) (previous json.RawMessage, err error)

	// Get deserializes the value stored under key into value.
	// Returns false if no value is stored under key.
	Get(key, value any) (bool, error)

	// Remove clears the value stored under key, deserializing it into value.
	// Returns false if no value was stored under key.
	Remove(key, value any) (bool, error)
}

func encodeKey(key any) (string, error) {
	b, err := json.Marshal(key)
	if err != nil {
		return "", &SerializationError{Err: err}
	}
	return string(b), nil
}
