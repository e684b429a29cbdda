package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-spotify-auth/store"
)

type sessionKey struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
}

type sessionValue struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

func TestMemory_InsertGet(t *testing.T) {
	t.Run("round trips a structured key and value", func(t *testing.T) {
		s := store.NewMemory()
		key := sessionKey{Kind: "session", ID: 7}

		previous, err := s.Insert(key, sessionValue{State: "pending", Count: 3})
		require.NoError(t, err)
		require.Nil(t, previous)

		var value sessionValue
		found, err := s.Get(key, &value)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, sessionValue{State: "pending", Count: 3}, value)
	})

	t.Run("distinct keys do not collide", func(t *testing.T) {
		s := store.NewMemory()
		_, err := s.Insert(sessionKey{Kind: "session", ID: 1}, sessionValue{State: "first"})
		require.NoError(t, err)
		_, err = s.Insert(sessionKey{Kind: "session", ID: 2}, sessionValue{State: "second"})
		require.NoError(t, err)

		var value sessionValue
		found, err := s.Get(sessionKey{Kind: "session", ID: 1}, &value)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "first", value.State)
	})

	t.Run("reinserting returns the raw previous value", func(t *testing.T) {
		s := store.NewMemory()
		key := sessionKey{Kind: "session", ID: 7}

		_, err := s.Insert(key, sessionValue{State: "first", Count: 1})
		require.NoError(t, err)

		previous, err := s.Insert(key, sessionValue{State: "second", Count: 2})
		require.NoError(t, err)
		require.JSONEq(t, `{"state":"first","count":1}`, string(previous))

		var value sessionValue
		found, err := s.Get(key, &value)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "second", value.State)
	})

	t.Run("missing key", func(t *testing.T) {
		s := store.NewMemory()
		var value sessionValue
		found, err := s.Get(sessionKey{Kind: "session", ID: 404}, &value)
		require.NoError(t, err)
		require.False(t, found)
	})
}

func TestMemory_Remove(t *testing.T) {
	t.Run("removes exactly once", func(t *testing.T) {
		s := store.NewMemory()
		key := sessionKey{Kind: "session", ID: 7}
		_, err := s.Insert(key, sessionValue{State: "pending"})
		require.NoError(t, err)

		var value sessionValue
		found, err := s.Remove(key, &value)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "pending", value.State)

		found, err = s.Remove(key, &value)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("undeserializable value stays stored", func(t *testing.T) {
		s := store.NewMemory()
		key := sessionKey{Kind: "session", ID: 7}
		_, err := s.Insert(key, sessionValue{State: "pending"})
		require.NoError(t, err)

		var wrongShape int
		_, removeErr := s.Remove(key, &wrongShape)
		var serErr *store.SerializationError
		require.ErrorAs(t, removeErr, &serErr)

		var value sessionValue
		found, err := s.Get(key, &value)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "pending", value.State)
	})
}

func TestMemory_SerializationErrors(t *testing.T) {
	t.Run("unserializable key", func(t *testing.T) {
		s := store.NewMemory()
		_, err := s.Insert(make(chan int), sessionValue{})
		var serErr *store.SerializationError
		require.ErrorAs(t, err, &serErr)
		require.Error(t, serErr.Unwrap())
	})

	t.Run("unserializable value", func(t *testing.T) {
		s := store.NewMemory()
		_, err := s.Insert(sessionKey{Kind: "session"}, make(chan int))
		var serErr *store.SerializationError
		require.ErrorAs(t, err, &serErr)
	})

	t.Run("undeserializable value on get", func(t *testing.T) {
		s := store.NewMemory()
		key := sessionKey{Kind: "session", ID: 7}
		_, err := s.Insert(key, sessionValue{State: "pending"})
		require.NoError(t, err)

		var wrongShape int
		_, getErr := s.Get(key, &wrongShape)
		var serErr *store.SerializationError
		require.ErrorAs(t, getErr, &serErr)
	})
}
