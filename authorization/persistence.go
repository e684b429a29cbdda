package authorization

import (
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-spotify-auth/store"
)

// ErrNoPendingAuthorization indicates there is no persisted pending
// authorization to consume, typically because the callback arrived without a
// login being started, or the state was already consumed.
var ErrNoPendingAuthorization = errors.New("no pending authorization found")

// pendingKey is the structured store key the pending authorization state is
// persisted under while the user is away at the identity provider.
type pendingKey struct {
	Kind string `json:"kind"`
}

func newPendingKey() pendingKey {
	return pendingKey{Kind: "pending-authorization"}
}

// SavePending persists the pending authorization so it survives the redirect
// to the identity provider. Saving replaces any earlier, abandoned attempt.
func SavePending(s store.Store, pending *PendingAuthorization) error {
	if _, err := s.Insert(newPendingKey(), pending); err != nil {
		return errors.Wrap(err, "[authorization.SavePending] storing pending authorization")
	}
	return nil
}

// TakePending retrieves and removes the persisted pending authorization,
// consuming it. Fails with ErrNoPendingAuthorization when nothing is stored.
func TakePending(s store.Store) (*PendingAuthorization, error) {
	var pending PendingAuthorization
	found, err := s.Remove(newPendingKey(), &pending)
	if err != nil {
		return nil, errors.Wrap(err, "[authorization.TakePending] removing pending authorization")
	}
	if !found {
		return nil, ErrNoPendingAuthorization
	}
	return &pending, nil
}
