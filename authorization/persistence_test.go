package authorization_test

import (
	"testing"

	"github.com/jrsteele09/go-spotify-auth/authorization"
	"github.com/jrsteele09/go-spotify-auth/store"
	"github.com/stretchr/testify/require"
)

func TestSavePendingTakePending(t *testing.T) {
	t.Run("round trip preserves the pending state", func(t *testing.T) {
		s := store.NewMemory()
		pending := newPendingAuthorization(t, "id")
		pending.AuthorizeURL(authorization.ScopeUserReadEmail)

		require.NoError(t, authorization.SavePending(s, pending))

		taken, err := authorization.TakePending(s)
		require.NoError(t, err)
		require.Equal(t, pending.ClientID(), taken.ClientID())
		require.Equal(t, pending.CallbackURL().String(), taken.CallbackURL().String())
		require.Equal(t, pending.Scope(), taken.Scope())
		require.Equal(t, pending.SessionState(), taken.SessionState())
		require.Equal(t, pending.CodeChallenge(), taken.CodeChallenge())
	})

	t.Run("taking consumes the pending state", func(t *testing.T) {
		s := store.NewMemory()
		require.NoError(t, authorization.SavePending(s, newPendingAuthorization(t, "id")))

		_, err := authorization.TakePending(s)
		require.NoError(t, err)

		_, err = authorization.TakePending(s)
		require.ErrorIs(t, err, authorization.ErrNoPendingAuthorization)
	})

	t.Run("taking from an empty store", func(t *testing.T) {
		_, err := authorization.TakePending(store.NewMemory())
		require.ErrorIs(t, err, authorization.ErrNoPendingAuthorization)
	})

	t.Run("saving replaces an abandoned attempt", func(t *testing.T) {
		s := store.NewMemory()
		require.NoError(t, authorization.SavePending(s, newPendingAuthorization(t, "abandoned")))

		latest := newPendingAuthorization(t, "latest")
		require.NoError(t, authorization.SavePending(s, latest))

		taken, err := authorization.TakePending(s)
		require.NoError(t, err)
		require.Equal(t, "latest", taken.ClientID())
		require.Equal(t, latest.SessionState(), taken.SessionState())
	})
}
