package authorization

import (
	"net/url"
	"strings"
)

// ValidateCallback checks the redirect URL received from the identity provider
// against the pending authorization, returning the validated authorization
// code.
//
// Checks run in order, short-circuiting on the first failure:
//
//  1. an `error` query parameter fails with LoginError, regardless of state
//  2. a missing `state` parameter fails with ErrStateMissing
//  3. a `state` parameter that differs from the persisted session state fails
//     with StateMismatchError
//  4. a missing `code` parameter fails with ErrCodeMissing
//  5. a URL that doesn't start with the persisted callback URL fails with
//     URLMismatchError
//
// Provider-asserted errors are surfaced first so they aren't masked behind a
// spurious state mismatch when the provider also omits or alters `state` on
// error. The URL check is last because it is the most permissive, tolerating
// trailing path segments. All failures are wrapped in *CallbackURLError.
func ValidateCallback(pending *PendingAuthorization, callbackURL *url.URL) (string, error) {
	query := callbackURL.Query()

	if query.Has("error") {
		return "", &CallbackURLError{Err: &LoginError{Reason: query.Get("error")}}
	}

	if !query.Has("state") {
		return "", &CallbackURLError{Err: ErrStateMissing}
	}
	if received := query.Get("state"); received != pending.sessionState {
		return "", &CallbackURLError{Err: &StateMismatchError{
			Expected: pending.sessionState,
			Received: received,
		}}
	}

	if !query.Has("code") {
		return "", &CallbackURLError{Err: ErrCodeMissing}
	}
	code := query.Get("code")

	if !strings.HasPrefix(callbackURL.String(), pending.callbackURL.String()) {
		return "", &CallbackURLError{Err: &URLMismatchError{
			Expected: pending.callbackURL.String(),
			Received: callbackURL.String(),
		}}
	}

	return code, nil
}
