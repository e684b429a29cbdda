package authorization

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotABase indicates a URL that cannot be used as a base URL, as is the
	// case for non-hierarchical URLs such as mailto: and data: URLs.
	ErrNotABase = errors.New("URL is not a base URL")

	// ErrEmptySessionState indicates an attempt to set an empty session state.
	ErrEmptySessionState = errors.New("session state must be at least 1 byte")

	// ErrCodeVerifierLength indicates a code verifier outside the 32 to 96
	// byte policy bounds.
	ErrCodeVerifierLength = errors.New("code verifier must be between 32 and 96 bytes")

	// ErrCodeMissing indicates the `code` query parameter is missing from the
	// callback URL.
	ErrCodeMissing = errors.New("the `code` query parameter is missing from the callback URL")

	// ErrStateMissing indicates the `state` query parameter is missing from
	// the callback URL.
	ErrStateMissing = errors.New("the `state` query parameter is missing from the callback URL")
)

// LoginError is the provider's stated reason from the callback URL's `error`
// query parameter.
type LoginError struct {
	Reason string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("the callback URL contained an `error` query parameter: %q", e.Reason)
}

// StateMismatchError indicates the callback `state` query parameter doesn't
// match the session state from the pending authorization.
type StateMismatchError struct {
	Expected string
	Received string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf(
		"the `state` query parameter in the callback URL doesn't match the state from the authorize URL, expected %q, but received %q",
		e.Expected, e.Received,
	)
}

// URLMismatchError indicates the callback URL doesn't match the callback URL
// the pending authorization was built with.
type URLMismatchError struct {
	Expected string
	Received string
}

func (e *URLMismatchError) Error() string {
	return fmt.Sprintf(
		"the callback URL doesn't match the authorize URL, expected %q, but received %q",
		e.Expected, e.Received,
	)
}

// CallbackURLError marks a malformed authorise callback URL. All wrapped
// conditions are recoverable by the user starting the login over; none
// indicate a defect.
type CallbackURLError struct {
	Err error
}

func (e *CallbackURLError) Error() string { return e.Err.Error() }

func (e *CallbackURLError) Unwrap() error { return e.Err }

// IsCallbackURLError reports whether err originates from callback URL
// validation, distinguishing caller-fixable errors (retry the login) from
// transport errors.
func IsCallbackURLError(err error) bool {
	var cbErr *CallbackURLError
	return errors.As(err, &cbErr)
}
