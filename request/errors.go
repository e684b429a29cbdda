package request

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response, with the raw body retained when one was
// returned.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP error: %d", e.StatusCode)
	if text := http.StatusText(e.StatusCode); text != "" {
		msg += ", " + text
	}
	if e.Body != "" {
		msg += "\nBody:\n" + e.Body
	}
	return msg
}

// DecodeError is a response body that could not be deserialized. The raw body
// is retained for diagnostics.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("deserialization error, %v in %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error { return e.Err }
