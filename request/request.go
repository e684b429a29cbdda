// Package request wraps the HTTP transport for consistent error handling.
// Callers supply a request-building function and receive either a deserialized
// typed body or a typed error distinguishing endpoint, decoding, and transport
// failures.
package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// BuildFunc constructs the outgoing request. The provided context must be
// attached to the request so callers can abandon an in-flight call.
type BuildFunc func(ctx context.Context) (*http.Request, error)

// Do executes the built request and deserializes a JSON response body into R.
//
// Non-2xx responses are returned as a *StatusError with the raw body retained,
// undecodable bodies as a *DecodeError, and lower-level failures as the
// transport's own error.
func Do[R any](ctx context.Context, client *http.Client, build BuildFunc) (R, error) {
	var body R

	req, err := build(ctx)
	if err != nil {
		return body, errors.Wrap(err, "[request.Do] building request")
	}
	req.Header.Set("Accept", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return body, err
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return body, err
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return body, &StatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		var zero R
		return zero, &DecodeError{Err: err, Body: string(raw)}
	}
	return body, nil
}
