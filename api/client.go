// Package api makes authenticated requests to the Spotify Web API, refreshing
// the held access token transparently when it would expire before a request is
// expected to complete.
package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-spotify-auth/authorization"
	"github.com/jrsteele09/go-spotify-auth/request"
)

// Endpoint is the Spotify Web API base URL.
const Endpoint = "https://api.spotify.com/v1"

// Client wraps exactly one access token and guarantees every outgoing call
// carries a currently-valid bearer credential.
//
// Requests are serialized through the credential: a validity check, any
// refresh it triggers, and the send complete before the next request observes
// the credential's state, so a refresh never races with use.
type Client struct {
	mu        sync.Mutex
	token     *authorization.AccessToken
	exchanger *authorization.Exchanger
	client    *http.Client
	endpoint  *url.URL
}

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithExchanger sets the exchanger used to refresh the access token.
func WithExchanger(exchanger *authorization.Exchanger) Option {
	return func(c *Client) {
		c.exchanger = exchanger
	}
}

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint *url.URL) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// New creates a Client taking ownership of the given access token.
func New(token *authorization.AccessToken, options ...Option) *Client {
	apiEndpoint, err := url.Parse(Endpoint)
	if err != nil {
		panic("api: invalid endpoint: " + err.Error())
	}
	client := &Client{
		token:     token,
		exchanger: authorization.NewExchanger(),
		client:    http.DefaultClient,
		endpoint:  apiEndpoint,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Token returns the held access token, which may have been replaced by a
// refresh since the Client was created. Use it to persist the credential.
func (c *Client) Token() *authorization.AccessToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// URL returns the API base URL with the given path segments appended.
func (c *Client) URL(segments ...string) *url.URL {
	return c.endpoint.JoinPath(segments...)
}

// Do makes an authorised request to the API and deserializes the JSON
// response into R. expectedDuration is the time the request is expected to
// take; a token that would expire within it is refreshed before the request
// is sent.
//
// A failed refresh leaves the prior token in place and surfaces the refresh
// error; the request is not sent with a credential known to be stale.
func Do[R any](ctx context.Context, c *Client, build request.BuildFunc, expectedDuration time.Duration) (R, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.token.IsValidFor(expectedDuration) {
		refreshed, err := c.exchanger.Refresh(ctx, c.token)
		if err != nil {
			var zero R
			return zero, errors.Wrap(err, "[api.Do] refreshing access token")
		}
		c.token = refreshed
	}

	return request.Do[R](ctx, c.client, func(ctx context.Context) (*http.Request, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token.String())
		return req, nil
	})
}
