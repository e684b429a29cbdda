// Package authorization implements the OAuth 2.0 Authorization Code flow with
// PKCE against the Spotify accounts service, for clients that cannot hold a
// client secret.
//
// A PendingAuthorization carries the flow state across the redirect to the
// identity provider and back: build it, persist it, navigate to
// AuthorizeURL(), then trade the callback URL for an AccessToken with an
// Exchanger.
package authorization

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// AccountsEndpoint is the Spotify accounts service all authorization
// operations are performed against.
const AccountsEndpoint = "https://accounts.spotify.com"

// DefaultCallbackPath is appended to the application origin when no callback
// URL is configured.
const DefaultCallbackPath = "authorised"

const (
	sessionStateBytes    = 24
	codeVerifierBytes    = 96
	minCodeVerifierBytes = 32
	maxCodeVerifierBytes = 96
)

// PendingAuthorization is the state of one authorization attempt. It is
// created before redirecting to the identity provider and consumed exactly
// once when validating the callback.
type PendingAuthorization struct {
	clientID     string
	callbackURL  *url.URL
	scope        Scopes
	sessionState string
	codeVerifier string
}

// New creates a PendingAuthorization with default values:
// a 32 character cryptographically random session state, a 128 character
// cryptographically random code verifier, and the application origin with
// "/authorised" appended as the callback URL.
//
// Fails with ErrNotABase if origin cannot be used as a base URL.
func New(clientID string, origin *url.URL) (*PendingAuthorization, error) {
	callbackURL, err := baseURL(origin)
	if err != nil {
		return nil, errors.Wrap(err, "[authorization.New] invalid origin")
	}

	sessionState, err := randomToken(sessionStateBytes)
	if err != nil {
		return nil, errors.Wrap(err, "[authorization.New] generating session state")
	}
	codeVerifier, err := randomToken(codeVerifierBytes)
	if err != nil {
		return nil, errors.Wrap(err, "[authorization.New] generating code verifier")
	}

	return &PendingAuthorization{
		clientID:     clientID,
		callbackURL:  callbackURL.JoinPath(DefaultCallbackPath),
		scope:        Scopes{},
		sessionState: sessionState,
		codeVerifier: codeVerifier,
	}, nil
}

// ClientID returns the client identifier the authorization was created with.
func (p *PendingAuthorization) ClientID() string { return p.clientID }

// CallbackURL returns a copy of the URL the identity provider will redirect
// back to.
func (p *PendingAuthorization) CallbackURL() *url.URL {
	callbackURL := *p.callbackURL
	return &callbackURL
}

// Scope returns the scopes requested by the last AuthorizeURL call.
func (p *PendingAuthorization) Scope() Scopes { return p.scope }

// SessionState returns the OAuth state parameter for this attempt.
func (p *PendingAuthorization) SessionState() string { return p.sessionState }

// SetSessionState sets the session state from the given bytes.
// Fails with ErrEmptySessionState, leaving the existing value unchanged, if no
// bytes are provided.
func (p *PendingAuthorization) SetSessionState(state []byte) error {
	if len(state) == 0 {
		return ErrEmptySessionState
	}
	p.sessionState = base64URL(state)
	return nil
}

// SetCodeVerifier sets the code verifier from the given bytes.
// Fails with ErrCodeVerifierLength, leaving the existing value unchanged, if
// fewer than 32 or more than 96 bytes are provided.
func (p *PendingAuthorization) SetCodeVerifier(verifier []byte) error {
	if len(verifier) < minCodeVerifierBytes || len(verifier) > maxCodeVerifierBytes {
		return ErrCodeVerifierLength
	}
	p.codeVerifier = base64URL(verifier)
	return nil
}

// SetCallbackURL sets the callback URL.
// Fails with ErrNotABase, leaving the existing value unchanged, if the URL
// cannot be used as a base URL.
func (p *PendingAuthorization) SetCallbackURL(u *url.URL) error {
	callbackURL, err := baseURL(u)
	if err != nil {
		return err
	}
	p.callbackURL = callbackURL
	return nil
}

// CodeChallenge computes the PKCE challenge for this attempt: the SHA-256
// digest of the code verifier, base64url encoded without padding.
func (p *PendingAuthorization) CodeChallenge() string {
	digest := sha256.Sum256([]byte(p.codeVerifier))
	return base64URL(digest[:])
}

// AuthorizeURL creates the URL for authorising an access token and stores the
// requested scopes into the pending state.
//
// Once authorised, the identity provider redirects the user back to the
// configured callback URL. If scope is empty, authorisation is granted only
// to access publicly available information and the scope parameter is omitted.
func (p *PendingAuthorization) AuthorizeURL(scope ...Scope) *url.URL {
	p.scope = Scopes(scope)

	// url.Values sorts keys, so the query is assembled by hand to keep the
	// documented parameter ordering.
	pairs := [][2]string{
		{"client_id", p.clientID},
		{"response_type", "code"},
		{"redirect_uri", p.callbackURL.String()},
		{"state", p.sessionState},
		{"code_challenge_method", codeChallengeMethodS256},
		{"code_challenge", p.CodeChallenge()},
	}
	if len(p.scope) > 0 {
		pairs = append(pairs, [2]string{"scope", p.scope.String()})
	}

	var query strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(pair[0]))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(pair[1]))
	}

	authorizeURL := accountsURL().JoinPath("authorize")
	authorizeURL.RawQuery = query.String()
	return authorizeURL
}

// MarshalJSON serializes the snapshot persisted across the redirect. The
// access credentials themselves are never part of it.
func (p *PendingAuthorization) MarshalJSON() ([]byte, error) {
	return json.Marshal(pendingJSON{
		ClientID:     p.clientID,
		CallbackURL:  p.callbackURL.String(),
		Scope:        p.scope,
		SessionState: p.sessionState,
		CodeVerifier: p.codeVerifier,
	})
}

// UnmarshalJSON restores a persisted snapshot, re-validating the callback URL
// as a base URL.
func (p *PendingAuthorization) UnmarshalJSON(data []byte) error {
	var snapshot pendingJSON
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	parsed, err := url.Parse(snapshot.CallbackURL)
	if err != nil {
		return errors.Wrapf(err, "invalid callback URL %q", snapshot.CallbackURL)
	}
	callbackURL, err := baseURL(parsed)
	if err != nil {
		return errors.Wrapf(err, "invalid callback URL %q", snapshot.CallbackURL)
	}

	p.clientID = snapshot.ClientID
	p.callbackURL = callbackURL
	p.scope = snapshot.Scope
	p.sessionState = snapshot.SessionState
	p.codeVerifier = snapshot.CodeVerifier
	return nil
}

type pendingJSON struct {
	ClientID     string `json:"client_id"`
	CallbackURL  string `json:"callback_url"`
	Scope        Scopes `json:"scope"`
	SessionState string `json:"session_state"`
	CodeVerifier string `json:"code_verifier"`
}

func accountsURL() *url.URL {
	endpoint, err := url.Parse(AccountsEndpoint)
	if err != nil {
		panic("authorization: invalid accounts endpoint: " + err.Error())
	}
	return endpoint
}

// baseURL returns a copy of u if it can be used as a base URL: absolute,
// hierarchical, and carrying a host. Non-hierarchical URLs (e.g. mailto:)
// fail with ErrNotABase.
func baseURL(u *url.URL) (*url.URL, error) {
	if u == nil || !u.IsAbs() || u.Opaque != "" || u.Host == "" {
		return nil, ErrNotABase
	}
	base := *u
	return &base, nil
}

// base64URL returns the URL safe, unpadded base64 encoding of bytes.
func base64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// randomToken returns n cryptographically random bytes base64url encoded.
// The number of chars returned is ceil(n * 8 / 6).
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64URL(b), nil
}
