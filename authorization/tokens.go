package authorization

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-spotify-auth/request"
)

const (
	grantTypeAuthorizationCode = "authorization_code"
	grantTypeRefreshToken      = "refresh_token"
	codeChallengeMethodS256    = "S256"

	// supportedTokenType is the single token type the token endpoint may
	// return.
	supportedTokenType = "Bearer"
)

// AccessToken is the credential used to make authorised requests to the API.
// It tracks its own expiry; the bearer secret itself is never serialized.
type AccessToken struct {
	token        string
	expiresAt    time.Time
	scope        Scopes
	refreshToken string
	clientID     string
}

// String returns the bearer secret.
func (t *AccessToken) String() string { return t.token }

// ExpiresAt returns the absolute time at which this token expires.
func (t *AccessToken) ExpiresAt() time.Time { return t.expiresAt }

// Scope returns the scopes actually granted to this token.
func (t *AccessToken) Scope() Scopes { return t.scope }

// IsValidFor checks if the token will remain valid for the given lookahead
// window. Otherwise the token will expire sometime within it.
func (t *AccessToken) IsValidFor(lookahead time.Duration) bool {
	return t.isValidFor(lookahead, time.Now)
}

func (t *AccessToken) isValidFor(lookahead time.Duration, now func() time.Time) bool {
	return now().Before(t.expiresAt.Add(-lookahead))
}

// MarshalJSON serializes the refresh credentials and granted scopes. The
// bearer secret and its expiry are omitted, so a restored token is expired and
// refreshes on first use.
func (t *AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(accessTokenJSON{
		Scope: t.scope,
		RefreshToken: refreshTokenJSON{
			Token:    t.refreshToken,
			ClientID: t.clientID,
		},
	})
}

// UnmarshalJSON restores a persisted token with no bearer secret and an
// already-passed expiry.
func (t *AccessToken) UnmarshalJSON(data []byte) error {
	var snapshot accessTokenJSON
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	t.token = ""
	t.expiresAt = time.Time{}
	t.scope = snapshot.Scope
	t.refreshToken = snapshot.RefreshToken.Token
	t.clientID = snapshot.RefreshToken.ClientID
	return nil
}

type accessTokenJSON struct {
	Scope        Scopes           `json:"scope"`
	RefreshToken refreshTokenJSON `json:"refresh_token"`
}

type refreshTokenJSON struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

// Exchanger trades authorization codes and refresh tokens for access tokens at
// the token endpoint.
type Exchanger struct {
	client   *http.Client
	endpoint *url.URL
	nowTime  func() time.Time
}

// ExchangerOption modifies an Exchanger.
type ExchangerOption func(*Exchanger)

// WithHTTPClient sets the HTTP client used for token endpoint calls.
func WithHTTPClient(client *http.Client) ExchangerOption {
	return func(e *Exchanger) {
		e.client = client
	}
}

// WithTokenEndpoint overrides the token endpoint URL.
func WithTokenEndpoint(endpoint *url.URL) ExchangerOption {
	return func(e *Exchanger) {
		e.endpoint = endpoint
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ExchangerOption {
	return func(e *Exchanger) {
		e.nowTime = nowFunc
	}
}

// NewExchanger creates an Exchanger against the Spotify accounts service.
func NewExchanger(options ...ExchangerOption) *Exchanger {
	exchanger := &Exchanger{
		client:   http.DefaultClient,
		endpoint: accountsURL().JoinPath("api", "token"),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(exchanger)
	}
	return exchanger
}

// tokenType fails deserialization for anything but the single supported
// token type.
type tokenType string

func (t *tokenType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != supportedTokenType {
		return errors.Errorf("unsupported token_type %q", s)
	}
	*t = tokenType(s)
	return nil
}

// expirySeconds is a non-negative number of seconds.
type expirySeconds time.Duration

func (s *expirySeconds) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 0 {
		return errors.Errorf("expires_in must be a non-negative number of seconds, got %d", n)
	}
	*s = expirySeconds(time.Duration(n) * time.Second)
	return nil
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    tokenType     `json:"token_type"`
	Scope        *Scopes       `json:"scope"`
	ExpiresIn    expirySeconds `json:"expires_in"`
	RefreshToken string        `json:"refresh_token"`
}

// ExchangeCallback validates the authorised callback URL against the pending
// authorization and trades the authorization code for an AccessToken,
// consuming the pending state.
//
// Validation failures are *CallbackURLError values; endpoint failures are the
// request package's typed errors. The call fails atomically, no partial
// credential is ever produced.
func (e *Exchanger) ExchangeCallback(ctx context.Context, pending *PendingAuthorization, callbackURL *url.URL) (*AccessToken, error) {
	code, err := ValidateCallback(pending, callbackURL)
	if err != nil {
		return nil, err
	}
	return e.Exchange(ctx, pending, code)
}

// Exchange trades a validated authorization code for an AccessToken.
func (e *Exchanger) Exchange(ctx context.Context, pending *PendingAuthorization, code string) (*AccessToken, error) {
	form := url.Values{}
	form.Set("grant_type", grantTypeAuthorizationCode)
	form.Set("code", code)
	form.Set("redirect_uri", pending.callbackURL.String())
	form.Set("client_id", pending.clientID)
	form.Set("code_verifier", pending.codeVerifier)

	res, err := e.post(ctx, form)
	if err != nil {
		return nil, err
	}

	// The response scope takes precedence; fall back to the scopes that were
	// originally requested if the provider omits it.
	scope := pending.scope
	if res.Scope != nil {
		scope = *res.Scope
	}

	return &AccessToken{
		token:        res.AccessToken,
		expiresAt:    e.nowTime().Add(time.Duration(res.ExpiresIn)),
		scope:        scope,
		refreshToken: res.RefreshToken,
		clientID:     pending.clientID,
	}, nil
}

// Refresh requests a new access token without user interaction. The returned
// token keeps the refresh token, client ID, and scopes of the prior one unless
// the provider reports new values.
func (e *Exchanger) Refresh(ctx context.Context, token *AccessToken) (*AccessToken, error) {
	form := url.Values{}
	form.Set("grant_type", grantTypeRefreshToken)
	form.Set("refresh_token", token.refreshToken)
	form.Set("client_id", token.clientID)

	res, err := e.post(ctx, form)
	if err != nil {
		return nil, err
	}

	refreshed := &AccessToken{
		token:        res.AccessToken,
		expiresAt:    e.nowTime().Add(time.Duration(res.ExpiresIn)),
		scope:        token.scope,
		refreshToken: token.refreshToken,
		clientID:     token.clientID,
	}
	if res.Scope != nil {
		refreshed.scope = *res.Scope
	}
	if res.RefreshToken != "" {
		refreshed.refreshToken = res.RefreshToken
	}
	return refreshed, nil
}

func (e *Exchanger) post(ctx context.Context, form url.Values) (tokenResponse, error) {
	return request.Do[tokenResponse](ctx, e.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint.String(), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}
