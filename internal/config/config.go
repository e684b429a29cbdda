// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds everything the login flow needs from the environment.
type Config struct {
	// ClientID is the Spotify application client ID.
	ClientID string `env:"SPOTIFY_CLIENT_ID,required"`

	// Origin is the origin this application is served from. The identity
	// provider redirects back to Origin + CallbackPath.
	Origin string `env:"APP_ORIGIN" envDefault:"http://localhost:8080"`

	// CallbackPath is the path the identity provider redirects back to.
	CallbackPath string `env:"CALLBACK_PATH" envDefault:"authorised"`

	// Port is the local port the callback server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// AccountsURL is the Spotify accounts service base URL. Overridable for
	// testing against a fake provider.
	AccountsURL string `env:"SPOTIFY_ACCOUNTS_URL" envDefault:"https://accounts.spotify.com"`

	// APIURL is the Spotify Web API base URL.
	APIURL string `env:"SPOTIFY_API_URL" envDefault:"https://api.spotify.com/v1"`

	AppName string `env:"APP_NAME" envDefault:"Spotify Login"`
	Env     string `env:"ENV" envDefault:"DEV"`
}

// New parses the configuration from environment variables.
func New() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.New] parsing environment")
	}
	return cfg, nil
}

// ListenAddr returns the address the callback server listens on.
func (c Config) ListenAddr() string {
	if len(c.Port) > 0 && c.Port[0] == ':' {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// OriginURL parses the configured application origin.
func (c Config) OriginURL() (*url.URL, error) {
	origin, err := url.Parse(c.Origin)
	if err != nil {
		return nil, errors.Wrapf(err, "[config.OriginURL] invalid origin %q", c.Origin)
	}
	return origin, nil
}

// TokenEndpoint returns the token endpoint under the accounts service.
func (c Config) TokenEndpoint() (*url.URL, error) {
	accounts, err := url.Parse(c.AccountsURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[config.TokenEndpoint] invalid accounts URL %q", c.AccountsURL)
	}
	return accounts.JoinPath("api", "token"), nil
}

// APIEndpoint parses the configured Web API base URL.
func (c Config) APIEndpoint() (*url.URL, error) {
	apiURL, err := url.Parse(c.APIURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[config.APIEndpoint] invalid API URL %q", c.APIURL)
	}
	return apiURL, nil
}
