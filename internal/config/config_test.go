package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-spotify-auth/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "some-client-id")

		cfg, err := config.New()
		require.NoError(t, err)
		require.Equal(t, "some-client-id", cfg.ClientID)
		require.Equal(t, "http://localhost:8080", cfg.Origin)
		require.Equal(t, "authorised", cfg.CallbackPath)
		require.Equal(t, "8080", cfg.Port)
		require.Equal(t, "https://accounts.spotify.com", cfg.AccountsURL)
		require.Equal(t, "https://api.spotify.com/v1", cfg.APIURL)
		require.Equal(t, "DEV", cfg.Env)
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		require.NoError(t, os.Unsetenv("SPOTIFY_CLIENT_ID"))

		_, err := config.New()
		require.Error(t, err)
		require.Contains(t, err.Error(), "SPOTIFY_CLIENT_ID")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "some-client-id")
		t.Setenv("APP_ORIGIN", "http://localhost:9999")
		t.Setenv("CALLBACK_PATH", "callback")
		t.Setenv("PORT", "9999")
		t.Setenv("SPOTIFY_ACCOUNTS_URL", "http://localhost:7777")

		cfg, err := config.New()
		require.NoError(t, err)
		require.Equal(t, "http://localhost:9999", cfg.Origin)
		require.Equal(t, "callback", cfg.CallbackPath)
		require.Equal(t, "9999", cfg.Port)
		require.Equal(t, "http://localhost:7777", cfg.AccountsURL)
	})
}

func TestConfig_ListenAddr(t *testing.T) {
	require.Equal(t, ":8080", config.Config{Port: "8080"}.ListenAddr())
	require.Equal(t, ":8080", config.Config{Port: ":8080"}.ListenAddr())
}

func TestConfig_URLs(t *testing.T) {
	cfg := config.Config{
		Origin:      "http://localhost:8080",
		AccountsURL: "https://accounts.spotify.com",
		APIURL:      "https://api.spotify.com/v1",
	}

	origin, err := cfg.OriginURL()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", origin.String())

	tokenEndpoint, err := cfg.TokenEndpoint()
	require.NoError(t, err)
	require.Equal(t, "https://accounts.spotify.com/api/token", tokenEndpoint.String())

	apiEndpoint, err := cfg.APIEndpoint()
	require.NoError(t, err)
	require.Equal(t, "https://api.spotify.com/v1", apiEndpoint.String())
}
