// Command spotify-login runs the OAuth 2.0 authorization code + PKCE flow end
// to end: it opens the browser at the authorisation URL, receives the provider
// callback on a local server, exchanges the code for an access token, and
// makes an authenticated call to the Web API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/skratchdot/open-golang/open"

	"github.com/jrsteele09/go-spotify-auth/api"
	"github.com/jrsteele09/go-spotify-auth/authorization"
	"github.com/jrsteele09/go-spotify-auth/internal/config"
	"github.com/jrsteele09/go-spotify-auth/store"
)

const profileRequestDuration = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running spotify-login: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return err
	}
	displayAppname(cfg.AppName)

	logger := newLogger(cfg)
	flow, err := newLoginFlow(cfg, logger)
	if err != nil {
		return err
	}

	authorizeURL, err := flow.start()
	if err != nil {
		return err
	}
	logger.Info().Str("url", authorizeURL.String()).Msg("opening browser for authorisation")
	if err := open.Run(authorizeURL.String()); err != nil {
		logger.Warn().Err(err).Msg("could not open browser, navigate to the URL manually")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/"+cfg.CallbackPath, flow.handleCallback)
	server := &http.Server{Addr: cfg.ListenAddr(), Handler: mux}

	go listenAndServe(server, logger)
	waitForStopSignal(flow.done)
	return shutdown(server)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("callback server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal(done <-chan struct{}) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-done:
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func newLogger(cfg config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

// loginFlow carries one authorisation attempt from browser redirect to
// authenticated API call.
type loginFlow struct {
	cfg       config.Config
	logger    zerolog.Logger
	pending   *store.Memory
	exchanger *authorization.Exchanger
	done      chan struct{}
}

func newLoginFlow(cfg config.Config, logger zerolog.Logger) (*loginFlow, error) {
	tokenEndpoint, err := cfg.TokenEndpoint()
	if err != nil {
		return nil, err
	}
	return &loginFlow{
		cfg:       cfg,
		logger:    logger.With().Str("attempt_id", uuid.New().String()).Logger(),
		pending:   store.NewMemory(),
		exchanger: authorization.NewExchanger(authorization.WithTokenEndpoint(tokenEndpoint)),
		done:      make(chan struct{}),
	}, nil
}

// start builds and persists the pending authorization and returns the URL the
// user must authorise at.
func (f *loginFlow) start() (*url.URL, error) {
	origin, err := f.cfg.OriginURL()
	if err != nil {
		return nil, err
	}

	pending, err := authorization.New(f.cfg.ClientID, origin)
	if err != nil {
		return nil, err
	}
	if err := pending.SetCallbackURL(origin.JoinPath(f.cfg.CallbackPath)); err != nil {
		return nil, err
	}

	authorizeURL := pending.AuthorizeURL(
		authorization.ScopeUserReadPrivate,
		authorization.ScopeUserReadEmail,
	)
	if err := authorization.SavePending(f.pending, pending); err != nil {
		return nil, err
	}
	return authorizeURL, nil
}

func (f *loginFlow) handleCallback(w http.ResponseWriter, r *http.Request) {
	defer close(f.done)

	pending, err := authorization.TakePending(f.pending)
	if err != nil {
		f.fail(w, err)
		return
	}

	origin, err := f.cfg.OriginURL()
	if err != nil {
		f.fail(w, err)
		return
	}
	callbackURL := origin.JoinPath(r.URL.Path)
	callbackURL.RawQuery = r.URL.RawQuery

	token, err := f.exchanger.ExchangeCallback(r.Context(), pending, callbackURL)
	if err != nil {
		if authorization.IsCallbackURLError(err) {
			f.logger.Warn().Err(err).Msg("callback rejected, start the login over")
		}
		f.fail(w, err)
		return
	}
	f.logger.Info().
		Str("scope", token.Scope().String()).
		Time("expires_at", token.ExpiresAt()).
		Msg("access token granted")

	profile, err := f.fetchProfile(r.Context(), token)
	if err != nil {
		f.fail(w, err)
		return
	}
	f.logger.Info().Str("display_name", profile.DisplayName).Str("id", profile.ID).Msg("authenticated")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Authorised as %s. You can close this tab.\n", profile.DisplayName)
}

type userProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func (f *loginFlow) fetchProfile(ctx context.Context, token *authorization.AccessToken) (userProfile, error) {
	apiEndpoint, err := f.cfg.APIEndpoint()
	if err != nil {
		return userProfile{}, err
	}
	client := api.New(token,
		api.WithExchanger(f.exchanger),
		api.WithEndpoint(apiEndpoint),
	)

	return api.Do[userProfile](ctx, client, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, client.URL("me").String(), nil)
	}, profileRequestDuration)
}

func (f *loginFlow) fail(w http.ResponseWriter, err error) {
	f.logger.Error().Err(err).Msg("authorisation failed")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Authorisation failed: %s\n", err)
}
