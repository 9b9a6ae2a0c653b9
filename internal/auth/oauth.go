package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dvcrn/restream-cli/internal/credentials"
)

const (
	// AuthorizeURL is the Restream consent page.
	AuthorizeURL = "https://api.restream.io/login"
	// TokenURL is the Restream token endpoint for both grant types.
	TokenURL = "https://api.restream.io/oauth/token"
	// RedirectURI is the redirect registered with the Restream developer
	// portal; it must match the local callback listener exactly.
	RedirectURI = "http://localhost:3000/oauth"
	// State is the anti-CSRF state sent with the authorization request and
	// required back on the redirect.
	State = "TMPCLI"

	// LoginTimeout bounds how long the flow waits for the user to finish
	// the browser consent.
	LoginTimeout = 5 * time.Minute

	// tokenExpiryBuffer treats tokens about to lapse as already expired.
	tokenExpiryBuffer = time.Minute

	defaultHTTPTimeout = 30 * time.Second
)

// AuthError means the code exchange or token refresh itself failed. It is
// terminal: the resilient client never retries past it.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TokenExpired reports whether a stored expiry (epoch seconds) has lapsed
// or is about to.
func TokenExpired(expiresAt int64) bool {
	return time.Now().Unix() >= expiresAt-int64(tokenExpiryBuffer.Seconds())
}

// tokenResponse is the Restream token endpoint payload. Expiry arrives as
// an absolute epoch, not the usual expires_in delta.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"accessTokenExpiresEpoch"`
}

// Exchanger converts authorization codes and refresh tokens into fresh
// token triples and persists them. Refreshes are deduplicated through a
// singleflight group so concurrent callers share one provider round trip
// instead of racing on the stored triple.
type Exchanger struct {
	// TokenURL and AuthorizeURL default to the Restream endpoints; tests
	// point them at a fake provider.
	TokenURL     string
	AuthorizeURL string

	// CallbackPort defaults to the registered port. Browser opens the
	// consent URL and is replaceable in tests.
	CallbackPort int
	Browser      func(url string) error

	store      *credentials.Store
	httpClient *http.Client
	logger     zerolog.Logger
	group      singleflight.Group
}

// NewExchanger creates an exchanger bound to the given store.
func NewExchanger(store *credentials.Store, logger zerolog.Logger) *Exchanger {
	return &Exchanger{
		TokenURL:     TokenURL,
		AuthorizeURL: AuthorizeURL,
		CallbackPort: CallbackPort,
		Browser:      OpenBrowser,
		store:        store,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		logger:       logger,
	}
}

// ExchangeCode redeems a single-use authorization code for a token triple
// and persists it. The code is never re-submitted on failure.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) error {
	cfg, err := e.store.Load()
	if err != nil {
		return err
	}
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {RedirectURI},
	}
	if err := e.exchange(ctx, form); err != nil {
		return &AuthError{Op: "code exchange", Err: err}
	}
	return nil
}

// Refresh exchanges the stored refresh token for a new triple. Concurrent
// calls collapse into a single provider request.
func (e *Exchanger) Refresh(ctx context.Context) error {
	_, err, _ := e.group.Do("refresh", func() (interface{}, error) {
		return nil, e.refresh(ctx)
	})
	return err
}

func (e *Exchanger) refresh(ctx context.Context) error {
	cfg, err := e.store.Load()
	if err != nil {
		return err
	}
	if cfg.RefreshToken == "" {
		return &AuthError{Op: "refresh", Err: fmt.Errorf("no refresh token stored, run `restream-cli login` first")}
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"refresh_token": {cfg.RefreshToken},
	}
	if err := e.exchange(ctx, form); err != nil {
		return &AuthError{Op: "refresh", Err: err}
	}
	e.logger.Info().Msg("access token refreshed")
	return nil
}

// exchange posts a grant to the token endpoint and persists the resulting
// triple in one write.
func (e *Exchanger) exchange(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return fmt.Errorf("token response missing access or refresh token")
	}

	return e.store.SetTokens(tok.AccessToken, tok.RefreshToken, tok.ExpiresAt)
}

// Login runs the authorization-code flow end to end: start the local
// callback listener, send the user's browser to the consent page, wait for
// the single redirect, verify the state, and redeem the code.
func (e *Exchanger) Login(ctx context.Context) error {
	cfg, err := e.store.Load()
	if err != nil {
		return err
	}
	if !cfg.HasClient() {
		return &AuthError{Op: "login", Err: fmt.Errorf("client credentials not configured, run `restream-cli config` first")}
	}

	ctx, cancel := context.WithTimeout(ctx, LoginTimeout)
	defer cancel()

	srv := NewCallbackServer(e.CallbackPort)
	if err := srv.Start(ctx); err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	defer srv.Stop()

	authURL := fmt.Sprintf("%s?%s", e.AuthorizeURL, url.Values{
		"response_type": {"code"},
		"client_id":     {cfg.ClientID},
		"redirect_uri":  {RedirectURI},
		"state":         {State},
	}.Encode())

	e.logger.Info().Msg("opening browser for Restream consent")
	if err := e.Browser(authURL); err != nil {
		return &AuthError{Op: "login", Err: err}
	}

	result, err := srv.Wait(ctx)
	if err != nil {
		return &AuthError{Op: "login", Err: fmt.Errorf("waiting for callback: %w", err)}
	}
	if result.IsError() {
		return &AuthError{Op: "login", Err: fmt.Errorf("authorization failed: %s %s", result.Error, result.ErrorDescription)}
	}
	if result.State != State {
		// Possible CSRF; the code is untrusted and never exchanged.
		e.logger.Warn().Msg("callback state mismatch, discarding authorization code")
		return &AuthError{Op: "login", Err: fmt.Errorf("state mismatch on OAuth callback")}
	}

	if err := e.ExchangeCode(ctx, result.Code); err != nil {
		return err
	}
	e.logger.Info().Msg("logged in successfully")
	return nil
}
