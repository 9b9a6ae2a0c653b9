package restream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvcrn/restream-cli/internal/auth"
	"github.com/dvcrn/restream-cli/internal/credentials"
)

// DefaultBaseURL is the Restream API host.
const DefaultBaseURL = "https://api.restream.io"

const defaultHTTPTimeout = 30 * time.Second

// TokenRefresher mints a new token triple into the credential store.
// Satisfied by *auth.Exchanger.
type TokenRefresher interface {
	Refresh(ctx context.Context) error
}

// Client issues authenticated Restream API calls. On an invalid_token
// response it refreshes the token exactly once and retries the call once;
// every other failure is surfaced as-is. The bounded retry keeps a broken
// credential from turning into an infinite refresh loop.
type Client struct {
	// BaseURL defaults to the Restream API; tests point it at a fake.
	BaseURL string

	store      *credentials.Store
	refresher  TokenRefresher
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client reading tokens from store and refreshing
// through refresher.
func NewClient(store *credentials.Store, refresher TokenRefresher, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		store:      store,
		refresher:  refresher,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
}

// get issues an authenticated GET and decodes the JSON response into out,
// refreshing and retrying at most once on invalid_token.
func (c *Client) get(ctx context.Context, path string, out any) error {
	cfg, err := c.store.Load()
	if err != nil {
		return err
	}

	err = c.send(ctx, path, cfg.AccessToken, out)

	var perr *ProviderError
	if !errors.As(err, &perr) || !perr.InvalidToken() {
		return err
	}

	c.logger.Warn().Str("path", path).Msg("access token rejected, refreshing")
	if err := c.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after invalid token: %w", err)
	}

	cfg, err = c.store.Load()
	if err != nil {
		return err
	}

	// A second invalid_token here is terminal auth failure; no further
	// refresh attempts.
	if err := c.send(ctx, path, cfg.AccessToken, out); err != nil {
		if errors.As(err, &perr) && perr.InvalidToken() {
			return &auth.AuthError{Op: "retry after refresh", Err: err}
		}
		return err
	}
	c.logger.Debug().Str("path", path).Msg("request succeeded after token refresh")
	return nil
}

func (c *Client) send(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseProviderError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func parseProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Name == "" {
		return &ProviderError{Status: resp.StatusCode, Name: "unknown", Message: string(body)}
	}
	return &ProviderError{
		Status:  resp.StatusCode,
		Name:    envelope.Error.Name,
		Message: envelope.Error.Message,
	}
}
