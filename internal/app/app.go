// Package app wires the credential store, token exchanger, API client, and
// profile materializer together for the CLI commands.
package app

import (
	"github.com/rs/zerolog"

	"github.com/dvcrn/restream-cli/internal/auth"
	"github.com/dvcrn/restream-cli/internal/credentials"
	"github.com/dvcrn/restream-cli/internal/profile"
	"github.com/dvcrn/restream-cli/internal/restream"
)

// App holds the wired components. One App is built per CLI invocation and
// passed by reference; there is no ambient singleton state.
type App struct {
	Log       zerolog.Logger
	Store     *credentials.Store
	Exchanger *auth.Exchanger
	Client    *restream.Client
}

// New builds an App on top of the config file at configPath.
func New(configPath string, log zerolog.Logger) *App {
	store := credentials.NewStore(configPath)
	exchanger := auth.NewExchanger(store, log)
	client := restream.NewClient(store, exchanger, log)

	return &App{
		Log:       log,
		Store:     store,
		Exchanger: exchanger,
		Client:    client,
	}
}

// Materializer builds the profile materializer for the configured profile
// directory.
func (a *App) Materializer(profilePath string) *profile.Materializer {
	return profile.NewMaterializer(profilePath, a.Log)
}

// LogTokenStatus logs expiry diagnostics for the stored token, if any.
func (a *App) LogTokenStatus() {
	cfg, err := a.Store.Load()
	if err != nil {
		a.Log.Warn().Err(err).Msg("could not read credential store")
		return
	}
	if cfg.AccessToken == "" {
		a.Log.Debug().Msg("no access token stored")
		return
	}
	if auth.TokenExpired(cfg.ExpiresAt) {
		a.Log.Debug().Int64("expired_at", cfg.ExpiresAt).
			Msg("access token expired, will refresh on first rejected call")
		return
	}
	a.Log.Debug().Int64("expires_at", cfg.ExpiresAt).Msg("access token still valid")
}
