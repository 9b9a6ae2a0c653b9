package credentials

import (
	"github.com/caarlos0/env/v11"
)

// envOverrides lets CI or scripted use inject the OAuth app credentials
// without touching the config file.
type envOverrides struct {
	ClientID     string `env:"RESTREAM_CLIENT_ID"`
	ClientSecret string `env:"RESTREAM_CLIENT_SECRET"`
	ProfilePath  string `env:"RESTREAM_PROFILE_PATH"`
}

func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}
	if o.ClientID != "" {
		cfg.ClientID = o.ClientID
	}
	if o.ClientSecret != "" {
		cfg.ClientSecret = o.ClientSecret
	}
	if o.ProfilePath != "" {
		cfg.ProfilePath = o.ProfilePath
	}
	return nil
}
