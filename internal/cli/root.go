// Package cli implements the restream-cli command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dvcrn/restream-cli/internal/app"
	"github.com/dvcrn/restream-cli/internal/credentials"
	"github.com/dvcrn/restream-cli/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "restream-cli",
	Short:         "Retrieves stream keys from Restream events and adds them to OBS profiles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default: XDG config dir)")
}

// Execute runs the command tree. The caller decides the exit code.
func Execute() error {
	return rootCmd.Execute()
}

func newApp() *app.App {
	path := configPath
	if path == "" {
		path = credentials.DefaultConfigPath()
	}
	log := logger.New()
	if !credentials.FileExists(path) {
		log.Debug().Str("path", path).Msg("no config file yet, run `restream-cli config`")
	}
	a := app.New(path, log)
	a.LogTokenStatus()
	return a
}
