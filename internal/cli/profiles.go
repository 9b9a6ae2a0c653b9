package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvcrn/restream-cli/internal/restream"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Create OBS profiles for upcoming events",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	a := newApp()
	ctx := cmd.Context()

	cfg, err := a.Store.Load()
	if err != nil {
		return err
	}
	if cfg.ProfilePath == "" {
		return fmt.Errorf("profile path not configured, run `restream-cli config` first")
	}

	// Start from a fresh token so profile creation doesn't trip over an
	// expired session halfway through.
	if err := a.Exchanger.Refresh(ctx); err != nil {
		return err
	}

	report, err := a.Client.FetchKeys(ctx, restream.FailFast)
	if err != nil {
		return err
	}

	return a.Materializer(cfg.ProfilePath).CreateAll(report.Records)
}
