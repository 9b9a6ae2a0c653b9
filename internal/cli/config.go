package cli

import (
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Set client credentials and the OBS profile directory",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	clientID, err := (&promptui.Prompt{
		Label: "Client Id from the Restream Developer Portal",
	}).Run()
	if err != nil {
		return err
	}

	clientSecret, err := (&promptui.Prompt{
		Label: "Client Secret from the Restream Developer Portal",
		Mask:  '*',
	}).Run()
	if err != nil {
		return err
	}

	profilePath, err := (&promptui.Prompt{
		Label: "Path to the directory where your OBS profiles live",
	}).Run()
	if err != nil {
		return err
	}

	a := newApp()
	if err := a.Store.SetClient(clientID, clientSecret, profilePath); err != nil {
		return err
	}

	// New credentials invalidate any stored session, so log in right away.
	return a.Exchanger.Login(cmd.Context())
}
