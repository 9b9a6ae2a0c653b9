package cli

import (
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Restream and store the session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Exchanger.Login(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
