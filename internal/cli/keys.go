package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvcrn/restream-cli/internal/restream"
)

var keysBestEffort bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Fetch stream keys for upcoming events",
	RunE:  runKeys,
}

func init() {
	keysCmd.Flags().BoolVar(&keysBestEffort, "best-effort", false,
		"keep going when a single key fetch fails and report skipped events")
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	a := newApp()

	policy := restream.FailFast
	if keysBestEffort {
		policy = restream.BestEffort
	}

	report, err := a.Client.FetchKeys(cmd.Context(), policy)
	if err != nil {
		return err
	}

	for _, rec := range report.Records {
		fmt.Printf("%s  %s\n  key: %s\n", rec.Date.Format("Jan 2 2006 3:04pm"), rec.Title, rec.Key)
	}
	for _, skipped := range report.Skipped {
		fmt.Printf("skipped %s (%s): %v\n", skipped.Title, skipped.ID, skipped.Err)
	}
	return nil
}
