package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming events",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a := newApp()
	events, err := a.Client.ListUpcoming(cmd.Context())
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("No upcoming events.")
		return nil
	}
	for _, ev := range events {
		scheduled := time.Unix(ev.ScheduledFor, 0).Format("Jan 2 2006 3:04pm")
		fmt.Printf("%s  %s  (%s)\n", scheduled, ev.Title, ev.ID)
	}
	return nil
}
