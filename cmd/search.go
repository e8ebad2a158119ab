package cmd

import (
	"context"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search accounts by login or display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, sess *directory.Session) error {
			accounts, err := directory.SearchAccounts(ctx, sess, args[0])
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println("no accounts matched")
				return nil
			}
			for _, a := range accounts {
				state := "enabled"
				if !a.Enabled {
					state = "disabled"
				}
				fmt.Printf("%-24s %-32s %-9s %s\n", a.LoginName, a.DisplayName, state, a.DN)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
