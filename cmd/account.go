package cmd

import (
	"context"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <dn>",
	Short: "Enable a disabled account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <dn>",
	Short: "Disable an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func setEnabled(cmd *cobra.Command, dn string, enabled bool) error {
	return withSession(cmd, func(ctx context.Context, sess *directory.Session) error {
		if err := directory.SetEnabled(ctx, sess, dn, enabled); err != nil {
			return err
		}
		state := "enabled"
		if !enabled {
			state = "disabled"
		}
		fmt.Printf("%s %s\n", state, dn)
		return nil
	})
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}
