package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "reset-password <dn>",
	Short: "Reset the password of an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := NewFlagLoader(cmd)
		newSecret := f.String("new-password")
		if newSecret == "" {
			return errors.New("new password is required (--new-password)")
		}

		return withSession(cmd, func(ctx context.Context, sess *directory.Session) error {
			if err := directory.ResetPassword(ctx, sess, args[0], newSecret); err != nil {
				return err
			}
			fmt.Printf("password reset for %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)

	passwdCmd.Flags().String("new-password", "", "New password for the account")
}
