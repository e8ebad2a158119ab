package cmd

import (
	"context"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check-access",
	Short: "Verify the operator's credentials and group membership",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDirectoryConfig(cmd)
		if err != nil {
			return err
		}
		identifier, secret, err := operatorCredentials(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), dirTimeout)
		defer cancel()

		gate := directory.NewGate(&directory.Opener{Config: cfg})
		res := gate.Authenticate(ctx, identifier, secret)
		if !res.Granted {
			return errLoginFailed
		}
		fmt.Printf("access granted for %s\n", res.Identifier)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
