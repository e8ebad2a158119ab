package cmd

import (
	"context"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var ousCmd = &cobra.Command{
	Use:   "ous",
	Short: "List organizational units available for provisioning",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, sess *directory.Session) error {
			ous, err := directory.ListOrgUnits(ctx, sess)
			if err != nil {
				return err
			}
			for _, ou := range ous {
				fmt.Printf("%-32s %s\n", ou.Name, ou.DN)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ousCmd)
}
