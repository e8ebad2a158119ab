package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/directory"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <given-name> <surname>",
	Short: "Create a new directory account",
	Long: `Create a new account under the chosen organizational unit. The login name
is derived from the given name and surname; the initial password is printed
once for out-of-band delivery and stored nowhere.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := NewFlagLoader(cmd)
		ouDN := f.String("ou")
		if ouDN == "" {
			return errors.New("target organizational unit is required (--ou); use 'adconsole ous' to list them")
		}
		initialSecret := f.String("initial-password")
		if initialSecret == "" {
			return errors.New("initial password is required (--initial-password)")
		}

		return withSession(cmd, func(ctx context.Context, sess *directory.Session) error {
			account, err := directory.CreateAccount(ctx, sess, ouDN, args[0], args[1], initialSecret)
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n", account.DN)
			fmt.Printf("login:    %s\n", account.LoginName)
			fmt.Printf("password: %s\n", account.InitialSecret)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	f := createCmd.Flags()
	f.String("ou", "", "Distinguished name of the target organizational unit")
	f.String("initial-password", "", "Initial password for the new account")
}
