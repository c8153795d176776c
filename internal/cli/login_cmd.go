package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and store the session in the config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] != a.cfg.Username {
				a.cfg.Username = args[0]
				a.cfg.Session = ""
			}
			if a.cfg.Username == "" {
				return fmt.Errorf("username required")
			}
			password, err := a.password()
			if err != nil {
				return err
			}
			acc := a.client.NewAccount(a.cfg.Username, password)
			if err := acc.Login(cmd.Context()); err != nil {
				return err
			}
			if err := a.remember(cmd.Context(), acc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", acc.Username())
			return nil
		},
	}
}
