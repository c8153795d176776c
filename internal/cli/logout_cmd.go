package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Session == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			acc, err := a.account()
			if err != nil {
				return err
			}
			logoutErr := acc.Logout(cmd.Context())
			// The local session is dropped even when the server already
			// considers it expired.
			if err := a.forget(); err != nil {
				return err
			}
			if logoutErr != nil {
				return logoutErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
