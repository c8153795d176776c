package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "edit email|password <value>",
		Short:     "Change the account e-mail or password",
		Args:      cobra.MatchAll(cobra.ExactArgs(2), validEditKey),
		ValidArgs: []string{"email", "password"},
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.account()
			if err != nil {
				return err
			}
			if err := acc.EditField(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if err := a.remember(cmd.Context(), acc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}
}

func validEditKey(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "email", "password":
		return nil
	default:
		return fmt.Errorf("unknown field %q: expected email or password", args[0])
	}
}
