package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.account()
			if err != nil {
				return err
			}
			p, err := acc.Profile(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.remember(cmd.Context(), acc); err != nil {
				return err
			}

			expires := "-"
			if p.Expires > 0 {
				expires = time.Unix(p.Expires, 0).UTC().Format(time.RFC3339)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Username:\t%s\n", acc.Username())
			fmt.Fprintf(w, "Email:\t%s\n", p.Email)
			fmt.Fprintf(w, "Files:\t%d\n", p.FilesCount)
			fmt.Fprintf(w, "Storage:\t%s\n", p.Storage)
			fmt.Fprintf(w, "Premium:\t%t\n", p.Premium)
			fmt.Fprintf(w, "Expires:\t%s\n", expires)
			fmt.Fprintf(w, "Codes:\t%d\n", p.Codes)
			return w.Flush()
		},
	}
}
