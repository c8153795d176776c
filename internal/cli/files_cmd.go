package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the files stored on the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			acc, err := a.account()
			if err != nil {
				return err
			}
			files, err := acc.Files(ctx)
			if err != nil {
				return err
			}
			if err := a.remember(ctx, acc); err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tINFO TOKEN\tDELETE TOKEN")
			for _, f := range files {
				name, err := f.Name(ctx)
				if err != nil {
					return err
				}
				size, err := f.Size(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", f.FileID(), name, size, f.InfoToken(), f.DeleteToken())
			}
			return w.Flush()
		},
	}
}
