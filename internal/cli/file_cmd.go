package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

func newFileInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "file-info <file_id> <info_token>",
		Short: "Show the metadata of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := a.client.NewFile(args[0], args[1])
			name, err := f.Name(ctx)
			if err != nil {
				return err
			}
			size, _ := f.Size(ctx)
			sum, _ := f.SHA1(ctx)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", f.FileID())
			fmt.Fprintf(w, "Name:\t%s\n", name)
			fmt.Fprintf(w, "Size:\t%d\n", size)
			fmt.Fprintf(w, "SHA1:\t%s\n", sum)
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file_id> <delete_token>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.client.NewFile(args[0], "", bay.WithDeleteToken(args[1]))
			if err := f.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", f.FileID())
			return nil
		},
	}
}
