package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		anonymous bool
		name      string
	)
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			owner, err := a.uploadOwner(anonymous)
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			f, err := a.client.NewUploader().SendAs(ctx, args[0], name, owner)
			if err != nil {
				return err
			}
			if owner != nil {
				if err := a.remember(ctx, owner); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", f.FileID())
			fmt.Fprintf(w, "Info token:\t%s\n", f.InfoToken())
			fmt.Fprintf(w, "Delete token:\t%s\n", f.DeleteToken())
			fmt.Fprintf(w, "Links:\t%s\n", f.LinksURL())
			fmt.Fprintf(w, "Download:\t%s\n", f.DownloadURL())
			fmt.Fprintf(w, "Delete:\t%s\n", f.DeleteURL())
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "upload without an account")
	cmd.Flags().StringVar(&name, "name", "", "display name (default is the base name of path)")
	return cmd
}

func newUploadURLCmd(a *app) *cobra.Command {
	var anonymous bool
	cmd := &cobra.Command{
		Use:   "upload-url",
		Short: "Request an upload target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.uploadOwner(anonymous)
			if err != nil {
				return err
			}
			u := a.client.NewUploader()
			if err := u.Prepare(cmd.Context(), owner); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upload:   %s\nProgress: %s\n", u.UploadURL(), u.ProgressURL())
			return nil
		},
	}
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "request without an account")
	return cmd
}

func (a *app) uploadOwner(anonymous bool) (*bay.Account, error) {
	if anonymous {
		return nil, nil
	}
	return a.account()
}
