package commands

import (
	"github.com/spf13/cobra"

	"go.pakt.dev/pakt/internal/app"
)

func (c *CLI) newRemoveCmd() *cobra.Command {
	var opts app.RemoveOptions

	cmd := &cobra.Command{
		Use:   "remove [flags] package",
		Short: "Remove an installed software package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Package = args[0]
			opts.Verbose, _ = cmd.Flags().GetCount("verbose")
			return c.app.Remove(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Root, "root", "r", "", "specify an alternate root directory")
	cmd.Flags().CountP("verbose", "v", "explain what is being done")

	return cmd
}
