package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/app"
)

func (c *CLI) newQueryCmd() *cobra.Command {
	var (
		root      string
		footprint string
		list      string
		owner     string
		installed bool
	)

	cmd := &cobra.Command{
		Use:   "query [flags]",
		Short: "Display software package information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := app.QueryOptions{Root: root}

			modes := 0
			if footprint != "" {
				modes++
				opts.Mode = app.QueryFootprint
				opts.Arg = footprint
			}
			if installed {
				modes++
				opts.Mode = app.QueryInstalled
			}
			if list != "" {
				modes++
				opts.Mode = app.QueryList
				opts.Arg = list
			}
			if owner != "" {
				modes++
				opts.Mode = app.QueryOwner
				opts.Arg = owner
			}

			if modes == 0 {
				return zerr.New("option missing")
			}
			if modes > 1 {
				return zerr.New("too many options")
			}

			return c.app.Query(opts)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "specify an alternate root directory")
	cmd.Flags().StringVarP(&footprint, "footprint", "f", "", "print the footprint of a package archive")
	cmd.Flags().BoolVarP(&installed, "installed", "i", false, "list installed packages and their versions")
	cmd.Flags().StringVarP(&list, "list", "l", "", "list files owned by an installed package or contained in an archive")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "list packages that own files matching a pattern")

	return cmd
}
