package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/app"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	var (
		root        string
		links       bool
		disappeared bool
		audit       bool
	)

	cmd := &cobra.Command{
		Use:   "check [flags] [package...]",
		Short: "Check package integrity",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, mode := range []bool{links, disappeared, audit} {
				if mode {
					modes++
				}
			}
			if modes == 0 {
				return zerr.New("option missing")
			}
			if modes > 1 {
				return zerr.New("too many options")
			}

			verbose, _ := cmd.Flags().GetCount("verbose")
			return c.app.Check(app.CheckOptions{
				Root:        root,
				Links:       links || audit,
				Disappeared: disappeared || audit,
				Verbose:     verbose,
				Packages:    args,
			})
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "specify an alternate root directory")
	cmd.Flags().BoolVarP(&links, "links", "l", false, "check symlinks")
	cmd.Flags().BoolVarP(&disappeared, "disappeared", "d", false, "check for disappeared files")
	cmd.Flags().BoolVarP(&audit, "audit", "a", false, "run all checks")
	cmd.Flags().CountP("verbose", "v", "increase verbosity")

	return cmd
}
