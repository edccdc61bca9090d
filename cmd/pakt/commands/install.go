package commands

import (
	"github.com/spf13/cobra"

	"go.pakt.dev/pakt/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	var opts app.InstallOptions

	cmd := &cobra.Command{
		Use:   "install [flags] file",
		Short: "Install or upgrade a software package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Archive = args[0]
			opts.Verbose, _ = cmd.Flags().GetCount("verbose")
			return c.app.Install(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Root, "root", "r", "", "specify an alternate root directory")
	cmd.Flags().StringVarP(&opts.Conf, "config", "c", "", "specify an alternate configuration file")
	cmd.Flags().BoolVarP(&opts.Upgrade, "upgrade", "u", false, "upgrade package with the same name")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "force install, overwrite conflicting files")
	cmd.Flags().CountP("verbose", "v", "explain what is being done")

	return cmd
}
