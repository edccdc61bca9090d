// Package commands implements the CLI commands for pakt.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.pakt.dev/pakt/internal/app"
	"go.pakt.dev/pakt/internal/build"
)

// CLI represents the command line interface for pakt.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pakt",
		Short:         "Install, remove and query software packages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Every verb accepts -V and exits after the banner.
	rootCmd.PersistentFlags().BoolP("version", "V", false, "print version and exit")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println("pakt " + build.Version)
			os.Exit(0)
		}
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newQueryCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used by the argv[0]
// verb dispatch and by tests.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
