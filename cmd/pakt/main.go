// Package main is the entry point for the pakt CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.pakt.dev/pakt/cmd/pakt/commands"
	"go.pakt.dev/pakt/internal/adapters/logger"
	"go.pakt.dev/pakt/internal/app"
	"go.pakt.dev/pakt/internal/core/domain"
)

func main() {
	if err := run(os.Args); err != nil {
		// Conflicts list their paths one per line before the reason.
		var conflicts *domain.ConflictsError
		if errors.As(err, &conflicts) {
			for _, path := range conflicts.Paths {
				fmt.Fprintln(os.Stderr, path)
			}
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", utilName(os.Args[0]), domain.ErrFileConflicts)
		} else {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", utilName(os.Args[0]), err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	log := logger.New(utilName(args[0]))
	a := app.New(log, os.Stdout)

	cli := commands.New(a)

	cliArgs := args[1:]
	if verb, ok := verbFromArgv0(args[0]); ok {
		cliArgs = append([]string{verb}, cliArgs...)
	}
	cli.SetArgs(cliArgs)

	return cli.Execute(context.Background())
}

// utilName is the invoked program name, used to prefix diagnostics.
func utilName(argv0 string) string {
	return filepath.Base(argv0)
}

// verbFromArgv0 maps a hardlink or symlink name like pakt-install to its
// verb, so each verb can be shipped as its own program name.
func verbFromArgv0(argv0 string) (string, bool) {
	base := filepath.Base(argv0)
	verb, ok := strings.CutPrefix(base, "pakt-")
	if !ok {
		return "", false
	}
	switch verb {
	case "install", "remove", "query", "check":
		return verb, true
	}
	return "", false
}
