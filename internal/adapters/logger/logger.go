// Package logger implements the diagnostic logger. Notices and errors are
// prefixed with the utility name; plain informational lines are not.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.pakt.dev/pakt/internal/core/ports"
)

// Logger writes user-facing diagnostics. Informational output goes to Out,
// warnings and errors to Err.
type Logger struct {
	util string
	Out  io.Writer
	Err  io.Writer
}

var _ ports.Logger = (*Logger)(nil)

// New creates a Logger prefixing diagnostics with the given utility name.
func New(util string) *Logger {
	return &Logger{util: util, Out: os.Stdout, Err: os.Stderr}
}

// Info prints an informational line to standard output.
func (l *Logger) Info(msg string) {
	_, _ = fmt.Fprintln(l.Out, msg)
}

// Notice prints a utility-prefixed notice to standard output.
func (l *Logger) Notice(msg string) {
	_, _ = fmt.Fprintf(l.Out, "%s: %s\n", l.util, msg)
}

// Warn prints a utility-prefixed warning to the diagnostic stream.
func (l *Logger) Warn(msg string) {
	_, _ = fmt.Fprintf(l.Err, "%s: %s\n", l.util, msg)
}

// Error prints a utility-prefixed error to the diagnostic stream.
func (l *Logger) Error(err error) {
	_, _ = fmt.Fprintf(l.Err, "%s: %v\n", l.util, err)
}
