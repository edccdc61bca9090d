// Package app implements the application layer: each verb acquires the
// database lock, loads the store, builds an engine and drives it.
package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/adapters/archive"
	"go.pakt.dev/pakt/internal/adapters/config"
	"go.pakt.dev/pakt/internal/adapters/db"
	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/adapters/ldso"
	"go.pakt.dev/pakt/internal/core/domain"
	"go.pakt.dev/pakt/internal/core/ports"
	"go.pakt.dev/pakt/internal/engine"
)

// App wires the adapters behind the CLI verbs.
type App struct {
	log ports.Logger
	out io.Writer

	// uid overrides the effective uid check in tests. -1 means os.Getuid.
	uid int
}

// New creates an App writing report output to out and diagnostics through
// log.
func New(log ports.Logger, out io.Writer) *App {
	return &App{log: log, out: out, uid: -1}
}

// SetUID overrides the uid seen by the privilege check. Used in tests.
func (a *App) SetUID(uid int) {
	a.uid = uid
}

func (a *App) getuid() int {
	if a.uid >= 0 {
		return a.uid
	}
	return os.Getuid()
}

// InstallOptions parameterize the install verb.
type InstallOptions struct {
	Root    string
	Conf    string
	Archive string
	Upgrade bool
	Force   bool
	Verbose int
}

// Install adds or upgrades one package archive under an exclusive lock.
func (a *App) Install(opts InstallOptions) error {
	if a.getuid() != 0 {
		return domain.ErrPermissionDenied
	}

	// An interrupted rename would defeat the commit protocol, so fatal
	// signals are ignored for the rest of the process lifetime.
	ignoreSignals()

	lock, err := db.NewLock(opts.Root, true)
	if err != nil {
		return err
	}
	defer lock.Close()

	store, err := db.Open(opts.Root)
	if err != nil {
		return err
	}

	rules, err := config.Load(opts.Root, opts.Conf)
	if err != nil {
		return err
	}

	eng := engine.New(store, a.log, ldso.New(a.log))
	return eng.Install(engine.InstallOptions{
		Archive: opts.Archive,
		Rules:   rules,
		Upgrade: opts.Upgrade,
		Force:   opts.Force,
		Verbose: opts.Verbose,
	})
}

// RemoveOptions parameterize the remove verb.
type RemoveOptions struct {
	Root    string
	Package string
	Verbose int
}

// Remove deletes one installed package under an exclusive lock.
func (a *App) Remove(opts RemoveOptions) error {
	if a.getuid() != 0 {
		return domain.ErrPermissionDenied
	}

	ignoreSignals()

	lock, err := db.NewLock(opts.Root, true)
	if err != nil {
		return err
	}
	defer lock.Close()

	store, err := db.Open(opts.Root)
	if err != nil {
		return err
	}

	if !store.Find(opts.Package) {
		return zerr.With(zerr.Wrap(domain.ErrNotInstalled, opts.Package), "package", opts.Package)
	}

	if opts.Verbose > 0 {
		a.log.Info("removing " + opts.Package)
	}

	eng := engine.New(store, a.log, ldso.New(a.log))
	eng.RemovePackage(opts.Package)
	eng.Refresh()
	return store.Commit()
}

// QueryMode selects what the query verb reports.
type QueryMode int

const (
	// QueryFootprint prints an archive's manifest.
	QueryFootprint QueryMode = iota
	// QueryInstalled lists installed packages and versions.
	QueryInstalled
	// QueryList lists the files of an installed package or an archive.
	QueryList
	// QueryOwner lists packages owning files matching a pattern.
	QueryOwner
)

// QueryOptions parameterize the query verb.
type QueryOptions struct {
	Root string
	Mode QueryMode
	Arg  string
}

// Query reports package information. Database-backed modes run under a
// shared lock; the footprint mode reads only the archive.
func (a *App) Query(opts QueryOptions) error {
	if opts.Mode == QueryFootprint {
		return archive.Footprint(a.out, opts.Arg)
	}

	lock, err := db.NewLock(opts.Root, false)
	if err != nil {
		return err
	}
	defer lock.Close()

	store, err := db.Open(opts.Root)
	if err != nil {
		return err
	}

	switch opts.Mode {
	case QueryInstalled:
		catalogue := store.Catalogue()
		for _, name := range catalogue.Names() {
			fmt.Fprintf(a.out, "%s %s\n", name, catalogue[name].Version)
		}
		return nil

	case QueryList:
		return a.queryList(store, opts.Arg)

	case QueryOwner:
		return a.queryOwner(store, opts.Arg)
	}

	return zerr.New("unknown query mode")
}

func (a *App) queryList(store *db.Store, arg string) error {
	if store.Find(arg) {
		for _, file := range store.FilesOf(arg) {
			fmt.Fprintln(a.out, file)
		}
		return nil
	}

	if fsutil.Exists(arg) {
		_, entry, err := archive.OpenPackage(arg)
		if err != nil {
			return err
		}
		for _, file := range entry.Files.Paths() {
			fmt.Fprintln(a.out, file)
		}
		return nil
	}

	return zerr.New(arg + " is neither an installed package nor a package file")
}

func (a *App) queryOwner(store *db.Store, pattern string) error {
	eng := engine.New(store, a.log, ldso.New(a.log))
	owned, err := eng.FindOwnersPattern(pattern)
	if err != nil {
		return err
	}

	if len(owned) == 0 {
		fmt.Fprintln(a.out, "no owner(s) found")
		return nil
	}

	width := len("Package")
	for _, o := range owned {
		if len(o.Package) > width {
			width = len(o.Package)
		}
	}

	fmt.Fprintf(a.out, "%-*s%s\n", width+2, "Package", "File")
	for _, o := range owned {
		fmt.Fprintf(a.out, "%-*s%s\n", width+2, o.Package, o.File)
	}
	return nil
}

// CheckOptions parameterize the check verb.
type CheckOptions struct {
	Root        string
	Links       bool
	Disappeared bool
	Verbose     int
	Packages    []string
}

// Check audits installed packages under a shared lock. It never mutates.
func (a *App) Check(opts CheckOptions) error {
	lock, err := db.NewLock(opts.Root, false)
	if err != nil {
		return err
	}
	defer lock.Close()

	store, err := db.Open(opts.Root)
	if err != nil {
		return err
	}

	eng := engine.New(store, a.log, ldso.New(a.log))
	return eng.Check(a.out, opts.Packages, engine.CheckOptions{
		Links:       opts.Links,
		Disappeared: opts.Disappeared,
		Verbosity:   opts.Verbose,
	})
}

// ignoreSignals blocks out the fatal signals for the remaining engine
// lifetime of a mutator, so an interrupt cannot tear a commit or leave a
// half-materialized archive.
func ignoreSignals() {
	signal.Ignore(syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
}
