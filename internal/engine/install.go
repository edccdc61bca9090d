package engine

import (
	"errors"
	"fmt"
	"io"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/adapters/archive"
	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
)

// InstallOptions parameterize one install or upgrade.
type InstallOptions struct {
	Archive string
	Rules   []domain.Rule
	Upgrade bool
	Force   bool
	Verbose int
}

// Install adds or upgrades one package archive. The catalogue is committed
// before any file is materialized: a crash mid-extraction leaves a package
// recorded with files possibly missing, which the integrity checker can
// see, rather than untracked files on disk, which nothing could.
func (g *Engine) Install(opts InstallOptions) error {
	name, info, err := archive.OpenPackage(opts.Archive)
	if err != nil {
		return err
	}

	installed := g.store.Find(name)
	if installed && !opts.Upgrade {
		return zerr.With(zerr.Wrap(domain.ErrAlreadyInstalled, name), "package", name)
	}
	if !installed && opts.Upgrade {
		return zerr.With(zerr.Wrap(domain.ErrNotInstalled, "package not previously installed (skip -u to install)"), "package", name)
	}

	installSet, nonInstall := domain.SplitInstall(info.Files.Paths(), opts.Rules)
	info.Files = installSet

	conflicts := g.FindConflicts(name, &info.Files)
	if conflicts.Len() > 0 {
		if !opts.Force {
			return &domain.ConflictsError{Paths: conflicts.Paths()}
		}
		var keep domain.PathSet
		if opts.Upgrade {
			// Don't remove files matching the rules in configuration.
			keep = domain.KeepList(conflicts.Paths(), opts.Rules)
		}
		g.RemoveFiles(conflicts, keep)
	}

	var keep domain.PathSet
	if opts.Upgrade {
		keep = domain.KeepList(info.Files.Paths(), opts.Rules)
		g.RemovePackageKeeping(name, keep)
	}

	g.store.Add(name, info)
	if err := g.store.Commit(); err != nil {
		return err
	}

	if opts.Verbose > 0 {
		if opts.Upgrade {
			g.log.Info("upgrading " + name)
		} else {
			g.log.Info("installing " + name)
		}
	}

	// Continue past per-entry failures only when the package was already
	// installed before this run.
	if err := g.extract(opts.Archive, keep, nonInstall, installed); err != nil {
		if !installed {
			g.RemovePackage(name)
			if cerr := g.store.Commit(); cerr != nil {
				g.log.Error(cerr)
			}
			return err
		}
	}

	g.ld.Refresh(g.store.Root())
	return nil
}

// extract materializes every archive entry not filtered out by the install
// rules. An entry on the keep-list whose target already exists is diverted
// to the rejected area and compared against the original afterwards.
func (g *Engine) extract(archivePath string, keep, nonInstall domain.PathSet, upgrade bool) error {
	r, err := archive.NewReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	root := g.store.Root()
	rejectDir := domain.Normalize(root + "/" + domain.RejectedDir)
	x := &archive.Extractor{Root: root}

	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		path := e.Path
		original := domain.Normalize(root + "/" + path)
		target := original

		if nonInstall.Has(path) {
			g.log.Notice("ignoring " + path)
			continue
		}

		if fsutil.Exists(original) && keep.Has(path) {
			target = domain.Normalize(rejectDir + "/" + path)
		}

		if err := x.Extract(e, target); err != nil {
			g.log.Warn(fmt.Sprintf("could not install %s: %v", path, err))
			if !upgrade {
				return zerr.With(zerr.Wrap(err, "extract error"), "path", path)
			}
			continue
		}

		if target != original {
			g.resolveRejected(e, rejectDir, target, original, path)
		}
	}

	if r.Count() == 0 {
		return zerr.With(zerr.Wrap(domain.ErrEmptyPackage, archivePath), "path", archivePath)
	}

	return nil
}

// resolveRejected drops a rejection that adds nothing over the kept
// original: directories when permissions match, other files when
// permissions match and the rejection is empty or content-identical.
// Dropped rejections prune their now-empty parents.
func (g *Engine) resolveRejected(e *archive.Entry, rejectDir, rejected, original, path string) {
	var drop bool
	if e.IsDir() {
		drop = fsutil.PermsEqual(rejected, original)
	} else {
		drop = fsutil.PermsEqual(rejected, original) &&
			(fsutil.IsEmptyRegular(rejected) || fsutil.ContentEqual(rejected, original))
	}

	if drop {
		fsutil.PruneUp(rejectDir, rejected)
	} else {
		g.log.Notice("rejecting " + path + ", keeping existing version")
	}
}
