package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
)

// CheckOptions select which audits run and how much ownership detail is
// reported.
type CheckOptions struct {
	Links       bool
	Disappeared bool
	Verbosity   int
}

// Check audits the named packages, or every installed package when names is
// empty. It never mutates the catalogue or the filesystem.
func (g *Engine) Check(w io.Writer, names []string, opts CheckOptions) error {
	if len(names) == 0 {
		names = g.store.Catalogue().Names()
	}

	for _, name := range names {
		if opts.Links {
			g.checkLinks(w, name, opts.Verbosity)
		}
		if opts.Disappeared {
			g.checkDisappeared(w, name, opts.Verbosity)
		}
	}
	return nil
}

// checkLinks reports broken symlinks and symlinks whose target is owned by
// no incarnation of the package itself.
func (g *Engine) checkLinks(w io.Writer, name string, verbosity int) {
	entry, ok := g.store.Catalogue()[name]
	if !ok {
		g.log.Warn("package not found: " + name)
		return
	}

	fmt.Fprintf(w, "Symlink check for %s...\n", name)

	root := g.store.Root()
	for _, path := range entry.Files.Paths() {
		full := domain.Normalize(root + "/" + path)

		st, err := os.Lstat(full)
		if err != nil || st.Mode()&os.ModeSymlink == 0 {
			continue
		}

		target, err := os.Readlink(full)
		if err != nil {
			continue
		}

		var immediate string
		if strings.HasPrefix(target, "/") {
			immediate = root + target
		} else {
			immediate = filepath.Dir(full) + "/" + target
		}
		immediate = domain.Normalize(immediate)

		if !fsutil.Exists(immediate) {
			fmt.Fprintf(w, "ERROR: %s -> %s (broken)\n", full, target)
			continue
		}

		immOwners := g.ownersOfPath(immediate)

		resolved, err := filepath.EvalSymlinks(immediate)
		if err != nil {
			resolved = immediate
		}
		finOwners := g.ownersOfPath(resolved)

		if contains(immOwners, name) || contains(finOwners, name) {
			continue
		}

		if verbosity > 0 {
			fmt.Fprintf(w, "WARNING: %s -> %s (points to %s, resolves into %s)\n",
				full, target, joinOwners(immOwners), joinOwners(finOwners))
		} else {
			fmt.Fprintf(w, "WARNING: %s -> %s\n", full, target)
		}
	}
}

// checkDisappeared reports files listed in the catalogue that no longer
// exist under the root.
func (g *Engine) checkDisappeared(w io.Writer, name string, verbosity int) {
	catalogue := g.store.Catalogue()
	entry, ok := catalogue[name]
	if !ok {
		g.log.Warn("package not found: " + name)
		return
	}

	fmt.Fprintf(w, "Disappeared file check for %s...\n", name)

	root := g.store.Root()
	for _, path := range entry.Files.Paths() {
		full := domain.Normalize(root + "/" + path)
		if fsutil.Exists(full) {
			continue
		}

		fmt.Fprintf(w, "ERROR: disappeared file %s\n", full)

		if verbosity > 0 {
			var owners []string
			for _, other := range catalogue.Names() {
				if catalogue[other].Files.Has(path) {
					owners = append(owners, other)
				}
			}
			if len(owners) > 0 {
				fmt.Fprintf(w, "  Claimed by: %s\n", joinOwners(owners))
			}
		}
	}
}

// ownersOfPath returns the packages owning the given absolute-under-root
// path. The root prefix is stripped before the catalogue lookup, so the
// audit works against alternate roots too.
func (g *Engine) ownersOfPath(path string) []string {
	rel, ok := g.relPath(path)
	if !ok {
		return nil
	}
	return g.findOwners(regexp.QuoteMeta("/" + rel))
}

// relPath strips the store root from path, trying the symlink-resolved root
// as well since fully-resolved targets come back through realpath.
func (g *Engine) relPath(path string) (string, bool) {
	root := g.store.Root()
	if rel, ok := strings.CutPrefix(path, root); ok {
		return rel, true
	}
	if resolvedRoot, err := filepath.EvalSymlinks(strings.TrimSuffix(root, "/")); err == nil {
		if rel, ok := strings.CutPrefix(path, resolvedRoot+"/"); ok {
			return rel, true
		}
	}
	return "", false
}

// findOwners returns the packages owning a file whose /-prefixed path
// matches pattern. An uncompilable pattern owns nothing.
func (g *Engine) findOwners(pattern string) []string {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil
	}
	return g.store.Catalogue().OwnersOf(re.MatchString)
}

// FindOwnersPattern is the user-facing owner lookup: the pattern is
// validated before the catalogue walk so a bad expression is reported
// rather than matching nothing.
func (g *Engine) FindOwnersPattern(pattern string) ([]OwnedFile, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "fail to compile regular expression"), "pattern", pattern)
	}

	catalogue := g.store.Catalogue()
	var result []OwnedFile
	for _, name := range catalogue.Names() {
		for _, file := range catalogue[name].Files.Paths() {
			if re.MatchString("/" + file) {
				result = append(result, OwnedFile{Package: name, File: file})
			}
		}
	}
	return result, nil
}

// OwnedFile is one owner-lookup hit.
type OwnedFile struct {
	Package string
	File    string
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func joinOwners(owners []string) string {
	if len(owners) == 0 {
		return "none"
	}
	return strings.Join(owners, ",")
}
