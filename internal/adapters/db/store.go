package db

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/core/domain"
	"go.pakt.dev/pakt/internal/core/ports"
)

const incompleteSuffix = ".incomplete_transaction"

// Store holds the in-memory catalogue loaded from <root>/var/lib/pkg/db.
// Mutators operate on memory only; Commit persists atomically.
type Store struct {
	root     string
	packages domain.Catalogue
}

var _ ports.PackageStore = (*Store)(nil)

// Open reads the database file under root and loads the catalogue. Each
// record is a name line, a version line, zero or more path lines and a blank
// terminator; a trailing record without terminator is accepted. Records with
// an empty file list are dropped.
func Open(root string) (*Store, error) {
	s := &Store{
		root:     domain.RootPrefix(root),
		packages: make(domain.Catalogue),
	}

	filename := s.root + domain.DBFile
	f, err := os.Open(filename)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "could not open database"), "path", filename)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "could not read database"), "path", filename)
	}

	for i := 0; i < len(lines); {
		name := lines[i]
		i++
		if i >= len(lines) {
			break
		}
		version := lines[i]
		i++

		var files []string
		for i < len(lines) && lines[i] != "" {
			files = append(files, lines[i])
			i++
		}
		if i < len(lines) {
			i++ // record terminator
		}

		if name != "" && len(files) > 0 {
			s.packages[name] = &domain.Entry{
				Version: version,
				Files:   domain.NewPathSet(files...),
			}
		}
	}

	return s, nil
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, err
		}
	}
}

// Root returns the normalized installation root, ending with a slash.
func (s *Store) Root() string {
	return s.root
}

// Catalogue returns the live in-memory catalogue.
func (s *Store) Catalogue() domain.Catalogue {
	return s.packages
}

// Add inserts or replaces a package entry.
func (s *Store) Add(name string, entry *domain.Entry) {
	s.packages[name] = entry
}

// Remove erases a package entry.
func (s *Store) Remove(name string) {
	delete(s.packages, name)
}

// Find reports whether a package is installed.
func (s *Store) Find(name string) bool {
	_, ok := s.packages[name]
	return ok
}

// FilesOf returns the sorted file list of an installed package, or nil.
func (s *Store) FilesOf(name string) []string {
	entry, ok := s.packages[name]
	if !ok {
		return nil
	}
	return entry.Files.Paths()
}

// Commit writes the catalogue to disk atomically: the new database is
// written to a temporary file and fsynced, the current database is hard
// linked to its backup, and the temporary file is renamed into place. A
// crash at any point leaves a usable database; a residual temporary file is
// cleaned up by the next commit.
func (s *Store) Commit() error {
	dbName := s.root + domain.DBFile
	newName := dbName + incompleteSuffix
	bakName := dbName + ".backup"

	// Remove a failed transaction, if any.
	if err := os.Remove(newName); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "could not remove"), "path", newName)
	}

	f, err := os.OpenFile(newName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o444)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "could not create"), "path", newName)
	}

	w := bufio.NewWriter(f)
	for _, name := range s.packages.Names() {
		entry := s.packages[name]
		if entry.Files.Len() == 0 {
			continue
		}
		w.WriteString(name)
		w.WriteByte('\n')
		w.WriteString(entry.Version)
		w.WriteByte('\n')
		for _, file := range entry.Files.Paths() {
			w.WriteString(file)
			w.WriteByte('\n')
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return zerr.With(zerr.Wrap(err, "could not write"), "path", newName)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return zerr.With(zerr.Wrap(err, "could not synchronize"), "path", newName)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "could not close"), "path", newName)
	}

	// Relink the database backup.
	if err := os.Remove(bakName); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "could not remove"), "path", bakName)
	}
	if err := os.Link(dbName, bakName); err != nil {
		return zerr.With(zerr.Wrap(err, "could not create"), "path", bakName)
	}

	// Move the new database into place.
	if err := os.Rename(newName, dbName); err != nil {
		return zerr.With(zerr.Wrap(err, "could not rename"), "path", newName)
	}

	return nil
}
