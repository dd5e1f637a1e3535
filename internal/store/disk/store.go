package disk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

const (
	dirPerm  = 0o755
	tmpInfix = ".tmp-"
)

// Store keeps one file per marker under <root>/<kind>s/<id>.
type Store struct {
	fs   afero.Fs
	root string
}

// Entry is a raw record read from the store.
type Entry struct {
	Name string // file name (the marker id)
	Data string // file content
	Err  error  // set when the file could not be read
}

// New creates a store rooted at root on fs.
func New(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// NewOS creates a store on the host filesystem.
func NewOS(root string) *Store {
	return New(afero.NewOsFs(), root)
}

// Root returns the data directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory holding records of kind.
func (s *Store) Dir(kind domain.Kind) string {
	return filepath.Join(s.root, string(kind)+"s")
}

// EnsureLayout creates the data directory and one directory per kind.
func (s *Store) EnsureLayout() error {
	for _, kind := range domain.Kinds {
		if err := s.fs.MkdirAll(s.Dir(kind), dirPerm); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", kind, err)
		}
	}
	return nil
}

// List returns every record of kind, sorted by file name.
// Unreadable files are returned with Err set; an unreadable directory
// fails the whole call.
func (s *Store) List(kind domain.Kind) ([]Entry, error) {
	dir := s.Dir(kind)
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrIO, dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(dir, name))
		if err != nil {
			entries = append(entries, Entry{Name: name, Err: err})
			continue
		}
		entries = append(entries, Entry{Name: name, Data: string(data)})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Write replaces the record file for id. The content goes to a temp
// file first and is renamed into place, so readers see either the old
// or the new record in full.
func (s *Store) Write(kind domain.Kind, id string, encoded string) error {
	path, err := s.path(kind, id)
	if err != nil {
		return err
	}

	return WriteFileAtomic(s.fs, path, []byte(encoded))
}

// WriteFileAtomic replaces path with data. The data is written and synced
// to a temp file next to path, then renamed over it.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+tmpInfix+"*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %w", domain.ErrIO, path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %w", domain.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", domain.ErrIO, path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

// Read returns the record for id.
func (s *Store) Read(kind domain.Kind, id string) (string, error) {
	path, err := s.path(kind, id)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrIO, path, err)
	}
	return string(data), nil
}

// Delete removes the record for id. A missing file is not an error;
// a file that exists but cannot be removed is.
func (s *Store) Delete(kind domain.Kind, id string) error {
	path, err := s.path(kind, id)
	if err != nil {
		return err
	}

	if _, err := s.fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

// Exists reports whether a record file for id is present.
func (s *Store) Exists(kind domain.Kind, id string) bool {
	path, err := s.path(kind, id)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

func (s *Store) path(kind domain.Kind, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: invalid record id %q", domain.ErrIO, id)
	}
	return filepath.Join(s.Dir(kind), id), nil
}

// StaleTemps lists temp files of kind last modified before cutoff. They
// are left behind when the process dies between create and rename.
func (s *Store) StaleTemps(kind domain.Kind, cutoff time.Time) ([]string, error) {
	dir := s.Dir(kind)
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrIO, dir, err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !isTemp(info.Name()) {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

// RemoveTemp deletes a temp file returned by StaleTemps.
func (s *Store) RemoveTemp(kind domain.Kind, name string) error {
	if !isTemp(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: not a temp file: %q", domain.ErrIO, name)
	}
	path := filepath.Join(s.Dir(kind), name)
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, tmpInfix)
}
