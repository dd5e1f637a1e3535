package worlds

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/store/disk"
)

// JournalFile is the journal's name inside the data directory.
const JournalFile = "worlds.yaml"

// Journal keeps the worlds added at runtime, in the same format as the
// catalog file.
type Journal struct {
	fs   afero.Fs
	path string
}

// NewJournal creates a journal stored at path on fs.
func NewJournal(fsys afero.Fs, path string) *Journal {
	return &Journal{fs: fsys, path: path}
}

// NewDataJournal creates the journal kept in the data directory.
func NewDataJournal(fsys afero.Fs, dataDir string) *Journal {
	return NewJournal(fsys, filepath.Join(dataDir, JournalFile))
}

// Load returns the journaled worlds. A missing file is an empty journal.
func (j *Journal) Load() ([]domain.WorldRef, error) {
	data, err := afero.ReadFile(j.fs, j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read world journal: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse world journal: %w", err)
	}

	refs := make([]domain.WorldRef, 0, len(file.Worlds))
	for _, s := range file.Worlds {
		ref, err := domain.ParseWorldRef(s)
		if err != nil {
			return nil, fmt.Errorf("world journal %s: %w", j.path, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Save replaces the journal with refs.
func (j *Journal) Save(refs []domain.WorldRef) error {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.String())
	}
	sort.Strings(names)

	data, err := yaml.Marshal(File{Worlds: names})
	if err != nil {
		return fmt.Errorf("failed to encode world journal: %w", err)
	}
	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("failed to create world journal directory: %w", err)
	}
	return disk.WriteFileAtomic(j.fs, j.path, data)
}
