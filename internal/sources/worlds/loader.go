package worlds

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Vanilla dimensions, used when no catalog file is configured.
var Vanilla = []domain.WorldRef{
	{Namespace: "minecraft", Name: "overworld"},
	{Namespace: "minecraft", Name: "the_nether"},
	{Namespace: "minecraft", Name: "the_end"},
}

// Loader reads the worlds catalog file.
type Loader struct {
	filePath string
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the catalog file. Every entry must be a
// namespace:name reference.
func (l *Loader) Load() (*Catalog, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse worlds yaml: %w", err)
	}
	if len(file.Worlds) == 0 {
		return nil, fmt.Errorf("no worlds found in %s", l.filePath)
	}

	refs := make([]domain.WorldRef, 0, len(file.Worlds))
	for _, s := range file.Worlds {
		ref, err := domain.ParseWorldRef(s)
		if err != nil {
			return nil, fmt.Errorf("worlds file %s: %w", l.filePath, err)
		}
		refs = append(refs, ref)
	}
	return NewCatalog(refs...), nil
}

// Catalog is the set of worlds persisted records may refer to.
type Catalog struct {
	mu      sync.RWMutex
	worlds  map[domain.WorldRef]struct{}
	journal *Journal
	added   map[domain.WorldRef]struct{} // worlds kept in the journal
}

// NewCatalog creates a catalog holding refs.
func NewCatalog(refs ...domain.WorldRef) *Catalog {
	c := &Catalog{
		worlds: make(map[domain.WorldRef]struct{}, len(refs)),
		added:  make(map[domain.WorldRef]struct{}),
	}
	for _, ref := range refs {
		c.worlds[ref] = struct{}{}
	}
	return c
}

// Default returns the catalog for the vanilla dimensions.
func Default() *Catalog {
	return NewCatalog(Vanilla...)
}

// Open loads the catalog from path, or returns the default catalog when
// path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return NewLoader(path).Load()
}

// Known reports whether ref is in the catalog.
func (c *Catalog) Known(ref domain.WorldRef) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.worlds[ref]
	return ok
}

// Attach loads the worlds kept in j and journals every later Add. It
// must run before records are loaded.
func (c *Catalog) Attach(j *Journal) (int, error) {
	refs, err := j.Load()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.journal = j
	for _, ref := range refs {
		c.worlds[ref] = struct{}{}
		c.added[ref] = struct{}{}
	}
	return len(refs), nil
}

// Add registers ref. Worlds reported by the game bridge are added as
// players join them. With a journal attached, a new world is saved
// before it becomes known, so records created in it load after a restart.
func (c *Catalog) Add(ref domain.WorldRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.worlds[ref]; ok {
		return nil
	}
	if c.journal != nil {
		next := make([]domain.WorldRef, 0, len(c.added)+1)
		for r := range c.added {
			next = append(next, r)
		}
		next = append(next, ref)
		if err := c.journal.Save(next); err != nil {
			return fmt.Errorf("failed to journal world %s: %w", ref, err)
		}
		c.added[ref] = struct{}{}
	}
	c.worlds[ref] = struct{}{}
	return nil
}

// Refs returns the known worlds in no particular order.
func (c *Catalog) Refs() []domain.WorldRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.WorldRef, 0, len(c.worlds))
	for ref := range c.worlds {
		out = append(out, ref)
	}
	return out
}

// Merge adds every world of other and returns how many were new.
// Worlds are never removed, so records loaded earlier stay resolvable.
func (c *Catalog) Merge(other *Catalog) int {
	refs := other.Refs()
	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, ref := range refs {
		if _, ok := c.worlds[ref]; !ok {
			c.worlds[ref] = struct{}{}
			added++
		}
	}
	return added
}

// Len returns the number of known worlds.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.worlds)
}
