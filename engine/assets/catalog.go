package assets

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/scene"
)

// Component is one catalog pick handed to a caller: a deep clone of the
// master fragment plus provenance. The clone shares no geometry with the
// catalog, so placement can mutate it freely.
type Component struct {
	Mesh       *scene.Node
	ID         uuid.UUID
	SourceFile string
}

type entry struct {
	node       *scene.Node
	sourceFile string
}

// Catalog is the fragment registry. It is populated once at startup and
// read-only afterwards; every consumer receives clones, never the master
// copies. Construct one per pipeline and inject it; there is no package
// level instance.
type Catalog struct {
	mu        sync.RWMutex
	fragments map[string][]entry
	loaded    bool
}

func NewCatalog() *Catalog {
	return &Catalog{
		fragments: make(map[string][]entry),
	}
}

// IsLoaded reports whether population has completed.
func (c *Catalog) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Add registers a master fragment under the given category.
func (c *Catalog) Add(category string, mesh *scene.Node, sourceFile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments[category] = append(c.fragments[category], entry{node: mesh, sourceFile: sourceFile})
}

// Categories lists every category with at least one fragment.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.fragments))
	for cat := range c.fragments {
		out = append(out, cat)
	}
	return out
}

// Count returns the number of fragments registered for a category.
func (c *Catalog) Count(category string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fragments[category])
}

// GetRandomComponent clones a randomly chosen fragment of the category.
// Returns nil when the category has no entries; a missing category is not
// an error, the caller simply omits or substitutes the part.
func (c *Catalog) GetRandomComponent(category string, rng *rand.Rand) *Component {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pool := c.fragments[category]
	if len(pool) == 0 {
		return nil
	}
	picked := pool[rng.Intn(len(pool))]
	return &Component{
		Mesh:       picked.node.Clone(),
		ID:         uuid.New(),
		SourceFile: picked.sourceFile,
	}
}

// MarkLoaded flags population as complete. Populate calls this itself;
// callers registering fragments manually via Add should call it once done.
func (c *Catalog) MarkLoaded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
}

// replace swaps every entry whose source file matches path, or appends
// when the file was not seen before. Used by the change watcher.
func (c *Catalog) replace(category, path string, mesh *scene.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pool := c.fragments[category]
	for i := range pool {
		if pool[i].sourceFile == path {
			pool[i].node = mesh
			return
		}
	}
	c.fragments[category] = append(pool, entry{node: mesh, sourceFile: path})
}

// remove drops the entry whose source file matches path.
func (c *Catalog) remove(category, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pool := c.fragments[category]
	for i := range pool {
		if pool[i].sourceFile == path {
			c.fragments[category] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}
