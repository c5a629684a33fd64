package scope

import "fmt"

// CatalogEntry is a parsed catalog subtree, typed as `any` since its shape
// (a story syntax node) belongs to the story package, which depends on
// scope rather than the other way around.
type CatalogEntry any

// CatalogLoader opens a registered catalog location and parses the entry
// matching entryName as a syntax subtree (§4.5). It is an external
// collaborator, implemented by the story package's loader.
type CatalogLoader interface {
	LoadCatalogEntry(location, entryName string) (CatalogEntry, error)
}

type catalogKey struct{ location, entry string }

// CatalogTable resolves (location, entry name) catalog references,
// caching parsed entries so repeated CatalogReferences don't re-parse
// (§12 supplemented feature, grounded in the teacher's lazy-but-memoized
// resource loading idiom).
type CatalogTable struct {
	loader CatalogLoader
	cache  map[catalogKey]CatalogEntry
}

// NewCatalogTable creates a table backed by loader.
func NewCatalogTable(loader CatalogLoader) *CatalogTable {
	return &CatalogTable{loader: loader, cache: make(map[catalogKey]CatalogEntry)}
}

// Resolve returns the catalog entry for (location, entryName), loading
// and caching it on first access.
func (c *CatalogTable) Resolve(location, entryName string) (CatalogEntry, error) {
	key := catalogKey{location, entryName}
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}
	if c.loader == nil {
		return nil, fmt.Errorf("no catalog loader configured")
	}
	entry, err := c.loader.LoadCatalogEntry(location, entryName)
	if err != nil {
		return nil, err
	}
	c.cache[key] = entry
	return entry, nil
}
