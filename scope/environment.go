package scope

import "github.com/openscenario-sim/oscsim/entity"

// Environment is the global scope: the root frame plus the data only the
// root carries (§3): the scenario file path, the entity registry, and
// catalog resolution.
type Environment struct {
	*Arena

	ScenarioPath string
	Entities     *entity.Manager
	Catalogs     *CatalogTable

	// CatalogLocations maps a catalog name to the filesystem location a
	// CatalogReference resolves against (§4.5).
	CatalogLocations map[string]string
}

// NewEnvironment creates a fresh Environment with an empty root frame.
func NewEnvironment(scenarioPath string, entities *entity.Manager, catalogs *CatalogTable) *Environment {
	return &Environment{
		Arena:            NewArena(),
		ScenarioPath:     scenarioPath,
		Entities:         entities,
		Catalogs:         catalogs,
		CatalogLocations: make(map[string]string),
	}
}

// ResolveCatalogReference looks up catalogName's registered location and
// resolves entryName within it (§4.5).
func (e *Environment) ResolveCatalogReference(catalogName, entryName string) (CatalogEntry, error) {
	location, ok := e.CatalogLocations[catalogName]
	if !ok {
		return nil, errNoSuchVariableNamed(catalogName)
	}
	return e.Catalogs.Resolve(location, entryName)
}
