package story

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/scope"
	"github.com/openscenario-sim/oscsim/xmlnode"
)

// EntitySpec is the catalog-resolvable shape of a ScenarioObject: either
// parsed inline from a <Vehicle>/<Pedestrian> element or resolved through
// a <CatalogReference> against the environment's catalog table (§4.5,
// §12 "catalog caching").
type EntitySpec struct {
	Kind   entity.Kind
	Box    entity.BoundingBox
	Limits entity.PerformanceLimits
}

// CatalogFileReader opens a catalog document at location and parses it
// into the xmlnode tree the loader reads from. It is the same injected
// XML-parsing collaborator §6 assumes for the scenario file itself; the
// story package never touches the filesystem directly.
type CatalogFileReader func(location string) (xmlnode.Node, error)

// xmlCatalogLoader implements scope.CatalogLoader by reading a catalog
// file through the injected reader and scanning it for the named entry.
// scope.CatalogTable wraps this with the memoization described in §12.
type xmlCatalogLoader struct {
	read CatalogFileReader
	docs map[string]xmlnode.Node
}

// NewCatalogLoader builds the scope.CatalogLoader collaborator the
// global Environment resolves CatalogReferences through.
func NewCatalogLoader(read CatalogFileReader) scope.CatalogLoader {
	return &xmlCatalogLoader{read: read, docs: make(map[string]xmlnode.Node)}
}

func (l *xmlCatalogLoader) LoadCatalogEntry(location, entryName string) (scope.CatalogEntry, error) {
	doc, ok := l.docs[location]
	if !ok {
		var err error
		doc, err = l.read(location)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("catalog %q: %v", location, err)}
		}
		l.docs[location] = doc
	}

	container := doc.Child("Catalog")
	if container == nil {
		container = doc
	}
	for _, v := range container.Children("Vehicle") {
		if name, _ := v.Attribute("name"); name == entryName {
			return parseVehicleSpec(v)
		}
	}
	for _, p := range container.Children("Pedestrian") {
		if name, _ := p.Attribute("name"); name == entryName {
			return parsePedestrianSpec(p)
		}
	}
	return nil, &SyntaxError{Msg: fmt.Sprintf("catalog %q: no entry named %q", location, entryName)}
}

func parseVehicleSpec(n xmlnode.Node) (EntitySpec, error) {
	box, limits, err := parseBoxAndPerformance(n)
	if err != nil {
		return EntitySpec{}, err
	}
	return EntitySpec{Kind: entity.KindVehicle, Box: box, Limits: limits}, nil
}

func parsePedestrianSpec(n xmlnode.Node) (EntitySpec, error) {
	box, limits, err := parseBoxAndPerformance(n)
	if err != nil {
		return EntitySpec{}, err
	}
	return EntitySpec{Kind: entity.KindPedestrian, Box: box, Limits: limits}, nil
}

func parseBoxAndPerformance(n xmlnode.Node) (entity.BoundingBox, entity.PerformanceLimits, error) {
	var box entity.BoundingBox
	bb := n.Child("BoundingBox")
	if bb != nil {
		if dim := bb.Child("Dimensions"); dim != nil {
			if v, ok := dim.Attribute("length"); ok {
				box.Length, _ = strconv.ParseFloat(v, 64)
			}
			if v, ok := dim.Attribute("width"); ok {
				box.Width, _ = strconv.ParseFloat(v, 64)
			}
		}
	}
	var limits entity.PerformanceLimits
	if perf := n.Child("Performance"); perf != nil {
		if v, ok := perf.Attribute("maxSpeed"); ok {
			limits.MaxSpeed, _ = strconv.ParseFloat(v, 64)
		}
		if v, ok := perf.Attribute("maxAcceleration"); ok {
			limits.MaxAccel, _ = strconv.ParseFloat(v, 64)
		}
		if v, ok := perf.Attribute("maxDeceleration"); ok {
			limits.MaxDecel, _ = strconv.ParseFloat(v, 64)
		}
	}
	return box, limits, nil
}

// LoadParameters reads the root document's ParameterDeclarations into a
// flat name->value table (the substrate condition.Parameter evaluates
// against) and, per §4.5, also defines each one in the environment's root
// frame so qualified/ambiguity-checked lookups see the same bindings.
func LoadParameters(root xmlnode.Node, env *scope.Environment) (map[string]float64, error) {
	params := make(map[string]float64)
	decls := root.Child("ParameterDeclarations")
	if decls == nil {
		return params, nil
	}
	for _, p := range decls.Children("ParameterDeclaration") {
		name, ok := p.Attribute("name")
		if !ok {
			return nil, errMissingAttribute("ParameterDeclaration", "name")
		}
		raw, ok := p.Attribute("value")
		if !ok {
			return nil, errMissingAttribute("ParameterDeclaration", "value")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("ParameterDeclaration %q: bad value %q", name, raw)}
		}
		params[name] = v
		env.Define(env.Root(), name, v)
	}
	return params, nil
}

// LoadEntities spawns every ScenarioObject under the root's Entities
// element into env.Entities, resolving inline Vehicle/Pedestrian
// definitions or CatalogReferences (§4.5, §3 "Entity"). Each entity's
// name is also defined in the environment's root frame so action/trigger
// authoring can address entities the same way it addresses any other
// named scope object.
func LoadEntities(root xmlnode.Node, env *scope.Environment) error {
	entities := root.Child("Entities")
	if entities == nil {
		return nil
	}
	for _, obj := range entities.Children("ScenarioObject") {
		name, ok := obj.Attribute("name")
		if !ok {
			return errMissingAttribute("ScenarioObject", "name")
		}
		spec, err := resolveEntitySpec(obj, env)
		if err != nil {
			return err
		}
		isEgo := strings.EqualFold(name, "Ego") || strings.EqualFold(name, "Hero")
		if v, ok := obj.Attribute("isEgo"); ok {
			isEgo = v == "true"
		}
		e, err := env.Entities.Spawn(isEgo, name, spec.Kind, spec.Box, spec.Limits)
		if err != nil {
			return &SyntaxError{Msg: err.Error()}
		}
		env.Define(env.Root(), name, e)
	}
	return nil
}

func resolveEntitySpec(obj xmlnode.Node, env *scope.Environment) (EntitySpec, error) {
	if v := obj.Child("Vehicle"); v != nil {
		return parseVehicleSpec(v)
	}
	if p := obj.Child("Pedestrian"); p != nil {
		return parsePedestrianSpec(p)
	}
	if cr := obj.Child("CatalogReference"); cr != nil {
		catalogName, ok1 := cr.Attribute("catalogName")
		entryName, ok2 := cr.Attribute("entryName")
		if !ok1 || !ok2 {
			return EntitySpec{}, errMissingAttribute("CatalogReference", "catalogName/entryName")
		}
		entry, err := env.ResolveCatalogReference(catalogName, entryName)
		if err != nil {
			return EntitySpec{}, err
		}
		spec, ok := entry.(EntitySpec)
		if !ok {
			return EntitySpec{}, &SyntaxError{Msg: fmt.Sprintf("catalog entry %q is not an entity", entryName)}
		}
		return spec, nil
	}
	return EntitySpec{}, &SyntaxError{Msg: "ScenarioObject: missing Vehicle/Pedestrian/CatalogReference"}
}

// LoadCatalogLocations reads the root document's CatalogLocations block,
// registering each catalog's file location in the environment (§4.5:
// "Catalogs are loaded lazily via a path stored in the global
// environment"). Each immediate child element's tag name is the catalog
// name a CatalogReference's catalogName addresses (e.g. "VehicleCatalog"
// with a nested <Directory path="...">); we resolve that path to a
// single catalog document rather than scanning a directory tree.
func LoadCatalogLocations(root xmlnode.Node, env *scope.Environment) {
	locs := root.Child("CatalogLocations")
	if locs == nil {
		return
	}
	for _, kind := range []string{"VehicleCatalog", "PedestrianCatalog", "ControllerCatalog", "ManeuverCatalog", "MiscObjectCatalog", "EnvironmentCatalog", "TrajectoryCatalog", "RouteCatalog"} {
		child := locs.Child(kind)
		if child == nil {
			continue
		}
		dir := child.Child("Directory")
		if dir == nil {
			continue
		}
		if path, ok := dir.Attribute("path"); ok {
			env.CatalogLocations[kind] = path
		}
	}
}

// LoadScenario is the full scenario-file load path (§2 data flow
// "Loader -> builds C1, C3 -> C5 seeded with scenario root -> C6
// evaluator constructed"): parameters and entities populate the
// environment, then the Storyboard's syntax tree is built.
func LoadScenario(root xmlnode.Node, env *scope.Environment) (*Storyboard, map[string]float64, error) {
	params, err := LoadParameters(root, env)
	if err != nil {
		return nil, nil, err
	}
	LoadCatalogLocations(root, env)
	if err := LoadEntities(root, env); err != nil {
		return nil, nil, err
	}
	sb, err := Load(root)
	if err != nil {
		return nil, nil, err
	}
	return sb, params, nil
}
