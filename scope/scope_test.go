package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNameResolutionDeterminism grounds testable property 1: ref(N) always
// returns the same single object for a fixed scope tree and name.
func TestNameResolutionDeterminism(t *testing.T) {
	a := NewArena()
	root := a.Root()
	a.Define(root, "speed", 42)

	for i := 0; i < 5; i++ {
		v, err := a.Ref(root, "speed")
		require.NoError(t, err)
		require.Equal(t, 42, v)
	}
}

// TestAmbiguityDetection grounds testable property 2.
func TestAmbiguityDetection(t *testing.T) {
	a := NewArena()
	root := a.Root()
	a.Define(root, "x", 1)
	a.Define(root, "x", 2)

	_, err := a.Ref(root, "x")
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestResolveDescendsUnnamedInnerFramesBreadthFirst(t *testing.T) {
	a := NewArena()
	root := a.Root()
	child := a.NewFrame(root, "") // unnamed
	a.Define(child, "y", "found")

	v, err := a.Ref(root, "y")
	require.NoError(t, err)
	require.Equal(t, "found", v)
}

func TestResolveAscendsToOuterFrame(t *testing.T) {
	a := NewArena()
	root := a.Root()
	a.Define(root, "z", "outer-value")
	child := a.NewFrame(root, "inner")

	v, err := a.Ref(child, "z")
	require.NoError(t, err)
	require.Equal(t, "outer-value", v)
}

func TestQualifiedNameDescendsNamedFrame(t *testing.T) {
	a := NewArena()
	root := a.Root()
	story := a.NewFrame(root, "Story1")
	a.Define(story, "act", "act-value")

	v, err := a.Ref(root, "Story1::act")
	require.NoError(t, err)
	require.Equal(t, "act-value", v)
}

func TestAbsoluteNameStartsFromRoot(t *testing.T) {
	a := NewArena()
	root := a.Root()
	a.Define(root, "global", "root-value")
	child := a.NewFrame(root, "deep")
	grandchild := a.NewFrame(child, "deeper")

	v, err := a.Ref(grandchild, "::global")
	require.NoError(t, err)
	require.Equal(t, "root-value", v)
}

func TestNonExistentNameIsError(t *testing.T) {
	a := NewArena()
	_, err := a.Ref(a.Root(), "nope")
	require.Error(t, err)
}

func TestCatalogResolutionIsCached(t *testing.T) {
	calls := 0
	loader := catalogLoaderFunc(func(location, entry string) (CatalogEntry, error) {
		calls++
		return "entry:" + location + ":" + entry, nil
	})
	table := NewCatalogTable(loader)

	v1, err := table.Resolve("vehicles.xosc", "car1")
	require.NoError(t, err)
	v2, err := table.Resolve("vehicles.xosc", "car1")
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, calls)
}

type catalogLoaderFunc func(location, entry string) (CatalogEntry, error)

func (f catalogLoaderFunc) LoadCatalogEntry(location, entry string) (CatalogEntry, error) {
	return f(location, entry)
}
