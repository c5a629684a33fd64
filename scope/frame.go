// Package scope implements the lexically-scoped environment a scenario
// evaluates against (C5): an arena of frames, name resolution over
// simple/qualified/absolute names, and lazy catalog loading.
package scope

import "strings"

// FrameID indexes a frame within an Arena. Representing child->parent as
// an index (rather than a pointer) avoids ownership cycles in the frame
// tree (§9 design note "Cyclic scope tree").
type FrameID int

// noFrame marks the absence of an outer frame (the root).
const noFrame FrameID = -1

// frame is a node in the tree of lexical frames (§3).
type frame struct {
	outer FrameID

	vars map[string][]any // multimap: a name may have several bindings

	namedInner   map[string]FrameID
	unnamedInner []FrameID
}

func newFrame(outer FrameID) *frame {
	return &frame{
		outer:      outer,
		vars:       make(map[string][]any),
		namedInner: make(map[string]FrameID),
	}
}

// Arena owns every frame of a scenario's scope tree. The root frame (id 0)
// additionally carries the entity registry and catalog locations, via
// fields the global environment wraps around Arena (see Environment).
type Arena struct {
	frames []*frame
	root   FrameID
}

// NewArena creates an Arena with a single root frame.
func NewArena() *Arena {
	a := &Arena{}
	a.frames = append(a.frames, newFrame(noFrame))
	a.root = 0
	return a
}

// Root returns the arena's root frame id.
func (a *Arena) Root() FrameID { return a.root }

func (a *Arena) get(id FrameID) *frame { return a.frames[id] }

// NewFrame creates a child of outer. If name is non-empty the child is
// reachable as a named inner frame of outer; otherwise it joins outer's
// unnamed inner frames, searched during unqualified resolution (§4.5).
func (a *Arena) NewFrame(outer FrameID, name string) FrameID {
	id := FrameID(len(a.frames))
	a.frames = append(a.frames, newFrame(outer))
	if name != "" {
		a.get(outer).namedInner[name] = id
	} else {
		a.get(outer).unnamedInner = append(a.get(outer).unnamedInner, id)
	}
	return id
}

// Define inserts an object under name into frame's own multimap (§4.5).
func (a *Arena) Define(f FrameID, name string, obj any) {
	fr := a.get(f)
	fr.vars[name] = append(fr.vars[name], obj)
}

// Ref resolves a name from the point of view of frame `from` (§4.5):
//   - "::a::b" (absolute) delegates to the root frame.
//   - "a::b" (qualified) resolves "a" as a named inner frame reachable
//     from here, then recurses on "b" from that frame.
//   - "name" (simple) searches the current frame's variables, then
//     breadth-first over unnamed inner frames, then ascends to the outer
//     frame; ambiguity or exhaustion is an error.
func (a *Arena) Ref(from FrameID, name string) (any, error) {
	if strings.HasPrefix(name, "::") {
		return a.refQualified(a.root, strings.TrimPrefix(name, "::"))
	}
	return a.refQualified(from, name)
}

func (a *Arena) refQualified(from FrameID, name string) (any, error) {
	head, rest, hasRest := strings.Cut(name, "::")
	if !hasRest {
		return a.resolveVariable(from, head)
	}
	target, err := a.resolveNamedFrame(from, head)
	if err != nil {
		return nil, err
	}
	return a.refQualified(target, rest)
}

// resolveVariable implements the simple-name search rules of §4.5.
func (a *Arena) resolveVariable(from FrameID, name string) (any, error) {
	match, err := a.search(from, name, func(fr *frame) []any {
		objs := fr.vars[name]
		out := make([]any, len(objs))
		copy(out, objs)
		return out
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, errNoSuchVariableNamed(name)
	}
	return match, nil
}

// resolveNamedFrame resolves a path prefix to a named inner frame,
// reachable from `from` by the same search rules, matching frame names.
func (a *Arena) resolveNamedFrame(from FrameID, name string) (FrameID, error) {
	match, err := a.search(from, name, func(fr *frame) []any {
		if id, ok := fr.namedInner[name]; ok {
			return []any{id}
		}
		return nil
	})
	if err != nil {
		return noFrame, err
	}
	if match == nil {
		return noFrame, errNoSuchVariableNamed(name)
	}
	return match.(FrameID), nil
}

// search looks for matches of matchAt within `from`'s own level, else
// breadth-first across from's unnamed inner frames, else ascends to the
// outer frame and repeats (§4.5). Returns the single match, or an
// AmbiguousReferenceTo error when >1 match is visible at the same level.
func (a *Arena) search(from FrameID, name string, matchAt func(*frame) []any) (any, error) {
	for cur := from; cur != noFrame; cur = a.get(cur).outer {
		if match, err, found := a.searchLevel(cur, name, matchAt); found {
			return match, err
		}
	}
	return nil, nil
}

// searchLevel checks `at`'s own matches, then breadth-first descends its
// unnamed inner frames one level at a time until a level yields matches.
func (a *Arena) searchLevel(at FrameID, name string, matchAt func(*frame) []any) (any, error, bool) {
	level := []FrameID{at}
	for len(level) > 0 {
		var found []any
		for _, f := range level {
			found = append(found, matchAt(a.get(f))...)
		}
		if len(found) == 1 {
			return found[0], nil, true
		}
		if len(found) > 1 {
			return nil, errAmbiguousReferenceTo(name), true
		}
		var next []FrameID
		for _, f := range level {
			next = append(next, a.get(f).unnamedInner...)
		}
		level = next
	}
	return nil, nil, false
}
