// Package xmlio is the injected XML-parsing collaborator spec.md §6
// assumes external to the core: it turns an OpenSCENARIO (or catalog)
// document's bytes into the xmlnode.Node tree the story loader reads.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/openscenario-sim/oscsim/xmlnode"
)

// element is a parsed XML element: tag name, attributes and children in
// document order, satisfying xmlnode.Node.
type element struct {
	tag      string
	attrs    map[string]string
	children []*element
}

func (e *element) Name() string { return e.tag }

func (e *element) Child(name string) xmlnode.Node {
	for _, c := range e.children {
		if c.tag == name {
			return c
		}
	}
	return nil
}

func (e *element) Children(name string) []xmlnode.Node {
	var out []xmlnode.Node
	for _, c := range e.children {
		if c.tag == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Parse decodes r as XML and returns its root element.
func Parse(r io.Reader) (xmlnode.Node, error) {
	dec := xml.NewDecoder(r)
	var stack []*element
	var root *element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlio: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{tag: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xmlio: empty document")
	}
	return root, nil
}

// ParseFile reads and parses path.
func ParseFile(path string) (xmlnode.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
