package scope

import "fmt"

// SyntaxError reports a malformed scenario: an unresolvable reference, an
// ambiguous one, or (from the loader) an unsupported element (§7).
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

func errAmbiguousReferenceTo(name string) error {
	return &SyntaxError{Msg: fmt.Sprintf("AmbiguousReferenceTo: %q", name)}
}

func errNoSuchVariableNamed(name string) error {
	return &SyntaxError{Msg: fmt.Sprintf("NoSuchVariableNamed: %q", name)}
}
