package entity

// SemanticError reports a runtime precondition violation: the scenario
// was syntactically valid but some operation could not be carried out
// (§7). Positioned reads before a valid Teleport is the canonical case.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string { return e.Msg }

func errPositionNotSet(name string) error {
	return &SemanticError{Msg: "position not specified by Teleport Action for entity " + name}
}
