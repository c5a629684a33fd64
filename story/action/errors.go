package action

import "fmt"

// Error is a SemanticError-kind failure applying an action (§7): the
// scenario was valid but a runtime precondition failed.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func entityNotFound(name string) error {
	return &Error{Msg: fmt.Sprintf("NoSuchVariableNamed: entity %q", name)}
}

func noLaneChangeTrajectory(entityName string, target int32) error {
	return &Error{Msg: fmt.Sprintf("no lane-change trajectory found for %q to lanelet %d", entityName, target)}
}

func noRouteFound(entityName string, target int32) error {
	return &Error{Msg: fmt.Sprintf("no route found for %q to lanelet %d", entityName, target)}
}
