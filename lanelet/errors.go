package lanelet

import "fmt"

// MapError reports a failure loading or validating the lanelet network.
type MapError struct {
	Msg string
}

func (e *MapError) Error() string { return e.Msg }

func mapErrorf(format string, args ...any) error {
	return &MapError{Msg: fmt.Sprintf(format, args...)}
}
