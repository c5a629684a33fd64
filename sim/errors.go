package sim

import "fmt"

// ExecutionFailedError is the RpcError subtype returned when the
// simulation thread cannot apply a queued request within its deadline, or
// when the request is otherwise well-formed but fails against current
// simulation state (§5 "Cancellation & timeouts", §7 "RpcError").
type ExecutionFailedError struct {
	Msg string
}

func (e *ExecutionFailedError) Error() string { return e.Msg }

func executionFailed(format string, args ...any) error {
	return &ExecutionFailedError{Msg: fmt.Sprintf(format, args...)}
}
