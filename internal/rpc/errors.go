package rpc

import "fmt"

// Error is the `{message: string}` structured failure every RPC method
// returns in place of a result (§6, §7).
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func missingFieldsError(fields []string) *Error {
	return &Error{Message: fmt.Sprintf("missing fields: %v", fields)}
}

func asRPCError(err error) *Error {
	if err == nil {
		return nil
	}
	if rpcErr, ok := err.(*Error); ok {
		return rpcErr
	}
	return &Error{Message: err.Error()}
}
