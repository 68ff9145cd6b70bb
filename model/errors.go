package model

import "fmt"

// ContractViolationError reports malformed input to one of the pure
// stages: pitch or velocity out of range, non-positive tempo, a negative
// delta. It always indicates a caller bug and is never retried.
type ContractViolationError struct {
	Reason string
}

func (e *ContractViolationError) Error() string {
	return "contract violation: " + e.Reason
}

func Violationf(format string, args ...any) error {
	return &ContractViolationError{Reason: fmt.Sprintf(format, args...)}
}
