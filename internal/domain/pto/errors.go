package pto

import "fmt"

// Stable error codes returned to callers for programmatic branching. The
// message beside the code is for humans and may change freely.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotFound          = "NOT_FOUND"
	CodeMissingParameter  = "MISSING_PARAMETER"
	CodeMissingParameters = "MISSING_PARAMETERS"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeBlackoutConflict  = "BLACKOUT_CONFLICT"
	CodeNoApprover        = "NO_APPROVER"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeConflict          = "CONFLICT"
	CodeStoreError        = "STORE_ERROR"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the stable code from an error, defaulting to STORE_ERROR
// for infrastructure faults that reach the boundary unclassified.
func CodeOf(err error) string {
	if coded, ok := err.(*Error); ok {
		return coded.Code
	}
	return CodeStoreError
}
