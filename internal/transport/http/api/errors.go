package api

import (
	"context"
	"errors"
	"net/http"

	"ptohub/internal/domain/pto"
)

// StatusForCode maps stable error codes to HTTP statuses. Unknown codes are
// treated as infrastructure faults.
func StatusForCode(code string) int {
	switch code {
	case pto.CodeMissingParameter, pto.CodeMissingParameters, pto.CodeInvalidDateRange:
		return http.StatusBadRequest
	case pto.CodeUnauthorized:
		return http.StatusForbidden
	case pto.CodeNotFound:
		return http.StatusNotFound
	case pto.CodeBlackoutConflict, pto.CodeNoApprover, pto.CodeInvalidStatus, pto.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FailError renders a domain error through the envelope. Coded errors keep
// their code and message; a store deadline becomes TIMEOUT; anything else is
// surfaced as STORE_ERROR with the underlying message for diagnostics.
func FailError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, context.DeadlineExceeded) {
		Fail(w, http.StatusGatewayTimeout, "TIMEOUT", "store operation timed out", requestID)
		return
	}
	var coded *pto.Error
	if errors.As(err, &coded) {
		Fail(w, StatusForCode(coded.Code), coded.Code, coded.Message, requestID)
		return
	}
	Fail(w, http.StatusInternalServerError, pto.CodeStoreError, err.Error(), requestID)
}
