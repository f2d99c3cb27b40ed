package usecase

import (
	"errors"
	"fmt"

	"advisor-chat/internal/integrations/advisorapi"
)

type ErrorCode string

const (
	// ErrorValidation is raised client-side and never reaches the network.
	ErrorValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorBusy rejects a second request while one is already in flight.
	ErrorBusy ErrorCode = "BUSY"
	// ErrorTransport covers network failures, non-2xx answers and timeouts.
	ErrorTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrorBackendReported means the backend answered but the advisor failed.
	ErrorBackendReported ErrorCode = "BACKEND_REPORTED_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not a
// usecase error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// queryFailureDetail returns the display text of a failed SubmitQuery call,
// or "" for any other error.
func queryFailureDetail(err error) string {
	if !advisorapi.IsQueryFailed(err) {
		return ""
	}
	return advisorapi.UserMessage(err)
}

func uploadFailureDetail(err error) string {
	if !advisorapi.IsUploadFailed(err) {
		return ""
	}
	return advisorapi.UserMessage(err)
}
