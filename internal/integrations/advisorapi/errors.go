package advisorapi

import (
	"errors"
	"fmt"
)

// Op names the client operation that failed.
type Op string

const (
	OpQuery  Op = "query"
	OpUpload Op = "upload"
)

const (
	queryFailedMessage  = "Failed to send query to advisor. Make sure the advisor server is running on %s"
	uploadFailedMessage = "Failed to upload document. Make sure the advisor server is running."
)

// Error is returned for every transport-level failure: the request could not
// be sent, the server answered non-2xx, or the body could not be decoded.
// Message is safe to show to the user; Err carries the cause.
type Error struct {
	Op      Op
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("advisorapi: %s failed", e.Op)
	}
	return fmt.Sprintf("advisorapi: %s failed: %v", e.Op, e.Err)
}

// UserMessage returns the text to show in the interface.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError captures non-2xx responses from the advisor backend.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// IsQueryFailed reports whether err is a failed SubmitQuery call.
func IsQueryFailed(err error) bool {
	return hasOp(err, OpQuery)
}

// IsUploadFailed reports whether err is a failed UploadDocument call.
func IsUploadFailed(err error) bool {
	return hasOp(err, OpUpload)
}

// UserMessage returns the human-readable part of a client error, or the plain
// error text for anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func hasOp(err error, op Op) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Op == op
}
