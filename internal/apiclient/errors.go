package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// ErrMalformedResponse is the Code of errors raised for 2xx bodies missing expected fields.
const ErrMalformedResponse = "MALFORMED_RESPONSE"

// Error is the rejected result of an upstream call. StatusCode is 0 when the call
// never produced an HTTP response.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return e.Op + ": " + e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UpstreamStatus implements errorutil.UpstreamError.
func (e *Error) UpstreamStatus() int {
	return e.StatusCode
}

// UpstreamMessage implements errorutil.UpstreamError.
func (e *Error) UpstreamMessage() string {
	if e.Message == "" {
		return errorutil.GenericMessage
	}
	return e.Message
}

func malformed(op string, status int, err error) *Error {
	return &Error{
		Op:         op,
		StatusCode: status,
		Message:    errorutil.GenericMessage,
		Code:       ErrMalformedResponse,
		Err:        err,
	}
}

// errorMessage picks the user-facing message out of an error body.
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errorutil.GenericMessage
	}
	for _, name := range []string{"message", "detail", "error"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return errorutil.GenericMessage
}
