package errs

import (
	"errors"
	"strings"
)

// FieldError is a single field-level validation failure.
//
//	{ "field": "accommodation", "error": "Place of Stay (accommodation) is mandatory for safety purposes" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells the client what to do next.
type ActionType string

const (
	// ActionTypeRedirect asks the client to navigate to Value.
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional follow-up instruction attached to an error.
// The onboarding flow uses it to send tourists to the profile form when
// their digital ID has not been issued yet.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error envelope every handler failure is rendered as.
//
//   - Code: machine-friendly code such as "BAD_REQUEST" or "USER_ALREADY_EXISTS".
//   - Message: text shown to the client.
//   - Status: HTTP status code.
//   - Override: when false the error handler may replace Message with a generic one.
//   - Errors: per-field validation failures.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields, so
// errors.Is(err, &HTTPError{}) answers "is this already client-facing?".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying a different message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithAction returns a copy of e carrying a client instruction.
func (e *HTTPError) WithAction(action *Action) *HTTPError {
	clone := *e
	clone.Action = action
	return &clone
}

// AsHTTPError extracts an *HTTPError from err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
