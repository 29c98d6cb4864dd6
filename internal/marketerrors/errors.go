package marketerrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Routing and transport errors
var (
	ErrRouteNotFound        = errors.New("route not found")
	ErrNoCompatibleEndpoint = errors.New("no compatible endpoint")
	ErrNetworkUnreachable   = errors.New("network unreachable")
	ErrTimeout              = errors.New("request timed out")
)

// Application errors reported by a backend, real or simulated
var (
	ErrUnauthenticated            = errors.New("not authenticated")
	ErrValidation                 = errors.New("validation error")
	ErrBackend                    = errors.New("backend error")
	ErrMockOperationUnimplemented = errors.New("mock operation not implemented")
)

// Mock backend errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrNotFound           = errors.New("not found")
)

// APIError is a non-2xx answer, kept verbatim so callers can render a precise message
type APIError struct {
	Status int
	Body   json.RawMessage
	Kind   error
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("status %d: %v", e.Status, e.Kind)
}

func (e *APIError) Unwrap() error { return e.Kind }

// Message extracts the most specific human readable text from the body.
// Looks at detail, message, error, then field errors, then non_field_errors,
// then a bare JSON string.
func (e *APIError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Body, &s); err == nil {
		return s
	}

	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return strings.TrimSpace(string(e.Body))
	}

	for _, key := range []string{"detail", "message", "error"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}

	fields := FieldErrors(e.Body)
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("%s: %s", names[0], fields[names[0]])
	}

	if v := firstString(body["non_field_errors"]); v != "" {
		return v
	}
	return ""
}

// FieldErrors returns field -> first message from a validation body such as
// {"amount": ["must be positive"]}. Envelope keys are skipped.
func FieldErrors(body json.RawMessage) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	out := make(map[string]string)
	for k, v := range raw {
		switch k {
		case "detail", "message", "error", "non_field_errors", "status":
			continue
		}
		if msg := firstString(v); msg != "" {
			out[k] = msg
		}
	}
	return out
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}

// KindForStatus classifies an HTTP status returned by a backend
func KindForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrRouteNotFound
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrBackend
	}
}

// StatusFor maps a mock backend error to the HTTP status the backend would answer with
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrMockOperationUnimplemented):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
