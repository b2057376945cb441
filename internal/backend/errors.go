package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx, non-5xx answer from the restaurant backend
type APIError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// ParseError means a response body did not have the expected shape
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError covers failures to get an answer at all: connection errors,
// an open circuit breaker and 5xx responses.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s unavailable (status %d): %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether the backend rejected the credentials
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}

// errorBody is the backend's error envelope. detail is either a string or a
// list of field errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// readAPIError consumes resp.Body and builds an *APIError from it
func readAPIError(endpoint string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Detail: parseDetail(body)}
}

func parseDetail(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(eb.Detail, &s) == nil {
		return s
	}

	var fields []fieldError
	if json.Unmarshal(eb.Detail, &fields) == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if name := fieldName(f.Loc); name != "" {
				msgs = append(msgs, name+": "+f.Msg)
				continue
			}
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(eb.Detail)
}

// fieldName returns the last path element of a validation location such as ["body", "items", 0, "count"]
func fieldName(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok && s != "body" && s != "query" && s != "path" {
			return s
		}
	}
	return ""
}
