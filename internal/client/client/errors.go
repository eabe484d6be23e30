package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("connection failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is an HTTP response with status >= 400. Detail is the backend's
// "detail" field, already flattened to a single display string.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// Is lets callers match status classes with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// newAPIError decodes the error body. detail may be a string, a list of
// {"msg": ...} objects (validation errors), or absent.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Detail: decodeDetail(status, body)}
}

func decodeDetail(status int, body []byte) string {
	fallback := http.StatusText(status)
	if fallback == "" {
		fallback = fmt.Sprintf("HTTP %d", status)
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}
	raw := bytes.TrimSpace(envelope.Detail)

	switch {
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	case len(raw) > 0 && raw[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fallback
		}
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			var m struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(item, &m); err == nil && m.Msg != "" {
				msgs = append(msgs, m.Msg)
				continue
			}
			var s string
			if err := json.Unmarshal(item, &s); err == nil && s != "" {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	case string(raw) != "null":
		return string(raw)
	}
	return fallback
}
