package api

import (
	"encoding/json"
	"fmt"
)

// The portal reports failures as JSON bodies. Each error type below keeps
// the raw payload so callers can render the server's own message.

// APIError is a non-2xx response from an endpoint with no more specific
// classification.
type APIError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal returned status %d", e.StatusCode)
}

// AuthError reports rejected credentials on login or registration.
type AuthError struct {
	StatusCode int
	Detail     string
	Payload    json.RawMessage
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed: %s", e.Detail)
	}
	return fmt.Sprintf("authentication failed (status %d)", e.StatusCode)
}

// ValidationError reports field-level rejections on registration.
type ValidationError struct {
	StatusCode int
	Fields     map[string][]string
	Payload    json.RawMessage
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (status %d, %d fields)", e.StatusCode, len(e.Fields))
}

// RefreshError reports a rejected refresh-token exchange. It always
// escalates to session teardown.
type RefreshError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh rejected (status %d)", e.StatusCode)
}

// KeyFetchError reports a failure to fetch PGP key material, either because
// no session is held or because the server refused.
type KeyFetchError struct {
	StatusCode int
	Payload    json.RawMessage
	Err        error
}

func (e *KeyFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch keys: %v", e.Err)
	}
	return fmt.Sprintf("failed to fetch keys (status %d)", e.StatusCode)
}

func (e *KeyFetchError) Unwrap() error {
	return e.Err
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorDetail extracts the conventional {"detail": "..."} message from an
// error payload, or "" when the body has a different shape.
func errorDetail(payload []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Detail
}

// fieldErrors extracts a {"field": ["msg", ...]} map from a validation
// payload. Non-list values (like "detail") are skipped.
func fieldErrors(payload []byte) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}
	fields := make(map[string][]string)
	for name, value := range raw {
		var msgs []string
		if err := json.Unmarshal(value, &msgs); err == nil {
			fields[name] = msgs
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
