// Package common contains shared constants and sentinel errors used across
// lexmail client components.
package common

const (
	// AuthorizationHeader carries the bearer access token on outbound requests.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader tags every outbound request for log correlation.
	RequestIDHeader = "X-Request-ID"

	// BearerPrefix is prepended to the access token in the Authorization header.
	BearerPrefix = "Bearer "
)
